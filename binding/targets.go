package binding

import (
	"fmt"

	"github.com/vcrobe/nojs-templating/vdom"
)

// TextAccessor targets the data of a text node.
type TextAccessor struct {
	Node *vdom.VNode
}

func (a TextAccessor) GetValue() any { return a.Node.Data }

func (a TextAccessor) SetValue(v any) { a.Node.Data = Stringify(v) }

// AttributeAccessor targets one attribute of an element. Nil and false remove the
// attribute, true sets it empty.
type AttributeAccessor struct {
	Node *vdom.VNode
	Name string
}

func (a AttributeAccessor) GetValue() any {
	v, ok := a.Node.GetAttr(a.Name)
	if !ok {
		return nil
	}
	return v
}

func (a AttributeAccessor) SetValue(v any) {
	switch x := v.(type) {
	case nil:
		a.Node.RemoveAttr(a.Name)
	case bool:
		if x {
			a.Node.SetAttr(a.Name, "")
		} else {
			a.Node.RemoveAttr(a.Name)
		}
	default:
		a.Node.SetAttr(a.Name, Stringify(v))
	}
}

// ElementAccessor returns the accessor for a named target on an element.
func ElementAccessor(node *vdom.VNode, property string) Accessor {
	switch property {
	case "textcontent", "textContent":
		return textContentAccessor{node: node}
	}
	return AttributeAccessor{Node: node, Name: property}
}

type textContentAccessor struct {
	node *vdom.VNode
}

func (a textContentAccessor) GetValue() any { return a.node.TextContent() }

func (a textContentAccessor) SetValue(v any) {
	for c := a.node.FirstChild; c != nil; c = a.node.FirstChild {
		a.node.RemoveChild(c)
	}
	if s := Stringify(v); s != "" {
		a.node.AppendChild(vdom.NewText(s))
	}
}

// Stringify renders a bound value as text.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(v)
	}
}
