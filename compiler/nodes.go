package compiler

import (
	"strings"

	"github.com/vcrobe/nojs-templating/console"
	"github.com/vcrobe/nojs-templating/runtime"
	"github.com/vcrobe/nojs-templating/vdom"
)

// compileNode compiles n and returns the next sibling to continue with. Nodes replaced
// during compilation are skipped through the returned sibling.
func (st *compileState) compileNode(n *vdom.VNode, parentInjectorID int, targetLightDOM bool) (*vdom.VNode, error) {
	switch n.Type {
	case vdom.ElementNode:
		return st.compileElement(n, parentInjectorID, targetLightDOM)
	case vdom.TextNode:
		return st.compileText(n), nil
	case vdom.FragmentNode:
		for child := n.FirstChild; child != nil; {
			next, err := st.compileNode(child, parentInjectorID, targetLightDOM)
			if err != nil {
				return nil, err
			}
			child = next
		}
	}
	return n.NextSibling, nil
}

// compileText coalesces the run of adjacent text nodes starting at n. An interpolated
// run becomes a marker element followed by a single placeholder text node.
func (st *compileState) compileText(n *vdom.VNode) *vdom.VNode {
	var whole strings.Builder
	last := n
	for cur := n; cur != nil && cur.Type == vdom.TextNode; cur = cur.NextSibling {
		whole.WriteString(cur.Data)
		last = cur
	}

	expr := st.compiler.Language.InspectTextContent(st.resources, whole.String())
	if expr == nil {
		return last.NextSibling
	}

	marker := vdom.NewElement(runtime.MarkerTag)
	n.Parent.InsertBefore(marker, n)
	st.markTarget(marker, runtime.NewContentExpressionInstruction(expr))
	n.Data = " "
	for n.NextSibling != nil && n.NextSibling.Type == vdom.TextNode {
		n.NextSibling.Remove()
	}
	return n.NextSibling
}

func (st *compileState) compileElement(n *vdom.VNode, parentInjectorID int, targetLightDOM bool) (*vdom.VNode, error) {
	if n.Tag == "slot" {
		if !targetLightDOM {
			return n.NextSibling, nil
		}
		marker, err := st.makeShadowSlot(n, parentInjectorID)
		if err != nil {
			return nil, err
		}
		return marker.NextSibling, nil
	}

	var elementInstruction *runtime.BehaviorInstruction
	elementName := n.Tag
	if as, ok := n.GetAttr("as-element"); ok && as != "" {
		elementName = strings.ToLower(as)
		n.RemoveAttr("as-element")
	}
	resource := st.resources.GetElement(elementName)

	if n.Tag == "let" && resource == nil {
		expressions, err := st.compiler.Language.CreateLetExpressions(st.resources, n)
		if err != nil {
			return nil, st.compileError("compile.let", n, err)
		}
		st.markTarget(n, runtime.NewLetInstruction(expressions))
		return n.NextSibling, nil
	}

	if resource != nil {
		if err := st.ensureElementView(resource); err != nil {
			return nil, err
		}
		elementInstruction = runtime.NewElementInstruction(resource)
	}

	attrs, err := st.classifyAttributes(n, elementInstruction, false)
	if err != nil {
		return nil, err
	}

	if attrs.lifting != nil {
		anchor, err := st.liftElement(n, attrs)
		if err != nil {
			return nil, err
		}
		st.markTarget(anchor, runtime.NewLiftingInstruction(parentInjectorID, attrs.lifting))
		return anchor.NextSibling, nil
	}

	behaviors := attrs.behaviors
	if elementInstruction != nil {
		behaviors = append([]*runtime.BehaviorInstruction{elementInstruction}, behaviors...)
	}

	injectorID := parentInjectorID
	skipContent := false
	if len(behaviors) > 0 || len(attrs.expressions) > 0 {
		var providers []*runtime.BehaviorResource
		ownInjector := 0
		if len(behaviors) > 0 {
			ownInjector = st.newInjectorID()
			injectorID = ownInjector
		}
		for _, bi := range behaviors {
			providers = append(providers, bi.Type)
			skipContent = skipContent || bi.Type.SkipContentProcessing
		}
		if elementInstruction != nil && !resource.UsesShadowDOM && !resource.SkipContentProcessing {
			wrapContent(n)
		}
		st.markTarget(n, runtime.NewNormalInstruction(ownInjector, parentInjectorID, providers, behaviors, attrs.expressions, elementInstruction))
	}
	if skipContent {
		return n.NextSibling, nil
	}

	for child := n.FirstChild; child != nil; {
		next, err := st.compileNode(child, injectorID, targetLightDOM)
		if err != nil {
			return nil, err
		}
		child = next
	}
	return n.NextSibling, nil
}

// wrapContent moves the children of an element host into a single content container,
// dropping whitespace-only text. The container is created whenever the host had children.
func wrapContent(host *vdom.VNode) {
	if !host.HasChildNodes() {
		return
	}
	content := vdom.NewElement(runtime.ContentTag)
	for _, child := range host.ChildNodes() {
		if child.IsWhitespace() {
			child.Remove()
			continue
		}
		content.AppendChild(child)
	}
	host.AppendChild(content)
}

// makeShadowSlot replaces a <slot> with a slot marker. Its children become the fallback
// template and a slot attribute turns it into a pass-through slot.
func (st *compileState) makeShadowSlot(n *vdom.VNode, parentInjectorID int) (*vdom.VNode, error) {
	marker := vdom.NewElement(runtime.ShadowSlotTag)
	n.ReplaceWith(marker)

	ins := runtime.NewShadowSlotInstruction(parentInjectorID)
	ins.SlotName = runtime.DefaultSlotKey
	if name, ok := n.GetAttr("name"); ok && name != "" {
		ins.SlotName = name
	}
	if dest, ok := n.GetAttr("slot"); ok && dest != "" {
		ins.SlotDestination = dest
	}

	if strings.TrimSpace(vdom.InnerHTML(n)) != "" {
		fallback := vdom.NewFragment(n.ChildNodes()...)
		factory, err := st.compiler.compile(fallback, st.source, st.resources, Options{}, nil)
		if err != nil {
			return nil, err
		}
		ins.SlotFallbackFactory = factory
	}
	st.markTarget(marker, ins)
	console.Debug().Str("slot", ins.SlotName).Str("destination", ins.SlotDestination).
		Bool("fallback", ins.SlotFallbackFactory != nil).Msg("compiled slot")
	return marker, nil
}
