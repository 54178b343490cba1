package compiler

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/vcrobe/nojs-templating/binding"
	"github.com/vcrobe/nojs-templating/console"
	"github.com/vcrobe/nojs-templating/runtime"
	"github.com/vcrobe/nojs-templating/vdom"
)

var errUnknownOption = errors.New("unknown option")

// surrogateSkipped are root template attributes never copied onto the host.
var surrogateSkipped = []string{"id", "part", "replace-part", "view-cache"}

// classifiedAttributes is the outcome of classifying the attributes of one element.
type classifiedAttributes struct {
	behaviors   []*runtime.BehaviorInstruction
	expressions []binding.Expression
	// lifting is the first template controller; when set, the element is lifted.
	lifting  *runtime.BehaviorInstruction
	liftAttr string
	// values are the static attributes of a surrogate root.
	values []vdom.Attr
}

// classifyAttributes walks the attributes of n in order. Custom attributes become
// behavior instructions, properties of the element resource go into element, other
// bindings become expressions. Consumed attributes are removed from n unless n is lifted.
func (st *compileState) classifyAttributes(n *vdom.VNode, element *runtime.BehaviorInstruction, surrogate bool) (*classifiedAttributes, error) {
	lang := st.compiler.Language
	out := &classifiedAttributes{}
	var consumed []string

	attrs := slices.Clone(n.Attrs)
	for i, attr := range attrs {
		if attr.Key == runtime.TargetIDAttribute {
			continue
		}
		info := lang.InspectAttribute(st.resources, n.Tag, attr.Key, attr.Val)
		res := st.resources.GetAttribute(st.resources.MapAttribute(info.AttrName))

		if res != nil && res.LiftsContent {
			if surrogate {
				return nil, st.compileError("compile.surrogate", n, runtime.ErrLiftOnSurrogate)
			}
			if n == st.lifted {
				console.Debug().Str("attribute", attr.Key).Str("element", n.Tag).
					Msg("second template controller left static")
				continue
			}
			bi, err := st.attributeInstruction(n, attr, info, res)
			if err != nil {
				return nil, err
			}
			if st.compiler.StrictLifting {
				if other := st.findLift(n, attrs[i+1:]); other != "" {
					return nil, st.compileError("compile.element", n, fmt.Errorf("%w: %s and %s", runtime.ErrDuplicateLift, attr.Key, other))
				}
			}
			out.lifting = bi
			out.liftAttr = attr.Key
			return out, nil
		}

		switch {
		case res != nil:
			bi, err := st.attributeInstruction(n, attr, info, res)
			if err != nil {
				return nil, err
			}
			out.behaviors = append(out.behaviors, bi)
			consumed = append(consumed, attr.Key)

		case element != nil && element.Type.Property(info.AttrName) != nil:
			prop := element.Type.Property(info.AttrName)
			info.DefaultBindingMode = prop.DefaultBindingMode
			ins, err := lang.CreateAttributeInstruction(st.resources, n, info, nil, element.Type)
			if err != nil {
				return nil, st.compileError("compile.attribute", n, err)
			}
			if ins == nil {
				element.Attributes[prop.Attribute] = attr.Val
				continue
			}
			maps.Copy(element.Attributes, ins.Attributes)
			consumed = append(consumed, attr.Key)

		default:
			ins, err := lang.CreateAttributeInstruction(st.resources, n, info, nil, nil)
			if err != nil {
				return nil, st.compileError("compile.attribute", n, err)
			}
			if ins == nil {
				if surrogate && !slices.Contains(surrogateSkipped, attr.Key) {
					out.values = append(out.values, attr)
				}
				continue
			}
			for _, key := range slices.Sorted(maps.Keys(ins.Attributes)) {
				if expr, ok := ins.Attributes[key].(binding.Expression); ok {
					out.expressions = append(out.expressions, expr)
				}
			}
			consumed = append(consumed, attr.Key)
		}
	}

	for _, key := range consumed {
		n.RemoveAttr(key)
	}
	return out, nil
}

// findLift returns the first attribute among attrs naming a template controller.
func (st *compileState) findLift(n *vdom.VNode, attrs []vdom.Attr) string {
	for _, attr := range attrs {
		info := st.compiler.Language.InspectAttribute(st.resources, n.Tag, attr.Key, attr.Val)
		if res := st.resources.GetAttribute(st.resources.MapAttribute(info.AttrName)); res != nil && res.LiftsContent {
			return attr.Key
		}
	}
	return ""
}

// attributeInstruction builds the behavior instruction of a custom attribute. The value
// targets the primary property, unless it is an options list such as "a: x; b.bind: y"
// or an iteration whose parts fill the local and items properties.
func (st *compileState) attributeInstruction(n *vdom.VNode, attr vdom.Attr, info *binding.AttributeInfo, res *runtime.BehaviorResource) (*runtime.BehaviorInstruction, error) {
	lang := st.compiler.Language
	bi := runtime.NewAttributeInstruction(info.AttrName, res)
	primary := res.PrimaryProperty()

	if !info.HasBinding() && res.HasOptions() && strings.Contains(attr.Val, ":") {
		for _, part := range strings.Split(attr.Val, ";") {
			name, value, ok := strings.Cut(part, ":")
			if !ok {
				continue
			}
			name, value = strings.TrimSpace(name), strings.TrimSpace(value)
			optInfo := lang.InspectAttribute(st.resources, n.Tag, name, value)
			prop := res.Property(optInfo.AttrName)
			if prop == nil {
				return nil, st.compileError("compile.options", n, fmt.Errorf("%w %q for %s", errUnknownOption, optInfo.AttrName, res))
			}
			optInfo.DefaultBindingMode = prop.DefaultBindingMode
			ins, err := lang.CreateAttributeInstruction(st.resources, n, optInfo, nil, res)
			if err != nil {
				return nil, st.compileError("compile.options", n, err)
			}
			if ins == nil {
				bi.Attributes[prop.Attribute] = value
				continue
			}
			maps.Copy(bi.Attributes, ins.Attributes)
		}
		return bi, nil
	}

	if info.Command == binding.CommandFor {
		ins, err := lang.CreateAttributeInstruction(st.resources, n, info, nil, res)
		if err != nil {
			return nil, st.compileError("compile.attribute", n, err)
		}
		maps.Copy(bi.Attributes, ins.Attributes)
		return bi, nil
	}
	if primary == nil {
		console.Debug().Str("attribute", attr.Key).Str("behavior", res.Name()).
			Msg("attribute value has no primary property to bind")
		return bi, nil
	}
	if !info.HasBinding() {
		bi.Attributes[primary.Attribute] = attr.Val
		return bi, nil
	}
	info.AttrName = primary.Attribute
	info.DefaultBindingMode = primary.DefaultBindingMode
	ins, err := lang.CreateAttributeInstruction(st.resources, n, info, nil, res)
	if err != nil {
		return nil, st.compileError("compile.attribute", n, err)
	}
	if ins != nil {
		maps.Copy(bi.Attributes, ins.Attributes)
	}
	return bi, nil
}
