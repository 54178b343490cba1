package binding

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/vcrobe/nojs-templating/vdom"
)

var (
	// interpolationRegex matches {path} references in text and attribute values.
	interpolationRegex = regexp.MustCompile(`\{\s*([a-zA-Z_$][a-zA-Z0-9_.$]*)\s*\}`)
	pathRegex          = regexp.MustCompile(`^[a-zA-Z_$][a-zA-Z0-9_$]*(\.[a-zA-Z_$][a-zA-Z0-9_$]*)*$`)
	forOfRegex         = regexp.MustCompile(`^\s*([a-zA-Z_$][a-zA-Z0-9_$]*)\s+of\s+(\S+)\s*$`)
)

// Commands understood by DefaultLanguage.
const (
	CommandBind    = "bind"
	CommandOneTime = "one-time"
	CommandToView  = "to-view"
	CommandOneWay  = "one-way"
	CommandTwoWay  = "two-way"
	CommandFor     = "for"
)

// ErrInvalidExpression is wrapped by every syntax error DefaultLanguage reports.
var ErrInvalidExpression = errors.New("invalid binding expression")

// DefaultLanguage understands property paths, {path} interpolation, the mode commands
// and "item of items" iteration. It does not evaluate arbitrary expressions.
type DefaultLanguage struct{}

var _ Language = DefaultLanguage{}

func isCommand(s string) bool {
	switch s {
	case CommandBind, CommandOneTime, CommandToView, CommandOneWay, CommandTwoWay, CommandFor:
		return true
	}
	return false
}

func (DefaultLanguage) InspectAttribute(_ Resources, _ string, attrName, attrValue string) *AttributeInfo {
	info := &AttributeInfo{AttrName: attrName, AttrValue: attrValue}
	if i := strings.LastIndexByte(attrName, '.'); i > 0 && isCommand(attrName[i+1:]) {
		info.AttrName = attrName[:i]
		info.Command = attrName[i+1:]
		return info
	}
	if expr := ParseInterpolation(attrName, attrValue); expr != nil {
		info.Expression = expr
	}
	return info
}

func (DefaultLanguage) InspectTextContent(_ Resources, value string) Expression {
	if expr := ParseInterpolation("textContent", value); expr != nil {
		return expr
	}
	return nil
}

func (l DefaultLanguage) CreateAttributeInstruction(_ Resources, element *vdom.VNode, info *AttributeInfo, existing *AttributeInstruction, context Behavior) (*AttributeInstruction, error) {
	if !info.HasBinding() {
		return nil, nil
	}
	inst := existing
	if inst == nil {
		inst = &AttributeInstruction{AttrName: info.AttrName, Attributes: map[string]any{}}
	}

	switch info.Command {
	case "":
		inst.Attributes[info.AttrName] = info.Expression
	case CommandFor:
		m := forOfRegex.FindStringSubmatch(info.AttrValue)
		if m == nil || !pathRegex.MatchString(m[2]) {
			return nil, fmt.Errorf("%w: %s.for=%q, expected \"item of items\"", ErrInvalidExpression, info.AttrName, info.AttrValue)
		}
		inst.Attributes["local"] = m[1]
		inst.Attributes["items"] = NewPathExpression("items", m[2], OneWay)
	default:
		path := strings.TrimSpace(info.AttrValue)
		if !pathRegex.MatchString(path) && path != "$this" {
			return nil, fmt.Errorf("%w: %s.%s=%q", ErrInvalidExpression, info.AttrName, info.Command, info.AttrValue)
		}
		mode := l.modeFor(element, info, context)
		inst.Attributes[info.AttrName] = NewPathExpression(info.AttrName, path, mode)
	}
	return inst, nil
}

// modeFor resolves the binding mode of a command. "bind" takes the declared default of
// the target property, two-way for form values, one-way otherwise.
func (DefaultLanguage) modeFor(element *vdom.VNode, info *AttributeInfo, context Behavior) BindingMode {
	switch info.Command {
	case CommandOneTime:
		return OneTime
	case CommandOneWay, CommandToView:
		return OneWay
	case CommandTwoWay:
		return TwoWay
	}
	if info.DefaultBindingMode != ModeDefault {
		return info.DefaultBindingMode
	}
	if context != nil {
		if mode, ok := context.PropertyMode(info.AttrName); ok && mode != ModeDefault {
			return mode
		}
	}
	if element != nil && isFormValue(element, info.AttrName) {
		return TwoWay
	}
	return OneWay
}

func isFormValue(element *vdom.VNode, attr string) bool {
	switch element.Tag {
	case "input", "textarea", "select":
		return attr == "value" || attr == "checked"
	}
	return false
}

// CreateLetExpressions turns every attribute of a <let> element into a LetExpression.
// The to-binding-context flag attribute redirects all of them to the binding context.
func (l DefaultLanguage) CreateLetExpressions(resources Resources, element *vdom.VNode) ([]Expression, error) {
	toBindingContext := element.HasAttr("to-binding-context")
	var out []Expression
	for _, attr := range element.Attrs {
		if attr.Key == "to-binding-context" {
			continue
		}
		info := l.InspectAttribute(resources, element.Tag, attr.Key, attr.Val)
		name := CamelCase(info.AttrName)
		var source Expression
		switch {
		case info.Command == CommandFor:
			return nil, fmt.Errorf("%w: %s cannot be used on <let>", ErrInvalidExpression, attr.Key)
		case info.Command != "":
			path := strings.TrimSpace(info.AttrValue)
			if !pathRegex.MatchString(path) {
				return nil, fmt.Errorf("%w: %s=%q", ErrInvalidExpression, attr.Key, attr.Val)
			}
			source = NewPathExpression(name, path, l.modeFor(nil, info, nil))
		case info.Expression != nil:
			source = info.Expression
		default:
			source = NewLiteralExpression(name, attr.Val)
		}
		out = append(out, &LetExpression{Name: name, Source: source, ToBindingContext: toBindingContext})
	}
	return out, nil
}

// ParseInterpolation splits value into literal and {path} parts. It returns nil when the
// value has no references.
func ParseInterpolation(targetProperty, value string) *InterpolationExpression {
	matches := interpolationRegex.FindAllStringSubmatchIndex(value, -1)
	if len(matches) == 0 {
		return nil
	}
	expr := &InterpolationExpression{targetProperty: targetProperty}
	last := 0
	for _, m := range matches {
		if m[0] > last {
			expr.parts = append(expr.parts, interpolationPart{literal: value[last:m[0]]})
		}
		path := splitPath(value[m[2]:m[3]])
		if path == nil {
			path = []string{}
		}
		expr.parts = append(expr.parts, interpolationPart{path: path})
		last = m[1]
	}
	if last < len(value) {
		expr.parts = append(expr.parts, interpolationPart{literal: value[last:]})
	}
	return expr
}
