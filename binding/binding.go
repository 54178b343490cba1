// Package binding defines the contracts between the templating runtime and a binding
// language, and ships DefaultLanguage, a small path and interpolation language.
//
// The runtime never looks inside an Expression: it asks the language to classify
// attributes and text, stores the returned expressions in instruction tables, and calls
// CreateBinding against a target Accessor when a view is instantiated.
package binding

import (
	"fmt"

	"github.com/vcrobe/nojs-templating/vdom"
)

// BindingMode controls the direction of data flow.
type BindingMode uint8

const (
	// ModeDefault defers to the target property's declared mode.
	ModeDefault BindingMode = iota
	OneTime
	OneWay
	TwoWay
)

func (m BindingMode) String() string {
	switch m {
	case OneTime:
		return "one-time"
	case OneWay:
		return "one-way"
	case TwoWay:
		return "two-way"
	default:
		return "default"
	}
}

// ParseBindingMode maps a command or configuration value onto a mode.
func ParseBindingMode(s string) (BindingMode, error) {
	switch s {
	case "", "default":
		return ModeDefault, nil
	case "one-time", "oneTime":
		return OneTime, nil
	case "one-way", "to-view", "oneWay", "toView":
		return OneWay, nil
	case "two-way", "twoWay":
		return TwoWay, nil
	}
	return ModeDefault, fmt.Errorf("unknown binding mode %q", s)
}

// Accessor is the target side of a binding.
type Accessor interface {
	GetValue() any
	SetValue(v any)
}

// Subscribable is implemented by accessors that report their own changes, which is what
// two-way bindings listen to.
type Subscribable interface {
	Subscribe(fn func(newValue, oldValue any)) (unsubscribe func())
}

// Binding connects a source in a Scope with a target.
type Binding interface {
	Bind(scope *Scope)
	Unbind()
}

// Expression is a compiled, immutable binding description shared by every view created
// from the same template.
type Expression interface {
	// TargetProperty is the attribute or property the expression writes to.
	TargetProperty() string
	CreateBinding(target Accessor) Binding
}

// Resources is the part of the resource registry a language may consult.
type Resources interface {
	MapAttribute(attribute string) string
}

// Behavior is the part of a behavior resource a language may consult.
type Behavior interface {
	// PropertyMode returns the default mode of the property bound through attribute.
	PropertyMode(attribute string) (BindingMode, bool)
}

// AttributeInfo is the classification of one attribute.
type AttributeInfo struct {
	AttrName  string
	AttrValue string
	// Command is the binding command suffix ("bind", "one-way", "for", ...), empty for none.
	Command string
	// Expression is set when the value contains interpolation.
	Expression         Expression
	DefaultBindingMode BindingMode
}

// HasBinding reports whether the attribute produces a binding rather than a literal.
func (i *AttributeInfo) HasBinding() bool {
	return i.Command != "" || i.Expression != nil
}

// AttributeInstruction is what a language produces for a binding attribute.
type AttributeInstruction struct {
	AttrName string
	// Attributes maps target attribute names to an Expression or a literal string.
	Attributes map[string]any
}

// Language classifies template content and creates expressions.
type Language interface {
	InspectAttribute(resources Resources, elementName, attrName, attrValue string) *AttributeInfo
	InspectTextContent(resources Resources, value string) Expression
	// CreateAttributeInstruction returns nil when info carries no binding. When existing
	// is non-nil the result is merged into it.
	CreateAttributeInstruction(resources Resources, element *vdom.VNode, info *AttributeInfo, existing *AttributeInstruction, context Behavior) (*AttributeInstruction, error)
	CreateLetExpressions(resources Resources, element *vdom.VNode) ([]Expression, error)
}
