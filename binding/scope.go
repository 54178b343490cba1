package binding

import (
	"reflect"

	"github.com/vcrobe/nojs-templating/observation"
)

// OverrideContext layers locals and an ancestor chain over a binding context.
type OverrideContext struct {
	BindingContext        any
	ParentOverrideContext *OverrideContext

	// Observers resolves observed properties of BindingContext, typically the controller
	// that owns it.
	Observers observation.Observable

	locals *observation.ObservableMap
}

// CreateOverrideContext wraps bindingContext with an optional parent.
func CreateOverrideContext(bindingContext any, parent *OverrideContext) *OverrideContext {
	return &OverrideContext{BindingContext: bindingContext, ParentOverrideContext: parent}
}

// Locals returns the local variables of the context, such as $index or let values.
// They flush synchronously.
func (oc *OverrideContext) Locals() *observation.ObservableMap {
	if oc.locals == nil {
		oc.locals = observation.NewObservableMap(nil, nil)
	}
	return oc.locals
}

func (oc *OverrideContext) hasLocal(name string) bool {
	return oc.locals != nil && oc.locals.Has(name)
}

// Scope is what bindings are bound against.
type Scope struct {
	BindingContext  any
	OverrideContext *OverrideContext
}

// NewScope creates a scope for bindingContext. A nil override context gets a fresh one.
func NewScope(bindingContext any, oc *OverrideContext) *Scope {
	if oc == nil {
		oc = CreateOverrideContext(bindingContext, nil)
	}
	return &Scope{BindingContext: bindingContext, OverrideContext: oc}
}

// SameContext reports whether two binding contexts are the same object. Maps, slices and
// functions compare by identity instead of panicking.
func SameContext(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Map, reflect.Slice, reflect.Func, reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	}
	if va.Comparable() {
		return a == b
	}
	return false
}
