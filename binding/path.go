package binding

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/vcrobe/nojs-templating/observation"
)

// lookupRoot finds the context defining name, walking override contexts outward.
// It falls back to the scope's own binding context.
func lookupRoot(scope *Scope, name string) (any, observation.Observable, *observation.ObservableMap) {
	for oc := scope.OverrideContext; oc != nil; oc = oc.ParentOverrideContext {
		if oc.hasLocal(name) {
			return nil, nil, oc.locals
		}
		if hasProperty(oc.BindingContext, oc.Observers, name) {
			return oc.BindingContext, oc.Observers, nil
		}
	}
	var observers observation.Observable
	if scope.OverrideContext != nil {
		observers = scope.OverrideContext.Observers
	}
	return scope.BindingContext, observers, nil
}

func hasProperty(ctx any, observers observation.Observable, name string) bool {
	if observers != nil && observers.PropertyObserver(name) != nil {
		return true
	}
	switch c := ctx.(type) {
	case nil:
		return false
	case *observation.ObservableMap:
		return c.Has(name)
	case map[string]any:
		_, ok := c[name]
		return ok
	case observation.Observable:
		return c.PropertyObserver(name) != nil
	}
	_, ok := field(ctx, name)
	return ok
}

// getProperty reads name from owner.
func getProperty(owner any, observers observation.Observable, name string) (any, *observation.PropertyObserver) {
	if observers != nil {
		if o := observers.PropertyObserver(name); o != nil {
			return o.GetValue(), o
		}
	}
	switch c := owner.(type) {
	case nil:
		return nil, nil
	case observation.Observable:
		if o := c.PropertyObserver(name); o != nil {
			return o.GetValue(), o
		}
	case map[string]any:
		return c[name], nil
	}
	if f, ok := field(owner, name); ok {
		return f.Interface(), nil
	}
	return nil, nil
}

// setProperty writes name on owner. Unknown or unexported targets are ignored.
func setProperty(owner any, observers observation.Observable, name string, value any) {
	if observers != nil {
		if o := observers.PropertyObserver(name); o != nil {
			o.SetValue(value)
			return
		}
	}
	switch c := owner.(type) {
	case nil:
		return
	case observation.Observable:
		if o := c.PropertyObserver(name); o != nil {
			o.SetValue(value)
		}
		return
	case map[string]any:
		c[name] = value
		return
	}
	if f, ok := field(owner, name); ok && f.CanSet() {
		Assign(f, value)
	}
}

// field finds an exported struct field by template name.
func field(owner any, name string) (reflect.Value, bool) {
	v := reflect.ValueOf(owner)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}
	f := observation.FieldNamed(v, name)
	if !f.IsValid() || !f.CanInterface() {
		return reflect.Value{}, false
	}
	return f, true
}

// Assign stores value into dst, converting where Go allows it. A nil value zeroes dst.
func Assign(dst reflect.Value, value any) bool {
	if value == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return true
	}
	src := reflect.ValueOf(value)
	switch {
	case src.Type().AssignableTo(dst.Type()):
		dst.Set(src)
	case src.Kind() == reflect.String && dst.Kind() != reflect.String:
		return parseInto(dst, src.String())
	case dst.Kind() == reflect.String && src.Kind() != reflect.String:
		return false
	case src.Type().ConvertibleTo(dst.Type()):
		dst.Set(src.Convert(dst.Type()))
	default:
		return false
	}
	return true
}

func splitPath(path string) []string {
	path = strings.TrimSpace(path)
	if path == "" || path == "$this" {
		return nil
	}
	return strings.Split(path, ".")
}

// parseInto converts literal attribute text into numeric and boolean fields.
func parseInto(dst reflect.Value, s string) bool {
	s = strings.TrimSpace(s)
	switch dst.Kind() {
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return false
		}
		dst.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, dst.Type().Bits())
		if err != nil {
			return false
		}
		dst.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(s, 10, dst.Type().Bits())
		if err != nil {
			return false
		}
		dst.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, dst.Type().Bits())
		if err != nil {
			return false
		}
		dst.SetFloat(f)
	default:
		return false
	}
	return true
}
