package runtime

import (
	"fmt"
	"reflect"

	"github.com/vcrobe/nojs-templating/binding"
	"github.com/vcrobe/nojs-templating/observation"
)

// BindableProperty describes one bindable property of a behavior.
type BindableProperty struct {
	// Name is the Go property name, e.g. "FirstName".
	Name string
	// Attribute is the template attribute, derived from Name ("first-name") when empty.
	Attribute          string
	DefaultBindingMode binding.BindingMode
	// ChangeHandler names a view-model method. A named handler must exist; without a
	// name the conventional <Name>Changed method is used when present.
	ChangeHandler string
	// DefaultValue is a value or a func() any factory.
	DefaultValue any
	// PrimaryProperty marks the property an options attribute binds when used with a
	// plain command, e.g. my-attr.bind="x".
	PrimaryProperty bool

	owner *BehaviorResource
}

func (p *BindableProperty) defaultValue() any {
	if f, ok := p.DefaultValue.(func() any); ok {
		return f()
	}
	return p.DefaultValue
}

func (p *BindableProperty) String() string {
	return fmt.Sprintf("%s[%s]", p.Name, p.Attribute)
}

// createObserver builds the observer for this property on vm, installing the accessor
// pair resolved for vm's type and the change handler.
func (p *BindableProperty) createObserver(vm any, fields map[string][]int, queue observation.Queue) (*observation.PropertyObserver, error) {
	var field reflect.Value
	if index, ok := fields[p.Name]; ok {
		field = reflect.ValueOf(vm).Elem().FieldByIndex(index)
	}

	initial := p.defaultValue()
	if initial == nil && field.IsValid() {
		initial = field.Interface()
	}
	o := observation.NewPropertyObserver(queue, p.Name, initial)
	if field.IsValid() && field.CanSet() {
		if p.DefaultValue != nil {
			binding.Assign(field, initial)
		}
		o.SetStore(func(v any) { binding.Assign(field, v) })
	}

	handler, err := p.changeHandler(vm)
	if err != nil {
		return nil, err
	}
	o.SetSelfSubscriber(handler)
	return o, nil
}

func (p *BindableProperty) changeHandler(vm any) (observation.ChangeHandler, error) {
	name := p.ChangeHandler
	explicit := name != ""
	if !explicit {
		name = observation.ExportedName(p.Name) + "Changed"
	}

	method := reflect.ValueOf(vm).MethodByName(name)
	if !method.IsValid() {
		if explicit {
			return nil, &WireUpError{Op: "controller.create", Target: p.owner.Name() + "." + name, Err: ErrMissingChangeHandler}
		}
		if h, ok := vm.(PropertyChangedHandler); ok {
			prop := p.Name
			return func(newValue, oldValue any) { h.PropertyChanged(prop, newValue, oldValue) }, nil
		}
		return nil, nil
	}

	mt := method.Type()
	if mt.NumIn() > 2 {
		return nil, &WireUpError{Op: "controller.create", Target: p.owner.Name() + "." + name,
			Err: fmt.Errorf("change handler takes %d arguments, expected at most 2", mt.NumIn())}
	}
	return func(newValue, oldValue any) {
		args := []any{newValue, oldValue}[:mt.NumIn()]
		in := make([]reflect.Value, len(args))
		for i, a := range args {
			in[i] = argument(mt.In(i), a)
		}
		method.Call(in)
	}, nil
}

func argument(t reflect.Type, v any) reflect.Value {
	dst := reflect.New(t).Elem()
	binding.Assign(dst, v)
	return dst
}

// fieldIndexes maps property names onto struct field indexes of a pointer-to-struct type.
func fieldIndexes(t reflect.Type, props []*BindableProperty) map[string][]int {
	out := make(map[string][]int, len(props))
	if t == nil || t.Kind() != reflect.Pointer || t.Elem().Kind() != reflect.Struct {
		return out
	}
	st := t.Elem()
	for _, p := range props {
		if f, ok := st.FieldByName(p.Name); ok && f.IsExported() {
			out[p.Name] = f.Index
		}
	}
	return out
}
