package behaviors

import (
	"cmp"
	"reflect"
	"slices"

	"github.com/vcrobe/nojs-templating/binding"
	"github.com/vcrobe/nojs-templating/console"
	"github.com/vcrobe/nojs-templating/di"
	"github.com/vcrobe/nojs-templating/observation"
	"github.com/vcrobe/nojs-templating/runtime"
	"github.com/vcrobe/nojs-templating/taskqueue"
)

// RepeatResource is the "repeat" template controller: repeat.for="item of items".
var RepeatResource = &runtime.BehaviorResource{
	AttributeName: "repeat",
	LiftsContent:  true,
	Properties: []*runtime.BindableProperty{
		{Name: "Items"},
		{Name: "Local", DefaultValue: "item"},
	},
	NewViewModel: func(c *di.Container) (any, error) {
		factory, err := di.Resolve[*runtime.BoundViewFactory](c)
		if err != nil {
			return nil, err
		}
		slot, err := di.Resolve[*runtime.ViewSlot](c)
		if err != nil {
			return nil, err
		}
		r := &Repeat{factory: factory, slot: slot}
		if tq := di.ResolveOptional[*taskqueue.TaskQueue](c); tq != nil {
			r.queue = tq
		}
		return r, nil
	},
}

// Repeat renders its template once per item. Each view is bound to an observable
// context holding the item under Local; the override context carries $index, $first,
// $last, $even, $odd and $parent. Views are reused in place when the items change.
type Repeat struct {
	Items any
	Local string

	factory *runtime.BoundViewFactory
	slot    *runtime.ViewSlot
	queue   observation.Queue

	bound           bool
	bindingContext  any
	overrideContext *binding.OverrideContext
}

// Views returns the rendered item views in order.
func (r *Repeat) Views() []*runtime.View { return r.slot.Children() }

func (r *Repeat) Bind(bindingContext any, oc *binding.OverrideContext) {
	r.bound = true
	r.bindingContext, r.overrideContext = bindingContext, oc
	r.render()
}

func (r *Repeat) ItemsChanged() {
	if r.bound {
		r.render()
	}
}

func (r *Repeat) Unbind() {
	r.bound = false
	r.slot.RemoveAll(true)
}

func (r *Repeat) render() {
	items := Items(r.Items)
	views := r.slot.Children()

	for i := len(views) - 1; i >= len(items); i-- {
		r.slot.RemoveAt(i, true)
	}
	for i, item := range items {
		if i < len(views) {
			r.update(views[i], i, item, len(items))
			continue
		}
		view, err := r.factory.Create()
		if err != nil {
			console.Error("repeat: create view:", err)
			return
		}
		ctx := observation.NewObservableMap(r.queue, map[string]any{r.Local: item})
		oc := binding.CreateOverrideContext(ctx, r.overrideContext)
		setLocals(oc, i, len(items), r.bindingContext)
		view.Bind(ctx, oc)
		r.slot.Add(view)
	}
}

func (r *Repeat) update(view *runtime.View, index int, item any, count int) {
	ctx, ok := view.BindingContext().(*observation.ObservableMap)
	if !ok {
		return
	}
	ctx.Set(r.Local, item)
	setLocals(view.OverrideContext(), index, count, r.bindingContext)
}

func setLocals(oc *binding.OverrideContext, index, count int, parent any) {
	locals := oc.Locals()
	locals.Set("$index", index)
	locals.Set("$first", index == 0)
	locals.Set("$last", index == count-1)
	locals.Set("$even", index%2 == 0)
	locals.Set("$odd", index%2 == 1)
	locals.Set("$parent", parent)
}

// Items turns a repeat source into a list. Slices and arrays are used as is, maps yield
// their values ordered by key, a non-negative integer n yields 0..n-1 and nil yields
// nothing.
func Items(source any) []any {
	if source == nil {
		return nil
	}
	v := reflect.ValueOf(source)
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, v.Len())
		for i := range out {
			out[i] = v.Index(i).Interface()
		}
		return out
	case reflect.Map:
		keys := v.MapKeys()
		slices.SortFunc(keys, func(a, b reflect.Value) int {
			return cmp.Compare(keyString(a), keyString(b))
		})
		out := make([]any, len(keys))
		for i, k := range keys {
			out[i] = v.MapIndex(k).Interface()
		}
		return out
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		out := make([]any, max(v.Int(), 0))
		for i := range out {
			out[i] = i
		}
		return out
	case reflect.Pointer:
		if v.IsNil() {
			return nil
		}
		return Items(v.Elem().Interface())
	}
	console.Debug().Str("type", v.Type().String()).Msg("repeat: unsupported items source")
	return nil
}

func keyString(k reflect.Value) string {
	if k.Kind() == reflect.String {
		return k.String()
	}
	return binding.Stringify(k.Interface())
}
