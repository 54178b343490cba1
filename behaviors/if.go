package behaviors

import (
	"github.com/vcrobe/nojs-templating/binding"
	"github.com/vcrobe/nojs-templating/console"
	"github.com/vcrobe/nojs-templating/di"
	"github.com/vcrobe/nojs-templating/runtime"
)

// IfResource is the "if" template controller: if.bind="condition".
var IfResource = &runtime.BehaviorResource{
	AttributeName: "if",
	LiftsContent:  true,
	Properties:    []*runtime.BindableProperty{{Name: "Condition"}},
	NewViewModel: func(c *di.Container) (any, error) {
		factory, err := di.Resolve[*runtime.BoundViewFactory](c)
		if err != nil {
			return nil, err
		}
		slot, err := di.Resolve[*runtime.ViewSlot](c)
		if err != nil {
			return nil, err
		}
		return &If{factory: factory, slot: slot}, nil
	},
}

// If renders its template while Condition is truthy. The view is kept across hide and
// show; it goes back to the factory cache when the controller is unbound.
type If struct {
	Condition any

	factory *runtime.BoundViewFactory
	slot    *runtime.ViewSlot
	view    *runtime.View
	showing bool

	bound           bool
	bindingContext  any
	overrideContext *binding.OverrideContext
}

// Showing reports whether the template is rendered.
func (i *If) Showing() bool { return i.showing }

func (i *If) Bind(bindingContext any, oc *binding.OverrideContext) {
	i.bound = true
	i.bindingContext, i.overrideContext = bindingContext, oc
	i.update(i.Condition)
}

func (i *If) ConditionChanged(newValue any) {
	if i.bound {
		i.update(newValue)
	}
}

func (i *If) Unbind() {
	i.bound = false
	if i.view == nil {
		return
	}
	i.view.Unbind()
	if !i.factory.IsCaching() {
		return
	}
	if i.showing {
		i.showing = false
		i.slot.Remove(i.view, true)
	} else {
		i.view.ReturnToCache()
	}
	i.view = nil
}

func (i *If) update(value any) {
	if Truthy(value) {
		i.show()
	} else {
		i.hide()
	}
}

func (i *If) show() {
	if i.view == nil {
		view, err := i.factory.Create()
		if err != nil {
			console.Error("if: create view:", err)
			return
		}
		i.view = view
	}
	if !i.view.IsBound() {
		i.view.Bind(i.bindingContext, i.overrideContext)
	}
	if !i.showing {
		i.showing = true
		i.slot.Add(i.view)
	}
}

func (i *If) hide() {
	if !i.showing {
		return
	}
	i.showing = false
	i.slot.Remove(i.view, false)
	i.view.Unbind()
}
