package runtime

import (
	"github.com/vcrobe/nojs-templating/console"
	"github.com/vcrobe/nojs-templating/observation"
)

// BehaviorBase is a struct that view-models can embed to reach their controller.
// Writing a bindable property through Set goes through its observer, so bindings and
// change handlers see the write on the next flush. Assigning the struct field directly
// does not notify anyone.
type BehaviorBase struct {
	controller *Controller
}

func (b *BehaviorBase) setController(c *Controller) {
	b.controller = c
}

// Controller returns the controller driving the view-model, nil before creation.
func (b *BehaviorBase) Controller() *Controller {
	return b.controller
}

// Observer returns the observer of the named bindable property.
func (b *BehaviorBase) Observer(name string) *observation.PropertyObserver {
	if b.controller == nil {
		return nil
	}
	return b.controller.PropertyObserver(name)
}

// Get reads a bindable property.
func (b *BehaviorBase) Get(name string) any {
	if o := b.Observer(name); o != nil {
		return o.GetValue()
	}
	return nil
}

// Set writes a bindable property. It reports false when the property is not bindable
// or the view-model is not mounted.
func (b *BehaviorBase) Set(name string, value any) bool {
	o := b.Observer(name)
	if o == nil {
		console.Warn("Set called for", name, "but the view-model has no such bindable property (not mounted?)")
		return false
	}
	o.SetValue(value)
	return true
}
