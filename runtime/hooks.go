package runtime

import "github.com/vcrobe/nojs-templating/binding"

// View-model lifecycle hooks. A view-model implements only the hooks it needs; the
// controller checks for each one with a type assertion.

// Creator is called once after the view-model's own view has been created.
// owningView is the view containing the behavior, myView the behavior's own view (nil
// for attributes and template controllers).
type Creator interface {
	Created(owningView, myView *View)
}

// Binder takes over binding. When implemented, the initial flush of bindable properties
// does not call change handlers: the view-model is expected to read its state in Bind.
type Binder interface {
	Bind(bindingContext any, overrideContext *binding.OverrideContext)
}

// Unbinder is called when the behavior is unbound.
type Unbinder interface {
	Unbind()
}

// AttachedHandler is called once the behavior's nodes are in the document.
type AttachedHandler interface {
	Attached()
}

// DetachedHandler is called when the behavior's nodes leave the document.
type DetachedHandler interface {
	Detached()
}

// PropertyChangedHandler receives changes of bindable properties that have no dedicated
// change handler method.
type PropertyChangedHandler interface {
	PropertyChanged(name string, newValue, oldValue any)
}
