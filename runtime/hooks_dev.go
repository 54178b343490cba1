//go:build dev

package runtime

import "github.com/vcrobe/nojs-templating/binding"

// In dev mode, panics in view-model hooks propagate to aid debugging and fast failure.

func (c *Controller) callCreated(h Creator, owningView *View) {
	h.Created(owningView, c.view)
}

func (c *Controller) callBind(h Binder, bindingContext any, oc *binding.OverrideContext) {
	h.Bind(bindingContext, oc)
}

func (c *Controller) callUnbind(h Unbinder) {
	h.Unbind()
}

func (c *Controller) callAttached(h AttachedHandler) {
	h.Attached()
}

func (c *Controller) callDetached(h DetachedHandler) {
	h.Detached()
}
