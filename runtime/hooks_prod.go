//go:build !dev

package runtime

import (
	"github.com/vcrobe/nojs-templating/binding"
	"github.com/vcrobe/nojs-templating/console"
)

// In production mode, panics in view-model hooks are recovered and logged so one faulty
// behavior does not take the whole view tree down.

func (c *Controller) recoverHook(hook string) {
	if rec := recover(); rec != nil {
		console.Error("ERROR:", hook, "panic in", c.resource.Name()+":", rec)
	}
}

func (c *Controller) callCreated(h Creator, owningView *View) {
	defer c.recoverHook("Created")
	h.Created(owningView, c.view)
}

func (c *Controller) callBind(h Binder, bindingContext any, oc *binding.OverrideContext) {
	defer c.recoverHook("Bind")
	h.Bind(bindingContext, oc)
}

func (c *Controller) callUnbind(h Unbinder) {
	defer c.recoverHook("Unbind")
	h.Unbind()
}

func (c *Controller) callAttached(h AttachedHandler) {
	defer c.recoverHook("Attached")
	h.Attached()
}

func (c *Controller) callDetached(h DetachedHandler) {
	defer c.recoverHook("Detached")
	h.Detached()
}
