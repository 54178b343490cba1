package runtime

import (
	"reflect"
	"slices"

	"github.com/vcrobe/nojs-templating/binding"
	"github.com/vcrobe/nojs-templating/console"
	"github.com/vcrobe/nojs-templating/observation"
	"github.com/vcrobe/nojs-templating/vdom"
)

// HostChanges is one batch of light-DOM changes of a host element.
type HostChanges struct {
	// Added are new direct children of the host that are not part of its rendered view.
	Added []*vdom.VNode
	// Removed are the nodes removed anywhere under the host, in record order.
	Removed []*vdom.VNode
}

// HostBinder reacts to light-DOM changes of a host.
type HostBinder interface {
	HostChanged(host *vdom.VNode, changes HostChanges)
}

type hostWatch struct {
	host     *vdom.VNode
	view     *View
	observer *vdom.MutationObserver
	binders  []HostBinder
}

// HostWatches keeps one child-list watch per host element and fans each batch out to the
// binders registered for that host. Removing the last binder of a host disconnects the
// watch synchronously.
type HostWatches struct {
	scheduler vdom.Scheduler
	hosts     map[*vdom.VNode]*hostWatch
}

func NewHostWatches(scheduler vdom.Scheduler) *HostWatches {
	return &HostWatches{scheduler: scheduler, hosts: make(map[*vdom.VNode]*hostWatch)}
}

// Add registers binder on host. view is the host's own view, nil when the host renders
// nothing itself or renders into a shadow root.
func (w *HostWatches) Add(host *vdom.VNode, view *View, binder HostBinder) {
	hw, ok := w.hosts[host]
	if !ok {
		hw = &hostWatch{host: host}
		hw.observer = vdom.NewMutationObserver(w.scheduler, hw.deliver)
		hw.observer.Observe(host, vdom.ObserveOptions{ChildList: true, Subtree: true})
		w.hosts[host] = hw
	}
	if view != nil && view.fragment.Type == vdom.FragmentNode && host.ShadowRoot == nil {
		hw.view = view
	}
	if !slices.Contains(hw.binders, binder) {
		hw.binders = append(hw.binders, binder)
	}
}

// Remove unregisters binder.
func (w *HostWatches) Remove(host *vdom.VNode, binder HostBinder) {
	hw, ok := w.hosts[host]
	if !ok {
		return
	}
	if i := slices.Index(hw.binders, binder); i >= 0 {
		hw.binders = slices.Delete(hw.binders, i, i+1)
	}
	if len(hw.binders) == 0 {
		hw.observer.Disconnect()
		delete(w.hosts, host)
	}
}

// Watching reports whether host has an active watch.
func (w *HostWatches) Watching(host *vdom.VNode) bool {
	hw, ok := w.hosts[host]
	return ok && hw.observer.Observing()
}

// Binders returns the number of binders registered on host.
func (w *HostWatches) Binders(host *vdom.VNode) int {
	if hw, ok := w.hosts[host]; ok {
		return len(hw.binders)
	}
	return 0
}

func (hw *hostWatch) deliver(records []vdom.MutationRecord, _ *vdom.MutationObserver) {
	var changes HostChanges
	for _, r := range records {
		for _, n := range r.Removed {
			if !slices.Contains(changes.Removed, n) {
				changes.Removed = append(changes.Removed, n)
			}
		}
		for _, n := range r.Added {
			if n.Parent != hw.host || slices.Contains(changes.Added, n) {
				continue
			}
			if hw.view != nil && hw.view.ownsTopLevel(n) {
				continue
			}
			changes.Added = append(changes.Added, n)
		}
	}
	if len(changes.Added) == 0 && len(changes.Removed) == 0 {
		return
	}
	for _, b := range slices.Clone(hw.binders) {
		b.HostChanged(hw.host, changes)
	}
}

// SlotBinder redistributes light-DOM nodes added to or removed from a host after its
// content was first distributed.
type SlotBinder struct {
	view *View
}

func (b *SlotBinder) HostChanged(_ *vdom.VNode, changes HostChanges) {
	slots := b.view.slots
	for _, n := range changes.Removed {
		for _, name := range slots.Names() {
			slot := slots.Get(name)
			terminal := terminalSlot(slot)
			if terminal == nil {
				continue
			}
			if _, placed := terminal.placed(n); placed && n.Parent != terminal.anchor.Parent {
				slot.removeNode(n)
				break
			}
		}
	}

	if len(changes.Added) == 0 {
		return
	}
	content := b.view.contentView
	var matched []*vdom.VNode
	for _, p := range AssignSlots(changes.Added, slots, "") {
		switch p.Kind {
		case PlaceSlot, PlaceSource:
			matched = append(matched, p.Node)
		default:
			content.fragment.AppendChild(p.Node)
		}
	}
	if len(matched) > 0 {
		DistributeNodes(content, matched, slots, nil, -1, "")
	}
}

// terminalSlot follows pass-through slots to the slot that holds placed nodes.
func terminalSlot(slot Slot) *ContentSlot {
	for i := 0; slot != nil && i < 16; i++ {
		switch s := slot.(type) {
		case *ContentSlot:
			return s
		case *PassThroughSlot:
			slot = s.destinationSlot
		}
	}
	return nil
}

// ChildObserver binds a view-model property to the light-DOM children of the host that
// match Selector. With All the property receives every match as []*vdom.VNode, otherwise
// the first match as *vdom.VNode.
type ChildObserver struct {
	Property string
	Selector string
	All      bool
	// ChangeHandler names a view-model method called with the new and old value.
	ChangeHandler string
}

type childObserverBinder struct {
	def        *ChildObserver
	controller *Controller
	handler    observation.ChangeHandler
	items      []*vdom.VNode
	value      any
}

func newChildObserverBinder(c *Controller, def *ChildObserver) (*childObserverBinder, error) {
	p := &BindableProperty{Name: def.Property, ChangeHandler: def.ChangeHandler, owner: c.resource}
	handler, err := p.changeHandler(c.viewModel)
	if err != nil {
		return nil, err
	}
	if _, err := vdom.CompileSelector(def.Selector); err != nil {
		return nil, &WireUpError{Op: "controller.create", Target: c.resource.Name() + "." + def.Property, Err: err}
	}
	return &childObserverBinder{def: def, controller: c, handler: handler}, nil
}

func (b *childObserverBinder) matches(n *vdom.VNode) bool {
	if n.Type != vdom.ElementNode {
		return false
	}
	ok, err := vdom.Matches(n, b.def.Selector)
	return err == nil && ok
}

func (b *childObserverBinder) bind() {
	b.items = b.items[:0]
	for _, n := range b.controller.lightDOM {
		if b.matches(n) {
			b.items = append(b.items, n)
		}
	}
	b.publish()
}

func (b *childObserverBinder) unbind() {
	b.items = nil
	b.value = nil
}

func (b *childObserverBinder) HostChanged(host *vdom.VNode, changes HostChanges) {
	changed := false
	for _, n := range changes.Removed {
		if host.Contains(n) {
			continue
		}
		if i := slices.Index(b.items, n); i >= 0 {
			b.items = slices.Delete(b.items, i, i+1)
			changed = true
		}
	}
	for _, n := range changes.Added {
		if b.matches(n) && !slices.Contains(b.items, n) {
			b.items = append(b.items, n)
			changed = true
		}
	}
	if changed {
		b.publish()
	}
}

func (b *childObserverBinder) publish() {
	var value any
	switch {
	case b.def.All:
		value = slices.Clone(b.items)
	case len(b.items) > 0:
		value = b.items[0]
	default:
		value = (*vdom.VNode)(nil)
	}
	old := b.value
	b.value = value

	c := b.controller
	if o := c.PropertyObserver(b.def.Property); o != nil {
		o.SetValue(value)
		return
	}
	if f, ok := childField(c.viewModel, b.def.Property); ok {
		binding.Assign(f, value)
	} else {
		console.Debug().Str("property", b.def.Property).Str("behavior", c.resource.Name()).
			Msg("child observer has no target field")
	}
	if b.handler != nil {
		b.handler(value, old)
	}
}

func childField(vm any, name string) (reflect.Value, bool) {
	v := reflect.ValueOf(vm)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, false
	}
	f := observation.FieldNamed(v.Elem(), name)
	if !f.IsValid() || !f.CanSet() {
		return reflect.Value{}, false
	}
	return f, true
}
