package runtime

import (
	"github.com/vcrobe/nojs-templating/binding"
	"github.com/vcrobe/nojs-templating/di"
	"github.com/vcrobe/nojs-templating/vdom"
)

// View is one instantiation of a compiled template. It owns the cloned nodes and the
// controllers, bindings and child view slots created for them.
//
// The nodes of a view live between FirstChild and LastChild wherever the view is
// inserted; RemoveNodes moves them back into the view's fragment.
type View struct {
	container *di.Container
	factory   *ViewFactory
	fragment  *vdom.VNode

	firstChild *vdom.VNode
	lastChild  *vdom.VNode

	controllers []*Controller
	bindings    []binding.Binding
	children    []*ViewSlot
	slots       *Slots

	// contentView holds the light-DOM content of the element owning this view.
	contentView *View
	distributed bool

	// owner is the controller whose own view this is. It does not own the controller.
	owner *Controller

	scope      *binding.Scope
	isBound    bool
	isAttached bool
	fromCache  bool
	// userControlled views are bound by the template controller that created them,
	// never by the view slot holding them.
	userControlled bool

	// bindHook runs after the view's bindings are bound, delivering the owning view-model's
	// Bind hook.
	bindHook func()
}

func newView(container *di.Container, factory *ViewFactory, fragment *vdom.VNode, b *viewBuilder) *View {
	v := &View{
		container:   container,
		factory:     factory,
		fragment:    fragment,
		firstChild:  fragment.FirstChild,
		lastChild:   fragment.LastChild,
		controllers: b.controllers,
		bindings:    b.bindings,
		children:    b.children,
		slots:       b.slots,
	}
	for _, name := range v.slots.Names() {
		v.slots.Get(name).created(v)
	}
	return v
}

// newContentView wraps the light-DOM content container of a custom element. It carries
// no bindings of its own: the content was compiled with the outer template.
func newContentView(container *di.Container, content *vdom.VNode) *View {
	return &View{
		container:  container,
		fragment:   content,
		firstChild: content.FirstChild,
		lastChild:  content.LastChild,
		slots:      NewSlots(),
	}
}

func (v *View) Container() *di.Container    { return v.container }
func (v *View) Factory() *ViewFactory       { return v.factory }
func (v *View) Fragment() *vdom.VNode       { return v.fragment }
func (v *View) FirstChild() *vdom.VNode     { return v.firstChild }
func (v *View) LastChild() *vdom.VNode      { return v.lastChild }
func (v *View) Controllers() []*Controller  { return v.controllers }
func (v *View) Bindings() []binding.Binding { return v.bindings }
func (v *View) Children() []*ViewSlot       { return v.children }
func (v *View) Slots() *Slots               { return v.slots }
func (v *View) HasSlots() bool              { return v.slots.Len() > 0 }
func (v *View) ContentView() *View          { return v.contentView }
func (v *View) Owner() *Controller          { return v.owner }
func (v *View) IsBound() bool               { return v.isBound }
func (v *View) IsAttached() bool            { return v.isAttached }
func (v *View) FromCache() bool             { return v.fromCache }
func (v *View) UserControlled() bool        { return v.userControlled }
func (v *View) Scope() *binding.Scope       { return v.scope }

// BindingContext returns the context the view is bound to, nil when unbound.
func (v *View) BindingContext() any {
	if v.scope == nil {
		return nil
	}
	return v.scope.BindingContext
}

// OverrideContext returns the override context the view is bound to.
func (v *View) OverrideContext() *binding.OverrideContext {
	if v.scope == nil {
		return nil
	}
	return v.scope.OverrideContext
}

// AddBinding appends a binding, binding it right away when the view is bound.
func (v *View) AddBinding(b binding.Binding) {
	v.bindings = append(v.bindings, b)
	if v.isBound {
		b.Bind(v.scope)
	}
}

// Created notifies the view's controllers that the view exists.
func (v *View) Created() {
	for _, c := range v.controllers {
		c.Created(v)
	}
}

// Bind binds the view to bindingContext. Binding again to the same context is a no-op;
// a different context unbinds first. A nil override context gets a fresh one.
func (v *View) Bind(bindingContext any, oc *binding.OverrideContext) {
	if v.isBound {
		if binding.SameContext(v.scope.BindingContext, bindingContext) {
			return
		}
		v.Unbind()
	}
	v.isBound = true
	v.scope = binding.NewScope(bindingContext, oc)

	for _, b := range v.bindings {
		b.Bind(v.scope)
	}
	if v.bindHook != nil {
		hook := v.bindHook
		v.bindHook = nil
		hook()
	}
	for _, c := range v.controllers {
		c.Bind(v.scope)
	}
	for _, name := range v.slots.Names() {
		v.slots.Get(name).bind(v)
	}
	for _, child := range v.children {
		child.Bind(bindingContext, v.scope.OverrideContext)
	}
	if v.HasSlots() && v.contentView != nil && !v.distributed {
		v.distributed = true
		DistributeView(v.contentView, v.slots, nil, -1, "")
	}
}

// Unbind releases every binding and unbinds controllers and children.
func (v *View) Unbind() {
	if !v.isBound {
		return
	}
	v.isBound = false
	for _, b := range v.bindings {
		b.Unbind()
	}
	for _, c := range v.controllers {
		c.Unbind()
	}
	for _, name := range v.slots.Names() {
		v.slots.Get(name).unbind()
	}
	for _, child := range v.children {
		child.Unbind()
	}
	v.scope = nil
}

// Attached cascades to controllers, slots and children.
func (v *View) Attached() {
	if v.isAttached {
		return
	}
	v.isAttached = true
	for _, c := range v.controllers {
		c.Attached()
	}
	for _, name := range v.slots.Names() {
		v.slots.Get(name).attached()
	}
	for _, child := range v.children {
		child.Attached()
	}
}

// Detached cascades to controllers, slots and children.
func (v *View) Detached() {
	if !v.isAttached {
		return
	}
	v.isAttached = false
	for _, c := range v.controllers {
		c.Detached()
	}
	for _, name := range v.slots.Names() {
		v.slots.Get(name).detached()
	}
	for _, child := range v.children {
		child.Detached()
	}
}

// InsertNodesBefore moves the view's nodes in front of ref.
func (v *View) InsertNodesBefore(ref *vdom.VNode) {
	ref.Parent.InsertBefore(v.fragment, ref)
}

// AppendNodesTo moves the view's nodes to the end of parent.
func (v *View) AppendNodesTo(parent *vdom.VNode) {
	parent.AppendChild(v.fragment)
}

// RemoveNodes moves the view's nodes back into its fragment.
func (v *View) RemoveNodes() {
	if v.firstChild == nil || v.firstChild.Parent == v.fragment {
		return
	}
	for cur := v.firstChild; cur != nil; {
		next := cur.NextSibling
		v.fragment.AppendChild(cur)
		if cur == v.lastChild {
			break
		}
		cur = next
	}
}

// Nodes returns the view's top-level nodes in order, wherever they currently are.
func (v *View) Nodes() []*vdom.VNode {
	var out []*vdom.VNode
	for cur := v.firstChild; cur != nil; cur = cur.NextSibling {
		out = append(out, cur)
		if cur == v.lastChild {
			break
		}
	}
	return out
}

// ownsTopLevel reports whether n is one of the view's top-level nodes.
func (v *View) ownsTopLevel(n *vdom.VNode) bool {
	for cur := v.firstChild; cur != nil; cur = cur.NextSibling {
		if cur == n {
			return true
		}
		if cur == v.lastChild {
			break
		}
	}
	return false
}

// ReturnToCache hands the view back to its factory.
func (v *View) ReturnToCache() {
	if v.factory != nil {
		v.factory.ReturnViewToCache(v)
	}
}
