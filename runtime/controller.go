package runtime

import (
	"errors"

	"github.com/vcrobe/nojs-templating/binding"
	"github.com/vcrobe/nojs-templating/di"
	"github.com/vcrobe/nojs-templating/observation"
	"github.com/vcrobe/nojs-templating/taskqueue"
	"github.com/vcrobe/nojs-templating/vdom"
)

type boundProperty struct {
	observer *observation.PropertyObserver
	binding  binding.Binding
}

// Controller pairs a behavior resource with one view-model instance and, for custom
// elements, the element's own view. It drives the view-model through
// created -> bound -> attached -> detached -> unbound.
//
// The view containing the behavior owns the controller; owningView is a back-pointer
// valid for as long as that view lives.
type Controller struct {
	resource    *BehaviorResource
	instruction *BehaviorInstruction
	viewModel   any
	container   *di.Container
	host        *vdom.VNode

	view       *View
	owningView *View
	// lightDOM is the host content as it was before distribution.
	lightDOM []*vdom.VNode

	observers       map[string]*observation.PropertyObserver
	boundProperties []boundProperty
	childObservers  []*childObserverBinder
	slotBinder      *SlotBinder
	watches         *HostWatches

	scope      *binding.Scope
	isBound    bool
	isAttached bool
}

// observerAccessor exposes a property observer as a two-way binding target.
type observerAccessor struct {
	observer *observation.PropertyObserver
}

func (a observerAccessor) GetValue() any  { return a.observer.GetValue() }
func (a observerAccessor) SetValue(v any) { a.observer.SetValue(v) }

func (a observerAccessor) Subscribe(fn func(newValue, oldValue any)) func() {
	return a.observer.Subscribe(fn)
}

// controllerAware view-models receive their controller before any hook runs.
type controllerAware interface {
	setController(c *Controller)
}

func newController(r *BehaviorResource, instruction *BehaviorInstruction, vm any, container *di.Container, host *vdom.VNode) (*Controller, error) {
	c := &Controller{
		resource:    r,
		instruction: instruction,
		viewModel:   vm,
		container:   container,
		host:        host,
		observers:   make(map[string]*observation.PropertyObserver, len(r.Properties)),
	}
	if aware, ok := vm.(controllerAware); ok {
		aware.setController(c)
	}

	var queue observation.Queue
	if tq := di.ResolveOptional[*taskqueue.TaskQueue](container); tq != nil {
		queue = tq
	}
	_, handlesBind := vm.(Binder)
	fields := r.fieldsFor(vm)

	for _, p := range r.Properties {
		o, err := p.createObserver(vm, fields, queue)
		if err != nil {
			return nil, err
		}
		c.observers[p.Name] = o

		if instruction.Attributes != nil {
			self := o.SelfSubscriber()
			if handlesBind {
				o.SetSelfSubscriber(nil)
			}
			switch attr := instruction.Attributes[p.Attribute].(type) {
			case string:
				o.SetValue(attr)
				o.Call()
			case binding.Expression:
				c.boundProperties = append(c.boundProperties, boundProperty{
					observer: o,
					binding:  attr.CreateBinding(observerAccessor{observer: o}),
				})
			}
			o.SetSelfSubscriber(self)
		}
		o.SetPublishing(true)
	}

	for _, co := range r.ChildObservers {
		binder, err := newChildObserverBinder(c, co)
		if err != nil {
			return nil, err
		}
		c.childObservers = append(c.childObservers, binder)
	}
	return c, nil
}

// create instantiates the behavior at host inside container.
func (r *BehaviorResource) create(container *di.Container, instruction *BehaviorInstruction, host *vdom.VNode) (*Controller, error) {
	vm := instruction.ViewModel
	if vm == nil {
		var err error
		vm, err = container.Get(r)
		if errors.Is(err, di.ErrNotRegistered) {
			vm, err = r.newViewModel(container)
		}
		if err != nil {
			return nil, err
		}
	}

	c, err := newController(r, instruction, vm, container, host)
	if err != nil {
		return nil, err
	}
	if r.ElementName == "" {
		if host != nil && len(c.childObservers) > 0 {
			c.lightDOM = host.ChildNodes()
		}
		return c, nil
	}

	factory := instruction.ViewFactory
	if factory == nil {
		factory = r.viewFactory
	}
	if factory == nil {
		return c, nil
	}
	view, err := factory.Create(container.CreateChild(), CreateOptions{Host: host})
	if err != nil {
		return nil, err
	}
	view.owner = c
	c.view = view
	if host == nil {
		return c, nil
	}

	if r.UsesShadowDOM {
		c.lightDOM = host.ChildNodes()
		view.AppendNodesTo(host.AttachShadow())
		return c, nil
	}

	source := host
	if first := host.FirstChild; first != nil && first == host.LastChild && first.IsElement(ContentTag) {
		source = first
	}
	content := vdom.NewFragment()
	for _, n := range source.ChildNodes() {
		content.AppendChild(n)
	}
	if source != host {
		source.Remove()
	}
	c.lightDOM = content.ChildNodes()
	view.contentView = newContentView(view.container, content)
	view.AppendNodesTo(host)
	return c, nil
}

// CreateController instantiates the behavior outside a compiled view, at instruction.Host.
// The behavior gets its own scope below container resolving the host.
func (r *BehaviorResource) CreateController(container *di.Container, instruction *BehaviorInstruction) (*Controller, error) {
	if err := r.Initialize(); err != nil {
		return nil, err
	}
	scope := container.CreateChild()
	if instruction.Host != nil {
		scope.RegisterInstance(di.KeyOf[*vdom.VNode](), instruction.Host)
	}
	return r.create(scope, instruction, instruction.Host)
}

func (c *Controller) Resource() *BehaviorResource       { return c.resource }
func (c *Controller) Instruction() *BehaviorInstruction { return c.instruction }
func (c *Controller) ViewModel() any                    { return c.viewModel }
func (c *Controller) Container() *di.Container          { return c.container }
func (c *Controller) Host() *vdom.VNode                 { return c.host }
func (c *Controller) View() *View                       { return c.view }
func (c *Controller) OwningView() *View                 { return c.owningView }
func (c *Controller) Scope() *binding.Scope             { return c.scope }
func (c *Controller) IsBound() bool                     { return c.isBound }
func (c *Controller) IsAttached() bool                  { return c.isAttached }

// PropertyObserver implements observation.Observable over the bindable properties.
func (c *Controller) PropertyObserver(name string) *observation.PropertyObserver {
	if o, ok := c.observers[name]; ok {
		return o
	}
	for _, p := range c.resource.Properties {
		if observation.SameName(name, p.Name) {
			return c.observers[p.Name]
		}
	}
	return nil
}

// Created records the owning view and runs the Created hook.
func (c *Controller) Created(owningView *View) {
	c.owningView = owningView
	if h, ok := c.viewModel.(Creator); ok {
		c.callCreated(h, owningView)
	}
}

// Bind binds every bindable property and then the element's view. Each property flushes
// once, with publishing suspended, so the view-model sees its initial state before user
// code runs. Binding the same scope twice is a no-op.
func (c *Controller) Bind(scope *binding.Scope) {
	if c.isBound {
		if c.scope == scope {
			return
		}
		c.Unbind()
	}
	c.isBound = true
	c.scope = scope

	binder, handlesBind := c.viewModel.(Binder)
	for _, bp := range c.boundProperties {
		o := bp.observer
		self := o.SelfSubscriber()
		o.SetPublishing(false)
		if handlesBind {
			o.SetSelfSubscriber(nil)
		}
		bp.binding.Bind(scope)
		o.Call()
		o.SetPublishing(true)
		o.SetSelfSubscriber(self)
	}

	switch {
	case c.view != nil:
		if handlesBind {
			c.view.bindHook = func() { c.callBind(binder, scope.BindingContext, scope.OverrideContext) }
		}
		var oc *binding.OverrideContext
		switch {
		case binding.SameContext(c.viewModel, scope.OverrideContext.BindingContext):
			oc = scope.OverrideContext
			if oc.Observers == nil {
				oc.Observers = c
			}
		case c.instruction.InheritBindingContext:
			oc = binding.CreateOverrideContext(c.viewModel, scope.OverrideContext)
			oc.Observers = c
		default:
			oc = binding.CreateOverrideContext(c.viewModel, nil)
			oc.Observers = c
		}
		c.view.Bind(c.viewModel, oc)
	case handlesBind:
		c.callBind(binder, scope.BindingContext, scope.OverrideContext)
	}
	c.watchHost()
}

// Unbind detaches first when needed, then unbinds the view, the view-model and the
// property bindings. Unbinding an unbound controller is a no-op.
func (c *Controller) Unbind() {
	if !c.isBound {
		return
	}
	if c.isAttached {
		c.Detached()
	}
	c.isBound = false
	c.scope = nil
	c.unwatchHost()
	if c.view != nil {
		c.view.Unbind()
	}
	if h, ok := c.viewModel.(Unbinder); ok {
		c.callUnbind(h)
	}
	for _, bp := range c.boundProperties {
		bp.binding.Unbind()
	}
}

func (c *Controller) Attached() {
	if c.isAttached {
		return
	}
	c.isAttached = true
	if h, ok := c.viewModel.(AttachedHandler); ok {
		c.callAttached(h)
	}
	if c.view != nil {
		c.view.Attached()
	}
}

// Detached cascades to the view before the view-model hook runs.
func (c *Controller) Detached() {
	if !c.isAttached {
		return
	}
	c.isAttached = false
	if c.view != nil {
		c.view.Detached()
	}
	if h, ok := c.viewModel.(DetachedHandler); ok {
		c.callDetached(h)
	}
}

// Automate runs a root controller through created, bind and attached.
func (c *Controller) Automate(oc *binding.OverrideContext, owningView *View) {
	if c.view != nil {
		c.view.owner = c
	}
	c.Created(owningView)
	if oc == nil {
		oc = binding.CreateOverrideContext(c.viewModel, nil)
		oc.Observers = c
	}
	c.Bind(binding.NewScope(c.viewModel, oc))
	c.Attached()
}

// watchHost registers the host binders once the content has been distributed.
func (c *Controller) watchHost() {
	if c.host == nil {
		return
	}
	if c.view != nil && c.view.HasSlots() && c.view.contentView != nil && c.slotBinder == nil {
		c.slotBinder = &SlotBinder{view: c.view}
	}
	if c.slotBinder == nil && len(c.childObservers) == 0 {
		return
	}
	c.watches = di.ResolveOptional[*HostWatches](c.container)
	for _, co := range c.childObservers {
		co.bind()
	}
	if c.watches == nil {
		return
	}
	if c.slotBinder != nil {
		c.watches.Add(c.host, c.view, c.slotBinder)
	}
	for _, co := range c.childObservers {
		c.watches.Add(c.host, c.view, co)
	}
}

func (c *Controller) unwatchHost() {
	for _, co := range c.childObservers {
		co.unbind()
	}
	if c.watches == nil {
		return
	}
	if c.slotBinder != nil {
		c.watches.Remove(c.host, c.slotBinder)
	}
	for _, co := range c.childObservers {
		c.watches.Remove(c.host, co)
	}
	c.watches = nil
}
