package runtime

import (
	"math"
	"strconv"
	"strings"

	"github.com/vcrobe/nojs-templating/binding"
	"github.com/vcrobe/nojs-templating/console"
	"github.com/vcrobe/nojs-templating/di"
	"github.com/vcrobe/nojs-templating/vdom"
)

// CreateOptions tune ViewFactory.Create.
type CreateOptions struct {
	// Scope binds the view right away. Without it the view is returned unbound.
	Scope *binding.Scope
	// Enhance uses the template in place instead of cloning it.
	Enhance bool
	// Host is the custom element the view is created for; surrogate attributes and
	// behaviors are applied to it.
	Host *vdom.VNode
}

// ViewFactory instantiates a compiled template. The template and instruction table are
// shared by every view and never modified after compilation.
type ViewFactory struct {
	template     *vdom.VNode
	instructions map[int]*TargetInstruction
	resources    *ViewResources
	surrogate    *TargetInstruction

	cacheSize int
	cache     []*View
}

// NewViewFactory creates a factory for template, whose marked nodes carry
// TargetIDAttribute values keyed into instructions.
func NewViewFactory(template *vdom.VNode, instructions map[int]*TargetInstruction, resources *ViewResources) *ViewFactory {
	return &ViewFactory{
		template:     template,
		instructions: instructions,
		resources:    resources,
		cacheSize:    -1,
	}
}

func (f *ViewFactory) Template() *vdom.VNode                    { return f.template }
func (f *ViewFactory) Instructions() map[int]*TargetInstruction { return f.instructions }
func (f *ViewFactory) Resources() *ViewResources                { return f.resources }
func (f *ViewFactory) Surrogate() *TargetInstruction            { return f.surrogate }

// SetSurrogate sets the instruction applied to the host of an element view.
func (f *ViewFactory) SetSurrogate(instruction *TargetInstruction) {
	f.surrogate = instruction
}

// IsCaching reports whether returned views are kept for reuse.
func (f *ViewFactory) IsCaching() bool {
	return f.cacheSize > 0
}

func (f *ViewFactory) CacheSize() int { return f.cacheSize }

// Cached returns the number of views waiting in the cache.
func (f *ViewFactory) Cached() int { return len(f.cache) }

// SetCacheSize bounds the view cache. With keepExisting an already configured size wins.
func (f *ViewFactory) SetCacheSize(size int, keepExisting bool) {
	if f.cacheSize == -1 || !keepExisting {
		f.cacheSize = size
	}
	if f.cacheSize <= 0 {
		f.cache = nil
	}
}

// ParseCacheSize reads a view-cache attribute value. "*" is unbounded.
func ParseCacheSize(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "*" {
		return math.MaxInt, nil
	}
	return strconv.Atoi(value)
}

// ReturnViewToCache detaches and unbinds view, then keeps it when there is room.
func (f *ViewFactory) ReturnViewToCache(view *View) {
	if view.isAttached {
		view.Detached()
	}
	if view.isBound {
		view.Unbind()
	}
	if len(f.cache) < f.cacheSize {
		view.fromCache = true
		f.cache = append(f.cache, view)
	}
}

func (f *ViewFactory) cachedView() *View {
	n := len(f.cache)
	if n == 0 {
		return nil
	}
	view := f.cache[n-1]
	f.cache[n-1] = nil
	f.cache = f.cache[:n-1]
	return view
}

// viewBuilder collects what instruction application creates for one view.
type viewBuilder struct {
	containers  map[int]*di.Container
	controllers []*Controller
	bindings    []binding.Binding
	children    []*ViewSlot
	slots       *Slots
}

// Create instantiates the template in container.
func (f *ViewFactory) Create(container *di.Container, opts CreateOptions) (*View, error) {
	if view := f.cachedView(); view != nil {
		console.Debug().Int("cached", len(f.cache)).Msg("view cache hit")
		if opts.Scope != nil {
			view.Bind(opts.Scope.BindingContext, opts.Scope.OverrideContext)
		}
		return view, nil
	}

	fragment := f.template
	if !opts.Enhance {
		fragment = f.template.Clone(true)
	}

	b := &viewBuilder{
		containers: map[int]*di.Container{RootInjectorID: container},
		slots:      NewSlots(),
	}
	if opts.Host != nil && f.surrogate != nil {
		if err := f.applySurrogate(container, opts.Host, b); err != nil {
			return nil, err
		}
	}

	var targets []*vdom.VNode
	if opts.Enhance && fragment.HasAttr(TargetIDAttribute) {
		targets = append(targets, fragment)
	}
	targets = append(targets, fragment.QueryAll(func(n *vdom.VNode) bool {
		return n.Type == vdom.ElementNode && n.HasAttr(TargetIDAttribute)
	})...)

	for _, target := range targets {
		raw, _ := target.GetAttr(TargetIDAttribute)
		target.RemoveAttr(TargetIDAttribute)
		id, err := strconv.Atoi(raw)
		if err != nil {
			return nil, &WireUpError{Op: "view.create", Target: raw, Err: ErrUnknownInstruction}
		}
		instruction, ok := f.instructions[id]
		if !ok {
			return nil, &WireUpError{Op: "view.create", Target: raw, Err: ErrUnknownInstruction}
		}
		if err := f.applyInstructions(b, target, instruction); err != nil {
			return nil, err
		}
	}

	view := newView(container, f, fragment, b)
	view.Created()
	if opts.Scope != nil {
		view.Bind(opts.Scope.BindingContext, opts.Scope.OverrideContext)
	}
	return view, nil
}

func (f *ViewFactory) applyInstructions(b *viewBuilder, node *vdom.VNode, instruction *TargetInstruction) error {
	switch instruction.Kind {
	case TargetContentExpression:
		if text := node.NextSibling; text != nil {
			b.bindings = append(b.bindings, instruction.ContentExpression.CreateBinding(binding.TextAccessor{Node: text}))
		}
		node.Remove()
		return nil

	case TargetShadowSlot:
		anchor := vdom.NewComment("slot")
		node.ReplaceWith(anchor)
		var slot Slot
		if instruction.SlotDestination != "" {
			slot = NewPassThroughSlot(anchor, instruction.SlotName, instruction.SlotDestination, instruction.SlotFallbackFactory)
		} else {
			slot = NewContentSlot(anchor, instruction.SlotName, instruction.SlotFallbackFactory)
		}
		b.slots.Set(instruction.SlotName, slot)
		return nil

	case TargetLetElement:
		node.Remove()
		for _, expr := range instruction.LetExpressions {
			b.bindings = append(b.bindings, expr.CreateBinding(nil))
		}
		return nil
	}

	if len(instruction.BehaviorInstructions) > 0 {
		parent, ok := b.containers[instruction.ParentInjectorID]
		if !ok {
			return &WireUpError{Op: "view.create", Target: "injector " + strconv.Itoa(instruction.ParentInjectorID), Err: ErrUnknownInjector}
		}
		if !instruction.AnchorIsContainer {
			anchor := vdom.NewComment("anchor")
			node.ReplaceWith(anchor)
			node = anchor
		}
		ec := createElementContainer(parent, node, instruction, b, f.resources)
		if instruction.Kind == TargetNormal {
			b.containers[instruction.InjectorID] = ec
		}
		for _, bi := range instruction.BehaviorInstructions {
			c, err := bi.Type.create(ec, bi, node)
			if err != nil {
				return err
			}
			b.controllers = append(b.controllers, c)
		}
	}

	for _, expr := range instruction.Expressions {
		b.bindings = append(b.bindings, expr.CreateBinding(binding.ElementAccessor(node, expr.TargetProperty())))
	}
	return nil
}

// applySurrogate merges the element template's root attributes into host and creates
// the behaviors declared there.
func (f *ViewFactory) applySurrogate(container *di.Container, host *vdom.VNode, b *viewBuilder) error {
	s := f.surrogate
	for _, p := range s.Providers {
		registerProvider(container, p)
	}
	for _, attr := range s.Values {
		current, ok := host.GetAttr(attr.Key)
		switch {
		case !ok || current == "":
			host.SetAttr(attr.Key, attr.Val)
		case attr.Key == "class":
			host.SetAttr("class", current+" "+attr.Val)
		case attr.Key == "style":
			host.SetAttr("style", current+";"+attr.Val)
		}
	}
	for _, bi := range s.BehaviorInstructions {
		c, err := bi.Type.create(container, bi, host)
		if err != nil {
			return err
		}
		b.controllers = append(b.controllers, c)
	}
	for _, expr := range s.Expressions {
		b.bindings = append(b.bindings, expr.CreateBinding(binding.ElementAccessor(host, expr.TargetProperty())))
	}
	return nil
}

// createElementContainer creates the dependency scope of one marked node. Besides the
// view-model providers it resolves the node itself, the instruction, the registry, and
// lazily a BoundViewFactory and a ViewSlot for template controllers.
func createElementContainer(parent *di.Container, node *vdom.VNode, instruction *TargetInstruction, b *viewBuilder, resources *ViewResources) *di.Container {
	c := parent.CreateChild()
	c.RegisterInstance(di.KeyOf[*vdom.VNode](), node)
	c.RegisterInstance(di.KeyOf[*TargetInstruction](), instruction)
	c.RegisterInstance(di.KeyOf[*ViewResources](), resources)
	c.RegisterResolver(di.KeyOf[*BoundViewFactory](), func(*di.Container) (any, error) {
		return NewBoundViewFactory(c, instruction.ViewFactory()), nil
	})
	c.RegisterResolver(di.KeyOf[*ViewSlot](), func(*di.Container) (any, error) {
		slot := NewViewSlot(node, instruction.AnchorIsContainer)
		slot.projectionSource = instruction.Kind == TargetLifting
		b.children = append(b.children, slot)
		return slot, nil
	})
	for _, p := range instruction.Providers {
		registerProvider(c, p)
	}
	return c
}

// registerProvider makes c create one view-model of res per scope.
func registerProvider(c *di.Container, res *BehaviorResource) {
	c.RegisterSingleton(res, func(requestor *di.Container) (any, error) {
		return res.newViewModel(requestor)
	})
}

// BoundViewFactory creates views of a template controller's nested template in child
// scopes of the controller's own scope.
type BoundViewFactory struct {
	parent  *di.Container
	factory *ViewFactory
}

func NewBoundViewFactory(parent *di.Container, factory *ViewFactory) *BoundViewFactory {
	return &BoundViewFactory{parent: parent, factory: factory}
}

func (f *BoundViewFactory) Factory() *ViewFactory { return f.factory }

// Create returns an unbound view, from the cache when possible. The caller binds it.
func (f *BoundViewFactory) Create() (*View, error) {
	view, err := f.factory.Create(f.parent.CreateChild(), CreateOptions{})
	if err != nil {
		return nil, err
	}
	view.userControlled = true
	return view, nil
}

func (f *BoundViewFactory) IsCaching() bool { return f.factory.IsCaching() }

func (f *BoundViewFactory) SetCacheSize(size int, keepExisting bool) {
	f.factory.SetCacheSize(size, keepExisting)
}

func (f *BoundViewFactory) ReturnViewToCache(view *View) {
	f.factory.ReturnViewToCache(view)
}
