package runtime

import (
	"slices"

	"github.com/vcrobe/nojs-templating/console"
	"github.com/vcrobe/nojs-templating/vdom"
)

// Slot is a named projection target declared by an element's own template.
type Slot interface {
	Name() string
	Anchor() *vdom.VNode
	// Projections is the number of nodes currently projected through the slot.
	Projections() int
	NeedsFallbackRendering() bool
	AddNode(view *View, node *vdom.VNode, source ProjectionSource, index int)
	RemoveView(view *View, source ProjectionSource)
	RemoveAll(source ProjectionSource)
	ProjectFrom(view *View, source ProjectionSource)
	RenderFallbackContent(view *View, nodes []*vdom.VNode, source ProjectionSource, index int)

	// removeNode drops bookkeeping for a node removed from the document by someone else.
	removeNode(node *vdom.VNode) bool
	created(owner *View)
	bind(view *View)
	unbind()
	attached()
	detached()
}

type placement struct {
	view   *View
	source ProjectionSource
}

// sourceAnchor marks where the views of one projection source go inside a slot.
type sourceAnchor struct {
	node     *vdom.VNode
	view     *View
	source   ProjectionSource
	children []*vdom.VNode
}

// ContentSlot is a terminal slot: projected nodes are inserted before its anchor.
type ContentSlot struct {
	anchor          *vdom.VNode
	name            string
	fallbackFactory *ViewFactory
	ownerView       *View

	contentView *View
	projections int

	children   []*vdom.VNode
	placements map[*vdom.VNode]placement
	sources    []*sourceAnchor

	// destinationSlots is set when the slot itself sits in light DOM and forwards.
	destinationSlots *Slots
	fallbackSlots    *Slots
}

// NewContentSlot anchors a slot at anchor. fallbackFactory may be nil.
func NewContentSlot(anchor *vdom.VNode, name string, fallbackFactory *ViewFactory) *ContentSlot {
	s := &ContentSlot{
		anchor:          anchor,
		name:            name,
		fallbackFactory: fallbackFactory,
		placements:      make(map[*vdom.VNode]placement),
	}
	anchor.Owner = s
	return s
}

func (s *ContentSlot) Name() string        { return s.name }
func (s *ContentSlot) Anchor() *vdom.VNode { return s.anchor }
func (s *ContentSlot) Projections() int    { return s.projections }
func (s *ContentSlot) FallbackView() *View { return s.contentView }

// Children returns the placed nodes and source anchors in projection order.
func (s *ContentSlot) Children() []*vdom.VNode {
	return slices.Clone(s.children)
}

func (s *ContentSlot) NeedsFallbackRendering() bool {
	return s.fallbackFactory != nil && s.projections == 0
}

func (s *ContentSlot) AddNode(view *View, node *vdom.VNode, source ProjectionSource, index int) {
	s.destroyFallback()
	if pts, ok := node.Owner.(*PassThroughSlot); ok {
		pts.passThroughTo(s)
		return
	}
	if s.destinationSlots != nil {
		DistributeNodes(view, []*vdom.VNode{node}, s.destinationSlots, s, index, "")
		return
	}
	anchor := s.findAnchor(view, node, source, index)
	anchor.Parent.InsertBefore(node, anchor)
	s.children = append(s.children, node)
	s.placements[node] = placement{view: view, source: source}
	s.projections++
}

// findAnchor returns the node to insert before. Views of one source keep their relative
// order: a node of the view at index goes before the first node of any later view.
func (s *ContentSlot) findAnchor(view *View, node *vdom.VNode, source ProjectionSource, index int) *vdom.VNode {
	sa := s.sourceAnchor(source)
	if sa == nil {
		return s.anchor
	}
	if index >= 0 {
		viewIndex := -1
		var lastView *View
		for i, current := range sa.children {
			owner := s.placements[current].view
			if owner != lastView {
				viewIndex++
				lastView = owner
				if viewIndex >= index && lastView != view {
					sa.children = slices.Insert(sa.children, i, node)
					return current
				}
			}
		}
	}
	sa.children = append(sa.children, node)
	return sa.node
}

func (s *ContentSlot) sourceAnchor(source ProjectionSource) *sourceAnchor {
	if source == nil {
		return nil
	}
	for _, sa := range s.sources {
		if sa.source == source {
			return sa
		}
	}
	return nil
}

func (s *ContentSlot) RemoveView(view *View, source ProjectionSource) {
	switch {
	case s.destinationSlots != nil:
		UndistributeView(view, s.destinationSlots, s)
		return
	case s.contentView != nil && s.contentView.HasSlots():
		UndistributeView(view, s.contentView.slots, source)
		return
	}

	for _, child := range slices.Clone(s.children) {
		p, ok := s.placements[child]
		if !ok || p.view != view || p.source != source {
			continue
		}
		s.forget(child)
		view.fragment.AppendChild(child)
	}
	if s.NeedsFallbackRendering() {
		s.RenderFallbackContent(view, nil, source, -1)
	}
}

func (s *ContentSlot) RemoveAll(source ProjectionSource) {
	switch {
	case s.destinationSlots != nil:
		UndistributeAll(s.destinationSlots, s)
		return
	case s.contentView != nil && s.contentView.HasSlots():
		UndistributeAll(s.contentView.slots, source)
		return
	}

	for _, child := range slices.Clone(s.children) {
		p, ok := s.placements[child]
		if !ok || p.source != source {
			continue
		}
		s.forget(child)
		p.view.fragment.AppendChild(child)
	}
	if s.NeedsFallbackRendering() {
		s.RenderFallbackContent(nil, nil, source, -1)
	}
}

// forget removes node from the slot's bookkeeping without touching the document.
func (s *ContentSlot) forget(node *vdom.VNode) {
	p := s.placements[node]
	delete(s.placements, node)
	if i := slices.Index(s.children, node); i >= 0 {
		s.children = slices.Delete(s.children, i, i+1)
	}
	if sa := s.sourceAnchor(p.source); sa != nil {
		if i := slices.Index(sa.children, node); i >= 0 {
			sa.children = slices.Delete(sa.children, i, i+1)
		}
	}
	s.projections--
}

func (s *ContentSlot) removeNode(node *vdom.VNode) bool {
	if _, ok := s.placements[node]; !ok {
		return false
	}
	s.forget(node)
	if s.NeedsFallbackRendering() {
		s.RenderFallbackContent(nil, nil, nil, -1)
	}
	return true
}

// placed reports whether node is projected through this slot and returns its view.
func (s *ContentSlot) placed(node *vdom.VNode) (*View, bool) {
	p, ok := s.placements[node]
	return p.view, ok
}

func (s *ContentSlot) ProjectFrom(view *View, source ProjectionSource) {
	anchor := vdom.NewComment("anchor")
	s.anchor.Parent.InsertBefore(anchor, s.anchor)
	s.children = append(s.children, anchor)
	s.sources = append(s.sources, &sourceAnchor{node: anchor, view: view, source: source})
}

func (s *ContentSlot) projectTo(slots *Slots) {
	s.destinationSlots = slots
}

func (s *ContentSlot) RenderFallbackContent(view *View, nodes []*vdom.VNode, source ProjectionSource, index int) {
	if s.contentView == nil {
		if s.ownerView == nil {
			return
		}
		fallback, err := s.fallbackFactory.Create(s.ownerView.container, CreateOptions{})
		if err != nil {
			console.Error("slot", s.name+":", "fallback content:", err)
			return
		}
		s.contentView = fallback
		fallback.Bind(s.ownerView.BindingContext(), s.ownerView.OverrideContext())
		fallback.InsertNodesBefore(s.anchor)
		if s.ownerView.isAttached {
			fallback.Attached()
		}
	}
	if s.contentView.HasSlots() {
		slots := s.contentView.slots
		for _, name := range slots.Names() {
			for _, sa := range s.sources {
				slots.Get(name).ProjectFrom(sa.view, sa.source)
			}
		}
		s.fallbackSlots = slots
		DistributeNodes(view, nodes, slots, source, index, "")
	}
}

func (s *ContentSlot) destroyFallback() {
	if s.contentView == nil {
		return
	}
	s.contentView.RemoveNodes()
	s.contentView.Detached()
	s.contentView.Unbind()
	s.contentView = nil
}

func (s *ContentSlot) created(owner *View) { s.ownerView = owner }

func (s *ContentSlot) bind(view *View) {
	if s.contentView != nil {
		s.contentView.Bind(view.BindingContext(), view.OverrideContext())
	}
}

func (s *ContentSlot) unbind() {
	if s.contentView != nil {
		s.contentView.Unbind()
	}
}

func (s *ContentSlot) attached() {
	if s.contentView != nil {
		s.contentView.Attached()
	}
}

func (s *ContentSlot) detached() {
	if s.contentView != nil {
		s.contentView.Detached()
	}
}

// PassThroughSlot forwards its projections to a slot of the element it sits in. The
// destination is resolved when that element distributes its content.
type PassThroughSlot struct {
	anchor          *vdom.VNode
	name            string
	destinationName string
	fallbackFactory *ViewFactory
	ownerView       *View

	destinationSlot Slot
	projections     int
	contentView     *View
}

// NewPassThroughSlot anchors a forwarding slot at anchor.
func NewPassThroughSlot(anchor *vdom.VNode, name, destinationName string, fallbackFactory *ViewFactory) *PassThroughSlot {
	s := &PassThroughSlot{anchor: anchor, name: name, destinationName: destinationName, fallbackFactory: fallbackFactory}
	anchor.Owner = s
	return s
}

func (s *PassThroughSlot) Name() string            { return s.name }
func (s *PassThroughSlot) Anchor() *vdom.VNode     { return s.anchor }
func (s *PassThroughSlot) Projections() int        { return s.projections }
func (s *PassThroughSlot) DestinationName() string { return s.destinationName }
func (s *PassThroughSlot) Destination() Slot       { return s.destinationSlot }
func (s *PassThroughSlot) FallbackView() *View     { return s.contentView }

// NeedsFallbackRendering is true when nothing reaches the destination, through this
// slot or any other source.
func (s *PassThroughSlot) NeedsFallbackRendering() bool {
	if s.fallbackFactory == nil || s.projections != 0 {
		return false
	}
	return s.destinationSlot == nil || s.destinationSlot.Projections() == 0
}

func (s *PassThroughSlot) passThroughTo(destination Slot) {
	s.destinationSlot = destination
}

func (s *PassThroughSlot) AddNode(view *View, node *vdom.VNode, source ProjectionSource, index int) {
	s.destroyFallback()
	if pts, ok := node.Owner.(*PassThroughSlot); ok {
		pts.passThroughTo(s)
		return
	}
	if s.destinationSlot == nil {
		console.Debug().Str("slot", s.name).Str("destination", s.destinationName).
			Str("kind", KindProjection.String()).Msg("pass-through slot has no destination")
		return
	}
	s.projections++
	s.destinationSlot.AddNode(view, node, source, index)
}

func (s *PassThroughSlot) RemoveView(view *View, source ProjectionSource) {
	if s.destinationSlot == nil {
		return
	}
	before := s.destinationSlot.Projections()
	s.destinationSlot.RemoveView(view, source)
	s.projections -= before - s.destinationSlot.Projections()
	if s.projections < 0 {
		s.projections = 0
	}
	if s.NeedsFallbackRendering() {
		s.RenderFallbackContent(nil, nil, source, -1)
	}
}

func (s *PassThroughSlot) RemoveAll(source ProjectionSource) {
	s.projections = 0
	if s.destinationSlot == nil {
		return
	}
	s.destinationSlot.RemoveAll(source)
	if s.NeedsFallbackRendering() {
		s.RenderFallbackContent(nil, nil, source, -1)
	}
}

func (s *PassThroughSlot) removeNode(node *vdom.VNode) bool {
	if s.destinationSlot == nil || !s.destinationSlot.removeNode(node) {
		return false
	}
	if s.projections > 0 {
		s.projections--
	}
	if s.NeedsFallbackRendering() {
		s.RenderFallbackContent(nil, nil, nil, -1)
	}
	return true
}

func (s *PassThroughSlot) ProjectFrom(view *View, source ProjectionSource) {
	if s.destinationSlot != nil {
		s.destinationSlot.ProjectFrom(view, source)
	}
}

func (s *PassThroughSlot) RenderFallbackContent(view *View, nodes []*vdom.VNode, source ProjectionSource, index int) {
	if s.contentView != nil || s.ownerView == nil {
		return
	}
	if s.destinationSlot == nil {
		console.Debug().Str("slot", s.name).Str("destination", s.destinationName).
			Str("kind", KindProjection.String()).Msg("fallback content has no destination")
		return
	}
	fallback, err := s.fallbackFactory.Create(s.ownerView.container, CreateOptions{})
	if err != nil {
		console.Error("slot", s.name+":", "fallback content:", err)
		return
	}
	s.contentView = fallback
	fallback.Bind(s.ownerView.BindingContext(), s.ownerView.OverrideContext())
	slots := NewSlots()
	slots.Set(s.destinationSlot.Name(), s.destinationSlot)
	DistributeView(fallback, slots, nil, -1, s.destinationSlot.Name())
	if s.ownerView.isAttached {
		fallback.Attached()
	}
}

func (s *PassThroughSlot) destroyFallback() {
	if s.contentView == nil {
		return
	}
	if s.destinationSlot != nil {
		s.destinationSlot.RemoveView(s.contentView, nil)
	}
	s.contentView.Detached()
	s.contentView.Unbind()
	s.contentView = nil
}

func (s *PassThroughSlot) created(owner *View) { s.ownerView = owner }

func (s *PassThroughSlot) bind(view *View) {
	if s.contentView != nil {
		s.contentView.Bind(view.BindingContext(), view.OverrideContext())
	}
}

func (s *PassThroughSlot) unbind() {
	if s.contentView != nil {
		s.contentView.Unbind()
	}
}

func (s *PassThroughSlot) attached() {
	if s.contentView != nil {
		s.contentView.Attached()
	}
}

func (s *PassThroughSlot) detached() {
	if s.contentView != nil {
		s.contentView.Detached()
	}
}
