package runtime

import (
	"github.com/vcrobe/nojs-templating/console"
	"github.com/vcrobe/nojs-templating/vdom"
)

// Slots is the ordered name -> slot map declared by a view.
type Slots struct {
	names  []string
	byName map[string]Slot
}

func NewSlots() *Slots {
	return &Slots{byName: make(map[string]Slot)}
}

// Get returns the slot named name, or nil.
func (s *Slots) Get(name string) Slot {
	if s == nil {
		return nil
	}
	return s.byName[name]
}

// Set declares a slot. Redeclaring a name replaces the slot in place.
func (s *Slots) Set(name string, slot Slot) {
	if _, ok := s.byName[name]; !ok {
		s.names = append(s.names, name)
	}
	s.byName[name] = slot
}

// Names returns slot names in declaration order.
func (s *Slots) Names() []string {
	if s == nil {
		return nil
	}
	return s.names
}

func (s *Slots) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

// ProjectionSource is an anchor whose views are projected into an outer slot map: a
// template controller's view slot inside light DOM, or a slot forwarding its content.
type ProjectionSource interface {
	projectTo(slots *Slots)
}

// SlotKey returns the slot a light-DOM node asks for.
func SlotKey(node *vdom.VNode) string {
	if pts, ok := node.Owner.(*PassThroughSlot); ok {
		return pts.destinationName
	}
	if node.Type == vdom.ElementNode {
		if name, ok := node.GetAttr("slot"); ok && name != "" {
			return name
		}
	}
	return DefaultSlotKey
}

// projectionSourceOf returns the projection source anchored at node, if any.
func projectionSourceOf(node *vdom.VNode) ProjectionSource {
	switch owner := node.Owner.(type) {
	case *ViewSlot:
		if owner.projectionSource {
			return owner
		}
	case *ContentSlot:
		return owner
	}
	return nil
}

// PlacementKind is the outcome of matching one node.
type PlacementKind uint8

const (
	// PlaceSource registers a nested projection source against the slot map.
	PlaceSource PlacementKind = iota
	// PlaceSlot projects the node into Slot.
	PlaceSlot
	// PlaceUnmatched keeps the node out of the view; it asked for an undeclared slot.
	PlaceUnmatched
	// PlaceIgnored drops whitespace text and comments.
	PlaceIgnored
)

// Placement is the matching decision for one node.
type Placement struct {
	Node *vdom.VNode
	Kind PlacementKind
	Slot string
}

// AssignSlots matches nodes against slots in document order. It has no side effects:
// distribution and dynamic redistribution both apply its result.
func AssignSlots(nodes []*vdom.VNode, slots *Slots, destinationOverride string) []Placement {
	out := make([]Placement, 0, len(nodes))
	for _, n := range nodes {
		if projectionSourceOf(n) != nil {
			out = append(out, Placement{Node: n, Kind: PlaceSource})
			continue
		}
		_, passThrough := n.Owner.(*PassThroughSlot)
		if n.Type != vdom.ElementNode && n.Type != vdom.TextNode && !passThrough {
			out = append(out, Placement{Node: n, Kind: PlaceIgnored})
			continue
		}
		if n.IsWhitespace() {
			out = append(out, Placement{Node: n, Kind: PlaceIgnored})
			continue
		}
		key := destinationOverride
		if key == "" {
			key = SlotKey(n)
		}
		if slots.Get(key) != nil {
			out = append(out, Placement{Node: n, Kind: PlaceSlot, Slot: key})
			continue
		}
		out = append(out, Placement{Node: n, Kind: PlaceUnmatched, Slot: key})
	}
	return out
}

// DistributeView projects the nodes of view's fragment into slots. A nil view only
// re-evaluates fallback content.
func DistributeView(view *View, slots *Slots, source ProjectionSource, index int, destinationOverride string) {
	var nodes []*vdom.VNode
	if view != nil {
		nodes = view.fragment.ChildNodes()
	}
	DistributeNodes(view, nodes, slots, source, index, destinationOverride)
}

// DistributeNodes applies AssignSlots to nodes, then renders fallback content for every
// slot left without projections. index is the position of view among the views of
// source, or -1 to append.
func DistributeNodes(view *View, nodes []*vdom.VNode, slots *Slots, source ProjectionSource, index int, destinationOverride string) {
	var unmatched []*vdom.VNode
	for _, p := range AssignSlots(nodes, slots, destinationOverride) {
		switch p.Kind {
		case PlaceSource:
			nested := projectionSourceOf(p.Node)
			nested.projectTo(slots)
			for _, name := range slots.Names() {
				slots.Get(name).ProjectFrom(view, nested)
			}
		case PlaceSlot:
			slots.Get(p.Slot).AddNode(view, p.Node, source, index)
		case PlaceUnmatched:
			console.Debug().Str("slot", p.Slot).Str("kind", KindProjection.String()).Msg("no slot for projected node")
			unmatched = append(unmatched, p.Node)
		}
	}
	for _, name := range slots.Names() {
		slot := slots.Get(name)
		if slot.NeedsFallbackRendering() {
			slot.RenderFallbackContent(view, unmatched, source, index)
		}
	}
}

// UndistributeView removes every node view placed through source.
func UndistributeView(view *View, slots *Slots, source ProjectionSource) {
	for _, name := range slots.Names() {
		slots.Get(name).RemoveView(view, source)
	}
}

// UndistributeAll removes every node placed through source.
func UndistributeAll(slots *Slots, source ProjectionSource) {
	for _, name := range slots.Names() {
		slots.Get(name).RemoveAll(source)
	}
}
