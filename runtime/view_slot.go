package runtime

import (
	"slices"

	"github.com/vcrobe/nojs-templating/binding"
	"github.com/vcrobe/nojs-templating/vdom"
)

// ViewSlot manages the views a behavior renders at an anchor. A template controller's
// slot anchors at the comment left where its element was lifted; an element's slot
// appends inside the host.
//
// When the anchor sits in the light DOM of another element, the slot switches to
// projection mode and hands its views to that element's slots instead of the document.
type ViewSlot struct {
	anchor            *vdom.VNode
	anchorIsContainer bool
	children          []*View

	// projectionSource is set for template controllers: their anchor can be distributed.
	projectionSource bool
	projectToSlots   *Slots

	bindingContext  any
	overrideContext *binding.OverrideContext
	isBound         bool
	isAttached      bool
}

// NewViewSlot creates a slot at anchor. With anchorIsContainer views are appended to
// anchor, otherwise they are inserted before it.
func NewViewSlot(anchor *vdom.VNode, anchorIsContainer bool) *ViewSlot {
	s := &ViewSlot{anchor: anchor, anchorIsContainer: anchorIsContainer}
	if !anchorIsContainer {
		anchor.Owner = s
	}
	return s
}

func (s *ViewSlot) Anchor() *vdom.VNode { return s.anchor }
func (s *ViewSlot) Children() []*View   { return s.children }
func (s *ViewSlot) Len() int            { return len(s.children) }
func (s *ViewSlot) IsAttached() bool    { return s.isAttached }

// Projecting reports whether the slot distributes its views into another element's slots.
func (s *ViewSlot) Projecting() bool { return s.projectToSlots != nil }

func (s *ViewSlot) projectTo(slots *Slots) {
	s.projectToSlots = slots
}

// Bind binds every view not controlled by a template controller to the context.
// Binding the same context again is a no-op.
func (s *ViewSlot) Bind(bindingContext any, oc *binding.OverrideContext) {
	if s.isBound {
		if binding.SameContext(s.bindingContext, bindingContext) {
			return
		}
		s.Unbind()
	}
	s.isBound = true
	s.bindingContext = bindingContext
	s.overrideContext = oc
	if s.overrideContext == nil {
		s.overrideContext = binding.CreateOverrideContext(bindingContext, nil)
	}
	for _, v := range s.children {
		if !v.userControlled {
			v.Bind(bindingContext, s.overrideContext)
		}
	}
}

func (s *ViewSlot) Unbind() {
	if !s.isBound {
		return
	}
	s.isBound = false
	s.bindingContext = nil
	s.overrideContext = nil
	for _, v := range s.children {
		v.Unbind()
	}
}

// Add appends view at the end of the slot.
func (s *ViewSlot) Add(view *View) {
	switch {
	case s.projectToSlots != nil:
		DistributeView(view, s.projectToSlots, s, -1, "")
	case s.anchorIsContainer:
		view.AppendNodesTo(s.anchor)
	default:
		view.InsertNodesBefore(s.anchor)
	}
	s.children = append(s.children, view)
	if s.isAttached {
		view.Attached()
	}
}

// Insert puts view at index. An index past the end appends.
func (s *ViewSlot) Insert(index int, view *View) {
	if index < 0 || index >= len(s.children) {
		s.Add(view)
		return
	}
	if s.projectToSlots != nil {
		DistributeView(view, s.projectToSlots, s, index, "")
	} else {
		view.InsertNodesBefore(s.children[index].firstChild)
	}
	s.children = slices.Insert(s.children, index, view)
	if s.isAttached {
		view.Attached()
	}
}

// Move relocates the view at sourceIndex to targetIndex.
func (s *ViewSlot) Move(sourceIndex, targetIndex int) {
	if sourceIndex == targetIndex {
		return
	}
	view := s.children[sourceIndex]
	s.children = slices.Delete(s.children, sourceIndex, sourceIndex+1)

	if s.projectToSlots != nil {
		UndistributeView(view, s.projectToSlots, s)
		DistributeView(view, s.projectToSlots, s, targetIndex, "")
		s.children = slices.Insert(s.children, targetIndex, view)
		return
	}

	view.RemoveNodes()
	if targetIndex < len(s.children) {
		view.InsertNodesBefore(s.children[targetIndex].firstChild)
	} else if s.anchorIsContainer {
		view.AppendNodesTo(s.anchor)
	} else {
		view.InsertNodesBefore(s.anchor)
	}
	s.children = slices.Insert(s.children, min(targetIndex, len(s.children)), view)
}

// Remove takes view out of the slot. It returns nil when view is not a child.
func (s *ViewSlot) Remove(view *View, returnToCache bool) *View {
	i := slices.Index(s.children, view)
	if i < 0 {
		return nil
	}
	return s.RemoveAt(i, returnToCache)
}

// RemoveAt takes the view at index out of the slot and detaches it.
func (s *ViewSlot) RemoveAt(index int, returnToCache bool) *View {
	view := s.children[index]
	if s.projectToSlots != nil {
		UndistributeView(view, s.projectToSlots, s)
	} else {
		view.RemoveNodes()
	}
	s.children = slices.Delete(s.children, index, index+1)
	if s.isAttached {
		view.Detached()
	}
	if returnToCache {
		view.ReturnToCache()
	}
	return view
}

// RemoveAll empties the slot.
func (s *ViewSlot) RemoveAll(returnToCache bool) {
	children := s.children
	s.children = nil
	if s.projectToSlots != nil {
		UndistributeAll(s.projectToSlots, s)
	}
	for _, view := range children {
		if s.projectToSlots == nil {
			view.RemoveNodes()
		}
		if s.isAttached {
			view.Detached()
		}
		if returnToCache {
			view.ReturnToCache()
		}
	}
}

func (s *ViewSlot) Attached() {
	if s.isAttached {
		return
	}
	s.isAttached = true
	for _, v := range s.children {
		v.Attached()
	}
}

func (s *ViewSlot) Detached() {
	if !s.isAttached {
		return
	}
	s.isAttached = false
	for _, v := range s.children {
		v.Detached()
	}
}
