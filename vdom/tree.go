package vdom

// appendRaw links child as the last child of n without notifying watchers.
func (n *VNode) appendRaw(child *VNode) {
	child.Parent = n
	child.PrevSibling = n.LastChild
	child.NextSibling = nil
	if n.LastChild != nil {
		n.LastChild.NextSibling = child
	} else {
		n.FirstChild = child
	}
	n.LastChild = child
}

// unlink detaches child from n without notifying watchers.
func (n *VNode) unlink(child *VNode) {
	if child.PrevSibling != nil {
		child.PrevSibling.NextSibling = child.NextSibling
	} else {
		n.FirstChild = child.NextSibling
	}
	if child.NextSibling != nil {
		child.NextSibling.PrevSibling = child.PrevSibling
	} else {
		n.LastChild = child.PrevSibling
	}
	child.Parent = nil
	child.PrevSibling = nil
	child.NextSibling = nil
}

// AppendChild appends child to n. A fragment child contributes its children instead.
func (n *VNode) AppendChild(child *VNode) {
	n.InsertBefore(child, nil)
}

// InsertBefore inserts child before ref. A nil ref appends. A fragment child is emptied
// into n, and a child that already has a parent is moved, as with the browser DOM.
func (n *VNode) InsertBefore(child, ref *VNode) {
	if child == nil || child == ref {
		return
	}
	if ref != nil && ref.Parent != n {
		panic("vdom: InsertBefore reference node is not a child of the target")
	}

	var moved []*VNode
	if child.Type == FragmentNode {
		moved = child.ChildNodes()
		for _, c := range moved {
			child.unlink(c)
		}
		if len(moved) > 0 {
			child.notify(MutationRecord{Target: child, Removed: moved})
		}
	} else {
		if child.Parent != nil {
			child.Parent.RemoveChild(child)
		}
		moved = []*VNode{child}
	}
	if len(moved) == 0 {
		return
	}

	prev := n.LastChild
	if ref != nil {
		prev = ref.PrevSibling
	}
	for _, c := range moved {
		c.Parent = n
		c.PrevSibling = prev
		c.NextSibling = ref
		if prev != nil {
			prev.NextSibling = c
		} else {
			n.FirstChild = c
		}
		prev = c
	}
	if ref != nil {
		ref.PrevSibling = prev
	} else {
		n.LastChild = prev
	}

	n.notify(MutationRecord{Target: n, Added: moved, NextSibling: ref})
}

// RemoveChild detaches child from n.
func (n *VNode) RemoveChild(child *VNode) {
	if child == nil || child.Parent != n {
		return
	}
	next := child.NextSibling
	n.unlink(child)
	n.notify(MutationRecord{Target: n, Removed: []*VNode{child}, NextSibling: next})
}

// Remove detaches n from its parent, if any.
func (n *VNode) Remove() {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// ReplaceWith puts replacement where n currently is and detaches n.
func (n *VNode) ReplaceWith(replacement *VNode) {
	parent := n.Parent
	if parent == nil {
		return
	}
	parent.InsertBefore(replacement, n)
	parent.RemoveChild(n)
}
