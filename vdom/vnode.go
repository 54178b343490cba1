package vdom

import "strings"

// NodeType identifies the kind of a VNode.
type NodeType uint8

const (
	ElementNode NodeType = iota + 1
	TextNode
	CommentNode
	FragmentNode
)

func (t NodeType) String() string {
	switch t {
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	case CommentNode:
		return "comment"
	case FragmentNode:
		return "fragment"
	default:
		return "unknown"
	}
}

// Attr is a single element attribute. Attribute order is preserved.
type Attr struct {
	Key string
	Val string
}

// VNode is a node of the live in-memory DOM tree.
// Children are kept as a doubly linked list, the same shape golang.org/x/net/html uses,
// so insertion and removal around anchors is O(1).
type VNode struct {
	Type  NodeType
	Tag   string // The lowercase tag name for elements
	Data  string // Text or comment content
	Attrs []Attr

	Parent      *VNode
	FirstChild  *VNode
	LastChild   *VNode
	PrevSibling *VNode
	NextSibling *VNode

	// Owner is the runtime object anchored at this node (a view slot or a content slot).
	// It is nil for ordinary nodes and is never copied by Clone.
	Owner any

	// ShadowRoot holds the rendered view of a shadow-isolated element. Its nodes are not
	// children of the element and are serialized as a declarative shadow root.
	ShadowRoot *VNode

	registrations []*registration
}

// NewElement creates a detached element node.
func NewElement(tag string, attrs ...Attr) *VNode {
	return &VNode{Type: ElementNode, Tag: strings.ToLower(tag), Attrs: attrs}
}

// NewText creates a detached text node.
func NewText(data string) *VNode {
	return &VNode{Type: TextNode, Data: data}
}

// NewComment creates a detached comment node.
func NewComment(data string) *VNode {
	return &VNode{Type: CommentNode, Data: data}
}

// NewFragment creates an empty document fragment.
func NewFragment(children ...*VNode) *VNode {
	f := &VNode{Type: FragmentNode}
	for _, c := range children {
		f.AppendChild(c)
	}
	return f
}

// Element creates an element with children, mirroring the old vdom.Div style helpers.
func Element(tag string, attrs map[string]string, children ...*VNode) *VNode {
	el := NewElement(tag)
	for k, v := range attrs {
		el.SetAttr(k, v)
	}
	for _, c := range children {
		el.AppendChild(c)
	}
	return el
}

// AttachShadow returns the shadow root of n, creating it on first use.
func (n *VNode) AttachShadow() *VNode {
	if n.ShadowRoot == nil {
		n.ShadowRoot = NewFragment()
	}
	return n.ShadowRoot
}

// IsElement reports whether n is an element with the given tag (any tag when tag is empty).
func (n *VNode) IsElement(tag string) bool {
	return n != nil && n.Type == ElementNode && (tag == "" || n.Tag == tag)
}

// GetAttr returns the value of the named attribute.
func (n *VNode) GetAttr(key string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// Attr returns the attribute value or an empty string.
func (n *VNode) Attr(key string) string {
	v, _ := n.GetAttr(key)
	return v
}

// HasAttr reports whether the attribute is present.
func (n *VNode) HasAttr(key string) bool {
	_, ok := n.GetAttr(key)
	return ok
}

// SetAttr sets or replaces an attribute, keeping its original position.
func (n *VNode) SetAttr(key, val string) {
	for i := range n.Attrs {
		if n.Attrs[i].Key == key {
			n.Attrs[i].Val = val
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Key: key, Val: val})
}

// RemoveAttr deletes an attribute if present.
func (n *VNode) RemoveAttr(key string) {
	for i := range n.Attrs {
		if n.Attrs[i].Key == key {
			n.Attrs = append(n.Attrs[:i], n.Attrs[i+1:]...)
			return
		}
	}
}

// Classes returns the class list of an element.
func (n *VNode) Classes() []string {
	return strings.Fields(n.Attr("class"))
}

// AddClass appends a class name unless already present.
func (n *VNode) AddClass(name string) {
	classes := n.Classes()
	for _, c := range classes {
		if c == name {
			return
		}
	}
	n.SetAttr("class", strings.TrimSpace(strings.Join(append(classes, name), " ")))
}

// HasChildNodes reports whether n has at least one child.
func (n *VNode) HasChildNodes() bool {
	return n.FirstChild != nil
}

// ChildNodes returns a snapshot of the children of n.
func (n *VNode) ChildNodes() []*VNode {
	var out []*VNode
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// Contains reports whether other is n or a descendant of n.
func (n *VNode) Contains(other *VNode) bool {
	for cur := other; cur != nil; cur = cur.Parent {
		if cur == n {
			return true
		}
	}
	return false
}

// TextContent concatenates the text of n and its descendants.
func (n *VNode) TextContent() string {
	if n.Type == TextNode || n.Type == CommentNode {
		return n.Data
	}
	var b strings.Builder
	n.Walk(func(c *VNode) bool {
		if c.Type == TextNode {
			b.WriteString(c.Data)
		}
		return true
	})
	return b.String()
}

// IsWhitespace reports whether n is a text node holding only whitespace.
func (n *VNode) IsWhitespace() bool {
	return n.Type == TextNode && strings.TrimSpace(n.Data) == ""
}

// Walk visits n and its descendants in document order. Returning false from fn skips
// the children of the visited node.
func (n *VNode) Walk(fn func(*VNode) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		c.Walk(fn)
		c = next
	}
}

// QueryAll returns the descendants of n (n excluded) matching pred, in document order.
func (n *VNode) QueryAll(pred func(*VNode) bool) []*VNode {
	var out []*VNode
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		c.Walk(func(d *VNode) bool {
			if pred(d) {
				out = append(out, d)
			}
			return true
		})
	}
	return out
}

// Clone copies n. A deep clone copies the whole subtree; Owner and watch registrations
// are never copied.
func (n *VNode) Clone(deep bool) *VNode {
	c := &VNode{Type: n.Type, Tag: n.Tag, Data: n.Data}
	if len(n.Attrs) > 0 {
		c.Attrs = append([]Attr(nil), n.Attrs...)
	}
	if deep {
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			c.appendRaw(child.Clone(true))
		}
	}
	return c
}
