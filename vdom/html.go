package vdom

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseFragment parses markup in a <body> context and returns the nodes as a fragment.
// Contents of <template> elements are kept as regular children of the template node.
func ParseFragment(markup string) (*VNode, error) {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return nil, fmt.Errorf("failed to parse markup: %w", err)
	}
	frag := NewFragment()
	for _, n := range nodes {
		if v := FromHTML(n); v != nil {
			frag.appendRaw(v)
		}
	}
	return frag, nil
}

// MustParseFragment is ParseFragment for markup known to be valid, as in tests.
func MustParseFragment(markup string) *VNode {
	frag, err := ParseFragment(markup)
	if err != nil {
		panic(err)
	}
	return frag
}

// FromHTML converts an x/net/html tree into a VNode tree.
func FromHTML(n *html.Node) *VNode {
	var v *VNode
	switch n.Type {
	case html.ElementNode:
		v = NewElement(n.Data)
		for _, a := range n.Attr {
			key := a.Key
			if a.Namespace != "" {
				key = a.Namespace + ":" + a.Key
			}
			v.Attrs = append(v.Attrs, Attr{Key: key, Val: a.Val})
		}
	case html.TextNode:
		return NewText(n.Data)
	case html.CommentNode:
		return NewComment(n.Data)
	case html.DocumentNode:
		v = NewFragment()
	default:
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if child := FromHTML(c); child != nil {
			v.appendRaw(child)
		}
	}
	return v
}

// ToHTML converts n into x/net/html nodes. A fragment yields its children.
func ToHTML(n *VNode) []*html.Node {
	if n.Type == FragmentNode {
		var out []*html.Node
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			out = append(out, ToHTML(c)...)
		}
		return out
	}
	h := shallowHTML(n)
	if n.ShadowRoot != nil {
		tmpl := &html.Node{Type: html.ElementNode, Data: "template", DataAtom: atom.Template,
			Attr: []html.Attribute{{Key: "shadowrootmode", Val: "open"}}}
		for _, hc := range ToHTML(n.ShadowRoot) {
			tmpl.AppendChild(hc)
		}
		h.AppendChild(tmpl)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		for _, hc := range ToHTML(c) {
			h.AppendChild(hc)
		}
	}
	return []*html.Node{h}
}

func shallowHTML(n *VNode) *html.Node {
	switch n.Type {
	case TextNode:
		return &html.Node{Type: html.TextNode, Data: n.Data}
	case CommentNode:
		return &html.Node{Type: html.CommentNode, Data: n.Data}
	}
	h := &html.Node{Type: html.ElementNode, Data: n.Tag, DataAtom: atom.Lookup([]byte(n.Tag))}
	for _, a := range n.Attrs {
		h.Attr = append(h.Attr, html.Attribute{Key: a.Key, Val: a.Val})
	}
	return h
}

// Render writes the HTML serialization of n to w.
func Render(w io.Writer, n *VNode) error {
	for _, h := range ToHTML(n) {
		if err := html.Render(w, h); err != nil {
			return err
		}
	}
	return nil
}

// OuterHTML serializes n including n itself.
func OuterHTML(n *VNode) string {
	var buf bytes.Buffer
	if err := Render(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}

// InnerHTML serializes the children of n.
func InnerHTML(n *VNode) string {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := Render(&buf, c); err != nil {
			return ""
		}
	}
	return buf.String()
}
