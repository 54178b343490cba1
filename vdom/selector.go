package vdom

import (
	"fmt"
	"sync"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

var selectorCache sync.Map // string -> cascadia.Selector

// CompileSelector parses a CSS selector once and caches it.
func CompileSelector(selector string) (cascadia.Selector, error) {
	if s, ok := selectorCache.Load(selector); ok {
		return s.(cascadia.Selector), nil
	}
	s, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", selector, err)
	}
	selectorCache.Store(selector, s)
	return s, nil
}

// Matches reports whether element n matches selector. Only n and its ancestors take part
// in matching, so sibling combinators and structural pseudo-classes never match.
func Matches(n *VNode, selector string) (bool, error) {
	if n == nil || n.Type != ElementNode {
		return false, nil
	}
	if selector == "" || selector == "*" {
		return true, nil
	}
	s, err := CompileSelector(selector)
	if err != nil {
		return false, err
	}
	return s.Match(ancestorChain(n)), nil
}

// ancestorChain builds a childless x/net/html copy of n linked to copies of its ancestors.
func ancestorChain(n *VNode) *html.Node {
	h := shallowHTML(n)
	child := h
	for p := n.Parent; p != nil && p.Type == ElementNode; p = p.Parent {
		ph := shallowHTML(p)
		ph.AppendChild(child)
		child = ph
	}
	return h
}
