// Package testcomponents mounts element components on a detached document so tests can
// render them, drive their view-models and inspect the resulting tree.
package testcomponents

import (
	"testing"

	"github.com/vcrobe/nojs-templating/engine"
	"github.com/vcrobe/nojs-templating/runtime"
	"github.com/vcrobe/nojs-templating/vdom"
)

// TestRenderer owns an engine and one mounted component.
type TestRenderer struct {
	t          testing.TB
	engine     *engine.TemplatingEngine
	resource   *runtime.BehaviorResource
	viewModel  any
	body       *vdom.VNode
	host       *vdom.VNode
	controller *runtime.Controller
}

// NewTestRenderer prepares res to be mounted with viewModel. dependencies are registered
// on the engine so the component's template can use them.
func NewTestRenderer(t testing.TB, res *runtime.BehaviorResource, viewModel any, dependencies ...*runtime.BehaviorResource) *TestRenderer {
	t.Helper()
	e, err := engine.New(engine.Options{StrictLifting: true})
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	if err := e.Register(dependencies...); err != nil {
		t.Fatalf("Failed to register dependencies: %v", err)
	}
	return &TestRenderer{
		t:         t,
		engine:    e,
		resource:  res,
		viewModel: viewModel,
		body:      vdom.NewElement("body"),
	}
}

// RenderRoot mounts the component and returns the first element its view rendered.
func (r *TestRenderer) RenderRoot() *vdom.VNode {
	r.t.Helper()
	if r.controller == nil {
		r.host = vdom.NewElement(r.resource.ElementName)
		r.body.AppendChild(r.host)
		c, err := r.engine.Mount(r.host, r.resource, r.viewModel)
		if err != nil {
			r.t.Fatalf("Failed to mount <%s>: %v", r.resource.ElementName, err)
		}
		r.controller = c
	}
	return r.root()
}

// GetCurrentVDOM flushes pending changes and returns the component's root element.
func (r *TestRenderer) GetCurrentVDOM() *vdom.VNode {
	r.Flush()
	return r.root()
}

func (r *TestRenderer) root() *vdom.VNode {
	for n := r.host.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == vdom.ElementNode {
			return n
		}
	}
	return nil
}

// Flush delivers queued property changes and light-DOM mutations.
func (r *TestRenderer) Flush() {
	r.engine.Flush()
}

// HTML flushes and renders the host's content.
func (r *TestRenderer) HTML() string {
	r.Flush()
	return vdom.InnerHTML(r.host)
}

// QueryAll flushes and returns the elements under the host matching a CSS selector.
func (r *TestRenderer) QueryAll(selector string) []*vdom.VNode {
	r.t.Helper()
	r.Flush()
	var invalid error
	found := r.host.QueryAll(func(n *vdom.VNode) bool {
		ok, err := vdom.Matches(n, selector)
		if err != nil {
			invalid = err
		}
		return ok
	})
	if invalid != nil {
		r.t.Fatalf("Invalid selector: %v", invalid)
	}
	return found
}

// Controller returns the mounted controller, nil before RenderRoot.
func (r *TestRenderer) Controller() *runtime.Controller { return r.controller }

// Unmount detaches and unbinds the component.
func (r *TestRenderer) Unmount() {
	if r.controller != nil {
		r.engine.Unmount(r.controller)
	}
}
