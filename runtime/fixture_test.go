package runtime_test

import (
	"testing"

	"github.com/vcrobe/nojs-templating/behaviors"
	"github.com/vcrobe/nojs-templating/binding"
	"github.com/vcrobe/nojs-templating/compiler"
	"github.com/vcrobe/nojs-templating/di"
	"github.com/vcrobe/nojs-templating/runtime"
	"github.com/vcrobe/nojs-templating/taskqueue"
	"github.com/vcrobe/nojs-templating/vdom"
)

// fixture is a root scope with the runtime services, the built-ins and a compiler.
type fixture struct {
	container *di.Container
	queue     *taskqueue.TaskQueue
	watches   *runtime.HostWatches
	resources *runtime.ViewResources
	compiler  *compiler.ViewCompiler
}

func newFixture(t *testing.T, resources ...*runtime.BehaviorResource) *fixture {
	t.Helper()
	f := &fixture{
		container: di.New(),
		queue:     taskqueue.New(),
		resources: runtime.NewViewResources(nil),
		compiler:  compiler.New(nil),
	}
	f.watches = runtime.Configure(f.container, f.queue)
	if err := behaviors.Register(f.resources); err != nil {
		t.Fatalf("Expected built-ins to register, got %v", err)
	}
	for _, res := range resources {
		if err := f.resources.Register(res); err != nil {
			t.Fatalf("Expected %s to register, got %v", res, err)
		}
	}
	return f
}

func (f *fixture) compile(t *testing.T, markup string) *runtime.ViewFactory {
	t.Helper()
	factory, err := f.compiler.Compile(markup, f.resources, compiler.Options{})
	if err != nil {
		t.Fatalf("Expected markup to compile, got %v", err)
	}
	return factory
}

// render compiles markup, binds it to ctx and attaches it under a <body> element.
func (f *fixture) render(t *testing.T, markup string, ctx any) (*runtime.View, *vdom.VNode) {
	t.Helper()
	factory := f.compile(t, markup)
	view, err := factory.Create(f.container.CreateChild(), runtime.CreateOptions{Scope: binding.NewScope(ctx, nil)})
	if err != nil {
		t.Fatalf("Expected view creation to succeed, got %v", err)
	}
	body := vdom.NewElement("body")
	view.AppendNodesTo(body)
	view.Attached()
	return view, body
}

func (f *fixture) flush() {
	f.queue.Drain()
}
