// Package engine wires the templating runtime together: a root dependency container, the
// task queue, the resource registry with the built-in behaviors, and the compiler.
package engine

import (
	"fmt"

	"github.com/vcrobe/nojs-templating/behaviors"
	"github.com/vcrobe/nojs-templating/binding"
	"github.com/vcrobe/nojs-templating/compiler"
	"github.com/vcrobe/nojs-templating/config"
	"github.com/vcrobe/nojs-templating/console"
	"github.com/vcrobe/nojs-templating/di"
	"github.com/vcrobe/nojs-templating/runtime"
	"github.com/vcrobe/nojs-templating/taskqueue"
	"github.com/vcrobe/nojs-templating/vdom"
)

// Options configure a TemplatingEngine.
type Options struct {
	// Language classifies template content; binding.DefaultLanguage when nil.
	Language binding.Language
	// StrictLifting rejects elements with more than one template controller.
	StrictLifting bool
	// ViewCacheSize is the default cache size of template controller views.
	ViewCacheSize int
}

// OptionsFrom maps the project configuration onto engine options.
func OptionsFrom(cfg *config.Config) Options {
	return Options{
		StrictLifting: cfg.Compiler.DevMode,
		ViewCacheSize: cfg.Runtime.ViewCacheSize,
	}
}

// TemplatingEngine compiles and instantiates templates.
type TemplatingEngine struct {
	container *di.Container
	queue     *taskqueue.TaskQueue
	watches   *runtime.HostWatches
	resources *runtime.ViewResources
	compiler  *compiler.ViewCompiler
}

// New creates an engine with if, repeat and show registered.
func New(opts Options) (*TemplatingEngine, error) {
	e := &TemplatingEngine{
		container: di.New(),
		queue:     taskqueue.New(),
		resources: runtime.NewViewResources(nil),
		compiler:  compiler.New(opts.Language),
	}
	e.compiler.StrictLifting = opts.StrictLifting
	e.compiler.DefaultViewCacheSize = opts.ViewCacheSize
	e.watches = runtime.Configure(e.container, e.queue)
	di.Register(e.container, e.resources)
	di.Register(e.container, e.compiler)

	if err := behaviors.Register(e.resources); err != nil {
		return nil, fmt.Errorf("register built-in behaviors: %w", err)
	}
	return e, nil
}

func (e *TemplatingEngine) Container() *di.Container          { return e.container }
func (e *TemplatingEngine) Queue() *taskqueue.TaskQueue       { return e.queue }
func (e *TemplatingEngine) HostWatches() *runtime.HostWatches { return e.watches }
func (e *TemplatingEngine) Resources() *runtime.ViewResources { return e.resources }
func (e *TemplatingEngine) Compiler() *compiler.ViewCompiler  { return e.compiler }

// Register adds resources to the engine's registry.
func (e *TemplatingEngine) Register(resources ...*runtime.BehaviorResource) error {
	for _, res := range resources {
		if err := e.resources.Register(res); err != nil {
			return err
		}
	}
	return nil
}

// Compile compiles markup against the engine's registry.
func (e *TemplatingEngine) Compile(markup string) (*runtime.ViewFactory, error) {
	return e.compiler.Compile(markup, e.resources, compiler.Options{})
}

// Render compiles markup, binds a view of it to bindingContext and attaches it.
func (e *TemplatingEngine) Render(markup string, bindingContext any) (*runtime.View, error) {
	factory, err := e.Compile(markup)
	if err != nil {
		return nil, err
	}
	view, err := factory.Create(e.container.CreateChild(), runtime.CreateOptions{
		Scope: binding.NewScope(bindingContext, nil),
	})
	if err != nil {
		return nil, err
	}
	view.Attached()
	return view, nil
}

// Enhance compiles node where it is and binds it to bindingContext without cloning.
// The returned view is attached.
func (e *TemplatingEngine) Enhance(node *vdom.VNode, bindingContext any) (*runtime.View, error) {
	factory, err := e.compiler.CompileNode(node, e.resources, compiler.Options{})
	if err != nil {
		return nil, err
	}
	view, err := factory.Create(e.container.CreateChild(), runtime.CreateOptions{
		Enhance: true,
		Scope:   binding.NewScope(bindingContext, nil),
	})
	if err != nil {
		return nil, err
	}
	view.Attached()
	console.Debug().Str("node", node.Tag).Msg("enhanced")
	return view, nil
}

// Mount instantiates the element resource res on host, using viewModel when non-nil.
// The host's children become the element's light DOM. The controller is created, bound
// to its own view-model and attached.
func (e *TemplatingEngine) Mount(host *vdom.VNode, res *runtime.BehaviorResource, viewModel any) (*runtime.Controller, error) {
	if res.ElementName == "" {
		return nil, fmt.Errorf("mount %s: not an element", res)
	}
	if err := e.compiler.CompileElement(res, e.resources); err != nil {
		return nil, err
	}
	instruction := runtime.NewElementInstruction(res)
	instruction.ViewModel = viewModel
	instruction.Host = host
	c, err := res.CreateController(e.container, instruction)
	if err != nil {
		return nil, err
	}
	c.Automate(nil, nil)
	return c, nil
}

// Unmount detaches and unbinds a mounted controller.
func (e *TemplatingEngine) Unmount(c *runtime.Controller) {
	c.Detached()
	c.Unbind()
}

// Flush runs queued property notifications and host mutation deliveries until idle.
func (e *TemplatingEngine) Flush() {
	e.queue.Drain()
}
