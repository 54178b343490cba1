package compiler

import (
	"fmt"

	"github.com/vcrobe/nojs-templating/runtime"
	"github.com/vcrobe/nojs-templating/vdom"
)

// liftElement moves n into the nested template of its template controller and leaves a
// <template> anchor in its place. The rest of n's attributes are compiled in the nested
// template. A lifted <template> element contributes its content instead of itself.
func (st *compileState) liftElement(n *vdom.VNode, attrs *classifiedAttributes) (*vdom.VNode, error) {
	lift := attrs.lifting
	n.RemoveAttr(attrs.liftAttr)

	anchor := vdom.NewElement("template")
	n.ReplaceWith(anchor)

	cacheRaw, hasCache := n.GetAttr("view-cache")
	n.RemoveAttr("view-cache")

	var nested *vdom.VNode
	if n.IsElement("template") {
		nested = vdom.NewFragment(n.ChildNodes()...)
	} else {
		nested = vdom.NewFragment(n)
	}
	factory, err := st.compiler.compile(nested, st.source, st.resources, Options{}, n)
	if err != nil {
		return nil, err
	}

	switch {
	case hasCache:
		size, err := runtime.ParseCacheSize(cacheRaw)
		if err != nil {
			return nil, st.compileError("compile.view-cache", n, err)
		}
		factory.SetCacheSize(size, false)
	case st.compiler.DefaultViewCacheSize > 0:
		factory.SetCacheSize(st.compiler.DefaultViewCacheSize, true)
	}
	lift.ViewFactory = factory
	return anchor, nil
}

// compileSurrogate compiles the attributes of an element template's root <template>.
// It returns nil when there is nothing to apply to the host.
func (st *compileState) compileSurrogate(root *vdom.VNode) (*runtime.TargetInstruction, error) {
	attrs, err := st.classifyAttributes(root, nil, true)
	if err != nil {
		return nil, err
	}
	if len(attrs.behaviors) == 0 && len(attrs.expressions) == 0 && len(attrs.values) == 0 {
		return nil, nil
	}
	providers := make([]*runtime.BehaviorResource, 0, len(attrs.behaviors))
	for _, bi := range attrs.behaviors {
		providers = append(providers, bi.Type)
	}
	return runtime.NewSurrogateInstruction(providers, attrs.behaviors, attrs.expressions, attrs.values), nil
}

// CompileElement compiles the template of an element resource unless it already has a
// view factory. Elements used in compiled markup are handled automatically; this is for
// elements instantiated directly.
func (c *ViewCompiler) CompileElement(res *runtime.BehaviorResource, resources *runtime.ViewResources) error {
	if err := res.Initialize(); err != nil {
		return err
	}
	st := &compileState{compiler: c, resources: resources}
	return st.ensureElementView(res)
}

// ensureElementView compiles the template of an element resource the first time the
// element is used. The template sees the resource's own registry plus its Dependencies.
// A template using itself finds the compile in progress and is resolved at runtime.
func (st *compileState) ensureElementView(res *runtime.BehaviorResource) error {
	if res.Template == "" || !res.BeginCompile() {
		return nil
	}
	defer res.EndCompile()

	parent := res.Registry()
	if parent == nil {
		parent = st.resources
	}
	local := parent.CreateChild()
	for _, dep := range res.Dependencies {
		if err := local.Register(dep); err != nil {
			return fmt.Errorf("register dependency of %s: %w", res, err)
		}
	}
	factory, err := st.compiler.Compile(res.Template, local, Options{TargetShadowDOM: res.UsesShadowDOM, CompileSurrogate: true})
	if err != nil {
		return fmt.Errorf("compile template of %s: %w", res, err)
	}
	res.SetViewFactory(factory)
	return nil
}
