// Package compiler turns template markup into runtime view factories.
//
// Compilation is a single depth-first pass over the parsed tree. Every node that needs
// runtime wiring gets a runtime.TargetIDAttribute marker and an entry in the factory's
// instruction table; the markup itself is kept, so instantiating a view is a deep clone
// followed by applying the instructions in document order.
package compiler

import (
	"fmt"
	"strconv"

	"github.com/vcrobe/nojs-templating/binding"
	"github.com/vcrobe/nojs-templating/console"
	"github.com/vcrobe/nojs-templating/runtime"
	"github.com/vcrobe/nojs-templating/vdom"
)

// Options control one compilation.
type Options struct {
	// TargetShadowDOM leaves <slot> elements to a native shadow root instead of compiling
	// them into projection slots.
	TargetShadowDOM bool
	// CompileSurrogate compiles the attributes of a root <template> into a surrogate
	// instruction applied to the element host.
	CompileSurrogate bool
}

// ViewCompiler compiles templates against a resource registry.
type ViewCompiler struct {
	Language binding.Language
	// StrictLifting rejects elements carrying more than one template controller instead
	// of lifting only the first one.
	StrictLifting bool
	// DefaultViewCacheSize is the cache size of template controller views that do not
	// declare view-cache. Zero disables caching.
	DefaultViewCacheSize int
}

// New creates a compiler using language, or binding.DefaultLanguage when nil.
func New(language binding.Language) *ViewCompiler {
	if language == nil {
		language = binding.DefaultLanguage{}
	}
	return &ViewCompiler{Language: language}
}

// compileState is the per-template state of one compilation.
type compileState struct {
	compiler     *ViewCompiler
	resources    *runtime.ViewResources
	instructions map[int]*runtime.TargetInstruction
	source       string

	nextTargetID   int
	nextInjectorID int

	// lifted is the element whose first template controller was lifted into this
	// template; its remaining template controllers stay static.
	lifted *vdom.VNode
}

// Compile parses markup and compiles it. A markup made of a single <template> element
// compiles the template's content.
func (c *ViewCompiler) Compile(markup string, resources *runtime.ViewResources, opts Options) (*runtime.ViewFactory, error) {
	frag, err := vdom.ParseFragment(markup)
	if err != nil {
		return nil, &runtime.CompileError{Op: "compile.parse", Err: err}
	}
	return c.compile(frag, markup, resources, opts, nil)
}

// CompileNode compiles an already parsed tree in place. The node becomes the factory's
// template, which is what enhancing existing DOM needs.
func (c *ViewCompiler) CompileNode(node *vdom.VNode, resources *runtime.ViewResources, opts Options) (*runtime.ViewFactory, error) {
	return c.compile(node, vdom.OuterHTML(node), resources, opts, nil)
}

func (c *ViewCompiler) compile(source *vdom.VNode, markup string, resources *runtime.ViewResources, opts Options, lifted *vdom.VNode) (*runtime.ViewFactory, error) {
	content := source
	var root *vdom.VNode
	if t := soleTemplate(source); t != nil {
		root = t
		content = vdom.NewFragment(t.ChildNodes()...)
	}

	st := &compileState{
		compiler:       c,
		resources:      resources,
		instructions:   make(map[int]*runtime.TargetInstruction),
		source:         markup,
		nextTargetID:   1,
		nextInjectorID: runtime.RootInjectorID + 1,
		lifted:         lifted,
	}
	if content.Type == vdom.FragmentNode {
		for child := content.FirstChild; child != nil; {
			next, err := st.compileNode(child, runtime.RootInjectorID, !opts.TargetShadowDOM)
			if err != nil {
				return nil, err
			}
			child = next
		}
	} else if _, err := st.compileNode(content, runtime.RootInjectorID, !opts.TargetShadowDOM); err != nil {
		return nil, err
	}

	if first := content.FirstChild; first != nil && content.Type == vdom.FragmentNode && st.needsViewComment(first) {
		content.InsertBefore(vdom.NewComment("view"), first)
	}

	factory := runtime.NewViewFactory(content, st.instructions, resources)
	if root != nil {
		if opts.CompileSurrogate {
			surrogate, err := st.compileSurrogate(root)
			if err != nil {
				return nil, err
			}
			factory.SetSurrogate(surrogate)
		}
		if raw, ok := root.GetAttr("view-cache"); ok {
			size, err := runtime.ParseCacheSize(raw)
			if err != nil {
				return nil, &runtime.CompileError{Op: "compile.view-cache", Element: openTag(root), Err: err}
			}
			factory.SetCacheSize(size, false)
		}
	}

	console.Debug().Int("instructions", len(st.instructions)).Int("injectors", st.nextInjectorID-1).
		Bool("surrogate", factory.Surrogate() != nil).Msg("compiled template")
	return factory, nil
}

// soleTemplate returns the <template> element when it is the only non-blank node of a
// fragment, or the node itself when it is a <template>.
func soleTemplate(n *vdom.VNode) *vdom.VNode {
	if n.IsElement("template") {
		return n
	}
	if n.Type != vdom.FragmentNode {
		return nil
	}
	var found *vdom.VNode
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c.IsWhitespace(), c.Type == vdom.CommentNode:
			continue
		case c.IsElement("template") && found == nil:
			found = c
		default:
			return nil
		}
	}
	return found
}

// needsViewComment reports whether the first node of a template is an anchor that gets
// replaced at instantiation, which would leave the view without a stable first node.
func (st *compileState) needsViewComment(first *vdom.VNode) bool {
	raw, ok := first.GetAttr(runtime.TargetIDAttribute)
	if !ok {
		return false
	}
	id, _ := strconv.Atoi(raw)
	ins := st.instructions[id]
	return ins != nil && (ins.Kind == runtime.TargetShadowSlot || ins.Kind == runtime.TargetLifting)
}

// markTarget gives n a marker id and records its instruction.
func (st *compileState) markTarget(n *vdom.VNode, ins *runtime.TargetInstruction) {
	id := st.nextTargetID
	st.nextTargetID++
	n.SetAttr(runtime.TargetIDAttribute, strconv.Itoa(id))
	st.instructions[id] = ins
}

func (st *compileState) newInjectorID() int {
	id := st.nextInjectorID
	st.nextInjectorID++
	return id
}

func (st *compileState) compileError(op string, n *vdom.VNode, err error) error {
	return &runtime.CompileError{Op: op, Element: openTag(n), Err: err}
}

// openTag renders the start tag of n for diagnostics.
func openTag(n *vdom.VNode) string {
	if n == nil || n.Type != vdom.ElementNode {
		return ""
	}
	s := "<" + n.Tag
	for _, a := range n.Attrs {
		if a.Key == runtime.TargetIDAttribute {
			continue
		}
		s += fmt.Sprintf(" %s=%q", a.Key, a.Val)
	}
	return s + ">"
}
