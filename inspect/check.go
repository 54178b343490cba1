package inspect

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/vcrobe/nojs-templating/behaviors"
	"github.com/vcrobe/nojs-templating/binding"
	"github.com/vcrobe/nojs-templating/compiler"
	"github.com/vcrobe/nojs-templating/runtime"
)

// Checker compiles discovered components against one shared registry, so templates can
// use each other's elements.
type Checker struct {
	Compiler *compiler.ViewCompiler
}

// NewChecker creates a checker using c, or a default compiler when nil.
func NewChecker(c *compiler.ViewCompiler) *Checker {
	if c == nil {
		c = compiler.New(nil)
	}
	return &Checker{Compiler: c}
}

// Resource describes c as an element resource. It carries no view-model constructor and
// is only good for compiling.
func (c Component) Resource() *runtime.BehaviorResource {
	res := &runtime.BehaviorResource{ElementName: c.Element, Template: c.Markup}
	for _, p := range c.Properties {
		res.Properties = append(res.Properties, &runtime.BindableProperty{
			Name:               p.Name,
			Attribute:          p.Attribute,
			DefaultBindingMode: p.Mode,
			ChangeHandler:      p.ChangeHandler,
			PrimaryProperty:    p.Primary,
		})
	}
	return res
}

// Check compiles every component and returns the report. Compile failures become
// diagnostics; only a broken resource graph is returned as an error.
func (ch *Checker) Check(modulePath string, components []Component) (*Report, error) {
	registry := runtime.NewViewResources(nil)
	if err := behaviors.Register(registry); err != nil {
		return nil, err
	}
	resources := make([]*runtime.BehaviorResource, len(components))
	for i, c := range components {
		resources[i] = c.Resource()
		if err := registry.Register(resources[i]); err != nil {
			return nil, fmt.Errorf("register %s: %w", c.Path, err)
		}
	}

	report := &Report{Module: modulePath}
	for i, c := range components {
		res := resources[i]
		tr := TemplateReport{Element: c.Element, Path: c.Path, Struct: c.Struct}
		for _, p := range res.Properties {
			tr.Properties = append(tr.Properties, fmt.Sprintf("%s (%s, %s)", p.Attribute, p.Name, p.DefaultBindingMode))
		}
		if err := ch.Compiler.CompileElement(res, registry); err != nil {
			report.Diagnostics = append(report.Diagnostics, Diagnostic{
				Path:    c.Path,
				Element: c.Element,
				Message: compiler.Describe(c.Markup, err),
			})
		} else if f := res.ViewFactory(); f != nil {
			tr.Instructions = Summarize(f)
			if s := f.Surrogate(); s != nil {
				surrogate := summarizeInstruction(0, s)
				tr.Surrogate = &surrogate
			}
		}
		report.Templates = append(report.Templates, tr)
	}
	return report, nil
}

// Summarize renders the instruction table of f in marker id order.
func Summarize(f *runtime.ViewFactory) []InstructionSummary {
	table := f.Instructions()
	out := make([]InstructionSummary, 0, len(table))
	for _, id := range slices.Sorted(maps.Keys(table)) {
		out = append(out, summarizeInstruction(id, table[id]))
	}
	return out
}

func summarizeInstruction(id int, ins *runtime.TargetInstruction) InstructionSummary {
	s := InstructionSummary{
		ID:               id,
		Kind:             ins.Kind.String(),
		InjectorID:       ins.InjectorID,
		ParentInjectorID: ins.ParentInjectorID,
	}
	if ins.ContentExpression != nil {
		s.Expressions = append(s.Expressions, DescribeExpression(ins.ContentExpression))
	}
	for _, bi := range ins.BehaviorInstructions {
		s.Behaviors = append(s.Behaviors, describeBehavior(bi))
	}
	for _, expr := range ins.Expressions {
		s.Expressions = append(s.Expressions, DescribeExpression(expr))
	}
	for _, expr := range ins.LetExpressions {
		s.Expressions = append(s.Expressions, DescribeExpression(expr))
	}
	if ins.Kind == runtime.TargetShadowSlot {
		s.Slot = ins.SlotName
		s.Destination = ins.SlotDestination
		s.Fallback = ins.SlotFallbackFactory != nil
	}
	if nested := ins.ViewFactory(); nested != nil {
		s.Nested = Summarize(nested)
		s.ViewCache = nested.CacheSize()
	}
	return s
}

func describeBehavior(bi *runtime.BehaviorInstruction) string {
	var b strings.Builder
	b.WriteString(bi.Type.String())
	for _, key := range slices.Sorted(maps.Keys(bi.Attributes)) {
		switch v := bi.Attributes[key].(type) {
		case binding.Expression:
			fmt.Fprintf(&b, " %s=%s", key, DescribeExpression(v))
		default:
			fmt.Fprintf(&b, " %s=%q", key, v)
		}
	}
	return b.String()
}

// DescribeExpression renders an expression as "target <- source".
func DescribeExpression(expr binding.Expression) string {
	switch e := expr.(type) {
	case *binding.PathExpression:
		return fmt.Sprintf("%s <- %s (%s)", e.TargetProperty(), e.Path, e.Mode)
	case *binding.InterpolationExpression:
		return fmt.Sprintf("%s <- {%s}", e.TargetProperty(), strings.Join(e.Paths(), "} {"))
	case *binding.LetExpression:
		return fmt.Sprintf("let %s <- %s", e.Name, DescribeExpression(e.Source))
	case *binding.LiteralExpression:
		return fmt.Sprintf("%s <- %q", e.TargetProperty(), fmt.Sprint(e.Value))
	}
	return fmt.Sprintf("%s <- %T", expr.TargetProperty(), expr)
}
