package inspect

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Report is the outcome of checking a module.
type Report struct {
	Module      string           `yaml:"module"`
	Templates   []TemplateReport `yaml:"templates"`
	Diagnostics []Diagnostic     `yaml:"diagnostics,omitempty"`
}

// TemplateReport describes one compiled element template.
type TemplateReport struct {
	Element      string               `yaml:"element"`
	Path         string               `yaml:"path"`
	Struct       string               `yaml:"struct,omitempty"`
	Properties   []string             `yaml:"properties,omitempty"`
	Surrogate    *InstructionSummary  `yaml:"surrogate,omitempty"`
	Instructions []InstructionSummary `yaml:"instructions,omitempty"`
}

// InstructionSummary is the readable form of a target instruction.
type InstructionSummary struct {
	ID               int                  `yaml:"id"`
	Kind             string               `yaml:"kind"`
	InjectorID       int                  `yaml:"injector,omitempty"`
	ParentInjectorID int                  `yaml:"parent_injector,omitempty"`
	Behaviors        []string             `yaml:"behaviors,omitempty"`
	Expressions      []string             `yaml:"expressions,omitempty"`
	Slot             string               `yaml:"slot,omitempty"`
	Destination      string               `yaml:"destination,omitempty"`
	Fallback         bool                 `yaml:"fallback,omitempty"`
	ViewCache        int                  `yaml:"view_cache,omitempty"`
	Nested           []InstructionSummary `yaml:"nested,omitempty"`
}

// Diagnostic is a template that failed to compile.
type Diagnostic struct {
	Path    string `yaml:"path"`
	Element string `yaml:"element"`
	Message string `yaml:"message"`
}

// OK reports whether every template compiled.
func (r *Report) OK() bool { return len(r.Diagnostics) == 0 }

// WriteYAML writes the whole report as YAML.
func (r *Report) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return enc.Close()
}

// WriteText writes one line per template followed by the diagnostics.
func (r *Report) WriteText(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "module %s: %d templates, %d errors\n", r.Module, len(r.Templates), len(r.Diagnostics))
	failed := make(map[string]bool, len(r.Diagnostics))
	for _, d := range r.Diagnostics {
		failed[d.Path] = true
	}
	for _, t := range r.Templates {
		status := "ok"
		if failed[t.Path] {
			status = "FAIL"
		}
		fmt.Fprintf(&b, "  %-4s <%s> %s (%d instructions)\n", status, t.Element, t.Path, len(t.Instructions))
	}
	for _, d := range r.Diagnostics {
		fmt.Fprintf(&b, "\n%s <%s>:\n%s\n", d.Path, d.Element, d.Message)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
