package inspect

import (
	"bytes"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vcrobe/nojs-templating/binding"
)

const userCardSource = `package demo

type UserCard struct {
	Title string   ` + "`bindable:\"\"`" + `
	Tags  []string ` + "`bindable:\"tags,one-time\"`" + `
	Label string   ` + "`bindable:\"caption,primary,changed=OnLabel\"`" + `
	count int      ` + "`bindable:\"\"`" + `
	Plain string
}
`

func TestElementName(t *testing.T) {
	tests := []struct {
		file    string
		pattern string
		want    string
	}{
		{file: "user-card.nojs.html", pattern: "*.nojs.html", want: "user-card"},
		{file: "card.nojs.html", pattern: "*.nojs.html", want: "card"},
		{file: "panel.tpl.html", pattern: "panel.*", want: "panel"},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			if got := ElementName(tt.file, tt.pattern); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestStructName(t *testing.T) {
	tests := map[string]string{
		"user-card": "UserCard",
		"card":      "Card",
		"x-tab-bar": "XTabBar",
	}
	for element, want := range tests {
		if got := StructName(element); got != want {
			t.Errorf("StructName(%q): expected %q, got %q", element, want, got)
		}
	}
}

func TestParseBindable(t *testing.T) {
	tests := []struct {
		name    string
		tag     string
		want    Property
		wantErr bool
	}{
		{name: "empty", tag: "", want: Property{Name: "Value", GoType: "string"}},
		{name: "attribute and mode", tag: "val,two-way", want: Property{Name: "Value", GoType: "string", Attribute: "val", Mode: binding.TwoWay}},
		{name: "primary", tag: ",primary", want: Property{Name: "Value", GoType: "string", Primary: true}},
		{name: "change handler", tag: ",changed=OnValue", want: Property{Name: "Value", GoType: "string", ChangeHandler: "OnValue"}},
		{name: "unknown mode", tag: ",sideways", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseBindable("Value", "string", tt.tag)

			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error %v, got %v", tt.wantErr, err)
			}
			if tt.wantErr {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("property mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStructProperties(t *testing.T) {
	// Arrange
	file, err := parser.ParseFile(token.NewFileSet(), "demo.go", userCardSource, 0)
	if err != nil {
		t.Fatalf("Failed to parse source: %v", err)
	}
	var st *ast.StructType
	ast.Inspect(file, func(n ast.Node) bool {
		if s, ok := n.(*ast.StructType); ok {
			st = s
		}
		return st == nil
	})

	// Act
	props, err := structProperties(st)

	// Assert
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	want := []Property{
		{Name: "Title", GoType: "string"},
		{Name: "Tags", GoType: "[]string", Attribute: "tags", Mode: binding.OneTime},
		{Name: "Label", GoType: "string", Attribute: "caption", Primary: true, ChangeHandler: "OnLabel"},
	}
	if diff := cmp.Diff(want, props); diff != "" {
		t.Errorf("properties mismatch (-want +got):\n%s", diff)
	}
}

func TestInspectPackage(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	goFile := filepath.Join(dir, "demo.go")
	if err := os.WriteFile(goFile, []byte(userCardSource), 0o644); err != nil {
		t.Fatalf("Failed to write source: %v", err)
	}
	card := &Component{Element: "user-card", Path: filepath.Join(dir, "user-card.nojs.html")}
	orphan := &Component{Element: "x-orphan", Path: filepath.Join(dir, "x-orphan.nojs.html")}

	// Act
	err := inspectPackage([]string{goFile}, []*Component{card, orphan})

	// Assert
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if card.Struct != "UserCard" || len(card.Properties) != 3 {
		t.Errorf("Expected UserCard with 3 properties, got %q with %d", card.Struct, len(card.Properties))
	}
	if orphan.Struct != "" || orphan.Properties != nil {
		t.Errorf("Expected no struct for the orphan template, got %q", orphan.Struct)
	}
}

func TestCheck(t *testing.T) {
	// Arrange
	components := []Component{
		{
			Element: "user-card",
			Path:    "views/user-card.nojs.html",
			Markup:  `<div><h2>{title}</h2><p repeat.for="tag of tags">{tag}</p></div>`,
			Struct:  "UserCard",
			Properties: []Property{
				{Name: "Title", GoType: "string"},
				{Name: "Tags", GoType: "[]string"},
			},
		},
		{
			Element: "user-list",
			Path:    "views/user-list.nojs.html",
			Markup:  `<user-card title.bind="name"></user-card>`,
		},
		{
			Element: "x-broken",
			Path:    "views/x-broken.nojs.html",
			Markup:  "<div>\n  <p title.bind=\"a + b\"></p>\n</div>",
		},
	}

	// Act
	report, err := NewChecker(nil).Check("example.com/shop", components)

	// Assert
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if report.OK() || len(report.Diagnostics) != 1 || len(report.Templates) != 3 {
		t.Fatalf("Expected 3 templates and 1 diagnostic, got %d and %d", len(report.Templates), len(report.Diagnostics))
	}
	if d := report.Diagnostics[0]; d.Element != "x-broken" || !strings.Contains(d.Message, "(line 2)") {
		t.Errorf("Expected a located diagnostic for x-broken, got %+v", d)
	}

	card := report.Templates[0]
	kinds := make([]string, 0, len(card.Instructions))
	for _, ins := range card.Instructions {
		kinds = append(kinds, ins.Kind)
	}
	if diff := cmp.Diff([]string{"content-expression", "lifting"}, kinds); diff != "" {
		t.Errorf("instruction kinds mismatch (-want +got):\n%s", diff)
	}
	repeat := card.Instructions[1]
	if len(repeat.Behaviors) != 1 || !strings.HasPrefix(repeat.Behaviors[0], "repeat") || len(repeat.Nested) != 1 {
		t.Errorf("Expected a repeat with one nested instruction, got %+v", repeat)
	}
	if len(card.Properties) != 2 {
		t.Errorf("Expected 2 properties, got %v", card.Properties)
	}

	list := report.Templates[1]
	if len(list.Instructions) != 1 || !strings.HasPrefix(list.Instructions[0].Behaviors[0], "<user-card>") {
		t.Errorf("Expected user-list to use user-card, got %+v", list.Instructions)
	}
}

func TestDescribeExpression(t *testing.T) {
	tests := []struct {
		name string
		expr binding.Expression
		want string
	}{
		{name: "path", expr: binding.NewPathExpression("title", "user.name", binding.TwoWay), want: "title <- user.name (two-way)"},
		{name: "literal", expr: binding.NewLiteralExpression("role", "region"), want: `role <- "region"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DescribeExpression(tt.expr); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestReport_WriteText(t *testing.T) {
	// Arrange
	report := &Report{
		Module: "example.com/shop",
		Templates: []TemplateReport{
			{Element: "a", Path: "a.html", Instructions: make([]InstructionSummary, 2)},
			{Element: "b", Path: "b.html"},
		},
		Diagnostics: []Diagnostic{{Path: "b.html", Element: "b", Message: "boom"}},
	}
	var buf bytes.Buffer

	// Act
	err := report.WriteText(&buf)

	// Assert
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	want := "module example.com/shop: 2 templates, 1 errors\n" +
		"  ok   <a> a.html (2 instructions)\n" +
		"  FAIL <b> b.html (0 instructions)\n" +
		"\nb.html <b>:\nboom\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("text report mismatch (-want +got):\n%s", diff)
	}
}

func TestReport_WriteYAML(t *testing.T) {
	report := &Report{
		Module:    "example.com/shop",
		Templates: []TemplateReport{{Element: "a", Path: "a.html", Instructions: []InstructionSummary{{ID: 1, Kind: "lifting", ViewCache: 3}}}},
	}
	var buf bytes.Buffer

	err := report.WriteYAML(&buf)

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	out := buf.String()
	for _, want := range []string{"module: example.com/shop", "element: a", "kind: lifting", "view_cache: 3"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in the YAML report, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "diagnostics") {
		t.Errorf("Expected empty diagnostics to be omitted, got:\n%s", out)
	}
}
