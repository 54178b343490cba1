package vdom

import "testing"

func TestParseFragment_RoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		markup string
	}{
		{"text and elements", `<p class="a">Hi <b>there</b></p>`},
		{"comment", `<!--view--><span></span>`},
		{"template content kept as children", `<template><li>x</li></template>`},
		{"custom element", `<user-card name="Bob"><em>light</em></user-card>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frag, err := ParseFragment(tt.markup)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if frag.Type != FragmentNode {
				t.Fatalf("Expected a fragment, got %s", frag.Type)
			}
			if got := InnerHTML(frag); got != tt.markup {
				t.Errorf("Expected %s, got %s", tt.markup, got)
			}
		})
	}
}

func TestParseFragment_TemplateChildren(t *testing.T) {
	frag := MustParseFragment(`<template><li>x</li></template>`)

	tmpl := frag.FirstChild
	if !tmpl.IsElement("template") {
		t.Fatalf("Expected <template>, got %s", tmpl.Tag)
	}
	if !tmpl.FirstChild.IsElement("li") {
		t.Errorf("Expected template content to be a child <li>")
	}
}

func TestOuterHTML_ShadowRoot(t *testing.T) {
	host := Element("x-card", nil, NewText("light"))
	host.AttachShadow().AppendChild(Element("b", nil, NewText("shadow")))

	got := OuterHTML(host)

	want := `<x-card><template shadowrootmode="open"><b>shadow</b></template>light</x-card>`
	if got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}
