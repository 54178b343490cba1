package vdom

import "testing"

func TestMatches(t *testing.T) {
	frag := MustParseFragment(`<div id="root"><ul><li class="item active">a</li></ul></div>`)
	li := frag.FirstChild.FirstChild.FirstChild

	tests := []struct {
		selector string
		want     bool
	}{
		{"li", true},
		{".item.active", true},
		{"#root li", true},
		{"ul > li", true},
		{"div > li", false},
		{"span", false},
		{"*", true},
	}
	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			got, err := Matches(li, tt.selector)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestMatches_InvalidSelector(t *testing.T) {
	if _, err := Matches(NewElement("p"), "[["); err == nil {
		t.Errorf("Expected an error for an invalid selector")
	}
}

func TestMatches_NonElement(t *testing.T) {
	got, err := Matches(NewText("x"), "*")
	if err != nil || got {
		t.Errorf("Expected text nodes never to match, got %v, %v", got, err)
	}
}
