package vdom

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func tags(nodes []*VNode) []string {
	var out []string
	for _, n := range nodes {
		switch n.Type {
		case ElementNode:
			out = append(out, n.Tag)
		case TextNode:
			out = append(out, "#"+n.Data)
		case CommentNode:
			out = append(out, "!"+n.Data)
		}
	}
	return out
}

func TestInsertBefore_FragmentIsEmptiedIntoTarget(t *testing.T) {
	// Arrange
	parent := Element("div", nil, NewElement("a"), NewElement("d"))
	frag := NewFragment(NewElement("b"), NewElement("c"))

	// Act
	parent.InsertBefore(frag, parent.LastChild)

	// Assert
	if diff := cmp.Diff([]string{"a", "b", "c", "d"}, tags(parent.ChildNodes())); diff != "" {
		t.Errorf("children mismatch (-want +got):\n%s", diff)
	}
	if frag.HasChildNodes() {
		t.Errorf("Expected fragment to be empty, got %d children", len(frag.ChildNodes()))
	}
	for _, c := range parent.ChildNodes() {
		if c.Parent != parent {
			t.Fatalf("Expected parent of <%s> to be the div", c.Tag)
		}
	}
}

func TestInsertBefore_MovesAttachedNode(t *testing.T) {
	// Arrange
	from := Element("ul", nil, NewElement("li"))
	to := NewElement("ol")
	item := from.FirstChild

	// Act
	to.AppendChild(item)

	// Assert
	if from.HasChildNodes() {
		t.Errorf("Expected source list to be empty after move")
	}
	if item.Parent != to || to.FirstChild != item || to.LastChild != item {
		t.Errorf("Expected item to be the only child of the target")
	}
}

func TestRemoveAndReplaceWith(t *testing.T) {
	// Arrange
	b := NewElement("b")
	parent := Element("p", nil, NewText("x"), b, NewText("y"))
	replacement := NewComment("anchor")

	// Act
	b.ReplaceWith(replacement)

	// Assert
	if diff := cmp.Diff([]string{"#x", "!anchor", "#y"}, tags(parent.ChildNodes())); diff != "" {
		t.Errorf("children mismatch (-want +got):\n%s", diff)
	}
	if b.Parent != nil || b.NextSibling != nil || b.PrevSibling != nil {
		t.Errorf("Expected replaced node to be fully detached")
	}

	replacement.Remove()
	if got := parent.TextContent(); got != "xy" {
		t.Errorf("Expected text content 'xy', got '%s'", got)
	}
}

func TestClone_DeepCopyWithoutOwner(t *testing.T) {
	// Arrange
	src := Element("div", map[string]string{"id": "root"}, Element("span", nil, NewText("hi")))
	src.Owner = "slot"

	// Act
	clone := src.Clone(true)
	clone.SetAttr("id", "copy")

	// Assert
	if clone.Owner != nil {
		t.Errorf("Expected Owner not to be cloned, got %v", clone.Owner)
	}
	if got := src.Attr("id"); got != "root" {
		t.Errorf("Expected source attribute to stay 'root', got '%s'", got)
	}
	if clone.FirstChild == src.FirstChild {
		t.Fatalf("Expected deep clone to copy children")
	}
	if got := OuterHTML(clone); got != `<div id="copy"><span>hi</span></div>` {
		t.Errorf("Expected cloned markup, got %s", got)
	}
}

func TestAttributes(t *testing.T) {
	n := NewElement("input")
	n.SetAttr("value", "a")
	n.SetAttr("value", "b")
	n.AddClass("x")
	n.AddClass("x")
	n.AddClass("y")

	if got := n.Attr("value"); got != "b" {
		t.Errorf("Expected value 'b', got '%s'", got)
	}
	if diff := cmp.Diff([]string{"x", "y"}, n.Classes()); diff != "" {
		t.Errorf("classes mismatch (-want +got):\n%s", diff)
	}
	n.RemoveAttr("value")
	if n.HasAttr("value") {
		t.Errorf("Expected value attribute to be removed")
	}
}

func TestQueryAll_ExcludesRoot(t *testing.T) {
	root := MustParseFragment(`<p><b></b></p><b><i></i></b>`)

	found := root.QueryAll(func(n *VNode) bool { return n.Type == ElementNode })

	if diff := cmp.Diff([]string{"p", "b", "b", "i"}, tags(found)); diff != "" {
		t.Errorf("query mismatch (-want +got):\n%s", diff)
	}
}
