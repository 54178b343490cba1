package compiler

import (
	"errors"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vcrobe/nojs-templating/behaviors"
	"github.com/vcrobe/nojs-templating/binding"
	"github.com/vcrobe/nojs-templating/runtime"
	"github.com/vcrobe/nojs-templating/vdom"
)

type greeting struct {
	Name string
}

func newResources(t *testing.T, extra ...*runtime.BehaviorResource) *runtime.ViewResources {
	t.Helper()
	resources := runtime.NewViewResources(nil)
	if err := behaviors.Register(resources); err != nil {
		t.Fatalf("Expected built-ins to register, got %v", err)
	}
	for _, res := range extra {
		if err := resources.Register(res); err != nil {
			t.Fatalf("Expected %s to register, got %v", res, err)
		}
	}
	return resources
}

// instructions returns the instructions of f ordered by marker id.
func instructions(f *runtime.ViewFactory) []*runtime.TargetInstruction {
	ids := make([]int, 0, len(f.Instructions()))
	for id := range f.Instructions() {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]*runtime.TargetInstruction, 0, len(ids))
	for _, id := range ids {
		out = append(out, f.Instructions()[id])
	}
	return out
}

func kinds(f *runtime.ViewFactory) []runtime.TargetKind {
	var out []runtime.TargetKind
	for _, ins := range instructions(f) {
		out = append(out, ins.Kind)
	}
	return out
}

func TestCompile_TextInterpolation(t *testing.T) {
	// Arrange
	c := New(nil)

	// Act
	f, err := c.Compile(`<p>Hello {name}</p>`, newResources(t), Options{})

	// Assert
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	want := `<p><nojs-marker nojs-target-id="1"></nojs-marker> </p>`
	if got := vdom.InnerHTML(f.Template()); got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
	ins := f.Instructions()[1]
	if ins == nil || ins.Kind != runtime.TargetContentExpression {
		t.Fatalf("Expected a content expression instruction, got %+v", ins)
	}
	expr, ok := ins.ContentExpression.(*binding.InterpolationExpression)
	if !ok || !cmp.Equal(expr.Paths(), []string{"name"}) {
		t.Errorf("Expected an interpolation of name, got %#v", ins.ContentExpression)
	}
}

func TestCompile_StaticMarkupHasNoInstructions(t *testing.T) {
	f, err := New(nil).Compile(`<ul class="plain"><li>one</li></ul>`, newResources(t), Options{})

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(f.Instructions()) != 0 {
		t.Errorf("Expected no instructions, got %d", len(f.Instructions()))
	}
	if got := vdom.InnerHTML(f.Template()); got != `<ul class="plain"><li>one</li></ul>` {
		t.Errorf("Expected markup to be kept, got %s", got)
	}
}

func TestCompile_AttributeBindings(t *testing.T) {
	// Arrange
	markup := `<a href.bind="url" class="link {kind}" title="static">x</a>`

	// Act
	f, err := New(nil).Compile(markup, newResources(t), Options{})

	// Assert
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	a := f.Template().FirstChild
	if a.HasAttr("href.bind") || a.HasAttr("class") {
		t.Errorf("Expected binding attributes to be consumed, got %v", a.Attrs)
	}
	if a.Attr("title") != "static" {
		t.Errorf("Expected static attribute to stay, got %v", a.Attrs)
	}
	ins := f.Instructions()[1]
	var targets []string
	for _, e := range ins.Expressions {
		targets = append(targets, e.TargetProperty())
	}
	if diff := cmp.Diff([]string{"href", "class"}, targets); diff != "" {
		t.Errorf("expression targets mismatch (-want +got):\n%s", diff)
	}
	if ins.InjectorID != 0 || len(ins.BehaviorInstructions) != 0 {
		t.Errorf("Expected a plain binding target without its own injector, got %+v", ins)
	}
}

func TestCompile_LiftingCreatesNestedFactory(t *testing.T) {
	// Act
	f, err := New(nil).Compile(`<div if.bind="visible" class="a">x</div>`, newResources(t), Options{})

	// Assert
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got := vdom.InnerHTML(f.Template()); got != `<!--view--><template nojs-target-id="1"></template>` {
		t.Errorf("Expected a view comment and an anchor, got %s", got)
	}
	ins := f.Instructions()[1]
	if ins.Kind != runtime.TargetLifting {
		t.Fatalf("Expected a lifting instruction, got %s", ins.Kind)
	}
	lift := ins.BehaviorInstructions[0]
	if lift.Type != behaviors.IfResource {
		t.Errorf("Expected the if resource, got %s", lift.Type)
	}
	if expr, ok := lift.Attributes["condition"].(*binding.PathExpression); !ok || expr.Path != "visible" {
		t.Errorf("Expected condition bound to visible, got %#v", lift.Attributes["condition"])
	}
	nested := ins.ViewFactory()
	if nested == nil {
		t.Fatal("Expected a nested view factory")
	}
	if got := vdom.InnerHTML(nested.Template()); got != `<div class="a">x</div>` {
		t.Errorf("Expected the lifted element without its controller, got %s", got)
	}
}

func TestCompile_LiftedTemplateContributesContent(t *testing.T) {
	f, err := New(nil).Compile(`<div><template if.bind="ok"><b>a</b><i>b</i></template></div>`, newResources(t), Options{})

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	nested := f.Instructions()[1].ViewFactory()
	if got := vdom.InnerHTML(nested.Template()); got != `<b>a</b><i>b</i>` {
		t.Errorf("Expected the template content, got %s", got)
	}
}

func TestCompile_FirstTemplateControllerWins(t *testing.T) {
	// Act
	f, err := New(nil).Compile(`<div if.bind="a" repeat.for="x of xs">{x}</div>`, newResources(t), Options{})

	// Assert
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	outer := f.Instructions()[1]
	if outer.Kind != runtime.TargetLifting || outer.BehaviorInstructions[0].Type != behaviors.IfResource {
		t.Fatalf("Expected the outer lift to be if, got %+v", outer)
	}
	nested := outer.ViewFactory()
	if diff := cmp.Diff([]runtime.TargetKind{runtime.TargetContentExpression}, kinds(nested)); diff != "" {
		t.Errorf("Expected the second controller not to be lifted (-want +got):\n%s", diff)
	}
	if !nested.Template().FirstChild.HasAttr("repeat.for") {
		t.Errorf("Expected repeat.for to stay as a static attribute")
	}
}

func TestCompile_StrictLiftingRejectsSecondController(t *testing.T) {
	c := New(nil)
	c.StrictLifting = true

	_, err := c.Compile(`<div if.bind="a" repeat.for="x of xs"></div>`, newResources(t), Options{})

	if !errors.Is(err, runtime.ErrDuplicateLift) {
		t.Fatalf("Expected ErrDuplicateLift, got %v", err)
	}
	if kind, ok := runtime.KindOf(err); !ok || kind != runtime.KindCompile {
		t.Errorf("Expected a compile error, got %v", kind)
	}
}

func TestCompile_ViewCache(t *testing.T) {
	tests := []struct {
		name        string
		markup      string
		defaultSize int
		want        int
	}{
		{"explicit size", `<div if.bind="x" view-cache="3"></div>`, 0, 3},
		{"unbounded", `<div if.bind="x" view-cache="*"></div>`, 0, math.MaxInt},
		{"compiler default", `<div if.bind="x"></div>`, 5, 5},
		{"explicit beats default", `<div if.bind="x" view-cache="2"></div>`, 5, 2},
		{"no cache", `<div if.bind="x"></div>`, 0, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			c := New(nil)
			c.DefaultViewCacheSize = tt.defaultSize

			// Act
			f, err := c.Compile(tt.markup, newResources(t), Options{})

			// Assert
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			nested := f.Instructions()[1].ViewFactory()
			if nested.CacheSize() != tt.want {
				t.Errorf("Expected cache size %d, got %d", tt.want, nested.CacheSize())
			}
			if nested.Template().FirstChild.HasAttr("view-cache") {
				t.Errorf("Expected view-cache to be consumed")
			}
		})
	}
}

func TestCompile_InvalidViewCache(t *testing.T) {
	_, err := New(nil).Compile(`<div if.bind="x" view-cache="lots"></div>`, newResources(t), Options{})

	var ce *runtime.CompileError
	if !errors.As(err, &ce) || ce.Op != "compile.view-cache" {
		t.Errorf("Expected a view-cache compile error, got %v", err)
	}
	var numErr *strconv.NumError
	if !errors.As(err, &numErr) {
		t.Errorf("Expected the parse error to be wrapped, got %v", err)
	}
}

func TestCompile_InjectorIDsNest(t *testing.T) {
	// Act
	f, err := New(nil).Compile(`<div show.bind="a"><span show.bind="b"></span></div>`, newResources(t), Options{})

	// Assert
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	got := [][2]int{}
	for _, ins := range instructions(f) {
		got = append(got, [2]int{ins.InjectorID, ins.ParentInjectorID})
	}
	if diff := cmp.Diff([][2]int{{1, 0}, {2, 1}}, got); diff != "" {
		t.Errorf("injector ids mismatch (-want +got):\n%s", diff)
	}
	show := f.Instructions()[1].BehaviorInstructions[0]
	if _, ok := show.Attributes["show"].(*binding.PathExpression); !ok {
		t.Errorf("Expected show.bind to target the default property, got %#v", show.Attributes)
	}
}

func TestCompile_CustomElement(t *testing.T) {
	// Arrange
	greetingResource := &runtime.BehaviorResource{
		ElementName:   "x-greeting",
		Template:      `<b>Hi {name}</b>`,
		Properties:    []*runtime.BindableProperty{{Name: "Name"}},
		ViewModelType: reflect.TypeFor[*greeting](),
	}
	resources := newResources(t, greetingResource)

	// Act
	f, err := New(nil).Compile(`<x-greeting name.bind="user" title="t">light <i>dom</i></x-greeting>`, resources, Options{})

	// Assert
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	want := `<x-greeting title="t" nojs-target-id="1"><nojs-content>light <i>dom</i></nojs-content></x-greeting>`
	if got := vdom.InnerHTML(f.Template()); got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
	ins := f.Instructions()[1]
	if ins.ElementInstruction == nil || ins.ElementInstruction.Type != greetingResource {
		t.Fatalf("Expected an element instruction, got %+v", ins)
	}
	if expr, ok := ins.ElementInstruction.Attributes["name"].(*binding.PathExpression); !ok || expr.Path != "user" {
		t.Errorf("Expected name bound to user, got %#v", ins.ElementInstruction.Attributes["name"])
	}
	if greetingResource.ViewFactory() == nil {
		t.Errorf("Expected the element template to be compiled on first use")
	}
}

func TestCompile_CustomAttributeOptions(t *testing.T) {
	// Arrange
	tooltip := &runtime.BehaviorResource{
		AttributeName: "tooltip",
		Properties:    []*runtime.BindableProperty{{Name: "Text"}, {Name: "Position"}},
	}
	resources := newResources(t, tooltip)

	// Act
	f, err := New(nil).Compile(`<span tooltip="text.bind: message; position: top">x</span>`, resources, Options{})

	// Assert
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	bi := f.Instructions()[1].BehaviorInstructions[0]
	if bi.Attributes["position"] != "top" {
		t.Errorf("Expected literal position, got %#v", bi.Attributes["position"])
	}
	if expr, ok := bi.Attributes["text"].(*binding.PathExpression); !ok || expr.Path != "message" {
		t.Errorf("Expected text bound to message, got %#v", bi.Attributes["text"])
	}
	if f.Template().FirstChild.HasAttr("tooltip") {
		t.Errorf("Expected the attribute to be consumed")
	}
}

func TestCompile_UnknownOption(t *testing.T) {
	tooltip := &runtime.BehaviorResource{
		AttributeName: "tooltip",
		Properties:    []*runtime.BindableProperty{{Name: "Text"}, {Name: "Position"}},
	}

	_, err := New(nil).Compile(`<span tooltip="color: red"></span>`, newResources(t, tooltip), Options{})

	if !errors.Is(err, errUnknownOption) {
		t.Errorf("Expected errUnknownOption, got %v", err)
	}
}

func TestCompile_Slots(t *testing.T) {
	// Act
	f, err := New(nil).Compile(`<div><slot name="header">Default</slot><slot></slot></div>`, newResources(t), Options{})

	// Assert
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	all := instructions(f)
	if len(all) != 2 {
		t.Fatalf("Expected two slot instructions, got %d", len(all))
	}
	if all[0].SlotName != "header" || all[0].SlotFallbackFactory == nil {
		t.Errorf("Expected a header slot with fallback, got %+v", all[0])
	}
	if all[1].SlotName != runtime.DefaultSlotKey || all[1].SlotFallbackFactory != nil {
		t.Errorf("Expected a default slot without fallback, got %+v", all[1])
	}
	if got := vdom.InnerHTML(all[0].SlotFallbackFactory.Template()); got != "Default" {
		t.Errorf("Expected fallback markup, got %s", got)
	}
}

func TestCompile_SlotsLeftToShadowDOM(t *testing.T) {
	f, err := New(nil).Compile(`<div><slot name="header"></slot></div>`, newResources(t), Options{TargetShadowDOM: true})

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(f.Instructions()) != 0 {
		t.Errorf("Expected native slots to stay untouched, got %d instructions", len(f.Instructions()))
	}
}

func TestCompile_PassThroughSlot(t *testing.T) {
	f, err := New(nil).Compile(`<x-inner><slot name="title" slot="header"></slot></x-inner>`, newResources(t), Options{})

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	ins := instructions(f)[0]
	if ins.Kind != runtime.TargetShadowSlot || ins.SlotDestination != "header" {
		t.Errorf("Expected a pass-through slot to header, got %+v", ins)
	}
}

func TestCompile_Let(t *testing.T) {
	f, err := New(nil).Compile(`<let full-name.bind="user.name"></let><p>{fullName}</p>`, newResources(t), Options{})

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if diff := cmp.Diff([]runtime.TargetKind{runtime.TargetLetElement, runtime.TargetContentExpression}, kinds(f)); diff != "" {
		t.Errorf("kinds mismatch (-want +got):\n%s", diff)
	}
	if n := len(f.Instructions()[1].LetExpressions); n != 1 {
		t.Errorf("Expected one let expression, got %d", n)
	}
}

func TestCompileElement_Surrogate(t *testing.T) {
	// Arrange
	card := &runtime.BehaviorResource{
		ElementName:   "x-card",
		Template:      `<template class="card" id="main" role="region"><div></div></template>`,
		ViewModelType: reflect.TypeFor[*greeting](),
	}

	// Act
	err := New(nil).CompileElement(card, newResources(t))

	// Assert
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	surrogate := card.ViewFactory().Surrogate()
	if surrogate == nil {
		t.Fatal("Expected a surrogate instruction")
	}
	want := []vdom.Attr{{Key: "class", Val: "card"}, {Key: "role", Val: "region"}}
	if diff := cmp.Diff(want, surrogate.Values); diff != "" {
		t.Errorf("surrogate values mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileElement_LiftOnSurrogateFails(t *testing.T) {
	card := &runtime.BehaviorResource{
		ElementName:   "x-card",
		Template:      `<template if.bind="visible"><div></div></template>`,
		ViewModelType: reflect.TypeFor[*greeting](),
	}

	err := New(nil).CompileElement(card, newResources(t))

	if !errors.Is(err, runtime.ErrLiftOnSurrogate) {
		t.Fatalf("Expected ErrLiftOnSurrogate, got %v", err)
	}
	if card.ViewFactory() != nil {
		t.Errorf("Expected no view factory after a failed compile")
	}
}

func TestCompile_InvalidBinding(t *testing.T) {
	_, err := New(nil).Compile(`<input value.bind="a + b">`, newResources(t), Options{})

	if !errors.Is(err, binding.ErrInvalidExpression) {
		t.Errorf("Expected ErrInvalidExpression, got %v", err)
	}
	if !strings.Contains(err.Error(), "compile.attribute") {
		t.Errorf("Expected the operation in the message, got %v", err)
	}
}
