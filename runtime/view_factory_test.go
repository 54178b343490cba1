package runtime_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/vcrobe/nojs-templating/binding"
	"github.com/vcrobe/nojs-templating/observation"
	"github.com/vcrobe/nojs-templating/runtime"
	"github.com/vcrobe/nojs-templating/vdom"
)

func TestViewFactory_CacheRoundTrip(t *testing.T) {
	// Arrange
	f := newFixture(t)
	factory := f.compile(t, `<p>{name}</p>`)
	factory.SetCacheSize(2, false)
	first := observation.NewObservableMap(nil, map[string]any{"name": "Ada"})
	second := observation.NewObservableMap(nil, map[string]any{"name": "Grace"})
	v1, err := factory.Create(f.container, runtime.CreateOptions{Scope: binding.NewScope(first, nil)})
	if err != nil {
		t.Fatalf("Expected view creation to succeed, got %v", err)
	}
	v1.Attached()

	// Act
	v1.ReturnToCache()
	subscribers := first.PropertyObserver("name").SubscriberCount()
	cached := factory.Cached()
	v2, err := factory.Create(f.container, runtime.CreateOptions{Scope: binding.NewScope(second, nil)})

	// Assert
	if err != nil {
		t.Fatalf("Expected view creation to succeed, got %v", err)
	}
	if subscribers != 0 {
		t.Errorf("Expected no residual subscriptions, got %d", subscribers)
	}
	if cached != 1 || factory.Cached() != 0 {
		t.Errorf("Expected one cached view then none, got %d and %d", cached, factory.Cached())
	}
	if v2 != v1 || !v2.FromCache() {
		t.Errorf("Expected the cached view to be reused")
	}
	if v1.IsAttached() {
		t.Errorf("Expected the cached view to be detached")
	}
	if got := vdom.InnerHTML(v2.Fragment()); got != `<p>Grace</p>` {
		t.Errorf("Expected the reused view bound to the new context, got %s", got)
	}
}

func TestViewFactory_CacheBounds(t *testing.T) {
	tests := []struct {
		name string
		size int
		want int
	}{
		{name: "disabled", size: -1, want: 0},
		{name: "zero", size: 0, want: 0},
		{name: "bounded", size: 2, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			factory := f.compile(t, `<i>x</i>`)
			factory.SetCacheSize(tt.size, false)
			var views []*runtime.View
			for range 3 {
				v, err := factory.Create(f.container, runtime.CreateOptions{})
				if err != nil {
					t.Fatalf("Expected view creation to succeed, got %v", err)
				}
				views = append(views, v)
			}

			for _, v := range views {
				v.ReturnToCache()
			}

			if got := factory.Cached(); got != tt.want {
				t.Errorf("Expected %d cached views, got %d", tt.want, got)
			}
		})
	}
}

func TestViewFactory_KeepExistingCacheSize(t *testing.T) {
	f := newFixture(t)
	factory := f.compile(t, `<i>x</i>`)

	factory.SetCacheSize(4, false)
	factory.SetCacheSize(9, true)

	if got := factory.CacheSize(); got != 4 {
		t.Errorf("Expected the explicit size to win, got %d", got)
	}
}

func TestParseCacheSize(t *testing.T) {
	tests := []struct {
		value   string
		want    int
		wantErr bool
	}{
		{value: "3", want: 3},
		{value: " 7 ", want: 7},
		{value: "nope", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := runtime.ParseCacheSize(tt.value)

			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error %v, got %v", tt.wantErr, err)
			}
			if got != tt.want && !tt.wantErr {
				t.Errorf("Expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestViewSlot_OrdersViews(t *testing.T) {
	// Arrange
	f := newFixture(t)
	factory := f.compile(t, `<li>{label}</li>`)
	list := vdom.NewElement("ul")
	anchor := vdom.NewComment("anchor")
	list.AppendChild(anchor)
	slot := runtime.NewViewSlot(anchor, false)
	create := func(label string) *runtime.View {
		v, err := factory.Create(f.container, runtime.CreateOptions{Scope: binding.NewScope(map[string]any{"label": label}, nil)})
		if err != nil {
			t.Fatalf("Expected view creation to succeed, got %v", err)
		}
		return v
	}
	a, b, c := create("a"), create("b"), create("c")

	// Act
	slot.Attached()
	slot.Add(a)
	slot.Add(c)
	slot.Insert(1, b)
	inserted := vdom.InnerHTML(list)
	slot.Move(0, 2)
	moved := vdom.InnerHTML(list)
	slot.RemoveAt(0, false)

	// Assert
	if want := `<li>a</li><li>b</li><li>c</li><!--anchor-->`; inserted != want {
		t.Errorf("Expected %s, got %s", want, inserted)
	}
	if want := `<li>b</li><li>c</li><li>a</li><!--anchor-->`; moved != want {
		t.Errorf("Expected %s, got %s", want, moved)
	}
	if got := vdom.InnerHTML(list); got != `<li>c</li><li>a</li><!--anchor-->` {
		t.Errorf("Expected the first view removed, got %s", got)
	}
	if b.IsAttached() || !a.IsAttached() {
		t.Errorf("Expected only the removed view to be detached")
	}
	if got := len(slot.Children()); got != 2 {
		t.Errorf("Expected 2 children, got %d", got)
	}
}

type marker struct {
	Value string
}

func newMarkerResource() *runtime.BehaviorResource {
	return &runtime.BehaviorResource{
		AttributeName: "x-mark",
		ViewModelType: reflect.TypeFor[*marker](),
	}
}

func TestViewFactory_UnknownParentInjectorFails(t *testing.T) {
	// Arrange
	f := newFixture(t, newMarkerResource())
	res := f.resources.GetAttribute("x-mark")
	template := vdom.MustParseFragment(`<div nojs-target-id="1"></div>`)
	instructions := map[int]*runtime.TargetInstruction{
		1: runtime.NewNormalInstruction(1, 42,
			[]*runtime.BehaviorResource{res},
			[]*runtime.BehaviorInstruction{runtime.NewAttributeInstruction("x-mark", res)},
			nil, nil),
	}
	factory := runtime.NewViewFactory(template, instructions, f.resources)

	// Act
	_, err := factory.Create(f.container.CreateChild(), runtime.CreateOptions{})

	// Assert
	if !errors.Is(err, runtime.ErrUnknownInjector) {
		t.Fatalf("Expected ErrUnknownInjector, got %v", err)
	}
	if kind, ok := runtime.KindOf(err); !ok || kind != runtime.KindWireUp {
		t.Errorf("Expected a wire-up error, got %v", err)
	}
}

func TestViewFactory_UnknownTargetFails(t *testing.T) {
	f := newFixture(t)
	template := vdom.MustParseFragment(`<div nojs-target-id="7"></div>`)
	factory := runtime.NewViewFactory(template, map[int]*runtime.TargetInstruction{}, f.resources)

	_, err := factory.Create(f.container.CreateChild(), runtime.CreateOptions{})

	if !errors.Is(err, runtime.ErrUnknownInstruction) {
		t.Errorf("Expected ErrUnknownInstruction, got %v", err)
	}
}

func TestViewFactory_NestedScopesFollowMarkup(t *testing.T) {
	// Arrange
	f := newFixture(t, newMarkerResource())
	factory := f.compile(t, `<div x-mark="outer"><p><span x-mark="inner"></span></p></div><i x-mark="sibling"></i>`)
	root := f.container.CreateChild()

	// Act
	view, err := factory.Create(root, runtime.CreateOptions{})

	// Assert
	if err != nil {
		t.Fatalf("Expected view creation to succeed, got %v", err)
	}
	controllers := view.Controllers()
	if len(controllers) != 3 {
		t.Fatalf("Expected 3 controllers, got %d", len(controllers))
	}
	outer, inner, sibling := controllers[0], controllers[1], controllers[2]
	if got := outer.ViewModel().(*marker).Value; got != "outer" {
		t.Fatalf("Expected the outer marker first, got %q", got)
	}
	if outer.Container().Parent() != root {
		t.Errorf("Expected the outer scope to be a child of the view scope")
	}
	if inner.Container().Parent() != outer.Container() {
		t.Errorf("Expected the inner scope to be a child of the outer scope")
	}
	if sibling.Container().Parent() != root {
		t.Errorf("Expected the sibling scope to be a child of the view scope")
	}
}
