package behaviors_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vcrobe/nojs-templating/behaviors"
	"github.com/vcrobe/nojs-templating/binding"
	"github.com/vcrobe/nojs-templating/compiler"
	"github.com/vcrobe/nojs-templating/di"
	"github.com/vcrobe/nojs-templating/observation"
	"github.com/vcrobe/nojs-templating/runtime"
	"github.com/vcrobe/nojs-templating/taskqueue"
	"github.com/vcrobe/nojs-templating/vdom"
)

type rendered struct {
	view  *runtime.View
	body  *vdom.VNode
	queue *taskqueue.TaskQueue
}

func (r *rendered) html() string {
	r.queue.Drain()
	return vdom.InnerHTML(r.body)
}

func render(t *testing.T, markup string, ctx any) *rendered {
	t.Helper()
	container := di.New()
	queue := taskqueue.New()
	runtime.Configure(container, queue)
	resources := runtime.NewViewResources(nil)
	if err := behaviors.Register(resources); err != nil {
		t.Fatalf("Expected built-ins to register, got %v", err)
	}
	factory, err := compiler.New(nil).Compile(markup, resources, compiler.Options{})
	if err != nil {
		t.Fatalf("Expected markup to compile, got %v", err)
	}
	view, err := factory.Create(container, runtime.CreateOptions{Scope: binding.NewScope(ctx, nil)})
	if err != nil {
		t.Fatalf("Expected view creation to succeed, got %v", err)
	}
	body := vdom.NewElement("body")
	view.AppendNodesTo(body)
	view.Attached()
	return &rendered{view: view, body: body, queue: queue}
}

func TestIf_TogglesContent(t *testing.T) {
	// Arrange
	ctx := observation.NewObservableMap(nil, map[string]any{"visible": false, "name": "Ada"})
	r := render(t, `<div><p if.bind="visible">Hi {name}</p></div>`, ctx)

	// Act
	hidden := r.html()
	ctx.Set("visible", true)
	shown := r.html()
	ctx.Set("name", "Grace")
	renamed := r.html()
	ctx.Set("visible", false)
	hiddenAgain := r.html()

	// Assert
	if want := `<div><!--anchor--></div>`; hidden != want {
		t.Errorf("Expected %s, got %s", want, hidden)
	}
	if want := `<div><p>Hi Ada</p><!--anchor--></div>`; shown != want {
		t.Errorf("Expected %s, got %s", want, shown)
	}
	if want := `<div><p>Hi Grace</p><!--anchor--></div>`; renamed != want {
		t.Errorf("Expected %s, got %s", want, renamed)
	}
	if hiddenAgain != hidden {
		t.Errorf("Expected %s, got %s", hidden, hiddenAgain)
	}
}

func TestIf_ReusesView(t *testing.T) {
	ctx := observation.NewObservableMap(nil, map[string]any{"visible": true})
	r := render(t, `<div><p if.bind="visible">x</p></div>`, ctx)
	ifVM := r.view.Controllers()[0].ViewModel().(*behaviors.If)
	r.html()
	first := r.view.Children()[0].Children()[0]

	ctx.Set("visible", false)
	r.html()
	ctx.Set("visible", true)
	r.html()

	if !ifVM.Showing() {
		t.Fatal("Expected the template to be showing")
	}
	if got := r.view.Children()[0].Children()[0]; got != first {
		t.Errorf("Expected the same view across hide and show")
	}
}

func TestIf_UnbindReleasesView(t *testing.T) {
	ctx := observation.NewObservableMap(nil, map[string]any{"visible": true})
	r := render(t, `<div><p if.bind="visible">{visible}</p></div>`, ctx)
	view := r.view.Children()[0].Children()[0]

	r.view.Unbind()

	if view.IsBound() {
		t.Errorf("Expected the conditional view to be unbound")
	}
	if n := ctx.PropertyObserver("visible").SubscriberCount(); n != 0 {
		t.Errorf("Expected no subscriptions after unbind, got %d", n)
	}
}

func TestRepeat_RendersItems(t *testing.T) {
	// Arrange
	ctx := observation.NewObservableMap(nil, map[string]any{"tags": []string{"a", "b", "c"}})

	// Act
	r := render(t, `<ul><li repeat.for="tag of tags">{$index}:{tag}</li></ul>`, ctx)

	// Assert
	want := `<ul><li>0:a</li><li>1:b</li><li>2:c</li><!--anchor--></ul>`
	if got := r.html(); got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

func TestRepeat_UpdatesInPlace(t *testing.T) {
	// Arrange
	ctx := observation.NewObservableMap(nil, map[string]any{"tags": []string{"a", "b", "c"}})
	r := render(t, `<ul><li repeat.for="tag of tags">{tag}</li></ul>`, ctx)
	repeat := r.view.Controllers()[0].ViewModel().(*behaviors.Repeat)
	r.html()
	first := repeat.Views()[0]

	// Act
	ctx.Set("tags", []string{"x", "y"})
	shrunk := r.html()
	ctx.Set("tags", []string{"x", "y", "z", "w"})
	grown := r.html()

	// Assert
	if want := `<ul><li>x</li><li>y</li><!--anchor--></ul>`; shrunk != want {
		t.Errorf("Expected %s, got %s", want, shrunk)
	}
	if want := `<ul><li>x</li><li>y</li><li>z</li><li>w</li><!--anchor--></ul>`; grown != want {
		t.Errorf("Expected %s, got %s", want, grown)
	}
	if repeat.Views()[0] != first {
		t.Errorf("Expected the first view to be reused")
	}
}

func TestRepeat_Locals(t *testing.T) {
	// Arrange
	ctx := observation.NewObservableMap(nil, map[string]any{"items": 3})
	r := render(t, `<p repeat.for="n of items">{n}</p>`, ctx)
	repeat := r.view.Controllers()[0].ViewModel().(*behaviors.Repeat)

	// Act
	type locals struct {
		Index       int
		First, Last bool
		Even        bool
	}
	var got []locals
	for _, v := range repeat.Views() {
		l := v.OverrideContext().Locals()
		got = append(got, locals{
			Index: l.Get("$index").(int),
			First: l.Get("$first").(bool),
			Last:  l.Get("$last").(bool),
			Even:  l.Get("$even").(bool),
		})
	}

	// Assert
	want := []locals{
		{Index: 0, First: true, Even: true},
		{Index: 1},
		{Index: 2, Last: true, Even: true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("locals mismatch (-want +got):\n%s", diff)
	}
	if html := r.html(); html != `<!--view--><p>0</p><p>1</p><p>2</p><!--anchor-->` {
		t.Errorf("Expected three paragraphs, got %s", html)
	}
}

func TestRepeat_ParentContextIsReachable(t *testing.T) {
	ctx := observation.NewObservableMap(nil, map[string]any{"tags": []string{"a", "b"}, "prefix": "#"})

	r := render(t, `<ul><li repeat.for="tag of tags">{prefix}{tag}</li></ul>`, ctx)

	if got := r.html(); got != `<ul><li>#a</li><li>#b</li><!--anchor--></ul>` {
		t.Errorf("Expected the outer context in item views, got %s", got)
	}
}

func TestItems(t *testing.T) {
	n := 2
	tests := []struct {
		name   string
		source any
		want   []any
	}{
		{name: "nil", source: nil, want: nil},
		{name: "slice", source: []string{"a", "b"}, want: []any{"a", "b"}},
		{name: "array", source: [2]int{4, 5}, want: []any{4, 5}},
		{name: "map by key", source: map[string]int{"b": 2, "a": 1}, want: []any{1, 2}},
		{name: "count", source: 3, want: []any{0, 1, 2}},
		{name: "negative count", source: -1, want: []any{}},
		{name: "pointer", source: &[]int{n}, want: []any{2}},
		{name: "unsupported", source: "text", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := behaviors.Items(tt.source)

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("items mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestShow_TogglesHiddenAttribute(t *testing.T) {
	// Arrange
	ctx := observation.NewObservableMap(nil, map[string]any{"open": true})
	r := render(t, `<p show.bind="open">x</p>`, ctx)

	// Act
	open := r.html()
	ctx.Set("open", false)
	closed := r.html()

	// Assert
	if want := `<p>x</p>`; open != want {
		t.Errorf("Expected %s, got %s", want, open)
	}
	if want := `<p hidden="">x</p>`; closed != want {
		t.Errorf("Expected %s, got %s", want, closed)
	}
}

func TestShow_MissingValueHides(t *testing.T) {
	r := render(t, `<p show.bind="missing">x</p>`, map[string]any{})

	if got := r.html(); got != `<p hidden="">x</p>` {
		t.Errorf("Expected the host hidden, got %s", got)
	}
}

func TestTruthy(t *testing.T) {
	var nilMap map[string]int
	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{name: "nil", value: nil, want: false},
		{name: "false", value: false, want: false},
		{name: "true", value: true, want: true},
		{name: "empty string", value: "", want: false},
		{name: "string", value: "0", want: true},
		{name: "zero", value: 0, want: false},
		{name: "number", value: 2.5, want: true},
		{name: "nil map", value: nilMap, want: false},
		{name: "empty slice", value: []int{}, want: true},
		{name: "struct", value: struct{ A int }{1}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := behaviors.Truthy(tt.value); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}
