package databinding

import (
	_ "embed"
	"reflect"

	"github.com/vcrobe/nojs-templating/runtime"
)

//go:embed counter.nojs.html
var counterTemplate string

// CounterResource is the <counter> element.
var CounterResource = &runtime.BehaviorResource{
	ElementName: "counter",
	Template:    counterTemplate,
	Properties: []*runtime.BindableProperty{
		{Name: "Count"},
		{Name: "Label"},
	},
	ViewModelType: reflect.TypeFor[*Counter](),
}

// Counter is a simple test component that demonstrates data binding.
type Counter struct {
	runtime.BehaviorBase
	Count int    `bindable:""`
	Label string `bindable:""`
}

// Increment increases the counter. The view follows on the next flush.
func (c *Counter) Increment() {
	c.Set("Count", c.Count+1)
}

func (c *Counter) SetLabel(newLabel string) {
	c.Set("Label", newLabel)
}
