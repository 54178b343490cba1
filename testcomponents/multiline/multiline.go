package multiline

import (
	_ "embed"
	"reflect"

	"github.com/vcrobe/nojs-templating/runtime"
)

//go:embed multiline-text.nojs.html
var multilineTextTemplate string

// MultilineTextResource is the <multiline-text> element.
var MultilineTextResource = &runtime.BehaviorResource{
	ElementName: "multiline-text",
	Template:    multilineTextTemplate,
	Properties: []*runtime.BindableProperty{
		{Name: "Title"},
		{Name: "Message"},
		{Name: "Count"},
	},
	ViewModelType: reflect.TypeFor[*MultilineText](),
}

// MultilineText is a test component for tags and bindings spread over several lines.
type MultilineText struct {
	runtime.BehaviorBase
	Title   string `bindable:""`
	Message string `bindable:""`
	Count   int    `bindable:""`
}
