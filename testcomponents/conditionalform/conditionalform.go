package conditionalform

import (
	_ "embed"
	"reflect"

	"github.com/vcrobe/nojs-templating/runtime"
)

//go:embed conditional-form.nojs.html
var conditionalFormTemplate string

// ConditionalFormResource is the <conditional-form> element.
var ConditionalFormResource = &runtime.BehaviorResource{
	ElementName: "conditional-form",
	Template:    conditionalFormTemplate,
	Properties: []*runtime.BindableProperty{
		{Name: "Name"},
		{Name: "HasName"},
		{Name: "Empty", DefaultValue: true},
		{Name: "Editable", DefaultValue: true},
	},
	ViewModelType: reflect.TypeFor[*ConditionalForm](),
}

// ConditionalForm shows a live preview while a name is set and a muted placeholder
// otherwise. Clearing the name after typing must bring the placeholder back.
type ConditionalForm struct {
	runtime.BehaviorBase

	Name     string `bindable:""`
	HasName  bool   `bindable:""`
	Empty    bool   `bindable:""`
	Editable bool   `bindable:""`
}

// NameChanged keeps the two branches in sync with the name, whether it was set from
// code or written back by the input.
func (c *ConditionalForm) NameChanged(newValue string) {
	c.Set("HasName", newValue != "")
	c.Set("Empty", newValue == "")
}

// SetName simulates a user typing into the name input field.
func (c *ConditionalForm) SetName(name string) {
	c.Set("Name", name)
}
