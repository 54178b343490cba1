package behaviors

import (
	"github.com/vcrobe/nojs-templating/binding"
	"github.com/vcrobe/nojs-templating/di"
	"github.com/vcrobe/nojs-templating/runtime"
	"github.com/vcrobe/nojs-templating/vdom"
)

// ShowResource is the "show" attribute: the host gets the hidden attribute while the
// value is falsy.
var ShowResource = &runtime.BehaviorResource{
	AttributeName: "show",
	NewViewModel: func(c *di.Container) (any, error) {
		host, err := di.Resolve[*vdom.VNode](c)
		if err != nil {
			return nil, err
		}
		return &Show{host: host}, nil
	},
}

type Show struct {
	Value any
	host  *vdom.VNode
}

// Bind applies the initial value, including a nil one that never produces a change.
func (s *Show) Bind(any, *binding.OverrideContext) {
	s.apply(s.Value)
}

func (s *Show) ValueChanged(newValue any) {
	s.apply(newValue)
}

func (s *Show) apply(value any) {
	if Truthy(value) {
		s.host.RemoveAttr("hidden")
	} else {
		s.host.SetAttr("hidden", "")
	}
}
