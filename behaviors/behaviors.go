// Package behaviors provides the built-in template controllers and attributes.
package behaviors

import (
	"reflect"

	"github.com/vcrobe/nojs-templating/runtime"
)

// Register adds if, repeat and show to resources.
func Register(resources *runtime.ViewResources) error {
	for _, res := range []*runtime.BehaviorResource{IfResource, RepeatResource, ShowResource} {
		if err := resources.Register(res); err != nil {
			return err
		}
	}
	return nil
}

// Truthy reports whether v counts as true for a condition. Nil, false, zero numbers,
// empty strings and nil pointers, maps or slices are false; everything else is true.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	}
	return !reflect.ValueOf(v).IsZero()
}
