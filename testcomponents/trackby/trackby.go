// Package trackby holds list components whose item views are reused across updates.
package trackby

import (
	_ "embed"
	"reflect"
	"slices"

	"github.com/vcrobe/nojs-templating/runtime"
)

var (
	//go:embed tag-list.nojs.html
	tagListTemplate string
	//go:embed multi-item-list.nojs.html
	multiItemListTemplate string
)

// TagListResource is the <tag-list> element.
var TagListResource = &runtime.BehaviorResource{
	ElementName:   "tag-list",
	Template:      tagListTemplate,
	Properties:    []*runtime.BindableProperty{{Name: "Tags"}},
	ViewModelType: reflect.TypeFor[*TagList](),
}

// TagList repeats over a slice of strings.
type TagList struct {
	runtime.BehaviorBase
	Tags []string `bindable:""`
}

func (t *TagList) AddTag(newTag string) {
	t.Set("Tags", append(slices.Clone(t.Tags), newTag))
}

func (t *TagList) ClearTags() {
	t.Set("Tags", []string{})
}

// MultiItemListResource is the <multi-item-list> element.
var MultiItemListResource = &runtime.BehaviorResource{
	ElementName:   "multi-item-list",
	Template:      multiItemListTemplate,
	Properties:    []*runtime.BindableProperty{{Name: "Items"}},
	ViewModelType: reflect.TypeFor[*MultiItemList](),
}

// Item represents a data item with an ID.
type Item struct {
	ID   int
	Name string
}

// MultiItemList renders several sibling elements per item.
type MultiItemList struct {
	runtime.BehaviorBase
	Items []Item `bindable:""`
}

func (m *MultiItemList) AddItem(name string) {
	m.Set("Items", append(slices.Clone(m.Items), Item{ID: 100 + len(m.Items) + 1, Name: name}))
}

func (m *MultiItemList) ClearItems() {
	m.Set("Items", []Item{})
}
