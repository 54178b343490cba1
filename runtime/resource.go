package runtime

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/vcrobe/nojs-templating/binding"
	"github.com/vcrobe/nojs-templating/di"
)

// DefaultPropertyName is the property an attribute without declared properties gets.
const DefaultPropertyName = "Value"

// BehaviorResource is the static description of a custom element, custom attribute or
// template controller. Declare it once per behavior type and register it with a
// ViewResources; Initialize runs lazily on first registration and is idempotent.
type BehaviorResource struct {
	ElementName   string
	AttributeName string
	Properties    []*BindableProperty

	// LiftsContent marks a template controller: its host node is moved into a nested
	// template and the behavior decides when to render it.
	LiftsContent bool
	// UsesShadowDOM keeps the host's light DOM untouched and renders the element's view
	// into the host's shadow root.
	UsesShadowDOM bool
	// SkipContentProcessing leaves the element's children uncompiled.
	SkipContentProcessing bool

	// Template is the markup of an element's own view.
	Template string
	// Dependencies are resources visible only inside Template.
	Dependencies []*BehaviorResource
	// Base contributes inherited bindable properties.
	Base *BehaviorResource

	NewViewModel  func(c *di.Container) (any, error)
	ViewModelType reflect.Type

	// ChildObservers track light-DOM children of the host on view-model properties.
	ChildObservers []*ChildObserver

	initialized bool
	initErr     error
	attributes  map[string]*BindableProperty
	primary     *BindableProperty
	hasOptions  bool
	fields      map[reflect.Type]map[string][]int

	viewFactory *ViewFactory
	compiling   bool
	registry    *ViewResources
}

// Name returns the element name, or the attribute name for attributes.
func (r *BehaviorResource) Name() string {
	if r.ElementName != "" {
		return r.ElementName
	}
	return r.AttributeName
}

func (r *BehaviorResource) String() string {
	switch {
	case r.ElementName != "":
		return "<" + r.ElementName + ">"
	case r.LiftsContent:
		return r.AttributeName + " (template controller)"
	default:
		return r.AttributeName + " (attribute)"
	}
}

// Initialize resolves the property table. Attribute names are derived, inherited
// properties copied from Base, and attributes without properties get DefaultPropertyName.
func (r *BehaviorResource) Initialize() error {
	if r.initialized {
		return r.initErr
	}
	r.initialized = true
	r.initErr = r.initialize()
	return r.initErr
}

func (r *BehaviorResource) initialize() error {
	r.ElementName = strings.ToLower(strings.TrimSpace(r.ElementName))
	r.AttributeName = strings.ToLower(strings.TrimSpace(r.AttributeName))
	if r.ElementName == "" && r.AttributeName == "" {
		return &WireUpError{Op: "resource.initialize", Err: ErrUnnamedResource}
	}

	props := make([]*BindableProperty, 0, len(r.Properties))
	if r.Base != nil {
		if err := r.Base.Initialize(); err != nil {
			return err
		}
		for _, inherited := range r.Base.Properties {
			copied := *inherited
			props = append(props, &copied)
		}
	}
	for _, p := range r.Properties {
		if propertyNamed(props, p.Name) != nil {
			return &WireUpError{Op: "resource.initialize", Target: r.Name() + "." + p.Name, Err: ErrDuplicateProperty}
		}
		own := *p
		props = append(props, &own)
	}

	if r.AttributeName != "" && r.ElementName == "" && len(props) == 0 {
		props = append(props, &BindableProperty{Name: DefaultPropertyName, Attribute: r.AttributeName})
	}

	r.attributes = make(map[string]*BindableProperty, len(props))
	for _, p := range props {
		p.owner = r
		if p.Attribute == "" {
			p.Attribute = binding.Hyphenate(p.Name)
		}
		if p.DefaultBindingMode == binding.ModeDefault {
			p.DefaultBindingMode = binding.OneWay
		}
		if _, dup := r.attributes[p.Attribute]; dup {
			return &WireUpError{Op: "resource.initialize", Target: r.Name() + "." + p.Attribute, Err: ErrDuplicateAttribute}
		}
		r.attributes[p.Attribute] = p
		if p.PrimaryProperty && r.primary == nil {
			r.primary = p
		}
	}
	r.Properties = props

	if r.ElementName == "" {
		switch {
		case len(props) == 1:
			r.primary = props[0]
		default:
			r.hasOptions = true
		}
	}

	r.fields = make(map[reflect.Type]map[string][]int)
	if r.ViewModelType != nil {
		r.fields[r.ViewModelType] = fieldIndexes(r.ViewModelType, props)
	}
	return nil
}

func propertyNamed(props []*BindableProperty, name string) *BindableProperty {
	for _, p := range props {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Property returns the property bound through attribute.
func (r *BehaviorResource) Property(attribute string) *BindableProperty {
	return r.attributes[attribute]
}

// PrimaryProperty returns the property targeted by the attribute name itself.
func (r *BehaviorResource) PrimaryProperty() *BindableProperty {
	return r.primary
}

// HasOptions reports whether the attribute accepts "a: x; b.bind: y" values.
func (r *BehaviorResource) HasOptions() bool {
	return r.hasOptions
}

// PropertyMode implements binding.Behavior.
func (r *BehaviorResource) PropertyMode(attribute string) (binding.BindingMode, bool) {
	if p := r.attributes[attribute]; p != nil {
		return p.DefaultBindingMode, true
	}
	return binding.ModeDefault, false
}

// ViewFactory returns the compiled view of an element, nil until compiled.
func (r *BehaviorResource) ViewFactory() *ViewFactory {
	return r.viewFactory
}

func (r *BehaviorResource) SetViewFactory(f *ViewFactory) {
	r.viewFactory = f
}

// BeginCompile marks the element template as being compiled. It returns false when a
// compile is already running or done, which stops recursive element templates.
func (r *BehaviorResource) BeginCompile() bool {
	if r.compiling || r.viewFactory != nil {
		return false
	}
	r.compiling = true
	return true
}

func (r *BehaviorResource) EndCompile() {
	r.compiling = false
}

// Registry returns the registry the resource was first registered with.
func (r *BehaviorResource) Registry() *ViewResources {
	return r.registry
}

func (r *BehaviorResource) fieldsFor(vm any) map[string][]int {
	t := reflect.TypeOf(vm)
	if f, ok := r.fields[t]; ok {
		return f
	}
	f := fieldIndexes(t, r.Properties)
	r.fields[t] = f
	return f
}

func (r *BehaviorResource) newViewModel(c *di.Container) (any, error) {
	if r.NewViewModel == nil {
		if r.ViewModelType != nil && r.ViewModelType.Kind() == reflect.Pointer {
			return reflect.New(r.ViewModelType.Elem()).Interface(), nil
		}
		return nil, &WireUpError{Op: "resource.create", Target: r.Name(), Err: ErrNoViewModel}
	}
	vm, err := r.NewViewModel(c)
	if err != nil {
		return nil, fmt.Errorf("create view-model for %s: %w", r, err)
	}
	return vm, nil
}
