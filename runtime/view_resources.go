package runtime

import "strings"

// ViewResources is a name registry of behavior resources. Lookups fall back to the
// parent registry, so element-local registries see everything registered above them.
type ViewResources struct {
	parent       *ViewResources
	elements     map[string]*BehaviorResource
	attributes   map[string]*BehaviorResource
	attributeMap map[string]string
}

// NewViewResources creates a registry chained to parent, which may be nil.
func NewViewResources(parent *ViewResources) *ViewResources {
	return &ViewResources{
		parent:       parent,
		elements:     make(map[string]*BehaviorResource),
		attributes:   make(map[string]*BehaviorResource),
		attributeMap: make(map[string]string),
	}
}

// CreateChild returns a registry chained to r.
func (r *ViewResources) CreateChild() *ViewResources {
	return NewViewResources(r)
}

func (r *ViewResources) Parent() *ViewResources {
	return r.parent
}

// Register initializes res and registers it under its element and attribute names.
func (r *ViewResources) Register(res *BehaviorResource) error {
	if err := res.Initialize(); err != nil {
		return err
	}
	if res.registry == nil {
		res.registry = r
	}
	if res.ElementName != "" {
		r.RegisterElement(res.ElementName, res)
	}
	if res.AttributeName != "" {
		r.RegisterAttribute(res.AttributeName, res, res.AttributeName)
	}
	return nil
}

// RegisterElement maps tagName to res in this registry.
func (r *ViewResources) RegisterElement(tagName string, res *BehaviorResource) {
	r.elements[strings.ToLower(tagName)] = res
}

// RegisterAttribute maps attribute to res. knownAttribute is the canonical attribute
// name the alias resolves to, usually the resource's own attribute name.
func (r *ViewResources) RegisterAttribute(attribute string, res *BehaviorResource, knownAttribute string) {
	attribute = strings.ToLower(attribute)
	r.attributes[attribute] = res
	r.attributeMap[attribute] = knownAttribute
}

// GetElement returns the element resource registered for tagName.
func (r *ViewResources) GetElement(tagName string) *BehaviorResource {
	tagName = strings.ToLower(tagName)
	for cur := r; cur != nil; cur = cur.parent {
		if res, ok := cur.elements[tagName]; ok {
			return res
		}
	}
	return nil
}

// GetAttribute returns the attribute resource registered for name.
func (r *ViewResources) GetAttribute(name string) *BehaviorResource {
	name = strings.ToLower(name)
	for cur := r; cur != nil; cur = cur.parent {
		if res, ok := cur.attributes[name]; ok {
			return res
		}
	}
	return nil
}

// MapAttribute resolves an attribute alias to its canonical name. Unknown names map to
// themselves.
func (r *ViewResources) MapAttribute(name string) string {
	for cur := r; cur != nil; cur = cur.parent {
		if known, ok := cur.attributeMap[strings.ToLower(name)]; ok {
			return known
		}
	}
	return name
}
