package observation

import "sort"

// ObservableMap is a binding context whose entries are each backed by a PropertyObserver.
// Repeated views and override-context locals use it.
type ObservableMap struct {
	queue     Queue
	observers map[string]*PropertyObserver
}

// NewObservableMap creates a map seeded with values. Entries publish immediately.
func NewObservableMap(queue Queue, values map[string]any) *ObservableMap {
	m := &ObservableMap{queue: queue, observers: make(map[string]*PropertyObserver, len(values))}
	for k, v := range values {
		m.observer(k, v)
	}
	return m
}

func (m *ObservableMap) observer(name string, initial any) *PropertyObserver {
	o := NewPropertyObserver(m.queue, name, initial)
	o.SetPublishing(true)
	m.observers[name] = o
	return o
}

// Has reports whether name is defined.
func (m *ObservableMap) Has(name string) bool {
	_, ok := m.observers[name]
	return ok
}

// Get returns the value stored under name.
func (m *ObservableMap) Get(name string) any {
	if o, ok := m.observers[name]; ok {
		return o.GetValue()
	}
	return nil
}

// Set writes name, defining it on first use.
func (m *ObservableMap) Set(name string, value any) {
	if o, ok := m.observers[name]; ok {
		o.SetValue(value)
		return
	}
	m.observer(name, value)
}

// PropertyObserver implements Observable. Entries are defined lazily so a binding can
// subscribe to a name before it is first written.
func (m *ObservableMap) PropertyObserver(name string) *PropertyObserver {
	if o, ok := m.observers[name]; ok {
		return o
	}
	return m.observer(name, nil)
}

// Keys returns the defined names in sorted order.
func (m *ObservableMap) Keys() []string {
	keys := make([]string, 0, len(m.observers))
	for k := range m.observers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
