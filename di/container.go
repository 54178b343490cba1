// Package di is a small hierarchical service locator.
//
// A Container resolves keys registered on itself first, then on its ancestors. Keys are
// arbitrary comparable values; KeyOf derives a key from a Go type so call sites can use
// Resolve[T]. Singleton resolvers cache their instance in the container that registered
// them, which gives the per-scope singleton semantics view instantiation relies on.
//
// Containers are not safe for concurrent use.
package di

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrNotRegistered is returned when no container in the chain can resolve a key.
var ErrNotRegistered = errors.New("key not registered")

// Resolver produces the value for a key. The container passed in is the one Get was called on.
type Resolver func(c *Container) (any, error)

type strategy uint8

const (
	strategyInstance strategy = iota
	strategySingleton
	strategyTransient
)

type entry struct {
	strategy strategy
	value    any
	resolve  Resolver
	resolved bool
}

// Container is one dependency scope.
type Container struct {
	parent  *Container
	entries map[any]*entry
}

// New creates a root container.
func New() *Container {
	return &Container{entries: make(map[any]*entry)}
}

// CreateChild creates a scope that falls back to c.
func (c *Container) CreateChild() *Container {
	child := New()
	child.parent = c
	return child
}

// Parent returns the parent scope, or nil for a root container.
func (c *Container) Parent() *Container {
	return c.parent
}

// RegisterInstance maps key to value in this scope.
func (c *Container) RegisterInstance(key, value any) {
	c.entries[key] = &entry{strategy: strategyInstance, value: value, resolved: true}
}

// RegisterSingleton registers a resolver whose result is cached in this scope.
func (c *Container) RegisterSingleton(key any, resolve Resolver) {
	c.entries[key] = &entry{strategy: strategySingleton, resolve: resolve}
}

// RegisterTransient registers a resolver invoked on every Get.
func (c *Container) RegisterTransient(key any, resolve Resolver) {
	c.entries[key] = &entry{strategy: strategyTransient, resolve: resolve}
}

// RegisterResolver is RegisterSingleton under the name used by the view factory for
// lazily created element services.
func (c *Container) RegisterResolver(key any, resolve Resolver) {
	c.RegisterSingleton(key, resolve)
}

// Has reports whether key is registered on c, or on one of its ancestors when
// checkParent is set.
func (c *Container) Has(key any, checkParent bool) bool {
	for cur := c; cur != nil; cur = cur.parent {
		if _, ok := cur.entries[key]; ok {
			return true
		}
		if !checkParent {
			return false
		}
	}
	return false
}

// Get resolves key, walking up the scope chain.
func (c *Container) Get(key any) (any, error) {
	for cur := c; cur != nil; cur = cur.parent {
		e, ok := cur.entries[key]
		if !ok {
			continue
		}
		switch e.strategy {
		case strategyInstance:
			return e.value, nil
		case strategySingleton:
			if e.resolved {
				return e.value, nil
			}
			v, err := e.resolve(c)
			if err != nil {
				return nil, err
			}
			e.value, e.resolved = v, true
			return v, nil
		default:
			return e.resolve(c)
		}
	}
	return nil, fmt.Errorf("di: %v: %w", describe(key), ErrNotRegistered)
}

// MustGet is Get that panics on failure. Intended for wiring code and tests.
func (c *Container) MustGet(key any) any {
	v, err := c.Get(key)
	if err != nil {
		panic(err)
	}
	return v
}

// KeyOf returns the key used by Resolve and Register for T.
func KeyOf[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}

// Register stores value under the key of T.
func Register[T any](c *Container, value T) {
	c.RegisterInstance(KeyOf[T](), value)
}

// Resolve fetches the value registered for T and asserts its type.
func Resolve[T any](c *Container) (T, error) {
	var zero T
	v, err := c.Get(KeyOf[T]())
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("di: %v resolved to %T", KeyOf[T](), v)
	}
	return typed, nil
}

// ResolveOptional returns the value for T, or the zero value when nothing is registered.
func ResolveOptional[T any](c *Container) T {
	v, err := Resolve[T](c)
	if err != nil {
		var zero T
		return zero
	}
	return v
}

func describe(key any) string {
	switch k := key.(type) {
	case reflect.Type:
		return k.String()
	case fmt.Stringer:
		return k.String()
	default:
		return fmt.Sprintf("%T(%v)", key, key)
	}
}
