// Package registry provides a tiny concurrent name-to-value registry used
// to pool provider implementations.
package registry

import "github.com/alphadose/haxmap"

// Registry maps names to values of type T. All operations are safe for
// concurrent use.
type Registry[T any] interface {
	Get(name string) (T, bool)
	Add(name string, value T)
	GetOrAdd(name string, value func() T) (T, bool)
	Del(name string)
}

type registry[T any] struct {
	values *haxmap.Map[string, T]
}

// New builds an empty registry.
func New[T any]() Registry[T] {
	return &registry[T]{values: haxmap.New[string, T]()}
}

func (r *registry[T]) Get(name string) (T, bool) {
	return r.values.Get(name)
}

// Add stores value under name, replacing any earlier entry.
func (r *registry[T]) Add(name string, value T) {
	r.values.Set(name, value)
}

// GetOrAdd returns the existing value for name, or stores and returns the
// one produced by value. The second return reports whether an existing
// entry was found.
func (r *registry[T]) GetOrAdd(name string, value func() T) (T, bool) {
	return r.values.GetOrCompute(name, value)
}

func (r *registry[T]) Del(name string) {
	r.values.Del(name)
}
