package middleware

import "reflect"

// Extensions is a typed bag of values for a single request execution.
// Values are keyed by their Go type, so callers usually define a dedicated
// type per entry.
//
// The zero value is ready to use. An Extensions is not safe for concurrent
// mutation; every request execution gets its own.
type Extensions struct {
	values map[reflect.Type]any
}

// NewExtensions returns an empty Extensions.
func NewExtensions() *Extensions {
	return &Extensions{}
}

// Insert stores v under its type and returns the previous value, if any.
func Insert[T any](e *Extensions, v T) (T, bool) {
	if e.values == nil {
		e.values = make(map[reflect.Type]any)
	}
	key := keyOf[T]()
	prev, had := e.values[key]
	e.values[key] = v
	if !had {
		var zero T
		return zero, false
	}
	return prev.(T), true
}

// Get returns the value stored for type T.
func Get[T any](e *Extensions) (T, bool) {
	var zero T
	if e == nil || e.values == nil {
		return zero, false
	}
	v, ok := e.values[keyOf[T]()]
	if !ok {
		return zero, false
	}
	return v.(T), true
}

// Remove deletes and returns the value stored for type T.
func Remove[T any](e *Extensions) (T, bool) {
	v, ok := Get[T](e)
	if ok {
		delete(e.values, keyOf[T]())
	}
	return v, ok
}

// Contains reports whether a value of type T is stored.
func Contains[T any](e *Extensions) bool {
	_, ok := Get[T](e)
	return ok
}

// Len returns the number of stored values.
func (e *Extensions) Len() int {
	if e == nil {
		return 0
	}
	return len(e.values)
}

// Clear removes all values.
func (e *Extensions) Clear() {
	if e == nil {
		return
	}
	clear(e.values)
}

// Clone returns a shallow copy.
func (e *Extensions) Clone() *Extensions {
	c := &Extensions{}
	if e == nil || len(e.values) == 0 {
		return c
	}
	c.values = make(map[reflect.Type]any, len(e.values))
	for k, v := range e.values {
		c.values[k] = v
	}
	return c
}

func keyOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
