package session

import (
	"fmt"
	"time"
)

// Set binds key to value, overwriting any previous binding.
func (s *Session) Set(key string, value any) *Session {
	return s.withAttrs(s.attrs.Set(key, value))
}

// SetAll binds every pair in one snapshot.
func (s *Session) SetAll(pairs map[string]any) *Session {
	if len(pairs) == 0 {
		return s
	}
	attrs := s.attrs
	for k, v := range pairs {
		attrs = attrs.Set(k, v)
	}
	return s.withAttrs(attrs)
}

// Remove unbinds key. The receiver is returned when key is absent.
func (s *Session) Remove(key string) *Session {
	if !s.Contains(key) {
		return s
	}
	return s.withAttrs(s.attrs.Delete(key))
}

// RemoveAll unbinds every present key in one snapshot. The receiver is
// returned when none of the keys are present.
func (s *Session) RemoveAll(keys ...string) *Session {
	attrs := s.attrs
	changed := false
	for _, k := range keys {
		if _, ok := attrs.Get(k); ok {
			attrs = attrs.Delete(k)
			changed = true
		}
	}
	if !changed {
		return s
	}
	return s.withAttrs(attrs)
}

// Contains reports whether key is bound.
func (s *Session) Contains(key string) bool {
	_, ok := s.attrs.Get(key)
	return ok
}

// Get returns the value bound at key.
func (s *Session) Get(key string) (any, bool) {
	return s.attrs.Get(key)
}

// AttributeCount returns the number of bound attributes.
func (s *Session) AttributeCount() int {
	return s.attrs.Len()
}

// Attributes returns a copy of every binding.
func (s *Session) Attributes() map[string]any {
	out := make(map[string]any, s.attrs.Len())
	itr := s.attrs.Iterator()
	for !itr.Done() {
		k, v, _ := itr.Next()
		out[k] = v
	}
	return out
}

// As reads the value bound at key as a T.
func As[T any](s *Session, key string) (T, error) {
	var zero T
	raw, ok := s.attrs.Get(key)
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrAttributeNotFound, key)
	}
	v, ok := raw.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s is %T, want %T", ErrAttributeType, key, raw, zero)
	}
	return v, nil
}

// LoopCounterValue reads the counter bound at name.
func (s *Session) LoopCounterValue(name string) (int, error) {
	return As[int](s, name)
}

// LoopTimestampValue reads the creation time of the counter bound at name.
func (s *Session) LoopTimestampValue(name string) (time.Time, error) {
	return As[time.Time](s, TimestampKey(name))
}
