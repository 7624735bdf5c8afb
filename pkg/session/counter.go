package session

// TimestampKey returns the attribute name holding the creation time of the
// counter bound at name.
func TimestampKey(name string) string {
	return "timestamp." + name
}

// InitCounter binds name to 0 and its timestamp to the current time in one
// snapshot. The receiver is returned when name is already bound.
func (s *Session) InitCounter(name string) *Session {
	if s.Contains(name) {
		return s
	}
	attrs := s.attrs.Set(name, 0).Set(TimestampKey(name), s.clock.Now())
	return s.withAttrs(attrs)
}

// IncrementCounter adds one to the counter bound at name. The receiver is
// returned when name is unbound or not bound to an int; a counter is never
// created implicitly.
func (s *Session) IncrementCounter(name string) *Session {
	raw, ok := s.attrs.Get(name)
	if !ok {
		return s
	}
	n, ok := raw.(int)
	if !ok {
		return s
	}
	return s.withAttrs(s.attrs.Set(name, n+1))
}

// RemoveCounter unbinds the counter and its timestamp in one snapshot. The
// receiver is returned when name is unbound.
func (s *Session) RemoveCounter(name string) *Session {
	if !s.Contains(name) {
		return s
	}
	return s.withAttrs(s.attrs.Delete(name).Delete(TimestampKey(name)))
}
