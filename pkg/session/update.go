package session

// UpdateFunc transforms a session into its next snapshot.
type UpdateFunc func(*Session) *Session

// Update applies fns left to right and returns the final snapshot. Nil
// entries are skipped.
func (s *Session) Update(fns ...UpdateFunc) *Session {
	out := s
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		out = fn(out)
	}
	return out
}

// Compose chains fns into a single UpdateFunc.
func Compose(fns ...UpdateFunc) UpdateFunc {
	return func(s *Session) *Session {
		return s.Update(fns...)
	}
}

// SetUpdate returns an UpdateFunc binding key to value.
func SetUpdate(key string, value any) UpdateFunc {
	return func(s *Session) *Session { return s.Set(key, value) }
}

// RemoveUpdate returns an UpdateFunc unbinding key.
func RemoveUpdate(key string) UpdateFunc {
	return func(s *Session) *Session { return s.Remove(key) }
}

// EnterGroupUpdate returns an UpdateFunc opening the named group.
func EnterGroupUpdate(name string) UpdateFunc {
	return func(s *Session) *Session { return s.EnterGroup(name) }
}

// ExitGroupUpdate closes the innermost group.
func ExitGroupUpdate(s *Session) *Session {
	return s.ExitGroup()
}
