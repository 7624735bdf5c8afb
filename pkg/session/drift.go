package session

// Drift returns the accumulated scheduling skew in milliseconds.
func (s *Session) Drift() int64 { return s.drift }

// SetDrift replaces the drift. A new snapshot is always returned.
func (s *Session) SetDrift(ms int64) *Session {
	c := s.copy()
	c.drift = ms
	return c
}

// IncreaseDrift adds ms to the drift.
func (s *Session) IncreaseDrift(ms int64) *Session {
	return s.SetDrift(s.drift + ms)
}
