package session

// IsFailed reports whether the session has been marked as failed.
func (s *Session) IsFailed() bool { return s.failed }

// MarkAsFailed returns a snapshot with the failure flag set. Nothing in this
// package clears the flag again.
func (s *Session) MarkAsFailed() *Session {
	if s.failed {
		return s
	}
	c := s.copy()
	c.failed = true
	return c
}

// MarkAsFailedUpdate is the UpdateFunc form of MarkAsFailed.
func MarkAsFailedUpdate(s *Session) *Session {
	return s.MarkAsFailed()
}

// Identity returns s unchanged.
func Identity(s *Session) *Session {
	return s
}

// Terminate invokes the registered exit func with the receiver and returns
// its error as is. Callers invoke it once per virtual user.
func (s *Session) Terminate() error {
	return s.onExit(s)
}
