package session

import (
	"fmt"
	"time"

	"github.com/benbjohnson/immutable"
	"github.com/jonboulle/clockwork"
)

// ExitFunc is invoked by Terminate with the terminating session.
type ExitFunc func(*Session) error

// noopExit is the default exit func.
func noopExit(*Session) error { return nil }

// Session is the immutable execution context of one virtual user.
//
// A *Session is never modified after it has been returned to a caller.
// Mutators return a new *Session sharing unchanged substructure with the
// receiver, or the receiver itself when nothing observable changes.
type Session struct {
	scenario  string
	userID    string
	attrs     *immutable.Map[string, any]
	drift     int64
	blocks    *immutable.List[Block]
	failed    bool
	onExit    ExitFunc
	clock     clockwork.Clock
	startTime time.Time
}

// Option configures a Session at construction time.
type Option func(*Session)

// WithExitFunc registers the func invoked by Terminate.
func WithExitFunc(fn ExitFunc) Option {
	return func(s *Session) {
		if fn != nil {
			s.onExit = fn
		}
	}
}

// WithClock sets the clock used for counter timestamps and group start times.
func WithClock(clock clockwork.Clock) Option {
	return func(s *Session) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithStartTime overrides the session start time, which defaults to the
// clock's current time.
func WithStartTime(t time.Time) Option {
	return func(s *Session) {
		s.startTime = t
	}
}

// New creates a fresh session for the given scenario and user id.
func New(scenario, userID string, opts ...Option) *Session {
	s := &Session{
		scenario: scenario,
		userID:   userID,
		attrs:    immutable.NewMap[string, any](nil),
		blocks:   immutable.NewList[Block](),
		onExit:   noopExit,
		clock:    clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.startTime.IsZero() {
		s.startTime = s.clock.Now()
	}
	return s
}

// Scenario returns the scenario name.
func (s *Session) Scenario() string { return s.scenario }

// UserID returns the unique id of the virtual user.
func (s *Session) UserID() string { return s.userID }

// StartTime returns the time the session was created.
func (s *Session) StartTime() time.Time { return s.startTime }

// Now returns the current time according to the session clock.
func (s *Session) Now() time.Time { return s.clock.Now() }

// String implements fmt.Stringer.
func (s *Session) String() string {
	return fmt.Sprintf("Session(%s,%s,attributes=%d,blocks=%d,drift=%d,failed=%t)",
		s.scenario, s.userID, s.attrs.Len(), s.blocks.Len(), s.drift, s.failed)
}

// copy returns a shallow copy; the persistent fields are shared.
func (s *Session) copy() *Session {
	c := *s
	return &c
}

func (s *Session) withAttrs(attrs *immutable.Map[string, any]) *Session {
	c := s.copy()
	c.attrs = attrs
	return c
}

func (s *Session) withBlocks(blocks *immutable.List[Block]) *Session {
	c := s.copy()
	c.blocks = blocks
	return c
}
