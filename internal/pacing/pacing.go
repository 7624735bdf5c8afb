// Package pacing implements pauses that compensate for accumulated scheduling
// drift. A pause shorter than the drift a virtual user already carries is
// skipped and the drift reduced; a pause that oversleeps records the overshoot
// as new drift so the next pause can absorb it.
package pacing

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"yqhp/vusession/pkg/logger"
	"yqhp/vusession/pkg/session"
)

// Pauser performs drift-compensated pauses.
type Pauser struct {
	clock    clockwork.Clock
	maxDrift time.Duration
}

// NewPauser creates a Pauser. A non-positive maxDrift disables capping.
func NewPauser(clock clockwork.Clock, maxDrift time.Duration) *Pauser {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Pauser{clock: clock, maxDrift: maxDrift}
}

// Pause waits for d minus the session drift and returns the session with its
// drift updated. On context cancellation the original session is returned
// with the context error.
func (p *Pauser) Pause(ctx context.Context, s *session.Session, d time.Duration) (*session.Session, error) {
	drift := time.Duration(s.Drift()) * time.Millisecond
	effective := d - drift

	if effective <= 0 {
		return s.SetDrift(toMillis(p.capDrift(s, drift-d))), nil
	}

	start := p.clock.Now()
	select {
	case <-ctx.Done():
		return s, ctx.Err()
	case <-p.clock.After(effective):
	}

	overshoot := p.clock.Since(start) - effective
	if overshoot < 0 {
		overshoot = 0
	}
	return s.SetDrift(toMillis(p.capDrift(s, overshoot))), nil
}

func (p *Pauser) capDrift(s *session.Session, drift time.Duration) time.Duration {
	if p.maxDrift > 0 && drift > p.maxDrift {
		logger.Debug("drift capped",
			zap.String("user_id", s.UserID()),
			zap.Duration("drift", drift),
			zap.Duration("max_drift", p.maxDrift))
		return p.maxDrift
	}
	return drift
}

func toMillis(d time.Duration) int64 {
	return d.Milliseconds()
}
