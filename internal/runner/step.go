package runner

import (
	"context"
	"fmt"
	"time"

	"yqhp/vusession/internal/pacing"
	"yqhp/vusession/internal/stats"
	"yqhp/vusession/pkg/session"
)

// Step is one unit of a scenario. Execute returns the next session snapshot;
// on error the returned session, when non-nil, is still threaded forward.
type Step interface {
	Name() string
	Execute(ctx context.Context, s *session.Session) (*session.Session, error)
}

// StepFunc adapts a function to the Step interface.
type StepFunc struct {
	name string
	fn   func(ctx context.Context, s *session.Session) (*session.Session, error)
}

// NewStep creates a Step from a function.
func NewStep(name string, fn func(ctx context.Context, s *session.Session) (*session.Session, error)) *StepFunc {
	return &StepFunc{name: name, fn: fn}
}

// Name returns the step name.
func (f *StepFunc) Name() string { return f.name }

// Execute runs the wrapped function.
func (f *StepFunc) Execute(ctx context.Context, s *session.Session) (*session.Session, error) {
	return f.fn(ctx, s)
}

// RunSteps executes steps in order, stopping at the first error.
func RunSteps(ctx context.Context, steps []Step, s *session.Session) (*session.Session, error) {
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return s, err
		}
		next, err := step.Execute(ctx, s)
		if next != nil {
			s = next
		}
		if err != nil {
			return s, fmt.Errorf("step %s: %w", step.Name(), err)
		}
	}
	return s, nil
}

// Exec wraps a pure session update.
func Exec(name string, fn session.UpdateFunc) Step {
	return NewStep(name, func(_ context.Context, s *session.Session) (*session.Session, error) {
		return s.Update(fn), nil
	})
}

// SetVariable binds name to value.
func SetVariable(name string, value any) Step {
	return Exec("set "+name, session.SetUpdate(name, value))
}

// If applies then when pred holds and otherwise when it does not. A nil
// branch leaves the session untouched.
func If(name string, pred func(*session.Session) bool, then, otherwise session.UpdateFunc) Step {
	if then == nil {
		then = session.Identity
	}
	if otherwise == nil {
		otherwise = session.Identity
	}
	return NewStep(name, func(_ context.Context, s *session.Session) (*session.Session, error) {
		if pred(s) {
			return then(s), nil
		}
		return otherwise(s), nil
	})
}

// FailWhen marks the session as failed when pred holds.
func FailWhen(name string, pred func(*session.Session) bool) Step {
	return If(name, pred, session.MarkAsFailedUpdate, nil)
}

// ExitHereIfFailed aborts the current iteration of a failed session.
func ExitHereIfFailed() Step {
	return NewStep("exit here if failed", func(_ context.Context, s *session.Session) (*session.Session, error) {
		if s.IsFailed() {
			return s, ErrSessionFailed
		}
		return s, nil
	})
}

// Pause waits d, compensating for the session drift.
func Pause(p *pacing.Pauser, d time.Duration) Step {
	return NewStep(fmt.Sprintf("pause %s", d), func(ctx context.Context, s *session.Session) (*session.Session, error) {
		return p.Pause(ctx, s, d)
	})
}

type groupStep struct {
	name      string
	collector *stats.GroupCollector
	steps     []Step
}

// Group runs steps inside a named group and records the group duration in
// collector, which may be nil. The group is exited even when a step fails.
func Group(name string, collector *stats.GroupCollector, steps ...Step) Step {
	return &groupStep{name: name, collector: collector, steps: steps}
}

func (g *groupStep) Name() string { return "group " + g.name }

func (g *groupStep) Execute(ctx context.Context, s *session.Session) (*session.Session, error) {
	entered := s.EnterGroup(g.name)
	block, _ := entered.CurrentGroup()

	out, err := RunSteps(ctx, g.steps, entered)

	if g.collector != nil {
		failed := err != nil || (out.IsFailed() && !s.IsFailed())
		g.collector.Record(block.Hierarchy(), out.Now().Sub(block.StartedAt()), failed)
	}
	return out.ExitGroup(), err
}

type repeatStep struct {
	times   int
	counter string
	steps   []Step
}

// Repeat runs steps times times, tracking the iteration in a loop counter
// named counter. ErrCounterInUse is returned without running the steps when
// counter is already bound, for instance by an enclosing loop.
func Repeat(times int, counter string, steps ...Step) Step {
	return &repeatStep{times: times, counter: counter, steps: steps}
}

func (r *repeatStep) Name() string { return "repeat " + r.counter }

func (r *repeatStep) Execute(ctx context.Context, s *session.Session) (*session.Session, error) {
	if s.Contains(r.counter) {
		return s, fmt.Errorf("%w: %s", ErrCounterInUse, r.counter)
	}
	s = s.EnterLoop(r.counter)
	for {
		n, err := s.LoopCounterValue(r.counter)
		if err != nil {
			return s.ExitLoop(), err
		}
		if n >= r.times {
			break
		}
		s, err = RunSteps(ctx, r.steps, s)
		if err != nil {
			return s.ExitLoop(), err
		}
		s = s.IncrementCounter(r.counter)
	}
	return s.ExitLoop(), nil
}
