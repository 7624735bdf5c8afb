package runner

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"yqhp/vusession/internal/stats"
	"yqhp/vusession/pkg/logger"
	"yqhp/vusession/pkg/session"
)

// Scenario is a named list of steps executed by every virtual user.
type Scenario struct {
	Name  string
	Steps []Step

	// OnExit, when set, is chained after the runner's own exit handling.
	OnExit session.ExitFunc
}

// Options controls how many virtual users run and how they are scheduled.
type Options struct {
	// VUs is the number of virtual users.
	VUs int

	// Iterations is the number of times each virtual user runs the steps.
	Iterations int

	// Workers bounds the number of concurrently running virtual users.
	// Zero runs all of them at once.
	Workers int

	// StartSpread spreads virtual user start times evenly over this period.
	StartSpread time.Duration

	// GracefulStop is how long Run waits for running users after the
	// context is cancelled. Zero waits without limit.
	GracefulStop time.Duration
}

// Summary is the outcome of a run.
type Summary struct {
	Scenario    string             `json:"scenario"`
	Users       int64              `json:"users"`
	FailedUsers int64              `json:"failed_users"`
	Iterations  int64              `json:"iterations"`
	Duration    time.Duration      `json:"duration"`
	Groups      []stats.GroupStats `json:"groups,omitempty"`
}

// Runner runs scenarios. A Runner runs one scenario at a time.
type Runner struct {
	opts      Options
	clock     clockwork.Clock
	collector *stats.GroupCollector
	newID     func() string

	users       atomic.Int64
	failedUsers atomic.Int64
	iterations  atomic.Int64
}

// Option configures a Runner.
type Option func(*Runner)

// WithClock sets the clock shared by the runner and its sessions.
func WithClock(clock clockwork.Clock) Option {
	return func(r *Runner) { r.clock = clock }
}

// WithCollector attaches the group collector reported in the summary.
func WithCollector(c *stats.GroupCollector) Option {
	return func(r *Runner) { r.collector = c }
}

// WithIDGenerator overrides the user id generator.
func WithIDGenerator(fn func() string) Option {
	return func(r *Runner) { r.newID = fn }
}

// New creates a Runner.
func New(opts Options, options ...Option) *Runner {
	if opts.VUs <= 0 {
		opts.VUs = 1
	}
	if opts.Iterations <= 0 {
		opts.Iterations = 1
	}
	if opts.Workers <= 0 || opts.Workers > opts.VUs {
		opts.Workers = opts.VUs
	}

	r := &Runner{
		opts:  opts,
		clock: clockwork.NewRealClock(),
		newID: uuid.NewString,
	}
	for _, o := range options {
		o(r)
	}
	return r
}

// Run executes the scenario and blocks until every virtual user has been
// terminated, or until the graceful stop period after ctx is cancelled has
// elapsed. Users not yet submitted when ctx is cancelled are never created.
// Exit func errors are joined into the returned error.
func (r *Runner) Run(ctx context.Context, sc Scenario) (*Summary, error) {
	if sc.Name == "" {
		return nil, ErrEmptyScenarioName
	}
	if len(sc.Steps) == 0 {
		return nil, ErrNoSteps
	}

	r.users.Store(0)
	r.failedUsers.Store(0)
	r.iterations.Store(0)

	pool, err := ants.NewPool(r.opts.Workers)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	logger.Info("scenario started",
		zap.String("scenario", sc.Name),
		zap.Int("vus", r.opts.VUs),
		zap.Int("iterations", r.opts.Iterations),
		zap.Int("workers", r.opts.Workers))

	var (
		wg    sync.WaitGroup
		errMu sync.Mutex
		errs  []error
	)
	addErr := func(err error) {
		errMu.Lock()
		errs = append(errs, err)
		errMu.Unlock()
	}

	// slots bounds in-flight users so the submit loop observes ctx while
	// every worker is busy.
	slots := make(chan struct{}, r.opts.Workers)
	start := r.clock.Now()
	submitted := 0
submit:
	for ; submitted < r.opts.VUs; submitted++ {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break submit
		case slots <- struct{}{}:
		}

		scheduled := start.Add(r.startOffset(submitted))
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer func() {
				<-slots
				wg.Done()
			}()
			if err := r.runVU(ctx, sc, scheduled); err != nil {
				addErr(err)
			}
		})
		if submitErr != nil {
			<-slots
			wg.Done()
			addErr(submitErr)
		}
	}
	if submitted < r.opts.VUs {
		logger.Info("scenario cancelled before all virtual users started",
			zap.String("scenario", sc.Name),
			zap.Int("started", submitted),
			zap.Int("skipped", r.opts.VUs-submitted))
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		if r.opts.GracefulStop > 0 {
			select {
			case <-done:
			case <-r.clock.After(r.opts.GracefulStop):
				addErr(ErrGracefulStopTimeout)
			}
		} else {
			<-done
		}
	}

	summary := r.summary(sc, r.clock.Since(start))

	logger.Info("scenario finished",
		zap.String("scenario", sc.Name),
		zap.Int64("users", summary.Users),
		zap.Int64("failed_users", summary.FailedUsers),
		zap.Int64("iterations", summary.Iterations),
		zap.Duration("duration", summary.Duration))

	errMu.Lock()
	defer errMu.Unlock()
	return summary, errors.Join(errs...)
}

// startOffset returns the delay of the i-th virtual user.
func (r *Runner) startOffset(i int) time.Duration {
	if r.opts.StartSpread <= 0 {
		return 0
	}
	return time.Duration(int64(r.opts.StartSpread) * int64(i) / int64(r.opts.VUs))
}

// runVU runs one virtual user. A user whose context is cancelled before its
// session is created is never terminated; once created, the session is
// terminated exactly once.
func (r *Runner) runVU(ctx context.Context, sc Scenario, scheduled time.Time) error {
	if ctx.Err() != nil {
		return nil
	}
	if wait := scheduled.Sub(r.clock.Now()); wait > 0 {
		select {
		case <-ctx.Done():
			return nil
		case <-r.clock.After(wait):
		}
	}

	s := r.newSession(sc, scheduled)

	for it := 0; it < r.opts.Iterations; it++ {
		if ctx.Err() != nil {
			break
		}

		next, err := RunSteps(ctx, sc.Steps, s)
		r.iterations.Add(1)
		s = next
		if err != nil && ctx.Err() == nil {
			s = s.MarkAsFailed()
			logger.Debug("iteration aborted",
				zap.String("scenario", sc.Name),
				zap.String("user_id", s.UserID()),
				zap.Int("iteration", it),
				zap.Error(err))
		}
	}

	return s.Terminate()
}

// newSession creates the session of a virtual user scheduled at scheduled.
// Start lateness is carried forward as drift.
func (r *Runner) newSession(sc Scenario, scheduled time.Time) *session.Session {
	s := session.New(sc.Name, r.newID(),
		session.WithClock(r.clock),
		session.WithExitFunc(r.exitFunc(sc)))

	if late := r.clock.Since(scheduled); late >= time.Millisecond {
		s = s.IncreaseDrift(late.Milliseconds())
	}
	return s
}

func (r *Runner) exitFunc(sc Scenario) session.ExitFunc {
	return func(s *session.Session) error {
		r.users.Add(1)
		if s.IsFailed() {
			r.failedUsers.Add(1)
		}

		logger.Debug("virtual user finished",
			zap.String("scenario", s.Scenario()),
			zap.String("user_id", s.UserID()),
			zap.Bool("failed", s.IsFailed()),
			zap.Int64("drift_ms", s.Drift()),
			zap.Duration("lifetime", r.clock.Since(s.StartTime())))

		if sc.OnExit != nil {
			return sc.OnExit(s)
		}
		return nil
	}
}

func (r *Runner) summary(sc Scenario, elapsed time.Duration) *Summary {
	summary := &Summary{
		Scenario:    sc.Name,
		Users:       r.users.Load(),
		FailedUsers: r.failedUsers.Load(),
		Iterations:  r.iterations.Load(),
		Duration:    elapsed,
	}
	if r.collector != nil {
		summary.Groups = r.collector.Snapshot()
	}
	return summary
}
