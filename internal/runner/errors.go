package runner

import "errors"

var (
	// ErrEmptyScenarioName is returned when the scenario has no name.
	ErrEmptyScenarioName = errors.New("scenario name is empty")

	// ErrNoSteps is returned when the scenario has no steps.
	ErrNoSteps = errors.New("scenario has no steps")

	// ErrGracefulStopTimeout is returned when virtual users are still running
	// after the graceful stop period.
	ErrGracefulStopTimeout = errors.New("virtual users did not stop within the graceful stop period")

	// ErrSessionFailed is returned by ExitHereIfFailed for failed sessions.
	ErrSessionFailed = errors.New("session is marked as failed")

	// ErrCounterInUse is returned by Repeat when its counter name is already
	// bound in the session.
	ErrCounterInUse = errors.New("loop counter name already bound")
)
