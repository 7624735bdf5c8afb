// Package scenario provides the built-in workflows run by the CLI.
package scenario

import (
	"context"
	"fmt"
	"time"

	"yqhp/vusession/internal/pacing"
	"yqhp/vusession/internal/runner"
	"yqhp/vusession/internal/stats"
	"yqhp/vusession/pkg/session"
)

// DefaultPages is the number of catalog pages a synthetic user browses.
const DefaultPages = 3

// Params configures the synthetic scenario.
type Params struct {
	Name      string
	ThinkTime time.Duration
	Pages     int
}

// Synthetic returns a login / browse / checkout workflow that exercises every
// session operation without touching the network.
func Synthetic(p Params, collector *stats.GroupCollector, pauser *pacing.Pauser) runner.Scenario {
	if p.Name == "" {
		p.Name = "synthetic"
	}
	if p.Pages <= 0 {
		p.Pages = DefaultPages
	}

	think := runner.Pause(pauser, p.ThinkTime)

	login := runner.Group("login", collector,
		runner.Exec("credentials", func(s *session.Session) *session.Session {
			return s.SetAll(map[string]any{
				"username": "user-" + s.UserID(),
				"password": "secret",
			})
		}),
		runner.NewStep("authenticate", func(_ context.Context, s *session.Session) (*session.Session, error) {
			user, err := session.As[string](s, "username")
			if err != nil {
				return s, err
			}
			return s.Set("token", "tok-"+user).RemoveAll("password"), nil
		}),
		think,
	)

	browse := runner.Group("browse", collector,
		runner.Repeat(p.Pages, "page",
			runner.Group("page", collector,
				runner.NewStep("view", func(_ context.Context, s *session.Session) (*session.Session, error) {
					n, err := s.LoopCounterValue("page")
					if err != nil {
						return s, err
					}
					return s.Set("last_page", n), nil
				}),
				think,
			),
		),
		runner.NewStep("loop closed", func(_ context.Context, s *session.Session) (*session.Session, error) {
			// the loop is closed here, so its counter must be gone
			if s.Contains("page") {
				return s, fmt.Errorf("loop counter %q leaked", "page")
			}
			return s, nil
		}),
	)

	checkout := runner.Group("checkout", collector,
		runner.FailWhen("require token", func(s *session.Session) bool {
			return !s.Contains("token")
		}),
		runner.ExitHereIfFailed(),
		runner.Exec("place order", session.Compose(
			session.SetUpdate("order", "pending"),
			session.SetUpdate("order", "placed"),
			session.RemoveUpdate("last_page"),
		)),
		runner.If("receipt", func(s *session.Session) bool {
			order, _ := session.As[string](s, "order")
			return order == "placed"
		}, session.SetUpdate("receipt", true), nil),
	)

	logout := runner.Exec("logout", func(s *session.Session) *session.Session {
		return s.RemoveAll("token", "username", "order", "receipt")
	})

	return runner.Scenario{
		Name:  p.Name,
		Steps: []runner.Step{login, browse, checkout, logout},
	}
}
