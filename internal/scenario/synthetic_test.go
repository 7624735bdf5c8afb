package scenario

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yqhp/vusession/internal/pacing"
	"yqhp/vusession/internal/runner"
	"yqhp/vusession/internal/stats"
	"yqhp/vusession/pkg/session"
)

func TestSynthetic_SingleUser(t *testing.T) {
	collector := stats.NewGroupCollector()
	sc := Synthetic(Params{Pages: 2}, collector, pacing.NewPauser(nil, 0))
	assert.Equal(t, "synthetic", sc.Name)

	s, err := runner.RunSteps(context.Background(), sc.Steps, session.New(sc.Name, "u-1"))
	require.NoError(t, err)

	assert.False(t, s.IsFailed())
	assert.Equal(t, 0, s.BlockDepth())
	assert.Equal(t, 0, s.AttributeCount(), "logout clears every attribute: %v", s.Attributes())

	page, ok := collector.Get([]string{"page"})
	require.True(t, ok)
	assert.Equal(t, int64(2), page.Count)

	for _, path := range [][]string{{"login"}, {"browse"}, {"checkout"}} {
		g, ok := collector.Get(path)
		require.True(t, ok, "missing group %v", path)
		assert.Equal(t, int64(1), g.Count)
		assert.Equal(t, int64(0), g.Failures)
	}
}

func TestSynthetic_MissingTokenFails(t *testing.T) {
	collector := stats.NewGroupCollector()
	sc := Synthetic(Params{Pages: 1}, collector, pacing.NewPauser(nil, 0))

	// skip login
	s, err := runner.RunSteps(context.Background(), sc.Steps[1:], session.New(sc.Name, "u-1"))
	assert.ErrorIs(t, err, runner.ErrSessionFailed)
	assert.True(t, s.IsFailed())
	assert.Equal(t, 0, s.BlockDepth())

	g, ok := collector.Get([]string{"checkout"})
	require.True(t, ok)
	assert.Equal(t, int64(1), g.Failures)
}

func TestSynthetic_PageAttributeNotReused(t *testing.T) {
	collector := stats.NewGroupCollector()
	sc := Synthetic(Params{Pages: 2}, collector, pacing.NewPauser(nil, 0))

	s, err := runner.RunSteps(context.Background(), sc.Steps, session.New(sc.Name, "u-1").Set("page", "home"))
	assert.ErrorIs(t, err, runner.ErrCounterInUse)
	assert.Equal(t, 0, s.BlockDepth())

	v, ok := s.Get("page")
	require.True(t, ok)
	assert.Equal(t, "home", v)
	assert.False(t, s.Contains(session.TimestampKey("page")))

	g, ok := collector.Get([]string{"browse"})
	require.True(t, ok)
	assert.Equal(t, int64(1), g.Failures)
	_, ok = collector.Get([]string{"page"})
	assert.False(t, ok)
}

func TestSynthetic_WithRunner(t *testing.T) {
	collector := stats.NewGroupCollector()
	sc := Synthetic(Params{Name: "shop", Pages: 3}, collector, pacing.NewPauser(nil, 0))

	var mu sync.Mutex
	var exited []*session.Session
	sc.OnExit = func(s *session.Session) error {
		mu.Lock()
		defer mu.Unlock()
		exited = append(exited, s)
		return nil
	}

	summary, err := runner.New(runner.Options{VUs: 8, Iterations: 2, Workers: 3}, runner.WithCollector(collector)).
		Run(context.Background(), sc)
	require.NoError(t, err)

	assert.Equal(t, int64(8), summary.Users)
	assert.Equal(t, int64(0), summary.FailedUsers)
	assert.Len(t, exited, 8)
	for _, s := range exited {
		assert.Equal(t, "shop", s.Scenario())
	}

	page, ok := collector.Get([]string{"page"})
	require.True(t, ok)
	assert.Equal(t, int64(8*2*3), page.Count)
}
