package session

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnterGroup_Root(t *testing.T) {
	s := newTestSession().EnterGroup("root")

	assert.Equal(t, []string{"root"}, s.GroupHierarchy())
	assert.Equal(t, 1, s.BlockDepth())
}

func TestEnterGroup_Nested(t *testing.T) {
	s := newTestSession().
		EnterGroup("root").
		EnterGroup("child").
		EnterGroup("last")

	assert.Equal(t, []string{"root", "child", "last"}, s.GroupHierarchy())
	assert.Equal(t, 3, s.BlockDepth())
}

func TestEnterGroup_SiblingsDoNotShareHierarchy(t *testing.T) {
	parent := newTestSession().EnterGroup("root")

	a := parent.EnterGroup("a")
	b := parent.EnterGroup("b")

	assert.Equal(t, []string{"root", "a"}, a.GroupHierarchy())
	assert.Equal(t, []string{"root", "b"}, b.GroupHierarchy())
	assert.Equal(t, []string{"root"}, parent.GroupHierarchy())
}

func TestEnterGroup_RecordsStartTime(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := newTestSession(WithClock(clock))

	clock.Advance(3 * time.Second)
	s = s.EnterGroup("g")

	g, ok := s.CurrentGroup()
	require.True(t, ok)
	assert.Equal(t, clock.Now(), g.StartedAt())
	assert.Equal(t, "g", g.Name())
}

func TestExitGroup_PopsOne(t *testing.T) {
	s := newTestSession().EnterGroup("root").EnterGroup("child")

	out := s.ExitGroup()
	assert.Equal(t, 1, out.BlockDepth())
	assert.Equal(t, []string{"root"}, out.GroupHierarchy())

	out = out.ExitGroup()
	assert.Equal(t, 0, out.BlockDepth())
	assert.Empty(t, out.GroupHierarchy())
}

func TestExitGroup_NoGroup(t *testing.T) {
	s := newTestSession()
	assert.Same(t, s, s.ExitGroup())

	looping := s.EnterLoop("i")
	assert.Same(t, looping, looping.ExitGroup())
}

func TestGroupHierarchy_Fresh(t *testing.T) {
	h := newTestSession().GroupHierarchy()
	assert.NotNil(t, h)
	assert.Empty(t, h)
}

func TestGroupHierarchy_TwoLevels(t *testing.T) {
	s := newTestSession().EnterGroup("first").EnterGroup("second")
	assert.Equal(t, []string{"first", "second"}, s.GroupHierarchy())
}

func TestGroupHierarchy_ReturnsCopy(t *testing.T) {
	s := newTestSession().EnterGroup("a").EnterGroup("b")

	h := s.GroupHierarchy()
	h[0] = "mutated"

	assert.Equal(t, []string{"a", "b"}, s.GroupHierarchy())
}

func TestGroupHierarchy_OnlyHead(t *testing.T) {
	s := newTestSession().EnterGroup("outer").EnterLoop("i")

	assert.Empty(t, s.GroupHierarchy())
	_, ok := s.CurrentGroup()
	assert.False(t, ok)
}

// A loop between two groups starts a new root hierarchy: EnterGroup only
// nests under a group that is directly on top of the stack.
func TestEnterGroup_LoopBetweenGroups(t *testing.T) {
	s := newTestSession().
		EnterGroup("outer").
		EnterLoop("i").
		EnterGroup("inner")

	assert.Equal(t, []string{"inner"}, s.GroupHierarchy())
	assert.Equal(t, 3, s.BlockDepth())

	s = s.ExitGroup()
	assert.Empty(t, s.GroupHierarchy())

	s = s.ExitLoop()
	assert.Equal(t, []string{"outer"}, s.GroupHierarchy())
}

func TestEnterLoop(t *testing.T) {
	s := newTestSession().EnterLoop("i")

	assert.Equal(t, 1, s.BlockDepth())
	n, err := s.LoopCounterValue("i")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.True(t, s.Contains(TimestampKey("i")))

	blocks := s.Blocks()
	require.Len(t, blocks, 1)
	loop, ok := blocks[0].(LoopBlock)
	require.True(t, ok)
	assert.Equal(t, "i", loop.Counter())
	assert.True(t, loop.OwnsCounter())
}

func TestExitLoop(t *testing.T) {
	s := newTestSession().EnterGroup("g").EnterLoop("i").IncrementCounter("i")

	out := s.ExitLoop()
	assert.Equal(t, 1, out.BlockDepth())
	assert.False(t, out.Contains("i"))
	assert.False(t, out.Contains(TimestampKey("i")))
	assert.Equal(t, []string{"g"}, out.GroupHierarchy())
}

func TestEnterLoop_BoundNameSurvivesExit(t *testing.T) {
	s := newTestSession().Set("i", "user-value")

	looping := s.EnterLoop("i")
	v, _ := looping.Get("i")
	assert.Equal(t, "user-value", v)
	assert.False(t, looping.Contains(TimestampKey("i")))
	loop, ok := looping.Blocks()[0].(LoopBlock)
	require.True(t, ok)
	assert.False(t, loop.OwnsCounter())

	out := looping.ExitLoop()
	assert.Equal(t, 0, out.BlockDepth())
	v, ok = out.Get("i")
	require.True(t, ok)
	assert.Equal(t, "user-value", v)
	assert.False(t, out.Contains(TimestampKey("i")))
}

func TestExitLoop_NestedSameCounterKeepsOuter(t *testing.T) {
	s := newTestSession().EnterLoop("i").IncrementCounter("i")
	ts, err := s.LoopTimestampValue("i")
	require.NoError(t, err)

	inner := s.EnterLoop("i").IncrementCounter("i")
	out := inner.ExitLoop()

	assert.Equal(t, 1, out.BlockDepth())
	n, err := out.LoopCounterValue("i")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	after, err := out.LoopTimestampValue("i")
	require.NoError(t, err)
	assert.Equal(t, ts, after)

	out = out.ExitLoop()
	assert.False(t, out.Contains("i"))
	assert.False(t, out.Contains(TimestampKey("i")))
}

func TestExitLoop_NoLoop(t *testing.T) {
	s := newTestSession()
	assert.Same(t, s, s.ExitLoop())

	grouped := s.EnterGroup("g")
	assert.Same(t, grouped, grouped.ExitLoop())
}

func TestBlocks_InnermostFirst(t *testing.T) {
	s := newTestSession().EnterGroup("a").EnterLoop("i").EnterGroup("b")

	blocks := s.Blocks()
	require.Len(t, blocks, 3)

	g, ok := blocks[0].(GroupBlock)
	require.True(t, ok)
	assert.Equal(t, []string{"b"}, g.Hierarchy())

	_, ok = blocks[1].(LoopBlock)
	assert.True(t, ok)

	g, ok = blocks[2].(GroupBlock)
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, g.Hierarchy())
}
