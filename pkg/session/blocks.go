package session

import (
	"time"

	"github.com/benbjohnson/immutable"
)

// Block is an entry of the control-flow stack. The set of variants is closed:
// GroupBlock and LoopBlock.
type Block interface {
	block()
}

// GroupBlock records the names of the currently open nested groups.
type GroupBlock struct {
	hierarchy []string
	startedAt time.Time
}

func (GroupBlock) block() {}

// Hierarchy returns the group names, outermost first.
func (b GroupBlock) Hierarchy() []string {
	out := make([]string, len(b.hierarchy))
	copy(out, b.hierarchy)
	return out
}

// Name returns the innermost group name.
func (b GroupBlock) Name() string {
	if len(b.hierarchy) == 0 {
		return ""
	}
	return b.hierarchy[len(b.hierarchy)-1]
}

// StartedAt returns the time the group was entered.
func (b GroupBlock) StartedAt() time.Time { return b.startedAt }

// LoopBlock marks an open loop driven by the counter of the same name.
type LoopBlock struct {
	counter string
	// owned is set when entering the loop created the counter.
	owned bool
}

func (LoopBlock) block() {}

// Counter returns the name of the loop counter.
func (b LoopBlock) Counter() string { return b.counter }

// OwnsCounter reports whether the counter was created by this loop and is
// therefore removed when the loop exits.
func (b LoopBlock) OwnsCounter() bool { return b.owned }

func (s *Session) head() (Block, bool) {
	n := s.blocks.Len()
	if n == 0 {
		return nil, false
	}
	return s.blocks.Get(n - 1), true
}

func (s *Session) push(b Block) *immutable.List[Block] {
	return s.blocks.Append(b)
}

func (s *Session) pop() *immutable.List[Block] {
	return s.blocks.Slice(0, s.blocks.Len()-1)
}

// EnterGroup opens a group. When the head block is a group the new group is
// nested under it; any other head starts a new root hierarchy.
func (s *Session) EnterGroup(name string) *Session {
	var hierarchy []string
	if g, ok := s.CurrentGroup(); ok {
		hierarchy = make([]string, len(g.hierarchy), len(g.hierarchy)+1)
		copy(hierarchy, g.hierarchy)
	}
	hierarchy = append(hierarchy, name)
	return s.withBlocks(s.push(GroupBlock{hierarchy: hierarchy, startedAt: s.clock.Now()}))
}

// ExitGroup closes the innermost group. The receiver is returned when the
// head block is not a group.
func (s *Session) ExitGroup() *Session {
	if _, ok := s.CurrentGroup(); !ok {
		return s
	}
	return s.withBlocks(s.pop())
}

// CurrentGroup returns the head block when it is a group.
func (s *Session) CurrentGroup() (GroupBlock, bool) {
	b, ok := s.head()
	if !ok {
		return GroupBlock{}, false
	}
	g, ok := b.(GroupBlock)
	return g, ok
}

// GroupHierarchy returns the hierarchy of the head block, or an empty slice
// when the head is not a group. Blocks below the head are not inspected.
func (s *Session) GroupHierarchy() []string {
	g, ok := s.CurrentGroup()
	if !ok {
		return []string{}
	}
	return g.Hierarchy()
}

// EnterLoop pushes a LoopBlock and initializes its counter in one snapshot.
// When counter is already bound the existing value is reused and left in
// place by ExitLoop.
func (s *Session) EnterLoop(counter string) *Session {
	owned := !s.Contains(counter)
	c := s.InitCounter(counter).copy()
	c.blocks = s.push(LoopBlock{counter: counter, owned: owned})
	return c
}

// ExitLoop pops the head LoopBlock and, when the loop created its counter,
// removes the counter in the same snapshot. The receiver is returned when
// the head block is not a loop.
func (s *Session) ExitLoop() *Session {
	b, ok := s.head()
	if !ok {
		return s
	}
	loop, ok := b.(LoopBlock)
	if !ok {
		return s
	}
	c := s
	if loop.owned {
		c = s.RemoveCounter(loop.counter)
	}
	c = c.copy()
	c.blocks = s.pop()
	return c
}

// Blocks returns the stack, innermost block first.
func (s *Session) Blocks() []Block {
	n := s.blocks.Len()
	out := make([]Block, 0, n)
	for i := n - 1; i >= 0; i-- {
		out = append(out, s.blocks.Get(i))
	}
	return out
}

// BlockDepth returns the number of open blocks.
func (s *Session) BlockDepth() int {
	return s.blocks.Len()
}
