// Package session provides the immutable per-virtual-user execution context.
//
// A Session carries user-bound attributes, a stack of control-flow blocks
// (groups and loops), loop counters paired with their creation time, the
// accumulated pacing drift and a failure flag. Every mutator returns a new
// snapshot that shares unchanged state with its receiver, so sessions can be
// handed between goroutines without locking. Mutators that would not change
// anything return the receiver itself; callers may compare pointers to detect
// a no-op.
package session
