// Package sched implements a three-class priority-preemptive thread
// scheduler: ready/waiting/terminated plists, a state-machine mutator,
// next-thread selection, context switching, and a timer-tick handler
// that rescales user-class priorities to prevent starvation.
package sched

import "container/list"

// Policy is a thread's scheduling class. Kernel-class always preempts
// system-class, which always preempts user-class; there is no aging
// across classes.
type Policy int

const (
	KernelPolicy Policy = iota
	SystemPolicy
	UserPolicy
)

func (p Policy) String() string {
	switch p {
	case KernelPolicy:
		return "kernel"
	case SystemPolicy:
		return "system"
	case UserPolicy:
		return "user"
	default:
		return "unknown"
	}
}

// State is a thread's position in the state machine
// ready ⇆ running, running → waiting, waiting → ready,
// running|waiting → terminated.
type State int

const (
	Ready State = iota
	Running
	Waiting
	Terminated
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Running:
		return "running"
	case Waiting:
		return "waiting"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Thread is the schedulable unit. Priority is
// compared ascending (lower value runs first, matching the plist's
// sorted-insert order); TimeSlice counts timer ticks the thread has run
// since it was last switched in and is compared against the user-class
// preemption threshold.
type Thread struct {
	ID       int
	Name     string
	Policy   Policy
	State    State
	Priority int

	TimeSlice int

	// Pending and SignalManual gate the post-switch signal-delivery
	// check: a pending signal is delivered unless the manual-delivery
	// flag is set.
	Pending      bool
	SignalManual bool

	elem *list.Element
}

// NewThread returns a Thread in the Ready state, not yet queued on any
// scheduler (the caller must QueueThread it).
func NewThread(id int, name string, policy Policy, priority int) *Thread {
	return &Thread{ID: id, Name: name, Policy: policy, State: Ready, Priority: priority}
}
