package sched

import "github.com/sirupsen/logrus"

// sliceThreshold is the timer-tick count after which a running user-class thread is considered for
// preemption.
const sliceThreshold = 8

// Scheduler holds the three ready plists, the waiting and terminated
// plists, and the currently running thread. All list
// mutations and state-field updates happen under the scheduler lock.
//
// The lock is a nested-acquisition counter around
// CPU.DisableInterrupts/EnableInterrupts, not a sync.Mutex. There is
// exactly one logical CPU in this model, so the counter's job is
// re-entrancy (Schedule calling into UpdateThread, which locks again)
// rather than excluding concurrent goroutines; driving one Scheduler
// from multiple goroutines concurrently is outside this model, the same
// way a single real CPU core never races itself.
type Scheduler struct {
	kernelReady *plist
	systemReady *plist
	userReady   *plist
	waiting     *plist
	terminated  *plist

	current     *Thread
	lockCounter int

	cpu CPU
	log *logrus.Entry

	// OnContextSwitch, if set, is invoked after current is reassigned to
	// a different thread — standing in for reloading the kernel stack
	// pointer, switching the page-directory physical address, and
	// resuming the new thread's saved stack, none of which has a meaning
	// in this simulation unless a caller supplies one.
	OnContextSwitch func(*Thread)

	// DeliverSignal, if set, is invoked after a context switch when the
	// new current thread has Pending set and SignalManual clear.
	DeliverSignal func(*Thread)
}

// New returns a Scheduler with empty queues. A nil cpu defaults to
// NullCPU.
func New(cpu CPU) *Scheduler {
	if cpu == nil {
		cpu = NullCPU{}
	}
	return &Scheduler{
		kernelReady: newPlist(),
		systemReady: newPlist(),
		userReady:   newPlist(),
		waiting:     newPlist(),
		terminated:  newPlist(),
		cpu:         cpu,
		log:         logrus.WithField("subsystem", "sched"),
	}
}

// Lock acquires the scheduler lock, disabling interrupts on first entry
// and incrementing the nesting counter.
func (s *Scheduler) Lock() {
	if s.lockCounter == 0 {
		s.cpu.DisableInterrupts()
	}
	s.lockCounter++
}

// Unlock releases one level of the scheduler lock, re-enabling
// interrupts only when the nesting counter returns to zero.
func (s *Scheduler) Unlock() {
	s.lockCounter--
	if s.lockCounter == 0 {
		s.cpu.EnableInterrupts()
	}
}

// Current returns the currently running thread, or nil before the first
// Schedule call.
func (s *Scheduler) Current() *Thread { return s.current }

func (s *Scheduler) listFor(state State, policy Policy) *plist {
	switch state {
	case Ready:
		switch policy {
		case KernelPolicy:
			return s.kernelReady
		case SystemPolicy:
			return s.systemReady
		default:
			return s.userReady
		}
	case Waiting:
		return s.waiting
	case Terminated:
		return s.terminated
	default:
		return nil
	}
}

// QueueThread inserts th into the plist implied by its own
// (State, Policy).
func (s *Scheduler) QueueThread(th *Thread) {
	if l := s.listFor(th.State, th.Policy); l != nil {
		l.add(th)
	}
}

func (s *Scheduler) removeThread(th *Thread) {
	if l := s.listFor(th.State, th.Policy); l != nil {
		l.del(th)
	}
}

// UpdateThread is the sole state-machine mutator: remove
// th from its current list, set the new state, insert into the list the
// new (state, policy) implies. A no-op if the state is unchanged.
func (s *Scheduler) UpdateThread(th *Thread, state State) {
	if th.State == state {
		return
	}
	s.Lock()
	s.removeThread(th)
	th.State = state
	s.QueueThread(th)
	s.Unlock()
}

// PopNext removes and returns the first kernel-class thread if any is
// ready, else the first system-class thread, else the first user-class
// thread.
func (s *Scheduler) PopNext() *Thread {
	if th := s.kernelReady.pop(); th != nil {
		return th
	}
	if th := s.systemReady.pop(); th != nil {
		return th
	}
	return s.userReady.pop()
}

// PeekNext is PopNext without removal.
func (s *Scheduler) PeekNext() *Thread {
	if th := s.kernelReady.first(); th != nil {
		return th
	}
	if th := s.systemReady.first(); th != nil {
		return th
	}
	return s.userReady.first()
}

// TopPriority returns the priority of the first thread in the plist for
// (state, policy), or maxPriority (the largest int) if it is empty.
func (s *Scheduler) TopPriority(state State, policy Policy) int {
	l := s.listFor(state, policy)
	if l == nil || l.empty() {
		return maxPriority
	}
	return l.first().Priority
}

const maxPriority = int(^uint(0) >> 1)

// switchThread makes nt current, resetting its time slice and
// transitioning it to Running; if nt is already current, this is only a
// time-slice reset.
func (s *Scheduler) switchThread(nt *Thread) {
	if s.current == nt {
		s.current.TimeSlice = 0
		s.UpdateThread(s.current, Running)
		return
	}

	s.current = nt
	s.current.TimeSlice = 0
	s.UpdateThread(s.current, Running)

	if s.OnContextSwitch != nil {
		s.OnContextSwitch(s.current)
	}
}

// Schedule picks the next thread to run and switches to it, idling the
// CPU if nothing is runnable, then delivers a pending signal to the new
// current thread if one is due. It does nothing while the current
// thread is still Running.
func (s *Scheduler) Schedule() {
	if s.current != nil && s.current.State == Running {
		return
	}

	s.Lock()
	nt := s.PopNext()
	for nt == nil {
		s.Unlock()
		s.cpu.Halt()
		s.Lock()
		nt = s.PopNext()
		if nt == nil && s.current != nil && s.current.State == Running {
			nt = s.current
		}
	}
	s.switchThread(nt)

	if s.current.Pending && !s.current.SignalManual && s.DeliverSignal != nil {
		s.DeliverSignal(s.current)
	}
	s.Unlock()
}

// Tick is the timer-interrupt handler:
// a no-op unless the current thread is a running user-class thread.
// Once current has run sliceThreshold ticks, each tick consults
// PeekNext; if a runnable thread exists it
// marks current Ready (after rescaling user-class priorities, if the
// next thread is itself user-class) and requests a reschedule, which
// happens immediately if the lock is not already held by an outer
// caller.
func (s *Scheduler) Tick() {
	if s.current == nil || s.current.Policy != UserPolicy || s.current.State != Running {
		return
	}

	s.Lock()
	schedulable := false
	s.current.TimeSlice++

	if s.current.TimeSlice >= sliceThreshold {
		if nt := s.PeekNext(); nt != nil {
			if nt.Policy == UserPolicy {
				s.rescaleUserPriorities()
			}
			s.UpdateThread(s.current, Ready)
			schedulable = true
		}
	}
	s.Unlock()

	if schedulable && s.lockCounter == 0 {
		s.log.WithField("thread", s.current.ID).Debug("round-robin reschedule")
		s.Schedule()
	}
}

// Exit transitions th to Terminated, removing it from whichever
// ready/waiting list it occupied.
func (s *Scheduler) Exit(th *Thread) {
	s.UpdateThread(th, Terminated)
}

// rescaleUserPriorities subtracts the lowest user-class priority from
// every user-class thread, then sets current's priority to one past the
// new highest, re-queuing it at the tail on the caller's next
// UpdateThread call. Must be called with the scheduler
// lock held.
func (s *Scheduler) rescaleUserPriorities() {
	first := s.userReady.first()
	last := s.userReady.last()
	if first == nil || last == nil {
		return
	}
	scale := first.Priority
	s.userReady.forEach(func(t *Thread) { t.Priority -= scale })
	s.current.Priority = last.Priority + 1
}
