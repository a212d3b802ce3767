// Package waitqueue implements a wait-queue/wakeup mechanism: a list of
// entries pairing a thread with a wakeup callback, woken in insertion
// order with no guarantee of exclusivity.
package waitqueue

import (
	"container/list"

	"github.com/gokernel/core/sched"
)

// Entry pairs a blocked thread with the callback invoked to wake it.
type Entry struct {
	Thread *sched.Thread
	Wake   func(*sched.Thread)

	elem *list.Element
}

// Queue is a wait queue: an ordered list of Entry values.
type Queue struct {
	l *list.List
}

// New returns an empty wait queue.
func New() *Queue {
	return &Queue{l: list.New()}
}

// Add appends e to the queue.
func (q *Queue) Add(e *Entry) {
	e.elem = q.l.PushBack(e)
}

// Remove drops e from the queue; callbacks typically call this on
// themselves once the thread they guard has been made ready.
func (q *Queue) Remove(e *Entry) {
	if e.elem != nil {
		q.l.Remove(e.elem)
		e.elem = nil
	}
}

// Len reports how many entries are currently queued.
func (q *Queue) Len() int {
	return q.l.Len()
}

// WakeUp invokes every entry's callback in insertion order. Callbacks
// are free to call Remove on their own entry; WakeUp snapshots the
// entry list up front so that is safe, mirroring a
// list_for_each_entry_safe traversal.
func (q *Queue) WakeUp() {
	entries := make([]*Entry, 0, q.l.Len())
	for e := q.l.Front(); e != nil; e = e.Next() {
		entries = append(entries, e.Value.(*Entry))
	}
	for _, e := range entries {
		e.Wake(e.Thread)
	}
}

// Block moves th to Waiting and adds an entry whose callback
// transitions th back to Ready in s and removes itself from q,
// guaranteeing that after a WakeUp every prior waiter is Ready and q is
// empty.
func Block(s *sched.Scheduler, q *Queue, th *sched.Thread) *Entry {
	e := &Entry{Thread: th}
	e.Wake = func(t *sched.Thread) {
		s.UpdateThread(t, sched.Ready)
		q.Remove(e)
	}
	q.Add(e)
	s.UpdateThread(th, sched.Waiting)
	return e
}
