package sched

import "container/list"

// plist is a priority-sorted list preserving FIFO among equal
// priorities: insertion walks the list to find the first entry with a
// strictly greater priority and splices before it, leaving
// equal-priority entries in arrival order.
type plist struct {
	l *list.List
}

func newPlist() *plist {
	return &plist{l: list.New()}
}

func (p *plist) empty() bool {
	return p.l.Len() == 0
}

func (p *plist) len() int {
	return p.l.Len()
}

func (p *plist) first() *Thread {
	if e := p.l.Front(); e != nil {
		return e.Value.(*Thread)
	}
	return nil
}

func (p *plist) last() *Thread {
	if e := p.l.Back(); e != nil {
		return e.Value.(*Thread)
	}
	return nil
}

func (p *plist) add(th *Thread) {
	for e := p.l.Front(); e != nil; e = e.Next() {
		if e.Value.(*Thread).Priority > th.Priority {
			th.elem = p.l.InsertBefore(th, e)
			return
		}
	}
	th.elem = p.l.PushBack(th)
}

func (p *plist) del(th *Thread) {
	if th.elem != nil {
		p.l.Remove(th.elem)
		th.elem = nil
	}
}

func (p *plist) pop() *Thread {
	th := p.first()
	if th != nil {
		p.del(th)
	}
	return th
}

func (p *plist) forEach(fn func(*Thread)) {
	for e := p.l.Front(); e != nil; e = e.Next() {
		fn(e.Value.(*Thread))
	}
}
