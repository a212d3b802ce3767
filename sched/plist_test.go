package sched

import (
	"testing"

	"github.com/kylelemons/godebug/pretty"
	"github.com/stretchr/testify/require"
)

func names(p *plist) []string {
	var out []string
	p.forEach(func(th *Thread) { out = append(out, th.Name) })
	return out
}

// TestPlistOrdersByPriorityThenArrival checks the tie-break rule: equal
// priorities keep insertion order.
func TestPlistOrdersByPriorityThenArrival(t *testing.T) {
	p := newPlist()
	a := NewThread(1, "a", UserPolicy, 5)
	b := NewThread(2, "b", UserPolicy, 1)
	c := NewThread(3, "c", UserPolicy, 5)
	d := NewThread(4, "d", UserPolicy, 3)

	p.add(a)
	p.add(b)
	p.add(c)
	p.add(d)

	want := []string{"b", "d", "a", "c"}
	if diff := pretty.Compare(want, names(p)); diff != "" {
		t.Fatalf("plist order mismatch (-want +got):\n%s", diff)
	}
}

func TestPlistPopRemovesFront(t *testing.T) {
	p := newPlist()
	a := NewThread(1, "a", UserPolicy, 2)
	b := NewThread(2, "b", UserPolicy, 1)
	p.add(a)
	p.add(b)

	got := p.pop()
	require.Equal(t, "b", got.Name)
	require.EqualValues(t, 1, p.len())
	require.Equal(t, "a", p.first().Name)
}

func TestPlistDelMidList(t *testing.T) {
	p := newPlist()
	a := NewThread(1, "a", UserPolicy, 1)
	b := NewThread(2, "b", UserPolicy, 2)
	c := NewThread(3, "c", UserPolicy, 3)
	p.add(a)
	p.add(b)
	p.add(c)

	p.del(b)
	require.Equal(t, []string{"a", "c"}, names(p))
	require.True(t, p.empty() == false)
}
