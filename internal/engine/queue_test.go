package engine

import (
	"testing"

	"github.com/connorleisz/monitor/internal/domain"
	"github.com/stretchr/testify/require"
)

func gofmtDescriptor() *domain.ToolDescriptor {
	return &domain.ToolDescriptor{Name: "gofmt"}
}

func TestPriorityQueueOrdersByTierThenDistanceThenSeq(t *testing.T) {
	q := newPriorityQueue()
	d := gofmtDescriptor()

	far := &Job{Path: "far.go", Descriptor: d, Tier: TierProximity, Distance: 9, EnqueueSeq: 1}
	near := &Job{Path: "near.go", Descriptor: d, Tier: TierProximity, Distance: 1, EnqueueSeq: 2}
	focus := &Job{Path: "focus.go", Descriptor: d, Tier: TierFocus, EnqueueSeq: 3}
	sameTool := &Job{Path: "other.go", Descriptor: d, Tier: TierSameTool, EnqueueSeq: 0}

	q.push(far)
	q.push(near)
	q.push(focus)
	q.push(sameTool)

	require.Equal(t, focus, q.popTop())
	require.Equal(t, sameTool, q.popTop())
	require.Equal(t, near, q.popTop())
	require.Equal(t, far, q.popTop())
	require.Nil(t, q.popTop())
}

func TestPriorityQueueTiesBrokenByEnqueueOrder(t *testing.T) {
	q := newPriorityQueue()
	d := gofmtDescriptor()

	first := &Job{Path: "a.go", Descriptor: d, Tier: TierProximity, Distance: 3, EnqueueSeq: 1}
	second := &Job{Path: "b.go", Descriptor: d, Tier: TierProximity, Distance: 3, EnqueueSeq: 2}

	q.push(second)
	q.push(first)

	require.Equal(t, first, q.popTop())
	require.Equal(t, second, q.popTop())
}

func TestPriorityQueueRemove(t *testing.T) {
	q := newPriorityQueue()
	d := gofmtDescriptor()
	a := &Job{Path: "a.go", Descriptor: d, Tier: TierProximity, EnqueueSeq: 1}
	b := &Job{Path: "b.go", Descriptor: d, Tier: TierProximity, EnqueueSeq: 2}
	q.push(a)
	q.push(b)

	q.remove(a)
	require.Equal(t, 1, q.Len())
	require.Equal(t, b, q.popTop())
}

func TestPriorityQueueRescoreReordersOnFocusChange(t *testing.T) {
	q := newPriorityQueue()
	d := gofmtDescriptor()
	a := &Job{Path: "a.go", Descriptor: d, Tier: TierProximity, Distance: 1, EnqueueSeq: 1}
	b := &Job{Path: "b.go", Descriptor: d, Tier: TierProximity, Distance: 5, EnqueueSeq: 2}
	q.push(a)
	q.push(b)

	require.Equal(t, TierProximity, q.peek().Tier)
	require.Equal(t, a, q.peek())

	q.rescore("b.go", "", func(p domain.Path, tool string) int {
		if p == "a.go" {
			return 5
		}
		return 1
	})

	require.Equal(t, b, q.peek()) // now TierFocus
}
