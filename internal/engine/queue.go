// Package engine implements the Job Engine (§4.6): a priority queue of
// analyzer runs dispatched to a pool of worker subprocesses, with
// preemption, timeouts, worker-death retry, pause/resume, and duplicate
// suppression.
package engine

import (
	"container/heap"

	"github.com/connorleisz/monitor/internal/domain"
)

// Tier is the coarse priority bucket a Job falls into, per §4.6.
type Tier int

const (
	TierFocus      Tier = 0 // every Entry of the row under the cursor, whichever tool
	TierSameTool   Tier = 1 // "refresh all of this tool"
	TierProximity  Tier = 2 // grid distance from the cursor
)

// Job is one queued or running unit of work: an Entry/tool pair to
// execute, per the {entry_ref, descriptor, snapshot_key, enqueue_seq,
// priority} tuple in §4.5.
type Job struct {
	Path        domain.Path
	Descriptor  *domain.ToolDescriptor
	SnapshotKey domain.SnapshotKey

	EnqueueSeq int64
	Tier       Tier
	Distance   int // (|Δrow| + |Δcol|) from the cursor at enqueue/rescore time

	jobID   uint64
	index   int // heap bookkeeping
	retried bool // true once this job has already been retried after a worker death
}

// Less-than ordering: lower Tier first, then lower Distance, then lower
// EnqueueSeq (FIFO within a tier), per §4.6's priority ordering.
func lessJob(a, b *Job) bool {
	if a.Tier != b.Tier {
		return a.Tier < b.Tier
	}
	if a.Tier == TierProximity && a.Distance != b.Distance {
		return a.Distance < b.Distance
	}
	return a.EnqueueSeq < b.EnqueueSeq
}

// priorityQueue is a container/heap priority queue of *Job. No pack
// library offers a generic priority queue with re-scoring support;
// container/heap is the correct stdlib tool for an in-process queue like
// this one, which is the deliberate standard-library choice for this
// piece of the engine (everything that can cross a process/network
// boundary elsewhere uses the pack's libraries instead).
type priorityQueue struct {
	items []*Job
}

func (q *priorityQueue) Len() int { return len(q.items) }
func (q *priorityQueue) Less(i, j int) bool {
	return lessJob(q.items[i], q.items[j])
}
func (q *priorityQueue) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
	q.items[i].index = i
	q.items[j].index = j
}
func (q *priorityQueue) Push(x any) {
	j := x.(*Job)
	j.index = len(q.items)
	q.items = append(q.items, j)
}
func (q *priorityQueue) Pop() any {
	old := q.items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	q.items = old[:n-1]
	return item
}

// newPriorityQueue returns an initialized, empty queue.
func newPriorityQueue() *priorityQueue {
	q := &priorityQueue{}
	heap.Init(q)
	return q
}

func (q *priorityQueue) push(j *Job)   { heap.Push(q, j) }
func (q *priorityQueue) popTop() *Job {
	if q.Len() == 0 {
		return nil
	}
	return heap.Pop(q).(*Job)
}
func (q *priorityQueue) peek() *Job {
	if q.Len() == 0 {
		return nil
	}
	return q.items[0]
}

// remove deletes j from the queue if still present (used when a job is
// superseded or the entry it targets has been invalidated).
func (q *priorityQueue) remove(j *Job) {
	if j.index < 0 || j.index >= len(q.items) || q.items[j.index] != j {
		return
	}
	heap.Remove(q, j.index)
}

// rescore re-derives Tier/Distance for every queued job against the
// current focus, then re-heapifies, per §4.6's "priority refresh on
// every cursor movement" rule. distanceOf returns the grid (|Δrow| +
// |Δcol|) distance of (path, toolName) from the cursor.
func (q *priorityQueue) rescore(focus domain.Path, focusTool string, distanceOf func(path domain.Path, toolName string) int) {
	for _, j := range q.items {
		toolName := ""
		if j.Descriptor != nil {
			toolName = j.Descriptor.Name
		}
		switch {
		case j.Path == focus:
			j.Tier = TierFocus
		case focusTool != "" && toolName == focusTool:
			j.Tier = TierSameTool
		default:
			j.Tier = TierProximity
			j.Distance = distanceOf(j.Path, toolName)
		}
	}
	heap.Init(q)
}
