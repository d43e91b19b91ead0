// Implements the ReadyQueue, which holds the processes eligible for a core.
// Entries are indices into the simulator's process arena.

package sched

import (
	"fmt"
	"strings"
)

// ReadyQueue is the ordered set of Ready processes. Order is append order
// until a Policy reorders it. It is not safe for concurrent use; the
// Simulator guards it with its mutex.
type ReadyQueue struct {
	queue []int
}

// Push adds a process index to the back of the queue.
func (rq *ReadyQueue) Push(idx int) {
	rq.queue = append(rq.queue, idx)
}

// Pop removes and returns the index at the front of the queue.
// ok is false when the queue is empty.
func (rq *ReadyQueue) Pop() (idx int, ok bool) {
	if len(rq.queue) == 0 {
		return -1, false
	}
	idx = rq.queue[0]
	rq.queue = rq.queue[1:]
	return idx, true
}

// Len returns the number of queued processes.
func (rq *ReadyQueue) Len() int {
	return len(rq.queue)
}

// Items returns the queue contents for iteration.
// The returned slice is the queue's internal storage: callers MUST NOT
// append to or reslice it. For reordering, use Reorder.
func (rq *ReadyQueue) Items() []int {
	return rq.queue
}

// Reorder applies fn to the queue contents, allowing in-place reordering.
// fn MUST NOT change the slice length.
func (rq *ReadyQueue) Reorder(fn func([]int)) {
	if fn == nil {
		panic("Reorder: fn must not be nil")
	}
	n := len(rq.queue)
	fn(rq.queue)
	if len(rq.queue) != n {
		panic(fmt.Sprintf("Reorder: fn changed queue length from %d to %d", n, len(rq.queue)))
	}
}

func (rq *ReadyQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, val := range rq.queue {
		sb.WriteString(fmt.Sprint(val))
		if i < len(rq.queue)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}
