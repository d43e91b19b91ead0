package sched

import (
	"testing"
)

func TestReadyQueue_PopEmpty_ReturnsFalse(t *testing.T) {
	// GIVEN an empty queue
	rq := &ReadyQueue{}

	// WHEN Pop() is called
	idx, ok := rq.Pop()

	// THEN nothing is returned and the idle path is taken
	if ok || idx != -1 {
		t.Errorf("Pop on empty queue: got (%d, %v), want (-1, false)", idx, ok)
	}
}

func TestReadyQueue_PushPop_FIFO(t *testing.T) {
	// GIVEN a queue with [2, 0, 1]
	rq := &ReadyQueue{}
	rq.Push(2)
	rq.Push(0)
	rq.Push(1)

	// WHEN popped three times
	var got []int
	for rq.Len() > 0 {
		idx, _ := rq.Pop()
		got = append(got, idx)
	}

	// THEN append order is preserved
	want := []int{2, 0, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Pop order: got %v, want %v", got, want)
		}
	}
}

func TestReadyQueue_Reorder_LengthChange_Panics(t *testing.T) {
	// GIVEN a queue with two entries
	rq := &ReadyQueue{}
	rq.Push(0)
	rq.Push(1)

	// WHEN fn truncates the slice
	defer func() {
		// THEN Reorder panics
		if recover() == nil {
			t.Error("expected panic when fn changes queue length")
		}
	}()
	rq.Reorder(func(q []int) {
		rq.queue = q[:1]
	})
}

func TestReadyQueue_Reorder_InPlace(t *testing.T) {
	rq := &ReadyQueue{}
	rq.Push(0)
	rq.Push(1)
	rq.Push(2)

	rq.Reorder(func(q []int) {
		q[0], q[2] = q[2], q[0]
	})

	if got := rq.String(); got != "[2 1 0]" {
		t.Errorf("String after reorder: got %s, want [2 1 0]", got)
	}
}
