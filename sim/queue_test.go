package sim

import (
	"container/heap"
	"testing"
)

func TestItemQueue_PopsByFrameThenSubmission(t *testing.T) {
	// GIVEN items pushed out of frame order, two of them at the same frame
	q := &itemQueue{}
	heap.Push(q, item{due: 20, seq: 1})
	heap.Push(q, item{due: 10, seq: 2})
	heap.Push(q, item{due: 20, seq: 0})
	heap.Push(q, item{due: 10, seq: 3})

	// WHEN all are popped
	var got [][2]int64
	for q.Len() > 0 {
		it := heap.Pop(q).(item)
		got = append(got, [2]int64{it.due, int64(it.seq)})
	}

	// THEN frames ascend and ties keep submission order
	want := [][2]int64{{10, 2}, {10, 3}, {20, 0}, {20, 1}}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("pop[%d]: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestItemQueue_Without_KeepsTerminationsAndCalls(t *testing.T) {
	// GIVEN work for entity 1 and 2 plus a termination and a call for 1
	q := itemQueue{
		{kind: itemTask, to: 1, seq: 0},
		{kind: itemMessage, to: 2, seq: 1},
		{kind: itemMessage, to: 1, seq: 2},
		{kind: itemTerminate, to: 1, seq: 3},
		{kind: itemCall, seq: 4},
	}

	// WHEN entity 1 is removed
	kept := q.without(1)
	heap.Init(&kept)

	// THEN only its tasks and messages are gone
	if kept.Len() != 3 {
		t.Fatalf("Len: got %d, want 3", kept.Len())
	}
	for _, it := range kept {
		if it.to == 1 && (it.kind == itemTask || it.kind == itemMessage) {
			t.Errorf("without(1) kept %s for entity 1", it.kind)
		}
	}
}

func TestItemKind_String(t *testing.T) {
	tests := map[itemKind]string{
		itemTask:      "task",
		itemMessage:   "message",
		itemTerminate: "terminate",
		itemCall:      "call",
	}
	for k, want := range tests {
		if got := k.String(); got != want {
			t.Errorf("%d.String(): got %q, want %q", k, got, want)
		}
	}
}
