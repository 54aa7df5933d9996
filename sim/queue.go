package sim

type itemKind int

const (
	itemTask itemKind = iota
	itemMessage
	itemTerminate
	itemCall
)

func (k itemKind) String() string {
	switch k {
	case itemTask:
		return "task"
	case itemMessage:
		return "message"
	case itemTerminate:
		return "terminate"
	default:
		return "call"
	}
}

// item is one unit of work due at a frame. seq is the submission order and
// breaks ties between items due at the same frame.
type item struct {
	due     int64
	seq     uint64
	kind    itemKind
	to      EntityID
	from    EntityID
	payload any
	reason  error
	fn      func()
}

// itemQueue is a min-heap ordered by (due, seq).
// Implements heap.Interface.
type itemQueue []item

func (q itemQueue) Len() int { return len(q) }

func (q itemQueue) Less(i, j int) bool {
	if q[i].due != q[j].due {
		return q[i].due < q[j].due
	}
	return q[i].seq < q[j].seq
}

func (q itemQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *itemQueue) Push(x any) {
	*q = append(*q, x.(item))
}

func (q *itemQueue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	*q = old[:n-1]
	return it
}

// without returns the queue minus the tasks and messages addressed to id.
// The result must be re-heapified.
func (q itemQueue) without(id EntityID) itemQueue {
	kept := q[:0]
	for _, it := range q {
		if it.to == id && (it.kind == itemTask || it.kind == itemMessage) {
			continue
		}
		kept = append(kept, it)
	}
	return kept
}
