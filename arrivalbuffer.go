package wfq

//
// Arrival buffer (component C2)
//

import "container/heap"

// ArrivalBuffer is a lazy sequence of [ArrivalRecord] values ordered by
// arrival time, ties broken by appearance order. The zero value is
// invalid; use [NewArrivalBuffer]. Push is O(log n); Peek is O(1); Pop is
// O(log n).
type ArrivalBuffer struct {
	h arrivalHeap
}

// NewArrivalBuffer creates an empty [ArrivalBuffer].
func NewArrivalBuffer() *ArrivalBuffer {
	return &ArrivalBuffer{h: make(arrivalHeap, 0)}
}

// Push inserts a new arrival record.
func (ab *ArrivalBuffer) Push(rec ArrivalRecord) {
	heap.Push(&ab.h, rec)
}

// IsEmpty returns true if the buffer holds no more records.
func (ab *ArrivalBuffer) IsEmpty() bool {
	return ab.h.Len() == 0
}

// Peek returns the earliest arrival record without removing it. Callers
// MUST check [ArrivalBuffer.IsEmpty] first.
func (ab *ArrivalBuffer) Peek() ArrivalRecord {
	return ab.h[0]
}

// Pop removes and returns the earliest arrival record. Callers MUST
// check [ArrivalBuffer.IsEmpty] first.
func (ab *ArrivalBuffer) Pop() ArrivalRecord {
	return heap.Pop(&ab.h).(ArrivalRecord)
}

// arrivalHeap is a min-heap of [ArrivalRecord], ordered by
// (ArrivalTime, AppearanceOrder).
type arrivalHeap []ArrivalRecord

func (h arrivalHeap) Len() int { return len(h) }

func (h arrivalHeap) Less(i, j int) bool {
	if h[i].ArrivalTime != h[j].ArrivalTime {
		return h[i].ArrivalTime < h[j].ArrivalTime
	}
	return h[i].AppearanceOrder < h[j].AppearanceOrder
}

func (h arrivalHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *arrivalHeap) Push(x any) {
	*h = append(*h, x.(ArrivalRecord))
}

func (h *arrivalHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
