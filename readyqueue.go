package wfq

//
// Ready queue (component C4): the real single-server transmission queue
//

import "container/heap"

// ReadyQueue holds the packets waiting to be transmitted on the real
// link, ordered by (virtualFinish, appearanceOrder), the same tie-break
// rule as [VirtualBus]. The zero value is invalid; use [NewReadyQueue].
//
// At any instant the ready queue is a superset of the virtual bus's
// membership: a packet can have finished in the GPS reference system
// (left the virtual bus) while still awaiting its turn on the real link
// (still in the ready queue).
type ReadyQueue struct {
	h rqHeap
}

// NewReadyQueue creates an empty [ReadyQueue].
func NewReadyQueue() *ReadyQueue {
	return &ReadyQueue{h: make(rqHeap, 0)}
}

// IsEmpty returns true if no packet is waiting for the real link.
func (rq *ReadyQueue) IsEmpty() bool {
	return rq.h.Len() == 0
}

// Push admits a packet into the ready queue.
func (rq *ReadyQueue) Push(p *packet) {
	heap.Push(&rq.h, p)
}

// PeekMin returns, without removing it, the packet with the smallest
// virtual finish time. Callers MUST check [ReadyQueue.IsEmpty] first.
func (rq *ReadyQueue) PeekMin() *packet {
	return rq.h[0]
}

// PopMin removes and returns the packet with the smallest virtual finish
// time. Callers MUST check [ReadyQueue.IsEmpty] first.
func (rq *ReadyQueue) PopMin() *packet {
	return heap.Pop(&rq.h).(*packet)
}

// rqHeap is a min-heap of *packet ordered by (virtualFinish, appearanceOrder).
type rqHeap []*packet

func (h rqHeap) Len() int           { return len(h) }
func (h rqHeap) Less(i, j int) bool { return lessByVirtualFinish(h[i], h[j]) }
func (h rqHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *rqHeap) Push(x any) {
	*h = append(*h, x.(*packet))
}

func (h *rqHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return x
}
