package wfq

//
// Virtual bus (component C3): the GPS reference system
//

import "container/heap"

// flowRef tracks how many packets of one flow are currently backlogged
// in the virtual bus, and the weight that was added to Σw on behalf of
// that flow so the same amount can be removed when the flow's last
// packet departs.
type flowRef struct {
	count  int
	weight float64
}

// VirtualBus holds the packets currently "in flight" in the GPS
// reference system, ordered by (virtualFinish, appearanceOrder). The
// zero value is invalid; use [NewVirtualBus].
type VirtualBus struct {
	h               vbHeap
	refs            map[int]flowRef
	sumActiveWeight float64
}

// NewVirtualBus creates an empty [VirtualBus].
func NewVirtualBus() *VirtualBus {
	return &VirtualBus{h: make(vbHeap, 0), refs: make(map[int]flowRef)}
}

// IsEmpty returns true if no packet is currently backlogged in the GPS
// reference system.
func (vb *VirtualBus) IsEmpty() bool {
	return vb.h.Len() == 0
}

// SumActiveWeight returns Σw over the flows currently represented in the
// virtual bus (invariant 3 of spec.md §3): one weight contribution per
// distinct flow with at least one packet backlogged, not one per packet.
func (vb *VirtualBus) SumActiveWeight() float64 {
	return vb.sumActiveWeight
}

// Push admits a packet into the virtual bus. Its flow's weight is added
// to Σw only the first time that flow becomes backlogged; a second or
// later concurrent packet on the same flow just increments that flow's
// refcount, since invariant 3 sums over backlogged flows, not packets.
func (vb *VirtualBus) Push(p *packet) {
	heap.Push(&vb.h, p)
	ref, ok := vb.refs[p.flowID]
	if !ok {
		vb.sumActiveWeight += p.weight
		vb.refs[p.flowID] = flowRef{count: 1, weight: p.weight}
		return
	}
	ref.count++
	vb.refs[p.flowID] = ref
}

// PeekMin returns, without removing it, the packet with the smallest
// virtual finish time. Callers MUST check [VirtualBus.IsEmpty] first.
func (vb *VirtualBus) PeekMin() *packet {
	return vb.h[0]
}

// PopMin removes and returns the packet with the smallest virtual finish
// time. Σw is only decremented once a flow's last backlogged packet
// departs; the amount subtracted is the weight recorded for that flow
// when it first became backlogged, not the owning flow's current
// weight, so that later weight changes never retroactively perturb
// earlier accounting. Callers MUST check [VirtualBus.IsEmpty] first.
func (vb *VirtualBus) PopMin() *packet {
	p := heap.Pop(&vb.h).(*packet)
	ref := vb.refs[p.flowID]
	ref.count--
	if ref.count == 0 {
		vb.sumActiveWeight -= ref.weight
		delete(vb.refs, p.flowID)
		return p
	}
	vb.refs[p.flowID] = ref
	return p
}

// vbHeap is a min-heap of *packet ordered by (virtualFinish, appearanceOrder).
type vbHeap []*packet

func (h vbHeap) Len() int           { return len(h) }
func (h vbHeap) Less(i, j int) bool { return lessByVirtualFinish(h[i], h[j]) }
func (h vbHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *vbHeap) Push(x any) {
	*h = append(*h, x.(*packet))
}

func (h *vbHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return x
}
