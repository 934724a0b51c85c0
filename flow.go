package wfq

//
// Flow table (component C1)
//

// DefaultMaxFlows is the resource cap from spec.md §6: a trace that would
// create more than this many distinct flows is rejected with
// [ErrTooManyFlows].
const DefaultMaxFlows = 10000

// DefaultWeight is the weight a flow has before any arriving packet
// supplies an explicit weight.
const DefaultWeight = 1.0

// Flow is the per-4-tuple state the scheduler tracks across the whole
// run. The zero value is never observed by callers; flows are created
// exclusively by [FlowTable.FindOrCreate].
type Flow struct {
	// ID is the stable index assigned at first observation.
	ID int

	// Weight is the flow's current weight, mutated in place whenever an
	// arriving packet on this flow carries an explicit weight.
	Weight float64

	// LastVirtualFinish is the virtual finish time of the most recently
	// admitted packet on this flow, or 0 before the first packet.
	LastVirtualFinish float64

	// FirstSeenOrder is the appearance order of the packet that created
	// this flow. It is not used directly by any comparator (packets,
	// not flows, are ordered), but is kept because it is part of the
	// flow's identity and useful for diagnostics.
	FirstSeenOrder int
}

// fourTuple identifies a flow. It is comparable, so it can be used
// directly as a map key without hashing.
type fourTuple struct {
	srcIP   string
	srcPort int
	dstIP   string
	dstPort int
}

// FlowTable maps 4-tuples to stable flow identifiers. The zero value is
// invalid; use [NewFlowTable].
type FlowTable struct {
	flows    []Flow
	index    map[fourTuple]int
	maxFlows int
}

// NewFlowTable creates a [FlowTable] that rejects the (maxFlows+1)-th
// distinct flow with [ErrTooManyFlows].
func NewFlowTable(maxFlows int) *FlowTable {
	return &FlowTable{
		flows:    make([]Flow, 0),
		index:    make(map[fourTuple]int),
		maxFlows: maxFlows,
	}
}

// FindOrCreate looks up the flow owning the given 4-tuple, creating it
// with [DefaultWeight] on first observation. appearanceOrder is recorded
// as the new flow's FirstSeenOrder; it is never overwritten on
// subsequent lookups.
func (ft *FlowTable) FindOrCreate(srcIP string, srcPort int, dstIP string, dstPort int, appearanceOrder int) (int, error) {
	key := fourTuple{srcIP: srcIP, srcPort: srcPort, dstIP: dstIP, dstPort: dstPort}
	if id, ok := ft.index[key]; ok {
		return id, nil
	}
	if len(ft.flows) >= ft.maxFlows {
		return 0, ErrTooManyFlows
	}
	id := len(ft.flows)
	ft.flows = append(ft.flows, Flow{
		ID:                id,
		Weight:            DefaultWeight,
		LastVirtualFinish: 0,
		FirstSeenOrder:    appearanceOrder,
	})
	ft.index[key] = id
	return id, nil
}

// Get returns a pointer to the flow with the given id, allowing the
// caller to read or mutate its Weight and LastVirtualFinish in place.
// The id MUST have come from [FlowTable.FindOrCreate] on this table.
func (ft *FlowTable) Get(id int) *Flow {
	return &ft.flows[id]
}

// Len returns the number of distinct flows observed so far.
func (ft *FlowTable) Len() int {
	return len(ft.flows)
}
