package wfq

//
// Data model: arrivals and packets
//

// ArrivalRecord describes one input record before the scheduler has
// assigned it scheduling state. Callers construct these from whatever
// external format they read (see internal/traceio for the line format
// specified by this module's boundary contract) and feed them to the
// scheduler through [Scheduler.Arrive].
type ArrivalRecord struct {
	// ArrivalTime is the real time, in the same units as Length, at
	// which this packet becomes eligible for transmission.
	ArrivalTime int64

	// SrcIP, SrcPort, DstIP, DstPort identify the owning flow.
	SrcIP   string
	SrcPort int
	DstIP   string
	DstPort int

	// Length is the positive real-time cost of transmitting this packet.
	Length int64

	// HasWeight tells the scheduler whether Weight should replace the
	// owning flow's current weight before this packet's virtual finish
	// time is computed (see [Flow.Weight]).
	HasWeight bool

	// Weight is the explicit per-packet weight. Only meaningful when
	// HasWeight is true.
	Weight float64

	// AppearanceOrder is the zero-based index of this record in the
	// input stream. It is the final, total tie-break for every ordered
	// collection in this package.
	AppearanceOrder int

	// RawLine is opaque payload the scheduler never interprets; it is
	// carried through to the emitted [Dispatch] verbatim, so that a
	// caller can reproduce the original input line on output.
	RawLine string
}

// packet is the scheduler's internal representation of an arrived
// record, with its virtual-time scheduling fields assigned. Once
// created, a packet's fields never change; it is shared by reference
// between the ready queue and the virtual bus.
type packet struct {
	arrivalTime     float64
	length          float64
	flowID          int
	appearanceOrder int
	virtualStart    float64
	virtualFinish   float64

	// weight is the flow's weight at the moment this packet was
	// admitted, locked in so that later weight changes on the owning
	// flow never retroactively perturb the virtual bus's Σw accounting
	// for this packet (spec: "the weight used for subtraction is the
	// weight stored on the packet at insertion").
	weight float64

	// srcIP, srcPort, dstIP, dstPort are carried through from the
	// originating [ArrivalRecord] purely for diagnostic consumers (PCAP
	// export, metrics); the scheduler itself never inspects them.
	srcIP   string
	srcPort int
	dstIP   string
	dstPort int

	rawLine string
}

// Dispatch is emitted once per packet, in the order the scheduler starts
// transmitting it.
type Dispatch struct {
	// RealStartTime is the real time at which the link begins
	// transmitting this packet.
	RealStartTime int64

	// FlowID is the scheduler-assigned id of the owning flow.
	FlowID int

	// AppearanceOrder is the packet's position in the input stream.
	AppearanceOrder int

	// SrcIP, SrcPort, DstIP, DstPort identify the owning flow, carried
	// through verbatim from the originating [ArrivalRecord].
	SrcIP   string
	SrcPort int
	DstIP   string
	DstPort int

	// Length is the packet's transmission length, carried through
	// verbatim from the originating [ArrivalRecord].
	Length int64

	// RawLine is the verbatim [ArrivalRecord.RawLine] of this packet.
	RawLine string
}
