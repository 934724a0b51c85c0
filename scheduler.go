package wfq

//
// Event loop (component C5)
//

import "math"

// SchedulerConfig configures a new [Scheduler]. The zero value is valid:
// it means the default flow-table cap and a no-op logger.
type SchedulerConfig struct {
	// MaxFlows caps the number of distinct flows the flow table will
	// hold. Zero means [DefaultMaxFlows].
	MaxFlows int

	// Logger receives diagnostic messages about event-loop transitions.
	// Nil means log nothing.
	Logger Logger
}

// nopLogger is the default [Logger] used when no logger is configured.
type nopLogger struct{}

func (nopLogger) Debug(string)          {}
func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Info(string)           {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warn(string)           {}
func (nopLogger) Warnf(string, ...any)  {}

// Scheduler owns the full WFQ simulation state described in spec.md §3:
// the flow table, the arrival buffer, the virtual bus, the ready queue,
// and the real single-server transmission clock. The zero value is
// invalid; use [NewScheduler].
//
// A Scheduler is strictly single-threaded: [Scheduler.Arrive] and
// [Scheduler.Run] must not be called concurrently, and Run must not be
// called from more than one goroutine.
type Scheduler struct {
	logger   Logger
	flows    *FlowTable
	arrivals *ArrivalBuffer
	vbus     *VirtualBus
	ready    *ReadyQueue

	// v is the current virtual time V(t).
	v float64

	// lastVUpdate is the real time at which v was last recomputed.
	lastVUpdate float64

	// nextFreeTime is the real time at which the link will next be idle.
	nextFreeTime float64

	// linkBusy is true iff a packet is currently being transmitted.
	linkBusy bool
}

// NewScheduler creates an empty [Scheduler] ready to accept arrivals.
func NewScheduler(config *SchedulerConfig) *Scheduler {
	if config == nil {
		config = &SchedulerConfig{}
	}
	maxFlows := config.MaxFlows
	if maxFlows <= 0 {
		maxFlows = DefaultMaxFlows
	}
	logger := config.Logger
	if logger == nil {
		logger = nopLogger{}
	}
	return &Scheduler{
		logger:   logger,
		flows:    NewFlowTable(maxFlows),
		arrivals: NewArrivalBuffer(),
		vbus:     NewVirtualBus(),
		ready:    NewReadyQueue(),
	}
}

// Arrive enqueues an arrival record. Records may be pushed in any order;
// the scheduler sorts them by (ArrivalTime, AppearanceOrder) internally.
// Arrive must be called before [Scheduler.Run] starts draining, or, for a
// streaming caller, only while Run is not executing.
func (s *Scheduler) Arrive(rec ArrivalRecord) {
	s.arrivals.Push(rec)
}

// FlowCount returns the number of distinct flows observed so far.
func (s *Scheduler) FlowCount() int {
	return s.flows.Len()
}

// VirtualTime returns the scheduler's current virtual time V(t).
func (s *Scheduler) VirtualTime() float64 {
	return s.v
}

// SumActiveWeight returns Σw over the flows currently backlogged in the
// virtual bus.
func (s *Scheduler) SumActiveWeight() float64 {
	return s.vbus.SumActiveWeight()
}

// Run drains every pushed arrival and runs the event loop to completion,
// invoking emit once per packet in dispatch order. Run returns as soon as
// both the arrival buffer and the ready queue are empty, or as soon as
// emit or an internal invariant check returns a non-nil error.
func (s *Scheduler) Run(emit func(Dispatch) error) error {
	for !s.arrivals.IsEmpty() || !s.ready.IsEmpty() {
		if err := s.step(emit); err != nil {
			return err
		}
	}
	return nil
}

// step performs one iteration of the event loop, corresponding to
// spec.md §4.5 (a)-(f).
func (s *Scheduler) step(emit func(Dispatch) error) error {
	// (a) determine the next event time.
	tArrival := math.Inf(1)
	if !s.arrivals.IsEmpty() {
		tArrival = float64(s.arrivals.Peek().ArrivalTime)
	}
	tDeparture := math.Inf(1)
	if s.linkBusy {
		tDeparture = s.nextFreeTime
	}
	sumW := s.vbus.SumActiveWeight()
	tVirt := math.Inf(1)
	if !s.vbus.IsEmpty() {
		tVirt = s.lastVUpdate + (s.vbus.PeekMin().virtualFinish-s.v)*sumW
	}
	tNext := math.Min(tArrival, math.Min(tDeparture, tVirt))
	if math.IsInf(tNext, 1) {
		// the loop condition guarantees there is work left to do; if none
		// of the three candidate events is finite, the bookkeeping that
		// keeps "idle implies ready-queue-empty" true has a bug.
		return ErrImpossibleState
	}

	// (b) advance virtual time.
	if sumW > 0 {
		s.v += (tNext - s.lastVUpdate) / sumW
	}
	s.lastVUpdate = tNext

	// (c) virtual departures, possibly more than one at this instant.
	for !s.vbus.IsEmpty() && s.vbus.PeekMin().virtualFinish-s.v <= Epsilon {
		p := s.vbus.PopMin()
		s.logger.Debugf("wfq: virtual departure flow=%d appearance=%d vf=%f", p.flowID, p.appearanceOrder, p.virtualFinish)
	}
	if s.vbus.SumActiveWeight() < -Epsilon {
		return ErrImpossibleState
	}

	// (d) real departure.
	if s.linkBusy && tNext >= s.nextFreeTime-Epsilon {
		s.linkBusy = false
		s.logger.Debugf("wfq: real departure t=%f", tNext)
	}

	// (e) arrivals with arrival_time <= t_next, in appearance order.
	for !s.arrivals.IsEmpty() && float64(s.arrivals.Peek().ArrivalTime) <= tNext+Epsilon {
		rec := s.arrivals.Pop()
		if err := s.admit(rec); err != nil {
			return err
		}
	}

	// (f) dispatch.
	if !s.linkBusy && !s.ready.IsEmpty() {
		p := s.ready.PopMin()
		realStart := math.Max(tNext, p.arrivalTime)
		s.linkBusy = true
		s.nextFreeTime = realStart + p.length
		s.logger.Debugf("wfq: dispatch flow=%d appearance=%d t=%f", p.flowID, p.appearanceOrder, realStart)
		return emit(Dispatch{
			RealStartTime:   int64(math.Round(realStart)),
			FlowID:          p.flowID,
			AppearanceOrder: p.appearanceOrder,
			SrcIP:           p.srcIP,
			SrcPort:         p.srcPort,
			DstIP:           p.dstIP,
			DstPort:         p.dstPort,
			Length:          int64(math.Round(p.length)),
			RawLine:         p.rawLine,
		})
	}
	return nil
}

// admit processes a single arrival: flow lookup, weight update, virtual
// finish-time assignment, and insertion into both ordered collections.
// This is spec.md §4.1 and §4.5(e) combined.
func (s *Scheduler) admit(rec ArrivalRecord) error {
	id, err := s.flows.FindOrCreate(rec.SrcIP, rec.SrcPort, rec.DstIP, rec.DstPort, rec.AppearanceOrder)
	if err != nil {
		return err
	}
	flow := s.flows.Get(id)

	weight := flow.Weight
	if rec.HasWeight {
		if rec.Weight <= 0 {
			return ErrNegativeWeight
		}
		flow.Weight = rec.Weight
		weight = rec.Weight
	}

	virtualStart := math.Max(s.v, flow.LastVirtualFinish)
	virtualFinish := virtualStart + float64(rec.Length)/weight
	flow.LastVirtualFinish = virtualFinish

	p := &packet{
		arrivalTime:     float64(rec.ArrivalTime),
		length:          float64(rec.Length),
		flowID:          id,
		appearanceOrder: rec.AppearanceOrder,
		virtualStart:    virtualStart,
		virtualFinish:   virtualFinish,
		weight:          weight,
		srcIP:           rec.SrcIP,
		srcPort:         rec.SrcPort,
		dstIP:           rec.DstIP,
		dstPort:         rec.DstPort,
		rawLine:         rec.RawLine,
	}
	s.ready.Push(p)
	s.vbus.Push(p)
	s.logger.Debugf(
		"wfq: arrival flow=%d appearance=%d vs=%f vf=%f weight=%f",
		id, rec.AppearanceOrder, virtualStart, virtualFinish, weight,
	)
	return nil
}
