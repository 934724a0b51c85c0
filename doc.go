// Package wfq implements an event-driven Weighted Fair Queueing (WFQ)
// packet scheduler for a single output link.
//
// Concurrent flows, identified by a (src-ip, src-port, dst-ip, dst-port)
// 4-tuple, share the link's capacity in proportion to per-flow weights.
// Scheduling follows the classic WFQ discipline: every packet is assigned
// a virtual finish time derived from the Generalized Processor Sharing
// (GPS) reference system, and packets are dispatched to the real link in
// order of virtual finish time.
//
// The [Scheduler] type owns the full simulation state: the monotone
// virtual-time function V(t), the per-flow finish-time bookkeeping (see
// [FlowTable]), the set of flows currently backlogged in the GPS
// reference system (see [VirtualBus]), and the real single-server
// transmission clock, whose pending work lives in the [ReadyQueue].
//
// [Scheduler] is strictly single-threaded: feed it [ArrivalRecord]
// values through [Scheduler.Arrive] and drive the loop with
// [Scheduler.Run], and it emits, in dispatch order, the real time at
// which each packet begins transmission. There is no concurrency and no
// I/O inside this package; reading a trace and formatting the output are
// the caller's job (see the internal/traceio package and cmd/wfqsim).
package wfq
