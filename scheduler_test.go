package wfq

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nt-sched/wfq/internal/nulllog"
)

func collect(t *testing.T, s *Scheduler) []Dispatch {
	t.Helper()
	var out []Dispatch
	err := s.Run(func(d Dispatch) error {
		out = append(out, d)
		return nil
	})
	require.NoError(t, err)
	return out
}

func rec(arrival int64, srcIP string, srcPort int, dstIP string, dstPort int, length int64, order int) ArrivalRecord {
	return ArrivalRecord{
		ArrivalTime:     arrival,
		SrcIP:           srcIP,
		SrcPort:         srcPort,
		DstIP:           dstIP,
		DstPort:         dstPort,
		Length:          length,
		AppearanceOrder: order,
	}
}

// scenario 1: a single packet dispatches immediately.
func TestScenarioSinglePacket(t *testing.T) {
	s := NewScheduler(nil)
	s.Arrive(rec(0, "1.1.1.1", 1, "2.2.2.2", 2, 100, 0))

	out := collect(t, s)
	require.Len(t, out, 1)
	require.EqualValues(t, 0, out[0].RealStartTime)
}

// scenario 2: two flows, equal weight, simultaneous arrival; ties broken
// by appearance order.
func TestScenarioTwoFlowsSimultaneous(t *testing.T) {
	s := NewScheduler(nil)
	s.Arrive(rec(0, "1.1.1.1", 1, "2.2.2.2", 2, 100, 0))
	s.Arrive(rec(0, "3.3.3.3", 3, "4.4.4.4", 4, 100, 1))

	out := collect(t, s)
	require.Len(t, out, 2)
	require.EqualValues(t, 0, out[0].RealStartTime)
	require.Equal(t, 0, out[0].AppearanceOrder)
	require.EqualValues(t, 100, out[1].RealStartTime)
	require.Equal(t, 1, out[1].AppearanceOrder)
}

// scenario 3: one flow with two packets, another with one, equal weights.
func TestScenarioInterleavedFlows(t *testing.T) {
	s := NewScheduler(nil)
	s.Arrive(rec(0, "A", 1, "B", 2, 100, 0))
	s.Arrive(rec(0, "A", 1, "B", 2, 100, 1))
	s.Arrive(rec(0, "C", 3, "D", 4, 100, 2))

	out := collect(t, s)
	require.Len(t, out, 3)
	require.EqualValues(t, []int64{0, 100, 200}, []int64{out[0].RealStartTime, out[1].RealStartTime, out[2].RealStartTime})
	require.Equal(t, 0, out[0].AppearanceOrder)
	require.Equal(t, 2, out[1].AppearanceOrder)
	require.Equal(t, 1, out[2].AppearanceOrder)
}

// scenario 4: weighted flows, one packet each; higher weight finishes
// sooner in virtual time and so dispatches first.
func TestScenarioWeightedFlows(t *testing.T) {
	s := NewScheduler(nil)
	a := rec(0, "A", 1, "B", 2, 100, 0)
	a.HasWeight, a.Weight = true, 2.0
	c := rec(0, "C", 3, "D", 4, 100, 1)
	c.HasWeight, c.Weight = true, 1.0
	s.Arrive(a)
	s.Arrive(c)

	out := collect(t, s)
	require.Len(t, out, 2)
	require.Equal(t, 0, out[0].AppearanceOrder)
	require.EqualValues(t, 0, out[0].RealStartTime)
	require.Equal(t, 1, out[1].AppearanceOrder)
	require.EqualValues(t, 100, out[1].RealStartTime)
}

// scenario 5: while flow A's first packet is still being transmitted, two
// packets arrive simultaneously at t=50, one on flow A and one on a fresh
// flow.
func TestScenarioIdleThenSimultaneousArrival(t *testing.T) {
	s := NewScheduler(nil)
	s.Arrive(rec(0, "A", 1, "B", 2, 100, 0))
	s.Arrive(rec(50, "A", 1, "B", 2, 100, 1))
	s.Arrive(rec(50, "C", 3, "D", 4, 100, 2))

	out := collect(t, s)
	require.Len(t, out, 3)
	require.EqualValues(t, []int64{0, 100, 200}, []int64{out[0].RealStartTime, out[1].RealStartTime, out[2].RealStartTime})
}

// scenario 6: empty input yields no output and no error.
func TestScenarioEmptyInput(t *testing.T) {
	s := NewScheduler(nil)
	out := collect(t, s)
	require.Empty(t, out)
}

// Σw must be summed per backlogged flow, not per packet (invariant 3 of
// spec.md §3). Flow A has two packets concurrently in the virtual bus
// from t=0; if Σw were double-counted to 2 during that window, V would
// advance half as fast as it should, pulling flow C's packet's virtual
// finish time below flow A's second packet and dispatching C early.
// With correct accounting, A's second packet still precedes C.
func TestVirtualBusWeightIsNotDoubleCountedAcrossConcurrentPackets(t *testing.T) {
	s := NewScheduler(nil)
	s.Arrive(rec(0, "A", 1, "B", 2, 100, 0))
	s.Arrive(rec(0, "A", 1, "B", 2, 100, 1))
	s.Arrive(rec(99, "C", 3, "D", 4, 110, 2))

	out := collect(t, s)
	require.Len(t, out, 3)
	require.Equal(t, []int{0, 1, 2}, []int{out[0].AppearanceOrder, out[1].AppearanceOrder, out[2].AppearanceOrder})
	require.EqualValues(t, []int64{0, 100, 200}, []int64{out[0].RealStartTime, out[1].RealStartTime, out[2].RealStartTime})
}

// P1: real_start_time >= arrival_time always.
func TestPropertyDispatchNeverPrecedesArrival(t *testing.T) {
	s := NewScheduler(nil)
	arrivals := []ArrivalRecord{
		rec(0, "A", 1, "B", 2, 50, 0),
		rec(10, "C", 3, "D", 4, 30, 1),
		rec(10, "A", 1, "B", 2, 20, 2),
		rec(200, "E", 5, "F", 6, 10, 3),
	}
	byOrder := map[int]int64{}
	for _, a := range arrivals {
		byOrder[a.AppearanceOrder] = a.ArrivalTime
		s.Arrive(a)
	}

	out := collect(t, s)
	for _, d := range out {
		require.GreaterOrEqual(t, d.RealStartTime, byOrder[d.AppearanceOrder])
	}
}

// P2 (non-overlapping part): each dispatch starts no earlier than the
// previous one ends.
func TestPropertyNonOverlapping(t *testing.T) {
	s := NewScheduler(nil)
	s.Arrive(rec(0, "A", 1, "B", 2, 50, 0))
	s.Arrive(rec(0, "C", 3, "D", 4, 30, 1))
	s.Arrive(rec(5, "A", 1, "B", 2, 20, 2))

	out := collect(t, s)
	for i := 1; i < len(out); i++ {
		prevEnd := out[i-1].RealStartTime + out[i-1].Length
		require.LessOrEqual(t, prevEnd, out[i].RealStartTime)
	}
}

// P3: per-flow FIFO.
func TestPropertyPerFlowFIFO(t *testing.T) {
	s := NewScheduler(nil)
	s.Arrive(rec(0, "A", 1, "B", 2, 100, 0))
	s.Arrive(rec(0, "A", 1, "B", 2, 100, 1))
	s.Arrive(rec(0, "A", 1, "B", 2, 100, 2))
	s.Arrive(rec(0, "C", 3, "D", 4, 100, 3))

	out := collect(t, s)
	var flowAOrders []int
	for _, d := range out {
		if d.SrcIP == "A" {
			flowAOrders = append(flowAOrders, d.AppearanceOrder)
		}
	}
	require.Equal(t, []int{0, 1, 2}, flowAOrders)
}

// P5: determinism across repeated runs on the same input.
func TestPropertyDeterministic(t *testing.T) {
	build := func() *Scheduler {
		s := NewScheduler(nil)
		rng := rand.New(rand.NewSource(42))
		for i := 0; i < 50; i++ {
			s.Arrive(rec(int64(rng.Intn(20)), "A", 1, "B", 2, int64(1+rng.Intn(20)), i))
		}
		return s
	}

	out1 := collect(t, build())
	out2 := collect(t, build())
	require.Equal(t, out1, out2)
}

func TestNegativeWeightIsRejected(t *testing.T) {
	s := NewScheduler(nil)
	bad := rec(0, "A", 1, "B", 2, 10, 0)
	bad.HasWeight, bad.Weight = true, -1
	s.Arrive(bad)

	err := s.Run(func(Dispatch) error { return nil })
	require.True(t, errors.Is(err, ErrNegativeWeight))
}

func TestTooManyFlowsIsRejected(t *testing.T) {
	s := NewScheduler(&SchedulerConfig{MaxFlows: 1})
	s.Arrive(rec(0, "A", 1, "B", 2, 10, 0))
	s.Arrive(rec(0, "C", 3, "D", 4, 10, 1))

	err := s.Run(func(Dispatch) error { return nil })
	require.True(t, errors.Is(err, ErrTooManyFlows))
}

func TestSchedulerLogsThroughConfiguredLogger(t *testing.T) {
	s := NewScheduler(&SchedulerConfig{Logger: &nulllog.NullLogger{}})
	s.Arrive(rec(0, "A", 1, "B", 2, 10, 0))
	require.NoError(t, s.Run(func(Dispatch) error { return nil }))
}

func TestEmitErrorPropagates(t *testing.T) {
	s := NewScheduler(nil)
	s.Arrive(rec(0, "A", 1, "B", 2, 10, 0))

	sentinel := errors.New("boom")
	err := s.Run(func(Dispatch) error { return sentinel })
	require.ErrorIs(t, err, sentinel)
}
