package wfq

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArrivalBufferOrdersByTimeThenAppearance(t *testing.T) {
	ab := NewArrivalBuffer()
	ab.Push(ArrivalRecord{ArrivalTime: 5, AppearanceOrder: 2})
	ab.Push(ArrivalRecord{ArrivalTime: 1, AppearanceOrder: 0})
	ab.Push(ArrivalRecord{ArrivalTime: 1, AppearanceOrder: 1})

	require.False(t, ab.IsEmpty())
	require.Equal(t, 0, ab.Peek().AppearanceOrder)

	first := ab.Pop()
	require.Equal(t, int64(1), first.ArrivalTime)
	require.Equal(t, 0, first.AppearanceOrder)

	second := ab.Pop()
	require.Equal(t, int64(1), second.ArrivalTime)
	require.Equal(t, 1, second.AppearanceOrder)

	third := ab.Pop()
	require.Equal(t, int64(5), third.ArrivalTime)

	require.True(t, ab.IsEmpty())
}
