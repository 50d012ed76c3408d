package lifecycle_test

import (
	"testing"

	"cozylogic-backend/internal/lifecycle"

	"github.com/stretchr/testify/assert"
)

func TestTransition_HappyPath(t *testing.T) {
	redesign := []lifecycle.GenerationStatus{
		lifecycle.GenNone,
		lifecycle.GenQueued,
		lifecycle.GenTidy,
		lifecycle.GenRedesign,
		lifecycle.GenUploading,
		lifecycle.GenDone,
	}
	for i := 1; i < len(redesign); i++ {
		assert.NoError(t, lifecycle.Transition(redesign[i-1], redesign[i]), "%s -> %s", redesign[i-1], redesign[i])
	}

	assert.NoError(t, lifecycle.Transition(lifecycle.GenTidy, lifecycle.GenRearrange))
	assert.NoError(t, lifecycle.Transition(lifecycle.GenRearrange, lifecycle.GenUploading))
}

func TestTransition_Illegal(t *testing.T) {
	cases := []struct{ from, to lifecycle.GenerationStatus }{
		{lifecycle.GenDone, lifecycle.GenTidy},
		{lifecycle.GenError, lifecycle.GenUploading},
		{lifecycle.GenNone, lifecycle.GenTidy},
		{lifecycle.GenUploading, lifecycle.GenTidy},
		{lifecycle.GenRedesign, lifecycle.GenRearrange},
		{lifecycle.GenQueued, lifecycle.GenQueued},
		{lifecycle.GenDone, lifecycle.GenError},
	}
	for _, tc := range cases {
		err := lifecycle.Transition(tc.from, tc.to)
		assert.ErrorIs(t, err, lifecycle.ErrIllegalTransition, "%s -> %s", tc.from, tc.to)
	}
}

func TestTransition_ErrorReachableFromEveryInFlightState(t *testing.T) {
	for _, gs := range []lifecycle.GenerationStatus{
		lifecycle.GenQueued, lifecycle.GenTidy, lifecycle.GenRearrange, lifecycle.GenRedesign, lifecycle.GenUploading,
	} {
		assert.True(t, gs.InFlight())
		assert.NoError(t, lifecycle.Transition(gs, lifecycle.GenError))
	}
}

func TestPredecessors_Queued(t *testing.T) {
	assert.ElementsMatch(t,
		[]lifecycle.GenerationStatus{lifecycle.GenNone, lifecycle.GenDone, lifecycle.GenError},
		lifecycle.Predecessors(lifecycle.GenQueued))
}

func TestRoomStatusFor(t *testing.T) {
	assert.Equal(t, lifecycle.RoomQueued, lifecycle.RoomStatusFor(lifecycle.GenQueued))
	assert.Equal(t, lifecycle.RoomGenerating, lifecycle.RoomStatusFor(lifecycle.GenTidy))
	assert.Equal(t, lifecycle.RoomGenerating, lifecycle.RoomStatusFor(lifecycle.GenUploading))
	assert.Equal(t, lifecycle.RoomGenerated, lifecycle.RoomStatusFor(lifecycle.GenDone))
	assert.Equal(t, lifecycle.RoomError, lifecycle.RoomStatusFor(lifecycle.GenError))
	assert.Equal(t, lifecycle.RoomDraft, lifecycle.RoomStatusFor(lifecycle.GenNone))
}

func TestInFlight(t *testing.T) {
	assert.True(t, lifecycle.InFlight(lifecycle.RoomGenerating, lifecycle.GenNone))
	assert.True(t, lifecycle.InFlight(lifecycle.RoomGenerated, lifecycle.GenTidy))
	assert.False(t, lifecycle.InFlight(lifecycle.RoomGenerated, lifecycle.GenDone))
	assert.False(t, lifecycle.InFlight(lifecycle.RoomDraft, lifecycle.GenNone))
	assert.False(t, lifecycle.InFlight(lifecycle.RoomError, lifecycle.GenError))
}

func TestTerminal(t *testing.T) {
	assert.True(t, lifecycle.Terminal(lifecycle.RoomGenerated, lifecycle.GenDone))
	assert.True(t, lifecycle.Terminal(lifecycle.RoomError, lifecycle.GenNone))
	assert.False(t, lifecycle.Terminal(lifecycle.RoomGenerating, lifecycle.GenRedesign))
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Pass 1 of 2", lifecycle.Label(lifecycle.GenTidy).Title)
	assert.Equal(t, "Pass 2 of 2", lifecycle.Label(lifecycle.GenRearrange).Title)
	assert.Equal(t, "Working…", lifecycle.Label(lifecycle.GenerationStatus("bogus")).Title)
}
