// Package lifecycle defines the generation state machine of a room.
//
// Two status fields move together: the fine-grained GenerationStatus that
// pollers display as pipeline steps, and the coarse RoomStatus that mirrors it.
// Every write goes through Transition so illegal edges (done -> tidy) are
// rejected instead of overwritten.
package lifecycle

import (
	"errors"
	"fmt"
)

type GenerationStatus string

const (
	// GenNone is the absent generation_status of a room that has never been queued.
	GenNone      GenerationStatus = ""
	GenQueued    GenerationStatus = "queued"
	GenTidy      GenerationStatus = "tidy"
	GenRearrange GenerationStatus = "rearrange"
	GenRedesign  GenerationStatus = "redesign"
	GenUploading GenerationStatus = "uploading"
	GenDone      GenerationStatus = "done"
	GenError     GenerationStatus = "error"
)

type RoomStatus string

const (
	RoomDraft      RoomStatus = "draft"
	RoomQueued     RoomStatus = "queued"
	RoomGenerating RoomStatus = "generating"
	RoomGenerated  RoomStatus = "generated"
	RoomError      RoomStatus = "error"
)

var ErrIllegalTransition = errors.New("illegal generation status transition")

// Edge is a single allowed transition.
type Edge struct {
	From GenerationStatus
	To   GenerationStatus
}

// Forward skips are allowed because intermediate writes are best-effort:
// a lost "tidy" write must not block "redesign".
var transitionsTable = []Edge{
	// New attempt
	{From: GenNone, To: GenQueued},
	{From: GenDone, To: GenQueued},
	{From: GenError, To: GenQueued},

	// Pass 1
	{From: GenQueued, To: GenTidy},

	// Pass 2
	{From: GenQueued, To: GenRearrange},
	{From: GenTidy, To: GenRearrange},
	{From: GenQueued, To: GenRedesign},
	{From: GenTidy, To: GenRedesign},

	// Upload
	{From: GenQueued, To: GenUploading},
	{From: GenTidy, To: GenUploading},
	{From: GenRearrange, To: GenUploading},
	{From: GenRedesign, To: GenUploading},

	// Terminal
	{From: GenQueued, To: GenDone},
	{From: GenTidy, To: GenDone},
	{From: GenRearrange, To: GenDone},
	{From: GenRedesign, To: GenDone},
	{From: GenUploading, To: GenDone},

	{From: GenQueued, To: GenError},
	{From: GenTidy, To: GenError},
	{From: GenRearrange, To: GenError},
	{From: GenRedesign, To: GenError},
	{From: GenUploading, To: GenError},
}

// Transition reports whether from -> to is a legal edge.
func Transition(from, to GenerationStatus) error {
	for _, e := range transitionsTable {
		if e.From == from && e.To == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %q -> %q", ErrIllegalTransition, from, to)
}

// Predecessors lists every status from which to is reachable in one step.
// Stores use it to build conditional updates.
func Predecessors(to GenerationStatus) []GenerationStatus {
	var out []GenerationStatus
	for _, e := range transitionsTable {
		if e.To == to {
			out = append(out, e.From)
		}
	}
	return out
}

// RoomStatusFor returns the coarse status mirrored by a generation status.
func RoomStatusFor(gs GenerationStatus) RoomStatus {
	switch gs {
	case GenQueued:
		return RoomQueued
	case GenTidy, GenRearrange, GenRedesign, GenUploading:
		return RoomGenerating
	case GenDone:
		return RoomGenerated
	case GenError:
		return RoomError
	default:
		return RoomDraft
	}
}

func (gs GenerationStatus) InFlight() bool {
	switch gs {
	case GenQueued, GenTidy, GenRearrange, GenRedesign, GenUploading:
		return true
	}
	return false
}

func (gs GenerationStatus) Terminal() bool {
	return gs == GenDone || gs == GenError
}

func (rs RoomStatus) InFlight() bool {
	return rs == RoomQueued || rs == RoomGenerating
}

// InFlight is the single-flight predicate: a room is busy if either field says so.
func InFlight(rs RoomStatus, gs GenerationStatus) bool {
	return rs.InFlight() || gs.InFlight()
}

// Terminal reports whether a poller can stop.
func Terminal(rs RoomStatus, gs GenerationStatus) bool {
	return gs.Terminal() || rs == RoomGenerated || rs == RoomError
}

// StepLabel is the human-readable progress text for a poller.
type StepLabel struct {
	Title string `json:"title"`
	Sub   string `json:"sub"`
}

func Label(gs GenerationStatus) StepLabel {
	switch gs {
	case GenQueued:
		return StepLabel{Title: "Starting…", Sub: "Preparing your room photo."}
	case GenTidy:
		return StepLabel{Title: "Pass 1 of 2", Sub: "Tidying and organizing the room."}
	case GenRearrange:
		return StepLabel{Title: "Pass 2 of 2", Sub: "Rearranging your existing furniture."}
	case GenRedesign:
		return StepLabel{Title: "Pass 2 of 2", Sub: "Designing the new layout and style."}
	case GenUploading:
		return StepLabel{Title: "Finalizing…", Sub: "Saving your new design."}
	case GenDone:
		return StepLabel{Title: "Done", Sub: "Your design is ready."}
	case GenError:
		return StepLabel{Title: "Something went wrong", Sub: "Please try again."}
	default:
		return StepLabel{Title: "Working…", Sub: "This can take a minute."}
	}
}
