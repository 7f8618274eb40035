package events

import (
	"fmt"

	"github.com/google/uuid"
)

// EventType represents the type of track event
type EventType int

const (
	// EventPieceAdded signals a piece appended to the tail of the track
	// Trigger: Queue.AppendPiece, once per call including during recycling
	// Payload: road.Snapshot
	EventPieceAdded EventType = iota

	// EventPieceEvicted signals the trailing piece was destroyed
	// Trigger: Queue.EvictOldest | Payload: road.Snapshot
	EventPieceEvicted

	// EventRecycled signals a completed evict/append transition
	// Trigger: Recycler.Recycle | Payload: road.RecyclePayload
	EventRecycled

	// EventPivotDegenerate signals a curved piece whose edges are parallel
	// Trigger: Motion.SetActive, piece falls back to linear motion
	// Payload: road.Snapshot
	EventPivotDegenerate

	// EventTrackReset signals a freshly built track
	// Trigger: Road.Initialize, Road.Reset | Payload: road.ResetPayload
	EventTrackReset

	// EventTick signals the end of one tick, after motion and recycling
	// Trigger: Road.Tick | Payload: nil
	EventTick

	eventTypeCount
)

var eventNames = [eventTypeCount]string{
	EventPieceAdded:      "PieceAdded",
	EventPieceEvicted:    "PieceEvicted",
	EventRecycled:        "Recycled",
	EventPivotDegenerate: "PivotDegenerate",
	EventTrackReset:      "TrackReset",
	EventTick:            "Tick",
}

func (t EventType) String() string {
	if t >= 0 && t < eventTypeCount {
		return eventNames[t]
	}
	return fmt.Sprintf("EventType(%d)", int(t))
}

// GameEvent represents a single track event with metadata
type GameEvent struct {
	Type    EventType
	Payload any
	Tick    uint64    // Tick counter of the emitting road
	Run     uuid.UUID // Track build that produced the event
}
