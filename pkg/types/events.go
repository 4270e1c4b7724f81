// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// EventKind labels a progress event.
type EventKind string

const (
	EventIterationStart EventKind = "iteration_start"
	EventProposed       EventKind = "proposed"
	EventSolved         EventKind = "solved"
	EventValidated      EventKind = "validated"
	EventIterationDone  EventKind = "iteration_done"
	EventRunDone        EventKind = "run_done"
)

// ProgressEvent is a fire-and-forget notification emitted by the
// controller as a run advances. Emission never blocks: when the
// consumer's channel is full the event is dropped, so events are an
// observability surface, never a source of truth. The IterationRecord
// audit trail is the source of truth.
type ProgressEvent struct {
	RunID      string    `json:"run_id"`
	Kind       EventKind `json:"kind"`
	Iteration  int       `json:"iteration"`
	Difficulty float64   `json:"difficulty"`

	// Accepted and Cause are set on iteration_done events.
	Accepted bool   `json:"accepted,omitempty"`
	Cause    string `json:"cause,omitempty"`

	// Status is set on run_done events.
	Status RunStatus `json:"status,omitempty"`
}
