// Package status defines shared lifecycle status types for decks, units, and export jobs.
package status

import "errors"

// Status represents the lifecycle status of a presentation, generation unit, or export job.
type Status string

const (
	// Non-terminal states
	StatusPending    Status = "pending"    // Created, not yet started
	StatusQueued     Status = "queued"     // Waiting for a background worker
	StatusStreaming  Status = "streaming"  // Unit actively receiving deltas
	StatusGenerating Status = "generating" // Deck-level generation in flight

	// Terminal states (no further transitions allowed)
	StatusCompleted Status = "completed" // Successfully finished
	StatusFailed    Status = "failed"    // Unrecoverable error
	StatusCancelled Status = "cancelled" // Client disconnected or user cancelled
)

// ErrInvalidTransition is returned when a status transition is not allowed.
var ErrInvalidTransition = errors.New("invalid status transition")

// IsTerminal returns true if the status is a terminal state.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// IsActive returns true if the status indicates active processing.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusQueued ||
		s == StatusStreaming || s == StatusGenerating
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// ValidTransitions defines allowed status transitions.
var ValidTransitions = map[Status][]Status{
	StatusPending:    {StatusQueued, StatusStreaming, StatusGenerating, StatusFailed, StatusCancelled},
	StatusQueued:     {StatusGenerating, StatusFailed, StatusCancelled},
	StatusStreaming:  {StatusCompleted, StatusFailed, StatusCancelled},
	StatusGenerating: {StatusCompleted, StatusFailed, StatusCancelled},
	// Terminal states have no valid transitions
	StatusCompleted: {},
	StatusFailed:    {},
	StatusCancelled: {},
}

// CanTransitionTo checks if a transition from current status to target status is valid.
func (s Status) CanTransitionTo(target Status) bool {
	validTargets, ok := ValidTransitions[s]
	if !ok {
		return false
	}
	for _, t := range validTargets {
		if t == target {
			return true
		}
	}
	return false
}

// TransitionTo attempts to transition to the target status and returns error if invalid.
func (s Status) TransitionTo(target Status) (Status, error) {
	if !s.CanTransitionTo(target) {
		return s, ErrInvalidTransition
	}
	return target, nil
}
