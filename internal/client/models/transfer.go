// Package models defines client-side data models shared by the transfer
// engine, the registry and the CLI.
package models

import "time"

// TransferState is a node of the transfer state machine.
type TransferState string

const (
	StateIdle      TransferState = "idle"
	StatePreparing TransferState = "preparing"
	StateInFlight  TransferState = "in_flight"
	StateCompleted TransferState = "completed"
	StateFailed    TransferState = "failed"
	StateCancelled TransferState = "cancelled"
)

var transitions = map[TransferState][]TransferState{
	StateIdle:      {StatePreparing},
	StatePreparing: {StateInFlight, StateFailed},
	StateInFlight:  {StateInFlight, StateCompleted, StateFailed, StateCancelled},
}

// Terminal reports whether no transition can leave s.
func (s TransferState) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

// Active reports whether a transfer in state s occupies its controller.
func (s TransferState) Active() bool {
	return s == StatePreparing || s == StateInFlight
}

// CanTransition reports whether the state machine allows s -> to.
func (s TransferState) CanTransition(to TransferState) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// TransferRecord is the state of one upload attempt.
//
// BytesSent never decreases and never exceeds TotalBytes. StartedAt is set
// on entering StateInFlight.
type TransferRecord struct {
	ID         string
	FileName   string
	SizeBytes  int64
	State      TransferState
	BytesSent  int64
	TotalBytes int64
	StartedAt  time.Time

	// Message is the user-facing status for terminal states.
	Message string
	// Err is the classified cause of a failure.
	Err error
}
