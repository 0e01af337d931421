// Package audit records every proposal status transition to an append-only
// trail. Confirmed financial matches must never change without a record of
// who moved what, so the engine writes an event for each transition,
// including cascaded rejections.
package audit

import "time"

// Event is one recorded status transition.
type Event struct {
	At         time.Time
	ProposalID string
	BankID     string
	From       string
	To         string
	Note       string
}

// Recorder receives transition events. Implementations must tolerate being
// called synchronously from the engine's single-threaded transition path.
type Recorder interface {
	Record(event Event) error
	Close() error
}

// Nop is a Recorder that discards everything. Used when no trail is
// configured and in tests.
type Nop struct{}

// Record discards the event.
func (Nop) Record(Event) error { return nil }

// Close does nothing.
func (Nop) Close() error { return nil }
