package models

import (
	"errors"
	"time"
)

// ConfirmationStatus represents the state of an authorship confirmation
// request.
type ConfirmationStatus string

// Possible values for ConfirmationStatus. A confirmation starts out pending
// and transitions exactly once to confirmed or denied.
const (
	StatusPending   ConfirmationStatus = "pending"
	StatusConfirmed ConfirmationStatus = "confirmed"
	StatusDenied    ConfirmationStatus = "denied"
)

// Sentinel errors shared by every store implementation.
var (
	// ErrNotFound is returned when no record exists for the given id.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyResolved is returned when a confirmation has already left
	// the pending state. Repeated decision-link clicks land here.
	ErrAlreadyResolved = errors.New("confirmation already resolved")
)

// Confirmation asks a named e-mail address to affirm or deny authorship of a
// news item. Only Status and RespondedAt ever change after creation.
type Confirmation struct {
	ID          string             `db:"id" json:"id"`
	RequesterID string             `db:"requester_id" json:"requester_id"`
	TargetEmail string             `db:"target_email" json:"target_email"`
	Status      ConfirmationStatus `db:"status" json:"status"`
	CreatedAt   time.Time          `db:"created_at" json:"created_at"`
	RespondedAt *time.Time         `db:"responded_at" json:"responded_at,omitempty"` // nil while pending
}

// ConfirmationStore is the interface for performing actions with
// confirmation requests.
type ConfirmationStore interface {
	GetConfirmation(id string) (Confirmation, error)
	ResolveConfirmation(id string, status ConfirmationStatus, respondedAt time.Time) error
}

// Resolved reports whether this confirmation has left the pending state.
func (c *Confirmation) Resolved() bool {
	return c.Status != StatusPending
}

// Decision maps a decision link's deny marker to the terminal status it
// selects.
func Decision(deny bool) ConfirmationStatus {
	if deny {
		return StatusDenied
	}
	return StatusConfirmed
}

// Resolve applies the one-shot status transition for this confirmation's ID.
// The store's conditional write guarantees at most one caller wins when two
// decision links race; the loser observes ErrAlreadyResolved. The returned
// Confirmation reflects the record's final state whenever it could be loaded,
// including on ErrAlreadyResolved so callers can disclose the earlier
// decision.
func (c Confirmation) Resolve(store ConfirmationStore, deny bool) (Confirmation, error) {
	err := store.ResolveConfirmation(c.ID, Decision(deny), time.Now())
	if err == ErrAlreadyResolved {
		current, getErr := store.GetConfirmation(c.ID)
		if getErr != nil {
			return Confirmation{}, getErr
		}
		return current, ErrAlreadyResolved
	}
	if err != nil {
		return Confirmation{}, err
	}
	return store.GetConfirmation(c.ID)
}
