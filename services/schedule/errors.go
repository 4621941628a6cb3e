package schedule

import (
	"errors"
	"fmt"

	"carebook/models"
)

var (
	// ErrRuleNotFound means the provider has not saved an availability rule yet.
	ErrRuleNotFound = errors.New("availability rule not found")
	// ErrSlotUnavailable means the requested slot is missing or already taken.
	ErrSlotUnavailable = errors.New("slot is not available")
	// ErrOwnerMismatch means a release was attempted by a non-occupant.
	ErrOwnerMismatch = errors.New("slot is booked by a different appointment")
	// ErrSlotConflict means a custom slot overlaps an existing one.
	ErrSlotConflict = errors.New("slot overlaps an existing slot")
	// ErrSlotNotFound means the target slot is absent or not cancellable.
	ErrSlotNotFound = errors.New("slot not found")
)

// ValidationError names the first violated rule invariant. Nothing is written
// when validation fails.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid rule: %s: %s", e.Field, e.Message)
}

// LeaveConflictError reports the booked slots blocking a leave request so the
// management UI can list them. The date is left fully unchanged.
type LeaveConflictError struct {
	Date   string
	Booked []models.Slot
}

func (e *LeaveConflictError) Error() string {
	return fmt.Sprintf("date %s has %d booked slot(s); cancel or reschedule them first", e.Date, len(e.Booked))
}
