package slotRepo

import (
	"context"
	"errors"

	"carebook/models"
)

// ErrDayExists is returned by InsertDay when another writer already
// materialized the date. Callers should re-read instead of overwriting.
var ErrDayExists = errors.New("slot day already materialized")

// ErrDuplicateSlot is returned by InsertCustomTx when a slot with the same
// (providerId, date, start) key already exists.
var ErrDuplicateSlot = errors.New("slot already exists")

// ErrOverlappingSlot is returned by InsertCustomTx when a non-cancelled slot
// intersects the requested window.
var ErrOverlappingSlot = errors.New("slot overlaps an existing slot")

// SlotRepository is the persistence contract for the slot ledger. Every state
// transition is a single conditional update so that concurrent callers cannot
// half-apply a change: the filter re-checks the expected status and the write
// either matches exactly one document or none.
type SlotRepository interface {
	GetByDate(ctx context.Context, providerID, date string) ([]models.Slot, error)
	GetByDateRange(ctx context.Context, providerID, from, to string) ([]models.Slot, error)
	GetBySlotKey(ctx context.Context, providerID, date string, start int) (*models.Slot, error)

	// InsertMany inserts slot documents unordered; rows colliding on the
	// unique (providerId, date, start) key are skipped, not an error.
	InsertMany(ctx context.Context, slots []models.Slot) error
	// InsertCustomTx inserts the slot iff no non-cancelled slot intersects
	// [slot.Start, slot.End). Check and insert run inside one transaction so
	// concurrent inserts with different, overlapping windows cannot both pass.
	// Returns ErrOverlappingSlot or ErrDuplicateSlot when losing.
	InsertCustomTx(ctx context.Context, slot models.Slot) error
	// DeleteRegenerable removes pattern-derived rows that were never booked,
	// leaving custom slots and anything with booking history untouched.
	DeleteRegenerable(ctx context.Context, providerID, date string) error

	// Day markers. InsertDay returns ErrDayExists when losing the
	// materialization race.
	HasDay(ctx context.Context, providerID, date string) (bool, error)
	InsertDay(ctx context.Context, day models.SlotDay) error
	DeleteDay(ctx context.Context, providerID, date string) error
	ListDays(ctx context.Context, providerID, from, to string) ([]string, error)

	// LockSlot transitions available -> booked for the given occupant.
	// Returns false when no available slot matched.
	LockSlot(ctx context.Context, providerID, date string, start int, appointmentID string) (bool, error)
	// ReleaseSlot transitions booked -> available, but only for the matching
	// occupant. Returns false when no such booked slot matched.
	ReleaseSlot(ctx context.Context, providerID, date string, start int, appointmentID string) (bool, error)
	// CancelAvailable transitions available -> cancelled for a single slot.
	CancelAvailable(ctx context.Context, providerID, date string, start int) (bool, error)
	// CancelDayTx cancels the date's available slots inside one transaction.
	// A nil windows argument means the whole day; otherwise only slots
	// overlapping one of the [start, end) windows are affected. If any booked
	// slot is in range the transaction aborts and the booked slots are
	// returned with no changes applied.
	CancelDayTx(ctx context.Context, providerID, date string, windows [][2]int) ([]models.Slot, error)

	EnsureIndexes() error
}
