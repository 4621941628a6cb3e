package models

import (
	"time"

	"carebook/utils"
)

// SlotStatus is the lifecycle state of a bookable slot.
type SlotStatus string

const (
	SlotStatusAvailable SlotStatus = "available"
	SlotStatusBooked    SlotStatus = "booked"
	SlotStatusCancelled SlotStatus = "cancelled"
)

// Slot is one bookable unit of a provider's day. Times are minutes from
// midnight; the (providerId, date, start) triple is unique.
type Slot struct {
	ID         string     `bson:"id" json:"id"`
	ProviderID string     `bson:"providerId" json:"providerId"`
	Date       string     `bson:"date" json:"date"` // "2006-01-02"
	Start      int        `bson:"start" json:"start"`
	End        int        `bson:"end" json:"end"`
	Status     SlotStatus `bson:"status" json:"status"`

	// Custom marks slots created by an ad-hoc edit rather than the recurring
	// rule; CustomDuration overrides the rule's slot size for this slot only.
	Custom         bool `bson:"custom,omitempty" json:"custom,omitempty"`
	CustomDuration int  `bson:"customDuration,omitempty" json:"customDuration,omitempty"`

	// AppointmentID is set iff Status is booked.
	AppointmentID string `bson:"appointmentId,omitempty" json:"appointmentId,omitempty"`
	// EverBooked is sticky: once a slot has held a booking its record is kept
	// for audit and never silently regenerated.
	EverBooked bool `bson:"everBooked,omitempty" json:"everBooked,omitempty"`

	Version   int       `bson:"version" json:"version"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Overlaps reports whether the slot intersects [start, end) on the same date.
// Interval semantics are half-open: touching endpoints do not overlap.
func (s Slot) Overlaps(start, end int) bool {
	return s.Start < end && start < s.End
}

// SlotDay marks a (provider, date) pair as materialized. Its unique index is
// what resolves concurrent materialization: first insert wins.
type SlotDay struct {
	ProviderID     string    `bson:"providerId" json:"providerId"`
	Date           string    `bson:"date" json:"date"`
	MaterializedAt time.Time `bson:"materializedAt" json:"materializedAt"`
}

// SlotView is the flattened API shape of a slot, with wall-clock strings.
type SlotView struct {
	Date           string     `json:"date"`
	Start          string     `json:"start"`
	End            string     `json:"end"`
	Status         SlotStatus `json:"status"`
	CustomDuration int        `json:"customDuration,omitempty"`
}

// View converts a slot to its API shape.
func (s Slot) View() SlotView {
	return SlotView{
		Date:           s.Date,
		Start:          utils.FormatClock(s.Start),
		End:            utils.FormatClock(s.End),
		Status:         s.Status,
		CustomDuration: s.CustomDuration,
	}
}
