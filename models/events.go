package models

import "time"

// Schedule event kinds emitted by the booking reconciler.
const (
	EventSlotLocked   = "slot.locked"
	EventSlotReleased = "slot.released"
	EventLeaveSet     = "leave.set"
	EventLeaveRemoved = "leave.removed"
	EventRuleUpdated  = "rule.updated"
)

// ScheduleEventPayload is the task payload handed to the event queue whenever
// the slot ledger changes. Downstream delivery (push, email) is external.
type ScheduleEventPayload struct {
	Kind          string    `json:"kind"`
	ProviderID    string    `json:"providerId"`
	Date          string    `json:"date,omitempty"`
	Start         int       `json:"start,omitempty"`
	AppointmentID string    `json:"appointmentId,omitempty"`
	At            time.Time `json:"at"`
}
