package models

import "time"

// LeaveType classifies a date-specific override on the recurring pattern.
type LeaveType string

const (
	// LeaveFull removes the whole date from availability.
	LeaveFull LeaveType = "full"
	// LeaveBreak adds extra one-off exclusion windows for that date only.
	LeaveBreak LeaveType = "break"
)

// RecurringBreak is a daily exclusion window inside the working hours.
type RecurringBreak struct {
	Start string `bson:"start" json:"start"` // "HH:MM"
	End   string `bson:"end" json:"end"`     // "HH:MM"
}

// CustomDayOverride is a date-specific exception layered on top of the recurring rule.
type CustomDayOverride struct {
	Date      string           `bson:"date" json:"date"` // "2006-01-02"
	LeaveType LeaveType        `bson:"leaveType" json:"leaveType"`
	Breaks    []RecurringBreak `bson:"breaks,omitempty" json:"breaks,omitempty"`
	Reason    string           `bson:"reason,omitempty" json:"reason,omitempty"`
}

// AvailabilityRule is a provider's recurring weekly availability: working days,
// daily window, slot size, recurring breaks, plus per-date overrides.
type AvailabilityRule struct {
	ProviderID   string              `bson:"providerId" json:"providerId"`
	DaysOfWeek   []int               `bson:"daysOfWeek" json:"daysOfWeek"` // 0=Sunday .. 6=Saturday
	StartTime    string              `bson:"startTime" json:"startTime"`   // "HH:MM"
	EndTime      string              `bson:"endTime" json:"endTime"`       // "HH:MM"
	SlotDuration int                 `bson:"slotDuration" json:"slotDuration"` // minutes
	Breaks       []RecurringBreak    `bson:"breaks,omitempty" json:"breaks,omitempty"`
	CustomDays   []CustomDayOverride `bson:"customDays,omitempty" json:"customDays,omitempty"`
	UpdatedAt    time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// OverrideFor returns the custom-day override for the given date, if any.
func (r *AvailabilityRule) OverrideFor(date string) *CustomDayOverride {
	for i := range r.CustomDays {
		if r.CustomDays[i].Date == date {
			return &r.CustomDays[i]
		}
	}
	return nil
}

// AllowsWeekday reports whether the recurring pattern covers the given weekday.
func (r *AvailabilityRule) AllowsWeekday(weekday int) bool {
	for _, d := range r.DaysOfWeek {
		if d == weekday {
			return true
		}
	}
	return false
}

// SetOverride adds or replaces the override for its date.
func (r *AvailabilityRule) SetOverride(o CustomDayOverride) {
	for i := range r.CustomDays {
		if r.CustomDays[i].Date == o.Date {
			r.CustomDays[i] = o
			return
		}
	}
	r.CustomDays = append(r.CustomDays, o)
}

// RemoveOverride drops the override for the given date. Returns true if one existed.
func (r *AvailabilityRule) RemoveOverride(date string) bool {
	for i := range r.CustomDays {
		if r.CustomDays[i].Date == date {
			r.CustomDays = append(r.CustomDays[:i], r.CustomDays[i+1:]...)
			return true
		}
	}
	return false
}
