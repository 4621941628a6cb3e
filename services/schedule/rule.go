package schedule

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"carebook/models"
	"carebook/utils"
)

// GetRule returns the provider's availability rule. A stored rule that no
// longer validates (corrupt write, manual edit) surfaces as a ValidationError
// and must be re-saved.
func (s *DefaultScheduleService) GetRule(ctx context.Context, providerID string) (*models.AvailabilityRule, error) {
	rule, err := s.Rules.GetByProviderID(ctx, providerID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrRuleNotFound
		}
		return nil, fmt.Errorf("failed to load rule: %w", err)
	}
	if verr := validateRule(rule); verr != nil {
		return nil, verr
	}
	return rule, nil
}

// SetRule validates and stores the rule, then invalidates future materialized
// dates that were derived purely from the recurring pattern. A date with any
// booking history is frozen: nothing on it is touched until the bookings are
// resolved. Custom slots survive every rule save.
func (s *DefaultScheduleService) SetRule(ctx context.Context, providerID string, rule models.AvailabilityRule) (*models.AvailabilityRule, error) {
	rule.ProviderID = providerID
	if verr := validateRule(&rule); verr != nil {
		return nil, verr
	}
	if err := s.Rules.Upsert(ctx, &rule); err != nil {
		return nil, fmt.Errorf("failed to store rule: %w", err)
	}

	if err := s.invalidateFutureDays(ctx, providerID); err != nil {
		return nil, err
	}

	s.emit(ctx, models.ScheduleEventPayload{
		Kind:       models.EventRuleUpdated,
		ProviderID: providerID,
		At:         time.Now().UTC(),
	})
	return &rule, nil
}

func (s *DefaultScheduleService) invalidateFutureDays(ctx context.Context, providerID string) error {
	now := time.Now()
	from := now.UTC().AddDate(0, 0, 1).Format(utils.DateLayout)
	days, err := s.Slots.ListDays(ctx, providerID, from, "9999-12-31")
	if err != nil {
		return fmt.Errorf("failed to list materialized days: %w", err)
	}

	for _, date := range days {
		slots, err := s.Slots.GetByDate(ctx, providerID, date)
		if err != nil {
			return fmt.Errorf("failed to read day %s: %w", date, err)
		}
		if dayFrozen(slots) {
			continue
		}
		if err := s.Slots.DeleteRegenerable(ctx, providerID, date); err != nil {
			return fmt.Errorf("failed to invalidate day %s: %w", date, err)
		}
		// Dropping the marker makes the next read re-materialize around any
		// surviving custom slots.
		if err := s.Slots.DeleteDay(ctx, providerID, date); err != nil {
			return fmt.Errorf("failed to drop day marker %s: %w", date, err)
		}
		s.dropPreviewCacheForDate(ctx, providerID, date)
	}
	return nil
}

// dayFrozen applies the conservative policy for rule updates: once any slot on
// a date has booking history, the whole date is left as-is.
func dayFrozen(slots []models.Slot) bool {
	for _, slot := range slots {
		if slot.EverBooked || slot.Status == models.SlotStatusBooked {
			return true
		}
	}
	return false
}

func validateRule(rule *models.AvailabilityRule) *ValidationError {
	if len(rule.DaysOfWeek) == 0 {
		return &ValidationError{Field: "daysOfWeek", Message: "at least one working day is required"}
	}
	seen := make(map[int]bool)
	for _, d := range rule.DaysOfWeek {
		if d < 0 || d > 6 {
			return &ValidationError{Field: "daysOfWeek", Message: fmt.Sprintf("weekday %d is out of range 0-6", d)}
		}
		if seen[d] {
			return &ValidationError{Field: "daysOfWeek", Message: fmt.Sprintf("weekday %d is repeated", d)}
		}
		seen[d] = true
	}

	start, err := utils.ParseClock(rule.StartTime)
	if err != nil {
		return &ValidationError{Field: "startTime", Message: err.Error()}
	}
	end, err := utils.ParseClock(rule.EndTime)
	if err != nil {
		return &ValidationError{Field: "endTime", Message: err.Error()}
	}
	if start >= end {
		return &ValidationError{Field: "startTime", Message: "startTime must be before endTime"}
	}
	if rule.SlotDuration <= 0 {
		return &ValidationError{Field: "slotDuration", Message: "slotDuration must be positive"}
	}

	if verr := validateBreaks(rule.Breaks, "breaks", start, end); verr != nil {
		return verr
	}

	dates := make(map[string]bool)
	for i, day := range rule.CustomDays {
		field := fmt.Sprintf("customDays[%d]", i)
		if _, err := utils.ParseDate(day.Date); err != nil {
			return &ValidationError{Field: field, Message: err.Error()}
		}
		if dates[day.Date] {
			return &ValidationError{Field: field, Message: fmt.Sprintf("date %s is repeated", day.Date)}
		}
		dates[day.Date] = true

		switch day.LeaveType {
		case models.LeaveFull:
			// A full-day override ignores any windows.
		case models.LeaveBreak:
			// One-off windows may extend past the recurring hours, so only
			// their internal consistency is checked.
			if verr := validateBreaks(day.Breaks, field+".breaks", 0, utils.MinutesPerDay); verr != nil {
				return verr
			}
		default:
			return &ValidationError{Field: field + ".leaveType", Message: fmt.Sprintf("unknown leave type %q", day.LeaveType)}
		}
	}
	return nil
}

func validateBreaks(breaks []models.RecurringBreak, field string, windowStart, windowEnd int) *ValidationError {
	parsed := make([]window, 0, len(breaks))
	for i, b := range breaks {
		bf := fmt.Sprintf("%s[%d]", field, i)
		bs, err := utils.ParseClock(b.Start)
		if err != nil {
			return &ValidationError{Field: bf, Message: err.Error()}
		}
		be, err := utils.ParseClock(b.End)
		if err != nil {
			return &ValidationError{Field: bf, Message: err.Error()}
		}
		if bs >= be {
			return &ValidationError{Field: bf, Message: "break start must be before its end"}
		}
		if bs < windowStart || be > windowEnd {
			return &ValidationError{Field: bf, Message: "break must lie within the working window"}
		}
		parsed = append(parsed, window{start: bs, end: be})
	}

	sort.Slice(parsed, func(i, j int) bool { return parsed[i].start < parsed[j].start })
	for i := 1; i < len(parsed); i++ {
		if parsed[i].start < parsed[i-1].end {
			return &ValidationError{Field: field, Message: "breaks must not overlap"}
		}
	}
	return nil
}
