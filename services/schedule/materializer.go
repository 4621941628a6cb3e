package schedule

import (
	"carebook/models"
	"carebook/utils"
)

// window is an exclusion interval in minutes from midnight, half-open.
type window struct {
	start int
	end   int
}

func overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// MaterializeDate computes the candidate slots for one calendar date as a
// layered pipeline over the rule: weekly pattern, then recurring breaks, then
// the date's override. It is pure; the caller decides what to persist. The
// rule must already be validated.
func MaterializeDate(rule *models.AvailabilityRule, date string) []models.Slot {
	override := rule.OverrideFor(date)
	if override != nil && override.LeaveType == models.LeaveFull {
		return nil
	}

	day, err := utils.ParseDate(date)
	if err != nil {
		return nil
	}
	if !rule.AllowsWeekday(int(day.Weekday())) {
		return nil
	}

	start, _ := utils.ParseClock(rule.StartTime)
	end, _ := utils.ParseClock(rule.EndTime)

	exclusions := collectWindows(rule.Breaks)
	if override != nil && override.LeaveType == models.LeaveBreak {
		exclusions = append(exclusions, collectWindows(override.Breaks)...)
	}

	var slots []models.Slot
	// A trailing remainder shorter than the slot duration is dropped, never
	// truncated.
	for cand := start; cand+rule.SlotDuration <= end; cand += rule.SlotDuration {
		candEnd := cand + rule.SlotDuration
		excluded := false
		for _, ex := range exclusions {
			if overlaps(cand, candEnd, ex.start, ex.end) {
				excluded = true
				break
			}
		}
		if excluded {
			continue
		}
		slots = append(slots, models.Slot{
			ProviderID: rule.ProviderID,
			Date:       date,
			Start:      cand,
			End:        candEnd,
			Status:     models.SlotStatusAvailable,
		})
	}
	return slots
}

// MaterializeMonth runs MaterializeDate over every calendar date of the month,
// in order. Dates with zero slots are included with a nil slice so callers can
// distinguish "day off" from "not computed".
func MaterializeMonth(rule *models.AvailabilityRule, year, month int) map[string][]models.Slot {
	out := make(map[string][]models.Slot)
	for _, date := range utils.MonthDates(year, month) {
		out[date] = MaterializeDate(rule, date)
	}
	return out
}

func collectWindows(breaks []models.RecurringBreak) []window {
	var ws []window
	for _, b := range breaks {
		s, err1 := utils.ParseClock(b.Start)
		e, err2 := utils.ParseClock(b.End)
		if err1 != nil || err2 != nil {
			continue
		}
		ws = append(ws, window{start: s, end: e})
	}
	return ws
}
