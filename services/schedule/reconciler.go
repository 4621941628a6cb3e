package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	slotRepo "carebook/database/repository/slot"
	"carebook/models"
	"carebook/utils"
)

// Lock reserves a slot for an appointment. The transition is one conditional
// write at the storage layer, so under concurrent callers exactly one wins and
// the rest get ErrSlotUnavailable — there is no half-applied state to clean up.
func (s *DefaultScheduleService) Lock(ctx context.Context, providerID, date string, start int, appointmentID string) error {
	if appointmentID == "" {
		return &ValidationError{Field: "appointmentId", Message: "appointmentId is required"}
	}
	// A booking may target a date nobody previewed yet.
	if err := s.ensureDay(ctx, providerID, date); err != nil {
		return err
	}

	locked, err := s.Slots.LockSlot(ctx, providerID, date, start, appointmentID)
	if err != nil {
		return err
	}
	if !locked {
		return ErrSlotUnavailable
	}

	s.dropPreviewCacheForDate(ctx, providerID, date)
	s.emit(ctx, models.ScheduleEventPayload{
		Kind:          models.EventSlotLocked,
		ProviderID:    providerID,
		Date:          date,
		Start:         start,
		AppointmentID: appointmentID,
		At:            time.Now().UTC(),
	})
	return nil
}

// Release frees a booked slot, verifying the occupant in the same conditional
// write. A mismatched appointment leaves the slot booked.
func (s *DefaultScheduleService) Release(ctx context.Context, providerID, date string, start int, appointmentID string) error {
	released, err := s.Slots.ReleaseSlot(ctx, providerID, date, start, appointmentID)
	if err != nil {
		return err
	}
	if !released {
		slot, err := s.Slots.GetBySlotKey(ctx, providerID, date, start)
		if err != nil {
			return err
		}
		if slot != nil && slot.Status == models.SlotStatusBooked {
			return ErrOwnerMismatch
		}
		return ErrSlotNotFound
	}

	s.dropPreviewCacheForDate(ctx, providerID, date)
	s.emit(ctx, models.ScheduleEventPayload{
		Kind:          models.EventSlotReleased,
		ProviderID:    providerID,
		Date:          date,
		Start:         start,
		AppointmentID: appointmentID,
		At:            time.Now().UTC(),
	})
	return nil
}

// AddCustomSlot inserts an ad-hoc slot with its own duration. The overlap
// check and the insert run inside one storage transaction, so two admins
// carving out different but overlapping windows resolve to a single winner.
func (s *DefaultScheduleService) AddCustomSlot(ctx context.Context, providerID, date string, start, duration int) (*models.Slot, error) {
	if _, err := utils.ParseDate(date); err != nil {
		return nil, &ValidationError{Field: "date", Message: err.Error()}
	}
	if duration <= 0 {
		return nil, &ValidationError{Field: "duration", Message: "duration must be positive"}
	}
	end := start + duration
	if start < 0 || end > utils.MinutesPerDay {
		return nil, &ValidationError{Field: "start", Message: "slot must lie within the day"}
	}
	if err := s.ensureDay(ctx, providerID, date); err != nil {
		return nil, err
	}

	slot := models.Slot{
		ProviderID:     providerID,
		Date:           date,
		Start:          start,
		End:            end,
		Status:         models.SlotStatusAvailable,
		Custom:         true,
		CustomDuration: duration,
	}
	if err := s.Slots.InsertCustomTx(ctx, slot); err != nil {
		if errors.Is(err, slotRepo.ErrOverlappingSlot) || errors.Is(err, slotRepo.ErrDuplicateSlot) {
			return nil, ErrSlotConflict
		}
		return nil, fmt.Errorf("failed to insert custom slot: %w", err)
	}

	s.dropPreviewCacheForDate(ctx, providerID, date)
	stored, err := s.Slots.GetBySlotKey(ctx, providerID, date, start)
	if err != nil || stored == nil {
		return &slot, nil
	}
	return stored, nil
}

// CancelCustomSlot cancels one available slot. Booked slots must go through
// Release first, so they surface as not-cancellable here.
func (s *DefaultScheduleService) CancelCustomSlot(ctx context.Context, providerID, date string, start int) error {
	cancelled, err := s.Slots.CancelAvailable(ctx, providerID, date, start)
	if err != nil {
		return err
	}
	if !cancelled {
		return ErrSlotNotFound
	}
	s.dropPreviewCacheForDate(ctx, providerID, date)
	return nil
}

// SetLeave applies a day override: full leave cancels every available slot on
// the date, a break override only the ones inside the extra windows. If any
// booked slot is in range the whole operation fails with the conflicting slots
// listed and nothing changes. On success the override is recorded in the rule
// so the date stays excluded across re-materializations.
func (s *DefaultScheduleService) SetLeave(ctx context.Context, providerID, date string, leaveType models.LeaveType, extraBreaks []models.RecurringBreak, reason string) error {
	if _, err := utils.ParseDate(date); err != nil {
		return &ValidationError{Field: "date", Message: err.Error()}
	}

	var windows [][2]int
	switch leaveType {
	case models.LeaveFull:
		// nil windows: the whole day.
	case models.LeaveBreak:
		if len(extraBreaks) == 0 {
			return &ValidationError{Field: "slots", Message: "a break override needs at least one window"}
		}
		for i, b := range extraBreaks {
			bs, err1 := utils.ParseClock(b.Start)
			be, err2 := utils.ParseClock(b.End)
			if err1 != nil || err2 != nil || bs >= be {
				return &ValidationError{Field: fmt.Sprintf("slots[%d]", i), Message: "invalid break window"}
			}
			windows = append(windows, [2]int{bs, be})
		}
	default:
		return &ValidationError{Field: "leaveType", Message: fmt.Sprintf("unknown leave type %q", leaveType)}
	}

	if err := s.ensureDay(ctx, providerID, date); err != nil {
		return err
	}

	conflicts, err := s.Slots.CancelDayTx(ctx, providerID, date, windows)
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		return &LeaveConflictError{Date: date, Booked: conflicts}
	}

	if err := s.recordOverride(ctx, providerID, models.CustomDayOverride{
		Date:      date,
		LeaveType: leaveType,
		Breaks:    extraBreaks,
		Reason:    reason,
	}); err != nil {
		// The day's slots are already cancelled at this point; only the rule
		// write failed. SetLeave is idempotent (a cancelled day has nothing
		// left to cancel), so the caller retries instead of being left with a
		// silently half-applied leave.
		return fmt.Errorf("slots cancelled for %s but the override was not recorded, retry the leave: %w", date, err)
	}

	s.dropPreviewCacheForDate(ctx, providerID, date)
	s.emit(ctx, models.ScheduleEventPayload{
		Kind:       models.EventLeaveSet,
		ProviderID: providerID,
		Date:       date,
		At:         time.Now().UTC(),
	})
	return nil
}

// RemoveLeave drops the date's override and reverts it to the recurring
// pattern: regenerable rows and the day marker go, the next read re-seeds.
func (s *DefaultScheduleService) RemoveLeave(ctx context.Context, providerID, date string) error {
	rule, err := s.GetRule(ctx, providerID)
	if err != nil {
		return err
	}
	if !rule.RemoveOverride(date) {
		return ErrSlotNotFound
	}
	if err := s.Rules.Upsert(ctx, rule); err != nil {
		return fmt.Errorf("failed to store rule: %w", err)
	}

	if err := s.Slots.DeleteRegenerable(ctx, providerID, date); err != nil {
		return err
	}
	if err := s.Slots.DeleteDay(ctx, providerID, date); err != nil {
		return err
	}

	s.dropPreviewCacheForDate(ctx, providerID, date)
	s.emit(ctx, models.ScheduleEventPayload{
		Kind:       models.EventLeaveRemoved,
		ProviderID: providerID,
		Date:       date,
		At:         time.Now().UTC(),
	})
	return nil
}

func (s *DefaultScheduleService) recordOverride(ctx context.Context, providerID string, override models.CustomDayOverride) error {
	rule, err := s.GetRule(ctx, providerID)
	if err != nil {
		return err
	}
	rule.SetOverride(override)
	if err := s.Rules.Upsert(ctx, rule); err != nil {
		return fmt.Errorf("failed to store rule: %w", err)
	}
	return nil
}
