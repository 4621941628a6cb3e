package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	slotRepo "carebook/database/repository/slot"
	"carebook/models"
	"carebook/utils"
)

// ensureDay lazily seeds the ledger for one date. Once the day marker exists
// the ledger is authoritative and is never re-materialized here; a rule update
// is the only thing that drops the marker again. Two racing readers resolve
// through the marker's unique index: the loser's InsertDay fails and both see
// the same rows.
func (s *DefaultScheduleService) ensureDay(ctx context.Context, providerID, date string) error {
	ok, err := s.Slots.HasDay(ctx, providerID, date)
	if err != nil {
		return fmt.Errorf("failed to check day marker: %w", err)
	}
	if ok {
		return nil
	}

	rule, err := s.GetRule(ctx, providerID)
	if err != nil {
		if errors.Is(err, ErrRuleNotFound) {
			// No rule yet: nothing to materialize, and no marker either so
			// the date seeds itself once a rule appears.
			return nil
		}
		return err
	}

	candidates := MaterializeDate(rule, date)

	// Custom slots (and audit rows) may already exist for a date whose marker
	// was dropped by a rule update. They stay authoritative: candidates that
	// collide with a live row are discarded.
	existing, err := s.Slots.GetByDate(ctx, providerID, date)
	if err != nil {
		return fmt.Errorf("failed to read existing slots: %w", err)
	}
	fresh := candidates[:0]
	for _, cand := range candidates {
		blocked := false
		for _, cur := range existing {
			if cur.Status != models.SlotStatusCancelled && cur.Overlaps(cand.Start, cand.End) {
				blocked = true
				break
			}
		}
		if !blocked {
			cand.ID = uuid.New().String()
			fresh = append(fresh, cand)
		}
	}

	if err := s.Slots.InsertMany(ctx, fresh); err != nil {
		return fmt.Errorf("failed to insert materialized slots: %w", err)
	}
	if err := s.Slots.InsertDay(ctx, models.SlotDay{
		ProviderID:     providerID,
		Date:           date,
		MaterializedAt: time.Now().UTC(),
	}); err != nil {
		if errors.Is(err, slotRepo.ErrDayExists) {
			// Another reader won the race; its rows are the ledger now.
			return nil
		}
		return fmt.Errorf("failed to insert day marker: %w", err)
	}
	return nil
}

// SlotsForDate is the authoritative single-date view used by the booking UI
// and as the write target of the reconciler operations.
func (s *DefaultScheduleService) SlotsForDate(ctx context.Context, providerID, date string) ([]models.Slot, error) {
	if _, err := utils.ParseDate(date); err != nil {
		return nil, &ValidationError{Field: "date", Message: err.Error()}
	}
	if err := s.ensureDay(ctx, providerID, date); err != nil {
		return nil, err
	}
	slots, err := s.Slots.GetByDate(ctx, providerID, date)
	if err != nil {
		// Reads are idempotent, so one transparent retry is safe.
		slots, err = s.Slots.GetByDate(ctx, providerID, date)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read slots: %w", err)
	}
	return slots, nil
}

// slotsForMonth ensures every date of the month is materialized, then reads
// the whole month in one query.
func (s *DefaultScheduleService) slotsForMonth(ctx context.Context, providerID string, year, month int) ([]models.Slot, error) {
	dates := utils.MonthDates(year, month)
	known, err := s.Slots.ListDays(ctx, providerID, dates[0], dates[len(dates)-1])
	if err != nil {
		return nil, fmt.Errorf("failed to list materialized days: %w", err)
	}
	materialized := make(map[string]bool, len(known))
	for _, d := range known {
		materialized[d] = true
	}
	for _, date := range dates {
		if materialized[date] {
			continue
		}
		if err := s.ensureDay(ctx, providerID, date); err != nil {
			return nil, err
		}
	}

	slots, err := s.Slots.GetByDateRange(ctx, providerID, dates[0], dates[len(dates)-1])
	if err != nil {
		slots, err = s.Slots.GetByDateRange(ctx, providerID, dates[0], dates[len(dates)-1])
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read month slots: %w", err)
	}
	return slots, nil
}
