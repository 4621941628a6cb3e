package schedule

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	slotRepo "carebook/database/repository/slot"
	"carebook/models"
)

// fakeRuleRepo is an in-memory RuleRepository. Setting upsertErr makes the
// next Upsert fail once, for exercising partial-failure paths.
type fakeRuleRepo struct {
	mu        sync.Mutex
	rules     map[string]models.AvailabilityRule
	upsertErr error
}

func newFakeRuleRepo() *fakeRuleRepo {
	return &fakeRuleRepo{rules: make(map[string]models.AvailabilityRule)}
}

func (r *fakeRuleRepo) GetByProviderID(_ context.Context, providerID string) (*models.AvailabilityRule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rule, ok := r.rules[providerID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := rule
	copied.DaysOfWeek = append([]int(nil), rule.DaysOfWeek...)
	copied.Breaks = append([]models.RecurringBreak(nil), rule.Breaks...)
	copied.CustomDays = append([]models.CustomDayOverride(nil), rule.CustomDays...)
	return &copied, nil
}

func (r *fakeRuleRepo) Upsert(_ context.Context, rule *models.AvailabilityRule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.upsertErr != nil {
		err := r.upsertErr
		r.upsertErr = nil
		return err
	}
	stored := *rule
	stored.UpdatedAt = time.Now().UTC()
	r.rules[rule.ProviderID] = stored
	return nil
}

func (r *fakeRuleRepo) EnsureIndexes() error { return nil }

// fakeSlotRepo is an in-memory SlotRepository. Every state transition takes
// the mutex and re-checks the expected status, mirroring the conditional
// updates of the Mongo implementation so concurrency tests are meaningful.
type fakeSlotRepo struct {
	mu    sync.Mutex
	slots map[string]*models.Slot
	days  map[string]bool
}

func newFakeSlotRepo() *fakeSlotRepo {
	return &fakeSlotRepo{
		slots: make(map[string]*models.Slot),
		days:  make(map[string]bool),
	}
}

func slotKey(providerID, date string, start int) string {
	return fmt.Sprintf("%s|%s|%d", providerID, date, start)
}

func dayKey(providerID, date string) string {
	return fmt.Sprintf("%s|%s", providerID, date)
}

func (r *fakeSlotRepo) GetByDate(_ context.Context, providerID, date string) ([]models.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Slot
	for _, s := range r.slots {
		if s.ProviderID == providerID && s.Date == date {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out, nil
}

func (r *fakeSlotRepo) GetByDateRange(_ context.Context, providerID, from, to string) ([]models.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Slot
	for _, s := range r.slots {
		if s.ProviderID == providerID && s.Date >= from && s.Date <= to {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Start < out[j].Start
	})
	return out, nil
}

func (r *fakeSlotRepo) GetBySlotKey(_ context.Context, providerID, date string, start int) (*models.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[slotKey(providerID, date, start)]
	if !ok {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}

func (r *fakeSlotRepo) InsertMany(_ context.Context, slots []models.Slot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range slots {
		key := slotKey(s.ProviderID, s.Date, s.Start)
		if _, exists := r.slots[key]; exists {
			continue
		}
		copied := s
		copied.CreatedAt = time.Now().UTC()
		copied.UpdatedAt = copied.CreatedAt
		r.slots[key] = &copied
	}
	return nil
}

func (r *fakeSlotRepo) InsertCustomTx(_ context.Context, slot models.Slot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.slots {
		if s.ProviderID == slot.ProviderID && s.Date == slot.Date &&
			s.Status != models.SlotStatusCancelled && s.Overlaps(slot.Start, slot.End) {
			return slotRepo.ErrOverlappingSlot
		}
	}
	key := slotKey(slot.ProviderID, slot.Date, slot.Start)
	if _, exists := r.slots[key]; exists {
		return slotRepo.ErrDuplicateSlot
	}
	copied := slot
	copied.CreatedAt = time.Now().UTC()
	copied.UpdatedAt = copied.CreatedAt
	r.slots[key] = &copied
	return nil
}

func (r *fakeSlotRepo) DeleteRegenerable(_ context.Context, providerID, date string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, s := range r.slots {
		if s.ProviderID == providerID && s.Date == date && !s.Custom && !s.EverBooked {
			delete(r.slots, key)
		}
	}
	return nil
}

func (r *fakeSlotRepo) HasDay(_ context.Context, providerID, date string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.days[dayKey(providerID, date)], nil
}

func (r *fakeSlotRepo) InsertDay(_ context.Context, day models.SlotDay) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := dayKey(day.ProviderID, day.Date)
	if r.days[key] {
		return slotRepo.ErrDayExists
	}
	r.days[key] = true
	return nil
}

func (r *fakeSlotRepo) DeleteDay(_ context.Context, providerID, date string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.days, dayKey(providerID, date))
	return nil
}

func (r *fakeSlotRepo) ListDays(_ context.Context, providerID, from, to string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prefix := providerID + "|"
	var out []string
	for key := range r.days {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if date := key[len(prefix):]; date >= from && date <= to {
			out = append(out, date)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *fakeSlotRepo) LockSlot(_ context.Context, providerID, date string, start int, appointmentID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[slotKey(providerID, date, start)]
	if !ok || s.Status != models.SlotStatusAvailable {
		return false, nil
	}
	s.Status = models.SlotStatusBooked
	s.AppointmentID = appointmentID
	s.EverBooked = true
	s.Version++
	s.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (r *fakeSlotRepo) ReleaseSlot(_ context.Context, providerID, date string, start int, appointmentID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[slotKey(providerID, date, start)]
	if !ok || s.Status != models.SlotStatusBooked || s.AppointmentID != appointmentID {
		return false, nil
	}
	s.Status = models.SlotStatusAvailable
	s.AppointmentID = ""
	s.Version++
	s.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (r *fakeSlotRepo) CancelAvailable(_ context.Context, providerID, date string, start int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[slotKey(providerID, date, start)]
	if !ok || s.Status != models.SlotStatusAvailable {
		return false, nil
	}
	s.Status = models.SlotStatusCancelled
	s.Version++
	s.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (r *fakeSlotRepo) CancelDayTx(_ context.Context, providerID, date string, windows [][2]int) ([]models.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inRange := func(s *models.Slot) bool {
		if windows == nil {
			return true
		}
		for _, w := range windows {
			if s.Overlaps(w[0], w[1]) {
				return true
			}
		}
		return false
	}

	var booked []models.Slot
	for _, s := range r.slots {
		if s.ProviderID == providerID && s.Date == date &&
			s.Status == models.SlotStatusBooked && inRange(s) {
			booked = append(booked, *s)
		}
	}
	if len(booked) > 0 {
		sort.Slice(booked, func(i, j int) bool { return booked[i].Start < booked[j].Start })
		return booked, nil
	}

	for _, s := range r.slots {
		if s.ProviderID == providerID && s.Date == date &&
			s.Status == models.SlotStatusAvailable && inRange(s) {
			s.Status = models.SlotStatusCancelled
			s.Version++
			s.UpdatedAt = time.Now().UTC()
		}
	}
	return nil, nil
}

func (r *fakeSlotRepo) EnsureIndexes() error { return nil }

// captureEmitter records emitted event kinds.
type captureEmitter struct {
	mu    sync.Mutex
	kinds []string
}

func (e *captureEmitter) Emit(_ context.Context, payload models.ScheduleEventPayload) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.kinds = append(e.kinds, payload.Kind)
}

func (e *captureEmitter) seen() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.kinds...)
}

// newTestService wires the engine against the in-memory fakes, no cache.
func newTestService() (*DefaultScheduleService, *fakeRuleRepo, *fakeSlotRepo, *captureEmitter) {
	rules := newFakeRuleRepo()
	slots := newFakeSlotRepo()
	events := &captureEmitter{}
	svc := NewDefaultScheduleService(rules, slots, nil, events)
	return svc, rules, slots, events
}
