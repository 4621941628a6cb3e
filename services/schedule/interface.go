package schedule

import (
	"context"

	ruleRepo "carebook/database/repository/rule"
	slotRepo "carebook/database/repository/slot"
	"carebook/models"

	"github.com/go-redis/redis/v8"
)

// ScheduleService is the availability engine: it owns the recurring rule, the
// materialized slot ledger, and every booking-side state transition.
type ScheduleService interface {
	// Rule store.
	GetRule(ctx context.Context, providerID string) (*models.AvailabilityRule, error)
	SetRule(ctx context.Context, providerID string, rule models.AvailabilityRule) (*models.AvailabilityRule, error)

	// Query facade.
	PreviewMonth(ctx context.Context, providerID string, year, month int) ([]models.SlotView, error)
	SlotsForDate(ctx context.Context, providerID, date string) ([]models.Slot, error)

	// Booking reconciler.
	Lock(ctx context.Context, providerID, date string, start int, appointmentID string) error
	Release(ctx context.Context, providerID, date string, start int, appointmentID string) error
	AddCustomSlot(ctx context.Context, providerID, date string, start, duration int) (*models.Slot, error)
	CancelCustomSlot(ctx context.Context, providerID, date string, start int) error
	SetLeave(ctx context.Context, providerID, date string, leaveType models.LeaveType, extraBreaks []models.RecurringBreak, reason string) error
	RemoveLeave(ctx context.Context, providerID, date string) error
}

// EventEmitter hands ledger-change events to the queue. Delivery is an
// external concern; emit failures must never fail the triggering operation.
type EventEmitter interface {
	Emit(ctx context.Context, payload models.ScheduleEventPayload)
}

// DefaultScheduleService is the production implementation. Cache and Events
// are optional; a nil value disables that concern.
type DefaultScheduleService struct {
	Rules  ruleRepo.RuleRepository
	Slots  slotRepo.SlotRepository
	Cache  *redis.Client
	Events EventEmitter
}

func NewDefaultScheduleService(rules ruleRepo.RuleRepository, slots slotRepo.SlotRepository, cache *redis.Client, events EventEmitter) *DefaultScheduleService {
	return &DefaultScheduleService{Rules: rules, Slots: slots, Cache: cache, Events: events}
}

func (s *DefaultScheduleService) emit(ctx context.Context, payload models.ScheduleEventPayload) {
	if s.Events != nil {
		s.Events.Emit(ctx, payload)
	}
}
