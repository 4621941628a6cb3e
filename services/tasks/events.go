package tasks

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"carebook/models"
	"carebook/utils"
)

const TypeScheduleEvent = "schedule:event"

// NewScheduleEventTask wraps a ledger-change payload for the event queue.
func NewScheduleEventTask(payload models.ScheduleEventPayload) (*asynq.Task, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeScheduleEvent, b), nil
}

// AsynqEmitter enqueues schedule events on Redis. Enqueue failures are logged
// and swallowed: event delivery is best-effort and must never fail a booking.
type AsynqEmitter struct {
	Client *asynq.Client
}

func NewAsynqEmitter(client *asynq.Client) *AsynqEmitter {
	return &AsynqEmitter{Client: client}
}

func (e *AsynqEmitter) Emit(ctx context.Context, payload models.ScheduleEventPayload) {
	logger := utils.GetLogger()
	task, err := NewScheduleEventTask(payload)
	if err != nil {
		logger.Warn("failed to build schedule event task", zap.Error(err))
		return
	}
	if _, err := e.Client.EnqueueContext(ctx, task); err != nil {
		logger.Warn("failed to enqueue schedule event",
			zap.String("kind", payload.Kind),
			zap.String("providerId", payload.ProviderID),
			zap.Error(err))
	}
}
