package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"carebook/config"
	"carebook/models"
	"carebook/services/tasks"
)

// EventDispatcher hands a drained schedule event to the outside world
// (push/notification delivery lives in a separate system).
type EventDispatcher interface {
	Dispatch(ctx context.Context, payload models.ScheduleEventPayload) error
}

// LogDispatcher is the default stand-in dispatcher.
type LogDispatcher struct{}

func (LogDispatcher) Dispatch(_ context.Context, p models.ScheduleEventPayload) error {
	log.Printf("[ScheduleEvents] %s provider=%s date=%s start=%d appointment=%s",
		p.Kind, p.ProviderID, p.Date, p.Start, p.AppointmentID)
	return nil
}

// InitScheduleEventWorker runs the async worker in background.
func InitScheduleEventWorker(dispatcher EventDispatcher) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisEventQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeScheduleEvent, handleScheduleEvent(dispatcher))

	// Start async worker with retry logic
	go func() {
		log.Println("[ScheduleEvents] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[ScheduleEvents] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[ScheduleEvents] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

func handleScheduleEvent(dispatcher EventDispatcher) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.ScheduleEventPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[ScheduleEvents] invalid payload: %v", err)
			return err
		}
		if err := dispatcher.Dispatch(ctx, p); err != nil {
			log.Printf("[ScheduleEvents] dispatch failed: %v", err)
			return err
		}
		return nil
	}
}
