package main

import (
	"encoding/json"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"library-api/internal/shared"
)

// asynqScheduler wraps asynq.Scheduler with registration and shutdown
type asynqScheduler struct {
	*asynq.Scheduler
}

// setupScheduler registers the periodic jobs and starts the scheduler
func setupScheduler(cfg *Config) *asynqScheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword},
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	if err := registerCleanupTempUploadsJob(scheduler, cfg.CleanupCron); err != nil {
		log.Fatalf("[Scheduler] Failed to register: %v", err)
	}

	go func() {
		log.Println("[Scheduler] Starting...")
		if err := scheduler.Run(); err != nil {
			log.Fatalf("[Scheduler] Failed: %v", err)
		}
	}()

	return &asynqScheduler{Scheduler: scheduler}
}

// registerCleanupTempUploadsJob schedules the stale temp upload sweep,
// daily at 3 AM UTC unless overridden.
func registerCleanupTempUploadsJob(scheduler *asynq.Scheduler, cron string) error {
	payload, err := json.Marshal(shared.CleanupTempUploadsPayload{})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeCleanupTempUploads, payload)

	_, err = scheduler.Register(
		cron,
		task,
		asynq.Queue(shared.QueueLow),
		asynq.MaxRetry(1),
		asynq.Timeout(5*time.Minute),
	)
	return err
}

// Shutdown stops the scheduler
func (s *asynqScheduler) Shutdown() {
	log.Println("[Scheduler] Shutting down...")
	s.Scheduler.Shutdown()
	log.Println("[Scheduler] Stopped")
}
