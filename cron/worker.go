package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"staynest/config"
	sagaRepo "staynest/database/repository/saga"
	"staynest/models"
	"staynest/services/cancellation"
	"staynest/services/notification"
	"staynest/services/tasks"

	"github.com/hibiken/asynq"
	cronv3 "github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// InitCancellationWorker runs the async task worker and the saga recovery
// sweep in the background.
func InitCancellationWorker(
	orch cancellation.Orchestrator,
	notifSvc notification.NotificationService,
	sagas sagaRepo.SagaRepository,
	queue cancellation.TaskQueue,
	logger *zap.Logger,
) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskQueueDB,
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
	mux.HandleFunc(tasks.TypeCancellationNotify, handleNotifyTask(notifSvc))
	mux.HandleFunc(tasks.TypeCancellationResume, handleResumeTask(orch, logger))

	// Start the async worker with retry logic.
	go func() {
		log.Println("[CancellationWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[CancellationWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[CancellationWorker] max retry attempts reached, exiting")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()

	startSagaSweep(sagas, queue, logger)
}

func handleNotifyTask(svc notification.NotificationService) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var notice models.CancellationNotice
		if err := json.Unmarshal(t.Payload(), &notice); err != nil {
			return err
		}
		return svc.DispatchCancellationNotice(ctx, notice)
	}
}

func handleResumeTask(orch cancellation.Orchestrator, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload tasks.ResumePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return err
		}
		res, err := orch.Resume(ctx, payload.BookingID)
		if err != nil {
			// A finished or superseded saga is not retryable.
			if cancellation.IsNotFound(err) || cancellation.IsAlreadyCancelled(err) {
				logger.Info("dropping cancellation resume task",
					zap.String("booking_id", payload.BookingID),
					zap.Error(err),
				)
				return nil
			}
			return err
		}
		if len(res.PendingSteps) > 0 {
			// The orchestrator already scheduled its own follow-up.
			logger.Warn("cancellation still incomplete after resume",
				zap.String("booking_id", payload.BookingID),
				zap.Any("pending", res.PendingSteps),
			)
		}
		return nil
	}
}

// startSagaSweep periodically re-enqueues sagas that stalled without their
// retry task landing, e.g. after a crash between the terminal write and the
// enqueue.
func startSagaSweep(sagas sagaRepo.SagaRepository, queue cancellation.TaskQueue, logger *zap.Logger) {
	c := cronv3.New()
	spec := config.AppConfig.SagaSweepSpec
	staleAfter := time.Duration(config.AppConfig.SagaStaleAfterMins) * time.Minute

	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		stalled, err := sagas.ListUnfinished(ctx, time.Now().Add(-staleAfter))
		if err != nil {
			logger.Error("saga sweep failed to list unfinished sagas", zap.Error(err))
			return
		}
		for _, s := range stalled {
			if err := queue.EnqueueResume(ctx, s.BookingID, 0); err != nil {
				logger.Error("saga sweep failed to enqueue resume",
					zap.String("booking_id", s.BookingID),
					zap.Error(err),
				)
			}
		}
		if len(stalled) > 0 {
			logger.Info("saga sweep re-enqueued stalled cancellations", zap.Int("count", len(stalled)))
		}
	})
	if err != nil {
		log.Fatalf("[CancellationWorker] invalid saga sweep spec %q: %v", spec, err)
	}
	c.Start()
}
