package tasks

import (
	"context"
	"encoding/json"
	"time"

	"staynest/models"

	"github.com/hibiken/asynq"
)

const (
	TypeCancellationNotify = "cancellation:notify"
	TypeCancellationResume = "cancellation:resume"
)

// ResumePayload carries the booking whose cancellation saga needs re-driving.
type ResumePayload struct {
	BookingID string `json:"booking_id"`
}

// NewCancellationNotifyTask builds the fire-and-forget notification task.
func NewCancellationNotifyTask(notice models.CancellationNotice) (*asynq.Task, error) {
	b, err := json.Marshal(notice)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeCancellationNotify, b), nil
}

// NewCancellationResumeTask builds a delayed retry of an incomplete saga.
func NewCancellationResumeTask(bookingID string, delay time.Duration) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(ResumePayload{BookingID: bookingID})
	if err != nil {
		return nil, nil, err
	}
	return asynq.NewTask(TypeCancellationResume, b), []asynq.Option{asynq.ProcessIn(delay)}, nil
}

// AsynqTaskQueue implements cancellation.TaskQueue on an asynq client.
type AsynqTaskQueue struct {
	Client *asynq.Client
}

func (q *AsynqTaskQueue) EnqueueNotify(ctx context.Context, notice models.CancellationNotice) error {
	task, err := NewCancellationNotifyTask(notice)
	if err != nil {
		return err
	}
	_, err = q.Client.EnqueueContext(ctx, task)
	return err
}

func (q *AsynqTaskQueue) EnqueueResume(ctx context.Context, bookingID string, delay time.Duration) error {
	task, opts, err := NewCancellationResumeTask(bookingID, delay)
	if err != nil {
		return err
	}
	_, err = q.Client.EnqueueContext(ctx, task, opts...)
	return err
}
