package sagaRepo

import (
	"context"
	"time"

	"staynest/database"
	"staynest/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// SagaRepository persists the per-booking cancellation step log. Get returns
// (nil, nil) when no saga exists for the booking.
type SagaRepository interface {
	Get(ctx context.Context, bookingID string) (*models.CancellationSaga, error)
	// CreateIfAbsent records the cancellation intent. When a saga already
	// exists for the booking the stored one is left untouched.
	CreateIfAbsent(ctx context.Context, saga models.CancellationSaga) error
	// ReplaceIntent overwrites the stored intent fields, preserving recorded
	// progress, but only while the terminal booking write has not happened.
	// Returns false when the stored saga already passed that point.
	ReplaceIntent(ctx context.Context, saga models.CancellationSaga) (bool, error)
	// MarkStep appends a completed step; marking the same step twice is a no-op.
	MarkStep(ctx context.Context, bookingID string, step models.CancellationStep) error
	Finish(ctx context.Context, bookingID string, at time.Time) error
	// ListUnfinished returns sagas with no finish timestamp that have not been
	// touched since the given instant.
	ListUnfinished(ctx context.Context, idleSince time.Time) ([]models.CancellationSaga, error)
}

type mongoSagaRepo struct {
	coll *mongo.Collection
}

// NewMongoSagaRepo returns a SagaRepository backed by MongoDB.
func NewMongoSagaRepo() SagaRepository {
	return &mongoSagaRepo{
		coll: database.DB().Collection("cancellation_sagas"),
	}
}
