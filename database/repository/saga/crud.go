package sagaRepo

import (
	"context"
	"errors"
	"time"

	"staynest/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Get returns the saga for a booking, or (nil, nil) when none exists.
func (r *mongoSagaRepo) Get(ctx context.Context, bookingID string) (*models.CancellationSaga, error) {
	var saga models.CancellationSaga
	err := r.coll.FindOne(ctx, bson.M{"booking_id": bookingID}).Decode(&saga)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &saga, nil
}

// CreateIfAbsent upserts the saga with $setOnInsert so a concurrent or
// retried attempt never overwrites recorded progress.
func (r *mongoSagaRepo) CreateIfAbsent(ctx context.Context, saga models.CancellationSaga) error {
	now := time.Now()
	saga.CreatedAt = now
	saga.UpdatedAt = now
	if saga.Completed == nil {
		saga.Completed = []models.CancellationStep{}
	}
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"booking_id": saga.BookingID},
		bson.M{"$setOnInsert": saga},
		options.Update().SetUpsert(true),
	)
	return err
}

// ReplaceIntent rewrites the intent of a saga whose terminal write never
// landed. The filter on the completed log keeps it from touching a saga that
// already cancelled the booking under the old intent.
func (r *mongoSagaRepo) ReplaceIntent(ctx context.Context, saga models.CancellationSaga) (bool, error) {
	filter := bson.M{
		"booking_id": saga.BookingID,
		"completed":  bson.M{"$ne": models.StepBookingCancelled},
	}
	update := bson.M{"$set": bson.M{
		"actor":                saga.Actor,
		"host_initiated":       saga.HostInitiated,
		"reason":               saga.Reason,
		"proof_ref":            saga.ProofRef,
		"refund":               saga.Refund,
		"date_range":           saga.DateRange,
		"days_before_check_in": saga.DaysBeforeCheckIn,
		"updated_at":           time.Now(),
	}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

// MarkStep records one completed step. $addToSet keeps the log duplicate-free
// under retries.
func (r *mongoSagaRepo) MarkStep(ctx context.Context, bookingID string, step models.CancellationStep) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"booking_id": bookingID},
		bson.M{
			"$addToSet": bson.M{"completed": step},
			"$set":      bson.M{"updated_at": time.Now()},
		},
	)
	return err
}

// Finish stamps the saga as fully applied.
func (r *mongoSagaRepo) Finish(ctx context.Context, bookingID string, at time.Time) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"booking_id": bookingID},
		bson.M{"$set": bson.M{"finished_at": at, "updated_at": time.Now()}},
	)
	return err
}

// ListUnfinished returns stalled sagas for the recovery sweep.
func (r *mongoSagaRepo) ListUnfinished(ctx context.Context, idleSince time.Time) ([]models.CancellationSaga, error) {
	cursor, err := r.coll.Find(ctx, bson.M{
		"finished_at": bson.M{"$exists": false},
		"updated_at":  bson.M{"$lt": idleSince},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sagas []models.CancellationSaga
	if err := cursor.All(ctx, &sagas); err != nil {
		return nil, err
	}
	return sagas, nil
}
