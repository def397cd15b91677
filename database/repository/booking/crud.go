package bookingRepo

import (
	"context"
	"errors"
	"time"

	"staynest/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// GetByID returns a booking by its ID, or (nil, nil) when no booking exists.
func (r *mongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&booking)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// MarkCancelled sets the booking terminal fields iff the booking is not
// already terminal. The filter on status is the serialization point for
// racing cancellation attempts: exactly one caller observes true.
func (r *mongoBookingRepo) MarkCancelled(ctx context.Context, id string, refund float64, actor models.CancelActor, reason string, at time.Time) (bool, error) {
	filter := bson.M{
		"id":     id,
		"status": bson.M{"$nin": []models.BookingStatus{models.BookingCancelled, models.BookingCompleted}},
	}
	update := bson.M{"$set": bson.M{
		"status":              models.BookingCancelled,
		"refund_amount":       refund,
		"cancelled_by":        actor,
		"cancelled_at":        at,
		"cancellation_reason": reason,
		"host_cancellation":   actor == models.ActorHost,
		"updated_at":          time.Now(),
	}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}
