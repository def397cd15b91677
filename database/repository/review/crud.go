package reviewRepo

import (
	"context"
	"errors"
	"time"

	"staynest/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Create inserts a review and returns its ID.
func (r *mongoReviewRepo) Create(ctx context.Context, review models.Review) (string, error) {
	if review.ID == "" {
		review.ID = uuid.New().String()
	}
	if review.SubmittedAt.IsZero() {
		review.SubmittedAt = time.Now()
	}
	if _, err := r.coll.InsertOne(ctx, review); err != nil {
		return "", err
	}
	return review.ID, nil
}

// GetSystemReviewByBookingID fetches the system-generated review for a
// booking, if one was already created.
func (r *mongoReviewRepo) GetSystemReviewByBookingID(ctx context.Context, bookingID string) (*models.Review, error) {
	var review models.Review
	err := r.coll.FindOne(ctx, bson.M{
		"booking_id":          bookingID,
		"is_system_generated": true,
	}).Decode(&review)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}
