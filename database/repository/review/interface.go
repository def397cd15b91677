package reviewRepo

import (
	"context"

	"staynest/database"
	"staynest/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ReviewRepository stores host reviews. GetSystemReviewByBookingID returns
// (nil, nil) when no system review exists for the booking.
type ReviewRepository interface {
	Create(ctx context.Context, review models.Review) (string, error)
	GetSystemReviewByBookingID(ctx context.Context, bookingID string) (*models.Review, error)
}

type mongoReviewRepo struct {
	coll *mongo.Collection
}

// NewMongoReviewRepo returns a ReviewRepository backed by MongoDB.
func NewMongoReviewRepo() ReviewRepository {
	return &mongoReviewRepo{
		coll: database.DB().Collection("reviews"),
	}
}
