package bookingRepo

import (
	"context"
	"time"

	"staynest/database"
	"staynest/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// BookingRepository exposes the booking reads and the single terminal write
// the cancellation workflow needs. GetByID returns (nil, nil) when absent.
type BookingRepository interface {
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	// MarkCancelled performs the conditional terminal transition and reports
	// whether this call won it. A false return with no error means the booking
	// was already CANCELLED or COMPLETED.
	MarkCancelled(ctx context.Context, id string, refund float64, actor models.CancelActor, reason string, at time.Time) (bool, error)
}

type mongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo returns a BookingRepository backed by MongoDB.
func NewMongoBookingRepo() BookingRepository {
	return &mongoBookingRepo{
		coll: database.DB().Collection("bookings"),
	}
}
