package listingRepo

import (
	"context"

	"staynest/database"
	"staynest/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ListingRepository exposes listing reads and the append-only calendar write.
// GetByID returns (nil, nil) when absent. Blocked-date entries are never
// updated or removed through this interface.
type ListingRepository interface {
	GetByID(ctx context.Context, id string) (*models.Listing, error)
	AppendBlockedDate(ctx context.Context, listingID string, entry models.BlockedDateEntry) error
}

type mongoListingRepo struct {
	coll *mongo.Collection
}

// NewMongoListingRepo returns a ListingRepository backed by MongoDB.
func NewMongoListingRepo() ListingRepository {
	return &mongoListingRepo{
		coll: database.DB().Collection("listings"),
	}
}
