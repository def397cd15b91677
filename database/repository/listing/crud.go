package listingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"staynest/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// GetByID returns a listing by its ID, or (nil, nil) when no listing exists.
func (r *mongoListingRepo) GetByID(ctx context.Context, id string) (*models.Listing, error) {
	var listing models.Listing
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&listing)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// AppendBlockedDate pushes one entry onto the listing calendar. Existing
// entries are left untouched.
func (r *mongoListingRepo) AppendBlockedDate(ctx context.Context, listingID string, entry models.BlockedDateEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	entry.CreatedAt = time.Now()

	update := bson.M{
		"$push": bson.M{"blocked_dates": entry},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": listingID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("listing %s not found", listingID)
	}
	return nil
}
