package hostRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"staynest/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// GetByID returns a user by ID, or (nil, nil) when no user exists.
func (r *mongoHostRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SetAccountability writes the accountability fields. The $gte guard on the
// strike count keeps it monotone even under concurrent strikes.
func (r *mongoHostRepo) SetAccountability(ctx context.Context, hostID string, strikes int, ranking float64, status models.AccountStatus) error {
	filter := bson.M{
		"id":                   hostID,
		"cancellation_strikes": bson.M{"$lt": strikes},
	}
	update := bson.M{"$set": bson.M{
		"cancellation_strikes": strikes,
		"ranking_score":        ranking,
		"account_status":       status,
		"updated_at":           time.Now(),
	}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Either the host is gone or a concurrent strike already advanced the
		// count past ours; distinguish the two.
		count, err := r.coll.CountDocuments(ctx, bson.M{"id": hostID})
		if err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("host %s not found", hostID)
		}
	}
	return nil
}
