package hostRepo

import (
	"context"

	"staynest/database"
	"staynest/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// HostRepository exposes host reads and the accountability write. GetByID
// returns (nil, nil) when absent.
type HostRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	// SetAccountability persists the strike count, ranking score and account
	// status computed by the accountability ledger.
	SetAccountability(ctx context.Context, hostID string, strikes int, ranking float64, status models.AccountStatus) error
}

type mongoHostRepo struct {
	coll *mongo.Collection
}

// NewMongoHostRepo returns a HostRepository backed by MongoDB.
func NewMongoHostRepo() HostRepository {
	return &mongoHostRepo{
		coll: database.DB().Collection("users"),
	}
}
