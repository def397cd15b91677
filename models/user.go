package models

import "time"

// AccountStatus enumerates host account states. The cancellation workflow
// only ever moves ACTIVE to SUSPENDED; reversal is an admin action elsewhere.
type AccountStatus string

const (
	AccountActive    AccountStatus = "ACTIVE"
	AccountSuspended AccountStatus = "SUSPENDED"
)

// User represents a marketplace user. CancellationStrikes is monotonically
// non-decreasing and RankingScore never rises once penalized.
type User struct {
	ID                  string        `bson:"id" json:"id"`
	Name                string        `bson:"name" json:"name"`
	Email               string        `bson:"email" json:"email"`
	FCMToken            string        `bson:"fcm_token,omitempty" json:"-"`
	CancellationStrikes int           `bson:"cancellation_strikes" json:"cancellation_strikes"`
	RankingScore        float64       `bson:"ranking_score" json:"ranking_score"`
	AccountStatus       AccountStatus `bson:"account_status" json:"account_status"`
	CreatedAt           time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt           time.Time     `bson:"updated_at" json:"updated_at"`
}
