package models

import "time"

// SystemAuthorID is the author recorded on automatically generated reviews.
const SystemAuthorID = "SYSTEM"

// Review is a published review of a host. System-generated reviews record
// host misconduct and are created at most once per cancelled booking.
type Review struct {
	ID                string    `bson:"id" json:"id"`
	AuthorID          string    `bson:"author_id" json:"author_id"`
	TargetID          string    `bson:"target_id" json:"target_id"`
	BookingID         string    `bson:"booking_id" json:"booking_id"`
	ListingID         string    `bson:"listing_id" json:"listing_id"`
	OverallRating     int       `bson:"overall_rating" json:"overall_rating"`
	PublicComment     string    `bson:"public_comment" json:"public_comment"`
	IsSystemGenerated bool      `bson:"is_system_generated" json:"is_system_generated"`
	IsPublished       bool      `bson:"is_published" json:"is_published"`
	SubmittedAt       time.Time `bson:"submitted_at" json:"submitted_at"`
}
