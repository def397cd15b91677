package models

import "time"

// BookingStatus enumerates the booking lifecycle states.
type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingApproved  BookingStatus = "APPROVED"
	BookingActive    BookingStatus = "ACTIVE"
	BookingCompleted BookingStatus = "COMPLETED"
	BookingCancelled BookingStatus = "CANCELLED"
)

// IsTerminal reports whether the status permits no further transitions.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingCancelled || s == BookingCompleted
}

// CancelActor identifies who initiated a cancellation.
type CancelActor string

const (
	ActorGuest CancelActor = "GUEST"
	ActorHost  CancelActor = "HOST"
	ActorAdmin CancelActor = "ADMIN"
)

// DateRange is a half-open [Start, End) stay interval.
type DateRange struct {
	Start time.Time `bson:"start" json:"start"`
	End   time.Time `bson:"end" json:"end"`
}

// Overlaps reports whether two half-open ranges share any instant.
func (r DateRange) Overlaps(other DateRange) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

// Booking represents a reservation of a listing. Once Status reaches
// CANCELLED, RefundAmount and CancelledAt are immutable.
type Booking struct {
	ID                 string        `bson:"id" json:"id"`
	ListingID          string        `bson:"listing_id" json:"listing_id"`
	HostID             string        `bson:"host_id" json:"host_id"`
	GuestID            string        `bson:"guest_id" json:"guest_id"`
	DateRange          DateRange     `bson:"date_range" json:"date_range"`
	TotalPrice         float64       `bson:"total_price" json:"total_price"`
	Status             BookingStatus `bson:"status" json:"status"`
	CancellationReason string        `bson:"cancellation_reason,omitempty" json:"cancellation_reason,omitempty"`
	RefundAmount       float64       `bson:"refund_amount,omitempty" json:"refund_amount,omitempty"`
	CancelledBy        CancelActor   `bson:"cancelled_by,omitempty" json:"cancelled_by,omitempty"`
	CancelledAt        *time.Time    `bson:"cancelled_at,omitempty" json:"cancelled_at,omitempty"`
	HostCancellation   bool          `bson:"host_cancellation" json:"host_cancellation"`
	CreatedAt          time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time     `bson:"updated_at" json:"updated_at"`
}
