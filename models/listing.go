package models

import "time"

// CancellationPolicy names a refund tier table.
type CancellationPolicy string

const (
	PolicyFlexible CancellationPolicy = "FLEXIBLE"
	PolicyModerate CancellationPolicy = "MODERATE"
	PolicyStrict   CancellationPolicy = "STRICT"
)

// BlockedDateEntry is one blocked range on a listing calendar. Entries with
// IsPermanent set are never removed or modified; the repository only appends.
type BlockedDateEntry struct {
	ID          string    `bson:"id" json:"id"`
	Start       time.Time `bson:"start" json:"start"`
	End         time.Time `bson:"end" json:"end"`
	Reason      string    `bson:"reason" json:"reason"`
	BookingID   string    `bson:"booking_id,omitempty" json:"booking_id,omitempty"`
	IsPermanent bool      `bson:"is_permanent" json:"is_permanent"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

// Range returns the entry's interval as a DateRange.
func (e BlockedDateEntry) Range() DateRange {
	return DateRange{Start: e.Start, End: e.End}
}

// Listing represents a rentable property.
type Listing struct {
	ID                 string             `bson:"id" json:"id"`
	HostID             string             `bson:"host_id" json:"host_id"`
	Title              string             `bson:"title" json:"title"`
	CancellationPolicy CancellationPolicy `bson:"cancellation_policy" json:"cancellation_policy"`
	BlockedDates       []BlockedDateEntry `bson:"blocked_dates" json:"blocked_dates"`
	CreatedAt          time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time          `bson:"updated_at" json:"updated_at"`
}
