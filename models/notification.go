package models

// CancellationNotice is the payload of the fire-and-forget notification task
// emitted after a booking reaches CANCELLED.
type CancellationNotice struct {
	BookingID    string      `json:"booking_id"`
	ListingID    string      `json:"listing_id"`
	GuestID      string      `json:"guest_id"`
	HostID       string      `json:"host_id"`
	Actor        CancelActor `json:"actor"`
	RefundAmount float64     `json:"refund_amount"`
	Message      string      `json:"message"`
}
