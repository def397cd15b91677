package models

import "time"

// RefundBreakdown is the exact monetary outcome of a cancellation.
// RefundAmount + Deduction always equals the booking's total price.
type RefundBreakdown struct {
	RefundAmount float64 `bson:"refund_amount" json:"refund_amount"`
	Deduction    float64 `bson:"deduction" json:"deduction"`
	Percentage   float64 `bson:"percentage" json:"percentage"`
	Message      string  `bson:"message" json:"message"`
}

// CancellationRequest is the orchestrator entry-point payload.
type CancellationRequest struct {
	BookingID string      `json:"booking_id"`
	Actor     CancelActor `json:"actor"`
	ActorID   string      `json:"actor_id"`
	Reason    string      `json:"reason"`
	ProofRef  string      `json:"proof_ref,omitempty"`
}

// CancellationStep names one side effect in the cancellation saga.
type CancellationStep string

const (
	StepBookingCancelled   CancellationStep = "booking_cancelled"
	StepStrikeApplied      CancellationStep = "strike_applied"
	StepCalendarBlocked    CancellationStep = "calendar_blocked"
	StepReviewCreated      CancellationStep = "review_created"
	StepNotificationQueued CancellationStep = "notification_queued"
)

// HostPenaltySteps are the extra steps a host-initiated cancellation runs.
var HostPenaltySteps = []CancellationStep{
	StepStrikeApplied,
	StepCalendarBlocked,
	StepReviewCreated,
}

// CancellationSaga is the persisted step-completion log for one cancellation.
// It stores every input needed to deterministically re-run the remaining
// steps after a crash or partial failure, keyed by booking ID.
type CancellationSaga struct {
	BookingID         string             `bson:"booking_id" json:"booking_id"`
	ListingID         string             `bson:"listing_id" json:"listing_id"`
	HostID            string             `bson:"host_id" json:"host_id"`
	GuestID           string             `bson:"guest_id" json:"guest_id"`
	Actor             CancelActor        `bson:"actor" json:"actor"`
	HostInitiated     bool               `bson:"host_initiated" json:"host_initiated"`
	Reason            string             `bson:"reason" json:"reason"`
	ProofRef          string             `bson:"proof_ref,omitempty" json:"proof_ref,omitempty"`
	Refund            RefundBreakdown    `bson:"refund" json:"refund"`
	DateRange         DateRange          `bson:"date_range" json:"date_range"`
	DaysBeforeCheckIn int                `bson:"days_before_check_in" json:"days_before_check_in"`
	Completed         []CancellationStep `bson:"completed" json:"completed"`
	CreatedAt         time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time          `bson:"updated_at" json:"updated_at"`
	FinishedAt        *time.Time         `bson:"finished_at,omitempty" json:"finished_at,omitempty"`
}

// Done reports whether the given step has already been applied.
func (s *CancellationSaga) Done(step CancellationStep) bool {
	for _, c := range s.Completed {
		if c == step {
			return true
		}
	}
	return false
}

// Pending lists the steps this saga still has to run.
func (s *CancellationSaga) Pending() []CancellationStep {
	steps := []CancellationStep{StepBookingCancelled}
	if s.HostInitiated {
		steps = append(steps, HostPenaltySteps...)
	}
	steps = append(steps, StepNotificationQueued)

	var pending []CancellationStep
	for _, step := range steps {
		if !s.Done(step) {
			pending = append(pending, step)
		}
	}
	return pending
}

// StrikeResult reports the host's accountability state after a strike.
type StrikeResult struct {
	HostID        string        `json:"host_id"`
	StrikeCount   int           `json:"strike_count"`
	RankingScore  float64       `json:"ranking_score"`
	AccountStatus AccountStatus `json:"account_status"`
	Counted       bool          `json:"counted"`
}

// CancellationResult is returned to the caller after a cancellation attempt.
// PendingSteps is non-empty when a downstream write failed after the booking
// was already terminal; those steps are retried asynchronously.
type CancellationResult struct {
	BookingID    string             `json:"booking_id"`
	Status       BookingStatus      `json:"status"`
	Refund       RefundBreakdown    `json:"refund"`
	CancelledBy  CancelActor        `json:"cancelled_by"`
	CancelledAt  time.Time          `json:"cancelled_at"`
	Strike       *StrikeResult      `json:"strike,omitempty"`
	PendingSteps []CancellationStep `json:"pending_steps,omitempty"`
}
