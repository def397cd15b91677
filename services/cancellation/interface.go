package cancellation

import (
	"context"
	"time"

	bookingRepo "staynest/database/repository/booking"
	listingRepo "staynest/database/repository/listing"
	sagaRepo "staynest/database/repository/saga"
	"staynest/models"

	"go.uber.org/zap"
)

// Orchestrator is the single entry point of the cancellation workflow.
type Orchestrator interface {
	Cancel(ctx context.Context, req models.CancellationRequest) (*models.CancellationResult, error)
	// Resume re-runs only the side-effect steps a previous attempt left
	// incomplete; it never recomputes refunds or repeats applied steps.
	Resume(ctx context.Context, bookingID string) (*models.CancellationResult, error)
}

// TaskQueue decouples the orchestrator from the async transport used for
// notifications and saga retries.
type TaskQueue interface {
	EnqueueNotify(ctx context.Context, notice models.CancellationNotice) error
	EnqueueResume(ctx context.Context, bookingID string, delay time.Duration) error
}

// DefaultOrchestrator implements Orchestrator.
type DefaultOrchestrator struct {
	BookingRepo bookingRepo.BookingRepository
	ListingRepo listingRepo.ListingRepository
	SagaRepo    sagaRepo.SagaRepository
	Ledger      AccountabilityLedger
	Calendar    CalendarBlockingStore
	Reviews     AutoReviewGenerator
	Queue       TaskQueue
	Logger      *zap.Logger
	// Clock overrides time.Now in tests.
	Clock func() time.Time
}

func (o *DefaultOrchestrator) now() time.Time {
	if o.Clock != nil {
		return o.Clock()
	}
	return time.Now()
}
