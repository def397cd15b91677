package cancellation

import (
	"context"
	"fmt"
	"time"

	reviewRepo "staynest/database/repository/review"
	sagaRepo "staynest/database/repository/saga"
	"staynest/models"
)

// autoReviewRating is the fixed rating on system-generated reviews.
const autoReviewRating = 1

// AutoReviewGenerator emits one published system review per host-initiated
// cancellation.
type AutoReviewGenerator interface {
	GenerateHostCancellationReview(ctx context.Context, hostID, listingID, bookingID string, daysBeforeCheckIn int) (*models.Review, error)
}

// DefaultAutoReviewGenerator is the production implementation.
type DefaultAutoReviewGenerator struct {
	ReviewRepo reviewRepo.ReviewRepository
	SagaRepo   sagaRepo.SagaRepository
}

func (g *DefaultAutoReviewGenerator) GenerateHostCancellationReview(ctx context.Context, hostID, listingID, bookingID string, daysBeforeCheckIn int) (*models.Review, error) {
	existing, err := g.ReviewRepo.GetSystemReviewByBookingID(ctx, bookingID)
	if err != nil {
		return nil, NewPersistenceError("failed to look up system review for booking %s: %v", bookingID, err)
	}
	if existing != nil {
		// Already posted; make sure the step is recorded and return it.
		if err := g.SagaRepo.MarkStep(ctx, bookingID, models.StepReviewCreated); err != nil {
			return nil, NewPersistenceError("failed to record review step for booking %s: %v", bookingID, err)
		}
		return existing, nil
	}

	saga, err := g.SagaRepo.Get(ctx, bookingID)
	if err != nil {
		return nil, NewPersistenceError("failed to load cancellation log for booking %s: %v", bookingID, err)
	}
	if saga != nil && saga.Done(models.StepReviewCreated) {
		return nil, nil
	}

	review := models.Review{
		AuthorID:      models.SystemAuthorID,
		TargetID:      hostID,
		BookingID:     bookingID,
		ListingID:     listingID,
		OverallRating: autoReviewRating,
		PublicComment: fmt.Sprintf(
			"The host cancelled this reservation %d day(s) before check-in. This is an automated posting.",
			clampDays(daysBeforeCheckIn),
		),
		IsSystemGenerated: true,
		IsPublished:       true,
		SubmittedAt:       time.Now(),
	}
	id, err := g.ReviewRepo.Create(ctx, review)
	if err != nil {
		return nil, NewPersistenceError("failed to create system review for booking %s: %v", bookingID, err)
	}
	review.ID = id

	if err := g.SagaRepo.MarkStep(ctx, bookingID, models.StepReviewCreated); err != nil {
		return nil, NewPersistenceError("failed to record review step for booking %s: %v", bookingID, err)
	}
	return &review, nil
}
