package cancellation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"staynest/models"
	"staynest/utils"

	"go.uber.org/zap"
)

// resumeRetryDelay spaces out automatic retries of incomplete sagas.
const resumeRetryDelay = 2 * time.Minute

// proofRequiredReasons are cancellation reasons that must be backed by an
// uploaded proof document.
var proofRequiredReasons = map[string]bool{
	"emergency":         true,
	"medical_emergency": true,
	"bereavement":       true,
	"natural_disaster":  true,
}

// Cancel validates the request, computes the refund, performs the terminal
// booking write and then drives the remaining side effects. Everything after
// the terminal write is re-runnable: a failure there yields a partial-success
// result and an async retry, never a rolled-back refund.
func (o *DefaultOrchestrator) Cancel(ctx context.Context, req models.CancellationRequest) (*models.CancellationResult, error) {
	booking, err := o.BookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, NewPersistenceError("failed to load booking %s: %v", req.BookingID, err)
	}
	if booking == nil {
		return nil, NewNotFoundError("booking %s not found", req.BookingID)
	}
	if booking.Status.IsTerminal() {
		return nil, NewAlreadyCancelledError("booking %s is already %s", booking.ID, booking.Status)
	}

	if err := validateRequest(req); err != nil {
		return nil, err
	}

	listing, err := o.ListingRepo.GetByID(ctx, booking.ListingID)
	if err != nil {
		return nil, NewPersistenceError("failed to load listing %s: %v", booking.ListingID, err)
	}
	if listing == nil {
		return nil, NewNotFoundError("listing %s not found", booking.ListingID)
	}

	now := o.now()
	var refund models.RefundBreakdown
	var days int
	switch req.Actor {
	case models.ActorGuest:
		refund, days, err = ComputeRefund(listing.CancellationPolicy, booking.DateRange.Start, booking.DateRange.End, booking.TotalPrice, now)
		if err != nil {
			return nil, err
		}
	case models.ActorHost, models.ActorAdmin:
		// Host-initiated (or admin on the host's behalf) always fully refunds
		// the guest, independent of policy.
		refund = FullRefund(booking.TotalPrice)
		days = utils.DaysUntilCheckIn(now, booking.DateRange.Start)
	default:
		return nil, NewValidationError("unknown cancellation actor %q", req.Actor)
	}

	saga := models.CancellationSaga{
		BookingID:         booking.ID,
		ListingID:         booking.ListingID,
		HostID:            booking.HostID,
		GuestID:           booking.GuestID,
		Actor:             req.Actor,
		HostInitiated:     req.Actor == models.ActorHost,
		Reason:            req.Reason,
		ProofRef:          req.ProofRef,
		Refund:            refund,
		DateRange:         booking.DateRange,
		DaysBeforeCheckIn: days,
	}
	if err := o.SagaRepo.CreateIfAbsent(ctx, saga); err != nil {
		return nil, NewPersistenceError("failed to record cancellation intent for booking %s: %v", booking.ID, err)
	}

	// CreateIfAbsent keeps any pre-existing saga document; a crashed earlier
	// attempt may have recorded a different intent. Side effects must run off
	// the same record Resume will later read, so adopt the stored saga, first
	// replacing its intent while the terminal write has not happened yet.
	stored, err := o.SagaRepo.Get(ctx, booking.ID)
	if err != nil || stored == nil {
		return nil, NewPersistenceError("failed to load cancellation log for booking %s: %v", booking.ID, err)
	}
	if !stored.Done(models.StepBookingCancelled) && !sameIntent(stored, &saga) {
		if _, err := o.SagaRepo.ReplaceIntent(ctx, saga); err != nil {
			return nil, NewPersistenceError("failed to supersede cancellation intent for booking %s: %v", booking.ID, err)
		}
		stored, err = o.SagaRepo.Get(ctx, booking.ID)
		if err != nil || stored == nil {
			return nil, NewPersistenceError("failed to load cancellation log for booking %s: %v", booking.ID, err)
		}
	}
	saga = *stored

	won, err := o.BookingRepo.MarkCancelled(ctx, booking.ID, saga.Refund.RefundAmount, saga.Actor, saga.Reason, now)
	if err != nil {
		return nil, NewPersistenceError("failed to cancel booking %s: %v", booking.ID, err)
	}
	if !won {
		// A concurrent attempt reached the terminal write first.
		return nil, NewAlreadyCancelledError("booking %s is already cancelled", booking.ID)
	}

	result := &models.CancellationResult{
		BookingID:   booking.ID,
		Status:      models.BookingCancelled,
		Refund:      saga.Refund,
		CancelledBy: saga.Actor,
		CancelledAt: now,
	}

	if err := o.SagaRepo.MarkStep(ctx, booking.ID, models.StepBookingCancelled); err != nil {
		return o.deferRemaining(ctx, &saga, result, err)
	}
	saga.Completed = append(saga.Completed, models.StepBookingCancelled)

	strike, err := o.runSideEffects(ctx, &saga)
	result.Strike = strike
	if err != nil {
		return o.deferRemaining(ctx, &saga, result, err)
	}
	return result, nil
}

// Resume picks up a partially applied cancellation and runs only the steps
// its saga reports as incomplete.
func (o *DefaultOrchestrator) Resume(ctx context.Context, bookingID string) (*models.CancellationResult, error) {
	saga, err := o.SagaRepo.Get(ctx, bookingID)
	if err != nil {
		return nil, NewPersistenceError("failed to load cancellation log for booking %s: %v", bookingID, err)
	}
	if saga == nil {
		return nil, NewNotFoundError("no cancellation in progress for booking %s", bookingID)
	}

	result := &models.CancellationResult{
		BookingID:   bookingID,
		Status:      models.BookingCancelled,
		Refund:      saga.Refund,
		CancelledBy: saga.Actor,
	}
	if saga.FinishedAt != nil {
		result.CancelledAt = saga.UpdatedAt
		return result, nil
	}

	if !saga.Done(models.StepBookingCancelled) {
		booking, err := o.BookingRepo.GetByID(ctx, bookingID)
		if err != nil {
			return nil, NewPersistenceError("failed to load booking %s: %v", bookingID, err)
		}
		if booking == nil {
			return nil, NewNotFoundError("booking %s not found", bookingID)
		}
		if booking.Status == models.BookingCompleted {
			// The stay completed before the terminal write landed; the
			// cancellation can no longer apply.
			if err := o.SagaRepo.Finish(ctx, bookingID, o.now()); err != nil {
				return nil, NewPersistenceError("failed to close cancellation log for booking %s: %v", bookingID, err)
			}
			return nil, NewAlreadyCancelledError("booking %s completed before the cancellation could apply", bookingID)
		}
		// A false return means the terminal write already landed under this
		// saga; both outcomes leave the booking CANCELLED with the recorded
		// refund.
		if _, err := o.BookingRepo.MarkCancelled(ctx, bookingID, saga.Refund.RefundAmount, saga.Actor, saga.Reason, o.now()); err != nil {
			return nil, NewPersistenceError("failed to cancel booking %s: %v", bookingID, err)
		}
		if err := o.SagaRepo.MarkStep(ctx, bookingID, models.StepBookingCancelled); err != nil {
			return o.deferRemaining(ctx, saga, result, err)
		}
		saga.Completed = append(saga.Completed, models.StepBookingCancelled)
	}

	strike, err := o.runSideEffects(ctx, saga)
	result.Strike = strike
	if err != nil {
		return o.deferRemaining(ctx, saga, result, err)
	}
	return result, nil
}

// runSideEffects drives the saga's remaining post-terminal steps in order.
// Each sub-service is itself idempotent per booking, so a crash between any
// two calls is safe to replay.
func (o *DefaultOrchestrator) runSideEffects(ctx context.Context, saga *models.CancellationSaga) (*models.StrikeResult, error) {
	var strike *models.StrikeResult

	if saga.HostInitiated {
		if !saga.Done(models.StepStrikeApplied) {
			var err error
			strike, err = o.Ledger.ApplyHostCancellationStrike(ctx, saga.HostID, saga.BookingID)
			if err != nil {
				return nil, err
			}
			saga.Completed = append(saga.Completed, models.StepStrikeApplied)
		}
		if !saga.Done(models.StepCalendarBlocked) {
			if err := o.Calendar.AppendPermanentBlock(ctx, saga.ListingID, saga.DateRange, HostCancellationBlockReason, saga.BookingID); err != nil {
				return strike, err
			}
			saga.Completed = append(saga.Completed, models.StepCalendarBlocked)
		}
		if !saga.Done(models.StepReviewCreated) {
			if _, err := o.Reviews.GenerateHostCancellationReview(ctx, saga.HostID, saga.ListingID, saga.BookingID, saga.DaysBeforeCheckIn); err != nil {
				return strike, err
			}
			saga.Completed = append(saga.Completed, models.StepReviewCreated)
		}
	}

	if !saga.Done(models.StepNotificationQueued) {
		if err := o.Queue.EnqueueNotify(ctx, buildNotice(saga)); err != nil {
			return strike, NewPersistenceError("failed to queue cancellation notice for booking %s: %v", saga.BookingID, err)
		}
		if err := o.SagaRepo.MarkStep(ctx, saga.BookingID, models.StepNotificationQueued); err != nil {
			return strike, NewPersistenceError("failed to record notification step for booking %s: %v", saga.BookingID, err)
		}
		saga.Completed = append(saga.Completed, models.StepNotificationQueued)
	}

	if err := o.SagaRepo.Finish(ctx, saga.BookingID, o.now()); err != nil {
		return strike, NewPersistenceError("failed to close cancellation log for booking %s: %v", saga.BookingID, err)
	}
	return strike, nil
}

// deferRemaining reports partial success: the booking is already terminal,
// the remaining steps are queued for retry and the caller sees which ones.
func (o *DefaultOrchestrator) deferRemaining(ctx context.Context, saga *models.CancellationSaga, result *models.CancellationResult, cause error) (*models.CancellationResult, error) {
	o.Logger.Error("cancellation side effects incomplete, scheduling retry",
		zap.String("booking_id", saga.BookingID),
		zap.Error(cause),
	)
	if err := o.Queue.EnqueueResume(ctx, saga.BookingID, resumeRetryDelay); err != nil {
		o.Logger.Error("failed to schedule cancellation retry",
			zap.String("booking_id", saga.BookingID),
			zap.Error(err),
		)
	}
	result.PendingSteps = saga.Pending()
	return result, nil
}

// sameIntent reports whether two sagas would apply the same cancellation.
func sameIntent(a, b *models.CancellationSaga) bool {
	return a.Actor == b.Actor &&
		a.Refund == b.Refund &&
		a.Reason == b.Reason &&
		a.ProofRef == b.ProofRef
}

func validateRequest(req models.CancellationRequest) error {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return NewValidationError("cancellation reason is required")
	}
	if proofRequiredReasons[strings.ToLower(reason)] && req.ProofRef == "" {
		return NewValidationError("reason %q requires supporting evidence", reason)
	}
	return nil
}

func buildNotice(saga *models.CancellationSaga) models.CancellationNotice {
	msg := fmt.Sprintf("Booking %s was cancelled. A refund of %.2f has been issued.", saga.BookingID, saga.Refund.RefundAmount)
	if saga.HostInitiated {
		msg = fmt.Sprintf("The host cancelled booking %s. You have been fully refunded %.2f.", saga.BookingID, saga.Refund.RefundAmount)
	}
	return models.CancellationNotice{
		BookingID:    saga.BookingID,
		ListingID:    saga.ListingID,
		GuestID:      saga.GuestID,
		HostID:       saga.HostID,
		Actor:        saga.Actor,
		RefundAmount: saga.Refund.RefundAmount,
		Message:      msg,
	}
}
