package cancellation

import (
	"context"

	listingRepo "staynest/database/repository/listing"
	sagaRepo "staynest/database/repository/saga"
	"staynest/models"

	"github.com/google/uuid"
)

// HostCancellationBlockReason labels the permanent block left on a listing
// calendar after a host cancels.
const HostCancellationBlockReason = "Host Cancellation Penalty"

// CalendarBlockingStore is the append-only ledger of blocked date ranges.
// The availability/search path consults IsRangeBlocked.
type CalendarBlockingStore interface {
	// AppendPermanentBlock adds one irremovable entry covering the range,
	// idempotent per booking.
	AppendPermanentBlock(ctx context.Context, listingID string, rng models.DateRange, reason, bookingID string) error
	IsRangeBlocked(ctx context.Context, listingID string, rng models.DateRange) (bool, error)
}

// DefaultCalendarBlockingStore is the production implementation. Cache is
// optional; when set, availability reads go through it and appends invalidate.
type DefaultCalendarBlockingStore struct {
	ListingRepo listingRepo.ListingRepository
	SagaRepo    sagaRepo.SagaRepository
	Cache       BlockCache
}

func (s *DefaultCalendarBlockingStore) AppendPermanentBlock(ctx context.Context, listingID string, rng models.DateRange, reason, bookingID string) error {
	saga, err := s.SagaRepo.Get(ctx, bookingID)
	if err != nil {
		return NewPersistenceError("failed to load cancellation log for booking %s: %v", bookingID, err)
	}
	if saga != nil && saga.Done(models.StepCalendarBlocked) {
		return nil
	}

	entry := models.BlockedDateEntry{
		ID:          uuid.New().String(),
		Start:       rng.Start,
		End:         rng.End,
		Reason:      reason,
		BookingID:   bookingID,
		IsPermanent: true,
	}
	if err := s.ListingRepo.AppendBlockedDate(ctx, listingID, entry); err != nil {
		return NewPersistenceError("failed to block dates on listing %s: %v", listingID, err)
	}
	if s.Cache != nil {
		s.Cache.Invalidate(ctx, listingID)
	}
	if err := s.SagaRepo.MarkStep(ctx, bookingID, models.StepCalendarBlocked); err != nil {
		return NewPersistenceError("failed to record calendar step for booking %s: %v", bookingID, err)
	}
	return nil
}

// IsRangeBlocked scans all calendar entries for a half-open overlap.
func (s *DefaultCalendarBlockingStore) IsRangeBlocked(ctx context.Context, listingID string, rng models.DateRange) (bool, error) {
	if s.Cache != nil {
		if entries, ok := s.Cache.GetBlocks(ctx, listingID); ok {
			return rangeBlocked(entries, rng), nil
		}
	}

	listing, err := s.ListingRepo.GetByID(ctx, listingID)
	if err != nil {
		return false, NewPersistenceError("failed to load listing %s: %v", listingID, err)
	}
	if listing == nil {
		return false, NewNotFoundError("listing %s not found", listingID)
	}
	if s.Cache != nil {
		s.Cache.SetBlocks(ctx, listingID, listing.BlockedDates)
	}
	return rangeBlocked(listing.BlockedDates, rng), nil
}

func rangeBlocked(entries []models.BlockedDateEntry, rng models.DateRange) bool {
	for _, entry := range entries {
		if entry.Range().Overlaps(rng) {
			return true
		}
	}
	return false
}
