package cancellation

import (
	"context"
	"fmt"
	"time"

	"staynest/models"
)

// In-memory repository fakes backing the service tests.

type fakeBookingRepo struct {
	bookings map[string]*models.Booking
	failMark bool
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[string]*models.Booking)}
}

func (r *fakeBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, nil
	}
	copied := *b
	return &copied, nil
}

func (r *fakeBookingRepo) MarkCancelled(ctx context.Context, id string, refund float64, actor models.CancelActor, reason string, at time.Time) (bool, error) {
	if r.failMark {
		return false, fmt.Errorf("write failed")
	}
	b, ok := r.bookings[id]
	if !ok || b.Status.IsTerminal() {
		return false, nil
	}
	b.Status = models.BookingCancelled
	b.RefundAmount = refund
	b.CancelledBy = actor
	b.CancellationReason = reason
	b.CancelledAt = &at
	b.HostCancellation = actor == models.ActorHost
	return true, nil
}

type fakeListingRepo struct {
	listings   map[string]*models.Listing
	failAppend bool
}

func newFakeListingRepo() *fakeListingRepo {
	return &fakeListingRepo{listings: make(map[string]*models.Listing)}
}

func (r *fakeListingRepo) GetByID(ctx context.Context, id string) (*models.Listing, error) {
	l, ok := r.listings[id]
	if !ok {
		return nil, nil
	}
	copied := *l
	copied.BlockedDates = append([]models.BlockedDateEntry(nil), l.BlockedDates...)
	return &copied, nil
}

func (r *fakeListingRepo) AppendBlockedDate(ctx context.Context, listingID string, entry models.BlockedDateEntry) error {
	if r.failAppend {
		return fmt.Errorf("write failed")
	}
	l, ok := r.listings[listingID]
	if !ok {
		return fmt.Errorf("listing %s not found", listingID)
	}
	entry.CreatedAt = time.Now()
	l.BlockedDates = append(l.BlockedDates, entry)
	return nil
}

type fakeHostRepo struct {
	hosts   map[string]*models.User
	failSet bool
}

func newFakeHostRepo() *fakeHostRepo {
	return &fakeHostRepo{hosts: make(map[string]*models.User)}
}

func (r *fakeHostRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	h, ok := r.hosts[id]
	if !ok {
		return nil, nil
	}
	copied := *h
	return &copied, nil
}

func (r *fakeHostRepo) SetAccountability(ctx context.Context, hostID string, strikes int, ranking float64, status models.AccountStatus) error {
	if r.failSet {
		return fmt.Errorf("write failed")
	}
	h, ok := r.hosts[hostID]
	if !ok {
		return fmt.Errorf("host %s not found", hostID)
	}
	if strikes > h.CancellationStrikes {
		h.CancellationStrikes = strikes
		h.RankingScore = ranking
		h.AccountStatus = status
	}
	return nil
}

type fakeReviewRepo struct {
	reviews    []models.Review
	failCreate bool
}

func (r *fakeReviewRepo) Create(ctx context.Context, review models.Review) (string, error) {
	if r.failCreate {
		return "", fmt.Errorf("write failed")
	}
	if review.ID == "" {
		review.ID = fmt.Sprintf("review-%d", len(r.reviews)+1)
	}
	r.reviews = append(r.reviews, review)
	return review.ID, nil
}

func (r *fakeReviewRepo) GetSystemReviewByBookingID(ctx context.Context, bookingID string) (*models.Review, error) {
	for i := range r.reviews {
		if r.reviews[i].BookingID == bookingID && r.reviews[i].IsSystemGenerated {
			copied := r.reviews[i]
			return &copied, nil
		}
	}
	return nil, nil
}

type fakeSagaRepo struct {
	sagas    map[string]*models.CancellationSaga
	failStep models.CancellationStep
}

func newFakeSagaRepo() *fakeSagaRepo {
	return &fakeSagaRepo{sagas: make(map[string]*models.CancellationSaga)}
}

func (r *fakeSagaRepo) Get(ctx context.Context, bookingID string) (*models.CancellationSaga, error) {
	s, ok := r.sagas[bookingID]
	if !ok {
		return nil, nil
	}
	copied := *s
	copied.Completed = append([]models.CancellationStep(nil), s.Completed...)
	return &copied, nil
}

func (r *fakeSagaRepo) CreateIfAbsent(ctx context.Context, saga models.CancellationSaga) error {
	if _, ok := r.sagas[saga.BookingID]; ok {
		return nil
	}
	now := time.Now()
	saga.CreatedAt = now
	saga.UpdatedAt = now
	r.sagas[saga.BookingID] = &saga
	return nil
}

func (r *fakeSagaRepo) ReplaceIntent(ctx context.Context, saga models.CancellationSaga) (bool, error) {
	s, ok := r.sagas[saga.BookingID]
	if !ok {
		return false, fmt.Errorf("saga for booking %s not found", saga.BookingID)
	}
	if s.Done(models.StepBookingCancelled) {
		return false, nil
	}
	s.Actor = saga.Actor
	s.HostInitiated = saga.HostInitiated
	s.Reason = saga.Reason
	s.ProofRef = saga.ProofRef
	s.Refund = saga.Refund
	s.DateRange = saga.DateRange
	s.DaysBeforeCheckIn = saga.DaysBeforeCheckIn
	s.UpdatedAt = time.Now()
	return true, nil
}

func (r *fakeSagaRepo) MarkStep(ctx context.Context, bookingID string, step models.CancellationStep) error {
	if r.failStep == step {
		return fmt.Errorf("write failed")
	}
	s, ok := r.sagas[bookingID]
	if !ok {
		return fmt.Errorf("saga for booking %s not found", bookingID)
	}
	if !s.Done(step) {
		s.Completed = append(s.Completed, step)
	}
	s.UpdatedAt = time.Now()
	return nil
}

func (r *fakeSagaRepo) Finish(ctx context.Context, bookingID string, at time.Time) error {
	s, ok := r.sagas[bookingID]
	if !ok {
		return fmt.Errorf("saga for booking %s not found", bookingID)
	}
	s.FinishedAt = &at
	s.UpdatedAt = time.Now()
	return nil
}

func (r *fakeSagaRepo) ListUnfinished(ctx context.Context, idleSince time.Time) ([]models.CancellationSaga, error) {
	var out []models.CancellationSaga
	for _, s := range r.sagas {
		if s.FinishedAt == nil && s.UpdatedAt.Before(idleSince) {
			out = append(out, *s)
		}
	}
	return out, nil
}

type fakeBlockCache struct {
	entries map[string][]models.BlockedDateEntry
	hits    int
	misses  int
}

func newFakeBlockCache() *fakeBlockCache {
	return &fakeBlockCache{entries: make(map[string][]models.BlockedDateEntry)}
}

func (c *fakeBlockCache) GetBlocks(ctx context.Context, listingID string) ([]models.BlockedDateEntry, bool) {
	entries, ok := c.entries[listingID]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return entries, ok
}

func (c *fakeBlockCache) SetBlocks(ctx context.Context, listingID string, entries []models.BlockedDateEntry) {
	if entries == nil {
		entries = []models.BlockedDateEntry{}
	}
	c.entries[listingID] = entries
}

func (c *fakeBlockCache) Invalidate(ctx context.Context, listingID string) {
	delete(c.entries, listingID)
}

type fakeTaskQueue struct {
	notices    []models.CancellationNotice
	resumes    []string
	failNotify bool
}

func (q *fakeTaskQueue) EnqueueNotify(ctx context.Context, notice models.CancellationNotice) error {
	if q.failNotify {
		return fmt.Errorf("queue unavailable")
	}
	q.notices = append(q.notices, notice)
	return nil
}

func (q *fakeTaskQueue) EnqueueResume(ctx context.Context, bookingID string, delay time.Duration) error {
	q.resumes = append(q.resumes, bookingID)
	return nil
}
