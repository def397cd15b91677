package cancellation

import (
	"context"
	"testing"
	"time"

	"staynest/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testNow = time.Date(2026, 9, 10, 12, 0, 0, 0, time.UTC)

type orchestratorFixture struct {
	orch     *DefaultOrchestrator
	bookings *fakeBookingRepo
	listings *fakeListingRepo
	hosts    *fakeHostRepo
	reviews  *fakeReviewRepo
	sagas    *fakeSagaRepo
	queue    *fakeTaskQueue
}

func newFixture() *orchestratorFixture {
	f := &orchestratorFixture{
		bookings: newFakeBookingRepo(),
		listings: newFakeListingRepo(),
		hosts:    newFakeHostRepo(),
		reviews:  &fakeReviewRepo{},
		sagas:    newFakeSagaRepo(),
		queue:    &fakeTaskQueue{},
	}
	f.orch = &DefaultOrchestrator{
		BookingRepo: f.bookings,
		ListingRepo: f.listings,
		SagaRepo:    f.sagas,
		Ledger:      &DefaultAccountabilityLedger{HostRepo: f.hosts, SagaRepo: f.sagas},
		Calendar:    &DefaultCalendarBlockingStore{ListingRepo: f.listings, SagaRepo: f.sagas},
		Reviews:     &DefaultAutoReviewGenerator{ReviewRepo: f.reviews, SagaRepo: f.sagas},
		Queue:       f.queue,
		Logger:      zap.NewNop(),
		Clock:       func() time.Time { return testNow },
	}
	f.hosts.hosts["host-1"] = &models.User{
		ID:            "host-1",
		Name:          "Dana",
		RankingScore:  1.0,
		AccountStatus: models.AccountActive,
	}
	return f
}

func (f *orchestratorFixture) addBooking(id string, policy models.CancellationPolicy, totalPrice float64, startInDays, nights int) *models.Booking {
	listingID := "listing-" + id
	f.listings.listings[listingID] = &models.Listing{
		ID:                 listingID,
		HostID:             "host-1",
		CancellationPolicy: policy,
	}
	checkIn := testNow.AddDate(0, 0, startInDays)
	b := &models.Booking{
		ID:         id,
		ListingID:  listingID,
		HostID:     "host-1",
		GuestID:    "guest-1",
		DateRange:  models.DateRange{Start: checkIn, End: checkIn.AddDate(0, 0, nights)},
		TotalPrice: totalPrice,
		Status:     models.BookingApproved,
	}
	f.bookings.bookings[id] = b
	return b
}

func TestGuestCancellationUsesListingPolicy(t *testing.T) {
	f := newFixture()
	f.addBooking("b-1", models.PolicyModerate, 2000, 3, 5)

	res, err := f.orch.Cancel(context.Background(), models.CancellationRequest{
		BookingID: "b-1",
		Actor:     models.ActorGuest,
		ActorID:   "guest-1",
		Reason:    "change of plans",
	})
	require.NoError(t, err)

	assert.Equal(t, 1000.0, res.Refund.RefundAmount)
	assert.Equal(t, 1000.0, res.Refund.Deduction)
	assert.Equal(t, 50.0, res.Refund.Percentage)
	assert.Empty(t, res.PendingSteps)
	assert.Nil(t, res.Strike)

	booking := f.bookings.bookings["b-1"]
	assert.Equal(t, models.BookingCancelled, booking.Status)
	assert.Equal(t, 1000.0, booking.RefundAmount)
	assert.Equal(t, models.ActorGuest, booking.CancelledBy)
	assert.NotNil(t, booking.CancelledAt)
	assert.False(t, booking.HostCancellation)

	// No host penalties on a guest cancellation.
	assert.Equal(t, 0, f.hosts.hosts["host-1"].CancellationStrikes)
	assert.Empty(t, f.listings.listings["listing-b-1"].BlockedDates)
	assert.Empty(t, f.reviews.reviews)

	require.Len(t, f.queue.notices, 1)
	assert.Equal(t, "guest-1", f.queue.notices[0].GuestID)
	require.NotNil(t, f.sagas.sagas["b-1"].FinishedAt)
}

func TestHostCancellationAppliesPenalties(t *testing.T) {
	f := newFixture()
	b := f.addBooking("b-1", models.PolicyStrict, 1200, 2, 3)

	res, err := f.orch.Cancel(context.Background(), models.CancellationRequest{
		BookingID: "b-1",
		Actor:     models.ActorHost,
		ActorID:   "host-1",
		Reason:    "double booked",
	})
	require.NoError(t, err)

	// Guest is fully refunded regardless of the STRICT policy.
	assert.Equal(t, 1200.0, res.Refund.RefundAmount)
	assert.Equal(t, 0.0, res.Refund.Deduction)
	require.NotNil(t, res.Strike)
	assert.Equal(t, 1, res.Strike.StrikeCount)
	assert.Equal(t, models.AccountActive, res.Strike.AccountStatus)

	booking := f.bookings.bookings["b-1"]
	assert.Equal(t, models.BookingCancelled, booking.Status)
	assert.True(t, booking.HostCancellation)

	entries := f.listings.listings["listing-b-1"].BlockedDates
	require.Len(t, entries, 1)
	assert.True(t, entries[0].IsPermanent)
	assert.Equal(t, HostCancellationBlockReason, entries[0].Reason)
	assert.Equal(t, b.DateRange.Start, entries[0].Start)
	assert.Equal(t, b.DateRange.End, entries[0].End)

	require.Len(t, f.reviews.reviews, 1)
	review := f.reviews.reviews[0]
	assert.Equal(t, 1, review.OverallRating)
	assert.Equal(t, models.SystemAuthorID, review.AuthorID)
	assert.True(t, review.IsPublished)
	assert.Contains(t, review.PublicComment, "2 day(s) before check-in")

	require.Len(t, f.queue.notices, 1)
	require.NotNil(t, f.sagas.sagas["b-1"].FinishedAt)
}

func TestAdminCancellationFullyRefundsWithoutPenalties(t *testing.T) {
	f := newFixture()
	f.addBooking("b-1", models.PolicyStrict, 900, 1, 2)

	res, err := f.orch.Cancel(context.Background(), models.CancellationRequest{
		BookingID: "b-1",
		Actor:     models.ActorAdmin,
		ActorID:   "admin-1",
		Reason:    "support escalation",
	})
	require.NoError(t, err)

	assert.Equal(t, 900.0, res.Refund.RefundAmount)
	assert.Nil(t, res.Strike)
	assert.Equal(t, 0, f.hosts.hosts["host-1"].CancellationStrikes)
	assert.Empty(t, f.listings.listings["listing-b-1"].BlockedDates)
	assert.Empty(t, f.reviews.reviews)
	assert.Len(t, f.queue.notices, 1)
}

func TestCancelAlreadyCancelledBooking(t *testing.T) {
	f := newFixture()
	b := f.addBooking("b-1", models.PolicyFlexible, 500, 4, 2)
	b.Status = models.BookingCancelled

	_, err := f.orch.Cancel(context.Background(), models.CancellationRequest{
		BookingID: "b-1",
		Actor:     models.ActorGuest,
		Reason:    "changed my mind",
	})
	require.Error(t, err)
	assert.True(t, IsAlreadyCancelled(err))

	// Zero side effects for the loser.
	assert.Empty(t, f.sagas.sagas)
	assert.Empty(t, f.queue.notices)
	assert.Empty(t, f.reviews.reviews)
}

func TestCancelUnknownBooking(t *testing.T) {
	f := newFixture()

	_, err := f.orch.Cancel(context.Background(), models.CancellationRequest{
		BookingID: "ghost",
		Actor:     models.ActorGuest,
		Reason:    "whatever",
	})
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestCancelValidation(t *testing.T) {
	f := newFixture()
	f.addBooking("b-1", models.PolicyFlexible, 500, 4, 2)

	_, err := f.orch.Cancel(context.Background(), models.CancellationRequest{
		BookingID: "b-1",
		Actor:     models.ActorGuest,
		Reason:    "  ",
	})
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	_, err = f.orch.Cancel(context.Background(), models.CancellationRequest{
		BookingID: "b-1",
		Actor:     models.ActorGuest,
		Reason:    "emergency",
	})
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	// With proof attached the same reason passes.
	res, err := f.orch.Cancel(context.Background(), models.CancellationRequest{
		BookingID: "b-1",
		Actor:     models.ActorGuest,
		Reason:    "emergency",
		ProofRef:  "https://cdn.example.com/proof.pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, res.Status)
}

func TestPartialFailureResumesRemainingStepsOnly(t *testing.T) {
	f := newFixture()
	f.addBooking("b-1", models.PolicyModerate, 1200, 2, 3)
	f.listings.failAppend = true

	res, err := f.orch.Cancel(context.Background(), models.CancellationRequest{
		BookingID: "b-1",
		Actor:     models.ActorHost,
		ActorID:   "host-1",
		Reason:    "double booked",
	})
	require.NoError(t, err)

	// Terminal write landed, refund recorded, strike applied.
	assert.Equal(t, models.BookingCancelled, f.bookings.bookings["b-1"].Status)
	assert.Equal(t, 1, f.hosts.hosts["host-1"].CancellationStrikes)
	require.NotNil(t, res.Strike)

	assert.Contains(t, res.PendingSteps, models.StepCalendarBlocked)
	assert.Contains(t, res.PendingSteps, models.StepReviewCreated)
	assert.Contains(t, res.PendingSteps, models.StepNotificationQueued)
	assert.NotContains(t, res.PendingSteps, models.StepStrikeApplied)
	require.Equal(t, []string{"b-1"}, f.queue.resumes)
	assert.Empty(t, f.queue.notices)
	assert.Nil(t, f.sagas.sagas["b-1"].FinishedAt)

	// Retry with the failure cleared completes only the remaining steps.
	f.listings.failAppend = false
	resumed, err := f.orch.Resume(context.Background(), "b-1")
	require.NoError(t, err)
	assert.Empty(t, resumed.PendingSteps)

	assert.Equal(t, 1, f.hosts.hosts["host-1"].CancellationStrikes)
	assert.Len(t, f.listings.listings["listing-b-1"].BlockedDates, 1)
	assert.Len(t, f.reviews.reviews, 1)
	assert.Len(t, f.queue.notices, 1)
	require.NotNil(t, f.sagas.sagas["b-1"].FinishedAt)
}

func TestNotificationFailureIsNotFatal(t *testing.T) {
	f := newFixture()
	f.addBooking("b-1", models.PolicyFlexible, 500, 4, 2)
	f.queue.failNotify = true

	res, err := f.orch.Cancel(context.Background(), models.CancellationRequest{
		BookingID: "b-1",
		Actor:     models.ActorGuest,
		Reason:    "change of plans",
	})
	require.NoError(t, err)

	assert.Equal(t, models.BookingCancelled, f.bookings.bookings["b-1"].Status)
	assert.Equal(t, []models.CancellationStep{models.StepNotificationQueued}, res.PendingSteps)
	assert.Equal(t, []string{"b-1"}, f.queue.resumes)
}

func TestThreeHostCancellationsSuspendAccount(t *testing.T) {
	f := newFixture()
	for i, id := range []string{"b-1", "b-2", "b-3"} {
		f.addBooking(id, models.PolicyFlexible, 400, 3+i, 2)
		res, err := f.orch.Cancel(context.Background(), models.CancellationRequest{
			BookingID: id,
			Actor:     models.ActorHost,
			ActorID:   "host-1",
			Reason:    "maintenance issue",
		})
		require.NoError(t, err)
		require.NotNil(t, res.Strike)
		assert.Equal(t, i+1, res.Strike.StrikeCount)
	}

	host := f.hosts.hosts["host-1"]
	assert.Equal(t, 3, host.CancellationStrikes)
	assert.Equal(t, models.AccountSuspended, host.AccountStatus)
	assert.Equal(t, 0.5, host.RankingScore)
	assert.Len(t, f.reviews.reviews, 3)
}

func TestCancelSupersedesCrashedAttemptIntent(t *testing.T) {
	f := newFixture()
	b := f.addBooking("b-1", models.PolicyModerate, 1200, 2, 3)

	// A guest attempt recorded its intent and died before the terminal write.
	require.NoError(t, f.sagas.CreateIfAbsent(context.Background(), models.CancellationSaga{
		BookingID:         b.ID,
		ListingID:         b.ListingID,
		HostID:            b.HostID,
		GuestID:           b.GuestID,
		Actor:             models.ActorGuest,
		Reason:            "change of plans",
		Refund:            models.RefundBreakdown{RefundAmount: 600, Deduction: 600, Percentage: 50},
		DateRange:         b.DateRange,
		DaysBeforeCheckIn: 2,
	}))

	// The host cancels next, with a transient calendar failure on top.
	f.listings.failAppend = true
	res, err := f.orch.Cancel(context.Background(), models.CancellationRequest{
		BookingID: "b-1",
		Actor:     models.ActorHost,
		ActorID:   "host-1",
		Reason:    "double booked",
	})
	require.NoError(t, err)

	// The stored intent now matches what was applied to the booking.
	assert.Equal(t, 1200.0, res.Refund.RefundAmount)
	assert.Equal(t, models.ActorHost, res.CancelledBy)
	assert.Equal(t, 1200.0, f.bookings.bookings["b-1"].RefundAmount)
	assert.Equal(t, models.ActorHost, f.bookings.bookings["b-1"].CancelledBy)
	saga := f.sagas.sagas["b-1"]
	assert.Equal(t, models.ActorHost, saga.Actor)
	assert.True(t, saga.HostInitiated)
	assert.Equal(t, 1200.0, saga.Refund.RefundAmount)

	// Resume runs the host penalties off the superseded record.
	f.listings.failAppend = false
	resumed, err := f.orch.Resume(context.Background(), "b-1")
	require.NoError(t, err)
	assert.Empty(t, resumed.PendingSteps)

	assert.Equal(t, 1, f.hosts.hosts["host-1"].CancellationStrikes)
	assert.Len(t, f.listings.listings["listing-b-1"].BlockedDates, 1)
	assert.Len(t, f.reviews.reviews, 1)
	require.Len(t, f.queue.notices, 1)
	assert.Equal(t, 1200.0, f.queue.notices[0].RefundAmount)
	require.NotNil(t, f.sagas.sagas["b-1"].FinishedAt)
}

func TestCancelAdoptsMatchingRecordedProgress(t *testing.T) {
	f := newFixture()
	b := f.addBooking("b-1", models.PolicyStrict, 1200, 2, 3)

	// A prior host attempt got as far as the strike before dying.
	require.NoError(t, f.sagas.CreateIfAbsent(context.Background(), models.CancellationSaga{
		BookingID:         b.ID,
		ListingID:         b.ListingID,
		HostID:            b.HostID,
		GuestID:           b.GuestID,
		Actor:             models.ActorHost,
		HostInitiated:     true,
		Reason:            "double booked",
		Refund:            FullRefund(1200),
		DateRange:         b.DateRange,
		DaysBeforeCheckIn: 2,
	}))
	f.hosts.hosts["host-1"].CancellationStrikes = 1
	require.NoError(t, f.sagas.MarkStep(context.Background(), "b-1", models.StepStrikeApplied))

	res, err := f.orch.Cancel(context.Background(), models.CancellationRequest{
		BookingID: "b-1",
		Actor:     models.ActorHost,
		ActorID:   "host-1",
		Reason:    "double booked",
	})
	require.NoError(t, err)
	assert.Empty(t, res.PendingSteps)

	// The recorded strike is not applied a second time.
	assert.Equal(t, 1, f.hosts.hosts["host-1"].CancellationStrikes)
	assert.Len(t, f.listings.listings["listing-b-1"].BlockedDates, 1)
	assert.Len(t, f.reviews.reviews, 1)
	require.NotNil(t, f.sagas.sagas["b-1"].FinishedAt)
}

func TestResumeFinishedSagaIsNoop(t *testing.T) {
	f := newFixture()
	f.addBooking("b-1", models.PolicyFlexible, 500, 4, 2)

	_, err := f.orch.Cancel(context.Background(), models.CancellationRequest{
		BookingID: "b-1",
		Actor:     models.ActorHost,
		ActorID:   "host-1",
		Reason:    "double booked",
	})
	require.NoError(t, err)
	require.Len(t, f.queue.notices, 1)

	res, err := f.orch.Resume(context.Background(), "b-1")
	require.NoError(t, err)
	assert.Empty(t, res.PendingSteps)

	// Nothing ran twice.
	assert.Equal(t, 1, f.hosts.hosts["host-1"].CancellationStrikes)
	assert.Len(t, f.listings.listings["listing-b-1"].BlockedDates, 1)
	assert.Len(t, f.reviews.reviews, 1)
	assert.Len(t, f.queue.notices, 1)
}

func TestResumeWithoutSaga(t *testing.T) {
	f := newFixture()

	_, err := f.orch.Resume(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}
