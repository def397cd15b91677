package cancellation

import (
	"time"

	"staynest/models"
	"staynest/utils"
)

// ComputeRefund maps a booking's dates, price and policy onto an exact refund
// breakdown plus the whole days remaining before check-in. The closure
// invariant RefundAmount + Deduction == totalPrice holds by construction:
// one side is always derived by subtraction, never computed twice.
func ComputeRefund(policyName models.CancellationPolicy, checkIn, checkOut time.Time, totalPrice float64, now time.Time) (models.RefundBreakdown, int, error) {
	nights := utils.Nights(checkIn, checkOut)
	if nights <= 0 {
		return models.RefundBreakdown{}, 0, NewInvalidBookingStateError("stay must be at least one night, got %d", nights)
	}
	if totalPrice <= 0 {
		return models.RefundBreakdown{}, 0, NewInvalidBookingStateError("total price must be positive, got %.2f", totalPrice)
	}

	policy, err := PolicyFor(policyName)
	if err != nil {
		return models.RefundBreakdown{}, 0, err
	}

	days := utils.DaysUntilCheckIn(now, checkIn)
	return policy.Resolve(days, nights, totalPrice), days, nil
}

// FullRefund is the breakdown forced on host- and admin-initiated
// cancellations, independent of the listing policy.
func FullRefund(totalPrice float64) models.RefundBreakdown {
	return models.RefundBreakdown{
		RefundAmount: totalPrice,
		Deduction:    0,
		Percentage:   100,
		Message:      "Full refund (host cancellation)",
	}
}
