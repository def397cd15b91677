package cancellation

import "staynest/models"

// Policy is the closed set of cancellation tier tables. Resolve is pure and
// total: any integer day count maps to a breakdown without panicking.
type Policy interface {
	Name() models.CancellationPolicy
	Resolve(daysUntilCheckIn, nights int, totalPrice float64) models.RefundBreakdown
}

// PolicyFor maps a stored policy name onto its implementation. Unknown names
// are rejected rather than defaulted: a refund is never guessed.
func PolicyFor(name models.CancellationPolicy) (Policy, error) {
	switch name {
	case models.PolicyFlexible:
		return flexiblePolicy{}, nil
	case models.PolicyModerate:
		return moderatePolicy{}, nil
	case models.PolicyStrict:
		return strictPolicy{}, nil
	default:
		return nil, NewValidationError("unknown cancellation policy %q", name)
	}
}

// percentageBreakdown derives the deduction by subtraction so that
// RefundAmount + Deduction equals totalPrice exactly.
func percentageBreakdown(totalPrice, percentage float64, message string) models.RefundBreakdown {
	refund := totalPrice * percentage / 100
	return models.RefundBreakdown{
		RefundAmount: refund,
		Deduction:    totalPrice - refund,
		Percentage:   percentage,
		Message:      message,
	}
}

func clampDays(days int) int {
	if days < 0 {
		return 0
	}
	return days
}

type flexiblePolicy struct{}

func (flexiblePolicy) Name() models.CancellationPolicy { return models.PolicyFlexible }

func (flexiblePolicy) Resolve(daysUntilCheckIn, nights int, totalPrice float64) models.RefundBreakdown {
	if clampDays(daysUntilCheckIn) > 1 {
		return percentageBreakdown(totalPrice, 100, "Full refund")
	}
	// Within one day of check-in the guest is charged the first night only.
	if nights < 1 {
		nights = 1
	}
	deduction := totalPrice / float64(nights)
	refund := totalPrice - deduction
	return models.RefundBreakdown{
		RefundAmount: refund,
		Deduction:    deduction,
		Percentage:   refund / totalPrice * 100,
		Message:      "Charged for 1st night only",
	}
}

type moderatePolicy struct{}

func (moderatePolicy) Name() models.CancellationPolicy { return models.PolicyModerate }

func (moderatePolicy) Resolve(daysUntilCheckIn, nights int, totalPrice float64) models.RefundBreakdown {
	if clampDays(daysUntilCheckIn) > 5 {
		return percentageBreakdown(totalPrice, 100, "Full refund")
	}
	return percentageBreakdown(totalPrice, 50, "50% refund (within 5 days of check-in)")
}

type strictPolicy struct{}

func (strictPolicy) Name() models.CancellationPolicy { return models.PolicyStrict }

func (strictPolicy) Resolve(daysUntilCheckIn, nights int, totalPrice float64) models.RefundBreakdown {
	days := clampDays(daysUntilCheckIn)
	switch {
	case days > 14:
		return percentageBreakdown(totalPrice, 100, "Full refund")
	case days >= 7:
		return percentageBreakdown(totalPrice, 50, "50% refund (7-14 days before check-in)")
	default:
		return percentageBreakdown(totalPrice, 0, "No refund (less than 7 days before check-in)")
	}
}
