package utils

import "time"

const day = 24 * time.Hour

// CeilDays returns the number of whole days between from and to, with any
// partial day rounded up. Both instants are compared in UTC so the result
// never depends on the server timezone. Negative when to precedes from.
func CeilDays(from, to time.Time) int {
	d := to.UTC().Sub(from.UTC())
	days := d / day
	if d%day > 0 {
		days++
	}
	return int(days)
}

// Nights returns the length of a stay in nights.
func Nights(checkIn, checkOut time.Time) int {
	return CeilDays(checkIn, checkOut)
}

// DaysUntilCheckIn returns how many whole days remain before check-in,
// clamped to zero once check-in has passed.
func DaysUntilCheckIn(now, checkIn time.Time) int {
	d := CeilDays(now, checkIn)
	if d < 0 {
		return 0
	}
	return d
}
