package pricing

import "time"

const hoursPerYear = 365.25 * 24

// YearsToExpiry returns the time between now and expiry in years,
// floored to one calendar day so that same-day (0DTE) contracts still
// carry a usable time value.
func YearsToExpiry(now, expiry time.Time) float64 {
	years := expiry.Sub(now).Hours() / hoursPerYear
	if years < MinTimeToExpiry {
		return MinTimeToExpiry
	}
	return years
}
