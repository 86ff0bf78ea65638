// Package pricing implements the option pricing core: Black-Scholes
// prices and Greeks, implied-volatility inversion, delta-targeted
// strike solving, and lognormal probability-of-profit estimates.
//
// Nothing in this package returns an error for numerical trouble.
// Degenerate inputs produce defined safe defaults (zero price, zero
// Greeks, neutral probability) and the iterative solvers report
// non-convergence through explicit result flags, so callers can tell
// an approximate answer from an exact one.
package pricing

import (
	"math"

	"spx-trader/internal/models"
)

// MinTimeToExpiry is the floor applied to time-to-expiry, one calendar
// day in years. Callers floor before pricing; the formulas themselves
// treat non-positive time as degenerate.
const MinTimeToExpiry = 1.0 / 365.25

// DefaultRiskFreeRate is used when no rate source is available.
const DefaultRiskFreeRate = 0.05

// Price returns the Black-Scholes price of a European option.
// Degenerate inputs (non-positive spot, strike, time or vol) return 0.
func Price(spot, strike, timeToExpiry, vol float64, right models.OptionRight, riskFreeRate float64) float64 {
	if spot <= 0 || strike <= 0 || timeToExpiry <= 0 || vol <= 0 {
		return 0
	}

	d1, d2 := dValues(spot, strike, timeToExpiry, vol, riskFreeRate)
	discount := math.Exp(-riskFreeRate * timeToExpiry)

	if right == models.RightCall {
		return spot*normCDF(d1) - strike*discount*normCDF(d2)
	}
	return strike*discount*normCDF(-d2) - spot*normCDF(-d1)
}

// Greeks returns the analytic Greeks of a European option. Theta is
// per calendar day; vega and rho are per full percentage point of vol
// and rate. Degenerate inputs return all-zero Greeks, a degraded but
// non-fatal result callers must tolerate.
func Greeks(spot, strike, timeToExpiry, vol float64, right models.OptionRight, riskFreeRate float64) models.OptionGreeks {
	if spot <= 0 || strike <= 0 || timeToExpiry <= 0 || vol <= 0 {
		return models.OptionGreeks{}
	}

	d1, d2 := dValues(spot, strike, timeToExpiry, vol, riskFreeRate)
	sqrtT := math.Sqrt(timeToExpiry)
	discount := math.Exp(-riskFreeRate * timeToExpiry)
	pdf := normPDF(d1)

	g := models.OptionGreeks{
		Gamma: pdf / (spot * vol * sqrtT),
		Vega:  spot * pdf * sqrtT / 100,
	}

	decay := -spot * pdf * vol / (2 * sqrtT)
	if right == models.RightCall {
		g.Delta = normCDF(d1)
		g.Theta = (decay - riskFreeRate*strike*discount*normCDF(d2)) / 365
		g.Rho = strike * timeToExpiry * discount * normCDF(d2) / 100
	} else {
		g.Delta = normCDF(d1) - 1
		g.Theta = (decay + riskFreeRate*strike*discount*normCDF(-d2)) / 365
		g.Rho = -strike * timeToExpiry * discount * normCDF(-d2) / 100
	}

	if math.IsNaN(g.Delta) || math.IsInf(g.Gamma, 0) {
		return models.OptionGreeks{}
	}
	return g
}

// rawVega is the unscaled dPrice/dVol used by the Newton-Raphson
// implied-vol search.
func rawVega(spot, strike, timeToExpiry, vol, riskFreeRate float64) float64 {
	if spot <= 0 || strike <= 0 || timeToExpiry <= 0 || vol <= 0 {
		return 0
	}
	d1, _ := dValues(spot, strike, timeToExpiry, vol, riskFreeRate)
	return spot * normPDF(d1) * math.Sqrt(timeToExpiry)
}

func dValues(spot, strike, timeToExpiry, vol, riskFreeRate float64) (d1, d2 float64) {
	sqrtT := math.Sqrt(timeToExpiry)
	d1 = (math.Log(spot/strike) + (riskFreeRate+0.5*vol*vol)*timeToExpiry) / (vol * sqrtT)
	d2 = d1 - vol*sqrtT
	return d1, d2
}
