package pricing

import (
	"math"

	"spx-trader/internal/models"
)

const (
	ivSeed      = 0.20
	ivTolerance = 1e-6
	ivMaxIter   = 100
	ivFloor     = 0.01
)

// IVResult is the outcome of an implied-volatility search. Converged
// false with a non-zero Vol means the search hit its iteration budget
// or a vanishing vega and the value is the last estimate, not a root.
type IVResult struct {
	Vol        float64
	Converged  bool
	Iterations int
}

// ImpliedVolatility inverts the Black-Scholes price for volatility
// using Newton-Raphson, seeded at 20% vol. The estimate is clamped to
// a 1% floor each step to keep volatility positive. A vanishing vega
// terminates the search early with the last estimate; invalid inputs
// return the 20% default un-converged.
func ImpliedVolatility(spot, strike, timeToExpiry, observedPrice float64, right models.OptionRight, riskFreeRate float64) IVResult {
	if spot <= 0 || strike <= 0 || timeToExpiry <= 0 || observedPrice < 0 {
		return IVResult{Vol: ivSeed}
	}

	vol := ivSeed
	for i := 0; i < ivMaxIter; i++ {
		diff := Price(spot, strike, timeToExpiry, vol, right, riskFreeRate) - observedPrice
		if math.Abs(diff) < ivTolerance {
			return IVResult{Vol: vol, Converged: true, Iterations: i}
		}

		vega := rawVega(spot, strike, timeToExpiry, vol, riskFreeRate)
		if vega == 0 {
			return IVResult{Vol: vol, Iterations: i}
		}

		vol -= diff / vega
		if vol < ivFloor {
			vol = ivFloor
		}
	}

	return IVResult{Vol: vol, Iterations: ivMaxIter}
}
