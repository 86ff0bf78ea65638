package pricing

import (
	"math"

	"spx-trader/internal/models"
)

const (
	strikeMaxIter   = 50
	strikeTolerance = 0.01 // delta units
)

// StrikeResult is the outcome of a delta-targeted strike search.
// Approximate marks results that did not converge within the iteration
// budget (last bisection midpoint) or that fell back to the spot price
// on degenerate input; callers must sanity-check those before use.
type StrikeResult struct {
	Strike      float64
	Delta       float64 // delta actually achieved at Strike
	Converged   bool
	Approximate bool
}

// FindStrikeByDelta bisects over [0.5*spot, 1.5*spot] for the strike
// whose Black-Scholes delta is within 0.01 of targetDelta. Delta is
// strictly decreasing in strike for both rights, so a single bisection
// direction serves both. On degenerate input the spot price itself is
// returned as an approximate fallback strike.
func FindStrikeByDelta(spot, targetDelta, timeToExpiry, vol float64, right models.OptionRight, riskFreeRate float64) StrikeResult {
	if spot <= 0 || timeToExpiry <= 0 || vol <= 0 {
		return StrikeResult{Strike: spot, Approximate: true}
	}

	low := spot * 0.5
	high := spot * 1.5
	mid := spot
	var delta float64

	for i := 0; i < strikeMaxIter; i++ {
		mid = (low + high) / 2
		delta = Greeks(spot, mid, timeToExpiry, vol, right, riskFreeRate).Delta

		if math.Abs(delta-targetDelta) < strikeTolerance {
			return StrikeResult{Strike: mid, Delta: delta, Converged: true}
		}

		// Delta falls as strike rises for both rights (calls toward 0,
		// puts toward -1), so a delta above target means the strike is
		// too low.
		if delta > targetDelta {
			low = mid
		} else {
			high = mid
		}
	}

	return StrikeResult{Strike: mid, Delta: delta, Approximate: true}
}
