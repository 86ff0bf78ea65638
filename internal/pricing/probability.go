package pricing

import "math"

// probCeiling caps regime-adjusted probabilities; nothing is ever
// reported as more certain than 95%.
const probCeiling = 0.95

// neutralProb is the defined fallback when a probability cannot be
// computed from the inputs.
const neutralProb = 0.5

// ProbAbove returns the probability that the terminal price at expiry
// exceeds level, under a lognormal model with drift r - vol^2/2.
// Degenerate inputs return the neutral 0.5 default.
func ProbAbove(spot, level, timeToExpiry, vol, riskFreeRate float64) float64 {
	z, ok := logZScore(spot, level, timeToExpiry, vol, riskFreeRate)
	if !ok {
		return neutralProb
	}
	return 1 - normCDF(z)
}

// ProbBelow returns the probability that the terminal price at expiry
// is below level.
func ProbBelow(spot, level, timeToExpiry, vol, riskFreeRate float64) float64 {
	z, ok := logZScore(spot, level, timeToExpiry, vol, riskFreeRate)
	if !ok {
		return neutralProb
	}
	return normCDF(z)
}

// ProbBetween returns the probability that the terminal price lands in
// [lower, upper]. Widening the interval never decreases the result.
func ProbBetween(spot, lower, upper, timeToExpiry, vol, riskFreeRate float64) float64 {
	if lower > upper {
		lower, upper = upper, lower
	}
	zLower, okL := logZScore(spot, lower, timeToExpiry, vol, riskFreeRate)
	zUpper, okU := logZScore(spot, upper, timeToExpiry, vol, riskFreeRate)
	if !okL || !okU {
		return neutralProb
	}
	p := normCDF(zUpper) - normCDF(zLower)
	if p < 0 {
		return 0
	}
	return p
}

// RegimeFactors are the snapshot fields that nudge a base probability.
type RegimeFactors struct {
	VIXLevel    float64
	RSI         float64
	VolumeRatio float64
}

// AdjustForRegime applies small multiplicative regime factors to a
// base probability: calm volatility helps, elevated volatility and
// heavy volume hurt, a neutral RSI band helps. The result is clamped
// to the 0.95 ceiling.
func AdjustForRegime(prob float64, f RegimeFactors) float64 {
	adjusted := prob
	if f.VIXLevel < 20 {
		adjusted *= 1.10
	} else if f.VIXLevel > 30 {
		adjusted *= 0.90
	}
	if f.RSI >= 45 && f.RSI <= 55 {
		adjusted *= 1.05
	}
	if f.VolumeRatio > 1.3 {
		adjusted *= 0.95
	}
	if adjusted > probCeiling {
		return probCeiling
	}
	if adjusted < 0 {
		return 0
	}
	return adjusted
}

// logZScore converts a price level to a z-score of terminal log-price.
func logZScore(spot, level, timeToExpiry, vol, riskFreeRate float64) (float64, bool) {
	if spot <= 0 || level <= 0 || timeToExpiry <= 0 || vol <= 0 {
		return 0, false
	}
	drift := (riskFreeRate - 0.5*vol*vol) * timeToExpiry
	z := (math.Log(level/spot) - drift) / (vol * math.Sqrt(timeToExpiry))
	if math.IsNaN(z) || math.IsInf(z, 0) {
		return 0, false
	}
	return z, true
}
