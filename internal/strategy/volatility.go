package strategy

import (
	"math"

	"spx-trader/internal/models"
)

const (
	minVolatility     = 0.10
	defaultVolatility = 0.20
	histVolWindow     = 20
	tradingDays       = 252
)

// EstimateVolatility blends the VIX-implied volatility with an
// annualized historical volatility from recent closes (70/30). With
// too little history the VIX level alone is used; a floor of 10%
// keeps same-day pricing away from degenerate vols.
func EstimateVolatility(candles []models.Candle, vixLevel float64) float64 {
	implied := vixLevel / 100
	vol := implied

	if len(candles) > histVolWindow {
		if hist, ok := historicalVol(candles); ok {
			vol = 0.7*implied + 0.3*hist
		}
	}

	if vol < minVolatility {
		if implied <= 0 {
			return defaultVolatility
		}
		return minVolatility
	}
	return vol
}

// historicalVol computes the annualized standard deviation of log
// returns over the candle history.
func historicalVol(candles []models.Candle) (float64, bool) {
	returns := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		prev, cur := candles[i-1].Close, candles[i].Close
		if prev <= 0 || cur <= 0 {
			return 0, false
		}
		returns = append(returns, math.Log(cur/prev))
	}
	if len(returns) < 2 {
		return 0, false
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var variance float64
	for _, r := range returns {
		diff := r - mean
		variance += diff * diff
	}
	variance /= float64(len(returns))

	return math.Sqrt(variance) * math.Sqrt(tradingDays), true
}
