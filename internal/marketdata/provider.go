// Package marketdata provides market data source interfaces and
// implementations for the decision cycle.
package marketdata

import (
	"context"
	"time"

	"spx-trader/internal/models"
)

// Provider supplies the candle history the analyzer works from.
type Provider interface {
	// SPXCandles returns daily SPX candles covering [from, to].
	SPXCandles(ctx context.Context, from, to time.Time) ([]models.Candle, error)

	// VIXCandles returns daily VIX candles covering [from, to].
	VIXCandles(ctx context.Context, from, to time.Time) ([]models.Candle, error)
}

// RateSource supplies the risk-free rate. The rate is read once per
// decision cycle and threaded through every pricing call in it.
type RateSource interface {
	RiskFreeRate(ctx context.Context) (float64, error)
}

// StaticRateSource returns a fixed risk-free rate.
type StaticRateSource struct {
	Rate float64
}

// RiskFreeRate returns the configured rate, defaulting to 5%.
func (s StaticRateSource) RiskFreeRate(ctx context.Context) (float64, error) {
	if s.Rate <= 0 {
		return 0.05, nil
	}
	return s.Rate, nil
}
