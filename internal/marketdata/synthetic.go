package marketdata

import (
	"context"
	"math"
	"math/rand"
	"time"

	"spx-trader/internal/models"
)

// SyntheticProvider generates plausible SPX and VIX candle series for
// paper trading and tests. A fixed seed makes runs reproducible.
type SyntheticProvider struct {
	rng      *rand.Rand
	spxLevel float64
	vixLevel float64
}

// NewSyntheticProvider creates a seeded synthetic provider.
func NewSyntheticProvider(seed int64) *SyntheticProvider {
	return &SyntheticProvider{
		rng:      rand.New(rand.NewSource(seed)),
		spxLevel: 5000,
		vixLevel: 18,
	}
}

// SPXCandles generates a daily random walk around the current level.
func (p *SyntheticProvider) SPXCandles(ctx context.Context, from, to time.Time) ([]models.Candle, error) {
	return p.walk(from, to, p.spxLevel, 0.01, 2000000), nil
}

// VIXCandles generates a mean-reverting daily VIX series.
func (p *SyntheticProvider) VIXCandles(ctx context.Context, from, to time.Time) ([]models.Candle, error) {
	var out []models.Candle
	level := p.vixLevel
	for cur := from; !cur.After(to); cur = cur.AddDate(0, 0, 1) {
		if cur.Weekday() == time.Saturday || cur.Weekday() == time.Sunday {
			continue
		}
		// Pull toward the long-run level with noise.
		level += (18-level)*0.05 + p.rng.NormFloat64()*0.8
		if level < 9 {
			level = 9
		}
		out = append(out, models.Candle{
			Timestamp: cur,
			Open:      level,
			High:      level * 1.02,
			Low:       level * 0.98,
			Close:     level,
			Volume:    0,
		})
	}
	return out, nil
}

func (p *SyntheticProvider) walk(from, to time.Time, start, dailyVol float64, baseVolume int64) []models.Candle {
	var out []models.Candle
	price := start
	for cur := from; !cur.After(to); cur = cur.AddDate(0, 0, 1) {
		if cur.Weekday() == time.Saturday || cur.Weekday() == time.Sunday {
			continue
		}
		delta := p.rng.NormFloat64() * dailyVol * price
		open := price
		close := price + delta
		high := math.Max(open, close) + math.Abs(p.rng.NormFloat64()*0.3*dailyVol*price)
		low := math.Min(open, close) - math.Abs(p.rng.NormFloat64()*0.3*dailyVol*price)
		volume := baseVolume + int64(p.rng.Intn(int(baseVolume/2)))
		out = append(out, models.Candle{
			Timestamp: cur,
			Open:      open,
			High:      high,
			Low:       low,
			Close:     close,
			Volume:    volume,
		})
		price = close
	}
	return out
}
