// Package analysis provides market analysis: technical indicators and
// the direction classification that drives strategy selection.
package analysis

import (
	"time"

	"github.com/rs/zerolog"

	"spx-trader/internal/analysis/indicators"
	"spx-trader/internal/errors"
	"spx-trader/internal/models"
)

// Indicator periods used by the analyzer.
const (
	rsiPeriod    = 14
	macdFast     = 12
	macdSlow     = 26
	macdSignal   = 9
	bbPeriod     = 20
	bbStdDev     = 2.0
	smaShort     = 20
	smaLong      = 50
	volumePeriod = 20
	recentVolume = 5
)

// Analyzer classifies the market regime from SPX and VIX candle
// history and assembles the per-cycle market snapshot.
type Analyzer struct {
	logger zerolog.Logger
}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer(logger zerolog.Logger) *Analyzer {
	return &Analyzer{logger: logger.With().Str("component", "analyzer").Logger()}
}

// Snapshot computes indicators over the candle history and returns the
// market snapshot for this decision cycle. Too little history yields a
// DataError; indicator values that cannot be computed degrade the
// direction to UNKNOWN rather than failing the cycle.
func (a *Analyzer) Snapshot(spx, vix []models.Candle, now time.Time) (*models.MarketSnapshot, error) {
	if len(spx) == 0 || len(vix) == 0 {
		return nil, errors.NewDataError("candles", "SPX/VIX", "no market data available", nil)
	}

	spot := spx[len(spx)-1].Close
	vixLevel := vix[len(vix)-1].Close

	snap := &models.MarketSnapshot{
		Timestamp:   now,
		Direction:   models.DirectionUnknown,
		SpotPrice:   spot,
		VIXLevel:    vixLevel,
		RSI:         50,
		BBPosition:  0.5,
		VolumeRatio: 1,
	}

	ind, ok := a.computeIndicators(spx)
	if !ok {
		a.logger.Warn().Int("candles", len(spx)).Msg("insufficient history for indicators, direction unknown")
		return snap, nil
	}

	snap.RSI = ind.rsi
	snap.MACD = ind.macd
	snap.BBPosition = ind.bbPosition
	snap.VolumeRatio = ind.volumeRatio
	snap.Direction = a.classify(spot, vixLevel, ind)

	return snap, nil
}

// latestIndicators holds the most recent value of each indicator.
type latestIndicators struct {
	rsi         float64
	macd        float64
	macdSignal  float64
	bbPosition  float64
	sma20       float64
	sma50       float64
	volumeRatio float64
}

func (a *Analyzer) computeIndicators(candles []models.Candle) (latestIndicators, bool) {
	var out latestIndicators
	last := len(candles) - 1

	rsiVals, err := indicators.NewRSI(rsiPeriod).Calculate(candles)
	if err != nil {
		return out, false
	}
	out.rsi = rsiVals[last]

	macdVals, err := indicators.NewMACD(macdFast, macdSlow, macdSignal).Calculate(candles)
	if err != nil {
		return out, false
	}
	out.macd = macdVals["macd"][last]
	out.macdSignal = macdVals["signal"][last]

	bbVals, err := indicators.NewBollingerBands(bbPeriod, bbStdDev).Calculate(candles)
	if err != nil {
		return out, false
	}
	out.bbPosition = bbVals["percent_b"][last]

	sma20Vals, err := indicators.NewSMA(smaShort).Calculate(candles)
	if err != nil {
		return out, false
	}
	out.sma20 = sma20Vals[last]

	sma50Vals, err := indicators.NewSMA(smaLong).Calculate(candles)
	if err != nil {
		return out, false
	}
	out.sma50 = sma50Vals[last]

	volVals, err := indicators.NewVolumeSMA(volumePeriod).Calculate(candles)
	if err != nil {
		return out, false
	}
	avgVolume := volVals[last]
	var recent float64
	for _, c := range candles[len(candles)-recentVolume:] {
		recent += float64(c.Volume)
	}
	recent /= recentVolume
	if avgVolume > 0 {
		out.volumeRatio = recent / avgVolume
	} else {
		out.volumeRatio = 1
	}

	return out, true
}

// classify scores bullish and bearish evidence and requires a margin
// of two points before committing to a direction; anything closer is
// treated as a sideways market.
func (a *Analyzer) classify(price, vixLevel float64, ind latestIndicators) models.Direction {
	var bullish, bearish int

	switch {
	case ind.rsi >= 40 && ind.rsi <= 70:
		bullish += 2
	case ind.rsi > 70:
		bearish++
	case ind.rsi < 30:
		bullish++
	}

	if ind.macd > ind.macdSignal {
		bullish += 2
	} else {
		bearish++
	}

	if price > ind.sma20 && ind.sma20 > ind.sma50 {
		bullish += 2
	} else if price < ind.sma20 && ind.sma20 < ind.sma50 {
		bearish += 2
	}

	switch {
	case ind.bbPosition >= 0.2 && ind.bbPosition <= 0.8:
		bullish++
	case ind.bbPosition > 0.8:
		bearish++
	}

	switch {
	case vixLevel < 20:
		bullish++
	case vixLevel > 30:
		bearish += 2
	}

	if ind.volumeRatio > 1.2 {
		if bullish > bearish {
			bullish++
		} else {
			bearish++
		}
	}

	a.logger.Debug().Int("bullish", bullish).Int("bearish", bearish).Msg("direction scores")

	switch {
	case bullish >= bearish+2:
		return models.DirectionBullish
	case bearish >= bullish+2:
		return models.DirectionBearish
	default:
		return models.DirectionSideways
	}
}
