package indicators

import (
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"spx-trader/internal/models"
)

// candleSliceGen generates ordered candle histories with positive
// prices and consistent OHLC relationships.
func candleSliceGen(minLen, maxLen int) gopter.Gen {
	return gen.SliceOfN(maxLen, gen.Float64Range(1000, 8000)).Map(func(closes []float64) []models.Candle {
		if len(closes) < minLen {
			for len(closes) < minLen {
				closes = append(closes, closes[len(closes)-1])
			}
		}
		t0 := time.Date(2025, 1, 1, 13, 0, 0, 0, time.UTC)
		candles := make([]models.Candle, len(closes))
		for i, c := range closes {
			candles[i] = models.Candle{
				Timestamp: t0.AddDate(0, 0, i),
				Open:      c,
				High:      c + 10,
				Low:       c - 10,
				Close:     c,
				Volume:    int64(1000000 + i),
			}
		}
		return candles
	})
}

// Property: RSI values stay within [0, 100] for any candle history.
func TestProperty_RSIWithinBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("RSI values are within [0, 100]", prop.ForAll(
		func(candles []models.Candle) bool {
			rsi := NewRSI(14)
			values, err := rsi.Calculate(candles)
			if err != nil {
				return true
			}
			for i := rsi.Period(); i < len(values); i++ {
				if values[i] < 0 || values[i] > 100 {
					return false
				}
			}
			return true
		},
		candleSliceGen(20, 100),
	))

	properties.TestingRun(t)
}

// Property: Bollinger bands are ordered lower <= middle <= upper and
// the middle band equals the SMA of the same period.
func TestProperty_BollingerBandOrdering(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("band ordering and middle equals SMA", prop.ForAll(
		func(candles []models.Candle) bool {
			bb := NewBollingerBands(20, 2.0)
			values, err := bb.Calculate(candles)
			if err != nil {
				return true
			}
			smaValues, err := NewSMA(20).Calculate(candles)
			if err != nil {
				return true
			}

			for i := bb.Period() - 1; i < len(candles); i++ {
				if values["lower"][i] > values["middle"][i] || values["middle"][i] > values["upper"][i] {
					return false
				}
				if math.Abs(values["middle"][i]-smaValues[i]) > 1e-9 {
					return false
				}
			}
			return true
		},
		candleSliceGen(25, 100),
	))

	properties.TestingRun(t)
}

// Property: Every SMA value lies between the minimum and maximum close
// of its window.
func TestProperty_SMAWithinWindowRange(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("SMA bounded by window extremes", prop.ForAll(
		func(candles []models.Candle) bool {
			sma := NewSMA(10)
			values, err := sma.Calculate(candles)
			if err != nil {
				return true
			}
			for i := sma.Period() - 1; i < len(candles); i++ {
				lo, hi := math.Inf(1), math.Inf(-1)
				for j := i - sma.Period() + 1; j <= i; j++ {
					lo = math.Min(lo, candles[j].Close)
					hi = math.Max(hi, candles[j].Close)
				}
				if values[i] < lo-1e-9 || values[i] > hi+1e-9 {
					return false
				}
			}
			return true
		},
		candleSliceGen(15, 100),
	))

	properties.TestingRun(t)
}

// Property: MACD equals the fast EMA minus the slow EMA, and the
// histogram is MACD minus the signal line.
func TestProperty_MACDHistogramConsistent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("histogram equals macd minus signal", prop.ForAll(
		func(candles []models.Candle) bool {
			macd := NewMACD(12, 26, 9)
			values, err := macd.Calculate(candles)
			if err != nil {
				return true
			}
			for i := macd.Period() - 1; i < len(candles); i++ {
				diff := values["macd"][i] - values["signal"][i]
				if math.Abs(values["histogram"][i]-diff) > 1e-9 {
					return false
				}
			}
			return true
		},
		candleSliceGen(40, 120),
	))

	properties.TestingRun(t)
}

func TestIndicatorErrors(t *testing.T) {
	short := candlesOf(5)

	if _, err := NewRSI(14).Calculate(short); err == nil {
		t.Error("expected insufficient data error for RSI")
	}
	if _, err := NewSMA(0).Calculate(short); err == nil {
		t.Error("expected invalid period error for SMA")
	}
	if _, err := NewBollingerBands(20, 2.0).Calculate(short); err == nil {
		t.Error("expected insufficient data error for Bollinger Bands")
	}
	if _, err := NewMACD(12, 26, 9).Calculate(short); err == nil {
		t.Error("expected insufficient data error for MACD")
	}
	if _, err := NewVolumeSMA(20).Calculate(short); err == nil {
		t.Error("expected insufficient data error for volume SMA")
	}
}

func TestRSIExtremes(t *testing.T) {
	rising := candlesOf(30)
	for i := range rising {
		rising[i].Close = 5000 + float64(i)*10
	}
	values, err := NewRSI(14).Calculate(rising)
	if err != nil {
		t.Fatalf("RSI failed: %v", err)
	}
	if last := values[len(values)-1]; last != 100 {
		t.Errorf("expected RSI 100 for monotonic gains, got %f", last)
	}

	falling := candlesOf(30)
	for i := range falling {
		falling[i].Close = 5000 - float64(i)*10
	}
	values, err = NewRSI(14).Calculate(falling)
	if err != nil {
		t.Fatalf("RSI failed: %v", err)
	}
	if last := values[len(values)-1]; last != 0 {
		t.Errorf("expected RSI 0 for monotonic losses, got %f", last)
	}
}

func candlesOf(n int) []models.Candle {
	t0 := time.Date(2025, 1, 1, 13, 0, 0, 0, time.UTC)
	candles := make([]models.Candle, n)
	for i := range candles {
		candles[i] = models.Candle{
			Timestamp: t0.AddDate(0, 0, i),
			Open:      5000,
			High:      5010,
			Low:       4990,
			Close:     5000,
			Volume:    1000000,
		}
	}
	return candles
}
