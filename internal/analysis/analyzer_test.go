package analysis

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"spx-trader/internal/models"
)

func dayCandles(n int, start, step float64, volume int64) []models.Candle {
	candles := make([]models.Candle, n)
	t0 := time.Date(2025, 4, 1, 13, 0, 0, 0, time.UTC)
	price := start
	for i := range candles {
		candles[i] = models.Candle{
			Timestamp: t0.AddDate(0, 0, i),
			Open:      price,
			High:      price + 5,
			Low:       price - 5,
			Close:     price,
			Volume:    volume,
		}
		price += step
	}
	return candles
}

func TestSnapshotNoData(t *testing.T) {
	a := NewAnalyzer(zerolog.Nop())
	now := time.Now()

	if _, err := a.Snapshot(nil, dayCandles(5, 18, 0, 0), now); err == nil {
		t.Error("expected error for missing SPX candles")
	}
	if _, err := a.Snapshot(dayCandles(5, 5000, 0, 1000), nil, now); err == nil {
		t.Error("expected error for missing VIX candles")
	}
}

func TestSnapshotInsufficientHistory(t *testing.T) {
	a := NewAnalyzer(zerolog.Nop())
	now := time.Now()

	spx := dayCandles(10, 5000, 2, 2000000)
	vix := dayCandles(10, 18, 0, 0)

	snap, err := a.Snapshot(spx, vix, now)
	if err != nil {
		t.Fatalf("short history must degrade, not fail: %v", err)
	}
	if snap.Direction != models.DirectionUnknown {
		t.Errorf("expected UNKNOWN direction, got %s", snap.Direction)
	}
	if snap.SpotPrice != spx[len(spx)-1].Close {
		t.Errorf("expected spot from last close, got %f", snap.SpotPrice)
	}
	if snap.RSI != 50 || snap.BBPosition != 0.5 || snap.VolumeRatio != 1 {
		t.Errorf("expected neutral indicator defaults, got %+v", snap)
	}
}

func TestSnapshotUptrend(t *testing.T) {
	a := NewAnalyzer(zerolog.Nop())
	now := time.Now()

	spx := dayCandles(80, 4800, 3, 2000000)
	vix := dayCandles(80, 18, 0, 0)

	snap, err := a.Snapshot(spx, vix, now)
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	if snap.Direction != models.DirectionBullish {
		t.Errorf("expected BULLISH for a steady uptrend with calm VIX, got %s", snap.Direction)
	}
	if snap.VIXLevel != 18 {
		t.Errorf("expected VIX from last close, got %f", snap.VIXLevel)
	}
	if err := snap.Validate(); err != nil {
		t.Errorf("uptrend snapshot must validate: %v", err)
	}
}

func TestClassify(t *testing.T) {
	a := NewAnalyzer(zerolog.Nop())

	cases := []struct {
		name string
		ind  latestIndicators
		vix  float64
		want models.Direction
	}{
		{
			name: "bullish alignment",
			ind: latestIndicators{
				rsi: 55, macd: 2, macdSignal: 1,
				bbPosition: 0.5, sma20: 4990, sma50: 4950,
				volumeRatio: 1.0,
			},
			vix:  18,
			want: models.DirectionBullish,
		},
		{
			name: "bearish alignment",
			ind: latestIndicators{
				rsi: 75, macd: -2, macdSignal: -1,
				bbPosition: 0.9, sma20: 5010, sma50: 5050,
				volumeRatio: 1.0,
			},
			vix:  35,
			want: models.DirectionBearish,
		},
		{
			name: "mixed evidence stays sideways",
			ind: latestIndicators{
				rsi: 55, macd: -1, macdSignal: 1,
				bbPosition: 0.85, sma20: 5020, sma50: 4950,
				volumeRatio: 1.0,
			},
			vix:  25,
			want: models.DirectionSideways,
		},
		{
			name: "volume spike amplifies the leading side",
			ind: latestIndicators{
				rsi: 55, macd: 2, macdSignal: 1,
				bbPosition: 0.85, sma20: 5020, sma50: 4950,
				volumeRatio: 1.5,
			},
			vix:  25,
			want: models.DirectionBullish,
		},
		{
			name: "oversold counts as mild bullish",
			ind: latestIndicators{
				rsi: 25, macd: 1, macdSignal: 0.5,
				bbPosition: 0.1, sma20: 5020, sma50: 4950,
				volumeRatio: 1.0,
			},
			vix:  18,
			want: models.DirectionBullish,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := a.classify(5000, tc.vix, tc.ind)
			if got != tc.want {
				t.Errorf("expected %s, got %s", tc.want, got)
			}
		})
	}
}
