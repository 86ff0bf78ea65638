package store

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"spx-trader/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCandleRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	t0 := time.Date(2025, 8, 1, 13, 30, 0, 0, time.UTC)
	candles := []models.Candle{
		{Timestamp: t0, Open: 5000, High: 5010, Low: 4990, Close: 5005, Volume: 2000000},
		{Timestamp: t0.AddDate(0, 0, 1), Open: 5005, High: 5020, Low: 5000, Close: 5015, Volume: 2100000},
		{Timestamp: t0.AddDate(0, 0, 2), Open: 5015, High: 5030, Low: 5008, Close: 5025, Volume: 1900000},
	}

	if err := s.SaveCandles(ctx, "SPX", candles); err != nil {
		t.Fatalf("failed to save candles: %v", err)
	}

	got, err := s.GetCandles(ctx, "SPX", t0.Add(-time.Minute), t0.AddDate(0, 0, 3))
	if err != nil {
		t.Fatalf("failed to get candles: %v", err)
	}
	if len(got) != len(candles) {
		t.Fatalf("expected %d candles, got %d", len(candles), len(got))
	}
	for i := range got {
		if got[i].Close != candles[i].Close || got[i].Volume != candles[i].Volume {
			t.Errorf("candle %d mismatch: %+v vs %+v", i, got[i], candles[i])
		}
	}

	// Saving the same candles again must not duplicate rows.
	if err := s.SaveCandles(ctx, "SPX", candles); err != nil {
		t.Fatalf("failed to re-save candles: %v", err)
	}
	got, err = s.GetCandles(ctx, "SPX", t0.Add(-time.Minute), t0.AddDate(0, 0, 3))
	if err != nil {
		t.Fatalf("failed to get candles: %v", err)
	}
	if len(got) != len(candles) {
		t.Errorf("expected upsert to keep %d rows, got %d", len(candles), len(got))
	}

	// Symbols partition the data.
	other, err := s.GetCandles(ctx, "VIX", t0.Add(-time.Minute), t0.AddDate(0, 0, 3))
	if err != nil {
		t.Fatalf("failed to get candles: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("expected no VIX candles, got %d", len(other))
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	snap := &models.MarketSnapshot{
		Timestamp:   time.Date(2025, 8, 1, 14, 0, 0, 0, time.UTC),
		Direction:   models.DirectionSideways,
		SpotPrice:   5012.5,
		VIXLevel:    21.3,
		RSI:         52.1,
		MACD:        0.8,
		BBPosition:  0.55,
		VolumeRatio: 1.1,
	}
	if err := s.SaveSnapshot(ctx, snap); err != nil {
		t.Fatalf("failed to save snapshot: %v", err)
	}

	got, err := s.GetSnapshots(ctx, snap.Timestamp.Add(-time.Hour), snap.Timestamp.Add(time.Hour))
	if err != nil {
		t.Fatalf("failed to get snapshots: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(got))
	}
	if got[0].Direction != snap.Direction || got[0].SpotPrice != snap.SpotPrice || got[0].RSI != snap.RSI {
		t.Errorf("snapshot mismatch: %+v", got[0])
	}
}

func TestRecommendationRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := &models.Recommendation{
		GeneratedAt: time.Date(2025, 8, 1, 14, 0, 0, 0, time.UTC),
		Action:      models.ActionExecute,
		Score:       82.5,
		Scored:      true,
		Direction:   models.DirectionSideways,
		VIXLevel:    21.3,
		RSI:         52.1,
		Structure: &models.StrategyStructure{
			Kind:       models.KindIronCondor,
			SpotPrice:  5012.5,
			NetPremium: 6.2,
			MaxProfit:  6.2,
			MaxLoss:    23.8,
			Breakevens: []float64{4946.3, 5078.7},
			ProbProfit: 0.78,
			NetDelta:   0.01,
			NetTheta:   5.5,
		},
	}
	if err := s.SaveRecommendation(ctx, rec); err != nil {
		t.Fatalf("failed to save recommendation: %v", err)
	}

	got, err := s.GetRecommendations(ctx, RecommendationFilter{Kind: models.KindIronCondor})
	if err != nil {
		t.Fatalf("failed to get recommendations: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 recommendation, got %d", len(got))
	}

	r := got[0]
	if r.Action != models.ActionExecute || !r.Scored || r.Score != 82.5 {
		t.Errorf("recommendation fields mismatch: %+v", r)
	}
	if r.Structure == nil || r.Structure.Kind != models.KindIronCondor {
		t.Fatalf("structure not restored: %+v", r.Structure)
	}
	if math.Abs(r.Structure.ProbProfit-0.78) > 1e-9 || len(r.Structure.Breakevens) != 2 {
		t.Errorf("structure payload mismatch: %+v", r.Structure)
	}

	// Filter by action excludes non-matching rows.
	none, err := s.GetRecommendations(ctx, RecommendationFilter{Action: models.ActionSkip})
	if err != nil {
		t.Fatalf("failed to get recommendations: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no SKIP recommendations, got %d", len(none))
	}
}

func TestTradeLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	trade := &models.Trade{
		ID:         "PAPER_1722520800_1",
		Timestamp:  time.Date(2025, 8, 1, 14, 5, 0, 0, time.UTC),
		Kind:       models.KindPutCreditSpread,
		Quantity:   2,
		NetPremium: 2.4,
		MaxProfit:  2.4,
		MaxLoss:    7.6,
		ProbProfit: 0.81,
		Strikes:    []float64{4950, 4940},
		Expiry:     time.Date(2025, 8, 1, 23, 0, 0, 0, time.UTC),
		IsPaper:    true,
		Status:     models.OrderStatusFilled,
	}
	if err := s.LogTrade(ctx, trade); err != nil {
		t.Fatalf("failed to log trade: %v", err)
	}

	paper := true
	got, err := s.GetTrades(ctx, TradeFilter{Kind: models.KindPutCreditSpread, IsPaper: &paper})
	if err != nil {
		t.Fatalf("failed to get trades: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(got))
	}
	if got[0].ID != trade.ID || got[0].Quantity != 2 || len(got[0].Strikes) != 2 {
		t.Errorf("trade mismatch: %+v", got[0])
	}

	if err := s.UpdateTradePnL(ctx, trade.ID, 480, models.OrderStatusFilled); err != nil {
		t.Fatalf("failed to update pnl: %v", err)
	}
	got, err = s.GetTrades(ctx, TradeFilter{})
	if err != nil {
		t.Fatalf("failed to get trades: %v", err)
	}
	if got[0].PnL != 480 {
		t.Errorf("expected updated pnl 480, got %f", got[0].PnL)
	}

	if err := s.UpdateTradePnL(ctx, "MISSING", 0, models.OrderStatusFilled); err == nil {
		t.Error("expected error updating a missing trade")
	}
}

func TestTradeOrderingAndLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	t0 := time.Date(2025, 8, 1, 14, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		trade := &models.Trade{
			ID:        string(rune('A' + i)),
			Timestamp: t0.Add(time.Duration(i) * time.Hour),
			Kind:      models.KindIronCondor,
			Quantity:  1,
			IsPaper:   true,
			Status:    models.OrderStatusFilled,
		}
		if err := s.LogTrade(ctx, trade); err != nil {
			t.Fatalf("failed to log trade: %v", err)
		}
	}

	got, err := s.GetTrades(ctx, TradeFilter{Limit: 3})
	if err != nil {
		t.Fatalf("failed to get trades: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected limit of 3 trades, got %d", len(got))
	}
	if got[0].ID != "E" {
		t.Errorf("expected newest trade first, got %s", got[0].ID)
	}
}

func TestDailyMetrics(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	missing, err := s.GetDailyMetrics(ctx, "2025-08-01")
	if err != nil {
		t.Fatalf("missing metrics must return zero values: %v", err)
	}
	if missing.RealizedPnL != 0 || missing.TradeCount != 0 || missing.Date != "2025-08-01" {
		t.Errorf("expected empty metrics row, got %+v", missing)
	}

	if err := s.SaveDailyMetrics(ctx, &models.DailyMetrics{Date: "2025-08-01", RealizedPnL: -320, TradeCount: 2}); err != nil {
		t.Fatalf("failed to save metrics: %v", err)
	}
	// Upsert replaces the existing row.
	if err := s.SaveDailyMetrics(ctx, &models.DailyMetrics{Date: "2025-08-01", RealizedPnL: 150, TradeCount: 3}); err != nil {
		t.Fatalf("failed to re-save metrics: %v", err)
	}

	got, err := s.GetDailyMetrics(ctx, "2025-08-01")
	if err != nil {
		t.Fatalf("failed to get metrics: %v", err)
	}
	if got.RealizedPnL != 150 || got.TradeCount != 3 {
		t.Errorf("expected upserted metrics, got %+v", got)
	}
}
