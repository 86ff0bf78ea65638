// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"spx-trader/internal/models"
)

// DataStore defines the interface for data persistence.
type DataStore interface {
	// Candles
	SaveCandles(ctx context.Context, symbol string, candles []models.Candle) error
	GetCandles(ctx context.Context, symbol string, from, to time.Time) ([]models.Candle, error)

	// Market snapshots
	SaveSnapshot(ctx context.Context, snap *models.MarketSnapshot) error
	GetSnapshots(ctx context.Context, from, to time.Time) ([]models.MarketSnapshot, error)

	// Recommendations
	SaveRecommendation(ctx context.Context, rec *models.Recommendation) error
	GetRecommendations(ctx context.Context, filter RecommendationFilter) ([]models.Recommendation, error)

	// Trades
	LogTrade(ctx context.Context, trade *models.Trade) error
	GetTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error)
	UpdateTradePnL(ctx context.Context, tradeID string, pnl float64, status models.OrderStatus) error

	// Daily metrics
	SaveDailyMetrics(ctx context.Context, metrics *models.DailyMetrics) error
	GetDailyMetrics(ctx context.Context, date string) (*models.DailyMetrics, error)

	// Lifecycle
	Close() error
}

// TradeFilter represents filters for querying trades.
type TradeFilter struct {
	Kind      models.StrategyKind
	StartDate time.Time
	EndDate   time.Time
	IsPaper   *bool
	Limit     int
}

// RecommendationFilter represents filters for querying recommendations.
type RecommendationFilter struct {
	Kind      models.StrategyKind
	Action    models.Action
	StartDate time.Time
	EndDate   time.Time
	Limit     int
}
