package models

import "time"

// SpreadOrder is a multi-leg order submitted to a broker.
type SpreadOrder struct {
	ID        string
	Kind      StrategyKind
	Legs      []OptionLeg
	Quantity  int
	LimitNet  float64 // signed limit on the net premium
	Submitted time.Time
}

// OrderStatus represents the state of a submitted order.
type OrderStatus string

const (
	OrderStatusFilled   OrderStatus = "FILLED"
	OrderStatusRejected OrderStatus = "REJECTED"
	OrderStatusPending  OrderStatus = "PENDING"
)

// Trade records an executed (or simulated) multi-leg trade.
type Trade struct {
	ID         string
	Timestamp  time.Time
	Kind       StrategyKind
	Quantity   int
	NetPremium float64
	MaxProfit  float64
	MaxLoss    float64
	ProbProfit float64
	Strikes    []float64
	Expiry     time.Time
	IsPaper    bool
	PnL        float64
	Status     OrderStatus
}

// Position is an open multi-leg position tracked by the broker.
type Position struct {
	TradeID    string
	Kind       StrategyKind
	Quantity   int
	EntryNet   float64
	CurrentNet float64
	OpenPnL    float64
	OpenedAt   time.Time
}

// DailyMetrics tracks per-day risk bookkeeping.
type DailyMetrics struct {
	Date        string
	RealizedPnL float64
	TradeCount  int
}
