// Package broker provides broker integration interfaces and implementations.
package broker

import (
	"context"

	"spx-trader/internal/models"
)

// Multiplier is the SPX option contract multiplier.
const Multiplier = 100

// Broker defines the interface for broker operations.
type Broker interface {
	// Session
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	IsConnected() bool

	// Account
	AccountInfo(ctx context.Context) (*models.AccountInfo, error)

	// Orders
	PlaceSpread(ctx context.Context, order *models.SpreadOrder) (*OrderResult, error)

	// Positions
	Positions(ctx context.Context) ([]models.Position, error)
	ClosePosition(ctx context.Context, tradeID string, closeNet float64) (float64, error)
}

// OrderResult represents the result of a spread order placement.
type OrderResult struct {
	TradeID  string
	Status   models.OrderStatus
	FilledAt float64 // signed net premium per contract at fill
	Message  string
}
