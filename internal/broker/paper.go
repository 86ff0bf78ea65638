package broker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"spx-trader/internal/errors"
	"spx-trader/internal/models"
)

// PaperBroker implements the Broker interface for paper trading
// simulation. Spreads fill immediately at their model prices; margin
// is held as twice the maximum loss per contract.
type PaperBroker struct {
	mu           sync.RWMutex
	connected    bool
	cash         float64
	held         float64 // total margin held against open positions
	positions    map[string]*models.Position
	margins      map[string]float64
	orderCounter int
}

// NewPaperBroker creates a paper broker with the given starting cash.
func NewPaperBroker(initialCash float64) *PaperBroker {
	if initialCash <= 0 {
		initialCash = 100000
	}
	return &PaperBroker{
		cash:      initialCash,
		positions: make(map[string]*models.Position),
		margins:   make(map[string]float64),
	}
}

// Connect marks the broker connected.
func (p *PaperBroker) Connect(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.connected = true
	return nil
}

// Disconnect marks the broker disconnected.
func (p *PaperBroker) Disconnect(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.connected = false
	return nil
}

// IsConnected reports the connection state.
func (p *PaperBroker) IsConnected() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.connected
}

// AccountInfo returns the simulated account values.
func (p *PaperBroker) AccountInfo(ctx context.Context) (*models.AccountInfo, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.connected {
		return nil, errors.ErrNotConnected
	}
	return &models.AccountInfo{
		NetLiquidation: p.cash + p.held,
		AvailableFunds: p.cash,
	}, nil
}

// PlaceSpread fills the spread at its limit net premium. Credit
// received is added to cash; margin is reserved per contract.
func (p *PaperBroker) PlaceSpread(ctx context.Context, order *models.SpreadOrder) (*OrderResult, error) {
	if order == nil || order.Quantity <= 0 || len(order.Legs) < 2 {
		return nil, errors.ErrInvalidOrder
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.connected {
		return nil, errors.ErrNotConnected
	}

	p.orderCounter++
	tradeID := fmt.Sprintf("PAPER_%d_%d", time.Now().Unix(), p.orderCounter)

	// Margin: worst-case loss across legs, held at 2x.
	margin := spreadMargin(order) * float64(order.Quantity)
	premium := order.LimitNet * Multiplier * float64(order.Quantity)

	if p.cash+premium < margin {
		return nil, errors.NewOrderError(tradeID, "SPX", "PLACE", "insufficient funds for margin", errors.ErrInsufficientFunds)
	}

	p.cash += premium - margin
	p.held += margin
	p.margins[tradeID] = margin

	p.positions[tradeID] = &models.Position{
		TradeID:    tradeID,
		Kind:       order.Kind,
		Quantity:   order.Quantity,
		EntryNet:   order.LimitNet,
		CurrentNet: order.LimitNet,
		OpenedAt:   time.Now(),
	}

	return &OrderResult{
		TradeID:  tradeID,
		Status:   models.OrderStatusFilled,
		FilledAt: order.LimitNet,
		Message:  "filled at model price",
	}, nil
}

// spreadMargin estimates the per-contract margin for a spread from the
// width between short and long strikes of each right.
func spreadMargin(order *models.SpreadOrder) float64 {
	var maxWidth float64
	for _, short := range order.Legs {
		if short.Side != models.OrderSideSell {
			continue
		}
		for _, long := range order.Legs {
			if long.Side != models.OrderSideBuy || long.Right != short.Right {
				continue
			}
			width := short.Strike - long.Strike
			if width < 0 {
				width = -width
			}
			if width > maxWidth {
				maxWidth = width
			}
		}
	}
	return maxWidth * Multiplier * 2
}

// Positions returns the open simulated positions.
func (p *PaperBroker) Positions(ctx context.Context) ([]models.Position, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.connected {
		return nil, errors.ErrNotConnected
	}

	out := make([]models.Position, 0, len(p.positions))
	for _, pos := range p.positions {
		out = append(out, *pos)
	}
	return out, nil
}

// ClosePosition closes a position at the given net premium and returns
// the realized P&L. For credit structures the P&L is the difference
// between entry credit and the cost to close.
func (p *PaperBroker) ClosePosition(ctx context.Context, tradeID string, closeNet float64) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.connected {
		return 0, errors.ErrNotConnected
	}

	pos, ok := p.positions[tradeID]
	if !ok {
		return 0, errors.ErrPositionNotFound
	}

	pnl := (pos.EntryNet - closeNet) * Multiplier * float64(pos.Quantity)

	// Release the margin held at entry and pay the cost to close.
	margin := p.margins[tradeID]
	p.held -= margin
	p.cash += margin - closeNet*Multiplier*float64(pos.Quantity)

	delete(p.positions, tradeID)
	delete(p.margins, tradeID)
	return pnl, nil
}
