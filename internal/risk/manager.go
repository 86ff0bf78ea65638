// Package risk provides trade validation, position sizing, and daily
// trading limits.
package risk

import (
	"fmt"
	"math"
	"sync"

	"github.com/rs/zerolog"

	"spx-trader/internal/models"
)

// Limits holds the risk parameters enforced by the Manager.
type Limits struct {
	MaxDailyLoss      float64 // hard stop on realized daily loss
	MaxPositionSize   int     // contracts per position
	MaxTradesPerDay   int
	MaxDrawdownPct    float64 // daily drawdown as percent of account value
	RiskPerTradePct   float64 // fraction of account value risked per trade
	MinProbability    float64
	MaxSameStrategy   int // open positions sharing a strategy kind
	MaxOpenPositions  int
	MaxAbsNetDelta    float64
	MaxAbsNetVega     float64
	MarginMultiplier  float64 // assumed margin requirement as multiple of max loss
}

// DefaultLimits returns the standard risk parameters.
func DefaultLimits() Limits {
	return Limits{
		MaxDailyLoss:     5000,
		MaxPositionSize:  10,
		MaxTradesPerDay:  5,
		MaxDrawdownPct:   5.0,
		RiskPerTradePct:  0.02,
		MinProbability:   0.70,
		MaxSameStrategy:  3,
		MaxOpenPositions: 5,
		MaxAbsNetDelta:   0.5,
		MaxAbsNetVega:    50,
		MarginMultiplier: 2.0,
	}
}

// ValidationResult is the outcome of validating a candidate trade.
type ValidationResult struct {
	Approved        bool
	Reasons         []string
	Warnings        []string
	RecommendedSize int
}

// Summary reports the manager's daily state.
type Summary struct {
	DailyPnL             float64
	TradesToday          int
	DailyLimitRemaining  float64
	TradesRemaining      int
	AccountValue         float64
	DailyRiskPercent     float64
	OpenPositions        int
}

// Manager enforces risk limits across the trading day. State tracking
// is guarded for concurrent use by the scheduler and CLI.
type Manager struct {
	limits Limits
	logger zerolog.Logger

	mu          sync.RWMutex
	dailyPnL    float64
	tradesToday int
}

// NewManager creates a Manager with the given limits.
func NewManager(limits Limits, logger zerolog.Logger) *Manager {
	return &Manager{
		limits: limits,
		logger: logger.With().Str("component", "risk").Logger(),
	}
}

// ValidateTrade runs the full validation chain against a candidate
// structure. Hard failures set Approved false with a reason; soft
// concerns become warnings and leave the trade approved.
func (m *Manager) ValidateTrade(s *models.StrategyStructure, account *models.AccountInfo, positions []models.Position) ValidationResult {
	result := ValidationResult{Approved: true, RecommendedSize: 1}
	if s == nil {
		result.Approved = false
		result.Reasons = append(result.Reasons, "no trade structure")
		return result
	}

	if !validBasics(s) {
		result.Approved = false
		result.Reasons = append(result.Reasons, "basic requirements not met")
	}

	if s.ProbProfit < m.limits.MinProbability {
		result.Approved = false
		result.Reasons = append(result.Reasons, fmt.Sprintf("probability of profit too low: %.1f%%", s.ProbProfit*100))
	}

	if !validRiskReward(s) {
		result.Warnings = append(result.Warnings, "poor risk/reward ratio")
	}

	if account != nil {
		size := m.PositionSize(s, account)
		result.RecommendedSize = size
		if size == 0 {
			result.Approved = false
			result.Reasons = append(result.Reasons, "insufficient account size for minimum position")
		}
	}

	if !m.withinDailyLimits() {
		result.Approved = false
		result.Reasons = append(result.Reasons, "daily trading limits exceeded")
	}

	if !m.validGreeks(s) {
		result.Warnings = append(result.Warnings, "greeks outside preferred ranges")
	}

	if len(positions) > 0 && !m.withinConcentration(s, positions) {
		result.Approved = false
		result.Reasons = append(result.Reasons, "would exceed concentration limits")
	}

	return result
}

func validBasics(s *models.StrategyStructure) bool {
	if s.MaxLoss <= 0 || s.MaxProfit <= 0 {
		return false
	}
	if s.ProbProfit <= 0 || s.ProbProfit > 1 {
		return false
	}
	return true
}

func validRiskReward(s *models.StrategyStructure) bool {
	if s.MaxLoss <= 0 {
		return false
	}
	ratio := s.MaxProfit / s.MaxLoss
	var min float64
	switch s.Kind {
	case models.KindPutCreditSpread:
		min = 0.2
	case models.KindCallDiagonal:
		min = 0.3
	default:
		min = 0.25
	}
	return ratio >= min
}

func (m *Manager) validGreeks(s *models.StrategyStructure) bool {
	if math.Abs(s.NetDelta) > m.limits.MaxAbsNetDelta {
		return false
	}
	if s.Kind == models.KindPutCreditSpread && s.NetTheta <= 0 {
		return false
	}
	if math.Abs(s.NetVega) > m.limits.MaxAbsNetVega {
		return false
	}
	return true
}

// ValidateRecommendation extends ValidateTrade with the market regime
// checks that need the recommendation's VIX and RSI context.
func (m *Manager) ValidateRecommendation(rec *models.Recommendation, account *models.AccountInfo, positions []models.Position) ValidationResult {
	if rec == nil {
		return ValidationResult{Reasons: []string{"no recommendation"}}
	}
	result := m.ValidateTrade(rec.Structure, account, positions)

	switch rec.Structure.Kind {
	case models.KindPutCreditSpread:
		if rec.VIXLevel > 35 || rec.RSI < 30 {
			result.Warnings = append(result.Warnings, "market conditions not optimal")
		}
	case models.KindCallDiagonal:
		if rec.VIXLevel < 15 || rec.VIXLevel > 40 {
			result.Warnings = append(result.Warnings, "market conditions not optimal")
		}
	}
	return result
}

// PositionSize returns contracts to trade, the minimum of risk-based
// and capital-based sizing capped at MaxPositionSize.
func (m *Manager) PositionSize(s *models.StrategyStructure, account *models.AccountInfo) int {
	if s.MaxLoss <= 0 {
		return 0
	}
	accountValue := account.NetLiquidation
	available := account.AvailableFunds
	if available <= 0 {
		available = accountValue * 0.8
	}

	maxRisk := accountValue * m.limits.RiskPerTradePct
	riskBased := int(maxRisk / s.MaxLoss)

	requiredCapital := s.MaxLoss * m.limits.MarginMultiplier
	capitalBased := int(available / requiredCapital)

	size := riskBased
	if capitalBased < size {
		size = capitalBased
	}
	if size > m.limits.MaxPositionSize {
		size = m.limits.MaxPositionSize
	}
	if size < 0 {
		size = 0
	}
	return size
}

func (m *Manager) withinDailyLimits() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.dailyPnL <= -m.limits.MaxDailyLoss {
		return false
	}
	if m.tradesToday >= m.limits.MaxTradesPerDay {
		return false
	}
	return true
}

func (m *Manager) withinConcentration(s *models.StrategyStructure, positions []models.Position) bool {
	same := 0
	for _, p := range positions {
		if p.Kind == s.Kind {
			same++
		}
	}
	if same >= m.limits.MaxSameStrategy {
		return false
	}
	return len(positions) < m.limits.MaxOpenPositions
}

// RecordTrade registers a filled trade against the daily counters.
func (m *Manager) RecordTrade() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tradesToday++
	m.logger.Info().Int("trades_today", m.tradesToday).Msg("trade recorded")
}

// RecordPnL applies a realized P&L change to the daily total.
func (m *Manager) RecordPnL(change float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dailyPnL += change
	m.logger.Info().Float64("daily_pnl", m.dailyPnL).Msg("daily pnl updated")
}

// ResetDaily clears the daily counters at the start of a trading day.
func (m *Manager) ResetDaily() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dailyPnL = 0
	m.tradesToday = 0
	m.logger.Info().Msg("daily metrics reset")
}

// ShouldStopTrading reports whether trading must halt for the day,
// with the triggering reason.
func (m *Manager) ShouldStopTrading(account *models.AccountInfo) (bool, string) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.dailyPnL <= -m.limits.MaxDailyLoss {
		return true, "daily loss limit reached"
	}
	if m.tradesToday >= m.limits.MaxTradesPerDay {
		return true, "daily trade limit reached"
	}
	if account != nil && account.NetLiquidation > 0 && m.dailyPnL < 0 {
		drawdown := -m.dailyPnL / account.NetLiquidation * 100
		if drawdown >= m.limits.MaxDrawdownPct {
			return true, fmt.Sprintf("daily drawdown limit reached: %.1f%%", drawdown)
		}
	}
	return false, "trading can continue"
}

// RiskSummary returns the current daily state for reporting.
func (m *Manager) RiskSummary(account *models.AccountInfo, positions []models.Position) Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := Summary{
		DailyPnL:            m.dailyPnL,
		TradesToday:         m.tradesToday,
		DailyLimitRemaining: m.limits.MaxDailyLoss + math.Min(m.dailyPnL, 0),
		TradesRemaining:     m.limits.MaxTradesPerDay - m.tradesToday,
		OpenPositions:       len(positions),
	}
	if account != nil {
		s.AccountValue = account.NetLiquidation
		if account.NetLiquidation > 0 {
			s.DailyRiskPercent = math.Abs(m.dailyPnL) / account.NetLiquidation * 100
		}
	}
	return s
}
