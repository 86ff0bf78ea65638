// Package bot wires the market analyzer, strategy selector, risk
// manager, broker and store into the daily decision cycle.
package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"spx-trader/internal/analysis"
	"spx-trader/internal/broker"
	"spx-trader/internal/errors"
	"spx-trader/internal/logging"
	"spx-trader/internal/marketdata"
	"spx-trader/internal/models"
	"spx-trader/internal/notify"
	"spx-trader/internal/risk"
	"spx-trader/internal/store"
	"spx-trader/internal/strategy"
)

// historyDays is how far back the analyzer's candle window reaches.
const historyDays = 120

// Bot orchestrates the daily decision cycle.
type Bot struct {
	analyzer *analysis.Analyzer
	selector *strategy.Selector
	riskMgr  *risk.Manager
	data     marketdata.Provider
	rates    marketdata.RateSource
	brk      broker.Broker
	store    store.DataStore
	notifier notify.Notifier
	logger   zerolog.Logger
	isPaper  bool
}

// Options bundles the bot's collaborators.
type Options struct {
	Analyzer *analysis.Analyzer
	Selector *strategy.Selector
	RiskMgr  *risk.Manager
	Data     marketdata.Provider
	Rates    marketdata.RateSource
	Broker   broker.Broker
	Store    store.DataStore
	Notifier notify.Notifier
	Logger   zerolog.Logger
	IsPaper  bool
}

// New creates a Bot.
func New(opts Options) *Bot {
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.NewNoOpNotifier()
	}
	return &Bot{
		analyzer: opts.Analyzer,
		selector: opts.Selector,
		riskMgr:  opts.RiskMgr,
		data:     opts.Data,
		rates:    opts.Rates,
		brk:      opts.Broker,
		store:    opts.Store,
		notifier: notifier,
		logger:   logging.WithComponent(opts.Logger, "bot"),
		isPaper:  opts.IsPaper,
	}
}

// CycleResult reports what one decision cycle produced.
type CycleResult struct {
	Snapshot        *models.MarketSnapshot
	Recommendations []models.Recommendation
	Trades          []*models.Trade
}

// RunCycle executes one full decision cycle: analyze the market,
// generate recommendations, validate them against risk limits and
// execute anything rated EXECUTE. The risk-free rate is read exactly
// once and used for every pricing call in the cycle.
func (b *Bot) RunCycle(ctx context.Context, now time.Time) (*CycleResult, error) {
	if halted, reason := b.riskMgr.ShouldStopTrading(nil); halted {
		b.logger.Warn().Str("reason", reason).Msg("cycle skipped, trading halted")
		return nil, errors.ErrTradingHalted
	}

	snap, candles, err := b.analyze(ctx, now)
	if err != nil {
		b.notifier.SendError(ctx, err, "market analysis")
		return nil, err
	}

	rate, err := b.rates.RiskFreeRate(ctx)
	if err != nil {
		rate = 0.05
	}

	recs := b.selector.GenerateRecommendations(snap, candles, now, rate)
	logging.LogCycle(b.logger, string(snap.Direction), snap.SpotPrice, snap.VIXLevel, len(recs))

	if b.store != nil {
		if err := b.store.SaveSnapshot(ctx, snap); err != nil {
			b.logger.Error().Err(err).Msg("failed to persist snapshot")
		}
		for i := range recs {
			if err := b.store.SaveRecommendation(ctx, &recs[i]); err != nil {
				b.logger.Error().Err(err).Msg("failed to persist recommendation")
			}
		}
	}

	result := &CycleResult{Snapshot: snap, Recommendations: recs}
	for i := range recs {
		logging.LogRecommendation(b.logger, string(recs[i].Structure.Kind), string(recs[i].Action),
			recs[i].Structure.NetPremium, recs[i].Structure.ProbProfit)

		if recs[i].Action != models.ActionExecute {
			continue
		}
		trade, err := b.execute(ctx, &recs[i], now)
		if err != nil {
			b.logger.Error().Err(err).Msg("trade execution failed")
			b.notifier.SendError(ctx, err, "trade execution")
			continue
		}
		if trade != nil {
			result.Trades = append(result.Trades, trade)
		}
	}

	if err := b.notifier.SendAnalysis(ctx, snap, recs); err != nil {
		b.logger.Warn().Err(err).Msg("analysis notification failed")
	}

	return result, nil
}

// analyze fetches candle history and assembles the snapshot.
func (b *Bot) analyze(ctx context.Context, now time.Time) (*models.MarketSnapshot, []models.Candle, error) {
	from := now.AddDate(0, 0, -historyDays)

	spx, err := b.data.SPXCandles(ctx, from, now)
	if err != nil {
		return nil, nil, errors.Wrap(err, "fetching SPX candles")
	}
	vix, err := b.data.VIXCandles(ctx, from, now)
	if err != nil {
		return nil, nil, errors.Wrap(err, "fetching VIX candles")
	}

	if b.store != nil {
		if err := b.store.SaveCandles(ctx, "SPX", spx); err != nil {
			b.logger.Warn().Err(err).Msg("failed to persist SPX candles")
		}
	}

	snap, err := b.analyzer.Snapshot(spx, vix, now)
	if err != nil {
		return nil, nil, err
	}
	return snap, spx, nil
}

// execute validates and places one recommendation.
func (b *Bot) execute(ctx context.Context, rec *models.Recommendation, now time.Time) (*models.Trade, error) {
	account, err := b.brk.AccountInfo(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "fetching account info")
	}
	positions, err := b.brk.Positions(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "fetching positions")
	}

	validation := b.riskMgr.ValidateRecommendation(rec, account, positions)
	for _, w := range validation.Warnings {
		b.logger.Warn().Str("warning", w).Msg("risk warning")
	}
	if !validation.Approved {
		b.logger.Info().Strs("reasons", validation.Reasons).Msg("trade rejected by risk manager")
		return nil, nil
	}

	order := buildOrder(rec.Structure, validation.RecommendedSize, now)
	res, err := b.brk.PlaceSpread(ctx, order)
	if err != nil {
		return nil, errors.Wrap(err, "placing spread order")
	}

	trade := &models.Trade{
		ID:         res.TradeID,
		Timestamp:  now,
		Kind:       rec.Structure.Kind,
		Quantity:   order.Quantity,
		NetPremium: rec.Structure.NetPremium,
		MaxProfit:  rec.Structure.MaxProfit,
		MaxLoss:    rec.Structure.MaxLoss,
		ProbProfit: rec.Structure.ProbProfit,
		Strikes:    strikesOf(rec.Structure),
		Expiry:     rec.Structure.Expiry,
		IsPaper:    b.isPaper,
		Status:     res.Status,
	}

	b.riskMgr.RecordTrade()
	logging.LogTrade(b.logger, trade.ID, string(trade.Kind), trade.Quantity, trade.NetPremium)

	if b.store != nil {
		if err := b.store.LogTrade(ctx, trade); err != nil {
			b.logger.Error().Err(err).Msg("failed to persist trade")
		}
	}
	if err := b.notifier.SendTrade(ctx, trade); err != nil {
		b.logger.Warn().Err(err).Msg("trade notification failed")
	}

	return trade, nil
}

// buildOrder converts a structure into a multi-leg spread order.
func buildOrder(st *models.StrategyStructure, quantity int, now time.Time) *models.SpreadOrder {
	if quantity < 1 {
		quantity = 1
	}
	order := &models.SpreadOrder{
		ID:        fmt.Sprintf("ORD_%d", now.UnixNano()),
		Kind:      st.Kind,
		Quantity:  quantity,
		LimitNet:  st.NetPremium,
		Submitted: now,
	}

	switch st.Kind {
	case models.KindPutCreditSpread:
		order.Legs = []models.OptionLeg{st.CreditSpread.ShortLeg, st.CreditSpread.LongLeg}
	case models.KindCallDiagonal:
		order.Legs = []models.OptionLeg{st.Diagonal.ShortLeg, st.Diagonal.LongLeg}
	case models.KindIronCondor:
		order.Legs = []models.OptionLeg{st.Condor.ShortPut, st.Condor.LongPut, st.Condor.ShortCall, st.Condor.LongCall}
	}
	return order
}

func strikesOf(st *models.StrategyStructure) []float64 {
	switch st.Kind {
	case models.KindPutCreditSpread:
		return []float64{st.CreditSpread.ShortLeg.Strike, st.CreditSpread.LongLeg.Strike}
	case models.KindCallDiagonal:
		return []float64{st.Diagonal.ShortLeg.Strike, st.Diagonal.LongLeg.Strike}
	case models.KindIronCondor:
		return []float64{st.Condor.LongPut.Strike, st.Condor.ShortPut.Strike, st.Condor.ShortCall.Strike, st.Condor.LongCall.Strike}
	}
	return nil
}

// MonitorPositions marks open positions against current model prices
// and updates daily P&L bookkeeping.
func (b *Bot) MonitorPositions(ctx context.Context) error {
	positions, err := b.brk.Positions(ctx)
	if err != nil {
		return errors.Wrap(err, "fetching positions")
	}
	for _, pos := range positions {
		b.logger.Info().
			Str("trade_id", pos.TradeID).
			Str("strategy", string(pos.Kind)).
			Float64("entry_net", pos.EntryNet).
			Float64("open_pnl", pos.OpenPnL).
			Msg("open position")
	}
	return nil
}

// EndOfDay persists daily metrics and sends the daily summary.
func (b *Bot) EndOfDay(ctx context.Context, now time.Time) error {
	date := now.Format("2006-01-02")
	summary := b.riskMgr.RiskSummary(nil, nil)

	if b.store != nil {
		metrics := &models.DailyMetrics{
			Date:        date,
			RealizedPnL: summary.DailyPnL,
			TradeCount:  summary.TradesToday,
		}
		if err := b.store.SaveDailyMetrics(ctx, metrics); err != nil {
			b.logger.Error().Err(err).Msg("failed to persist daily metrics")
		}
	}

	daily := b.summarizeDay(ctx, now, summary)
	if err := b.notifier.SendDailySummary(ctx, daily); err != nil {
		b.logger.Warn().Err(err).Msg("daily summary notification failed")
	}
	return nil
}

func (b *Bot) summarizeDay(ctx context.Context, now time.Time, summary risk.Summary) *notify.DailySummary {
	daily := &notify.DailySummary{
		Date:        now.Format("2006-01-02"),
		TotalTrades: summary.TradesToday,
		TotalPnL:    summary.DailyPnL,
	}

	if b.store == nil {
		return daily
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	trades, err := b.store.GetTrades(ctx, store.TradeFilter{StartDate: dayStart, EndDate: now})
	if err != nil {
		return daily
	}

	for _, t := range trades {
		if t.PnL > 0 {
			daily.WinningTrades++
		} else if t.PnL < 0 {
			daily.LosingTrades++
		}
	}
	if daily.TotalTrades > 0 {
		daily.WinRate = float64(daily.WinningTrades) / float64(daily.TotalTrades) * 100
	}
	return daily
}

// ResetDaily clears risk counters at the start of the trading day.
func (b *Bot) ResetDaily() {
	b.riskMgr.ResetDaily()
}
