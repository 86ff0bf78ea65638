package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"spx-trader/internal/analysis"
	"spx-trader/internal/bot"
	"spx-trader/internal/models"
	"spx-trader/internal/risk"
	"spx-trader/internal/store"
	"spx-trader/internal/strategy"
	"spx-trader/pkg/utils"
)

func newAnalyzeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Run market analysis and show the current snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx := cmd.Context()
			now := time.Now()

			analyzer := analysis.NewAnalyzer(app.Logger)
			from := now.AddDate(0, 0, -120)

			spx, err := app.Data.SPXCandles(ctx, from, now)
			if err != nil {
				return err
			}
			vix, err := app.Data.VIXCandles(ctx, from, now)
			if err != nil {
				return err
			}

			snap, err := analyzer.Snapshot(spx, vix, now)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(snap)
			}

			color.Cyan("📊 SPX Market Analysis - %s", now.Format("2006-01-02"))
			output.Println()
			output.Printf("  Direction:    %s\n", output.Direction(string(snap.Direction)))
			output.Printf("  SPX:          %s\n", utils.FormatDollars(snap.SpotPrice))
			output.Printf("  VIX:          %.2f\n", snap.VIXLevel)
			output.Printf("  RSI:          %.1f\n", snap.RSI)
			output.Printf("  MACD:         %.3f\n", snap.MACD)
			output.Printf("  BB Position:  %.2f\n", snap.BBPosition)
			output.Printf("  Volume Ratio: %.2f\n", snap.VolumeRatio)
			return nil
		},
	}
}

func newRecommendCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "recommend",
		Short: "Generate strategy recommendations without trading",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx := cmd.Context()
			now := time.Now()

			analyzer := analysis.NewAnalyzer(app.Logger)
			selector := strategy.NewSelector(app.Config.StrategyParams(), app.Logger)

			from := now.AddDate(0, 0, -120)
			spx, err := app.Data.SPXCandles(ctx, from, now)
			if err != nil {
				return err
			}
			vix, err := app.Data.VIXCandles(ctx, from, now)
			if err != nil {
				return err
			}

			snap, err := analyzer.Snapshot(spx, vix, now)
			if err != nil {
				return err
			}

			rate, err := app.Rates.RiskFreeRate(ctx)
			if err != nil {
				rate = 0.05
			}

			recs := selector.GenerateRecommendations(snap, spx, now, rate)

			if output.IsJSON() {
				return output.JSON(recs)
			}

			color.Cyan("🎯 Strategy Recommendations - %s", now.Format("2006-01-02"))
			output.Println()
			if len(recs) == 0 {
				output.Warning("No trade recommendations today (direction: %s)", snap.Direction)
				return nil
			}
			for i := range recs {
				output.Println(strategy.FormatSummary(recs[i]))
			}
			return nil
		},
	}
}

func newRunCmd(app *App) *cobra.Command {
	var live bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the trading bot on the daily schedule",
		Long: `Starts the scheduler: daily reset at market open, market analysis
and trading at the configured analysis time, position monitoring during
market hours, and end-of-day cleanup at the close.

Runs in paper mode unless --live is given and the configured mode is live.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			isPaper := !live || app.Config.IsPaperMode()
			if isPaper {
				color.Yellow("📝 Paper trading mode")
			} else {
				color.Red("🔴 LIVE trading mode")
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			if err := app.Broker.Connect(ctx); err != nil {
				return err
			}
			defer app.Broker.Disconnect(context.Background())

			b := app.newBot(isPaper)
			sched, err := bot.NewScheduler(b, app.Config.Schedule, app.Logger)
			if err != nil {
				return err
			}

			output.Info("Scheduler running, press Ctrl-C to stop")
			if err := sched.Run(ctx); err != nil && err != context.Canceled {
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&live, "live", false, "allow live trading (requires trading.mode = \"live\")")
	return cmd
}

func newRiskCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "risk",
		Short: "Show the current risk summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx := cmd.Context()

			riskMgr := risk.NewManager(app.Config.RiskLimits(), app.Logger)

			var account *models.AccountInfo
			var positions []models.Position
			if !app.Broker.IsConnected() {
				_ = app.Broker.Connect(ctx)
			}
			account, _ = app.Broker.AccountInfo(ctx)
			positions, _ = app.Broker.Positions(ctx)

			// Seed daily counters from today's persisted metrics.
			if app.Store != nil {
				if m, err := app.Store.GetDailyMetrics(ctx, time.Now().Format("2006-01-02")); err == nil {
					riskMgr.RecordPnL(m.RealizedPnL)
					for i := 0; i < m.TradeCount; i++ {
						riskMgr.RecordTrade()
					}
				}
			}

			summary := riskMgr.RiskSummary(account, positions)

			if output.IsJSON() {
				return output.JSON(summary)
			}

			color.Cyan("🛡  Risk Summary")
			output.Println()
			output.Printf("  Daily P&L:        %s\n", output.FormatPnL(summary.DailyPnL))
			output.Printf("  Trades Today:     %d\n", summary.TradesToday)
			output.Printf("  Loss Limit Left:  %s\n", utils.FormatDollars(summary.DailyLimitRemaining))
			output.Printf("  Trades Remaining: %d\n", summary.TradesRemaining)
			if account != nil {
				output.Printf("  Account Value:    %s\n", utils.FormatDollars(summary.AccountValue))
				output.Printf("  Daily Risk:       %.2f%%\n", summary.DailyRiskPercent)
			}
			output.Printf("  Open Positions:   %d\n", summary.OpenPositions)

			if halted, reason := riskMgr.ShouldStopTrading(account); halted {
				output.Error("⛔ Trading halted: %s", reason)
			} else {
				output.Success("✓ Trading can continue")
			}
			return nil
		},
	}
}

func newTradesCmd(app *App) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "trades",
		Short: "List recent trades",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				output.Error("store unavailable")
				return nil
			}

			trades, err := app.Store.GetTrades(cmd.Context(), store.TradeFilter{Limit: limit})
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(trades)
			}

			color.Cyan("📒 Recent Trades")
			output.Println()
			if len(trades) == 0 {
				output.Dim("No trades recorded.")
				return nil
			}

			table := NewTable(output, "DATE", "STRATEGY", "QTY", "PREMIUM", "MAX LOSS", "PROB", "P&L", "STATUS")
			for _, t := range trades {
				table.AddRow(
					t.Timestamp.Format("2006-01-02"),
					string(t.Kind),
					utils.FormatQuantity(int64(t.Quantity)),
					utils.FormatDollars(t.NetPremium),
					utils.FormatDollars(t.MaxLoss),
					utils.FormatProbability(t.ProbProfit),
					output.FormatPnL(t.PnL),
					string(t.Status),
				)
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum trades to show")
	return cmd
}
