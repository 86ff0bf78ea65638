package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"spx-trader/internal/analysis"
	"spx-trader/internal/bot"
	"spx-trader/internal/broker"
	"spx-trader/internal/config"
	"spx-trader/internal/logging"
	"spx-trader/internal/marketdata"
	"spx-trader/internal/notify"
	"spx-trader/internal/risk"
	"spx-trader/internal/store"
	"spx-trader/internal/strategy"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2025-08-01"
)

// App holds the application dependencies.
type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Data     marketdata.Provider
	Rates    marketdata.RateSource
	Broker   broker.Broker
	Store    store.DataStore
	Notifier notify.Notifier
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config:   cfg,
		Logger:   logger,
		Data:     marketdata.NewSyntheticProvider(1),
		Rates:    marketdata.NewTreasuryRateSource(0.05),
		Notifier: notify.NewNoOpNotifier(),
	}

	if cfg.Notifications.Enabled {
		app.Notifier = notify.NewMultiNotifier(&cfg.Notifications)
		logger.Debug().Msg("notification channels initialized")
	}

	dataStore, err := store.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to initialize store, persistence disabled")
	} else {
		app.Store = dataStore
		logger.Debug().Str("path", cfg.Store.Path).Msg("SQLite store initialized")
	}

	app.Broker = broker.NewPaperBroker(100000)

	rootCmd := &cobra.Command{
		Use:   "spx-trader",
		Short: "SPX 0DTE options trading decision engine",
		Long: `spx-trader analyzes the SPX market each morning, classifies the
regime, and builds delta-targeted 0DTE option structures: put credit
spreads, call diagonals and iron condors.

Use 'spx-trader help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/spx-trader)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newAnalyzeCmd(app))
	rootCmd.AddCommand(newRecommendCmd(app))
	rootCmd.AddCommand(newRunCmd(app))
	rootCmd.AddCommand(newRiskCmd(app))
	rootCmd.AddCommand(newTradesCmd(app))

	return rootCmd
}

// newBot assembles the decision-cycle dependencies for a command run.
func (app *App) newBot(isPaper bool) *bot.Bot {
	analyzer := analysis.NewAnalyzer(app.Logger)
	selector := strategy.NewSelector(app.Config.StrategyParams(), app.Logger)
	riskMgr := risk.NewManager(app.Config.RiskLimits(), app.Logger)

	return bot.New(bot.Options{
		Analyzer: analyzer,
		Selector: selector,
		RiskMgr:  riskMgr,
		Data:     app.Data,
		Rates:    app.Rates,
		Broker:   app.Broker,
		Store:    app.Store,
		Notifier: app.Notifier,
		Logger:   app.Logger,
		IsPaper:  isPaper,
	})
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("spx-trader v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			return showConfig(output, app.Config)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("✓ Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) error {
	output.Bold("Trading Configuration")
	output.Printf("  Mode:              %s\n", cfg.Trading.Mode)
	output.Printf("  Symbol:            %s\n", cfg.Trading.Symbol)
	output.Println()

	output.Bold("Strategy Configuration")
	output.Printf("  Spread Width:      %.0f\n", cfg.Strategy.SpreadWidth)
	output.Printf("  Condor Wing Width: %.0f\n", cfg.Strategy.CondorWingWidth)
	output.Printf("  Target Delta:      %.2f\n", cfg.Strategy.TargetDelta)
	output.Printf("  Min Credit:        %.2f\n", cfg.Strategy.MinCredit)
	output.Printf("  Min Probability:   %.0f%%\n", cfg.Strategy.MinProbability*100)
	output.Printf("  Max Risk/Trade:    $%.0f\n", cfg.Strategy.MaxRiskPerTrade)
	output.Println()

	output.Bold("Risk Configuration")
	output.Printf("  Max Daily Loss:    $%.0f\n", cfg.Risk.MaxDailyLoss)
	output.Printf("  Max Position Size: %d\n", cfg.Risk.MaxPositionSize)
	output.Printf("  Max Trades/Day:    %d\n", cfg.Risk.MaxTradesPerDay)
	output.Println()

	output.Bold("Schedule")
	output.Printf("  Timezone:          %s\n", cfg.Schedule.Timezone)
	output.Printf("  Analysis Time:     %s\n", cfg.Schedule.AnalysisTime)
	output.Printf("  Market Hours:      %s - %s\n", cfg.Schedule.MarketOpen, cfg.Schedule.MarketClose)
	output.Println()

	output.Bold("Notifications")
	output.Printf("  Enabled:           %v\n", cfg.Notifications.Enabled)
	output.Printf("  Telegram:          %v\n", cfg.Notifications.Telegram.Enabled)
	output.Printf("  Email:             %v\n", cfg.Notifications.Email.Enabled)
	output.Printf("  Slack:             %v\n", cfg.Notifications.Slack.Enabled)

	return nil
}
