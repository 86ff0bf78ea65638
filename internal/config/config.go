// Package config provides configuration management for the trading application.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"

	"spx-trader/internal/risk"
	"spx-trader/internal/strategy"
)

// Config holds all application configuration.
type Config struct {
	Trading       TradingConfig      `mapstructure:"trading"`
	Strategy      StrategyConfig     `mapstructure:"strategy"`
	Risk          RiskConfig         `mapstructure:"risk"`
	Schedule      ScheduleConfig     `mapstructure:"schedule"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Logging       LoggingConfig      `mapstructure:"logging"`
	Store         StoreConfig        `mapstructure:"store"`
}

// TradingConfig holds trading-related configuration.
type TradingConfig struct {
	Mode   string `mapstructure:"mode"`   // "live", "paper"
	Symbol string `mapstructure:"symbol"` // underlying index symbol
}

// StrategyConfig holds spread construction parameters.
type StrategyConfig struct {
	SpreadWidth          float64 `mapstructure:"spread_width"`
	CondorWingWidth      float64 `mapstructure:"condor_wing_width"`
	DiagonalOffset       float64 `mapstructure:"diagonal_offset"`
	DiagonalLongDays     int     `mapstructure:"diagonal_long_days"`
	TargetDelta          float64 `mapstructure:"target_delta"`
	TargetCondorDelta    float64 `mapstructure:"target_condor_delta"`
	DiagonalDelta        float64 `mapstructure:"diagonal_delta"`
	MinCredit            float64 `mapstructure:"min_credit"`
	MinCondorCredit      float64 `mapstructure:"min_condor_credit"`
	MinProbability       float64 `mapstructure:"min_probability"`
	MinCondorProbability float64 `mapstructure:"min_condor_probability"`
	MaxRiskPerTrade      float64 `mapstructure:"max_risk_per_trade"`
}

// RiskConfig holds risk management configuration.
type RiskConfig struct {
	MaxDailyLoss    float64 `mapstructure:"max_daily_loss"`
	MaxPositionSize int     `mapstructure:"max_position_size"`
	MaxTradesPerDay int     `mapstructure:"max_trades_per_day"`
	MaxDrawdownPct  float64 `mapstructure:"max_drawdown_percent"`
	RiskPerTradePct float64 `mapstructure:"risk_per_trade_percent"`
}

// ScheduleConfig holds the daily schedule, in the exchange-local
// timezone given by Timezone.
type ScheduleConfig struct {
	Timezone           string `mapstructure:"timezone"`
	MarketOpen         string `mapstructure:"market_open"`
	MarketClose        string `mapstructure:"market_close"`
	AnalysisTime       string `mapstructure:"analysis_time"`
	MonitorIntervalMin int    `mapstructure:"monitor_interval_minutes"`
}

// NotificationConfig holds notification configuration.
type NotificationConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Email    EmailConfig    `mapstructure:"email"`
	Slack    SlackConfig    `mapstructure:"slack"`
}

// TelegramConfig holds Telegram notification configuration.
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

// EmailConfig holds email notification configuration.
type EmailConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	To       string `mapstructure:"to"`
}

// SlackConfig holds Slack webhook notification configuration.
type SlackConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	WebhookURL string `mapstructure:"webhook_url"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Console    bool   `mapstructure:"console"`
}

// StoreConfig holds database configuration.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/spx-trader"
	}
	return filepath.Join(home, ".config", "spx-trader")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{}
	if err := loadConfigFile(configDir, "config", cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if cfg.Logging.File == "" {
		cfg.Logging.File = filepath.Join(configDir, "spx-trader.log")
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = filepath.Join(configDir, "spx-trader.db")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadConfigFile(configDir, name string, target interface{}) error {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	setDefaults(v, configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return createTemplateConfig(configDir, name)
		}
		return err
	}

	return v.Unmarshal(target)
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("trading.mode", "paper")
	v.SetDefault("trading.symbol", "SPX")

	v.SetDefault("strategy.spread_width", 10.0)
	v.SetDefault("strategy.condor_wing_width", 30.0)
	v.SetDefault("strategy.diagonal_offset", 20.0)
	v.SetDefault("strategy.diagonal_long_days", 7)
	v.SetDefault("strategy.target_delta", 0.15)
	v.SetDefault("strategy.target_condor_delta", 0.10)
	v.SetDefault("strategy.diagonal_delta", 0.25)
	v.SetDefault("strategy.min_credit", 2.0)
	v.SetDefault("strategy.min_condor_credit", 5.0)
	v.SetDefault("strategy.min_probability", 0.70)
	v.SetDefault("strategy.min_condor_probability", 0.65)
	v.SetDefault("strategy.max_risk_per_trade", 1000.0)

	v.SetDefault("risk.max_daily_loss", 5000.0)
	v.SetDefault("risk.max_position_size", 10)
	v.SetDefault("risk.max_trades_per_day", 5)
	v.SetDefault("risk.max_drawdown_percent", 5.0)
	v.SetDefault("risk.risk_per_trade_percent", 0.02)

	v.SetDefault("schedule.timezone", "America/Los_Angeles")
	v.SetDefault("schedule.market_open", "06:30")
	v.SetDefault("schedule.market_close", "16:00")
	v.SetDefault("schedule.analysis_time", "07:00")
	v.SetDefault("schedule.monitor_interval_minutes", 30)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", filepath.Join(configDir, "spx-trader.log"))
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age_days", 30)
	v.SetDefault("logging.console", true)

	v.SetDefault("store.path", filepath.Join(configDir, "spx-trader.db"))
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TRADING_MODE"); v != "" {
		cfg.Trading.Mode = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Notifications.Telegram.ChatID = v
	}
	if v := os.Getenv("SLACK_WEBHOOK_URL"); v != "" {
		cfg.Notifications.Slack.WebhookURL = v
	}
	if v := os.Getenv("EMAIL_USER"); v != "" {
		cfg.Notifications.Email.Username = v
	}
	if v := os.Getenv("EMAIL_PASSWORD"); v != "" {
		cfg.Notifications.Email.Password = v
	}
	if v := os.Getenv("SMTP_SERVER"); v != "" {
		cfg.Notifications.Email.SMTPHost = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Notifications.Email.SMTPPort = port
		}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Trading.Mode != "" && c.Trading.Mode != "live" && c.Trading.Mode != "paper" {
		return fmt.Errorf("invalid trading mode: %s (must be 'live' or 'paper')", c.Trading.Mode)
	}
	if c.Strategy.SpreadWidth <= 0 {
		return fmt.Errorf("spread_width must be positive")
	}
	if c.Strategy.TargetDelta <= 0 || c.Strategy.TargetDelta >= 0.5 {
		return fmt.Errorf("target_delta must be in (0, 0.5)")
	}
	if c.Strategy.MinProbability <= 0 || c.Strategy.MinProbability > 1 {
		return fmt.Errorf("min_probability must be in (0, 1]")
	}
	if c.Risk.MaxDailyLoss < 0 {
		return fmt.Errorf("max_daily_loss must be non-negative")
	}
	if c.Schedule.MonitorIntervalMin <= 0 {
		return fmt.Errorf("monitor_interval_minutes must be positive")
	}
	return nil
}

// IsPaperMode returns true if paper trading mode is enabled.
func (c *Config) IsPaperMode() bool {
	return c.Trading.Mode != "live"
}

// StrategyParams converts the strategy section to engine parameters.
func (c *Config) StrategyParams() strategy.Params {
	return strategy.Params{
		SpreadWidth:          c.Strategy.SpreadWidth,
		CondorWingWidth:      c.Strategy.CondorWingWidth,
		DiagonalOffset:       c.Strategy.DiagonalOffset,
		DiagonalLongDays:     c.Strategy.DiagonalLongDays,
		TargetDelta:          c.Strategy.TargetDelta,
		TargetCondorDelta:    c.Strategy.TargetCondorDelta,
		DiagonalDelta:        c.Strategy.DiagonalDelta,
		MinCredit:            c.Strategy.MinCredit,
		MinCondorCredit:      c.Strategy.MinCondorCredit,
		MinProbability:       c.Strategy.MinProbability,
		MinCondorProbability: c.Strategy.MinCondorProbability,
		MaxRiskPerTrade:      c.Strategy.MaxRiskPerTrade,
	}
}

// RiskLimits converts the risk section to risk manager limits.
func (c *Config) RiskLimits() risk.Limits {
	limits := risk.DefaultLimits()
	limits.MaxDailyLoss = c.Risk.MaxDailyLoss
	limits.MaxPositionSize = c.Risk.MaxPositionSize
	limits.MaxTradesPerDay = c.Risk.MaxTradesPerDay
	limits.MaxDrawdownPct = c.Risk.MaxDrawdownPct
	limits.RiskPerTradePct = c.Risk.RiskPerTradePct
	limits.MinProbability = c.Strategy.MinProbability
	return limits
}
