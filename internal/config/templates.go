package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# SPX 0DTE Trader Configuration

[trading]
# Trading mode: "live" or "paper"
mode = "paper"
# Underlying index symbol
symbol = "SPX"

[strategy]
# Vertical credit spread width in points
spread_width = 10.0
# Iron condor wing width in points
condor_wing_width = 30.0
# Diagonal long-call strike offset above the short strike, points
diagonal_offset = 20.0
# Diagonal long-leg expiry in calendar days
diagonal_long_days = 7
# Target short-strike delta for credit spreads
target_delta = 0.15
# Target short-strike delta for iron condors
target_condor_delta = 0.10
# Target short-call delta for diagonals
diagonal_delta = 0.25
# Minimum credit to collect on a spread
min_credit = 2.0
# Minimum credit to collect on an iron condor
min_condor_credit = 5.0
# Minimum probability of profit
min_probability = 0.70
# Minimum probability of profit for iron condors
min_condor_probability = 0.65
# Maximum risk per trade in dollars
max_risk_per_trade = 1000.0

[risk]
# Daily realized loss limit in dollars
max_daily_loss = 5000.0
# Maximum contracts per position
max_position_size = 10
# Maximum trades per day
max_trades_per_day = 5
# Daily drawdown limit as percent of account value
max_drawdown_percent = 5.0
# Fraction of account value risked per trade
risk_per_trade_percent = 0.02

[schedule]
# Exchange-local timezone
timezone = "America/Los_Angeles"
# Market hours
market_open = "06:30"
market_close = "16:00"
# Daily analysis and trade time
analysis_time = "07:00"
# Position monitoring interval during market hours
monitor_interval_minutes = 30

[notifications]
enabled = false

[notifications.telegram]
enabled = false
bot_token = ""
chat_id = ""

[notifications.email]
enabled = false
smtp_host = "smtp.gmail.com"
smtp_port = 587
username = ""
password = ""
from = ""
to = ""

[notifications.slack]
enabled = false
webhook_url = ""

[logging]
# Log level: trace, debug, info, warn, error
level = "info"
# Log file path (rotated)
file = ""
max_size_mb = 10
max_backups = 5
max_age_days = 30
# Also log to the console
console = true

[store]
# SQLite database path
path = ""
`

func createTemplateConfig(configDir, name string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, name+".toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return fmt.Errorf("config file not found, created template at %s", path)
}
