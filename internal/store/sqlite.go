// Package store provides data persistence implementations.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"spx-trader/internal/models"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Candles table for historical OHLCV data
	CREATE TABLE IF NOT EXISTS candles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		open REAL NOT NULL,
		high REAL NOT NULL,
		low REAL NOT NULL,
		close REAL NOT NULL,
		volume INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(symbol, timestamp)
	);

	-- Market snapshots captured at each decision cycle
	CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		direction TEXT NOT NULL,
		spot_price REAL NOT NULL,
		vix_level REAL NOT NULL,
		rsi REAL NOT NULL,
		macd REAL,
		bb_position REAL,
		volume_ratio REAL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Strategy recommendations
	CREATE TABLE IF NOT EXISTS recommendations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		strategy TEXT NOT NULL,
		action TEXT NOT NULL,
		score REAL,
		scored INTEGER DEFAULT 0,
		direction TEXT NOT NULL,
		vix_level REAL,
		rsi REAL,
		structure TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Trades table for executed or simulated trades
	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		timestamp DATETIME NOT NULL,
		strategy TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		net_premium REAL NOT NULL,
		max_profit REAL NOT NULL,
		max_loss REAL NOT NULL,
		prob_profit REAL NOT NULL,
		strikes TEXT,
		expiry DATETIME NOT NULL,
		is_paper INTEGER DEFAULT 0,
		pnl REAL DEFAULT 0,
		status TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Per-day risk bookkeeping
	CREATE TABLE IF NOT EXISTS daily_metrics (
		date TEXT PRIMARY KEY,
		realized_pnl REAL NOT NULL,
		trade_count INTEGER NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Create indexes for performance
	CREATE INDEX IF NOT EXISTS idx_candles_symbol ON candles(symbol);
	CREATE INDEX IF NOT EXISTS idx_candles_timestamp ON candles(timestamp);
	CREATE INDEX IF NOT EXISTS idx_snapshots_timestamp ON snapshots(timestamp);
	CREATE INDEX IF NOT EXISTS idx_recommendations_timestamp ON recommendations(timestamp);
	CREATE INDEX IF NOT EXISTS idx_recommendations_strategy ON recommendations(strategy);
	CREATE INDEX IF NOT EXISTS idx_trades_timestamp ON trades(timestamp);
	CREATE INDEX IF NOT EXISTS idx_trades_strategy ON trades(strategy);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveCandles saves candles to the database.
func (s *SQLiteStore) SaveCandles(ctx context.Context, symbol string, candles []models.Candle) error {
	if len(candles) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO candles (symbol, timestamp, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, c := range candles {
		_, err := stmt.ExecContext(ctx, symbol, c.Timestamp, c.Open, c.High, c.Low, c.Close, c.Volume)
		if err != nil {
			return fmt.Errorf("failed to insert candle: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetCandles retrieves candles from the database.
func (s *SQLiteStore) GetCandles(ctx context.Context, symbol string, from, to time.Time) ([]models.Candle, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT timestamp, open, high, low, close, volume
		FROM candles
		WHERE symbol = ? AND timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp ASC
	`, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query candles: %w", err)
	}
	defer rows.Close()

	var candles []models.Candle
	for rows.Next() {
		var c models.Candle
		if err := rows.Scan(&c.Timestamp, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, fmt.Errorf("failed to scan candle: %w", err)
		}
		candles = append(candles, c)
	}

	return candles, rows.Err()
}

// SaveSnapshot saves a market snapshot to the database.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, snap *models.MarketSnapshot) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (timestamp, direction, spot_price, vix_level, rsi, macd, bb_position, volume_ratio)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, snap.Timestamp, string(snap.Direction), snap.SpotPrice, snap.VIXLevel, snap.RSI, snap.MACD, snap.BBPosition, snap.VolumeRatio)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// GetSnapshots retrieves market snapshots in a time range.
func (s *SQLiteStore) GetSnapshots(ctx context.Context, from, to time.Time) ([]models.MarketSnapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT timestamp, direction, spot_price, vix_level, rsi, macd, bb_position, volume_ratio
		FROM snapshots
		WHERE timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp ASC
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []models.MarketSnapshot
	for rows.Next() {
		var snap models.MarketSnapshot
		var direction string
		if err := rows.Scan(&snap.Timestamp, &direction, &snap.SpotPrice, &snap.VIXLevel, &snap.RSI, &snap.MACD, &snap.BBPosition, &snap.VolumeRatio); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snap.Direction = models.Direction(direction)
		snaps = append(snaps, snap)
	}

	return snaps, rows.Err()
}

// SaveRecommendation saves a strategy recommendation. The full
// structure is stored as JSON alongside the queryable columns.
func (s *SQLiteStore) SaveRecommendation(ctx context.Context, rec *models.Recommendation) error {
	structure, err := json.Marshal(rec.Structure)
	if err != nil {
		return fmt.Errorf("failed to marshal structure: %w", err)
	}

	scored := 0
	if rec.Scored {
		scored = 1
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO recommendations (timestamp, strategy, action, score, scored, direction, vix_level, rsi, structure)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.GeneratedAt, string(rec.Structure.Kind), string(rec.Action), rec.Score, scored, string(rec.Direction), rec.VIXLevel, rec.RSI, string(structure))
	if err != nil {
		return fmt.Errorf("failed to save recommendation: %w", err)
	}
	return nil
}

// GetRecommendations retrieves recommendations from the database.
func (s *SQLiteStore) GetRecommendations(ctx context.Context, filter RecommendationFilter) ([]models.Recommendation, error) {
	query := "SELECT timestamp, action, score, scored, direction, vix_level, rsi, structure FROM recommendations WHERE 1=1"
	args := []interface{}{}

	if filter.Kind != "" {
		query += " AND strategy = ?"
		args = append(args, string(filter.Kind))
	}
	if filter.Action != "" {
		query += " AND action = ?"
		args = append(args, string(filter.Action))
	}
	if !filter.StartDate.IsZero() {
		query += " AND timestamp >= ?"
		args = append(args, filter.StartDate)
	}
	if !filter.EndDate.IsZero() {
		query += " AND timestamp <= ?"
		args = append(args, filter.EndDate)
	}

	query += " ORDER BY timestamp DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendations: %w", err)
	}
	defer rows.Close()

	var recs []models.Recommendation
	for rows.Next() {
		var rec models.Recommendation
		var action, direction, structureJSON string
		var scored int

		if err := rows.Scan(&rec.GeneratedAt, &action, &rec.Score, &scored, &direction, &rec.VIXLevel, &rec.RSI, &structureJSON); err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}

		rec.Structure = &models.StrategyStructure{}
		if err := json.Unmarshal([]byte(structureJSON), rec.Structure); err != nil {
			return nil, fmt.Errorf("failed to unmarshal structure: %w", err)
		}
		rec.Action = models.Action(action)
		rec.Direction = models.Direction(direction)
		rec.Scored = scored == 1
		recs = append(recs, rec)
	}

	return recs, rows.Err()
}

// LogTrade saves a trade to the database.
func (s *SQLiteStore) LogTrade(ctx context.Context, trade *models.Trade) error {
	strikes, _ := json.Marshal(trade.Strikes)
	isPaper := 0
	if trade.IsPaper {
		isPaper = 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trades (id, timestamp, strategy, quantity, net_premium, max_profit, max_loss, prob_profit, strikes, expiry, is_paper, pnl, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, trade.ID, trade.Timestamp, string(trade.Kind), trade.Quantity, trade.NetPremium, trade.MaxProfit, trade.MaxLoss, trade.ProbProfit, string(strikes), trade.Expiry, isPaper, trade.PnL, string(trade.Status))
	if err != nil {
		return fmt.Errorf("failed to log trade: %w", err)
	}
	return nil
}

// GetTrades retrieves trades from the database.
func (s *SQLiteStore) GetTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error) {
	query := "SELECT id, timestamp, strategy, quantity, net_premium, max_profit, max_loss, prob_profit, strikes, expiry, is_paper, pnl, status FROM trades WHERE 1=1"
	args := []interface{}{}

	if filter.Kind != "" {
		query += " AND strategy = ?"
		args = append(args, string(filter.Kind))
	}
	if !filter.StartDate.IsZero() {
		query += " AND timestamp >= ?"
		args = append(args, filter.StartDate)
	}
	if !filter.EndDate.IsZero() {
		query += " AND timestamp <= ?"
		args = append(args, filter.EndDate)
	}
	if filter.IsPaper != nil {
		isPaper := 0
		if *filter.IsPaper {
			isPaper = 1
		}
		query += " AND is_paper = ?"
		args = append(args, isPaper)
	}

	query += " ORDER BY timestamp DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	var trades []models.Trade
	for rows.Next() {
		var t models.Trade
		var kind, status, strikesJSON string
		var isPaper int

		if err := rows.Scan(&t.ID, &t.Timestamp, &kind, &t.Quantity, &t.NetPremium, &t.MaxProfit, &t.MaxLoss, &t.ProbProfit, &strikesJSON, &t.Expiry, &isPaper, &t.PnL, &status); err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}

		json.Unmarshal([]byte(strikesJSON), &t.Strikes)
		t.Kind = models.StrategyKind(kind)
		t.Status = models.OrderStatus(status)
		t.IsPaper = isPaper == 1
		trades = append(trades, t)
	}

	return trades, rows.Err()
}

// UpdateTradePnL updates the realized P&L and status of a trade.
func (s *SQLiteStore) UpdateTradePnL(ctx context.Context, tradeID string, pnl float64, status models.OrderStatus) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE trades SET pnl = ?, status = ? WHERE id = ?
	`, pnl, string(status), tradeID)
	if err != nil {
		return fmt.Errorf("failed to update trade: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("trade %s not found", tradeID)
	}
	return nil
}

// SaveDailyMetrics upserts the per-day risk bookkeeping row.
func (s *SQLiteStore) SaveDailyMetrics(ctx context.Context, metrics *models.DailyMetrics) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO daily_metrics (date, realized_pnl, trade_count, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
	`, metrics.Date, metrics.RealizedPnL, metrics.TradeCount)
	if err != nil {
		return fmt.Errorf("failed to save daily metrics: %w", err)
	}
	return nil
}

// GetDailyMetrics retrieves the metrics row for a date (YYYY-MM-DD).
func (s *SQLiteStore) GetDailyMetrics(ctx context.Context, date string) (*models.DailyMetrics, error) {
	var m models.DailyMetrics
	err := s.db.QueryRowContext(ctx, `
		SELECT date, realized_pnl, trade_count FROM daily_metrics WHERE date = ?
	`, date).Scan(&m.Date, &m.RealizedPnL, &m.TradeCount)
	if err == sql.ErrNoRows {
		return &models.DailyMetrics{Date: date}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get daily metrics: %w", err)
	}
	return &m, nil
}
