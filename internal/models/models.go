// Package models provides domain models for the trading application.
package models

import (
	"errors"
	"time"
)

// Direction represents the classified market direction for a trading day.
type Direction string

const (
	DirectionBullish  Direction = "BULLISH"
	DirectionBearish  Direction = "BEARISH"
	DirectionSideways Direction = "SIDEWAYS"
	DirectionUnknown  Direction = "UNKNOWN"
)

// Valid reports whether the direction is one of the four known values.
func (d Direction) Valid() bool {
	switch d {
	case DirectionBullish, DirectionBearish, DirectionSideways, DirectionUnknown:
		return true
	}
	return false
}

// OptionRight represents the right of an option contract.
type OptionRight string

const (
	RightPut  OptionRight = "PUT"
	RightCall OptionRight = "CALL"
)

// OrderSide represents the side of an order leg.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

// MarketStatus represents the current market status.
type MarketStatus string

const (
	MarketOpen    MarketStatus = "OPEN"
	MarketPreOpen MarketStatus = "PRE_OPEN"
	MarketClosed  MarketStatus = "CLOSED"
)

// Candle represents OHLCV data for a time period.
type Candle struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}

// Snapshot validation errors.
var (
	ErrSnapshotNil       = errors.New("snapshot is nil")
	ErrSnapshotDirection = errors.New("snapshot direction is not a known value")
	ErrSnapshotSpot      = errors.New("snapshot spot price must be positive")
	ErrSnapshotVIX       = errors.New("snapshot VIX level must be positive")
	ErrSnapshotRSI       = errors.New("snapshot RSI must be within [0, 100]")
	ErrSnapshotVolume    = errors.New("snapshot volume ratio must be non-negative")
)

// MarketSnapshot captures the market state for one decision cycle.
// It is produced once per cycle by the market analyzer and treated as
// read-only by every downstream component.
type MarketSnapshot struct {
	Timestamp   time.Time
	Direction   Direction
	SpotPrice   float64 // SPX level
	VIXLevel    float64
	RSI         float64 // [0, 100]
	MACD        float64
	BBPosition  float64 // 0 = at lower band, 1 = at upper band
	VolumeRatio float64 // recent volume / average volume
}

// Validate reports whether the snapshot carries everything the strategy
// selector needs. A failed snapshot aborts the cycle with no trade.
func (s *MarketSnapshot) Validate() error {
	if s == nil {
		return ErrSnapshotNil
	}
	if !s.Direction.Valid() {
		return ErrSnapshotDirection
	}
	if s.SpotPrice <= 0 {
		return ErrSnapshotSpot
	}
	// A zero VIX is never a real print; it encodes a missing level.
	if s.VIXLevel <= 0 {
		return ErrSnapshotVIX
	}
	if s.RSI < 0 || s.RSI > 100 {
		return ErrSnapshotRSI
	}
	if s.VolumeRatio < 0 {
		return ErrSnapshotVolume
	}
	return nil
}

// AccountInfo holds the account values used for position sizing.
type AccountInfo struct {
	NetLiquidation float64
	AvailableFunds float64
}
