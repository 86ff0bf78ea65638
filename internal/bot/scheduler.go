package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"spx-trader/internal/config"
	"spx-trader/internal/logging"
)

// Scheduler drives the bot through the trading day: a daily reset at
// market open, the analysis-and-trade cycle at the configured time,
// periodic position monitoring during market hours, and end-of-day
// cleanup at the close.
type Scheduler struct {
	bot      *Bot
	logger   zerolog.Logger
	location *time.Location

	marketOpen   timeOfDay
	marketClose  timeOfDay
	analysisTime timeOfDay
	monitorEvery time.Duration
}

type timeOfDay struct {
	hour, minute int
}

func parseTimeOfDay(s string) (timeOfDay, error) {
	var t timeOfDay
	if _, err := fmt.Sscanf(s, "%d:%d", &t.hour, &t.minute); err != nil {
		return t, fmt.Errorf("invalid time %q: %w", s, err)
	}
	if t.hour < 0 || t.hour > 23 || t.minute < 0 || t.minute > 59 {
		return t, fmt.Errorf("time %q out of range", s)
	}
	return t, nil
}

func (t timeOfDay) on(day time.Time, loc *time.Location) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), t.hour, t.minute, 0, 0, loc)
}

// NewScheduler creates a Scheduler from the schedule configuration.
func NewScheduler(b *Bot, cfg config.ScheduleConfig, logger zerolog.Logger) (*Scheduler, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", cfg.Timezone, err)
	}

	open, err := parseTimeOfDay(cfg.MarketOpen)
	if err != nil {
		return nil, err
	}
	close_, err := parseTimeOfDay(cfg.MarketClose)
	if err != nil {
		return nil, err
	}
	analysis, err := parseTimeOfDay(cfg.AnalysisTime)
	if err != nil {
		return nil, err
	}

	return &Scheduler{
		bot:          b,
		logger:       logging.WithComponent(logger, "scheduler"),
		location:     loc,
		marketOpen:   open,
		marketClose:  close_,
		analysisTime: analysis,
		monitorEvery: time.Duration(cfg.MonitorIntervalMin) * time.Minute,
	}, nil
}

// IsTradingDay reports whether the given time falls on a weekday.
func (s *Scheduler) IsTradingDay(t time.Time) bool {
	wd := t.In(s.location).Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// InMarketHours reports whether the given time is within market hours
// on a trading day.
func (s *Scheduler) InMarketHours(t time.Time) bool {
	if !s.IsTradingDay(t) {
		return false
	}
	local := t.In(s.location)
	open := s.marketOpen.on(local, s.location)
	close_ := s.marketClose.on(local, s.location)
	return !local.Before(open) && local.Before(close_)
}

// Run blocks, firing the daily schedule until the context is canceled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info().
		Str("analysis_time", fmt.Sprintf("%02d:%02d", s.analysisTime.hour, s.analysisTime.minute)).
		Dur("monitor_interval", s.monitorEvery).
		Msg("scheduler started")

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	var lastReset, lastAnalysis, lastEOD string
	var lastMonitor time.Time

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("scheduler stopped")
			return ctx.Err()
		case now := <-ticker.C:
			local := now.In(s.location)
			if !s.IsTradingDay(local) {
				continue
			}
			day := local.Format("2006-01-02")

			if s.due(local, s.marketOpen) && lastReset != day {
				lastReset = day
				s.bot.ResetDaily()
				s.logger.Info().Msg("daily reset")
			}

			if s.due(local, s.analysisTime) && lastAnalysis != day {
				lastAnalysis = day
				if _, err := s.bot.RunCycle(ctx, now); err != nil {
					s.logger.Error().Err(err).Msg("decision cycle failed")
				}
			}

			if s.InMarketHours(local) && now.Sub(lastMonitor) >= s.monitorEvery {
				lastMonitor = now
				if err := s.bot.MonitorPositions(ctx); err != nil {
					s.logger.Error().Err(err).Msg("position monitoring failed")
				}
			}

			if s.due(local, s.marketClose) && lastEOD != day {
				lastEOD = day
				if err := s.bot.EndOfDay(ctx, now); err != nil {
					s.logger.Error().Err(err).Msg("end-of-day cleanup failed")
				}
			}
		}
	}
}

// due reports whether the local time has reached the given time of
// day. Combined with the per-day guards above, each task fires once.
func (s *Scheduler) due(local time.Time, t timeOfDay) bool {
	target := t.on(local, s.location)
	return !local.Before(target)
}
