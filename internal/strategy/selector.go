package strategy

import (
	"math"
	"time"

	"github.com/rs/zerolog"

	"spx-trader/internal/models"
)

// Selector enumerates, filters and scores candidate structures for one
// decision cycle. It is a pure function of the snapshot it is handed:
// the only state it carries are its parameters and a logger. Malformed
// input degrades to "no trade today"; the selector never panics and
// never returns an error.
type Selector struct {
	params  Params
	builder *Builder
	logger  zerolog.Logger
}

// NewSelector creates a Selector.
func NewSelector(params Params, logger zerolog.Logger) *Selector {
	return &Selector{
		params:  params,
		builder: NewBuilder(params),
		logger:  logger.With().Str("component", "selector").Logger(),
	}
}

// GenerateRecommendations runs the direction-gated selection for one
// snapshot. Candles feed the volatility estimate and may be nil; the
// risk-free rate is snapshotted by the caller once per cycle and
// threaded down into every pricing call. Recommendations are ordered
// by selection priority, primary strategy first.
func (s *Selector) GenerateRecommendations(snap *models.MarketSnapshot, candles []models.Candle, now time.Time, riskFreeRate float64) []models.Recommendation {
	if err := snap.Validate(); err != nil {
		s.logger.Warn().Err(err).Msg("invalid market snapshot, no trade today")
		return nil
	}

	vol := EstimateVolatility(candles, snap.VIXLevel)

	switch snap.Direction {
	case models.DirectionBullish:
		if rec, ok := s.putCreditSpread(snap, vol, now, riskFreeRate, s.params.MinProbability, false); ok {
			return []models.Recommendation{rec}
		}
		return nil

	case models.DirectionSideways:
		if rec, ok := s.ironCondor(snap, vol, now, riskFreeRate); ok {
			return []models.Recommendation{rec}
		}
		if rec, ok := s.callDiagonal(snap, vol, now, riskFreeRate); ok {
			return []models.Recommendation{rec}
		}
		// Last resort: credit spread at a lowered probability bar,
		// never auto-executed.
		if rec, ok := s.putCreditSpread(snap, vol, now, riskFreeRate, 0.60, true); ok {
			return []models.Recommendation{rec}
		}
		return nil

	case models.DirectionBearish:
		// Intentionally no bear-market strategy; see DESIGN.md.
		s.logger.Info().Msg("bearish direction, no strategy configured")
		return nil

	default:
		return nil
	}
}

// putCreditSpread builds and gates a put credit spread. forceMonitor
// marks the sideways fallback path, which is never auto-executed.
func (s *Selector) putCreditSpread(snap *models.MarketSnapshot, vol float64, now time.Time, riskFreeRate, minProb float64, forceMonitor bool) (models.Recommendation, bool) {
	st, err := s.builder.PutCreditSpread(snap, vol, now, riskFreeRate)
	if err != nil {
		s.logger.Warn().Err(err).Msg("put credit spread construction failed")
		return models.Recommendation{}, false
	}

	if st.NetPremium < s.params.MinCredit ||
		st.ProbProfit < minProb ||
		st.MaxLoss > s.params.MaxRiskPerTrade {
		s.logger.Debug().
			Float64("credit", st.NetPremium).
			Float64("prob", st.ProbProfit).
			Float64("max_loss", st.MaxLoss).
			Msg("put credit spread rejected by acceptance gates")
		return models.Recommendation{}, false
	}

	action := models.ActionMonitor
	if !forceMonitor && st.ProbProfit >= 0.75 {
		action = models.ActionExecute
	}

	return s.recommend(st, action, snap), true
}

// callDiagonal builds and gates a call diagonal.
func (s *Selector) callDiagonal(snap *models.MarketSnapshot, vol float64, now time.Time, riskFreeRate float64) (models.Recommendation, bool) {
	st, err := s.builder.CallDiagonal(snap, vol, now, riskFreeRate)
	if err != nil {
		s.logger.Warn().Err(err).Msg("call diagonal construction failed")
		return models.Recommendation{}, false
	}

	debit := -st.NetPremium
	shortTheta := st.Diagonal.ShortLeg.Greeks.Theta
	if debit > s.params.MaxRiskPerTrade*0.5 ||
		st.ProbProfit < 0.60 ||
		shortTheta >= -0.5 {
		s.logger.Debug().
			Float64("debit", debit).
			Float64("prob", st.ProbProfit).
			Float64("short_theta", shortTheta).
			Msg("call diagonal rejected by acceptance gates")
		return models.Recommendation{}, false
	}

	action := models.ActionMonitor
	if st.ProbProfit >= 0.65 {
		action = models.ActionExecute
	}

	return s.recommend(st, action, snap), true
}

// ironCondor runs the suitability pre-filter and the delta grid
// search, keeping the highest-scoring candidate that clears the
// minimum score.
func (s *Selector) ironCondor(snap *models.MarketSnapshot, vol float64, now time.Time, riskFreeRate float64) (models.Recommendation, bool) {
	if !s.condorSuitable(snap) {
		return models.Recommendation{}, false
	}

	var best *models.StrategyStructure
	bestScore := math.Inf(-1)

	for _, delta := range condorDeltaGrid {
		st, err := s.builder.IronCondor(snap, vol, delta, now, riskFreeRate)
		if err != nil {
			s.logger.Debug().Err(err).Float64("target_delta", delta).Msg("iron condor construction failed")
			continue
		}
		if st.NetPremium < s.params.MinCondorCredit {
			continue
		}

		score := ScoreCondor(st, snap)
		if score > bestScore {
			best, bestScore = st, score
		}
	}

	if best == nil || bestScore < minCondorScore {
		s.logger.Info().Float64("best_score", bestScore).Msg("no iron condor met the acceptance score")
		return models.Recommendation{}, false
	}

	if best.ProbProfit < s.params.MinCondorProbability ||
		best.MaxLoss > s.params.MaxRiskPerTrade ||
		math.Abs(best.NetDelta) > 0.1 ||
		best.NetTheta <= 0 {
		s.logger.Debug().
			Float64("prob", best.ProbProfit).
			Float64("max_loss", best.MaxLoss).
			Float64("net_delta", best.NetDelta).
			Float64("net_theta", best.NetTheta).
			Msg("best iron condor rejected by acceptance gates")
		return models.Recommendation{}, false
	}

	rec := s.recommend(best, condorAction(bestScore, best.ProbProfit), snap)
	rec.Score = bestScore
	rec.Scored = true
	return rec, true
}

// condorSuitable is the pre-filter applied before any condor is
// priced. Any violation skips condor construction for the cycle.
func (s *Selector) condorSuitable(snap *models.MarketSnapshot) bool {
	switch {
	case snap.Direction != models.DirectionSideways:
		return false
	case snap.VIXLevel < 12 || snap.VIXLevel > 40:
		s.logger.Debug().Float64("vix", snap.VIXLevel).Msg("iron condor skipped: VIX outside range")
		return false
	case snap.RSI < 25 || snap.RSI > 75:
		s.logger.Debug().Float64("rsi", snap.RSI).Msg("iron condor skipped: RSI outside range")
		return false
	case snap.BBPosition < 0.15 || snap.BBPosition > 0.85:
		s.logger.Debug().Float64("bb_position", snap.BBPosition).Msg("iron condor skipped: price near a band edge")
		return false
	case snap.VolumeRatio > 2.0:
		s.logger.Debug().Float64("volume_ratio", snap.VolumeRatio).Msg("iron condor skipped: volume spike")
		return false
	}
	return true
}

func (s *Selector) recommend(st *models.StrategyStructure, action models.Action, snap *models.MarketSnapshot) models.Recommendation {
	return models.Recommendation{
		GeneratedAt: snap.Timestamp,
		Structure:   st,
		Action:      action,
		Direction:   snap.Direction,
		VIXLevel:    snap.VIXLevel,
		RSI:         snap.RSI,
	}
}
