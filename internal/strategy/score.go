package strategy

import (
	"math"

	"spx-trader/internal/models"
)

// ScoreCondor rates an iron condor candidate on a 0-100 scale. The
// components add independently: probability of profit (up to 40),
// risk/reward (up to 20), delta neutrality (up to 15), positive theta
// (up to 15), and a market-alignment bonus (up to 10). The total only
// reaches 100 when every component maxes out simultaneously.
func ScoreCondor(s *models.StrategyStructure, snap *models.MarketSnapshot) float64 {
	score := math.Min(s.ProbProfit*100*0.4, 40)

	if s.MaxLoss > 0 {
		score += math.Min(s.MaxProfit/s.MaxLoss*40, 20)
	}

	score += math.Max(0, 15-math.Abs(s.NetDelta)*100)

	if s.NetTheta > 0 {
		score += math.Min(math.Abs(s.NetTheta)*2, 15)
	}

	if snap.VIXLevel >= 20 && snap.VIXLevel <= 25 {
		score += 5
	}
	if snap.RSI >= 45 && snap.RSI <= 55 {
		score += 5
	}

	return score
}

// condorAction maps a scored iron condor to a recommendation. The
// final SKIP branch is unreachable while the grid search requires a
// 75 score to accept at all; it is kept in case that acceptance
// threshold is ever lowered.
func condorAction(score, probProfit float64) models.Action {
	switch {
	case score >= 85 && probProfit >= 0.75:
		return models.ActionExecute
	case score >= 75 && probProfit >= 0.65:
		return models.ActionExecute
	case score >= 65:
		return models.ActionMonitor
	default:
		return models.ActionSkip
	}
}
