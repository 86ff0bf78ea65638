// Package strategy implements options-structure construction, scoring
// and selection for the daily decision cycle.
package strategy

// Params holds the strategy construction and acceptance parameters.
type Params struct {
	SpreadWidth       float64 // vertical credit spread width, points
	CondorWingWidth   float64 // iron condor wing width, points
	DiagonalOffset    float64 // long-call strike offset above short, points
	DiagonalLongDays  int     // long-leg expiry, calendar days out
	TargetDelta       float64 // short-strike delta for credit spreads
	TargetCondorDelta float64 // short-strike delta for iron condors
	DiagonalDelta     float64 // short-call delta for diagonals

	MinCredit            float64
	MinCondorCredit      float64
	MinProbability       float64
	MinCondorProbability float64
	MaxRiskPerTrade      float64
}

// DefaultParams returns the standard SPX 0DTE parameter set.
func DefaultParams() Params {
	return Params{
		SpreadWidth:       10,
		CondorWingWidth:   30,
		DiagonalOffset:    20,
		DiagonalLongDays:  7,
		TargetDelta:       0.15,
		TargetCondorDelta: 0.10,
		DiagonalDelta:     0.25,

		MinCredit:            2.0,
		MinCondorCredit:      5.0,
		MinProbability:       0.70,
		MinCondorProbability: 0.65,
		MaxRiskPerTrade:      1000,
	}
}

// condorDeltaGrid is the set of short-strike target deltas scanned by
// the iron-condor grid search.
var condorDeltaGrid = []float64{0.05, 0.08, 0.10, 0.12, 0.15}

// minCondorScore is the grid-search acceptance threshold.
const minCondorScore = 75.0
