package models

import "time"

// OptionGreeks represents option Greeks.
type OptionGreeks struct {
	Delta float64
	Gamma float64
	Theta float64
	Vega  float64
	Rho   float64
}

// Zero reports whether every Greek is zero, the degraded result the
// pricing model returns for degenerate inputs.
func (g OptionGreeks) Zero() bool {
	return g.Delta == 0 && g.Gamma == 0 && g.Theta == 0 && g.Vega == 0 && g.Rho == 0
}

// OptionLeg represents a single priced leg of an options structure.
// Legs are computed on demand and never persisted.
type OptionLeg struct {
	Strike       float64
	Right        OptionRight
	Side         OrderSide
	TimeToExpiry float64 // years, floored to one trading day upstream
	Vol          float64
	Price        float64
	Greeks       OptionGreeks
}

// StrategyKind identifies the options structure variant.
type StrategyKind string

const (
	KindPutCreditSpread StrategyKind = "PUT_CREDIT_SPREAD"
	KindCallDiagonal    StrategyKind = "CALL_DIAGONAL"
	KindIronCondor      StrategyKind = "IRON_CONDOR"
)

// CreditSpreadLegs holds the two legs of a vertical credit spread.
// Invariant for puts: ShortLeg.Strike > LongLeg.Strike.
type CreditSpreadLegs struct {
	ShortLeg OptionLeg
	LongLeg  OptionLeg
	Width    float64
}

// DiagonalLegs holds the two legs of a diagonal spread; the legs
// differ in both strike and expiry.
type DiagonalLegs struct {
	ShortLeg    OptionLeg
	LongLeg     OptionLeg
	ShortExpiry time.Time
	LongExpiry  time.Time
}

// CondorLegs holds the four legs of an iron condor. Strike ordering:
// LongPut < ShortPut < spot < ShortCall < LongCall.
type CondorLegs struct {
	ShortPut  OptionLeg
	LongPut   OptionLeg
	ShortCall OptionLeg
	LongCall  OptionLeg
	WingWidth float64
}

// StrategyStructure is a fully priced options structure. Kind selects
// which leg payload is populated; the other two are nil. Structures
// are built fresh each selection attempt and never mutated afterwards.
type StrategyStructure struct {
	Kind      StrategyKind
	SpotPrice float64
	Expiry    time.Time
	VolUsed   float64

	// Signed premium: positive = credit received, negative = debit paid.
	NetPremium float64
	MaxProfit  float64
	MaxLoss    float64
	Breakevens []float64 // 1 for spreads, 2 for iron condors
	ProbProfit float64   // [0, 1]

	NetDelta float64
	NetGamma float64
	NetTheta float64
	NetVega  float64

	CreditSpread *CreditSpreadLegs
	Diagonal     *DiagonalLegs
	Condor       *CondorLegs
}

// IsCredit reports whether the structure collects premium at entry.
func (s *StrategyStructure) IsCredit() bool {
	return s.NetPremium > 0
}

// Action is the recommendation attached to a structure.
type Action string

const (
	ActionExecute Action = "EXECUTE"
	ActionMonitor Action = "MONITOR"
	ActionSkip    Action = "SKIP"
)

// Recommendation pairs a structure with the selector's verdict. The
// verdict is a pure function of the structure's probability of profit
// and, for iron condors, its optimization score.
type Recommendation struct {
	GeneratedAt time.Time
	Structure   *StrategyStructure
	Action      Action

	// Score is the 0-100 grid-search score; set for iron condors only.
	Score  float64
	Scored bool

	Direction Direction
	VIXLevel  float64
	RSI       float64
}
