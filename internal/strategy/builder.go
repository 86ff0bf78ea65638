package strategy

import (
	"errors"
	"time"

	"spx-trader/internal/models"
	"spx-trader/internal/pricing"
)

// Builder construction errors. A build error means the candidate is
// excluded from the cycle, never that the cycle aborts.
var (
	ErrDegenerateStrike = errors.New("solved strike is not economically usable")
	ErrStrikeOrdering   = errors.New("leg strikes violate required ordering")
	ErrNonPositiveLoss  = errors.New("structure has non-positive max loss")
)

// Builder prices full strategy structures from a market snapshot. The
// risk-free rate is threaded into every call; the builder itself holds
// no mutable pricing state.
type Builder struct {
	params Params
}

// NewBuilder creates a Builder with the given parameters.
func NewBuilder(params Params) *Builder {
	return &Builder{params: params}
}

// PutCreditSpread builds a two-leg put credit spread: the short put is
// solved at the negative target delta, the long put sits a fixed width
// below. Acceptance gates are the selector's concern, not the builder's.
func (b *Builder) PutCreditSpread(snap *models.MarketSnapshot, vol float64, now time.Time, riskFreeRate float64) (*models.StrategyStructure, error) {
	spot := snap.SpotPrice
	expiry := sameDayExpiry(now)
	tte := pricing.YearsToExpiry(now, expiry)

	res := pricing.FindStrikeByDelta(spot, -b.params.TargetDelta, tte, vol, models.RightPut, riskFreeRate)
	shortStrike := res.Strike
	longStrike := shortStrike - b.params.SpreadWidth
	if shortStrike <= 0 || shortStrike >= spot || longStrike <= 0 {
		return nil, ErrDegenerateStrike
	}

	shortLeg := b.priceLeg(spot, shortStrike, tte, vol, models.RightPut, models.OrderSideSell, riskFreeRate)
	longLeg := b.priceLeg(spot, longStrike, tte, vol, models.RightPut, models.OrderSideBuy, riskFreeRate)

	credit := shortLeg.Price - longLeg.Price
	width := shortStrike - longStrike
	maxLoss := width - credit
	if maxLoss <= 0 {
		return nil, ErrNonPositiveLoss
	}

	prob := pricing.ProbAbove(spot, shortStrike, tte, vol, riskFreeRate)

	return &models.StrategyStructure{
		Kind:       models.KindPutCreditSpread,
		SpotPrice:  spot,
		Expiry:     expiry,
		VolUsed:    vol,
		NetPremium: credit,
		MaxProfit:  credit,
		MaxLoss:    maxLoss,
		Breakevens: []float64{shortStrike - credit},
		ProbProfit: prob,
		NetDelta:   longLeg.Greeks.Delta - shortLeg.Greeks.Delta,
		NetGamma:   longLeg.Greeks.Gamma - shortLeg.Greeks.Gamma,
		NetTheta:   longLeg.Greeks.Theta - shortLeg.Greeks.Theta,
		NetVega:    longLeg.Greeks.Vega - shortLeg.Greeks.Vega,
		CreditSpread: &models.CreditSpreadLegs{
			ShortLeg: shortLeg,
			LongLeg:  longLeg,
			Width:    width,
		},
	}, nil
}

// CallDiagonal builds a diagonal: a same-day short call near the
// diagonal target delta and a longer-dated long call struck a fixed
// offset above it. Max profit is an 80%-of-short-premium heuristic;
// the diagonal payoff at the short expiry has no closed form under
// this pricing model because the long leg retains time value.
func (b *Builder) CallDiagonal(snap *models.MarketSnapshot, vol float64, now time.Time, riskFreeRate float64) (*models.StrategyStructure, error) {
	spot := snap.SpotPrice
	shortExpiry := sameDayExpiry(now)
	longExpiry := now.AddDate(0, 0, b.params.DiagonalLongDays)
	shortTTE := pricing.YearsToExpiry(now, shortExpiry)
	longTTE := pricing.YearsToExpiry(now, longExpiry)

	res := pricing.FindStrikeByDelta(spot, b.params.DiagonalDelta, shortTTE, vol, models.RightCall, riskFreeRate)
	shortStrike := res.Strike
	longStrike := shortStrike + b.params.DiagonalOffset
	if shortStrike <= spot {
		return nil, ErrDegenerateStrike
	}

	shortLeg := b.priceLeg(spot, shortStrike, shortTTE, vol, models.RightCall, models.OrderSideSell, riskFreeRate)
	longLeg := b.priceLeg(spot, longStrike, longTTE, vol, models.RightCall, models.OrderSideBuy, riskFreeRate)

	debit := longLeg.Price - shortLeg.Price
	if debit <= 0 {
		return nil, ErrNonPositiveLoss
	}

	prob := pricing.ProbBelow(spot, shortStrike, shortTTE, vol, riskFreeRate)

	return &models.StrategyStructure{
		Kind:       models.KindCallDiagonal,
		SpotPrice:  spot,
		Expiry:     shortExpiry,
		VolUsed:    vol,
		NetPremium: -debit,
		MaxProfit:  shortLeg.Price * 0.8,
		MaxLoss:    debit,
		ProbProfit: prob,
		NetDelta:   longLeg.Greeks.Delta - shortLeg.Greeks.Delta,
		NetGamma:   longLeg.Greeks.Gamma - shortLeg.Greeks.Gamma,
		NetTheta:   longLeg.Greeks.Theta - shortLeg.Greeks.Theta,
		NetVega:    longLeg.Greeks.Vega - shortLeg.Greeks.Vega,
		Diagonal: &models.DiagonalLegs{
			ShortLeg:    shortLeg,
			LongLeg:     longLeg,
			ShortExpiry: shortExpiry,
			LongExpiry:  longExpiry,
		},
	}, nil
}

// IronCondor builds a four-leg condor with both short strikes solved
// at the same delta magnitude and long strikes a fixed wing width
// beyond them. The probability of profit covers the zone between the
// two breakevens and is regime-adjusted from the snapshot.
func (b *Builder) IronCondor(snap *models.MarketSnapshot, vol float64, targetDelta float64, now time.Time, riskFreeRate float64) (*models.StrategyStructure, error) {
	spot := snap.SpotPrice
	expiry := sameDayExpiry(now)
	tte := pricing.YearsToExpiry(now, expiry)
	wing := b.params.CondorWingWidth

	putRes := pricing.FindStrikeByDelta(spot, -targetDelta, tte, vol, models.RightPut, riskFreeRate)
	callRes := pricing.FindStrikeByDelta(spot, targetDelta, tte, vol, models.RightCall, riskFreeRate)

	shortPutStrike := putRes.Strike
	shortCallStrike := callRes.Strike
	longPutStrike := shortPutStrike - wing
	longCallStrike := shortCallStrike + wing

	if !(longPutStrike > 0 && longPutStrike < shortPutStrike &&
		shortPutStrike < spot && spot < shortCallStrike &&
		shortCallStrike < longCallStrike) {
		return nil, ErrStrikeOrdering
	}

	shortPut := b.priceLeg(spot, shortPutStrike, tte, vol, models.RightPut, models.OrderSideSell, riskFreeRate)
	longPut := b.priceLeg(spot, longPutStrike, tte, vol, models.RightPut, models.OrderSideBuy, riskFreeRate)
	shortCall := b.priceLeg(spot, shortCallStrike, tte, vol, models.RightCall, models.OrderSideSell, riskFreeRate)
	longCall := b.priceLeg(spot, longCallStrike, tte, vol, models.RightCall, models.OrderSideBuy, riskFreeRate)

	credit := (shortPut.Price - longPut.Price) + (shortCall.Price - longCall.Price)
	maxLoss := wing - credit
	if maxLoss <= 0 {
		return nil, ErrNonPositiveLoss
	}

	lowerBreakeven := shortPutStrike - credit
	upperBreakeven := shortCallStrike + credit

	prob := pricing.ProbBetween(spot, lowerBreakeven, upperBreakeven, tte, vol, riskFreeRate)
	prob = pricing.AdjustForRegime(prob, pricing.RegimeFactors{
		VIXLevel:    snap.VIXLevel,
		RSI:         snap.RSI,
		VolumeRatio: snap.VolumeRatio,
	})

	return &models.StrategyStructure{
		Kind:       models.KindIronCondor,
		SpotPrice:  spot,
		Expiry:     expiry,
		VolUsed:    vol,
		NetPremium: credit,
		MaxProfit:  credit,
		MaxLoss:    maxLoss,
		Breakevens: []float64{lowerBreakeven, upperBreakeven},
		ProbProfit: prob,
		NetDelta:   netOf(shortPut, longPut, shortCall, longCall, func(g models.OptionGreeks) float64 { return g.Delta }),
		NetGamma:   netOf(shortPut, longPut, shortCall, longCall, func(g models.OptionGreeks) float64 { return g.Gamma }),
		NetTheta:   netOf(shortPut, longPut, shortCall, longCall, func(g models.OptionGreeks) float64 { return g.Theta }),
		NetVega:    netOf(shortPut, longPut, shortCall, longCall, func(g models.OptionGreeks) float64 { return g.Vega }),
		Condor: &models.CondorLegs{
			ShortPut:  shortPut,
			LongPut:   longPut,
			ShortCall: shortCall,
			LongCall:  longCall,
			WingWidth: wing,
		},
	}, nil
}

// priceLeg prices a single leg and fills its Greeks. A degraded
// zero-Greek leg is returned as-is; callers tolerate it.
func (b *Builder) priceLeg(spot, strike, tte, vol float64, right models.OptionRight, side models.OrderSide, riskFreeRate float64) models.OptionLeg {
	return models.OptionLeg{
		Strike:       strike,
		Right:        right,
		Side:         side,
		TimeToExpiry: tte,
		Vol:          vol,
		Price:        pricing.Price(spot, strike, tte, vol, right, riskFreeRate),
		Greeks:       pricing.Greeks(spot, strike, tte, vol, right, riskFreeRate),
	}
}

// netOf sums position Greeks across the condor: long legs add, short
// legs subtract. A short condor therefore nets positive theta.
func netOf(shortPut, longPut, shortCall, longCall models.OptionLeg, pick func(models.OptionGreeks) float64) float64 {
	return pick(longPut.Greeks) - pick(shortPut.Greeks) + pick(longCall.Greeks) - pick(shortCall.Greeks)
}

// sameDayExpiry returns the 0DTE expiry timestamp for the given day.
func sameDayExpiry(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 16, 0, 0, 0, now.Location())
}
