package strategy

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/rs/zerolog"
	"spx-trader/internal/models"
)

func testSnapshot(direction models.Direction) *models.MarketSnapshot {
	return &models.MarketSnapshot{
		Timestamp:   time.Date(2025, 8, 1, 7, 0, 0, 0, time.UTC),
		Direction:   direction,
		SpotPrice:   5000,
		VIXLevel:    22,
		RSI:         50,
		MACD:        1.5,
		BBPosition:  0.5,
		VolumeRatio: 1.0,
	}
}

func testNow() time.Time {
	return time.Date(2025, 8, 1, 7, 0, 0, 0, time.UTC)
}

func TestSelectorBullishPutCreditSpread(t *testing.T) {
	params := DefaultParams()
	params.MinCredit = 1.0
	selector := NewSelector(params, zerolog.Nop())

	snap := testSnapshot(models.DirectionBullish)
	snap.VIXLevel = 18

	recs := selector.GenerateRecommendations(snap, nil, testNow(), 0.05)
	if len(recs) != 1 {
		t.Fatalf("expected 1 recommendation, got %d", len(recs))
	}

	rec := recs[0]
	st := rec.Structure
	if st.Kind != models.KindPutCreditSpread {
		t.Fatalf("expected put credit spread, got %s", st.Kind)
	}
	if rec.Direction != models.DirectionBullish {
		t.Errorf("expected bullish direction on recommendation, got %s", rec.Direction)
	}
	if rec.GeneratedAt != snap.Timestamp {
		t.Errorf("expected recommendation stamped with snapshot time")
	}

	legs := st.CreditSpread
	if legs == nil {
		t.Fatal("expected credit spread legs")
	}
	if legs.ShortLeg.Strike <= legs.LongLeg.Strike {
		t.Errorf("short strike %f must sit above long strike %f", legs.ShortLeg.Strike, legs.LongLeg.Strike)
	}
	if legs.ShortLeg.Strike >= snap.SpotPrice {
		t.Errorf("short strike %f must sit below spot %f", legs.ShortLeg.Strike, snap.SpotPrice)
	}
	if math.Abs(legs.Width-params.SpreadWidth) > 1e-9 {
		t.Errorf("expected width %f, got %f", params.SpreadWidth, legs.Width)
	}

	if st.NetPremium <= 0 {
		t.Errorf("expected positive credit, got %f", st.NetPremium)
	}
	if st.MaxLoss <= 0 {
		t.Errorf("expected positive max loss, got %f", st.MaxLoss)
	}
	if math.Abs(st.MaxLoss-(legs.Width-st.NetPremium)) > 1e-9 {
		t.Errorf("max loss %f does not equal width minus credit", st.MaxLoss)
	}
	if len(st.Breakevens) != 1 {
		t.Fatalf("expected 1 breakeven, got %d", len(st.Breakevens))
	}
	if math.Abs(st.Breakevens[0]-(legs.ShortLeg.Strike-st.NetPremium)) > 1e-9 {
		t.Errorf("breakeven %f is not short strike minus credit", st.Breakevens[0])
	}
	if st.ProbProfit <= 0.70 || st.ProbProfit >= 1 {
		t.Errorf("expected OTM spread probability above the gate, got %f", st.ProbProfit)
	}
	if rec.Action != models.ActionExecute && rec.Action != models.ActionMonitor {
		t.Errorf("unexpected action %s", rec.Action)
	}
}

func TestSelectorSidewaysIronCondor(t *testing.T) {
	selector := NewSelector(DefaultParams(), zerolog.Nop())

	snap := testSnapshot(models.DirectionSideways)
	recs := selector.GenerateRecommendations(snap, nil, testNow(), 0.05)
	if len(recs) != 1 {
		t.Fatalf("expected 1 recommendation, got %d", len(recs))
	}

	rec := recs[0]
	st := rec.Structure
	if st.Kind != models.KindIronCondor {
		t.Fatalf("expected iron condor, got %s", st.Kind)
	}
	if !rec.Scored {
		t.Error("expected iron condor recommendation to carry a score")
	}
	if rec.Score < minCondorScore {
		t.Errorf("accepted condor score %f below the threshold", rec.Score)
	}

	legs := st.Condor
	if legs == nil {
		t.Fatal("expected condor legs")
	}
	if !(legs.LongPut.Strike < legs.ShortPut.Strike &&
		legs.ShortPut.Strike < snap.SpotPrice &&
		snap.SpotPrice < legs.ShortCall.Strike &&
		legs.ShortCall.Strike < legs.LongCall.Strike) {
		t.Errorf("condor strikes out of order: %f %f %f %f",
			legs.LongPut.Strike, legs.ShortPut.Strike, legs.ShortCall.Strike, legs.LongCall.Strike)
	}

	if len(st.Breakevens) != 2 {
		t.Fatalf("expected 2 breakevens, got %d", len(st.Breakevens))
	}
	if !(st.Breakevens[0] < snap.SpotPrice && snap.SpotPrice < st.Breakevens[1]) {
		t.Errorf("breakevens [%f, %f] must straddle spot", st.Breakevens[0], st.Breakevens[1])
	}

	if math.Abs(st.NetDelta) > 0.1 {
		t.Errorf("condor net delta %f not near neutral", st.NetDelta)
	}
	if st.NetTheta <= 0 {
		t.Errorf("credit condor must collect theta, got %f", st.NetTheta)
	}
	if st.NetPremium < DefaultParams().MinCondorCredit {
		t.Errorf("accepted condor credit %f below the minimum", st.NetPremium)
	}
}

func TestSelectorBearishNoTrade(t *testing.T) {
	selector := NewSelector(DefaultParams(), zerolog.Nop())

	recs := selector.GenerateRecommendations(testSnapshot(models.DirectionBearish), nil, testNow(), 0.05)
	if recs != nil {
		t.Fatalf("expected no recommendations for bearish direction, got %d", len(recs))
	}
}

func TestSelectorInvalidSnapshot(t *testing.T) {
	selector := NewSelector(DefaultParams(), zerolog.Nop())
	now := testNow()

	if recs := selector.GenerateRecommendations(nil, nil, now, 0.05); recs != nil {
		t.Error("expected nil for nil snapshot")
	}

	snap := testSnapshot(models.DirectionSideways)
	snap.SpotPrice = -1
	if recs := selector.GenerateRecommendations(snap, nil, now, 0.05); recs != nil {
		t.Error("expected nil for negative spot")
	}

	snap = testSnapshot(models.Direction("SOMETHING"))
	if recs := selector.GenerateRecommendations(snap, nil, now, 0.05); recs != nil {
		t.Error("expected nil for unknown direction")
	}

	snap = testSnapshot(models.DirectionUnknown)
	if recs := selector.GenerateRecommendations(snap, nil, now, 0.05); recs != nil {
		t.Error("expected nil for unclassified direction")
	}
}

func TestSelectorMissingVIX(t *testing.T) {
	selector := NewSelector(DefaultParams(), zerolog.Nop())

	// A zero VIX level encodes a missing field. Without the validation
	// gate the condor pre-filter rejects but the diagonal would still
	// build at the default volatility and leak a recommendation.
	snap := testSnapshot(models.DirectionSideways)
	snap.VIXLevel = 0
	if recs := selector.GenerateRecommendations(snap, nil, testNow(), 0.05); len(recs) != 0 {
		t.Errorf("expected no recommendations for missing VIX, got %d", len(recs))
	}
}

func TestBuilderCallDiagonal(t *testing.T) {
	params := DefaultParams()
	builder := NewBuilder(params)

	snap := testSnapshot(models.DirectionSideways)
	st, err := builder.CallDiagonal(snap, 0.22, testNow(), 0.05)
	if err != nil {
		t.Fatalf("diagonal construction failed: %v", err)
	}

	if st.Kind != models.KindCallDiagonal {
		t.Fatalf("expected call diagonal, got %s", st.Kind)
	}
	legs := st.Diagonal
	if legs == nil {
		t.Fatal("expected diagonal legs")
	}
	if legs.ShortLeg.Strike <= snap.SpotPrice {
		t.Errorf("short call %f must sit above spot", legs.ShortLeg.Strike)
	}
	if math.Abs(legs.LongLeg.Strike-(legs.ShortLeg.Strike+params.DiagonalOffset)) > 1e-9 {
		t.Errorf("long strike %f not offset %f above short %f",
			legs.LongLeg.Strike, params.DiagonalOffset, legs.ShortLeg.Strike)
	}
	if !legs.LongExpiry.After(legs.ShortExpiry) {
		t.Error("long leg must expire after the short leg")
	}

	if st.NetPremium >= 0 {
		t.Errorf("diagonal is a debit structure, got premium %f", st.NetPremium)
	}
	if st.MaxLoss != -st.NetPremium {
		t.Errorf("diagonal max loss %f must equal the debit %f", st.MaxLoss, -st.NetPremium)
	}
	if len(st.Breakevens) != 0 {
		t.Errorf("diagonal carries no breakevens, got %d", len(st.Breakevens))
	}
}

func TestEstimateVolatility(t *testing.T) {
	if v := EstimateVolatility(nil, 18); math.Abs(v-0.18) > 1e-9 {
		t.Errorf("expected VIX-only estimate 0.18, got %f", v)
	}
	if v := EstimateVolatility(nil, 5); v != 0.10 {
		t.Errorf("expected 10%% floor, got %f", v)
	}
	if v := EstimateVolatility(nil, 0); v != 0.20 {
		t.Errorf("expected 20%% default for missing VIX, got %f", v)
	}

	// 30 flat closes: historical vol is zero, blend pulls toward the VIX.
	candles := make([]models.Candle, 30)
	for i := range candles {
		candles[i] = models.Candle{Close: 5000, Timestamp: testNow().AddDate(0, 0, i)}
	}
	v := EstimateVolatility(candles, 30)
	if math.Abs(v-0.7*0.30) > 1e-9 {
		t.Errorf("expected 70%% VIX weight over flat history, got %f", v)
	}
}

func TestFormatSummaryIronCondor(t *testing.T) {
	selector := NewSelector(DefaultParams(), zerolog.Nop())
	recs := selector.GenerateRecommendations(testSnapshot(models.DirectionSideways), nil, testNow(), 0.05)
	if len(recs) != 1 {
		t.Fatalf("expected 1 recommendation, got %d", len(recs))
	}

	out := FormatSummary(recs[0])
	for _, want := range []string{
		"IRON CONDOR (0DTE)",
		"Direction: SIDEWAYS",
		"SPX Price:",
		"VIX Level:",
		"Volatility Used:",
		"Short Put:",
		"Long Call:",
		"Net Credit:",
		"Max Loss:",
		"Lower Breakeven:",
		"Upper Breakeven:",
		"Prob of Profit:",
		"Net Delta:",
		"Net Theta:",
		"OPTIMIZATION SCORE:",
		"RECOMMENDATION:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestFormatSummaryNilStructure(t *testing.T) {
	if out := FormatSummary(models.Recommendation{}); out != "" {
		t.Errorf("expected empty summary for nil structure, got %q", out)
	}
}

// Property: The condor score stays within [0, 100] for any structure
// and snapshot the grid search could produce.
func TestProperty_CondorScoreBounded(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("score within [0, 100]", prop.ForAll(
		func(prob, maxProfit, maxLoss, netDelta, netTheta, vix, rsi float64) bool {
			st := &models.StrategyStructure{
				Kind:       models.KindIronCondor,
				ProbProfit: prob,
				MaxProfit:  maxProfit,
				MaxLoss:    maxLoss,
				NetDelta:   netDelta,
				NetTheta:   netTheta,
			}
			snap := &models.MarketSnapshot{VIXLevel: vix, RSI: rsi}
			score := ScoreCondor(st, snap)
			return score >= 0 && score <= 100
		},
		gen.Float64Range(0, 1),
		gen.Float64Range(0, 50),
		gen.Float64Range(0.1, 100),
		gen.Float64Range(-0.5, 0.5),
		gen.Float64Range(-20, 20),
		gen.Float64Range(8, 60),
		gen.Float64Range(0, 100),
	))

	properties.TestingRun(t)
}
