package strategy

import (
	"fmt"
	"strings"

	"spx-trader/internal/models"
)

// FormatSummary renders a recommendation as a human-readable text
// block: header, market context, trade structure, financials, Greeks,
// recommendation. Every numeric field the structure carries appears in
// the output; consumers diff this text, so labels are stable.
func FormatSummary(rec models.Recommendation) string {
	st := rec.Structure
	if st == nil {
		return ""
	}

	var b strings.Builder

	switch st.Kind {
	case models.KindPutCreditSpread:
		writeHeader(&b, "PUT CREDIT SPREAD (0DTE)")
		writeContext(&b, rec, "Bullish Strategy")
		legs := st.CreditSpread

		b.WriteString("TRADE STRUCTURE:\n")
		fmt.Fprintf(&b, "- Sell Put: $%.0f (Δ: %.3f)\n", legs.ShortLeg.Strike, legs.ShortLeg.Greeks.Delta)
		fmt.Fprintf(&b, "- Buy Put:  $%.0f (Δ: %.3f)\n", legs.LongLeg.Strike, legs.LongLeg.Greeks.Delta)
		fmt.Fprintf(&b, "- Width: $%.0f\n\n", legs.Width)

		b.WriteString("FINANCIALS:\n")
		fmt.Fprintf(&b, "- Net Credit: $%.2f\n", st.NetPremium)
		fmt.Fprintf(&b, "- Max Profit: $%.2f\n", st.MaxProfit)
		fmt.Fprintf(&b, "- Max Loss: $%.2f\n", st.MaxLoss)
		fmt.Fprintf(&b, "- Breakeven: $%.2f\n", st.Breakevens[0])
		fmt.Fprintf(&b, "- Prob of Profit: %.1f%%\n\n", st.ProbProfit*100)

		writeGreeks(&b, st)

	case models.KindCallDiagonal:
		writeHeader(&b, "CALL DIAGONAL SPREAD")
		writeContext(&b, rec, "Sideways Strategy")
		legs := st.Diagonal

		b.WriteString("TRADE STRUCTURE:\n")
		fmt.Fprintf(&b, "- Sell Call: $%.0f (0DTE, Δ: %.3f, $%.2f)\n",
			legs.ShortLeg.Strike, legs.ShortLeg.Greeks.Delta, legs.ShortLeg.Price)
		fmt.Fprintf(&b, "- Buy Call:  $%.0f (%s, Δ: %.3f, $%.2f)\n\n",
			legs.LongLeg.Strike, legs.LongExpiry.Format("2006-01-02"),
			legs.LongLeg.Greeks.Delta, legs.LongLeg.Price)

		b.WriteString("FINANCIALS:\n")
		fmt.Fprintf(&b, "- Net Debit: $%.2f\n", -st.NetPremium)
		fmt.Fprintf(&b, "- Max Profit: $%.2f\n", st.MaxProfit)
		fmt.Fprintf(&b, "- Max Loss: $%.2f\n", st.MaxLoss)
		fmt.Fprintf(&b, "- Prob of Profit: %.1f%%\n\n", st.ProbProfit*100)

		writeGreeks(&b, st)

	case models.KindIronCondor:
		writeHeader(&b, "IRON CONDOR (0DTE)")
		writeContext(&b, rec, "Range-Bound Strategy")
		legs := st.Condor

		b.WriteString("TRADE STRUCTURE:\n")
		fmt.Fprintf(&b, "- Short Put:  $%.0f (Δ: %.3f)\n", legs.ShortPut.Strike, legs.ShortPut.Greeks.Delta)
		fmt.Fprintf(&b, "- Long Put:   $%.0f\n", legs.LongPut.Strike)
		fmt.Fprintf(&b, "- Short Call: $%.0f (Δ: %.3f)\n", legs.ShortCall.Strike, legs.ShortCall.Greeks.Delta)
		fmt.Fprintf(&b, "- Long Call:  $%.0f\n", legs.LongCall.Strike)
		fmt.Fprintf(&b, "- Wing Width: $%.0f points\n\n", legs.WingWidth)

		b.WriteString("FINANCIALS:\n")
		fmt.Fprintf(&b, "- Net Credit: $%.2f\n", st.NetPremium)
		fmt.Fprintf(&b, "- Max Profit: $%.2f\n", st.MaxProfit)
		fmt.Fprintf(&b, "- Max Loss: $%.2f\n", st.MaxLoss)
		fmt.Fprintf(&b, "- Lower Breakeven: $%.2f\n", st.Breakevens[0])
		fmt.Fprintf(&b, "- Upper Breakeven: $%.2f\n", st.Breakevens[1])
		fmt.Fprintf(&b, "- Profit Range: $%.2f - $%.2f\n", st.Breakevens[0], st.Breakevens[1])
		fmt.Fprintf(&b, "- Prob of Profit: %.1f%%\n\n", st.ProbProfit*100)

		writeGreeks(&b, st)
		if rec.Scored {
			fmt.Fprintf(&b, "OPTIMIZATION SCORE: %.0f/100\n", rec.Score)
		}
	}

	fmt.Fprintf(&b, "\nRECOMMENDATION: %s\n", rec.Action)
	return b.String()
}

func writeHeader(b *strings.Builder, title string) {
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n")
}

func writeContext(b *strings.Builder, rec models.Recommendation, label string) {
	st := rec.Structure
	fmt.Fprintf(b, "Direction: %s (%s)\n", rec.Direction, label)
	fmt.Fprintf(b, "SPX Price: $%.2f\n", st.SpotPrice)
	fmt.Fprintf(b, "VIX Level: %.1f\n", rec.VIXLevel)
	fmt.Fprintf(b, "RSI: %.1f\n", rec.RSI)
	fmt.Fprintf(b, "Volatility Used: %.1f%%\n\n", st.VolUsed*100)
}

func writeGreeks(b *strings.Builder, st *models.StrategyStructure) {
	b.WriteString("GREEKS:\n")
	fmt.Fprintf(b, "- Net Delta: %.3f\n", st.NetDelta)
	fmt.Fprintf(b, "- Net Gamma: %.4f\n", st.NetGamma)
	fmt.Fprintf(b, "- Net Theta: %.3f\n", st.NetTheta)
	fmt.Fprintf(b, "- Net Vega: %.3f\n", st.NetVega)
	b.WriteString("\n")
}
