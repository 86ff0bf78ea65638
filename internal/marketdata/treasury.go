package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

const treasuryEndpoint = "https://api.fiscaldata.treasury.gov/services/api/fiscal_service/v2/accounting/od/avg_interest_rates?sort=-record_date&page[size]=1&filter=security_desc:eq:Treasury%20Bills"

// TreasuryRateSource reads the current short-term treasury bill rate
// from the US Treasury fiscal data API. Failures fall back to the
// configured default so a flaky endpoint never blocks a cycle.
type TreasuryRateSource struct {
	client   *http.Client
	fallback float64
}

// NewTreasuryRateSource creates a TreasuryRateSource with the given
// fallback rate.
func NewTreasuryRateSource(fallback float64) *TreasuryRateSource {
	if fallback <= 0 {
		fallback = 0.05
	}
	return &TreasuryRateSource{
		client:   &http.Client{Timeout: 10 * time.Second},
		fallback: fallback,
	}
}

// RiskFreeRate fetches the latest treasury bill average rate as a
// decimal fraction.
func (t *TreasuryRateSource) RiskFreeRate(ctx context.Context) (float64, error) {
	rate, err := t.fetch(ctx)
	if err != nil {
		return t.fallback, nil
	}
	return rate, nil
}

func (t *TreasuryRateSource) fetch(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, treasuryEndpoint, nil)
	if err != nil {
		return 0, err
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("treasury API returned status %d", resp.StatusCode)
	}

	var payload struct {
		Data []struct {
			AvgInterestRate string `json:"avg_interest_rate_amt"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, err
	}
	if len(payload.Data) == 0 {
		return 0, fmt.Errorf("treasury API returned no data")
	}

	pct, err := strconv.ParseFloat(payload.Data[0].AvgInterestRate, 64)
	if err != nil {
		return 0, err
	}
	if pct <= 0 || pct > 20 {
		return 0, fmt.Errorf("treasury rate out of range: %.2f", pct)
	}
	return pct / 100, nil
}
