package utils

import "testing"

func TestFormatDollars(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{0, "$0.00"},
		{1.5, "$1.50"},
		{999.99, "$999.99"},
		{1000, "$1,000.00"},
		{1234567.89, "$1,234,567.89"},
		{-2500, "-$2,500.00"},
		{-0.25, "-$0.25"},
	}
	for _, tt := range tests {
		if got := FormatDollars(tt.amount); got != tt.want {
			t.Errorf("FormatDollars(%v) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{2.5, "+2.50%"},
		{0, "0.00%"},
		{-1.25, "-1.25%"},
	}
	for _, tt := range tests {
		if got := FormatPercent(tt.value); got != tt.want {
			t.Errorf("FormatPercent(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestFormatProbability(t *testing.T) {
	tests := []struct {
		p    float64
		want string
	}{
		{0.85, "85.0%"},
		{0.705, "70.5%"},
		{1, "100.0%"},
		{0, "0.0%"},
	}
	for _, tt := range tests {
		if got := FormatProbability(tt.p); got != tt.want {
			t.Errorf("FormatProbability(%v) = %q, want %q", tt.p, got, tt.want)
		}
	}
}

func TestFormatPnL(t *testing.T) {
	tests := []struct {
		pnl  float64
		want string
	}{
		{480, "+$480.00"},
		{0, "$0.00"},
		{-1200.5, "-$1,200.50"},
	}
	for _, tt := range tests {
		if got := FormatPnL(tt.pnl); got != tt.want {
			t.Errorf("FormatPnL(%v) = %q, want %q", tt.pnl, got, tt.want)
		}
	}
}

func TestFormatQuantity(t *testing.T) {
	tests := []struct {
		qty  int64
		want string
	}{
		{5, "5"},
		{1000, "1,000"},
		{2500000, "2,500,000"},
	}
	for _, tt := range tests {
		if got := FormatQuantity(tt.qty); got != tt.want {
			t.Errorf("FormatQuantity(%d) = %q, want %q", tt.qty, got, tt.want)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{500, "$500.00"},
		{1500, "1.5K"},
		{-12500, "-12.5K"},
		{2500000, "2.50M"},
		{-1000000, "-1.00M"},
	}
	for _, tt := range tests {
		if got := FormatCompact(tt.amount); got != tt.want {
			t.Errorf("FormatCompact(%v) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}
