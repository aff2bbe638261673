package stock

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/rajivmenon/tailorbooks-backend/pkg/enums"
)

func TestClassifyBoundaries(t *testing.T) {
	t.Parallel()

	minimum := decimal.NewFromInt(100)

	cases := []struct {
		name      string
		current   string
		reserved  string
		expected  enums.StockHealth
	}{
		{"zero available", "0", "0", enums.StockHealthOutOfStock},
		{"fully reserved", "50", "50", enums.StockHealthOutOfStock},
		{"over reserved", "40", "60", enums.StockHealthOutOfStock},
		{"exactly at minimum", "100", "0", enums.StockHealthCritical},
		{"just above minimum", "100.01", "0", enums.StockHealthLow},
		{"exactly at low ceiling", "125", "0", enums.StockHealthLow},
		{"just above low ceiling", "125.01", "0", enums.StockHealthHealthy},
		{"reservation pushes into critical", "150", "60", enums.StockHealthCritical},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(mustDec(t, tc.current), mustDec(t, tc.reserved), minimum)
			if got != tc.expected {
				t.Fatalf("expected %s, got %s", tc.expected, got)
			}
		})
	}
}

func TestClassifyZeroMinimum(t *testing.T) {
	t.Parallel()

	if got := Classify(mustDec(t, "10"), decimal.Zero, decimal.Zero); got != enums.StockHealthHealthy {
		t.Fatalf("expected healthy with zero minimum, got %s", got)
	}
	if got := Classify(decimal.Zero, decimal.Zero, decimal.Zero); got != enums.StockHealthOutOfStock {
		t.Fatalf("expected out of stock at zero, got %s", got)
	}
}

func mustDec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", s, err)
	}
	return d
}
