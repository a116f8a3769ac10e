package engine

import (
	"testing"

	checkout "github.com/sumup/agentic-checkout"
)

func TestFlatRatePolicyTax(t *testing.T) {
	t.Parallel()

	policy := FlatRatePolicy{TaxBasisPoints: 800}

	tests := map[string]struct {
		subtotal int
		want     int
	}{
		"even":              {subtotal: 2000, want: 160},
		"truncates":         {subtotal: 999, want: 79},
		"zero subtotal":     {subtotal: 0, want: 0},
		"negative subtotal": {subtotal: -100, want: 0},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if got := policy.Tax(tt.subtotal, nil); got != tt.want {
				t.Fatalf("Tax(%d) = %d, want %d", tt.subtotal, got, tt.want)
			}
		})
	}
}

func TestFlatRatePolicyShipping(t *testing.T) {
	t.Parallel()

	policy := FlatRatePolicy{ShippingPrices: map[string]int{
		OptionStandardShipping: 0,
		OptionExpressShipping:  1200,
	}}

	if got := policy.Shipping(OptionExpressShipping, nil); got != 1200 {
		t.Fatalf("express = %d, want 1200", got)
	}
	if got := policy.Shipping("carrier_pigeon", nil); got != 0 {
		t.Fatalf("unknown options must ship free, got %d", got)
	}
}

func TestComputeTotals(t *testing.T) {
	t.Parallel()

	policy := FlatRatePolicy{
		TaxBasisPoints: 800,
		ShippingPrices: map[string]int{OptionExpressShipping: 1200},
	}
	lineItems := []checkout.LineItem{
		{ID: "li_widget", Subtotal: 2000},
		{ID: "li_gadget", Subtotal: 250},
	}
	express := OptionExpressShipping

	tests := map[string]struct {
		optionID *string
		want     checkout.Totals
	}{
		"no selection": {
			want: checkout.Totals{Subtotal: 2250, Tax: 180, Shipping: 0, Total: 2430},
		},
		"express selected": {
			optionID: &express,
			want:     checkout.Totals{Subtotal: 2250, Tax: 180, Shipping: 1200, Total: 3630},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := ComputeTotals(lineItems, tt.optionID, nil, policy)
			if got != tt.want {
				t.Fatalf("ComputeTotals() = %+v, want %+v", got, tt.want)
			}
			if got.Total != got.Subtotal+got.Tax+got.Shipping {
				t.Fatalf("total invariant broken: %+v", got)
			}
		})
	}
}

func TestComputeTotalsEmptyCart(t *testing.T) {
	t.Parallel()

	got := ComputeTotals(nil, nil, nil, FlatRatePolicy{TaxBasisPoints: 800})
	if got != (checkout.Totals{}) {
		t.Fatalf("expected zero totals got %+v", got)
	}
}
