package engine

import (
	checkout "github.com/sumup/agentic-checkout"
)

// Policy prices the jurisdiction-and-fulfillment dependent parts of a
// session. Implementations must be pure: same inputs, same amounts.
type Policy interface {
	// Tax returns the tax in minor units for the given subtotal.
	Tax(subtotal int, address *checkout.Address) int
	// Shipping returns the shipping cost for the selected fulfillment option.
	Shipping(optionID string, address *checkout.Address) int
}

// FlatRatePolicy is the reference [Policy]: a single basis-point tax rate
// and a fixed price per fulfillment option.
type FlatRatePolicy struct {
	// TaxBasisPoints is the tax rate in basis points (800 = 8%).
	TaxBasisPoints int
	// ShippingPrices maps fulfillment option ids to their price in minor
	// units. Unknown options ship free.
	ShippingPrices map[string]int
}

// Tax implements [Policy]. Fractional minor units truncate toward zero.
func (p FlatRatePolicy) Tax(subtotal int, _ *checkout.Address) int {
	if subtotal <= 0 || p.TaxBasisPoints <= 0 {
		return 0
	}
	return subtotal * p.TaxBasisPoints / 10000
}

// Shipping implements [Policy].
func (p FlatRatePolicy) Shipping(optionID string, _ *checkout.Address) int {
	return p.ShippingPrices[optionID]
}

// ComputeTotals derives the session amounts from its line items and
// fulfillment selection. It is a pure function of its arguments; calling it
// twice on an unchanged session yields identical output.
func ComputeTotals(lineItems []checkout.LineItem, optionID *string, address *checkout.Address, policy Policy) checkout.Totals {
	subtotal := 0
	for _, li := range lineItems {
		subtotal += li.Subtotal
	}
	tax := policy.Tax(subtotal, address)
	shipping := 0
	if optionID != nil {
		shipping = policy.Shipping(*optionID, address)
	}
	return checkout.Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Total:    subtotal + tax + shipping,
	}
}
