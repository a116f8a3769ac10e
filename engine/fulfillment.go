package engine

import (
	"strconv"

	checkout "github.com/sumup/agentic-checkout"
)

// Fulfillment option ids offered by the reference merchant.
const (
	OptionStandardShipping = "standard_shipping"
	OptionExpressShipping  = "express_shipping"
	OptionDigitalDelivery  = "digital_delivery"
)

// buildFulfillmentOptions derives the option set from the current address
// and cart. An all-digital cart gets the digital option and nothing else;
// physical carts get the shipping options once an address is known, since
// carrier availability depends on the destination.
func (e *Engine) buildFulfillmentOptions(address *checkout.Address, lineItems []checkout.LineItem) []checkout.FulfillmentOption {
	if len(lineItems) > 0 && e.allDigital(lineItems) {
		return []checkout.FulfillmentOption{digitalOption()}
	}
	if address == nil {
		return []checkout.FulfillmentOption{}
	}
	return []checkout.FulfillmentOption{
		e.shippingOption(OptionStandardShipping, "Standard Shipping", "3-5 business days", address),
		e.shippingOption(OptionExpressShipping, "Express Shipping", "1-2 business days", address),
	}
}

func (e *Engine) allDigital(lineItems []checkout.LineItem) bool {
	for _, li := range lineItems {
		product, ok := e.catalog.Lookup(li.Item.ID)
		if !ok || !product.Digital {
			return false
		}
	}
	return true
}

func (e *Engine) shippingOption(id, title, subtitle string, address *checkout.Address) checkout.FulfillmentOption {
	price := e.policy.Shipping(id, address)
	var option checkout.FulfillmentOption
	_ = option.FromFulfillmentOptionShipping(checkout.FulfillmentOptionShipping{
		ID:       id,
		Type:     "shipping",
		Title:    title,
		Subtitle: &subtitle,
		Subtotal: strconv.Itoa(price),
		Tax:      "0",
		Total:    strconv.Itoa(price),
	})
	return option
}

func digitalOption() checkout.FulfillmentOption {
	subtitle := "Delivered by email"
	var option checkout.FulfillmentOption
	_ = option.FromFulfillmentOptionDigital(checkout.FulfillmentOptionDigital{
		ID:       OptionDigitalDelivery,
		Type:     "digital",
		Title:    "Digital Delivery",
		Subtitle: &subtitle,
		Subtotal: "0",
		Tax:      "0",
		Total:    "0",
	})
	return option
}

func optionInSet(options []checkout.FulfillmentOption, id string) bool {
	for _, option := range options {
		if option.OptionID() == id {
			return true
		}
	}
	return false
}
