package checkout

import (
	"encoding/json"
	"time"

	"github.com/oapi-codegen/runtime"
)

// CheckoutSessionStatus defines model for CheckoutSession.Status.
type CheckoutSessionStatus string

// Defines values for CheckoutSessionStatus.
const (
	CheckoutSessionStatusNotReadyForPayment CheckoutSessionStatus = "not_ready_for_payment"
	CheckoutSessionStatusReadyForPayment    CheckoutSessionStatus = "ready_for_payment"
	CheckoutSessionStatusCompleted          CheckoutSessionStatus = "completed"
	CheckoutSessionStatusCanceled           CheckoutSessionStatus = "canceled"
)

// Terminal reports whether the status admits no further mutation.
func (s CheckoutSessionStatus) Terminal() bool {
	return s == CheckoutSessionStatusCompleted || s == CheckoutSessionStatusCanceled
}

// Address defines model for Address.
type Address struct {
	Name       string  `json:"name" validate:"required"`
	LineOne    string  `json:"line_one" validate:"required"`
	LineTwo    *string `json:"line_two,omitempty"`
	PostalCode string  `json:"postal_code" validate:"required"`
	City       string  `json:"city" validate:"required"`
	State      string  `json:"state" validate:"required"`
	Country    string  `json:"country" validate:"required,len=2,uppercase"`
}

// Buyer defines model for Buyer.
type Buyer struct {
	FirstName   string  `json:"first_name" validate:"required"`
	LastName    string  `json:"last_name" validate:"required"`
	Email       string  `json:"email" validate:"required,email"`
	PhoneNumber *string `json:"phone_number,omitempty"`
}

// Item is a requested (id, quantity) pair.
type Item struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

// LineItem is a priced entry of the session's cart.
type LineItem struct {
	ID         string `json:"id"`
	Item       Item   `json:"item"`
	BaseAmount int    `json:"base_amount"`
	Subtotal   int    `json:"subtotal"`
}

// Totals carries the session amounts in minor currency units.
// Total is always Subtotal + Tax + Shipping.
type Totals struct {
	Subtotal int `json:"subtotal"`
	Tax      int `json:"tax"`
	Shipping int `json:"shipping"`
	Total    int `json:"total"`
}

// Order is attached to a session once it completes.
type Order struct {
	ID                string `json:"id"`
	CheckoutSessionID string `json:"checkout_session_id"`
	PermalinkURL      string `json:"permalink_url"`
}

// CheckoutSession defines model for CheckoutSession.
type CheckoutSession struct {
	ID                  string                `json:"id"`
	Status              CheckoutSessionStatus `json:"status"`
	Currency            string                `json:"currency"`
	LineItems           []LineItem            `json:"line_items"`
	Buyer               *Buyer                `json:"buyer,omitempty"`
	FulfillmentAddress  *Address              `json:"fulfillment_address,omitempty"`
	FulfillmentOptions  []FulfillmentOption   `json:"fulfillment_options"`
	FulfillmentOptionID *string               `json:"fulfillment_option_id,omitempty"`
	Totals              Totals                `json:"totals"`
	Order               *Order                `json:"order,omitempty"`
	CreatedAt           time.Time             `json:"created_at"`
	UpdatedAt           time.Time             `json:"updated_at"`
}

// Product defines model for the GET /products listing.
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Price       int    `json:"price"`
	Description string `json:"description"`
	Stock       int    `json:"stock"`
	Image       string `json:"image"`
	Digital     bool   `json:"digital,omitempty"`
}

// CheckoutSessionCreateRequest defines model for CheckoutSessionCreateRequest.
type CheckoutSessionCreateRequest struct {
	Items              []Item   `json:"items"`
	Buyer              *Buyer   `json:"buyer,omitempty"`
	FulfillmentAddress *Address `json:"fulfillment_address,omitempty"`
}

// CheckoutSessionUpdateRequest is a patch: absent fields stay untouched,
// explicit nulls clear the nullable fields.
type CheckoutSessionUpdateRequest struct {
	Items               *[]Item           `json:"items,omitempty"`
	Buyer               Nullable[Buyer]   `json:"buyer,omitzero"`
	FulfillmentAddress  Nullable[Address] `json:"fulfillment_address,omitzero"`
	FulfillmentOptionID Nullable[string]  `json:"fulfillment_option_id,omitzero"`
}

// CheckoutSessionCompleteRequest defines model for CheckoutSessionCompleteRequest.
type CheckoutSessionCompleteRequest struct {
	PaymentData PaymentData `json:"payment_data"`
	Buyer       *Buyer      `json:"buyer,omitempty"`
}

// PaymentData defines model for PaymentData.
type PaymentData struct {
	Token          string   `json:"token"`
	Provider       string   `json:"provider,omitempty"`
	BillingAddress *Address `json:"billing_address,omitempty"`
}

// FulfillmentOption is a union of the shipping and digital variants.
type FulfillmentOption struct {
	union json.RawMessage
}

// FulfillmentOptionShipping defines model for FulfillmentOptionShipping.
type FulfillmentOptionShipping struct {
	ID                   string     `json:"id"`
	Type                 string     `json:"type"`
	Title                string     `json:"title"`
	Subtitle             *string    `json:"subtitle,omitempty"`
	Carrier              *string    `json:"carrier,omitempty"`
	EarliestDeliveryTime *time.Time `json:"earliest_delivery_time,omitempty"`
	LatestDeliveryTime   *time.Time `json:"latest_delivery_time,omitempty"`
	Subtotal             string     `json:"subtotal"`
	Tax                  string     `json:"tax"`
	Total                string     `json:"total"`
}

// FulfillmentOptionDigital defines model for FulfillmentOptionDigital.
type FulfillmentOptionDigital struct {
	ID       string  `json:"id"`
	Type     string  `json:"type"`
	Title    string  `json:"title"`
	Subtitle *string `json:"subtitle,omitempty"`
	Subtotal string  `json:"subtotal"`
	Tax      string  `json:"tax"`
	Total    string  `json:"total"`
}

// OptionID extracts the id field shared by every union variant.
func (t FulfillmentOption) OptionID() string {
	var probe struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(t.union, &probe); err != nil {
		return ""
	}
	return probe.ID
}

// AsFulfillmentOptionShipping returns the union data inside the FulfillmentOption as a FulfillmentOptionShipping
func (t FulfillmentOption) AsFulfillmentOptionShipping() (FulfillmentOptionShipping, error) {
	var body FulfillmentOptionShipping
	err := json.Unmarshal(t.union, &body)
	return body, err
}

// FromFulfillmentOptionShipping overwrites any union data inside the FulfillmentOption as the provided FulfillmentOptionShipping
func (t *FulfillmentOption) FromFulfillmentOptionShipping(v FulfillmentOptionShipping) error {
	b, err := json.Marshal(v)
	t.union = b
	return err
}

// MergeFulfillmentOptionShipping performs a merge with any union data inside the FulfillmentOption, using the provided FulfillmentOptionShipping
func (t *FulfillmentOption) MergeFulfillmentOptionShipping(v FulfillmentOptionShipping) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	merged, err := runtime.JSONMerge(t.union, b)
	t.union = merged
	return err
}

// AsFulfillmentOptionDigital returns the union data inside the FulfillmentOption as a FulfillmentOptionDigital
func (t FulfillmentOption) AsFulfillmentOptionDigital() (FulfillmentOptionDigital, error) {
	var body FulfillmentOptionDigital
	err := json.Unmarshal(t.union, &body)
	return body, err
}

// FromFulfillmentOptionDigital overwrites any union data inside the FulfillmentOption as the provided FulfillmentOptionDigital
func (t *FulfillmentOption) FromFulfillmentOptionDigital(v FulfillmentOptionDigital) error {
	b, err := json.Marshal(v)
	t.union = b
	return err
}

// MergeFulfillmentOptionDigital performs a merge with any union data inside the FulfillmentOption, using the provided FulfillmentOptionDigital
func (t *FulfillmentOption) MergeFulfillmentOptionDigital(v FulfillmentOptionDigital) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	merged, err := runtime.JSONMerge(t.union, b)
	t.union = merged
	return err
}

// MarshalJSON serializes the underlying union for FulfillmentOption.
func (t FulfillmentOption) MarshalJSON() ([]byte, error) {
	b, err := t.union.MarshalJSON()
	return b, err
}

// UnmarshalJSON loads union data for FulfillmentOption.
func (t *FulfillmentOption) UnmarshalJSON(b []byte) error {
	err := t.union.UnmarshalJSON(b)
	return err
}
