// Package spt owns the shared payment token lifecycle: issuing amount,
// currency, and time limited single-use tokens, and redeeming each one at
// most once. The session engine only ever sees a by-value [Grant]; the
// token records stay here.
package spt

import (
	"context"
	"errors"
)

// Status is the lifecycle state of a token.
type Status string

const (
	StatusActive   Status = "active"
	StatusRedeemed Status = "redeemed"
	StatusExpired  Status = "expired"
)

// UsageLimits scope what a token can be spent on.
type UsageLimits struct {
	Currency  string `json:"currency" validate:"required,len=3,lowercase"`
	MaxAmount int    `json:"max_amount" validate:"required,gt=0"`
	// Unix seconds after which the token can no longer be redeemed.
	ExpiresAt int64 `json:"expires_at" validate:"required,gt=0"`
}

// SellerDetails identify the merchant a token was issued for.
type SellerDetails struct {
	NetworkID  string `json:"network_id,omitempty"`
	ExternalID string `json:"external_id,omitempty"`
}

// Token is the stored shared payment token record.
type Token struct {
	ID            string        `json:"id"`
	PaymentMethod string        `json:"payment_method"`
	UsageLimits   UsageLimits   `json:"usage_limits"`
	SellerDetails SellerDetails `json:"seller_details"`
	Status        Status        `json:"status"`
	Created       int64         `json:"created"`
}

// Grant is the by-value copy of a redeemed token handed to the caller.
type Grant struct {
	PaymentMethod string
	UsageLimits   UsageLimits
}

// Redemption failures. The engine maps these onto the checkout error taxonomy.
var (
	ErrTokenNotFound = errors.New("spt: token not found")
	ErrTokenExpired  = errors.New("spt: token expired")
	ErrTokenRedeemed = errors.New("spt: token already redeemed")
)

// Exchange is the token-exchange capability. A production implementation
// backed by a real credential service substitutes for the in-memory one
// without touching the session engine.
type Exchange interface {
	// Issue mints an active token for the payment method under the given limits.
	Issue(ctx context.Context, paymentMethod string, limits UsageLimits, seller SellerDetails) (Token, error)
	// Redeem atomically flips an active token to redeemed and returns its
	// grant. A concurrent second call for the same id observes the flipped
	// status and fails; that exclusivity is the single-spend guarantee.
	Redeem(ctx context.Context, id string) (Grant, error)
	// Inspect is a read-only lookup for diagnostics, never on the payment path.
	Inspect(ctx context.Context, id string) (Token, error)
}
