package spt

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryExchange keeps tokens in a process-lifetime map. The status swap in
// Redeem happens under the store lock, so exactly one of any number of
// concurrent redeemers wins.
type MemoryExchange struct {
	mu     sync.Mutex
	tokens map[string]*Token
	clock  func() time.Time
}

// MemoryOption customizes a [MemoryExchange].
type MemoryOption func(*MemoryExchange)

// WithClock provides deterministic time in tests.
func WithClock(fn func() time.Time) MemoryOption {
	return func(e *MemoryExchange) {
		e.clock = fn
	}
}

// NewMemoryExchange builds an empty in-memory token exchange.
func NewMemoryExchange(opts ...MemoryOption) *MemoryExchange {
	e := &MemoryExchange{
		tokens: make(map[string]*Token),
		clock:  time.Now,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(e)
	}
	return e
}

// Issue implements [Exchange].
func (e *MemoryExchange) Issue(_ context.Context, paymentMethod string, limits UsageLimits, seller SellerDetails) (Token, error) {
	if paymentMethod == "" {
		return Token{}, fmt.Errorf("spt: payment_method is required")
	}
	token := Token{
		ID:            newTokenID(),
		PaymentMethod: paymentMethod,
		UsageLimits:   limits,
		SellerDetails: seller,
		Status:        StatusActive,
		Created:       e.clock().Unix(),
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	stored := token
	e.tokens[token.ID] = &stored
	return token, nil
}

// Redeem implements [Exchange]. The check-and-set of the status runs inside
// the critical section; there is no read-then-write window.
func (e *MemoryExchange) Redeem(_ context.Context, id string) (Grant, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	token, ok := e.tokens[id]
	if !ok {
		return Grant{}, ErrTokenNotFound
	}
	if token.Status == StatusRedeemed {
		return Grant{}, ErrTokenRedeemed
	}
	if e.expired(token) {
		return Grant{}, ErrTokenExpired
	}
	token.Status = StatusRedeemed
	return Grant{
		PaymentMethod: token.PaymentMethod,
		UsageLimits:   token.UsageLimits,
	}, nil
}

// Inspect implements [Exchange]. Expiry is derived, not persisted, so the
// lookup stays free of state changes.
func (e *MemoryExchange) Inspect(_ context.Context, id string) (Token, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	token, ok := e.tokens[id]
	if !ok {
		return Token{}, ErrTokenNotFound
	}
	out := *token
	if out.Status == StatusActive && e.expired(token) {
		out.Status = StatusExpired
	}
	return out, nil
}

// ActiveCount reports how many stored tokens are still spendable.
func (e *MemoryExchange) ActiveCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, token := range e.tokens {
		if token.Status == StatusActive && !e.expired(token) {
			n++
		}
	}
	return n
}

func (e *MemoryExchange) expired(token *Token) bool {
	return token.UsageLimits.ExpiresAt > 0 && e.clock().Unix() > token.UsageLimits.ExpiresAt
}

func newTokenID() string {
	id := uuid.New()
	return fmt.Sprintf("spt_%x", id[:12])
}
