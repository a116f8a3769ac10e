// Package engine implements the checkout session state machine: deterministic
// totals, the readiness rule, patch-merge updates, and the completion
// orchestration that ties a successful token redemption and charge to a new
// order. It is the reference [checkout.CheckoutProvider].
package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	checkout "github.com/sumup/agentic-checkout"
	"github.com/sumup/agentic-checkout/spt"
)

// Catalog is the read-only product lookup the engine validates carts against.
type Catalog interface {
	Lookup(id string) (checkout.Product, bool)
}

// Config wires the engine's collaborators. Catalog, Tokens, and Processor
// are required; the rest defaults to the in-memory reference setup.
type Config struct {
	Catalog   Catalog
	Tokens    spt.Exchange
	Processor Processor
	Store     SessionStore
	Policy    Policy
	// Currency is the lowercase ISO 4217 code all sessions settle in.
	Currency string
	// OrderPermalinkBase prefixes order permalink URLs.
	OrderPermalinkBase string
	// Clock provides deterministic time in tests.
	Clock func() time.Time
}

// Engine owns the checkout session lifecycle.
type Engine struct {
	store         SessionStore
	catalog       Catalog
	tokens        spt.Exchange
	processor     Processor
	policy        Policy
	currency      string
	permalinkBase string
	clock         func() time.Time
}

// New builds an [Engine] from cfg.
func New(cfg Config) *Engine {
	if cfg.Catalog == nil {
		panic("engine: catalog is required")
	}
	if cfg.Tokens == nil {
		panic("engine: token exchange is required")
	}
	if cfg.Processor == nil {
		panic("engine: payment processor is required")
	}
	e := &Engine{
		store:         cfg.Store,
		catalog:       cfg.Catalog,
		tokens:        cfg.Tokens,
		processor:     cfg.Processor,
		policy:        cfg.Policy,
		currency:      strings.ToLower(cfg.Currency),
		permalinkBase: strings.TrimSuffix(cfg.OrderPermalinkBase, "/"),
		clock:         cfg.Clock,
	}
	if e.store == nil {
		e.store = NewMemoryStore()
	}
	if e.policy == nil {
		e.policy = FlatRatePolicy{
			TaxBasisPoints: 800,
			ShippingPrices: map[string]int{
				OptionStandardShipping: 0,
				OptionExpressShipping:  1200,
			},
		}
	}
	if e.currency == "" {
		e.currency = "usd"
	}
	if e.permalinkBase == "" {
		e.permalinkBase = "https://merchant.example/orders"
	}
	if e.clock == nil {
		e.clock = time.Now
	}
	return e
}

// CreateSession implements [checkout.CheckoutProvider].
func (e *Engine) CreateSession(_ context.Context, req checkout.CheckoutSessionCreateRequest) (*checkout.CheckoutSession, error) {
	lineItems, err := e.priceItems(req.Items)
	if err != nil {
		return nil, err
	}
	now := e.clock().UTC()
	session := checkout.CheckoutSession{
		ID:                 newID("cs"),
		Currency:           e.currency,
		LineItems:          lineItems,
		Buyer:              cloneBuyer(req.Buyer),
		FulfillmentAddress: cloneAddress(req.FulfillmentAddress),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	e.refresh(&session)
	e.store.Insert(session)
	return &session, nil
}

// GetSession implements [checkout.CheckoutProvider].
func (e *Engine) GetSession(_ context.Context, id string) (*checkout.CheckoutSession, error) {
	session, ok := e.store.Get(id)
	if !ok {
		return nil, checkout.NewNotFoundError(fmt.Sprintf("checkout session %s not found", id))
	}
	return &session, nil
}

// UpdateSession implements [checkout.CheckoutProvider]. The request is a
// patch: absent fields stay untouched, explicit nulls clear. Changing the
// fulfillment address drops the selected option because availability is
// address-dependent; changing items alone keeps it unless the option set no
// longer carries it.
func (e *Engine) UpdateSession(_ context.Context, id string, req checkout.CheckoutSessionUpdateRequest) (*checkout.CheckoutSession, error) {
	snapshot, found, err := e.store.Mutate(id, func(session *checkout.CheckoutSession) error {
		if session.Status.Terminal() {
			return terminalConflict(id, session.Status)
		}
		next := cloneSession(*session)
		if req.Items != nil {
			lineItems, err := e.priceItems(*req.Items)
			if err != nil {
				return err
			}
			next.LineItems = lineItems
		}
		if req.Buyer.Set {
			if req.Buyer.Null {
				next.Buyer = nil
			} else {
				buyer := req.Buyer.Value
				next.Buyer = &buyer
			}
		}
		if req.FulfillmentAddress.Set {
			if req.FulfillmentAddress.Null {
				next.FulfillmentAddress = nil
			} else {
				address := req.FulfillmentAddress.Value
				next.FulfillmentAddress = &address
			}
			next.FulfillmentOptionID = nil
		}
		next.FulfillmentOptions = e.buildFulfillmentOptions(next.FulfillmentAddress, next.LineItems)
		if req.FulfillmentOptionID.Set {
			if req.FulfillmentOptionID.Null {
				next.FulfillmentOptionID = nil
			} else {
				if !optionInSet(next.FulfillmentOptions, req.FulfillmentOptionID.Value) {
					return checkout.NewInvalidRequestError(
						fmt.Sprintf("fulfillment option %s is not available", req.FulfillmentOptionID.Value),
						checkout.WithOffendingParam("$.fulfillment_option_id"),
					)
				}
				selected := req.FulfillmentOptionID.Value
				next.FulfillmentOptionID = &selected
			}
		} else if next.FulfillmentOptionID != nil && !optionInSet(next.FulfillmentOptions, *next.FulfillmentOptionID) {
			next.FulfillmentOptionID = nil
		}
		next.Totals = ComputeTotals(next.LineItems, next.FulfillmentOptionID, next.FulfillmentAddress, e.policy)
		next.Status = readiness(&next)
		next.UpdatedAt = e.clock().UTC()
		*session = next
		return nil
	})
	if !found {
		return nil, checkout.NewNotFoundError(fmt.Sprintf("checkout session %s not found", id))
	}
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// CompleteSession implements [checkout.CheckoutProvider]. The orchestration
// runs entirely inside the per-session critical section: redeem the token
// once, validate its limits, charge once, then transition with the order
// attached. Any failure before the transition leaves the session in
// ready_for_payment; the redeemed token, if any, is burned either way.
func (e *Engine) CompleteSession(ctx context.Context, id string, req checkout.CheckoutSessionCompleteRequest) (*checkout.CheckoutSession, error) {
	snapshot, found, err := e.store.Mutate(id, func(session *checkout.CheckoutSession) error {
		if session.Status.Terminal() {
			return terminalConflict(id, session.Status)
		}
		if session.Status != checkout.CheckoutSessionStatusReadyForPayment {
			return checkout.NewConflictError(fmt.Sprintf("checkout session %s is not ready for payment", id))
		}
		grant, err := e.tokens.Redeem(ctx, req.PaymentData.Token)
		if err != nil {
			return mapRedeemError(err)
		}
		if !strings.EqualFold(grant.UsageLimits.Currency, session.Currency) {
			return checkout.NewPaymentError(
				checkout.CurrencyMismatch,
				fmt.Sprintf("payment token is limited to %s, session settles in %s", grant.UsageLimits.Currency, session.Currency),
			)
		}
		if grant.UsageLimits.MaxAmount < session.Totals.Total {
			return checkout.NewPaymentError(
				checkout.AmountExceedsLimit,
				fmt.Sprintf("session total %d exceeds the token's max amount %d", session.Totals.Total, grant.UsageLimits.MaxAmount),
			)
		}
		if err := e.processor.Charge(ctx, grant.PaymentMethod, session.Totals.Total, session.Currency); err != nil {
			return mapChargeError(err)
		}
		if req.Buyer != nil {
			session.Buyer = cloneBuyer(req.Buyer)
		}
		orderID := newID("ord")
		session.Status = checkout.CheckoutSessionStatusCompleted
		session.Order = &checkout.Order{
			ID:                orderID,
			CheckoutSessionID: session.ID,
			PermalinkURL:      e.permalinkBase + "/" + orderID,
		}
		session.UpdatedAt = e.clock().UTC()
		return nil
	})
	if !found {
		return nil, checkout.NewNotFoundError(fmt.Sprintf("checkout session %s not found", id))
	}
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// CancelSession implements [checkout.CheckoutProvider].
func (e *Engine) CancelSession(_ context.Context, id string) (*checkout.CheckoutSession, error) {
	snapshot, found, err := e.store.Mutate(id, func(session *checkout.CheckoutSession) error {
		if session.Status.Terminal() {
			return terminalConflict(id, session.Status)
		}
		session.Status = checkout.CheckoutSessionStatusCanceled
		session.UpdatedAt = e.clock().UTC()
		return nil
	})
	if !found {
		return nil, checkout.NewNotFoundError(fmt.Sprintf("checkout session %s not found", id))
	}
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// priceItems validates the requested items against the catalog and prices
// them. Session line-item ids are derived from item ids so repricing an
// unchanged cart is byte-for-byte identical.
func (e *Engine) priceItems(items []checkout.Item) ([]checkout.LineItem, error) {
	lineItems := make([]checkout.LineItem, 0, len(items))
	for i, item := range items {
		product, ok := e.catalog.Lookup(item.ID)
		if !ok {
			return nil, checkout.NewHTTPError(
				http.StatusBadRequest,
				checkout.InvalidRequest,
				checkout.UnknownItem,
				fmt.Sprintf("item %s does not exist", item.ID),
				checkout.WithOffendingParam(fmt.Sprintf("$.items[%d].id", i)),
			)
		}
		if item.Quantity > product.Stock {
			return nil, checkout.NewHTTPError(
				http.StatusBadRequest,
				checkout.InvalidRequest,
				checkout.OutOfStock,
				fmt.Sprintf("item %s has %d in stock, %d requested", item.ID, product.Stock, item.Quantity),
				checkout.WithOffendingParam(fmt.Sprintf("$.items[%d].quantity", i)),
			)
		}
		lineItems = append(lineItems, checkout.LineItem{
			ID:         "li_" + item.ID,
			Item:       item,
			BaseAmount: product.Price,
			Subtotal:   product.Price * item.Quantity,
		})
	}
	return lineItems, nil
}

// refresh recomputes the derived parts of a non-terminal session: option
// set, selection validity, totals, and readiness.
func (e *Engine) refresh(session *checkout.CheckoutSession) {
	session.FulfillmentOptions = e.buildFulfillmentOptions(session.FulfillmentAddress, session.LineItems)
	if session.FulfillmentOptionID != nil && !optionInSet(session.FulfillmentOptions, *session.FulfillmentOptionID) {
		session.FulfillmentOptionID = nil
	}
	session.Totals = ComputeTotals(session.LineItems, session.FulfillmentOptionID, session.FulfillmentAddress, e.policy)
	session.Status = readiness(session)
}

// readiness evaluates the state-machine rule: payment requires a buyer, an
// address, a still-valid fulfillment selection, and a non-empty cart.
func readiness(session *checkout.CheckoutSession) checkout.CheckoutSessionStatus {
	switch {
	case len(session.LineItems) == 0,
		session.Buyer == nil,
		session.FulfillmentAddress == nil,
		session.FulfillmentOptionID == nil,
		!optionInSet(session.FulfillmentOptions, *session.FulfillmentOptionID):
		return checkout.CheckoutSessionStatusNotReadyForPayment
	default:
		return checkout.CheckoutSessionStatusReadyForPayment
	}
}

func terminalConflict(id string, status checkout.CheckoutSessionStatus) error {
	return checkout.NewConflictError(fmt.Sprintf("checkout session %s is %s and can no longer change", id, status))
}

func mapRedeemError(err error) error {
	switch {
	case errors.Is(err, spt.ErrTokenNotFound):
		return checkout.NewNotFoundError("payment token not found")
	case errors.Is(err, spt.ErrTokenExpired):
		return checkout.NewPaymentError(checkout.TokenExpired, "payment token has expired")
	case errors.Is(err, spt.ErrTokenRedeemed):
		return checkout.NewPaymentError(checkout.TokenExpired, "payment token was already spent")
	case errors.Is(err, context.DeadlineExceeded):
		return checkout.NewUpstreamError(checkout.UpstreamTimeout, "token exchange timed out", checkout.WithStatusCode(http.StatusGatewayTimeout))
	default:
		return checkout.NewUpstreamError(checkout.UpstreamUnreachable, "token exchange unavailable: "+err.Error())
	}
}

func mapChargeError(err error) error {
	var decline *Decline
	switch {
	case errors.As(err, &decline):
		return checkout.NewPaymentError(checkout.PaymentDeclined, decline.Reason)
	case errors.Is(err, context.DeadlineExceeded):
		return checkout.NewUpstreamError(checkout.UpstreamTimeout, "payment processor timed out", checkout.WithStatusCode(http.StatusGatewayTimeout))
	default:
		return checkout.NewUpstreamError(checkout.UpstreamUnreachable, "payment processor unavailable: "+err.Error())
	}
}

func newID(prefix string) string {
	id := uuid.New()
	return fmt.Sprintf("%s_%x", prefix, id[:12])
}
