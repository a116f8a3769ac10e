package spt

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	checkout "github.com/sumup/agentic-checkout"
)

const (
	objectIssuedToken  = "shared_payment.issued_token"
	objectGrantedToken = "shared_payment.granted_token"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Handler exposes the token exchange over the Stripe-shaped shared-payment
// endpoints the facilitator calls. Issue is form-encoded; retrieval is
// read-only and returns 410 once a token is spent or expired.
type Handler struct {
	exchange Exchange
	mux      *http.ServeMux
}

// NewHandler wires the shared-payment routes to the provided [Exchange].
func NewHandler(exchange Exchange, middleware ...checkout.Middleware) *Handler {
	if exchange == nil {
		panic("spt: exchange is required")
	}
	h := &Handler{
		exchange: exchange,
		mux:      http.NewServeMux(),
	}
	h.registerRoutes(middleware...)
	return h
}

// ServeHTTP satisfies http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes(middleware ...checkout.Middleware) {
	apply := func(fn http.HandlerFunc) http.HandlerFunc {
		for _, m := range middleware {
			fn = m(fn)
		}
		return fn
	}
	h.mux.HandleFunc("POST /v1/shared_payment/issued_tokens", apply(h.handleIssue))
	h.mux.HandleFunc("GET /v1/shared_payment/granted_tokens/{id}", apply(h.handleRetrieve))
	h.mux.HandleFunc("GET /health", h.handleHealth)
}

type issueRequest struct {
	PaymentMethod string      `validate:"required"`
	Limits        UsageLimits `validate:"required"`
}

func (h *Handler) handleIssue(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		checkout.WriteError(w, checkout.NewInvalidRequestError("request body must be form-encoded"))
		return
	}
	req := issueRequest{
		PaymentMethod: strings.TrimSpace(r.PostForm.Get("payment_method")),
		Limits: UsageLimits{
			Currency: strings.TrimSpace(r.PostForm.Get("usage_limits[currency]")),
		},
	}
	if req.Limits.Currency == "" {
		req.Limits.Currency = "usd"
	}
	var err error
	if req.Limits.MaxAmount, err = formInt(r, "usage_limits[max_amount]"); err != nil {
		checkout.WriteError(w, checkout.NewInvalidRequestError("usage_limits[max_amount] must be an integer", checkout.WithOffendingParam("usage_limits[max_amount]")))
		return
	}
	expires, err := formInt(r, "usage_limits[expires_at]")
	if err != nil {
		checkout.WriteError(w, checkout.NewInvalidRequestError("usage_limits[expires_at] must be a unix timestamp", checkout.WithOffendingParam("usage_limits[expires_at]")))
		return
	}
	req.Limits.ExpiresAt = int64(expires)
	if err := validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		msg := "invalid token parameters"
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			msg = fieldErrs[0].Namespace() + " failed on the " + strconv.Quote(fieldErrs[0].Tag()) + " rule"
		}
		checkout.WriteError(w, checkout.NewInvalidRequestError(msg))
		return
	}
	seller := SellerDetails{
		NetworkID:  strings.TrimSpace(r.PostForm.Get("seller_details[network_id]")),
		ExternalID: strings.TrimSpace(r.PostForm.Get("seller_details[external_id]")),
	}
	token, err := h.exchange.Issue(r.Context(), req.PaymentMethod, req.Limits, seller)
	if err != nil {
		checkout.WriteError(w, checkout.NewInvalidRequestError(err.Error()))
		return
	}
	checkout.WriteJSON(w, http.StatusCreated, struct {
		ID       string `json:"id"`
		Object   string `json:"object"`
		Created  int64  `json:"created"`
		Livemode bool   `json:"livemode"`
	}{
		ID:      token.ID,
		Object:  objectIssuedToken,
		Created: token.Created,
	})
}

func (h *Handler) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	token, err := h.exchange.Inspect(r.Context(), id)
	if err != nil {
		checkout.WriteError(w, checkout.NewNotFoundError("shared payment token "+id+" not found"))
		return
	}
	if token.Status != StatusActive {
		checkout.WriteError(w, checkout.NewHTTPError(
			http.StatusGone,
			checkout.InvalidRequest,
			checkout.TokenExpired,
			"shared payment token is "+string(token.Status),
		))
		return
	}
	checkout.WriteJSON(w, http.StatusOK, struct {
		ID            string        `json:"id"`
		Object        string        `json:"object"`
		PaymentMethod string        `json:"payment_method"`
		UsageLimits   UsageLimits   `json:"usage_limits"`
		SellerDetails SellerDetails `json:"seller_details"`
		Created       int64         `json:"created"`
		Status        Status        `json:"status"`
		Livemode      bool          `json:"livemode"`
	}{
		ID:            token.ID,
		Object:        objectGrantedToken,
		PaymentMethod: token.PaymentMethod,
		UsageLimits:   token.UsageLimits,
		SellerDetails: token.SellerDetails,
		Created:       token.Created,
		Status:        token.Status,
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	active := -1
	if counter, ok := h.exchange.(interface{ ActiveCount() int }); ok {
		active = counter.ActiveCount()
	}
	checkout.WriteJSON(w, http.StatusOK, struct {
		Status       string `json:"status"`
		Service      string `json:"service"`
		ActiveTokens int    `json:"active_tokens"`
	}{
		Status:       "healthy",
		Service:      "shared-payment-tokens",
		ActiveTokens: active,
	})
}

func formInt(r *http.Request, key string) (int, error) {
	raw := strings.TrimSpace(r.PostForm.Get(key))
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
