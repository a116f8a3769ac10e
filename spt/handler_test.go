package spt

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestHandlerIssueToken(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	exchange := NewMemoryExchange(WithClock(func() time.Time { return now }))
	handler := NewHandler(exchange)

	form := url.Values{}
	form.Set("payment_method", "pm_card_visa")
	form.Set("usage_limits[currency]", "usd")
	form.Set("usage_limits[max_amount]", "5000")
	form.Set("usage_limits[expires_at]", "1767268800")
	form.Set("seller_details[network_id]", "acp")
	form.Set("seller_details[external_id]", "merchant_1")

	rec := postForm(t, handler, form)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", rec.Code, rec.Body.String())
	}
	var decoded struct {
		ID       string `json:"id"`
		Object   string `json:"object"`
		Created  int64  `json:"created"`
		Livemode bool   `json:"livemode"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !strings.HasPrefix(decoded.ID, "spt_") {
		t.Fatalf("unexpected id %s", decoded.ID)
	}
	if decoded.Object != "shared_payment.issued_token" {
		t.Fatalf("unexpected object %s", decoded.Object)
	}
	if decoded.Created != now.Unix() {
		t.Fatalf("unexpected created %d", decoded.Created)
	}
	if decoded.Livemode {
		t.Fatalf("mock service must never report livemode")
	}
}

func TestHandlerIssueDefaultsCurrency(t *testing.T) {
	t.Parallel()

	exchange := NewMemoryExchange()
	handler := NewHandler(exchange)

	form := url.Values{}
	form.Set("payment_method", "pm_card_visa")
	form.Set("usage_limits[max_amount]", "5000")
	form.Set("usage_limits[expires_at]", "1767268800")

	rec := postForm(t, handler, form)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", rec.Code, rec.Body.String())
	}

	var decoded struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	token, err := exchange.Inspect(context.Background(), decoded.ID)
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if token.UsageLimits.Currency != "usd" {
		t.Fatalf("expected usd default got %s", token.UsageLimits.Currency)
	}
}

func TestHandlerIssueValidation(t *testing.T) {
	t.Parallel()

	tests := map[string]url.Values{
		"missing payment method": {
			"usage_limits[max_amount]": {"5000"},
			"usage_limits[expires_at]": {"1767268800"},
		},
		"non-numeric max amount": {
			"payment_method":           {"pm_card_visa"},
			"usage_limits[max_amount]": {"lots"},
			"usage_limits[expires_at]": {"1767268800"},
		},
		"non-numeric expiry": {
			"payment_method":           {"pm_card_visa"},
			"usage_limits[max_amount]": {"5000"},
			"usage_limits[expires_at]": {"tomorrow"},
		},
		"missing limits": {
			"payment_method": {"pm_card_visa"},
		},
	}

	for name, form := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			rec := postForm(t, NewHandler(NewMemoryExchange()), form)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 got %d body=%s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestHandlerRetrieveToken(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	exchange := NewMemoryExchange(WithClock(func() time.Time { return now }))
	handler := NewHandler(exchange)
	token := issueToken(t, exchange, now.Add(time.Hour).Unix())

	req := httptest.NewRequest(http.MethodGet, "/v1/shared_payment/granted_tokens/"+token.ID, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", rec.Code, rec.Body.String())
	}
	var decoded struct {
		ID          string      `json:"id"`
		Object      string      `json:"object"`
		Status      Status      `json:"status"`
		UsageLimits UsageLimits `json:"usage_limits"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Object != "shared_payment.granted_token" {
		t.Fatalf("unexpected object %s", decoded.Object)
	}
	if decoded.Status != StatusActive {
		t.Fatalf("unexpected status %s", decoded.Status)
	}
	if decoded.UsageLimits.MaxAmount != 5000 {
		t.Fatalf("unexpected max amount %d", decoded.UsageLimits.MaxAmount)
	}
}

func TestHandlerRetrieveUnknownToken(t *testing.T) {
	t.Parallel()

	handler := NewHandler(NewMemoryExchange())
	req := httptest.NewRequest(http.MethodGet, "/v1/shared_payment/granted_tokens/spt_missing", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}

func TestHandlerRetrieveSpentTokenGone(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	exchange := NewMemoryExchange(WithClock(func() time.Time { return now }))
	handler := NewHandler(exchange)
	token := issueToken(t, exchange, now.Add(time.Hour).Unix())

	if _, err := exchange.Redeem(context.Background(), token.ID); err != nil {
		t.Fatalf("Redeem() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/shared_payment/granted_tokens/"+token.ID, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusGone {
		t.Fatalf("expected 410 got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "token_expired") {
		t.Fatalf("expected token_expired code, body=%s", rec.Body.String())
	}
}

func TestHandlerHealth(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	exchange := NewMemoryExchange(WithClock(func() time.Time { return now }))
	handler := NewHandler(exchange)
	issueToken(t, exchange, now.Add(time.Hour).Unix())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var decoded struct {
		Status       string `json:"status"`
		ActiveTokens int    `json:"active_tokens"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Status != "healthy" {
		t.Fatalf("unexpected status %s", decoded.Status)
	}
	if decoded.ActiveTokens != 1 {
		t.Fatalf("expected 1 active token got %d", decoded.ActiveTokens)
	}
}

func postForm(t *testing.T, handler http.Handler, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/v1/shared_payment/issued_tokens", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}
