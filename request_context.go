package checkout

import (
	"context"
	"net/http"
	"strings"
)

// RequestContext carries the ACP request headers the chat bridge sends with
// every call, captured before routing so providers can reach them.
type RequestContext struct {
	// API key used to make requests.
	//
	// Example: Bearer facilitator_token
	Authorization string
	// The preferred locale for content like messages and errors.
	//
	// Example: en-US
	AcceptLanguage string
	// Information about the client making this request.
	UserAgent string
	// Key used to ensure requests are idempotent. Captured for correlation;
	// the mock protocol defines no replay contract to enforce.
	IdempotencyKey string
	// Unique key for each request for tracing purposes.
	RequestID string
	// Base64 encoded signature of the request body.
	Signature string
	// Formatted as an RFC 3339 string.
	Timestamp string
	// API version the caller speaks.
	//
	// Example: 2025-09-29
	APIVersion string
}

func requestContextFromRequest(r *http.Request) *RequestContext {
	return &RequestContext{
		Authorization:  strings.TrimSpace(r.Header.Get("Authorization")),
		AcceptLanguage: strings.TrimSpace(r.Header.Get("Accept-Language")),
		UserAgent:      strings.TrimSpace(r.Header.Get("User-Agent")),
		IdempotencyKey: strings.TrimSpace(r.Header.Get("Idempotency-Key")),
		RequestID:      strings.TrimSpace(r.Header.Get("Request-Id")),
		Signature:      strings.TrimSpace(r.Header.Get("Signature")),
		Timestamp:      strings.TrimSpace(r.Header.Get("Timestamp")),
		APIVersion:     strings.TrimSpace(r.Header.Get("API-Version")),
	}
}

type requestContextKey struct{}

func contextWithRequestContext(ctx context.Context, requestCtx *RequestContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if requestCtx == nil {
		return ctx
	}
	return context.WithValue(ctx, requestContextKey{}, requestCtx)
}

// RequestContextFromContext extracts the HTTP request metadata previously stored in the context.
func RequestContextFromContext(ctx context.Context) *RequestContext {
	if ctx == nil {
		return nil
	}
	if requestCtx, ok := ctx.Value(requestContextKey{}).(*RequestContext); ok {
		return requestCtx
	}
	return nil
}
