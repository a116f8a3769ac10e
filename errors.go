package checkout

import (
	"net/http"
	"time"
)

// ErrorType mirrors the ACP error.type field.
type ErrorType string

const (
	InvalidRequest     ErrorType = "invalid_request"     // Missing or malformed field.
	ProcessingError    ErrorType = "processing_error"    // Downstream gateway or network failure.
	RateLimitExceeded  ErrorType = "rate_limit_exceeded" // Too many requests.
	ServiceUnavailable ErrorType = "service_unavailable" // Temporary outage or maintenance.
)

// ErrorCode is a machine-readable identifier for the specific failure.
type ErrorCode string

const (
	NotFound             ErrorCode = "not_found"             // Unknown session or token id.
	Conflict             ErrorCode = "conflict"              // Operation illegal for the current session status.
	OutOfStock           ErrorCode = "out_of_stock"          // Requested quantity exceeds available stock.
	UnknownItem          ErrorCode = "unknown_item"          // Item id does not exist in the catalog.
	PaymentDeclined      ErrorCode = "payment_declined"      // Processor refused the charge.
	TokenExpired         ErrorCode = "token_expired"         // Payment token past expires_at or already spent.
	CurrencyMismatch     ErrorCode = "currency_mismatch"     // Token currency differs from the session currency.
	AmountExceedsLimit   ErrorCode = "amount_exceeds_limit"  // Session total above the token's max_amount.
	UpstreamTimeout      ErrorCode = "upstream_timeout"      // Token service or processor timed out.
	UpstreamUnreachable  ErrorCode = "upstream_unreachable"  // Token service or processor unreachable.
	InvalidSignature     ErrorCode = "invalid_signature"     // Signature is missing or does not match the payload.
	SignatureRequired    ErrorCode = "signature_required"    // Signed requests are required but headers were missing.
	StaleTimestamp       ErrorCode = "stale_timestamp"       // Timestamp skew exceeded the allowed window.
	MissingAuthorization ErrorCode = "missing_authorization" // Authorization header missing.
	InvalidAuthorization ErrorCode = "invalid_authorization" // Authorization header malformed or API key invalid.
)

// Error represents a structured ACP error payload.
type Error struct {
	Type    ErrorType `json:"type"`
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Param   *string   `json:"param,omitempty"`

	status     int           `json:"-"`
	retryAfter time.Duration `json:"-"`
}

// Error makes *Error satisfy the stdlib error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// StatusCode returns the HTTP status this error renders as.
func (e *Error) StatusCode() int {
	if e == nil {
		return http.StatusInternalServerError
	}
	return e.status
}

// RetryAfter returns the duration clients should wait before retrying.
func (e *Error) RetryAfter() time.Duration {
	if e == nil {
		return 0
	}
	return e.retryAfter
}

type errorOption func(*Error)

// WithOffendingParam sets the JSON path for the field that triggered the error.
func WithOffendingParam(jsonPath string) errorOption {
	return func(er *Error) {
		er.Param = &jsonPath
	}
}

// WithStatusCode overrides the HTTP status code returned to the client.
func WithStatusCode(status int) errorOption {
	return func(er *Error) {
		er.status = status
	}
}

// WithRetryAfter specifies how long clients should wait before retrying.
func WithRetryAfter(d time.Duration) errorOption {
	return func(er *Error) {
		er.retryAfter = d
	}
}

// NewInvalidRequestError builds a Bad Request ACP error payload.
func NewInvalidRequestError(message string, opts ...errorOption) *Error {
	return newError(InvalidRequest, ErrorCode(InvalidRequest), message, append([]errorOption{WithStatusCode(http.StatusBadRequest)}, opts...)...)
}

// NewNotFoundError builds a Not Found ACP error payload.
func NewNotFoundError(message string, opts ...errorOption) *Error {
	return newError(InvalidRequest, NotFound, message, append([]errorOption{WithStatusCode(http.StatusNotFound)}, opts...)...)
}

// NewConflictError builds a Conflict ACP error payload for operations that
// are illegal in the session's current status.
func NewConflictError(message string, opts ...errorOption) *Error {
	return newError(InvalidRequest, Conflict, message, append([]errorOption{WithStatusCode(http.StatusConflict)}, opts...)...)
}

// NewPaymentError builds a Payment Required ACP error payload. The code
// pins down which of the token or processor checks failed.
func NewPaymentError(code ErrorCode, message string, opts ...errorOption) *Error {
	return newError(ProcessingError, code, message, append([]errorOption{WithStatusCode(http.StatusPaymentRequired)}, opts...)...)
}

// NewUpstreamError builds a Bad Gateway ACP error payload for unreachable
// collaborators. Timeouts override the status to 504 via [WithStatusCode].
func NewUpstreamError(code ErrorCode, message string, opts ...errorOption) *Error {
	return newError(ProcessingError, code, message, append([]errorOption{WithStatusCode(http.StatusBadGateway)}, opts...)...)
}

// NewRateLimitExceededError builds a Too Many Requests ACP error payload.
func NewRateLimitExceededError(message string, opts ...errorOption) *Error {
	return newError(RateLimitExceeded, ErrorCode(RateLimitExceeded), message, append([]errorOption{WithStatusCode(http.StatusTooManyRequests)}, opts...)...)
}

// NewServiceUnavailableError builds a Service Unavailable ACP error payload.
func NewServiceUnavailableError(message string, opts ...errorOption) *Error {
	return newError(ServiceUnavailable, ErrorCode(ServiceUnavailable), message, append([]errorOption{WithStatusCode(http.StatusServiceUnavailable)}, opts...)...)
}

// NewProcessingError builds an Internal Server Error ACP error payload.
func NewProcessingError(message string, opts ...errorOption) *Error {
	return newError(ProcessingError, ErrorCode(ProcessingError), message, append([]errorOption{WithStatusCode(http.StatusInternalServerError)}, opts...)...)
}

// NewHTTPError allows callers to control the status code explicitly.
func NewHTTPError(status int, typ ErrorType, code ErrorCode, message string, opts ...errorOption) *Error {
	return newError(typ, code, message, append(opts, WithStatusCode(status))...)
}

// newError builds a typed error payload matching the ACP schema.
func newError(typ ErrorType, code ErrorCode, message string, opts ...errorOption) *Error {
	errPayload := &Error{
		Type:    typ,
		Code:    code,
		Message: message,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(errPayload)
	}
	return errPayload
}
