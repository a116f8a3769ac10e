// Package checkout implements the merchant-side contract of the Agentic
// Commerce Protocol (ACP): buyer-facing agents create, mutate, complete, or
// cancel checkout sessions over HTTP, and payment is settled by spending a
// single-use shared payment token instead of exchanging raw card data.
//
// # Checkout
//
// Use [NewCheckoutHandler] with a [CheckoutProvider] implementation to expose
// the ACP checkout contract over net/http. The engine subpackage ships the
// reference provider: an in-memory session engine with the full readiness
// state machine and payment orchestration. Handler options such as
// [WithSignatureVerifier] and [WithRequireSignedRequests] enforce canonical
// JSON request signatures and timestamp skew limits, and [WithAuthenticator]
// guards the surface with Bearer API keys.
//
// # Shared payment tokens
//
// The spt subpackage owns the token exchange: issuing amount, currency, and
// time limited tokens, and redeeming each at most once. Its HTTP facade
// mirrors the Stripe shared-payment endpoints so a facilitator can be swapped
// in without touching the session engine.
package checkout

// APIVersion is sent back on every response and stamped on webhooks.
const APIVersion = "2025-09-29"
