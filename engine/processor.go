package engine

import (
	"context"
	"fmt"
)

// Processor is the upstream payment capture call. The engine invokes it
// exactly once per completion attempt and never retries; retrying a charge
// without idempotency keys risks double capture.
type Processor interface {
	Charge(ctx context.Context, paymentMethod string, amount int, currency string) error
}

// ProcessorFunc lifts bare functions into [Processor].
type ProcessorFunc func(ctx context.Context, paymentMethod string, amount int, currency string) error

// Charge delegates to the wrapped function.
func (f ProcessorFunc) Charge(ctx context.Context, paymentMethod string, amount int, currency string) error {
	return f(ctx, paymentMethod, amount, currency)
}

// Decline is returned by a [Processor] that reached the gateway but was
// refused. Any other processor error is treated as an upstream failure.
type Decline struct {
	Reason string
}

// Error satisfies the error interface.
func (d *Decline) Error() string {
	return fmt.Sprintf("payment declined: %s", d.Reason)
}
