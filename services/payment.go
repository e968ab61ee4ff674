package services

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PaymentResult is the gateway-agnostic outcome of a charge attempt. A real
// provider integration must express declines and timeouts through
// Success=false rather than an error; errors are reserved for transport or
// runtime failures.
type PaymentResult struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transaction_id,omitempty"`
	Message       string `json:"message,omitempty"`
}

// PaymentGateway charges a donor. Implementations must honor ctx
// cancellation; the donation workflow imposes a deadline on every call.
type PaymentGateway interface {
	Charge(ctx context.Context, amount float64) (PaymentResult, error)
}

// StubGateway simulates an external payment provider: it waits a fixed delay
// and approves the charge with a generated transaction id.
type StubGateway struct {
	Delay time.Duration
}

func (g StubGateway) Charge(ctx context.Context, amount float64) (PaymentResult, error) {
	select {
	case <-time.After(g.Delay):
	case <-ctx.Done():
		return PaymentResult{Success: false, Message: "payment gateway timed out"}, ctx.Err()
	}
	return PaymentResult{
		Success:       true,
		TransactionID: "txn_" + uuid.NewString(),
	}, nil
}
