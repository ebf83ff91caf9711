package ports

import (
	"context"

	"github.com/shopspring/decimal"
)

// InitializeTransaction is the request to start a remote charge.
type InitializeTransaction struct {
	Email     string
	Amount    decimal.Decimal
	Currency  string
	Reference string
	Metadata  map[string]string
}

// Authorization is the gateway's redirect handle for a started charge.
type Authorization struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

// VerificationResult is the gateway's view of a finished (or declined)
// charge.
type VerificationResult struct {
	TransactionID string
	Status        string // "success", "failed", "abandoned", ...
	Amount        decimal.Decimal
	Currency      string
	PaidAt        string
}

// Succeeded reports whether the remote charge completed successfully.
func (r *VerificationResult) Succeeded() bool {
	return r.Status == "success"
}

// PaymentGateway is the remote payment-initialization/verification API.
// Implementations must apply a bounded timeout to every call.
type PaymentGateway interface {
	Initialize(ctx context.Context, req InitializeTransaction) (*Authorization, error)
	Verify(ctx context.Context, reference string) (*VerificationResult, error)
}
