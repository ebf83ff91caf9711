package usecase

import (
	"errors"
)

// Business errors surfaced to the transport layer, which maps them onto
// HTTP status codes. Entitlement errors (expired, limit reached) live with
// the purchase entity and pass through unchanged.
var (
	ErrBookNotFound     = errors.New("book not found or not available")
	ErrPurchaseNotFound = errors.New("purchase record not found")
	ErrTokenNotFound    = errors.New("invalid download token")

	ErrAmountMismatch = errors.New("amount does not match book price")

	ErrPaymentRejected    = errors.New("payment verification failed")
	ErrGatewayRejected    = errors.New("failed to initialize payment")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// A verify or webhook outcome arrived for a purchase already finalized
	// with the opposite status. The terminal state is never overwritten.
	ErrConflictingOutcome = errors.New("conflicting outcome for finalized purchase")

	ErrInvalidSignature = errors.New("invalid webhook signature")
)
