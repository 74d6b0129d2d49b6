// Package payment abstracts the checkout gateway so services can be tested
// against a stub and the Stripe client stays behind one seam.
package payment

import (
	"context"
	"errors"
	"time"
)

// ErrSessionNotFound is returned when the gateway has no session for the id.
var ErrSessionNotFound = errors.New("checkout session not found")

// Session modes.
const (
	ModePayment      = "payment"
	ModeSubscription = "subscription"
)

// Payment statuses as reported by the gateway.
const (
	StatusPaid              = "paid"
	StatusUnpaid            = "unpaid"
	StatusNoPaymentRequired = "no_payment_required"
)

// CheckoutSession is the gateway-neutral projection of a checkout session.
type CheckoutSession struct {
	ID              string
	URL             string
	Mode            string
	PaymentStatus   string
	PaymentIntentID string
	AmountTotal     int64 // minor units
	Metadata        map[string]string

	// Subscription-mode fields.
	CustomerID         string
	SubscriptionID     string
	SubscriptionStatus string
	CurrentPeriodEnd   time.Time
}

// Paid reports whether the session's payment is settled.
func (s *CheckoutSession) Paid() bool {
	return s.PaymentStatus == StatusPaid || s.PaymentStatus == StatusNoPaymentRequired
}

// CheckoutParams describes a one-time payment checkout to create.
type CheckoutParams struct {
	// AmountMinor is the charge amount in minor currency units.
	AmountMinor int64
	Currency    string
	ProductName string
	// CustomerEmail prefills the payment page.
	CustomerEmail string
	// Metadata is round-tripped through the gateway and drives
	// reconciliation on verify.
	Metadata map[string]string
	// IdempotencyKey dedupes retried session creates at the gateway.
	IdempotencyKey string
	SuccessURL     string
	CancelURL      string
}

// SubscriptionParams describes a recurring subscription checkout to create.
type SubscriptionParams struct {
	PriceID        string
	CustomerEmail  string
	Metadata       map[string]string
	IdempotencyKey string
	SuccessURL     string
	CancelURL      string
}

// Gateway is the payment provider seam.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)
	CreateSubscriptionSession(ctx context.Context, params SubscriptionParams) (*CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error)
}
