package payments

import (
	"context"
	"fmt"
	"math"

	stripe "github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
)

// StripeClient is a thin wrapper around stripe-go for charging quotes.
type StripeClient struct{}

// NewStripeClient initializes the stripe client with the given secret key.
func NewStripeClient(apiKey string) *StripeClient {
	stripe.Key = apiKey
	return &StripeClient{}
}

// Charge creates and confirms a PaymentIntent for the full quote amount.
// The amount is in major currency units (dollars) and converted to the
// smallest unit Stripe expects. It returns the PaymentIntent ID on success.
func (s *StripeClient) Charge(ctx context.Context, userID string, amount float64, currency, paymentMethodID string) (string, error) {
	if amount <= 0 {
		return "", fmt.Errorf("payments: invalid charge amount %.2f", amount)
	}

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(int64(math.Round(amount * 100))),
		Currency:      stripe.String(currency),
		PaymentMethod: stripe.String(paymentMethodID),
		Confirm:       stripe.Bool(true),
		// Off-session card-on-file flows are out; redirects are unusable
		// from a server-initiated confirm.
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	params.Context = ctx
	if userID != "" {
		params.AddMetadata("user_id", userID)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", err
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return "", fmt.Errorf("payments: payment intent %s not completed (status %s)", pi.ID, pi.Status)
	}
	return pi.ID, nil
}
