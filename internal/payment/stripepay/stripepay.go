// Package stripepay adapts the payment ports to Stripe: hosted checkout
// sessions on the way out, signature-verified webhook events on the way in.
package stripepay

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/emberline/glowmart/internal/payment"
)

// Config holds the Stripe credentials and redirect targets.
type Config struct {
	APIKey        string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
}

var _ payment.Gateway = (*Gateway)(nil)

// Gateway implements payment.Gateway against the Stripe API. The client is
// explicit; no package-level key is set.
type Gateway struct {
	api *client.API
	cfg Config
}

// New creates a Gateway with its own Stripe client.
func New(cfg Config) *Gateway {
	api := &client.API{}
	api.Init(cfg.APIKey, nil)
	return &Gateway{api: api, cfg: cfg}
}

// CreateCheckoutSession builds a payment-mode checkout session from the
// order's line items. Unit prices are converted to minor units, and the
// order id rides in the session metadata for webhook correlation.
func (g *Gateway) CreateCheckoutSession(ctx context.Context, req payment.SessionRequest) (string, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, len(req.Items))
	for i, it := range req.Items {
		lineItems[i] = &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(int64(it.Quantity)),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(req.Currency),
				UnitAmount: stripe.Int64(payment.MinorUnits(it.UnitPrice)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:        stripe.String(it.Name),
					Description: stripe.String(it.Description),
				},
			},
		}
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:  lineItems,
		SuccessURL: stripe.String(g.cfg.SuccessURL),
		CancelURL:  stripe.String(g.cfg.CancelURL),
	}
	params.Context = ctx
	params.AddMetadata("order_id", req.OrderID)

	sess, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return "", errors.Wrap(err, "create checkout session")
	}
	return sess.URL, nil
}

var _ payment.SettlementParser = (*Webhook)(nil)

// Webhook implements payment.SettlementParser for Stripe webhook payloads.
type Webhook struct {
	secret string
}

// NewWebhook creates a Webhook verifier with the shared signing secret.
func NewWebhook(secret string) *Webhook {
	return &Webhook{secret: secret}
}

// Parse verifies the Stripe-Signature header against the raw payload and
// extracts the settlement from checkout.session.completed events. Other
// verified event types return (nil, nil).
func (w *Webhook) Parse(payload []byte, sigHeader string) (*payment.Settlement, error) {
	event, err := webhook.ConstructEvent(payload, sigHeader, w.secret)
	if err != nil {
		return nil, errors.Wrap(payment.ErrInvalidSignature, err.Error())
	}

	if event.Type != stripe.EventTypeCheckoutSessionCompleted {
		return nil, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, errors.Wrap(err, "decode checkout session")
	}

	method := ""
	if len(sess.PaymentMethodTypes) > 0 {
		method = sess.PaymentMethodTypes[0]
	}

	return &payment.Settlement{
		OrderID:     sess.Metadata["order_id"],
		Status:      string(sess.PaymentStatus),
		Method:      method,
		AmountMinor: sess.AmountTotal,
		Currency:    string(sess.Currency),
	}, nil
}
