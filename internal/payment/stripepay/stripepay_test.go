package stripepay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"

	"github.com/emberline/glowmart/internal/payment"
)

const testSecret = "whsec_test_secret"

// signPayload produces a Stripe-Signature header for the given payload, the
// same t=...,v1=... scheme Stripe uses.
func signPayload(t *testing.T, payload []byte, secret string, at time.Time) string {
	t.Helper()

	ts := fmt.Sprintf("%d", at.Unix())
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(payload)

	return fmt.Sprintf("t=%s,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func eventPayload(eventType string) []byte {
	return fmt.Appendf(nil, `{
		"id": "evt_test_1",
		"object": "event",
		"api_version": %q,
		"type": %q,
		"data": {
			"object": {
				"id": "cs_test_1",
				"object": "checkout.session",
				"metadata": {"order_id": "order-42"},
				"payment_status": "paid",
				"payment_method_types": ["card"],
				"amount_total": 4999,
				"currency": "usd"
			}
		}
	}`, stripe.APIVersion, eventType)
}

func TestWebhook_Parse(t *testing.T) {
	wh := NewWebhook(testSecret)
	payload := eventPayload("checkout.session.completed")

	settlement, err := wh.Parse(payload, signPayload(t, payload, testSecret, time.Now()))
	require.NoError(t, err)
	require.NotNil(t, settlement)

	assert.Equal(t, "order-42", settlement.OrderID)
	assert.Equal(t, "paid", settlement.Status)
	assert.Equal(t, "card", settlement.Method)
	assert.Equal(t, int64(4999), settlement.AmountMinor)
	assert.Equal(t, "usd", settlement.Currency)
}

func TestWebhook_Parse_BadSignature(t *testing.T) {
	wh := NewWebhook(testSecret)
	payload := eventPayload("checkout.session.completed")

	_, err := wh.Parse(payload, signPayload(t, payload, "whsec_wrong_secret", time.Now()))
	require.ErrorIs(t, err, payment.ErrInvalidSignature)
}

func TestWebhook_Parse_StaleTimestamp(t *testing.T) {
	wh := NewWebhook(testSecret)
	payload := eventPayload("checkout.session.completed")

	_, err := wh.Parse(payload, signPayload(t, payload, testSecret, time.Now().Add(-time.Hour)))
	require.ErrorIs(t, err, payment.ErrInvalidSignature)
}

func TestWebhook_Parse_OtherEventIgnored(t *testing.T) {
	wh := NewWebhook(testSecret)
	payload := eventPayload("payment_intent.succeeded")

	settlement, err := wh.Parse(payload, signPayload(t, payload, testSecret, time.Now()))
	require.NoError(t, err)
	assert.Nil(t, settlement)
}

func TestWebhook_Parse_MissingMethodType(t *testing.T) {
	wh := NewWebhook(testSecret)
	payload := fmt.Appendf(nil, `{
		"id": "evt_test_2",
		"object": "event",
		"api_version": %q,
		"type": "checkout.session.completed",
		"data": {
			"object": {
				"id": "cs_test_2",
				"object": "checkout.session",
				"metadata": {"order_id": "order-43"},
				"payment_status": "paid",
				"amount_total": 100,
				"currency": "usd"
			}
		}
	}`, stripe.APIVersion)

	settlement, err := wh.Parse(payload, signPayload(t, payload, testSecret, time.Now()))
	require.NoError(t, err)
	require.NotNil(t, settlement)
	assert.Equal(t, "", settlement.Method)
}
