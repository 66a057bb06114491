package stripepayment

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/demonyhq/demony/pkg/config"
	"github.com/demonyhq/demony/pkg/domain"
	"github.com/demonyhq/demony/pkg/provider/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

const testSecret = "whsec_test"

func signed(t *testing.T, payload string) (string, []byte) {
	t.Helper()
	sp := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    testSecret,
		Timestamp: time.Now(),
	})
	return sp.Header, sp.Payload
}

func checkoutEvent(typ, paymentStatus, status string) string {
	return fmt.Sprintf(`{
		"id": "evt_1",
		"object": "event",
		"api_version": %q,
		"type": %q,
		"data": {"object": {
			"id": "cs_test_1",
			"object": "checkout.session",
			"client_reference_id": "INV_1",
			"payment_status": %q,
			"status": %q,
			"amount_total": 50000,
			"currency": "ghs"
		}}
	}`, stripe.APIVersion, typ, paymentStatus, status)
}

func TestParseWebhook(t *testing.T) {
	s := New(&config.Stripe{ApiKey: "sk_test", SigningSecret: testSecret}, nil)

	tests := []struct {
		name    string
		payload string
		want    payment.PaymentStatus
	}{
		{"completed", checkoutEvent("checkout.session.completed", "paid", "complete"), payment.PaymentCompleted},
		{"expired", checkoutEvent("checkout.session.expired", "unpaid", "expired"), payment.PaymentFailed},
		{"async pending", checkoutEvent("checkout.session.completed", "unpaid", "complete"), payment.PaymentPending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header, body := signed(t, tt.payload)
			ev, err := s.ParseWebhook(context.Background(), body, header)
			require.NoError(t, err)
			require.NotNil(t, ev)
			assert.Equal(t, "cs_test_1", ev.Reference)
			assert.Equal(t, tt.want, ev.Status)
			assert.Equal(t, int64(50000), ev.Amount)
			assert.Equal(t, "GHS", ev.Currency)
		})
	}
}

func TestParseWebhook_BadSignature(t *testing.T) {
	s := New(&config.Stripe{ApiKey: "sk_test", SigningSecret: testSecret}, nil)
	_, err := s.ParseWebhook(context.Background(), []byte(checkoutEvent("checkout.session.completed", "paid", "complete")), "t=1,v1=bad")
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)
}

func TestParseWebhook_UnhandledType(t *testing.T) {
	s := New(&config.Stripe{ApiKey: "sk_test", SigningSecret: testSecret}, nil)
	header, body := signed(t, `{"id":"evt_2","object":"event","type":"customer.created","data":{"object":{}}}`)
	ev, err := s.ParseWebhook(context.Background(), body, header)
	require.NoError(t, err)
	assert.Nil(t, ev)
}
