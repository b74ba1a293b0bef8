package controllers

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rahulmehra-dev/GigLedger/internal/pkg/payments"
)

const testWebhookSecret = "whsec_controller_test"

func newWebhookApp() *fiber.App {
	app := fiber.New()
	app.Post("/payments/webhook", HandlePaymentWebhook)
	return app
}

func TestHandlePaymentWebhookRejectsMissingSignature(t *testing.T) {
	t.Setenv("PAYMENT_WEBHOOK_SECRET", testWebhookSecret)
	app := newWebhookApp()

	req := httptest.NewRequest("POST", "/payments/webhook",
		bytes.NewReader([]byte(`{"event_type":"payment_link.paid","order_id":"order_1"}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandlePaymentWebhookRejectsTamperedBody(t *testing.T) {
	t.Setenv("PAYMENT_WEBHOOK_SECRET", testWebhookSecret)
	app := newWebhookApp()

	signed := []byte(`{"event_type":"payment_link.paid","order_id":"order_1","amount":"200.00"}`)
	sig := payments.SignWebhookPayload(signed, testWebhookSecret)
	tampered := bytes.Replace(signed, []byte("200.00"), []byte("900.00"), 1)

	req := httptest.NewRequest("POST", "/payments/webhook", bytes.NewReader(tampered))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Signature", sig)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandlePaymentWebhookRejectsUnparsablePayload(t *testing.T) {
	t.Setenv("PAYMENT_WEBHOOK_SECRET", testWebhookSecret)
	app := newWebhookApp()

	// Correctly signed, but the body carries no order reference.
	body := []byte(`{"event_type":"payment_link.paid"}`)
	sig := payments.SignWebhookPayload(body, testWebhookSecret)

	req := httptest.NewRequest("POST", "/payments/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Signature", sig)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandlePaymentWebhookRejectsWhenSecretUnset(t *testing.T) {
	t.Setenv("PAYMENT_WEBHOOK_SECRET", "")
	app := newWebhookApp()

	body := []byte(`{"event_type":"payment_link.paid","order_id":"order_1"}`)
	sig := payments.SignWebhookPayload(body, "whatever")

	req := httptest.NewRequest("POST", "/payments/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Signature", sig)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
