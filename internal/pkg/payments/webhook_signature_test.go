package payments

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const testWebhookSecret = "whsec_test_0123456789"

func TestVerifyWebhookSignatureAcceptsValid(t *testing.T) {
	payload := []byte(`{"event_type":"payment_link.paid","order_id":"order_abc"}`)
	sig := SignWebhookPayload(payload, testWebhookSecret)

	assert.True(t, VerifyWebhookSignature(payload, sig, testWebhookSecret))
}

func TestVerifyWebhookSignatureAcceptsUppercaseHex(t *testing.T) {
	payload := []byte(`{"order_id":"order_abc"}`)
	sig := strings.ToUpper(SignWebhookPayload(payload, testWebhookSecret))

	assert.True(t, VerifyWebhookSignature(payload, sig, testWebhookSecret))
}

func TestVerifyWebhookSignatureRejectsTamperedPayload(t *testing.T) {
	payload := []byte(`{"event_type":"payment_link.paid","order_id":"order_abc","amount":"200.00"}`)
	sig := SignWebhookPayload(payload, testWebhookSecret)

	// Flip a single byte after signing.
	tampered := []byte(strings.Replace(string(payload), "200.00", "900.00", 1))

	assert.False(t, VerifyWebhookSignature(tampered, sig, testWebhookSecret))
}

func TestVerifyWebhookSignatureRejectsWrongSecret(t *testing.T) {
	payload := []byte(`{"order_id":"order_abc"}`)
	sig := SignWebhookPayload(payload, "some-other-secret")

	assert.False(t, VerifyWebhookSignature(payload, sig, testWebhookSecret))
}

func TestVerifyWebhookSignatureFailsClosed(t *testing.T) {
	payload := []byte(`{"order_id":"order_abc"}`)

	assert.False(t, VerifyWebhookSignature(payload, "", testWebhookSecret), "missing header")
	assert.False(t, VerifyWebhookSignature(payload, "zznothex", testWebhookSecret), "malformed hex")
	assert.False(t, VerifyWebhookSignature(payload, SignWebhookPayload(payload, testWebhookSecret), ""), "missing secret")
	assert.False(t, VerifyWebhookSignature(payload, "deadbeef", testWebhookSecret), "truncated signature")
}
