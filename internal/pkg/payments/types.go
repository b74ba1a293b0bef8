package payments

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/rahulmehra-dev/GigLedger/app/models"
	"github.com/shopspring/decimal"
)

// WebhookEventInput is the normalized input for webhook audit persistence.
type WebhookEventInput struct {
	ProcessorOrderID string
	EventType        string
	RawPayload       string
	SignatureValid   bool
}

// CreatePaymentInput describes a payment-link request coming from the UI layer.
type CreatePaymentInput struct {
	ContractRef   string          `json:"contract_ref" validate:"required,max=100"`
	FreelancerID  uint            `json:"freelancer_id" validate:"required"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentType   string          `json:"payment_type" validate:"omitempty,oneof=advance completion milestone"`
	CustomerName  string          `json:"customer_name" validate:"required,max=150"`
	CustomerEmail string          `json:"customer_email" validate:"required,email"`
	CustomerPhone string          `json:"customer_phone" validate:"required,max=20"`
	ReturnURL     string          `json:"return_url" validate:"omitempty,url"`
}

// Transition outcomes returned by Service.ApplyEvent.
const (
	OutcomeApplied      = "applied"
	OutcomeDuplicate    = "duplicate"
	OutcomeUnknownOrder = "unknown_order"
	OutcomeIgnoredEvent = "ignored_event"
	OutcomeRejected     = "rejected_transition"
)

// TransitionResult reports what a webhook event did to local state.
type TransitionResult struct {
	Outcome     string
	Payment     *models.Payment
	Credited    bool
	NetCredited decimal.Decimal
}

// WebhookPayload is the parsed shape of a processor webhook body. Fields the
// processor sends beyond these stay in the audit log's raw payload.
type WebhookPayload struct {
	EventType     string          `json:"event_type"`
	OrderID       string          `json:"order_id"`
	PaymentLinkID string          `json:"payment_link_id"`
	Status        string          `json:"status"`
	PaymentID     string          `json:"payment_id"`
	Metadata      json.RawMessage `json:"metadata"`
}

// ResolveOrderID returns the processor order reference, preferring order_id
// over payment_link_id.
func (w *WebhookPayload) ResolveOrderID() string {
	if id := strings.TrimSpace(w.OrderID); id != "" {
		return id
	}
	return strings.TrimSpace(w.PaymentLinkID)
}

// ParseWebhookPayload decodes a webhook body. It is deliberately lenient:
// only a resolvable order reference is required.
func ParseWebhookPayload(payload []byte) (*WebhookPayload, error) {
	var out WebhookPayload
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, err
	}
	if out.ResolveOrderID() == "" {
		return nil, errors.New("webhook payload missing order_id/payment_link_id")
	}
	return &out, nil
}

// eventStatusTargets maps processor event types to the local payment status
// they drive toward. Event types outside this table are acknowledged and
// ignored.
var eventStatusTargets = map[string]string{
	"payment_link.paid":      models.PaymentStatusPaid,
	"order.paid":             models.PaymentStatusPaid,
	"payment_link.failed":    models.PaymentStatusFailed,
	"order.failed":           models.PaymentStatusFailed,
	"payment_link.expired":   models.PaymentStatusExpired,
	"order.expired":          models.PaymentStatusExpired,
	"payment_link.cancelled": models.PaymentStatusCancelled,
	"order.cancelled":        models.PaymentStatusCancelled,
	"payment.refunded":       models.PaymentStatusRefunded,
	"order.refunded":         models.PaymentStatusRefunded,
}

// TargetStatusForEvent resolves the status a processor event drives toward.
func TargetStatusForEvent(eventType string) (string, bool) {
	target, ok := eventStatusTargets[strings.ToLower(strings.TrimSpace(eventType))]
	return target, ok
}
