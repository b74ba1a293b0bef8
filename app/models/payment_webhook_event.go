package models

import "time"

// PaymentWebhookEvent is the append-only audit log for inbound processor
// webhooks. The unique index over (processor_order_id, event_type) makes
// retried deliveries idempotent: the second insert is a no-op.
type PaymentWebhookEvent struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	ProcessorOrderID string     `gorm:"type:varchar(100);not null;index:ux_payment_webhook_events_order_event,unique,priority:1;index" json:"processor_order_id"`
	EventType        string     `gorm:"type:varchar(100);not null;index:ux_payment_webhook_events_order_event,unique,priority:2" json:"event_type"`
	RawPayload       string     `gorm:"type:longtext;not null" json:"raw_payload"`
	SignatureValid   bool       `gorm:"default:false;index" json:"signature_valid"`
	ProcessedAt      *time.Time `gorm:"type:timestamp;default:null" json:"processed_at,omitempty"`
	ProcessingError  string     `gorm:"type:text" json:"processing_error"`
	ReceivedAt       time.Time  `gorm:"autoCreateTime;index" json:"received_at"`
}

// ProcessedSuccessfully reports whether this event was applied without error.
// An event whose processing failed keeps its audit row but must still be
// reprocessed when the processor redelivers it.
func (e *PaymentWebhookEvent) ProcessedSuccessfully() bool {
	return e.ProcessedAt != nil && e.ProcessingError == ""
}
