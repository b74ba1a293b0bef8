package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	PaymentStatusPending   = "pending"
	PaymentStatusPaid      = "paid"
	PaymentStatusFailed    = "failed"
	PaymentStatusExpired   = "expired"
	PaymentStatusCancelled = "cancelled"
	PaymentStatusRefunded  = "refunded"
)

const (
	PaymentTypeAdvance    = "advance"
	PaymentTypeCompletion = "completion"
	PaymentTypeMilestone  = "milestone"
)

// Payment is one payment attempt against a contract. Rows are never deleted;
// status only moves forward through the transition table below.
type Payment struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	ContractRef        string          `gorm:"type:varchar(100);not null;index" json:"contract_ref" validate:"required,max=100"`
	FreelancerID       uint            `gorm:"not null;index" json:"freelancer_id" validate:"required"`
	Amount             decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	PaymentType        string          `gorm:"type:varchar(20);not null;default:'milestone'" json:"payment_type" validate:"oneof=advance completion milestone"`
	Status             string          `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ProcessorOrderID   string          `gorm:"type:varchar(100);not null;uniqueIndex" json:"processor_order_id"`
	ProcessorPaymentID string          `gorm:"type:varchar(100);default:null" json:"processor_payment_id,omitempty"`
	PaymentLink        string          `gorm:"type:varchar(500)" json:"payment_link,omitempty"`
	CreatedAt          time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Payment) Validate() error {
	v := validator.New()

	return v.Struct(p)
}

// paymentTransitions is the single source of truth for legal status moves.
var paymentTransitions = map[string][]string{
	PaymentStatusPending: {PaymentStatusPaid, PaymentStatusFailed, PaymentStatusExpired, PaymentStatusCancelled},
	PaymentStatusPaid:    {PaymentStatusRefunded},
}

// CanTransition reports whether a payment may move from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range paymentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminalStatus reports whether a status has no outgoing transitions.
func IsTerminalStatus(status string) bool {
	return len(paymentTransitions[status]) == 0
}
