package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PayoutStatusPending  = "pending"
	PayoutStatusPaid     = "paid"
	PayoutStatusRejected = "rejected"
)

// PayoutRequest is one withdrawal request. The wallet is debited when the row
// is created (earmarking): the amount moves from available_balance to
// reserved_balance while the request is pending. Status moves one way:
// pending -> paid or pending -> rejected.
type PayoutRequest struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	FreelancerID uint            `gorm:"not null;index" json:"freelancer_id"`
	Amount       decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Status       string          `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	BankDetails  string          `gorm:"type:text" json:"bank_details,omitempty"`
	AdminNote    string          `gorm:"type:text" json:"admin_note,omitempty"`
	ProcessedAt  *time.Time      `gorm:"type:timestamp;default:null" json:"processed_at,omitempty"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}
