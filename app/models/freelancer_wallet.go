package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FreelancerWallet holds the running balances for one freelancer. Created
// lazily on first credit. AvailableBalance is withdrawable; ReservedBalance
// holds the earmarks of pending payout requests. Balance columns are only
// ever changed through atomic increments/decrements at the storage layer,
// never overwritten.
type FreelancerWallet struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	FreelancerID     uint            `gorm:"not null;uniqueIndex" json:"freelancer_id"`
	AvailableBalance decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"available_balance"`
	ReservedBalance  decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"reserved_balance"`
	TotalEarned      decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"total_earned"`
	TotalPaidOut     decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"total_paid_out"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}
