package wallet

import (
	"errors"

	"github.com/rahulmehra-dev/GigLedger/app/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrInsufficientFunds is returned when a payout debit would take the
// available balance below the configured reserve floor.
var ErrInsufficientFunds = errors.New("insufficient available balance: the reserve floor must remain in the wallet")

// The functions in this file are the only code that touches wallet balance
// columns. They all operate through single-row atomic arithmetic so that
// concurrent credits and debits on the same wallet serialize at the database
// and never lose updates. Callers may pass a transaction handle to couple a
// balance change with another write.

// Ensure upserts the wallet row for a freelancer with zero balances. Safe to
// call concurrently; the insert is a no-op when the row exists.
func Ensure(db *gorm.DB, freelancerID uint) error {
	w := &models.FreelancerWallet{FreelancerID: freelancerID}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "freelancer_id"}},
		DoNothing: true,
	}).Create(w).Error
}

// ApplyCredit atomically increments available_balance and total_earned.
// Increments, never overwrites: a concurrent credit from another payment must
// not be destroyed.
func ApplyCredit(db *gorm.DB, freelancerID uint, amount decimal.Decimal) error {
	res := db.Model(&models.FreelancerWallet{}).
		Where("freelancer_id = ?", freelancerID).
		Updates(map[string]interface{}{
			"available_balance": gorm.Expr("available_balance + ?", amount),
			"total_earned":      gorm.Expr("total_earned + ?", amount),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ApplyRefund atomically moves a previously earmarked amount from
// reserved_balance back to available_balance. total_earned is untouched, the
// money was already earned.
func ApplyRefund(db *gorm.DB, freelancerID uint, amount decimal.Decimal) error {
	res := db.Model(&models.FreelancerWallet{}).
		Where("freelancer_id = ?", freelancerID).
		Updates(map[string]interface{}{
			"available_balance": gorm.Expr("available_balance + ?", amount),
			"reserved_balance":  gorm.Expr("reserved_balance - ?", amount),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ApplyDebitWithFloor atomically moves amount from available_balance to
// reserved_balance iff the available balance after the debit stays at or
// above the reserve floor. The guard lives in the WHERE clause so check and
// move are one statement; a read-then-write in Go would race with concurrent
// credits and debits. Returns false when the guard fails.
func ApplyDebitWithFloor(db *gorm.DB, freelancerID uint, amount, floor decimal.Decimal) (bool, error) {
	res := db.Model(&models.FreelancerWallet{}).
		Where("freelancer_id = ? AND available_balance - ? >= ?", freelancerID, amount, floor).
		Updates(map[string]interface{}{
			"available_balance": gorm.Expr("available_balance - ?", amount),
			"reserved_balance":  gorm.Expr("reserved_balance + ?", amount),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// AddPaidOut settles an approved payout: the earmark leaves reserved_balance
// and the running paid-out total grows by the same amount.
func AddPaidOut(db *gorm.DB, freelancerID uint, amount decimal.Decimal) error {
	return db.Model(&models.FreelancerWallet{}).
		Where("freelancer_id = ?", freelancerID).
		Updates(map[string]interface{}{
			"reserved_balance": gorm.Expr("reserved_balance - ?", amount),
			"total_paid_out":   gorm.Expr("total_paid_out + ?", amount),
		}).Error
}

// MeetsReserveFloor is the pure form of the debit guard: a payout of amount
// is allowed iff available - amount >= floor.
func MeetsReserveFloor(available, amount, floor decimal.Decimal) bool {
	return available.Sub(amount).GreaterThanOrEqual(floor)
}
