package payout

import (
	"time"

	"github.com/rahulmehra-dev/GigLedger/app/models"
	"github.com/rahulmehra-dev/GigLedger/internal/pkg/wallet"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository provides DB operations used by the payout service.
type Repository interface {
	// CreateWithDebit earmarks the amount (debit guarded by the reserve
	// floor) and inserts the pending request in one transaction. Returns
	// false without mutating anything when the guard fails.
	CreateWithDebit(req *models.PayoutRequest, floor decimal.Decimal) (bool, error)
	GetByID(id uint) (*models.PayoutRequest, error)
	// MarkPaid flips pending -> paid and bumps the wallet's paid-out total.
	// Returns false when the request was not pending.
	MarkPaid(id uint) (bool, *models.PayoutRequest, error)
	// MarkRejectedAndRefund flips pending -> rejected and returns the
	// earmarked amount to available_balance, atomically.
	MarkRejectedAndRefund(id uint, note string) (bool, *models.PayoutRequest, error)
	ListByFreelancer(freelancerID uint, offset, limit int) ([]models.PayoutRequest, error)
	ListPending() ([]models.PayoutRequest, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a payout repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreateWithDebit(req *models.PayoutRequest, floor decimal.Decimal) (bool, error) {
	debited := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		ok, err := wallet.ApplyDebitWithFloor(tx, req.FreelancerID, req.Amount, floor)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := tx.Create(req).Error; err != nil {
			return err
		}
		debited = true
		return nil
	})
	return debited, err
}

func (r *gormRepository) GetByID(id uint) (*models.PayoutRequest, error) {
	var req models.PayoutRequest
	if err := r.db.First(&req, id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *gormRepository) MarkPaid(id uint) (bool, *models.PayoutRequest, error) {
	applied := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var req models.PayoutRequest
		if err := tx.First(&req, id).Error; err != nil {
			return err
		}

		now := time.Now()
		res := tx.Model(&models.PayoutRequest{}).
			Where("id = ? AND status = ?", id, models.PayoutStatusPending).
			Updates(map[string]interface{}{
				"status":       models.PayoutStatusPaid,
				"processed_at": &now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		if err := wallet.AddPaidOut(tx, req.FreelancerID, req.Amount); err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, nil, err
	}

	req, err := r.GetByID(id)
	if err != nil {
		return applied, nil, err
	}
	return applied, req, nil
}

func (r *gormRepository) MarkRejectedAndRefund(id uint, note string) (bool, *models.PayoutRequest, error) {
	applied := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var req models.PayoutRequest
		if err := tx.First(&req, id).Error; err != nil {
			return err
		}

		now := time.Now()
		res := tx.Model(&models.PayoutRequest{}).
			Where("id = ? AND status = ?", id, models.PayoutStatusPending).
			Updates(map[string]interface{}{
				"status":       models.PayoutStatusRejected,
				"admin_note":   note,
				"processed_at": &now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		// Reversal of the earmark: the debited amount goes back to
		// available_balance in the same transaction as the status flip.
		if err := wallet.ApplyRefund(tx, req.FreelancerID, req.Amount); err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, nil, err
	}

	req, err := r.GetByID(id)
	if err != nil {
		return applied, nil, err
	}
	return applied, req, nil
}

func (r *gormRepository) ListByFreelancer(freelancerID uint, offset, limit int) ([]models.PayoutRequest, error) {
	var reqs []models.PayoutRequest
	err := r.db.Where("freelancer_id = ?", freelancerID).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&reqs).Error
	return reqs, err
}

func (r *gormRepository) ListPending() ([]models.PayoutRequest, error) {
	var reqs []models.PayoutRequest
	err := r.db.Where("status = ?", models.PayoutStatusPending).
		Order("created_at ASC").Find(&reqs).Error
	return reqs, err
}
