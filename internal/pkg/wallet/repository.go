package wallet

import (
	"github.com/rahulmehra-dev/GigLedger/app/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository provides DB operations used by the wallet service.
type Repository interface {
	Ensure(freelancerID uint) error
	GetByFreelancerID(freelancerID uint) (*models.FreelancerWallet, error)
	Credit(freelancerID uint, amount decimal.Decimal) error
	Refund(freelancerID uint, amount decimal.Decimal) error
	DebitWithFloor(freelancerID uint, amount, floor decimal.Decimal) (bool, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a wallet repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Ensure(freelancerID uint) error {
	return Ensure(r.db, freelancerID)
}

func (r *gormRepository) GetByFreelancerID(freelancerID uint) (*models.FreelancerWallet, error) {
	var w models.FreelancerWallet
	if err := r.db.Where("freelancer_id = ?", freelancerID).First(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *gormRepository) Credit(freelancerID uint, amount decimal.Decimal) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := Ensure(tx, freelancerID); err != nil {
			return err
		}
		return ApplyCredit(tx, freelancerID, amount)
	})
}

func (r *gormRepository) Refund(freelancerID uint, amount decimal.Decimal) error {
	return ApplyRefund(r.db, freelancerID, amount)
}

func (r *gormRepository) DebitWithFloor(freelancerID uint, amount, floor decimal.Decimal) (bool, error) {
	return ApplyDebitWithFloor(r.db, freelancerID, amount, floor)
}
