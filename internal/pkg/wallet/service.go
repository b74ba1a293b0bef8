package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/rahulmehra-dev/GigLedger/app/models"
	"github.com/rahulmehra-dev/GigLedger/internal/pkg/env"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const defaultReserveFloor = "100.00"

// Service is the freelancer wallet ledger. It is the only component that
// mutates balances, and every mutation is a single atomic row update.
type Service struct {
	repo         Repository
	reserveFloor decimal.Decimal
}

// NewService creates a wallet service from an injected repository.
func NewService(repo Repository, reserveFloor decimal.Decimal) *Service {
	return &Service{repo: repo, reserveFloor: reserveFloor}
}

// NewServiceFromDB creates a wallet service from a GORM DB handle, reading
// the reserve floor from WALLET_RESERVE_FLOOR.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db), ReserveFloorFromEnv())
}

// ReserveFloorFromEnv reads WALLET_RESERVE_FLOOR, falling back to 100.00.
func ReserveFloorFromEnv() decimal.Decimal {
	raw := env.GetEnv("WALLET_RESERVE_FLOOR", defaultReserveFloor)
	floor, err := decimal.NewFromString(raw)
	if err != nil || floor.IsNegative() {
		floor, _ = decimal.NewFromString(defaultReserveFloor)
	}
	return floor
}

// ReserveFloor exposes the configured floor for user-facing messages.
func (s *Service) ReserveFloor() decimal.Decimal {
	return s.reserveFloor
}

// Credit adds a net payment amount to a freelancer's wallet, creating the
// wallet row first if this is their first credit.
func (s *Service) Credit(ctx context.Context, freelancerID uint, amount decimal.Decimal) error {
	_ = ctx
	if freelancerID == 0 {
		return errors.New("freelancer_id is required")
	}
	if !amount.IsPositive() {
		return fmt.Errorf("credit amount must be positive, got %s", amount)
	}
	return s.repo.Credit(freelancerID, amount)
}

// DebitForPayout earmarks funds for a payout request, moving them from
// available_balance to reserved_balance. Fails with ErrInsufficientFunds when
// the debit would leave less than the reserve floor in available_balance; the
// wallet is untouched in that case.
func (s *Service) DebitForPayout(ctx context.Context, freelancerID uint, amount decimal.Decimal) error {
	_ = ctx
	if !amount.IsPositive() {
		return fmt.Errorf("debit amount must be positive, got %s", amount)
	}
	ok, err := s.repo.DebitWithFloor(freelancerID, amount, s.reserveFloor)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInsufficientFunds
	}
	return nil
}

// Refund moves an earmarked amount from reserved_balance back to
// available_balance after a payout request is rejected.
func (s *Service) Refund(ctx context.Context, freelancerID uint, amount decimal.Decimal) error {
	_ = ctx
	if !amount.IsPositive() {
		return fmt.Errorf("refund amount must be positive, got %s", amount)
	}
	return s.repo.Refund(freelancerID, amount)
}

// GetWallet returns the wallet for a freelancer, creating an empty one when
// none exists yet.
func (s *Service) GetWallet(ctx context.Context, freelancerID uint) (*models.FreelancerWallet, error) {
	_ = ctx
	if err := s.repo.Ensure(freelancerID); err != nil {
		return nil, err
	}
	return s.repo.GetByFreelancerID(freelancerID)
}
