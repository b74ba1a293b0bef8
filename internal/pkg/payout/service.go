package payout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rahulmehra-dev/GigLedger/app/models"
	"github.com/rahulmehra-dev/GigLedger/internal/pkg/wallet"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrNotPending is returned when approving or rejecting a request that has
// already been processed. Payout status moves one way only.
var ErrNotPending = errors.New("payout request is not pending")

// Notifier is a best-effort side channel; implementations must never return
// errors into the payout flow.
type Notifier interface {
	Notify(userID uint, category, message string, referenceID uint)
}

// Service manages withdrawal requests against the wallet ledger's reserve
// invariant. Funds are earmarked (debited) at request time so two concurrent
// requests can never spend the same balance.
type Service struct {
	repo         Repository
	reserveFloor decimal.Decimal
	notifier     Notifier
}

// NewService creates a payout service from injected collaborators.
func NewService(repo Repository, reserveFloor decimal.Decimal, notifier Notifier) *Service {
	return &Service{repo: repo, reserveFloor: reserveFloor, notifier: notifier}
}

// NewServiceFromDB wires the service with the GORM repository and the
// env-configured reserve floor.
func NewServiceFromDB(db *gorm.DB, notifier Notifier) *Service {
	return NewService(NewRepository(db), wallet.ReserveFloorFromEnv(), notifier)
}

// RequestPayout earmarks funds and records the pending request. Returns
// wallet.ErrInsufficientFunds (wrapped with the floor for the user-facing
// message) when the reserve floor would be violated; nothing is mutated then.
func (s *Service) RequestPayout(ctx context.Context, freelancerID uint, amount decimal.Decimal, bankDetails string) (*models.PayoutRequest, error) {
	_ = ctx
	if freelancerID == 0 {
		return nil, errors.New("freelancer_id is required")
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("payout amount must be positive, got %s", amount)
	}

	req := &models.PayoutRequest{
		FreelancerID: freelancerID,
		Amount:       amount,
		Status:       models.PayoutStatusPending,
		BankDetails:  strings.TrimSpace(bankDetails),
	}

	ok, err := s.repo.CreateWithDebit(req, s.reserveFloor)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w (a reserve of %s is withheld from every payout)",
			wallet.ErrInsufficientFunds, s.reserveFloor.StringFixed(2))
	}

	if s.notifier != nil {
		s.notifier.Notify(freelancerID, "payout",
			fmt.Sprintf("Payout request for %s received and queued for review", amount.StringFixed(2)),
			req.ID)
	}
	return req, nil
}

// Approve transitions a pending request to paid. The wallet was already
// debited at request time, so no balance changes here beyond the paid-out
// running total.
func (s *Service) Approve(ctx context.Context, requestID uint) (*models.PayoutRequest, error) {
	_ = ctx
	applied, req, err := s.repo.MarkPaid(requestID)
	if err != nil {
		return nil, err
	}
	if !applied {
		return req, ErrNotPending
	}

	if s.notifier != nil {
		s.notifier.Notify(req.FreelancerID, "payout",
			fmt.Sprintf("Payout of %s approved and on its way to your bank account", req.Amount.StringFixed(2)),
			req.ID)
	}
	return req, nil
}

// Reject transitions a pending request to rejected and credits the earmarked
// amount back to available_balance.
func (s *Service) Reject(ctx context.Context, requestID uint, note string) (*models.PayoutRequest, error) {
	_ = ctx
	applied, req, err := s.repo.MarkRejectedAndRefund(requestID, strings.TrimSpace(note))
	if err != nil {
		return nil, err
	}
	if !applied {
		return req, ErrNotPending
	}

	if s.notifier != nil {
		s.notifier.Notify(req.FreelancerID, "payout",
			fmt.Sprintf("Payout request for %s was rejected; the amount is back in your wallet", req.Amount.StringFixed(2)),
			req.ID)
	}
	return req, nil
}

// ListByFreelancer returns a freelancer's payout history, newest first.
func (s *Service) ListByFreelancer(ctx context.Context, freelancerID uint, offset, limit int) ([]models.PayoutRequest, error) {
	_ = ctx
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.ListByFreelancer(freelancerID, offset, limit)
}

// ListPending returns all requests awaiting an admin decision, oldest first.
func (s *Service) ListPending(ctx context.Context) ([]models.PayoutRequest, error) {
	_ = ctx
	return s.repo.ListPending()
}
