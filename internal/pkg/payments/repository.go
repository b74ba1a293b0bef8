package payments

import (
	"time"

	"github.com/rahulmehra-dev/GigLedger/app/models"
	"github.com/rahulmehra-dev/GigLedger/internal/pkg/wallet"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides DB operations used by the payment service.
type Repository interface {
	CreatePayment(p *models.Payment) error
	UpdatePaymentLink(paymentID uint, link string) error
	GetPaymentByID(id uint) (*models.Payment, error)
	GetPaymentByProcessorOrderID(processorOrderID string) (*models.Payment, error)
	CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error)
	MarkWebhookProcessed(id uint, processingError string) error
	// ApplyPaidTransition moves a payment from pending to paid and credits the
	// freelancer's wallet in the same transaction. Returns false when the
	// payment was no longer pending, in which case nothing was credited.
	ApplyPaidTransition(processorOrderID, processorPaymentID string, freelancerID uint, netAmount decimal.Decimal) (bool, *models.Payment, error)
	// ApplyStatusTransition performs a guarded non-crediting status move.
	// Returns false when the payment was not in fromStatus anymore.
	ApplyStatusTransition(processorOrderID, fromStatus, toStatus string) (bool, *models.Payment, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a payment repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreatePayment(p *models.Payment) error {
	return r.db.Create(p).Error
}

func (r *gormRepository) UpdatePaymentLink(paymentID uint, link string) error {
	return r.db.Model(&models.Payment{}).Where("id = ?", paymentID).
		Update("payment_link", link).Error
}

func (r *gormRepository) GetPaymentByID(id uint) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *gormRepository) GetPaymentByProcessorOrderID(processorOrderID string) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.Where("processor_order_id = ?", processorOrderID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *gormRepository) CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "processor_order_id"},
			{Name: "event_type"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.PaymentWebhookEvent
	if err := r.db.Where("processor_order_id = ? AND event_type = ?", event.ProcessorOrderID, event.EventType).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) MarkWebhookProcessed(id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.Model(&models.PaymentWebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}

func (r *gormRepository) ApplyPaidTransition(processorOrderID, processorPaymentID string, freelancerID uint, netAmount decimal.Decimal) (bool, *models.Payment, error) {
	credited := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		// Guarded update: only the one caller that still sees 'pending' wins.
		// A retried webhook whose first delivery already landed affects zero
		// rows and skips the credit entirely.
		res := tx.Model(&models.Payment{}).
			Where("processor_order_id = ? AND status = ?", processorOrderID, models.PaymentStatusPending).
			Updates(map[string]interface{}{
				"status":               models.PaymentStatusPaid,
				"processor_payment_id": processorPaymentID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		if err := wallet.Ensure(tx, freelancerID); err != nil {
			return err
		}
		if err := wallet.ApplyCredit(tx, freelancerID, netAmount); err != nil {
			return err
		}
		credited = true
		return nil
	})
	if err != nil {
		return false, nil, err
	}

	p, err := r.GetPaymentByProcessorOrderID(processorOrderID)
	if err != nil {
		return credited, nil, err
	}
	return credited, p, nil
}

func (r *gormRepository) ApplyStatusTransition(processorOrderID, fromStatus, toStatus string) (bool, *models.Payment, error) {
	res := r.db.Model(&models.Payment{}).
		Where("processor_order_id = ? AND status = ?", processorOrderID, fromStatus).
		Update("status", toStatus)
	if res.Error != nil {
		return false, nil, res.Error
	}

	p, err := r.GetPaymentByProcessorOrderID(processorOrderID)
	if err != nil {
		return res.RowsAffected > 0, nil, err
	}
	return res.RowsAffected > 0, p, nil
}
