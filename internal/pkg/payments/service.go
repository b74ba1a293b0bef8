package payments

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rahulmehra-dev/GigLedger/app/models"
	"github.com/rahulmehra-dev/GigLedger/internal/pkg/cache"
	"gorm.io/gorm"
)

const paymentLinkCacheTTL = 24 * time.Hour

// LinkCreator is the slice of the processor client the service needs.
type LinkCreator interface {
	CreatePaymentLink(ctx context.Context, in CreateLinkInput) (*CreateLinkResult, error)
}

// Notifier is a best-effort side channel; implementations must never return
// errors into the payment flow.
type Notifier interface {
	Notify(userID uint, category, message string, referenceID uint)
}

// Service is the order/payment state machine. It owns the pending -> terminal
// transitions and is the only caller of the wallet credit path.
type Service struct {
	repo     Repository
	gateway  LinkCreator
	fees     FeeCalculator
	notifier Notifier
}

// NewService creates a payment service from injected collaborators.
func NewService(repo Repository, gateway LinkCreator, fees FeeCalculator, notifier Notifier) *Service {
	return &Service{repo: repo, gateway: gateway, fees: fees, notifier: notifier}
}

// NewServiceFromDB wires the service with the GORM repository, the Cashfree
// client and env-driven fee configuration.
func NewServiceFromDB(db *gorm.DB, notifier Notifier) *Service {
	return NewService(NewRepository(db), NewCashfreeClientFromEnv(), NewFeeCalculatorFromEnv(), notifier)
}

// CreatePayment inserts a pending payment and asks the processor for a hosted
// payment link. The local uuid doubles as the processor order id, so webhooks
// can be matched back without any processor-side lookup.
func (s *Service) CreatePayment(ctx context.Context, in CreatePaymentInput) (*models.Payment, error) {
	if !in.Amount.IsPositive() {
		return nil, fmt.Errorf("payment amount must be positive, got %s", in.Amount)
	}

	paymentType := strings.TrimSpace(in.PaymentType)
	if paymentType == "" {
		paymentType = models.PaymentTypeMilestone
	}

	p := &models.Payment{
		ContractRef:      strings.TrimSpace(in.ContractRef),
		FreelancerID:     in.FreelancerID,
		Amount:           in.Amount,
		PaymentType:      paymentType,
		Status:           models.PaymentStatusPending,
		ProcessorOrderID: "order_" + uuid.NewString(),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.CreatePayment(p); err != nil {
		return nil, err
	}

	link, err := s.gateway.CreatePaymentLink(ctx, CreateLinkInput{
		OrderID:       p.ProcessorOrderID,
		Amount:        p.Amount,
		CustomerName:  in.CustomerName,
		CustomerEmail: in.CustomerEmail,
		CustomerPhone: in.CustomerPhone,
		ReturnURL:     in.ReturnURL,
	})
	if err != nil {
		return nil, fmt.Errorf("payment link creation failed: %w", err)
	}

	p.PaymentLink = link.PaymentLink
	if err := s.repo.UpdatePaymentLink(p.ID, link.PaymentLink); err != nil {
		return nil, err
	}

	// Best-effort link cache for dashboard polling; never authoritative.
	if err := cache.Set("payment:link:"+p.ProcessorOrderID, link.PaymentLink, paymentLinkCacheTTL); err != nil {
		log.Printf("payment link cache write failed for %s: %v", p.ProcessorOrderID, err)
	}

	return p, nil
}

// GetPayment returns a payment by local id.
func (s *Service) GetPayment(ctx context.Context, id uint) (*models.Payment, error) {
	_ = ctx
	return s.repo.GetPaymentByID(id)
}

// RecordWebhookEvent appends the audit entry for an inbound webhook before
// any state is touched. The (order id, event type) unique index makes the
// second delivery of the same event report created=false.
func (s *Service) RecordWebhookEvent(ctx context.Context, in WebhookEventInput) (bool, *models.PaymentWebhookEvent, error) {
	_ = ctx
	orderID := strings.TrimSpace(in.ProcessorOrderID)
	if orderID == "" {
		return false, nil, errors.New("processor_order_id is required")
	}

	event := &models.PaymentWebhookEvent{
		ProcessorOrderID: orderID,
		EventType:        strings.ToLower(strings.TrimSpace(in.EventType)),
		RawPayload:       in.RawPayload,
		SignatureValid:   in.SignatureValid,
	}
	return s.repo.CreateWebhookEventIfNotExists(event)
}

// MarkWebhookProcessed closes out an audit entry, storing the processing
// error if any.
func (s *Service) MarkWebhookProcessed(ctx context.Context, webhookEventID uint, processingErr error) error {
	_ = ctx
	if webhookEventID == 0 {
		return errors.New("webhook_event_id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.repo.MarkWebhookProcessed(webhookEventID, errMsg)
}

// ProcessWebhook runs the full inbound-event sequence: append the audit
// entry, apply the transition, close the audit entry. A redelivery is only
// short-circuited as a duplicate when the stored event was already applied
// without error; an event whose first processing failed transiently is
// reprocessed, and the guarded transitions underneath keep that retry
// idempotent. A non-nil error means the processor should deliver again.
func (s *Service) ProcessWebhook(ctx context.Context, in WebhookEventInput, payload []byte) (*TransitionResult, error) {
	created, stored, err := s.RecordWebhookEvent(ctx, in)
	if err != nil {
		return nil, err
	}
	if !created && stored.ProcessedSuccessfully() {
		return &TransitionResult{Outcome: OutcomeDuplicate}, nil
	}

	result, err := s.ApplyEvent(ctx, stored.ProcessorOrderID, stored.EventType, payload)
	if err != nil {
		if markErr := s.MarkWebhookProcessed(ctx, stored.ID, err); markErr != nil {
			log.Printf("failed to record processing error for webhook event %d: %v", stored.ID, markErr)
		}
		return nil, err
	}

	if err := s.MarkWebhookProcessed(ctx, stored.ID, nil); err != nil {
		log.Printf("failed to close out webhook event %d: %v", stored.ID, err)
	}
	return result, nil
}

// ApplyEvent advances the payment matching a webhook event. Exactly one
// delivery of a paid event credits the wallet; duplicates, out-of-order
// deliveries and events for unknown orders are acknowledged without effect.
// A non-nil error means storage failed and the processor should retry.
func (s *Service) ApplyEvent(ctx context.Context, processorOrderID, eventType string, payload []byte) (*TransitionResult, error) {
	_ = ctx

	target, known := TargetStatusForEvent(eventType)
	if !known {
		return &TransitionResult{Outcome: OutcomeIgnoredEvent}, nil
	}

	p, err := s.repo.GetPaymentByProcessorOrderID(strings.TrimSpace(processorOrderID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Possibly an order created by a stale client or another system;
			// acknowledge so the processor stops retrying.
			return &TransitionResult{Outcome: OutcomeUnknownOrder}, nil
		}
		return nil, err
	}

	if p.Status == target {
		return &TransitionResult{Outcome: OutcomeDuplicate, Payment: p}, nil
	}
	if !models.CanTransition(p.Status, target) {
		return &TransitionResult{Outcome: OutcomeRejected, Payment: p}, nil
	}

	if target == models.PaymentStatusPaid {
		return s.applyPaid(p, payload)
	}

	applied, updated, err := s.repo.ApplyStatusTransition(p.ProcessorOrderID, p.Status, target)
	if err != nil {
		return nil, err
	}
	if !applied {
		// Lost the race against a concurrent delivery; same end state.
		return &TransitionResult{Outcome: OutcomeDuplicate, Payment: updated}, nil
	}
	return &TransitionResult{Outcome: OutcomeApplied, Payment: updated}, nil
}

// applyPaid performs the one transition that moves money: status flip and
// wallet credit as a single transactional unit, state update first so a
// retried delivery can never credit twice.
func (s *Service) applyPaid(p *models.Payment, payload []byte) (*TransitionResult, error) {
	processorPaymentID := ""
	if parsed, err := ParseWebhookPayload(payload); err == nil {
		processorPaymentID = parsed.PaymentID
	}

	split := s.fees.Split(p.Amount)
	credited, updated, err := s.repo.ApplyPaidTransition(p.ProcessorOrderID, processorPaymentID, p.FreelancerID, split.NetAmount)
	if err != nil {
		return nil, err
	}
	if !credited {
		return &TransitionResult{Outcome: OutcomeDuplicate, Payment: updated}, nil
	}

	if s.notifier != nil {
		s.notifier.Notify(p.FreelancerID, "payment",
			fmt.Sprintf("Payment received for contract %s: %s credited to your wallet (platform fee %s)",
				p.ContractRef, split.NetAmount.StringFixed(2), split.PlatformFee.StringFixed(2)),
			p.ID)
	}

	return &TransitionResult{
		Outcome:     OutcomeApplied,
		Payment:     updated,
		Credited:    true,
		NetCredited: split.NetAmount,
	}, nil
}
