package payments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rahulmehra-dev/GigLedger/app/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeRepository keeps payments and webhook events in memory, mirroring the
// guarded-update semantics of the GORM repository.
type fakeRepository struct {
	payments map[string]*models.Payment // keyed by processor order id
	events   map[string]*models.PaymentWebhookEvent
	credits  map[uint][]decimal.Decimal // freelancer id -> credited amounts
	nextID   uint
	paidErr  error // injected ApplyPaidTransition failure
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		payments: make(map[string]*models.Payment),
		events:   make(map[string]*models.PaymentWebhookEvent),
		credits:  make(map[uint][]decimal.Decimal),
	}
}

func (r *fakeRepository) CreatePayment(p *models.Payment) error {
	r.nextID++
	p.ID = r.nextID
	r.payments[p.ProcessorOrderID] = p
	return nil
}

func (r *fakeRepository) UpdatePaymentLink(paymentID uint, link string) error {
	for _, p := range r.payments {
		if p.ID == paymentID {
			p.PaymentLink = link
		}
	}
	return nil
}

func (r *fakeRepository) GetPaymentByID(id uint) (*models.Payment, error) {
	for _, p := range r.payments {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepository) GetPaymentByProcessorOrderID(processorOrderID string) (*models.Payment, error) {
	p, ok := r.payments[processorOrderID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeRepository) CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error) {
	key := event.ProcessorOrderID + "|" + event.EventType
	if existing, ok := r.events[key]; ok {
		cp := *existing
		return false, &cp, nil
	}
	r.nextID++
	event.ID = r.nextID
	r.events[key] = event
	cp := *event
	return true, &cp, nil
}

func (r *fakeRepository) MarkWebhookProcessed(id uint, processingError string) error {
	for _, e := range r.events {
		if e.ID == id {
			now := time.Now()
			e.ProcessedAt = &now
			e.ProcessingError = processingError
		}
	}
	return nil
}

func (r *fakeRepository) ApplyPaidTransition(processorOrderID, processorPaymentID string, freelancerID uint, netAmount decimal.Decimal) (bool, *models.Payment, error) {
	if r.paidErr != nil {
		return false, nil, r.paidErr
	}
	p, ok := r.payments[processorOrderID]
	if !ok {
		return false, nil, gorm.ErrRecordNotFound
	}
	if p.Status != models.PaymentStatusPending {
		cp := *p
		return false, &cp, nil
	}
	p.Status = models.PaymentStatusPaid
	p.ProcessorPaymentID = processorPaymentID
	r.credits[freelancerID] = append(r.credits[freelancerID], netAmount)
	cp := *p
	return true, &cp, nil
}

func (r *fakeRepository) ApplyStatusTransition(processorOrderID, fromStatus, toStatus string) (bool, *models.Payment, error) {
	p, ok := r.payments[processorOrderID]
	if !ok {
		return false, nil, gorm.ErrRecordNotFound
	}
	if p.Status != fromStatus {
		cp := *p
		return false, &cp, nil
	}
	p.Status = toStatus
	cp := *p
	return true, &cp, nil
}

type recordedNotification struct {
	UserID   uint
	Category string
	Message  string
}

type fakeNotifier struct {
	sent []recordedNotification
}

func (n *fakeNotifier) Notify(userID uint, category, message string, referenceID uint) {
	n.sent = append(n.sent, recordedNotification{UserID: userID, Category: category, Message: message})
}

func newTestService(t *testing.T) (*Service, *fakeRepository, *fakeNotifier) {
	t.Helper()
	repo := newFakeRepository()
	notifier := &fakeNotifier{}
	svc := NewService(repo, nil, NewFeeCalculator(mustDecimal(t, "0.10")), notifier)
	return svc, repo, notifier
}

func seedPendingPayment(t *testing.T, repo *fakeRepository, orderID string, freelancerID uint, amount string) *models.Payment {
	t.Helper()
	p := &models.Payment{
		ContractRef:      "contract-1",
		FreelancerID:     freelancerID,
		Amount:           mustDecimal(t, amount),
		PaymentType:      models.PaymentTypeMilestone,
		Status:           models.PaymentStatusPending,
		ProcessorOrderID: orderID,
	}
	require.NoError(t, repo.CreatePayment(p))
	return p
}

func TestApplyEventPaidCreditsNetOnce(t *testing.T) {
	svc, repo, notifier := newTestService(t)
	seedPendingPayment(t, repo, "order_1", 42, "200.00")

	payload := []byte(`{"event_type":"payment_link.paid","order_id":"order_1","payment_id":"pay_777"}`)
	res, err := svc.ApplyEvent(context.Background(), "order_1", "payment_link.paid", payload)
	require.NoError(t, err)

	assert.Equal(t, OutcomeApplied, res.Outcome)
	assert.True(t, res.Credited)
	assert.Equal(t, "180.00", res.NetCredited.StringFixed(2))
	assert.Equal(t, models.PaymentStatusPaid, res.Payment.Status)
	assert.Equal(t, "pay_777", res.Payment.ProcessorPaymentID)

	require.Len(t, repo.credits[42], 1)
	assert.Equal(t, "180.00", repo.credits[42][0].StringFixed(2))
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "payment", notifier.sent[0].Category)
}

func TestApplyEventDuplicatePaidDeliveryDoesNotCreditTwice(t *testing.T) {
	svc, repo, _ := newTestService(t)
	seedPendingPayment(t, repo, "order_1", 42, "200.00")

	payload := []byte(`{"event_type":"payment_link.paid","order_id":"order_1"}`)

	first, err := svc.ApplyEvent(context.Background(), "order_1", "payment_link.paid", payload)
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, first.Outcome)

	second, err := svc.ApplyEvent(context.Background(), "order_1", "payment_link.paid", payload)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, second.Outcome)
	assert.False(t, second.Credited)

	assert.Len(t, repo.credits[42], 1, "wallet must be credited exactly once")
}

func TestApplyEventUnknownOrderIsAcknowledged(t *testing.T) {
	svc, _, _ := newTestService(t)

	res, err := svc.ApplyEvent(context.Background(), "order_missing", "payment_link.paid", []byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnknownOrder, res.Outcome)
}

func TestApplyEventUnknownEventTypeIsIgnored(t *testing.T) {
	svc, repo, _ := newTestService(t)
	seedPendingPayment(t, repo, "order_1", 42, "200.00")

	res, err := svc.ApplyEvent(context.Background(), "order_1", "payment_link.partially_paid", []byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnoredEvent, res.Outcome)
	assert.Empty(t, repo.credits)
}

func TestApplyEventRejectsIllegalTransition(t *testing.T) {
	svc, repo, _ := newTestService(t)
	p := seedPendingPayment(t, repo, "order_1", 42, "200.00")
	p.Status = models.PaymentStatusFailed

	res, err := svc.ApplyEvent(context.Background(), "order_1", "payment_link.paid", []byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, OutcomeRejected, res.Outcome)
	assert.Equal(t, models.PaymentStatusFailed, repo.payments["order_1"].Status)
	assert.Empty(t, repo.credits, "a failed payment must never be credited")
}

func TestApplyEventRefundAfterPaid(t *testing.T) {
	svc, repo, _ := newTestService(t)
	p := seedPendingPayment(t, repo, "order_1", 42, "200.00")
	p.Status = models.PaymentStatusPaid

	res, err := svc.ApplyEvent(context.Background(), "order_1", "payment.refunded", []byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, res.Outcome)
	assert.False(t, res.Credited)
	assert.Equal(t, models.PaymentStatusRefunded, repo.payments["order_1"].Status)
}

func TestApplyEventFailedAfterPendingThenPaidRejected(t *testing.T) {
	svc, repo, _ := newTestService(t)
	seedPendingPayment(t, repo, "order_1", 42, "200.00")

	res, err := svc.ApplyEvent(context.Background(), "order_1", "payment_link.failed", []byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, res.Outcome)

	// A late paid delivery for the same order must not resurrect it.
	res, err = svc.ApplyEvent(context.Background(), "order_1", "payment_link.paid", []byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, OutcomeRejected, res.Outcome)
	assert.Empty(t, repo.credits)
}

func TestRecordWebhookEventDeduplicates(t *testing.T) {
	svc, _, _ := newTestService(t)

	in := WebhookEventInput{
		ProcessorOrderID: "order_1",
		EventType:        "payment_link.paid",
		RawPayload:       `{"order_id":"order_1"}`,
		SignatureValid:   true,
	}

	created, first, err := svc.RecordWebhookEvent(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, created)
	require.NotNil(t, first)

	created, second, err := svc.RecordWebhookEvent(context.Background(), in)
	require.NoError(t, err)
	assert.False(t, created, "second delivery of the same event must not create a new row")
	assert.Equal(t, first.ID, second.ID)
}

func TestRecordWebhookEventNormalizesEventType(t *testing.T) {
	svc, repo, _ := newTestService(t)

	_, _, err := svc.RecordWebhookEvent(context.Background(), WebhookEventInput{
		ProcessorOrderID: "  order_1  ",
		EventType:        " Payment_Link.PAID ",
		RawPayload:       "{}",
	})
	require.NoError(t, err)

	_, ok := repo.events["order_1|payment_link.paid"]
	assert.True(t, ok)
}

func TestRecordWebhookEventRequiresOrderID(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, _, err := svc.RecordWebhookEvent(context.Background(), WebhookEventInput{EventType: "payment_link.paid"})
	assert.Error(t, err)
}

func TestProcessWebhookRetryAfterTransientFailureStillCredits(t *testing.T) {
	svc, repo, _ := newTestService(t)
	seedPendingPayment(t, repo, "order_1", 42, "200.00")

	payload := []byte(`{"event_type":"payment_link.paid","order_id":"order_1"}`)
	in := WebhookEventInput{
		ProcessorOrderID: "order_1",
		EventType:        "payment_link.paid",
		RawPayload:       string(payload),
		SignatureValid:   true,
	}

	// First delivery: the wallet credit fails mid-processing. The audit row
	// stays behind carrying the error.
	repo.paidErr = errors.New("wallet storage unavailable")
	_, err := svc.ProcessWebhook(context.Background(), in, payload)
	require.Error(t, err)

	ev := repo.events["order_1|payment_link.paid"]
	require.NotNil(t, ev)
	assert.NotEmpty(t, ev.ProcessingError)
	assert.Equal(t, models.PaymentStatusPending, repo.payments["order_1"].Status)
	assert.Empty(t, repo.credits)

	// Storage recovers; the identical redelivery must not be swallowed as a
	// duplicate just because the audit row exists.
	repo.paidErr = nil
	res, err := svc.ProcessWebhook(context.Background(), in, payload)
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, res.Outcome)
	assert.True(t, res.Credited)

	assert.Equal(t, models.PaymentStatusPaid, repo.payments["order_1"].Status)
	require.Len(t, repo.credits[42], 1)
	assert.Equal(t, "180.00", repo.credits[42][0].StringFixed(2))
	assert.Empty(t, ev.ProcessingError, "the close-out must clear the stored error")
}

func TestProcessWebhookRedeliveryAfterSuccessIsDuplicate(t *testing.T) {
	svc, repo, _ := newTestService(t)
	seedPendingPayment(t, repo, "order_1", 42, "200.00")

	payload := []byte(`{"event_type":"payment_link.paid","order_id":"order_1"}`)
	in := WebhookEventInput{
		ProcessorOrderID: "order_1",
		EventType:        "payment_link.paid",
		RawPayload:       string(payload),
		SignatureValid:   true,
	}

	first, err := svc.ProcessWebhook(context.Background(), in, payload)
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, first.Outcome)

	second, err := svc.ProcessWebhook(context.Background(), in, payload)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, second.Outcome)
	assert.Len(t, repo.credits[42], 1)
}

func TestParseWebhookPayloadFallsBackToPaymentLinkID(t *testing.T) {
	parsed, err := ParseWebhookPayload([]byte(`{"payment_link_id":"order_9","event_type":"payment_link.paid"}`))
	require.NoError(t, err)
	assert.Equal(t, "order_9", parsed.ResolveOrderID())

	_, err = ParseWebhookPayload([]byte(`{"event_type":"payment_link.paid"}`))
	assert.Error(t, err)

	_, err = ParseWebhookPayload([]byte(`not json`))
	assert.Error(t, err)
}

func TestTargetStatusForEvent(t *testing.T) {
	target, ok := TargetStatusForEvent("PAYMENT_LINK.PAID")
	assert.True(t, ok)
	assert.Equal(t, models.PaymentStatusPaid, target)

	_, ok = TargetStatusForEvent("payment_link.viewed")
	assert.False(t, ok)
}
