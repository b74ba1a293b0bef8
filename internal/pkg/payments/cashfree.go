package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rahulmehra-dev/GigLedger/internal/pkg/env"
	"github.com/shopspring/decimal"
)

const (
	defaultCashfreeAPIBaseURL = "https://api.cashfree.com/pg"
	cashfreeAPIVersion        = "2023-08-01"
)

// CashfreeClient talks to the payment processor's hosted payment-link API.
type CashfreeClient struct {
	AppID     string
	SecretKey string

	APIBaseURL string
	NotifyURL  string

	HTTPClient *http.Client
}

// CreateLinkInput carries everything the processor needs to host a payment link.
type CreateLinkInput struct {
	OrderID       string
	Amount        decimal.Decimal
	Currency      string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	ReturnURL     string
}

// CreateLinkResult is the processor's answer: the order reference it will use
// in webhooks plus the hosted link to send the payer to.
type CreateLinkResult struct {
	OrderID     string
	PaymentLink string
}

// NewCashfreeClientFromEnv builds a client from CASHFREE_* environment keys.
func NewCashfreeClientFromEnv() *CashfreeClient {
	timeout := 15 * time.Second
	if raw := strings.TrimSpace(env.GetEnv("CASHFREE_TIMEOUT_SECONDS", "")); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			timeout = time.Duration(secs) * time.Second
		}
	}

	base := strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", ""), "/")
	notifyURL := strings.TrimSpace(env.GetEnv("CASHFREE_NOTIFY_URL", ""))
	if notifyURL == "" && base != "" {
		notifyURL = base + "/payments/webhook"
	}

	return &CashfreeClient{
		AppID:      strings.TrimSpace(env.GetEnv("CASHFREE_APP_ID", "")),
		SecretKey:  strings.TrimSpace(env.GetEnv("CASHFREE_SECRET_KEY", "")),
		APIBaseURL: strings.TrimSpace(env.GetEnv("CASHFREE_API_BASE_URL", defaultCashfreeAPIBaseURL)),
		NotifyURL:  notifyURL,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// CreatePaymentLink creates a hosted payment link for an order. The processor
// echoes our order id back in every webhook for this link.
func (c *CashfreeClient) CreatePaymentLink(ctx context.Context, in CreateLinkInput) (*CreateLinkResult, error) {
	if strings.TrimSpace(c.AppID) == "" || strings.TrimSpace(c.SecretKey) == "" {
		return nil, errors.New("CASHFREE_APP_ID/CASHFREE_SECRET_KEY are not configured")
	}
	if strings.TrimSpace(in.OrderID) == "" {
		return nil, errors.New("order id is required")
	}
	if !in.Amount.IsPositive() {
		return nil, fmt.Errorf("link amount must be positive, got %s", in.Amount)
	}

	currency := strings.TrimSpace(in.Currency)
	if currency == "" {
		currency = "INR"
	}

	body := map[string]interface{}{
		"link_id":       in.OrderID,
		"link_amount":   in.Amount,
		"link_currency": currency,
		"link_purpose":  "freelance contract payment",
		"customer_details": map[string]string{
			"customer_name":  strings.TrimSpace(in.CustomerName),
			"customer_email": strings.TrimSpace(in.CustomerEmail),
			"customer_phone": strings.TrimSpace(in.CustomerPhone),
		},
		"link_notify": map[string]bool{
			"send_email": false,
			"send_sms":   false,
		},
		"link_meta": map[string]string{
			"return_url": strings.TrimSpace(in.ReturnURL),
			"notify_url": c.NotifyURL,
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	url := strings.TrimRight(c.APIBaseURL, "/") + "/links"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-api-version", cashfreeAPIVersion)
	req.Header.Set("x-client-id", c.AppID)
	req.Header.Set("x-client-secret", c.SecretKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("cashfree link creation failed: status=%d body=%s", resp.StatusCode, string(respBody))
	}

	var out struct {
		LinkID  string `json:"link_id"`
		LinkURL string `json:"link_url"`
	}
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.LinkURL) == "" {
		return nil, errors.New("cashfree link creation returned empty link_url")
	}

	return &CreateLinkResult{
		OrderID:     strings.TrimSpace(out.LinkID),
		PaymentLink: strings.TrimSpace(out.LinkURL),
	}, nil
}
