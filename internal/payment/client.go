// Package payment talks to the acquiring provider's merchant API:
// invoice creation and status queries, plus the webhook payload types.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Currency numeric codes (ISO 4217) accepted by the provider.
var currencyCodes = map[string]int{
	"uah": 980,
	"usd": 840,
	"eur": 978,
}

// CurrencyCode resolves a lowercase currency name to its ISO numeric code.
func CurrencyCode(currency string) (int, bool) {
	code, ok := currencyCodes[currency]
	return code, ok
}

// StatusSuccess is the terminal status the webhook and status query
// report for a completed payment.
const StatusSuccess = "success"

// InvoiceRequest is the invoice-creation call body.
type InvoiceRequest struct {
	Amount           int64        `json:"amount"` // minor units
	Ccy              int          `json:"ccy"`
	MerchantPaymInfo MerchantInfo `json:"merchantPaymInfo"`
	RedirectURL      string       `json:"redirectUrl"`
	WebHookURL       string       `json:"webHookUrl"`
	Validity         int          `json:"validity"` // seconds
}

type MerchantInfo struct {
	Reference   string `json:"reference"`
	Destination string `json:"destination"`
}

// Invoice is the provider's answer to a creation call.
type Invoice struct {
	InvoiceID string `json:"invoiceId"`
	PageURL   string `json:"pageUrl"`
}

// InvoiceStatus is the answer to a status query and the webhook body.
type InvoiceStatus struct {
	InvoiceID string `json:"invoiceId"`
	Status    string `json:"status"`
	Amount    int64  `json:"amount,omitempty"`
	Ccy       int    `json:"ccy,omitempty"`
	Reference string `json:"reference,omitempty"`
}

// Client is the provider-facing interface the purchase service depends on.
type Client interface {
	CreateInvoice(ctx context.Context, req *InvoiceRequest) (*Invoice, error)
	GetInvoiceStatus(ctx context.Context, invoiceID string) (*InvoiceStatus, error)
}

// HTTPClient implements Client against the merchant REST API.
type HTTPClient struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewHTTPClient builds a client with a bounded request timeout; a
// timed-out call surfaces as an error the caller treats as upstream
// failure.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		token:   token,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *HTTPClient) CreateInvoice(ctx context.Context, req *InvoiceRequest) (*Invoice, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode invoice request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/merchant/invoice/create", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("X-Token", c.token)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("invoice create call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.apiError("invoice create", resp)
	}

	var invoice Invoice
	if err := json.NewDecoder(resp.Body).Decode(&invoice); err != nil {
		return nil, fmt.Errorf("decode invoice response: %w", err)
	}
	if invoice.InvoiceID == "" || invoice.PageURL == "" {
		return nil, fmt.Errorf("invoice create: provider returned incomplete invoice")
	}
	return &invoice, nil
}

func (c *HTTPClient) GetInvoiceStatus(ctx context.Context, invoiceID string) (*InvoiceStatus, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/merchant/invoice/status?invoiceId="+invoiceID, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("X-Token", c.token)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("invoice status call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.apiError("invoice status", resp)
	}

	var status InvoiceStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("decode status response: %w", err)
	}
	return &status, nil
}

func (c *HTTPClient) apiError(op string, resp *http.Response) error {
	payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return fmt.Errorf("%s: provider returned %d: %s", op, resp.StatusCode, string(payload))
}
