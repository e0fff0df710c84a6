package payments

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"jumlamart.com/app/internal/config"
)

const ProviderName = "paystack"

// SignatureHeader carries the hex HMAC-SHA512 of the raw webhook body under
// the secret key.
const SignatureHeader = "X-Paystack-Signature"

// GatewaySuccess is Paystack's success sentinel for a transaction status.
const GatewaySuccess = "success"

// Client talks to the Paystack REST API. Configuration is injected; nothing
// is read from the environment here.
type Client struct {
	baseURL   string
	secretKey string
	httpc     *http.Client
}

func NewClient(cfg config.PaystackConfig) *Client {
	return &Client{
		baseURL:   cfg.BaseURL,
		secretKey: cfg.SecretKey,
		httpc:     &http.Client{Timeout: 15 * time.Second},
	}
}

// SetHTTPClient overrides the HTTP client, mainly for tests.
func (c *Client) SetHTTPClient(h *http.Client) { c.httpc = h }

// VerifyData is the slice of the gateway's transaction payload the
// reconciliation flow cares about.
type VerifyData struct {
	Status        string
	Reference     string
	Amount        int64 // minor units
	Currency      string
	OrderID       string // from metadata.orderId
	CustomerEmail string
}

type transactionPayload struct {
	Status    string `json:"status"`
	Reference string `json:"reference"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Metadata  struct {
		OrderID string `json:"orderId"`
	} `json:"metadata"`
	Customer struct {
		Email string `json:"email"`
	} `json:"customer"`
}

func (p transactionPayload) verifyData() VerifyData {
	return VerifyData{
		Status:        p.Status,
		Reference:     p.Reference,
		Amount:        p.Amount,
		Currency:      p.Currency,
		OrderID:       p.Metadata.OrderID,
		CustomerEmail: p.Customer.Email,
	}
}

// VerifyTransaction calls GET /transaction/verify/{reference}. Transport
// errors and non-2xx statuses surface as ErrGatewayUnreachable; a body that
// does not decode surfaces as ErrMalformedGatewayResponse.
func (c *Client) VerifyTransaction(ctx context.Context, reference string) (VerifyData, error) {
	endpoint := c.baseURL + "/transaction/verify/" + url.PathEscape(reference)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return VerifyData{}, fmt.Errorf("%w: %v", ErrGatewayUnreachable, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return VerifyData{}, fmt.Errorf("%w: %v", ErrGatewayUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return VerifyData{}, fmt.Errorf("%w: status %d: %s", ErrGatewayUnreachable, resp.StatusCode, body)
	}

	var out struct {
		Status  bool               `json:"status"`
		Message string             `json:"message"`
		Data    transactionPayload `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return VerifyData{}, fmt.Errorf("%w: %v", ErrMalformedGatewayResponse, err)
	}
	return out.Data.verifyData(), nil
}

type InitializeRequest struct {
	OrderID     string
	Email       string
	AmountCents int
	Currency    string
	CallbackURL string
}

type InitializeData struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

// InitializeTransaction calls POST /transaction/initialize and returns the
// hosted checkout URL plus the reference that later round-trips through the
// success-page redirect.
func (c *Client) InitializeTransaction(ctx context.Context, in InitializeRequest) (InitializeData, error) {
	payload := map[string]any{
		"email":        in.Email,
		"amount":       in.AmountCents,
		"currency":     in.Currency,
		"callback_url": in.CallbackURL,
		"metadata":     map[string]string{"orderId": in.OrderID},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return InitializeData{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return InitializeData{}, fmt.Errorf("%w: %v", ErrGatewayUnreachable, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return InitializeData{}, fmt.Errorf("%w: %v", ErrGatewayUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return InitializeData{}, fmt.Errorf("%w: status %d: %s", ErrGatewayUnreachable, resp.StatusCode, errBody)
	}

	var out struct {
		Status bool `json:"status"`
		Data   struct {
			AuthorizationURL string `json:"authorization_url"`
			AccessCode       string `json:"access_code"`
			Reference        string `json:"reference"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return InitializeData{}, fmt.Errorf("%w: %v", ErrMalformedGatewayResponse, err)
	}
	if out.Data.AuthorizationURL == "" {
		return InitializeData{}, fmt.Errorf("%w: empty authorization_url", ErrMalformedGatewayResponse)
	}
	return InitializeData(out.Data), nil
}

// WebhookEvent is a verified, decoded Paystack event.
type WebhookEvent struct {
	Event string             `json:"event"`
	Data  transactionPayload `json:"data"`
}

// EventID builds a dedupe key. Paystack events carry no id of their own, so
// event type + transaction reference has to serve.
func (ev WebhookEvent) EventID() string { return ev.Event + ":" + ev.Data.Reference }

func (ev WebhookEvent) VerifyData() VerifyData { return ev.Data.verifyData() }

// ParseWebhook checks the signature header against the raw body and decodes
// the event.
func (c *Client) ParseWebhook(headers http.Header, body []byte) (WebhookEvent, error) {
	sig := headers.Get(SignatureHeader)
	if sig == "" || !hmac.Equal([]byte(sig), []byte(Signature(c.secretKey, body))) {
		return WebhookEvent{}, ErrInvalidSignature
	}

	var ev WebhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return WebhookEvent{}, fmt.Errorf("%w: %v", ErrMalformedGatewayResponse, err)
	}
	if ev.Event == "" {
		return WebhookEvent{}, fmt.Errorf("%w: missing event type", ErrMalformedGatewayResponse)
	}
	return ev, nil
}

// Signature computes the webhook signature Paystack sends: hex HMAC-SHA512 of
// the body under the secret key. Exported for the mockwebhook tool and tests.
func Signature(secret string, body []byte) string {
	m := hmac.New(sha512.New, []byte(secret))
	m.Write(body)
	return hex.EncodeToString(m.Sum(nil))
}
