package chapa

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ephremt/travelbook/config"
)

// Failure causes, kept distinct so the orchestrator can map each one to its
// own user-facing error. None of them are retried inside a single call.
var (
	ErrNotConfigured   = errors.New("chapa secret key is not configured")
	ErrUnreachable     = errors.New("chapa is unreachable")
	ErrInvalidResponse = errors.New("invalid response from chapa")
)

// RejectedError is an application-level rejection: the gateway answered but
// its envelope status was not "success".
type RejectedError struct {
	Message string
	Raw     map[string]any
}

func (e *RejectedError) Error() string {
	return e.Message
}

type InitializeRequest struct {
	Amount      float64
	Currency    string
	Email       string
	FirstName   string
	LastName    string
	Reference   string
	Title       string
	Description string
}

type InitResult struct {
	CheckoutURL   string
	TransactionID string
	Raw           map[string]any
}

type VerifyResult struct {
	// Status is the gateway's reported transaction status (success, pending,
	// or a decline reason), not the envelope status.
	Status        string
	TransactionID string
	Raw           map[string]any
}

// Client talks to the Chapa transaction API. It is stateless; persistence
// of results is entirely the caller's responsibility.
type Client struct {
	secretKey   string
	baseURL     string
	callbackURL string
	returnURL   string
	httpClient  *http.Client
}

func NewClient(cfg config.ChapaConfig) *Client {
	return &Client{
		secretKey:   cfg.SecretKey,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		callbackURL: cfg.CallbackURL,
		returnURL:   cfg.ReturnURL,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Initialize(ctx context.Context, req InitializeRequest) (*InitResult, error) {
	if c.secretKey == "" {
		return nil, ErrNotConfigured
	}

	payload := map[string]any{
		"amount":       fmt.Sprintf("%.2f", req.Amount),
		"currency":     req.Currency,
		"email":        req.Email,
		"first_name":   req.FirstName,
		"last_name":    req.LastName,
		"tx_ref":       req.Reference,
		"callback_url": c.callbackURL,
		"return_url":   c.returnURL,
		"customization": map[string]string{
			"title":       req.Title,
			"description": req.Description,
		},
	}

	raw, err := c.do(ctx, http.MethodPost, c.baseURL+"/transaction/initialize", payload)
	if err != nil {
		return nil, err
	}

	data, _ := raw["data"].(map[string]any)
	return &InitResult{
		CheckoutURL:   stringField(data, "checkout_url"),
		TransactionID: stringField(data, "reference"),
		Raw:           raw,
	}, nil
}

func (c *Client) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	if c.secretKey == "" {
		return nil, ErrNotConfigured
	}

	raw, err := c.do(ctx, http.MethodGet, c.baseURL+"/transaction/verify/"+reference, nil)
	if err != nil {
		return nil, err
	}

	data, _ := raw["data"].(map[string]any)
	return &VerifyResult{
		Status:        stringField(data, "status"),
		TransactionID: stringField(data, "reference"),
		Raw:           raw,
	}, nil
}

// do performs one request and decodes the response envelope. An envelope
// status other than "success" comes back as a RejectedError carrying the
// gateway's own message and the raw payload.
func (c *Client) do(ctx context.Context, method, url string, payload any) (map[string]any, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: http=%d", ErrUnreachable, resp.StatusCode)
	}

	var raw map[string]any
	if err := json.Unmarshal(rawBody, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if status, _ := raw["status"].(string); status != "success" {
		message := stringField(raw, "message")
		return nil, &RejectedError{Message: message, Raw: raw}
	}

	return raw, nil
}

func stringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}
