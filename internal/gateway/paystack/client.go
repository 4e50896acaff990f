// internal/gateway/paystack/client.go
package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"custodial-wallet/internal/gateway"
	"custodial-wallet/internal/util"
)

// DefaultBaseURL is the production API root.
const DefaultBaseURL = "https://api.paystack.co"

// Config configures the Paystack client.
type Config struct {
	SecretKey   string
	BaseURL     string
	CallbackURL string
	Timeout     time.Duration
}

// Client talks to the Paystack transaction API.
type Client struct {
	secretKey   string
	baseURL     string
	callbackURL string
	httpClient  *http.Client
}

var _ gateway.Client = (*Client)(nil)

// NewClient creates a Paystack client.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		secretKey:   cfg.SecretKey,
		baseURL:     baseURL,
		callbackURL: cfg.CallbackURL,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// envelope is the common response wrapper of every Paystack endpoint.
type envelope[T any] struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type initializeBody struct {
	Email       string `json:"email"`
	Amount      int64  `json:"amount"`
	Reference   string `json:"reference"`
	CallbackURL string `json:"callback_url,omitempty"`
}

type initializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type verifyData struct {
	Status    string `json:"status"`
	Reference string `json:"reference"`
	Amount    int64  `json:"amount"`
}

// Initialize starts a hosted checkout for req.
func (c *Client) Initialize(ctx context.Context, req gateway.InitializeRequest) (*gateway.Authorization, error) {
	body := initializeBody{
		Email:       req.Email,
		Amount:      req.Amount,
		Reference:   req.Reference,
		CallbackURL: c.callbackURL,
	}

	var resp envelope[initializeData]
	if err := c.do(ctx, http.MethodPost, "/transaction/initialize", body, &resp); err != nil {
		return nil, fmt.Errorf("initialize %s: %w", req.Reference, err)
	}

	return &gateway.Authorization{
		AuthorizationURL: resp.Data.AuthorizationURL,
		AccessCode:       resp.Data.AccessCode,
		Reference:        resp.Data.Reference,
	}, nil
}

// Verify fetches the gateway's status for reference.
func (c *Client) Verify(ctx context.Context, reference string) (*gateway.Verification, error) {
	var resp envelope[verifyData]
	if err := c.do(ctx, http.MethodGet, "/transaction/verify/"+url.PathEscape(reference), nil, &resp); err != nil {
		return nil, fmt.Errorf("verify %s: %w", reference, err)
	}

	return &gateway.Verification{
		Reference: resp.Data.Reference,
		Status:    resp.Data.Status,
		Amount:    resp.Data.Amount,
	}, nil
}

// statusReporter lets do inspect the envelope without knowing its data type.
type statusReporter interface {
	ok() (bool, string)
}

func (e *envelope[T]) ok() (bool, string) { return e.Status, e.Message }

func (c *Client) do(ctx context.Context, method, path string, in interface{}, out statusReporter) error {
	var reqBody io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", util.ErrGateway, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", util.ErrGateway, err)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return fmt.Errorf("%w: http %d", util.ErrGateway, resp.StatusCode)
		}
		return fmt.Errorf("%w: failed to decode response: %v", util.ErrGateway, err)
	}

	ok, message := out.ok()
	if resp.StatusCode >= http.StatusBadRequest || !ok {
		return fmt.Errorf("%w: http %d: %s", util.ErrGateway, resp.StatusCode, message)
	}
	return nil
}
