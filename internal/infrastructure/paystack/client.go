// Package paystack is a thin client for the Paystack transaction API:
// initialize a charge, verify it by reference. Amounts cross the wire in
// subunits (cents), so decimal amounts are scaled by 100.
package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/Favour123/paystack-api/internal/application/ports"
	"github.com/Favour123/paystack-api/internal/config"
)

var subunitFactor = decimal.NewFromInt(100)

// Client implements the PaymentGateway port against the Paystack REST API
type Client struct {
	http    *http.Client
	baseURL string
	secret  string
	logger  ports.Logger
	metrics ports.Metrics
}

// NewClient creates a Paystack client with a bounded request timeout
func NewClient(cfg *config.PaystackConfig, logger ports.Logger, metrics ports.Metrics) *Client {
	return &Client{
		http: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		secret:  cfg.SecretKey,
		logger:  logger,
		metrics: metrics,
	}
}

type initializeRequest struct {
	Email     string            `json:"email"`
	Amount    int64             `json:"amount"`
	Currency  string            `json:"currency"`
	Reference string            `json:"reference"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

type initializeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

type verifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		ID       int64           `json:"id"`
		Status   string          `json:"status"`
		Amount   decimal.Decimal `json:"amount"`
		Currency string          `json:"currency"`
		PaidAt   string          `json:"paid_at"`
	} `json:"data"`
}

// Initialize starts a remote charge and returns the gateway's redirect
// handle.
func (c *Client) Initialize(ctx context.Context, req ports.InitializeTransaction) (*ports.Authorization, error) {
	payload := initializeRequest{
		Email:     req.Email,
		Amount:    req.Amount.Mul(subunitFactor).Round(0).IntPart(),
		Currency:  req.Currency,
		Reference: req.Reference,
		Metadata:  req.Metadata,
	}

	var resp initializeResponse
	if err := c.post(ctx, "/transaction/initialize", payload, &resp); err != nil {
		c.metrics.IncrementCounter("gateway.initialize.errors", nil)
		return nil, err
	}

	if !resp.Status {
		c.metrics.IncrementCounter("gateway.initialize.rejected", nil)
		c.logger.Warn("Gateway rejected initialization",
			"reference", req.Reference,
			"message", resp.Message)
		return nil, fmt.Errorf("gateway rejected initialization: %s", resp.Message)
	}

	c.metrics.IncrementCounter("gateway.initialize.success", nil)
	return &ports.Authorization{
		AuthorizationURL: resp.Data.AuthorizationURL,
		AccessCode:       resp.Data.AccessCode,
		Reference:        resp.Data.Reference,
	}, nil
}

// Verify confirms the state of a charge by reference.
func (c *Client) Verify(ctx context.Context, reference string) (*ports.VerificationResult, error) {
	var resp verifyResponse
	if err := c.get(ctx, "/transaction/verify/"+reference, &resp); err != nil {
		c.metrics.IncrementCounter("gateway.verify.errors", nil)
		return nil, err
	}

	if !resp.Status {
		c.metrics.IncrementCounter("gateway.verify.rejected", nil)
		return nil, fmt.Errorf("gateway could not verify transaction: %s", resp.Message)
	}

	c.metrics.IncrementCounter("gateway.verify.success",
		map[string]string{"status": resp.Data.Status})
	return &ports.VerificationResult{
		TransactionID: strconv.FormatInt(resp.Data.ID, 10),
		Status:        resp.Data.Status,
		Amount:        resp.Data.Amount.Div(subunitFactor),
		Currency:      resp.Data.Currency,
		PaidAt:        resp.Data.PaidAt,
	}, nil
}

func (c *Client) post(ctx context.Context, path string, payload, dest interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, dest)
}

func (c *Client) get(ctx context.Context, path string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	return c.do(req, dest)
}

func (c *Client) do(req *http.Request, dest interface{}) error {
	req.Header.Set("Authorization", "Bearer "+c.secret)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("Gateway request failed", "path", req.URL.Path, "error", err)
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read gateway response: %w", err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		c.logger.Error("Gateway returned server error",
			"path", req.URL.Path,
			"status", resp.StatusCode)
		return fmt.Errorf("gateway unavailable: status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode gateway response: %w", err)
	}

	return nil
}
