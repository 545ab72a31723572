package token

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// HTTPClient talks to the token ledger service over its JSON API.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a token client against the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type transferRequest struct {
	From   string `json:"from,omitempty"`
	To     string `json:"to"`
	Amount int64  `json:"amount"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type balanceResponse struct {
	Address string `json:"address"`
	Balance int64  `json:"balance"`
}

type whitelistResponse struct {
	Address     string `json:"address"`
	Whitelisted bool   `json:"whitelisted"`
}

// Transfer moves amount from custody to the recipient.
func (c *HTTPClient) Transfer(ctx context.Context, to string, amount int64) error {
	return c.post(ctx, "/transfers", transferRequest{To: to, Amount: amount})
}

// TransferFrom pulls amount from a user's external balance.
func (c *HTTPClient) TransferFrom(ctx context.Context, from, to string, amount int64) error {
	return c.post(ctx, "/transfers/from", transferRequest{From: from, To: to, Amount: amount})
}

// BalanceOf returns the external token balance of an address.
func (c *HTTPClient) BalanceOf(ctx context.Context, address string) (int64, error) {
	var resp balanceResponse
	if err := c.get(ctx, "/balances/"+url.PathEscape(address), &resp); err != nil {
		return 0, err
	}
	return resp.Balance, nil
}

// Whitelisted reports whether an address is tax-exempt on the ledger.
func (c *HTTPClient) Whitelisted(ctx context.Context, address string) (bool, error) {
	var resp whitelistResponse
	if err := c.get(ctx, "/whitelist/"+url.PathEscape(address), &resp); err != nil {
		return false, err
	}
	return resp.Whitelisted, nil
}

func (c *HTTPClient) post(ctx context.Context, path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("token ledger request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.decodeError(resp)
	}
	return nil
}

func (c *HTTPClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("token ledger request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.decodeError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode token ledger response: %w", err)
	}
	return nil
}

func (c *HTTPClient) decodeError(resp *http.Response) error {
	var e errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&e); err == nil && e.Error != "" {
		return fmt.Errorf("token ledger rejected request (status %d): %s", resp.StatusCode, e.Error)
	}
	return fmt.Errorf("token ledger rejected request (status %d)", resp.StatusCode)
}
