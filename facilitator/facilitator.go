// Package facilitator provides a client for x402 facilitator services,
// which give payers and servers settlement visibility for payments.
package facilitator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds one verification call.
const DefaultTimeout = 30 * time.Second

// Client talks to a facilitator over HTTP.
type Client struct {
	baseURL string
	hc      *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.hc = hc
		}
	}
}

// New creates a facilitator client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Verify asks the facilitator whether the transaction settled the payment.
// A non-200 status is an error; a 200 with verified=false is a clean
// negative answer.
func (c *Client) Verify(ctx context.Context, transactionID string) (bool, error) {
	endpoint := c.baseURL + "/verify/" + url.PathEscape(transactionID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("failed to build verify request: %w", err)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return false, fmt.Errorf("facilitator verify request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("facilitator returned status %d", resp.StatusCode)
	}

	var body struct {
		Verified bool `json:"verified"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, fmt.Errorf("failed to decode facilitator response: %w", err)
	}
	return body.Verified, nil
}
