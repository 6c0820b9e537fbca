// Package http provides the x402-aware HTTP client facade: a RoundTripper
// decorator that transparently settles 402 Payment Required responses and
// retries the original request once with proof of payment attached.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	s402 "github.com/w3hf/s402-go"
	"github.com/w3hf/s402-go/types"
)

// Transport decorates a base http.RoundTripper with x402 payment handling.
// It is composed explicitly by the caller; nothing is patched into shared
// clients. Any response other than 402 passes through untouched, and a
// declined or failed payment surfaces as the original 402 response, never
// as an error.
type Transport struct {
	base    http.RoundTripper
	handler *s402.PaymentHandler
	log     *zap.Logger
}

// TransportOption configures a Transport.
type TransportOption func(*Transport)

// WithBase sets the underlying transport. Defaults to http.DefaultTransport.
func WithBase(rt http.RoundTripper) TransportOption {
	return func(t *Transport) {
		if rt != nil {
			t.base = rt
		}
	}
}

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(log *zap.Logger) TransportOption {
	return func(t *Transport) { t.log = log }
}

// NewTransport creates a payment-handling transport around the given handler.
func NewTransport(handler *s402.PaymentHandler, opts ...TransportOption) *Transport {
	t := &Transport{
		base:    http.DefaultTransport,
		handler: handler,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// RoundTrip sends the request and, on a 402, runs the payment flow:
// extract, validate, approve, execute, then retry exactly once. A second
// 402 on the retried request is returned as-is; there is never a second
// payment cycle for one call.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req
	if req.Header.Get(s402.HeaderProtocolVersion) == "" {
		out = req.Clone(req.Context())
		out.Header.Set(s402.HeaderProtocolVersion, s402.ProtocolVersion)
	}

	resp, err := t.base.RoundTrip(out)
	if err != nil || resp.StatusCode != http.StatusPaymentRequired {
		return resp, err
	}

	requirement := ExtractRequirement(resp, req.URL.String())
	if err := requirement.Validate(); err != nil {
		t.log.Warn("ignoring unpayable 402 response", zap.String("url", requirement.ServiceURL), zap.Error(err))
		return resp, nil
	}

	// A request whose body cannot be replayed can never be retried, so
	// nothing may be spent on it.
	if !canReplay(req) {
		t.log.Warn("not paying for a request whose body cannot be replayed", zap.String("url", requirement.ServiceURL))
		return resp, nil
	}

	result, reused := t.handler.PriorPayment(requirement)
	if !reused {
		decision, err := t.handler.Approve(req.Context(), requirement)
		if err != nil {
			t.log.Warn("payment approval failed", zap.String("url", requirement.ServiceURL), zap.Error(err))
		}
		if decision != types.Approved {
			return resp, nil
		}

		result = t.handler.Execute(req.Context(), requirement)
		if !result.Succeeded() {
			return resp, nil
		}
	}

	retry, err := buildRetryRequest(req, requirement, result)
	if err != nil {
		t.log.Warn("cannot retry after payment", zap.String("url", requirement.ServiceURL), zap.Error(err))
		return resp, nil
	}

	retryResp, err := t.base.RoundTrip(retry)
	if err != nil {
		// The payment is already settled and recorded; the server was paid
		// even though the content was not delivered.
		resp.Body.Close()
		return nil, fmt.Errorf("retry after payment failed: %w", err)
	}

	resp.Body.Close()
	return retryResp, nil
}

// Client is a convenience wrapper bundling a Transport into an *http.Client.
type Client struct {
	hc *http.Client
}

// NewClient creates a payment-aware HTTP client.
func NewClient(handler *s402.PaymentHandler, opts ...TransportOption) *Client {
	return &Client{hc: &http.Client{Transport: NewTransport(handler, opts...)}}
}

// WrapClient returns a copy of base whose transport settles 402 responses
// through the handler. The base client is not mutated.
func WrapClient(base *http.Client, handler *s402.PaymentHandler) *http.Client {
	wrapped := *base
	wrapped.Transport = NewTransport(handler, WithBase(base.Transport))
	return &wrapped
}

// Do performs an HTTP request with automatic payment handling.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.hc.Do(req)
}

// Get performs a GET request with automatic payment handling.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.hc.Do(req)
}

// Post performs a POST request with automatic payment handling.
func (c *Client) Post(ctx context.Context, url, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	return c.hc.Do(req)
}
