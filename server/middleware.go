// Package server provides gin middleware implementing the resource-server
// side of the x402 wire protocol: challenge unpaid requests with 402 and the
// payment requirement headers, and let paid requests through.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	s402 "github.com/w3hf/s402-go"
	"github.com/w3hf/s402-go/types"
)

// Option configures the middleware.
type Option func(*middleware)

// WithVerifier checks the presented transaction with a facilitator before
// serving the resource. Without it, only header consistency is enforced.
func WithVerifier(v s402.Verifier) Option {
	return func(m *middleware) { m.verifier = v }
}

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(m *middleware) { m.log = log }
}

type middleware struct {
	requirement types.PaymentRequirement
	descriptor  string
	verifier    s402.Verifier
	log         *zap.Logger
}

// RequirePayment guards a route with the given payment requirement. Unpaid
// requests receive a 402 carrying both the individual requirement headers
// and the JSON descriptor header; requests presenting proof headers that
// match the requirement proceed to the handler.
func RequirePayment(requirement types.PaymentRequirement, opts ...Option) gin.HandlerFunc {
	m := &middleware{requirement: requirement, log: zap.NewNop()}
	for _, opt := range opts {
		opt(m)
	}
	if descriptor, err := requirement.Descriptor(); err == nil {
		m.descriptor = string(descriptor)
	}

	return func(c *gin.Context) {
		if !m.paid(c) {
			m.challenge(c)
			return
		}
		c.Next()
	}
}

// paid reports whether the request carries proof headers satisfying the
// requirement. The attestation signature is recorded but not verified here;
// signature verification needs the payer's key and belongs to the
// facilitator.
func (m *middleware) paid(c *gin.Context) bool {
	tx := c.GetHeader(s402.HeaderPaymentTransaction)
	if tx == "" {
		return false
	}
	if c.GetHeader(s402.HeaderPaymentNonce) == "" ||
		c.GetHeader(s402.HeaderPaymentSignature) == "" {
		m.log.Warn("payment proof missing nonce or signature", zap.String("transaction", tx))
		return false
	}

	if c.GetHeader(s402.HeaderPaymentToken) != m.requirement.Token ||
		c.GetHeader(s402.HeaderPaymentRecipient) != m.requirement.Recipient {
		return false
	}

	paid, err := types.ParseDecimal(c.GetHeader(s402.HeaderPaymentAmount))
	if err != nil {
		return false
	}
	demanded, err := types.ParseDecimal(m.requirement.Amount)
	if err != nil || paid.Cmp(demanded) < 0 {
		return false
	}

	if m.verifier != nil {
		verified, err := m.verifier.Verify(c.Request.Context(), tx)
		if err != nil {
			m.log.Warn("facilitator verification failed", zap.String("transaction", tx), zap.Error(err))
			return false
		}
		if !verified {
			return false
		}
	}
	return true
}

func (m *middleware) challenge(c *gin.Context) {
	c.Header(s402.HeaderPaymentToken, m.requirement.Token)
	c.Header(s402.HeaderPaymentAmount, m.requirement.Amount)
	c.Header(s402.HeaderPaymentRecipient, m.requirement.Recipient)
	if m.descriptor != "" {
		c.Header(s402.HeaderPaymentRequired, m.descriptor)
	}
	c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{
		"error": "payment required",
	})
}
