// Package s402 implements the client side of the x402 HTTP micropayment
// protocol: deriving payment requirements from 402 responses, deciding them
// against an approval policy, settling them on chain through a pluggable
// backend, and keeping an append-only ledger of completed payments.
package s402

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/w3hf/s402-go/chain"
	"github.com/w3hf/s402-go/types"
)

// DefaultConfirmTimeout bounds the submission-and-confirmation step.
const DefaultConfirmTimeout = 90 * time.Second

// Signer signs arbitrary byte messages with the payer's key. Implementations
// must be safe to call concurrently from multiple in-flight payments.
type Signer interface {
	SignBytes(msg []byte) ([]byte, error)
	PublicKey() string
}

// Verifier checks a settled transaction with an external facilitator.
type Verifier interface {
	Verify(ctx context.Context, transactionID string) (bool, error)
}

// PaymentHandler executes approved payment requirements: it builds and
// settles the on-chain transfer, produces the attestation signature, and
// records successful payments in its ledger. One handler instance owns one
// ledger; independent handlers (e.g. per wallet) are fully isolated.
type PaymentHandler struct {
	chain          chain.Client
	signer         Signer
	policy         *ApprovalPolicy
	ledger         *Ledger
	verifier       Verifier
	confirmTimeout time.Duration
	reusePayments  bool
	log            *zap.Logger
}

// HandlerOption configures a PaymentHandler.
type HandlerOption func(*PaymentHandler)

// WithPolicy replaces the default fail-closed policy.
func WithPolicy(p *ApprovalPolicy) HandlerOption {
	return func(h *PaymentHandler) { h.policy = p }
}

// WithVerifier enables post-settlement verification through a facilitator.
// A payment the facilitator does not verify is treated as failed and not
// recorded.
func WithVerifier(v Verifier) HandlerOption {
	return func(h *PaymentHandler) { h.verifier = v }
}

// WithConfirmTimeout bounds how long one payment waits for on-chain
// confirmation. Timing out is an execution failure; the submitted
// transaction itself cannot be recalled.
func WithConfirmTimeout(d time.Duration) HandlerOption {
	return func(h *PaymentHandler) { h.confirmTimeout = d }
}

// WithPaymentReuse re-presents the proof of an earlier, still-valid payment
// for the same resource and token instead of paying again. Validity comes
// from the requirement's expiration; a payment without one covers the
// resource indefinitely. Off by default: without it every 402 is settled
// fresh.
func WithPaymentReuse() HandlerOption {
	return func(h *PaymentHandler) { h.reusePayments = true }
}

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(log *zap.Logger) HandlerOption {
	return func(h *PaymentHandler) { h.log = log }
}

// NewPaymentHandler creates a handler paying through the given chain backend
// and attesting with the given signer. The signer is held by reference and
// never copied or logged.
func NewPaymentHandler(chainClient chain.Client, signer Signer, opts ...HandlerOption) *PaymentHandler {
	policy, _ := NewApprovalPolicy(DefaultAutoApproveThreshold, nil)
	h := &PaymentHandler{
		chain:          chainClient,
		signer:         signer,
		policy:         policy,
		ledger:         NewLedger(),
		confirmTimeout: DefaultConfirmTimeout,
		log:            zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Approve runs the approval policy for one requirement.
func (h *PaymentHandler) Approve(ctx context.Context, req types.PaymentRequirement) (types.ApprovalDecision, error) {
	return h.policy.ShouldApprove(ctx, req.Amount, req.Token, req.ServiceURL)
}

// PriorPayment returns the proof of a recorded payment that still covers the
// requirement's resource and token, when payment reuse is enabled. The
// second return is false when every prior payment has expired, none exists,
// or reuse is off.
func (h *PaymentHandler) PriorPayment(req types.PaymentRequirement) (types.PaymentResult, bool) {
	if !h.reusePayments {
		return types.PaymentResult{}, false
	}
	rec, ok := h.ledger.FindValid(req.ServiceURL, req.Token, time.Now())
	if !ok {
		return types.PaymentResult{}, false
	}
	h.log.Info("reusing settled payment",
		zap.String("service", req.ServiceURL),
		zap.String("token", req.Token),
		zap.String("transaction", rec.TransactionID),
	)
	return types.PaymentResult{TransactionID: rec.TransactionID, Signature: rec.Signature}, true
}

// Execute settles one approved, validated requirement. Every failure path
// returns a PaymentResult carrying the reason; nothing is appended to the
// ledger unless the payment confirmed (and, if a verifier is configured,
// verified). Exactly one record is appended per success.
func (h *PaymentHandler) Execute(ctx context.Context, req types.PaymentRequirement) types.PaymentResult {
	op, err := h.chain.BuildTransfer(ctx, req.Token, req.Amount, req.Recipient)
	if err != nil {
		return h.fail(req, fmt.Errorf("failed to build transfer: %w", err))
	}

	confirmCtx, cancel := context.WithTimeout(ctx, h.confirmTimeout)
	defer cancel()

	txID, err := h.chain.SubmitAndConfirm(confirmCtx, op)
	if err != nil {
		return h.fail(req, fmt.Errorf("failed to settle %s: %w", op.Describe(), err))
	}

	sig, err := h.signer.SignBytes([]byte(AttestationMessage(req.Recipient, req.Token, req.Amount, txID)))
	if err != nil {
		return h.fail(req, fmt.Errorf("failed to sign attestation: %w", err))
	}

	if h.verifier != nil {
		verified, err := h.verifier.Verify(ctx, txID)
		if err != nil {
			return h.fail(req, fmt.Errorf("facilitator verification failed: %w", err))
		}
		if !verified {
			return h.fail(req, fmt.Errorf("facilitator did not verify transaction %s", txID))
		}
	}

	signature := base64.StdEncoding.EncodeToString(sig)
	h.ledger.Record(types.PaymentRecord{
		Timestamp:     time.Now(),
		Amount:        req.Amount,
		Token:         req.Token,
		Recipient:     req.Recipient,
		ServiceURL:    req.ServiceURL,
		TransactionID: txID,
		Signature:     signature,
		Expiration:    req.Expiration,
	})
	h.log.Info("payment settled",
		zap.String("token", req.Token),
		zap.String("amount", req.Amount),
		zap.String("recipient", req.Recipient),
		zap.String("service", req.ServiceURL),
		zap.String("transaction", txID),
	)

	return types.PaymentResult{
		TransactionID: txID,
		Signature:     signature,
	}
}

func (h *PaymentHandler) fail(req types.PaymentRequirement, err error) types.PaymentResult {
	h.log.Warn("payment failed",
		zap.String("token", req.Token),
		zap.String("amount", req.Amount),
		zap.String("service", req.ServiceURL),
		zap.Error(err),
	)
	return types.Failure(err.Error())
}

// History returns a snapshot of the handler's payment ledger.
func (h *PaymentHandler) History() []types.PaymentRecord {
	return h.ledger.History()
}

// AttestationMessage is the canonical message the payer signs to bind a
// payment to its transaction: recipient:token:amount:transactionId. The
// exact wire format expected by live facilitators is still unconfirmed; this
// layout is what servers verifying against this SDK should reproduce.
func AttestationMessage(recipient, token, amount, transactionID string) string {
	return recipient + ":" + token + ":" + amount + ":" + transactionID
}
