package s402

import (
	"context"
	"fmt"
	"math/big"

	"github.com/w3hf/s402-go/types"
)

// DefaultAutoApproveThreshold is the maximum amount paid without external
// confirmation when no threshold is configured, in the token's units.
const DefaultAutoApproveThreshold = "0.1"

// ApprovalCallback decides payments above the auto-approve threshold. It may
// block (e.g. ask a human or another service); ctx bounds the wait.
type ApprovalCallback func(ctx context.Context, serviceURL, amount, token string) (bool, error)

// ApprovalPolicy decides whether a payment requirement is paid. Amounts at
// or below the threshold are approved without consulting anything; above it,
// the callback decides, and with no callback the policy fails closed and
// rejects. There is deliberately no interactive fallback: a library must
// never block on terminal input.
type ApprovalPolicy struct {
	threshold *big.Rat
	callback  ApprovalCallback
}

// NewApprovalPolicy creates a policy with the given decimal threshold
// (e.g. "0.1") and an optional callback for amounts above it.
func NewApprovalPolicy(threshold string, callback ApprovalCallback) (*ApprovalPolicy, error) {
	if threshold == "" {
		threshold = DefaultAutoApproveThreshold
	}
	limit, err := types.ParseDecimal(threshold)
	if err != nil {
		return nil, fmt.Errorf("invalid approval threshold %q: %w", threshold, err)
	}
	if limit.Sign() < 0 {
		return nil, fmt.Errorf("approval threshold %q is negative", threshold)
	}
	return &ApprovalPolicy{threshold: limit, callback: callback}, nil
}

// ShouldApprove makes exactly one decision per 402 event. The comparison is
// exact decimal arithmetic, never floating point.
func (p *ApprovalPolicy) ShouldApprove(ctx context.Context, amount, token, serviceURL string) (types.ApprovalDecision, error) {
	value, err := types.ParseDecimal(amount)
	if err != nil {
		return types.Rejected, fmt.Errorf("invalid amount %q: %w", amount, err)
	}

	if value.Cmp(p.threshold) <= 0 {
		return types.Approved, nil
	}

	if p.callback != nil {
		ok, err := p.callback(ctx, serviceURL, amount, token)
		if err != nil {
			return types.Rejected, fmt.Errorf("approval callback failed: %w", err)
		}
		if ok {
			return types.Approved, nil
		}
		return types.Rejected, nil
	}

	return types.Rejected, nil
}
