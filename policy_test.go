package s402

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/w3hf/s402-go/types"
)

func TestApprovalPolicyThreshold(t *testing.T) {
	policy, err := NewApprovalPolicy("0.1", nil)
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("below threshold auto-approves", func(t *testing.T) {
		decision, err := policy.ShouldApprove(ctx, "0.05", "USDC", "https://svc.example.com")
		require.NoError(t, err)
		assert.Equal(t, types.Approved, decision)
	})

	t.Run("exactly at threshold auto-approves", func(t *testing.T) {
		decision, err := policy.ShouldApprove(ctx, "0.1", "USDC", "https://svc.example.com")
		require.NoError(t, err)
		assert.Equal(t, types.Approved, decision)
	})

	t.Run("above threshold without callback fails closed", func(t *testing.T) {
		decision, err := policy.ShouldApprove(ctx, "5.0", "USDC", "https://svc.example.com")
		require.NoError(t, err)
		assert.Equal(t, types.Rejected, decision)
	})

	t.Run("invalid amount rejects", func(t *testing.T) {
		decision, err := policy.ShouldApprove(ctx, "not-a-number", "USDC", "https://svc.example.com")
		assert.Error(t, err)
		assert.Equal(t, types.Rejected, decision)
	})
}

func TestApprovalPolicyCallback(t *testing.T) {
	ctx := context.Background()

	t.Run("callback approves above threshold", func(t *testing.T) {
		var gotURL, gotAmount, gotToken string
		policy, err := NewApprovalPolicy("0.1", func(ctx context.Context, serviceURL, amount, token string) (bool, error) {
			gotURL, gotAmount, gotToken = serviceURL, amount, token
			return true, nil
		})
		require.NoError(t, err)

		decision, err := policy.ShouldApprove(ctx, "5.0", "USDC", "https://svc.example.com")
		require.NoError(t, err)
		assert.Equal(t, types.Approved, decision)
		assert.Equal(t, "https://svc.example.com", gotURL)
		assert.Equal(t, "5.0", gotAmount)
		assert.Equal(t, "USDC", gotToken)
	})

	t.Run("callback rejects", func(t *testing.T) {
		policy, err := NewApprovalPolicy("0.1", func(context.Context, string, string, string) (bool, error) {
			return false, nil
		})
		require.NoError(t, err)

		decision, err := policy.ShouldApprove(ctx, "5.0", "USDC", "u")
		require.NoError(t, err)
		assert.Equal(t, types.Rejected, decision)
	})

	t.Run("callback error rejects", func(t *testing.T) {
		policy, err := NewApprovalPolicy("0.1", func(context.Context, string, string, string) (bool, error) {
			return false, errors.New("approver unreachable")
		})
		require.NoError(t, err)

		decision, err := policy.ShouldApprove(ctx, "5.0", "USDC", "u")
		assert.Error(t, err)
		assert.Equal(t, types.Rejected, decision)
	})

	t.Run("callback not consulted at or below threshold", func(t *testing.T) {
		called := false
		policy, err := NewApprovalPolicy("0.1", func(context.Context, string, string, string) (bool, error) {
			called = true
			return false, nil
		})
		require.NoError(t, err)

		decision, err := policy.ShouldApprove(ctx, "0.1", "USDC", "u")
		require.NoError(t, err)
		assert.Equal(t, types.Approved, decision)
		assert.False(t, called)
	})
}

func TestNewApprovalPolicy(t *testing.T) {
	t.Run("empty threshold uses default", func(t *testing.T) {
		policy, err := NewApprovalPolicy("", nil)
		require.NoError(t, err)

		decision, err := policy.ShouldApprove(context.Background(), DefaultAutoApproveThreshold, "USDC", "u")
		require.NoError(t, err)
		assert.Equal(t, types.Approved, decision)
	})

	t.Run("garbage threshold errors", func(t *testing.T) {
		_, err := NewApprovalPolicy("lots", nil)
		assert.Error(t, err)
	})

	t.Run("negative threshold errors", func(t *testing.T) {
		_, err := NewApprovalPolicy("-0.5", nil)
		assert.Error(t, err)
	})
}
