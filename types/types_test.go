package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentRequirementValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     PaymentRequirement
		wantErr bool
	}{
		{
			name: "valid",
			req:  PaymentRequirement{Token: "USDC", Amount: "0.05", Recipient: "RecipientAddr1"},
		},
		{
			name:    "missing token",
			req:     PaymentRequirement{Amount: "0.05", Recipient: "RecipientAddr1"},
			wantErr: true,
		},
		{
			name:    "missing recipient",
			req:     PaymentRequirement{Token: "USDC", Amount: "0.05"},
			wantErr: true,
		},
		{
			name:    "zero amount",
			req:     PaymentRequirement{Token: "USDC", Amount: "0", Recipient: "RecipientAddr1"},
			wantErr: true,
		},
		{
			name:    "negative amount",
			req:     PaymentRequirement{Token: "USDC", Amount: "-1", Recipient: "RecipientAddr1"},
			wantErr: true,
		},
		{
			name:    "unparseable amount",
			req:     PaymentRequirement{Token: "USDC", Amount: "a lot", Recipient: "RecipientAddr1"},
			wantErr: true,
		},
		{
			name:    "empty amount",
			req:     PaymentRequirement{Token: "USDC", Amount: "", Recipient: "RecipientAddr1"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPaymentResultSucceeded(t *testing.T) {
	assert.True(t, PaymentResult{TransactionID: "tx1", Signature: "sig"}.Succeeded())
	assert.False(t, Failure("rpc down").Succeeded())
	assert.False(t, PaymentResult{}.Succeeded())
	assert.Equal(t, "rpc down", Failure("rpc down").Err)
}

func TestParseDescriptor(t *testing.T) {
	t.Run("valid descriptor", func(t *testing.T) {
		req, err := ParseDescriptor([]byte(`{"token":"USDC","amount":"0.25","recipient":"RecipientAddr1"}`), "https://api.example.com/data")
		require.NoError(t, err)
		assert.Equal(t, "USDC", req.Token)
		assert.Equal(t, "0.25", req.Amount)
		assert.Equal(t, "RecipientAddr1", req.Recipient)
		assert.Equal(t, "https://api.example.com/data", req.ServiceURL)
	})

	t.Run("expiration carried through", func(t *testing.T) {
		req, err := ParseDescriptor([]byte(`{"token":"USDC","amount":"0.25","recipient":"r","expiration":1767225600}`), "u")
		require.NoError(t, err)
		assert.Equal(t, int64(1767225600), req.Expiration)
	})

	t.Run("negative expiration rejected by schema", func(t *testing.T) {
		_, err := ParseDescriptor([]byte(`{"token":"USDC","amount":"0.25","recipient":"r","expiration":-1}`), "u")
		assert.Error(t, err)
	})

	t.Run("missing recipient rejected by schema", func(t *testing.T) {
		_, err := ParseDescriptor([]byte(`{"token":"USDC","amount":"0.25"}`), "u")
		assert.Error(t, err)
	})

	t.Run("numeric amount rejected by schema", func(t *testing.T) {
		_, err := ParseDescriptor([]byte(`{"token":"USDC","amount":0.25,"recipient":"r"}`), "u")
		assert.Error(t, err)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := ParseDescriptor([]byte(`{`), "u")
		assert.Error(t, err)
	})
}

func TestDescriptorRoundTrip(t *testing.T) {
	orig := PaymentRequirement{Token: "USDT", Amount: "1.5", Recipient: "Addr", Expiration: 1767225600}
	data, err := orig.Descriptor()
	require.NoError(t, err)

	parsed, err := ParseDescriptor(data, "https://svc.example.com")
	require.NoError(t, err)
	assert.Equal(t, orig.Token, parsed.Token)
	assert.Equal(t, orig.Amount, parsed.Amount)
	assert.Equal(t, orig.Recipient, parsed.Recipient)
	assert.Equal(t, orig.Expiration, parsed.Expiration)
}
