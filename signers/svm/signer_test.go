package svm

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWalletFromBase58(t *testing.T) {
	source, err := NewWallet()
	require.NoError(t, err)

	wallet, err := NewWalletFromBase58(source.key.String())
	require.NoError(t, err)
	assert.Equal(t, source.PublicKey(), wallet.PublicKey())
}

func TestNewWalletFromBase58Invalid(t *testing.T) {
	_, err := NewWalletFromBase58("not-a-key")
	assert.Error(t, err)
}

func TestSignBytes(t *testing.T) {
	wallet, err := NewWallet()
	require.NoError(t, err)

	msg := []byte("RecipientAddr1:USDC:0.05:tx-1")
	sig, err := wallet.SignBytes(msg)
	require.NoError(t, err)
	require.Len(t, sig, ed25519.SignatureSize)

	pub := ed25519.PublicKey(wallet.Account().Bytes())
	assert.True(t, ed25519.Verify(pub, msg, sig))
	assert.False(t, ed25519.Verify(pub, []byte("tampered"), sig))
}

func TestSignBytesDistinctKeys(t *testing.T) {
	a, err := NewWallet()
	require.NoError(t, err)
	b, err := NewWallet()
	require.NoError(t, err)
	require.NotEqual(t, a.PublicKey(), b.PublicKey())

	msg := []byte("same message")
	sigA, err := a.SignBytes(msg)
	require.NoError(t, err)

	pubB := ed25519.PublicKey(b.Account().Bytes())
	assert.False(t, ed25519.Verify(pubB, msg, sigA))
}
