package evm

import (
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWallet(t *testing.T) *Wallet {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	wallet, err := NewWalletFromHex(hex.EncodeToString(crypto.FromECDSA(key)))
	require.NoError(t, err)
	return wallet
}

func TestNewWalletFromHex(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	raw := hex.EncodeToString(crypto.FromECDSA(key))

	bare, err := NewWalletFromHex(raw)
	require.NoError(t, err)
	prefixed, err := NewWalletFromHex("0x" + raw)
	require.NoError(t, err)

	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey).Hex(), bare.PublicKey())
	assert.Equal(t, bare.PublicKey(), prefixed.PublicKey())
}

func TestNewWalletFromHexInvalid(t *testing.T) {
	_, err := NewWalletFromHex("zz")
	assert.Error(t, err)
}

func TestSignBytesRecoversAddress(t *testing.T) {
	wallet := newTestWallet(t)

	msg := []byte("RecipientAddr1:USDC:0.05:0xabc")
	sig, err := wallet.SignBytes(msg)
	require.NoError(t, err)
	require.Len(t, sig, 65)
	assert.Contains(t, []byte{27, 28}, sig[64])

	prefix := fmt.Sprintf("\x19Ethereum Signed Message:\n%d", len(msg))
	digest := crypto.Keccak256([]byte(prefix), msg)

	recovery := make([]byte, 65)
	copy(recovery, sig)
	recovery[64] -= 27

	pub, err := crypto.SigToPub(digest, recovery)
	require.NoError(t, err)
	assert.Equal(t, wallet.Address(), crypto.PubkeyToAddress(*pub))
}

func TestSignDigest(t *testing.T) {
	wallet := newTestWallet(t)

	digest := crypto.Keccak256([]byte("raw transaction hash"))
	sig, err := wallet.SignDigest(digest)
	require.NoError(t, err)
	require.Len(t, sig, 65)
	assert.Contains(t, []byte{0, 1}, sig[64])

	pub, err := crypto.SigToPub(digest, sig)
	require.NoError(t, err)
	assert.Equal(t, wallet.Address(), crypto.PubkeyToAddress(*pub))
}
