// Package evm provides an ECDSA wallet signer for the EVM backend.
package evm

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Wallet holds an ECDSA keypair. It signs attestation messages (EIP-191
// personal messages) and transaction digests; the private key never leaves
// the wallet. All methods are safe for concurrent use.
type Wallet struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// NewWalletFromHex creates a wallet from a hex-encoded private key, with or
// without the "0x" prefix.
func NewWalletFromHex(privateKeyHex string) (*Wallet, error) {
	privateKeyHex = strings.TrimPrefix(privateKeyHex, "0x")

	key, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	return &Wallet{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

// PublicKey returns the wallet's Ethereum address in hex.
func (w *Wallet) PublicKey() string {
	return w.address.Hex()
}

// Address returns the wallet's address for transaction building.
func (w *Wallet) Address() common.Address {
	return w.address
}

// SignBytes signs an arbitrary message as an EIP-191 personal message.
// The recovery id is adjusted to the Ethereum convention (27/28).
func (w *Wallet) SignBytes(msg []byte) ([]byte, error) {
	prefix := fmt.Sprintf("\x19Ethereum Signed Message:\n%d", len(msg))
	digest := crypto.Keccak256([]byte(prefix), msg)

	signature, err := crypto.Sign(digest, w.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign message: %w", err)
	}
	signature[64] += 27

	return signature, nil
}

// SignDigest signs a raw 32-byte digest, leaving the recovery id as 0/1 for
// use with transaction signers.
func (w *Wallet) SignDigest(digest []byte) ([]byte, error) {
	signature, err := crypto.Sign(digest, w.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign digest: %w", err)
	}
	return signature, nil
}
