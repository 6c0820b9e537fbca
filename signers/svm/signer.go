// Package svm provides an ed25519 wallet signer for the Solana backend.
package svm

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Wallet holds a Solana keypair. It signs attestation messages and
// transactions; the private key never leaves the wallet. All methods are
// safe for concurrent use.
type Wallet struct {
	key solana.PrivateKey
	pub solana.PublicKey
}

// NewWalletFromBase58 creates a wallet from a base58-encoded private key.
func NewWalletFromBase58(privateKey string) (*Wallet, error) {
	key, err := solana.PrivateKeyFromBase58(privateKey)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return &Wallet{key: key, pub: key.PublicKey()}, nil
}

// NewWallet generates a fresh random keypair. Useful for tests and devnet.
func NewWallet() (*Wallet, error) {
	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate keypair: %w", err)
	}
	return &Wallet{key: key, pub: key.PublicKey()}, nil
}

// PublicKey returns the wallet's address in base58.
func (w *Wallet) PublicKey() string {
	return w.pub.String()
}

// Account returns the wallet's public key for transaction building.
func (w *Wallet) Account() solana.PublicKey {
	return w.pub
}

// SignBytes signs an arbitrary message with the wallet's ed25519 key.
func (w *Wallet) SignBytes(msg []byte) ([]byte, error) {
	sig, err := w.key.Sign(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to sign message: %w", err)
	}
	return sig[:], nil
}

// SignTransaction signs a built transaction for every signer slot that
// matches the wallet's public key.
func (w *Wallet) SignTransaction(tx *solana.Transaction) error {
	_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(w.pub) {
			return &w.key
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to sign transaction: %w", err)
	}
	return nil
}
