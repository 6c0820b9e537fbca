// Package chain defines the contracts between the payment handler and the
// blockchain backends, and the asset-amount arithmetic shared by them.
//
// A backend owns its signing key and RPC connection; the handler only sees
// opaque operations and transaction ids.
package chain

import (
	"context"
)

// Operation is an opaque, fully built transfer operation. Whether it is a
// native-asset transfer or a token-account transfer is the backend's concern.
type Operation interface {
	// Describe returns a short human-readable summary for logging
	Describe() string
}

// Client builds and settles transfer operations on one chain.
//
// BuildTransfer resolves the token identifier (symbol or address), converts
// the decimal amount to integer base units, and verifies the payer can cover
// it. SubmitAndConfirm submits the operation and blocks until the chain
// confirms it or ctx is done; once submitted, a transaction cannot be
// cancelled even if ctx expires while waiting.
type Client interface {
	BuildTransfer(ctx context.Context, token, amount, recipient string) (Operation, error)
	SubmitAndConfirm(ctx context.Context, op Operation) (string, error)
}

// Token describes a fungible asset known to a backend.
type Token struct {
	Symbol   string
	Address  string // mint or contract address
	Decimals int
	Native   bool // native asset of the chain rather than a token program/contract
}
