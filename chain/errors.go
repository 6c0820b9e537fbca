package chain

import (
	"errors"
	"fmt"
)

// ErrInsufficientFunds indicates the payer's balance cannot cover the
// demanded amount. Checked by the handler to produce a clear failure reason.
var ErrInsufficientFunds = errors.New("insufficient funds")

// RPCError wraps a network or node failure from the chain's RPC endpoint.
type RPCError struct {
	Op  string
	Err error
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc %s: %v", e.Op, e.Err)
}

func (e *RPCError) Unwrap() error {
	return e.Err
}
