// Package types defines the data model shared by the payment handler, the
// HTTP client facade, and the chain backends.
package types

import (
	"fmt"
	"math/big"
	"time"
)

// PaymentRequirement is derived from a single 402 response. It is immutable
// and discarded after use; only the PaymentRecord it produces outlives it.
//
// Amount stays a decimal string all the way to the chain backend, which
// converts it to integer base units. Float arithmetic on token amounts is
// never performed.
type PaymentRequirement struct {
	Token      string `json:"token"`
	Amount     string `json:"amount"`
	Recipient  string `json:"recipient"`
	ServiceURL string `json:"serviceUrl,omitempty"`

	// Expiration is the unix time until which one settled payment covers
	// repeat requests for the resource. Zero means a payment never expires.
	Expiration int64 `json:"expiration,omitempty"`
}

// Validate reports whether the requirement may proceed to payment.
// A requirement with a missing token or recipient, or a non-positive
// amount, is invalid.
func (r PaymentRequirement) Validate() error {
	if r.Token == "" {
		return fmt.Errorf("payment requirement missing token")
	}
	if r.Recipient == "" {
		return fmt.Errorf("payment requirement missing recipient")
	}
	amount, err := ParseDecimal(r.Amount)
	if err != nil {
		return fmt.Errorf("payment requirement has invalid amount %q: %w", r.Amount, err)
	}
	if amount.Sign() <= 0 {
		return fmt.Errorf("payment requirement has non-positive amount %q", r.Amount)
	}
	return nil
}

// ParseDecimal parses a human-readable decimal amount into an exact rational.
// Used for validation and threshold comparison; base-unit conversion happens
// in the chain package.
func ParseDecimal(s string) (*big.Rat, error) {
	if s == "" {
		return nil, fmt.Errorf("empty amount")
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, fmt.Errorf("not a decimal number")
	}
	return r, nil
}

// PaymentRecord is one entry in the payment ledger. Exactly one record is
// appended per successful execution; failed attempts append none.
type PaymentRecord struct {
	Timestamp     time.Time `json:"timestamp"`
	Amount        string    `json:"amount"`
	Token         string    `json:"token"`
	Recipient     string    `json:"recipient"`
	ServiceURL    string    `json:"serviceUrl"`
	TransactionID string    `json:"transactionId"`
	Signature     string    `json:"signature"`
	Expiration    int64     `json:"expiration,omitempty"`
}

// Covers reports whether this record settles a new demand for the same
// resource and token at the given time, so the proof can be re-presented
// instead of paying again.
func (r PaymentRecord) Covers(serviceURL, token string, now time.Time) bool {
	if r.ServiceURL != serviceURL || r.Token != token {
		return false
	}
	return r.Expiration == 0 || r.Expiration > now.Unix()
}

// PaymentResult is the outcome of one execution attempt. Either
// TransactionID/Signature are set (success) or Err is set (failure),
// never both.
type PaymentResult struct {
	TransactionID string `json:"transactionId,omitempty"`
	Signature     string `json:"signature,omitempty"`
	Err           string `json:"error,omitempty"`
}

// Succeeded reports whether the execution attempt produced a confirmed
// on-chain payment.
func (r PaymentResult) Succeeded() bool {
	return r.Err == "" && r.TransactionID != ""
}

// Failure builds a failed PaymentResult with a human-readable reason.
func Failure(reason string) PaymentResult {
	return PaymentResult{Err: reason}
}

// ApprovalDecision is the outcome of the approval policy for one 402 event.
type ApprovalDecision int

const (
	// Rejected is the zero value: no payment unless the policy says otherwise
	Rejected ApprovalDecision = iota
	// Approved authorizes exactly one payment for the requirement
	Approved
)

func (d ApprovalDecision) String() string {
	if d == Approved {
		return "approved"
	}
	return "rejected"
}
