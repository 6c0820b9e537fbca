package http

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"

	s402 "github.com/w3hf/s402-go"
	"github.com/w3hf/s402-go/types"
)

// newNonce generates a random 32-byte single-use nonce. A fresh nonce is
// generated per retry and never reused.
func newNonce() (string, error) {
	nonce := make([]byte, 32)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	return hex.EncodeToString(nonce), nil
}

// canReplay reports whether the request's body can be sent a second time.
// Checked before any payment: a non-replayable body means the retry could
// never happen, so paying for it would be money lost.
func canReplay(req *http.Request) bool {
	return req.Body == nil || req.Body == http.NoBody || req.GetBody != nil
}

// buildRetryRequest clones the original request and attaches the proof of
// payment headers. Only called for a successful PaymentResult.
func buildRetryRequest(orig *http.Request, req types.PaymentRequirement, result types.PaymentResult) (*http.Request, error) {
	retry := orig.Clone(orig.Context())

	if orig.Body != nil && orig.Body != http.NoBody {
		if orig.GetBody == nil {
			return nil, fmt.Errorf("request body cannot be replayed")
		}
		body, err := orig.GetBody()
		if err != nil {
			return nil, fmt.Errorf("failed to rewind request body: %w", err)
		}
		retry.Body = body
	}

	nonce, err := newNonce()
	if err != nil {
		return nil, err
	}

	retry.Header.Set(s402.HeaderProtocolVersion, s402.ProtocolVersion)
	retry.Header.Set(s402.HeaderPaymentToken, req.Token)
	retry.Header.Set(s402.HeaderPaymentAmount, req.Amount)
	retry.Header.Set(s402.HeaderPaymentRecipient, req.Recipient)
	retry.Header.Set(s402.HeaderPaymentTransaction, result.TransactionID)
	retry.Header.Set(s402.HeaderPaymentNonce, nonce)
	retry.Header.Set(s402.HeaderPaymentSignature, result.Signature)

	return retry, nil
}
