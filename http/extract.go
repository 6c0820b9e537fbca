package http

import (
	"net/http"

	s402 "github.com/w3hf/s402-go"
	"github.com/w3hf/s402-go/types"
)

// ExtractRequirement derives a payment requirement from a 402 response.
// Pure function of its inputs: missing headers yield empty fields and a zero
// amount rather than an error, and the caller detects the invalid
// requirement downstream. When the individual headers are absent entirely,
// the JSON descriptor header is tried as a fallback.
func ExtractRequirement(resp *http.Response, originalURL string) types.PaymentRequirement {
	h := resp.Header

	req := types.PaymentRequirement{
		Token:      h.Get(s402.HeaderPaymentToken),
		Amount:     h.Get(s402.HeaderPaymentAmount),
		Recipient:  h.Get(s402.HeaderPaymentRecipient),
		ServiceURL: originalURL,
	}

	if req.Token == "" && req.Recipient == "" {
		if descriptor := h.Get(s402.HeaderPaymentRequired); descriptor != "" {
			if parsed, err := types.ParseDescriptor([]byte(descriptor), originalURL); err == nil {
				return parsed
			}
		}
	}

	if req.Amount == "" {
		req.Amount = "0"
	}
	return req
}
