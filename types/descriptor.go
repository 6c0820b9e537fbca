package types

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// descriptorSchema constrains the JSON payment descriptor some servers send
// in a single X-402-Payment-Required header instead of individual headers.
const descriptorSchema = `{
	"type": "object",
	"required": ["token", "amount", "recipient"],
	"properties": {
		"token": {"type": "string", "minLength": 1},
		"amount": {"type": "string", "pattern": "^[0-9]+(\\.[0-9]+)?$"},
		"recipient": {"type": "string", "minLength": 1},
		"memo": {"type": "string"},
		"facilitator": {"type": "string"},
		"expiration": {"type": "integer", "minimum": 0}
	}
}`

var descriptorSchemaLoader = gojsonschema.NewStringLoader(descriptorSchema)

// PaymentDescriptor is the JSON form of a payment requirement.
type PaymentDescriptor struct {
	Token       string `json:"token"`
	Amount      string `json:"amount"`
	Recipient   string `json:"recipient"`
	Memo        string `json:"memo,omitempty"`
	Facilitator string `json:"facilitator,omitempty"`
	Expiration  int64  `json:"expiration,omitempty"`
}

// ParseDescriptor validates and parses a JSON payment descriptor into a
// PaymentRequirement. The serviceURL is carried through from the original
// request; it is not part of the descriptor.
func ParseDescriptor(data []byte, serviceURL string) (PaymentRequirement, error) {
	result, err := gojsonschema.Validate(descriptorSchemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return PaymentRequirement{}, fmt.Errorf("failed to validate payment descriptor: %w", err)
	}
	if !result.Valid() {
		var reasons []string
		for _, desc := range result.Errors() {
			reasons = append(reasons, desc.String())
		}
		return PaymentRequirement{}, fmt.Errorf("invalid payment descriptor: %s", strings.Join(reasons, "; "))
	}

	var d PaymentDescriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return PaymentRequirement{}, fmt.Errorf("failed to parse payment descriptor: %w", err)
	}

	return PaymentRequirement{
		Token:      d.Token,
		Amount:     d.Amount,
		Recipient:  d.Recipient,
		ServiceURL: serviceURL,
		Expiration: d.Expiration,
	}, nil
}

// Descriptor serializes the requirement into the JSON descriptor form used
// by the X-402-Payment-Required challenge header.
func (r PaymentRequirement) Descriptor() ([]byte, error) {
	return json.Marshal(PaymentDescriptor{
		Token:      r.Token,
		Amount:     r.Amount,
		Recipient:  r.Recipient,
		Expiration: r.Expiration,
	})
}
