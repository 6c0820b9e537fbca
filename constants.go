package s402

// Version constants
const (
	// Version is the SDK version
	Version = "1.0.0"

	// ProtocolVersion is the x402 protocol version advertised on outgoing requests
	ProtocolVersion = "1.0"
)

// Wire protocol header names. The same canonical casing is used by the
// extractor, the retry builder, and the server middleware.
const (
	// HeaderPaymentRequired carries a JSON payment descriptor on a 402
	// challenge. Servers may use it instead of the individual headers below.
	HeaderPaymentRequired = "X-402-Payment-Required"

	// HeaderPaymentToken identifies the demanded asset (mint or contract
	// address, or a well-known symbol such as USDC)
	HeaderPaymentToken = "X-402-Payment-Token"

	// HeaderPaymentAmount is the decimal amount demanded/paid, in the
	// token's human-readable units
	HeaderPaymentAmount = "X-402-Payment-Amount"

	// HeaderPaymentRecipient is the destination address
	HeaderPaymentRecipient = "X-402-Payment-Recipient"

	// HeaderPaymentTransaction is the on-chain transaction id proving payment
	HeaderPaymentTransaction = "X-402-Payment-Transaction"

	// HeaderPaymentNonce is a single-use freshness token
	HeaderPaymentNonce = "X-402-Payment-Nonce"

	// HeaderPaymentSignature is the base64 attestation signature binding
	// recipient, token, amount and transaction id to the payer's key
	HeaderPaymentSignature = "X-402-Payment-Signature"

	// HeaderProtocolVersion marks outgoing requests as x402-aware
	HeaderProtocolVersion = "X-402-Protocol-Version"
)
