package svm

import (
	"strings"

	"github.com/w3hf/s402-go/chain"
)

const (
	// NativeMint is the sentinel mint address for native SOL
	NativeMint = "So11111111111111111111111111111111111111112"

	// Default decimal counts
	SolDecimals    = 9
	StableDecimals = 6
)

// SupportedTokens maps symbols to mainnet mint addresses. Primarily
// stablecoins, matching what x402 services actually charge in.
var SupportedTokens = map[string]chain.Token{
	"SOL": {
		Symbol:   "SOL",
		Address:  NativeMint,
		Decimals: SolDecimals,
		Native:   true,
	},
	"USDC": {
		Symbol:   "USDC",
		Address:  "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		Decimals: StableDecimals,
	},
	"USDT": {
		Symbol:   "USDT",
		Address:  "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB",
		Decimals: StableDecimals,
	},
}

// ResolveToken looks up a token by symbol or mint address.
// Unknown mints are accepted with the stablecoin default of 6 decimals.
func ResolveToken(symbolOrMint string) chain.Token {
	if tok, ok := SupportedTokens[strings.ToUpper(symbolOrMint)]; ok {
		return tok
	}
	for _, tok := range SupportedTokens {
		if tok.Address == symbolOrMint {
			return tok
		}
	}
	return chain.Token{
		Symbol:   symbolOrMint,
		Address:  symbolOrMint,
		Decimals: StableDecimals,
	}
}
