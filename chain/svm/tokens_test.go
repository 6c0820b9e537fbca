package svm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveToken(t *testing.T) {
	t.Run("native SOL by symbol", func(t *testing.T) {
		tok := ResolveToken("SOL")
		assert.True(t, tok.Native)
		assert.Equal(t, NativeMint, tok.Address)
		assert.Equal(t, SolDecimals, tok.Decimals)
	})

	t.Run("symbol lookup is case insensitive", func(t *testing.T) {
		tok := ResolveToken("usdc")
		assert.Equal(t, "USDC", tok.Symbol)
		assert.Equal(t, "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", tok.Address)
		assert.Equal(t, StableDecimals, tok.Decimals)
		assert.False(t, tok.Native)
	})

	t.Run("known mint address resolves to its symbol", func(t *testing.T) {
		tok := ResolveToken("Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB")
		assert.Equal(t, "USDT", tok.Symbol)
		assert.Equal(t, StableDecimals, tok.Decimals)
	})

	t.Run("unknown mint defaults to six decimals", func(t *testing.T) {
		mint := "4k3Dyjzvzp8eMZWUXbBCjEvwSkkk59S5iCNLY3QrkX6R"
		tok := ResolveToken(mint)
		assert.Equal(t, mint, tok.Symbol)
		assert.Equal(t, mint, tok.Address)
		assert.Equal(t, StableDecimals, tok.Decimals)
		assert.False(t, tok.Native)
	})
}
