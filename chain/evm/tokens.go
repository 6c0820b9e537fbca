package evm

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/w3hf/s402-go/chain"
)

const (
	// Default token decimals for USDC
	StableDecimals = 6

	// NativeDecimals is the wei precision of the native asset
	NativeDecimals = 18
)

// usdcByChain maps chain ids to the canonical USDC deployment.
var usdcByChain = map[uint64]string{
	1:     "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", // Ethereum mainnet
	8453:  "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913", // Base
	84532: "0x036CbD53842c5426634e7929541eC2318f3dCF7e", // Base Sepolia
}

// ResolveToken looks up a token by symbol or contract address for the given
// chain. ETH is the native asset; unknown contract addresses are accepted
// with the default of 18 decimals.
func ResolveToken(chainID uint64, symbolOrAddress string) chain.Token {
	switch strings.ToUpper(symbolOrAddress) {
	case "ETH":
		return chain.Token{Symbol: "ETH", Decimals: NativeDecimals, Native: true}
	case "USDC":
		if addr, ok := usdcByChain[chainID]; ok {
			return chain.Token{Symbol: "USDC", Address: addr, Decimals: StableDecimals}
		}
	}

	if common.IsHexAddress(symbolOrAddress) {
		addr := common.HexToAddress(symbolOrAddress)
		for _, usdc := range usdcByChain {
			if addr == common.HexToAddress(usdc) {
				return chain.Token{Symbol: "USDC", Address: addr.Hex(), Decimals: StableDecimals}
			}
		}
		return chain.Token{Symbol: symbolOrAddress, Address: addr.Hex(), Decimals: NativeDecimals}
	}

	return chain.Token{Symbol: symbolOrAddress, Address: symbolOrAddress, Decimals: NativeDecimals}
}
