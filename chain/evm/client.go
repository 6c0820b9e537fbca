// Package evm implements the chain.Client contract on EVM networks using
// go-ethereum. Native ETH moves as a plain value transfer; everything else
// is an ERC-20 transfer call.
package evm

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/w3hf/s402-go/chain"
	evmsigner "github.com/w3hf/s402-go/signers/evm"
)

const (
	defaultPollInterval = 2 * time.Second
	fallbackGasLimit    = 300000
)

// erc20ABI is the minimal ABI needed for transfers and balance checks.
const erc20ABI = `[
	{
		"inputs": [
			{"name": "to", "type": "address"},
			{"name": "amount", "type": "uint256"}
		],
		"name": "transfer",
		"outputs": [{"name": "", "type": "bool"}],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [{"name": "account", "type": "address"}],
		"name": "balanceOf",
		"outputs": [{"name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	}
]`

// Client is the EVM chain backend.
type Client struct {
	eth          *ethclient.Client
	wallet       *evmsigner.Wallet
	erc20        abi.ABI
	pollInterval time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithPollInterval sets how often the transaction receipt is polled.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) { c.pollInterval = d }
}

// New creates an EVM backend connected to the given RPC endpoint, paying
// from the given wallet.
func New(rpcURL string, wallet *evmsigner.Wallet, opts ...Option) (*Client, error) {
	eth, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC: %w", err)
	}

	parsed, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ERC-20 ABI: %w", err)
	}

	c := &Client{
		eth:          eth,
		wallet:       wallet,
		erc20:        parsed,
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// transferOp is a built but unsigned transfer call.
type transferOp struct {
	to        common.Address // token contract, or recipient for native
	value     *big.Int       // native value, zero for token transfers
	data      []byte         // packed transfer calldata, nil for native
	token     chain.Token
	amount    *big.Int
	recipient string
}

func (o *transferOp) Describe() string {
	return fmt.Sprintf("transfer %s %s to %s",
		chain.FormatAmount(o.amount, o.token.Decimals), o.token.Symbol, o.recipient)
}

// BuildTransfer resolves the token, converts the decimal amount to base
// units, verifies the payer's balance covers it, and packs the transfer
// calldata.
func (c *Client) BuildTransfer(ctx context.Context, tokenID, amount, recipient string) (chain.Operation, error) {
	chainID, err := c.eth.ChainID(ctx)
	if err != nil {
		return nil, &chain.RPCError{Op: "chainId", Err: err}
	}
	tok := ResolveToken(chainID.Uint64(), tokenID)

	base, err := chain.ParseAmount(amount, tok.Decimals)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	if !common.IsHexAddress(recipient) {
		return nil, fmt.Errorf("invalid recipient address %q", recipient)
	}
	to := common.HexToAddress(recipient)
	payer := c.wallet.Address()

	op := &transferOp{token: tok, amount: base, recipient: recipient}

	if tok.Native {
		balance, err := c.eth.BalanceAt(ctx, payer, nil)
		if err != nil {
			return nil, &chain.RPCError{Op: "getBalance", Err: err}
		}
		if balance.Cmp(base) < 0 {
			return nil, fmt.Errorf("balance %s ETH below demanded %s: %w",
				chain.FormatAmount(balance, tok.Decimals), amount, chain.ErrInsufficientFunds)
		}
		op.to = to
		op.value = base
		return op, nil
	}

	contract := common.HexToAddress(tok.Address)

	held, err := c.tokenBalance(ctx, contract, payer)
	if err != nil {
		return nil, err
	}
	if held.Cmp(base) < 0 {
		return nil, fmt.Errorf("token balance %s %s below demanded %s: %w",
			chain.FormatAmount(held, tok.Decimals), tok.Symbol, amount, chain.ErrInsufficientFunds)
	}

	data, err := c.erc20.Pack("transfer", to, base)
	if err != nil {
		return nil, fmt.Errorf("failed to pack transfer calldata: %w", err)
	}
	op.to = contract
	op.value = big.NewInt(0)
	op.data = data
	return op, nil
}

func (c *Client) tokenBalance(ctx context.Context, contract, account common.Address) (*big.Int, error) {
	data, err := c.erc20.Pack("balanceOf", account)
	if err != nil {
		return nil, fmt.Errorf("failed to pack balanceOf calldata: %w", err)
	}

	result, err := c.eth.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: data}, nil)
	if err != nil {
		return nil, &chain.RPCError{Op: "call balanceOf", Err: err}
	}

	out, err := c.erc20.Unpack("balanceOf", result)
	if err != nil || len(out) != 1 {
		return nil, fmt.Errorf("failed to unpack balanceOf result: %w", err)
	}
	balance, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected balanceOf result type %T", out[0])
	}
	return balance, nil
}

// SubmitAndConfirm signs and submits the operation, then polls until the
// transaction is mined. The transaction id is the hex transaction hash.
func (c *Client) SubmitAndConfirm(ctx context.Context, op chain.Operation) (string, error) {
	xfer, ok := op.(*transferOp)
	if !ok {
		return "", fmt.Errorf("operation %T was not built by this backend", op)
	}

	chainID, err := c.eth.ChainID(ctx)
	if err != nil {
		return "", &chain.RPCError{Op: "chainId", Err: err}
	}
	nonce, err := c.eth.PendingNonceAt(ctx, c.wallet.Address())
	if err != nil {
		return "", &chain.RPCError{Op: "getTransactionCount", Err: err}
	}
	gasPrice, err := c.eth.SuggestGasPrice(ctx)
	if err != nil {
		return "", &chain.RPCError{Op: "gasPrice", Err: err}
	}

	gasLimit, err := c.eth.EstimateGas(ctx, ethereum.CallMsg{
		From:  c.wallet.Address(),
		To:    &xfer.to,
		Value: xfer.value,
		Data:  xfer.data,
	})
	if err != nil {
		gasLimit = fallbackGasLimit
	} else {
		gasLimit += gasLimit / 5
	}

	tx := ethtypes.NewTransaction(nonce, xfer.to, xfer.value, gasLimit, gasPrice, xfer.data)

	signer := ethtypes.NewEIP155Signer(chainID)
	sig, err := c.wallet.SignDigest(signer.Hash(tx).Bytes())
	if err != nil {
		return "", err
	}
	signedTx, err := tx.WithSignature(signer, sig)
	if err != nil {
		return "", fmt.Errorf("failed to attach signature: %w", err)
	}

	if err := c.eth.SendTransaction(ctx, signedTx); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "insufficient funds") {
			return "", fmt.Errorf("%v: %w", err, chain.ErrInsufficientFunds)
		}
		return "", &chain.RPCError{Op: "sendRawTransaction", Err: err}
	}

	txHash := signedTx.Hash()
	if err := c.awaitReceipt(ctx, txHash); err != nil {
		return "", err
	}
	return txHash.Hex(), nil
}

func (c *Client) awaitReceipt(ctx context.Context, txHash common.Hash) error {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			receipt, err := c.eth.TransactionReceipt(ctx, txHash)
			if err != nil {
				if errors.Is(err, ethereum.NotFound) {
					continue // not mined yet
				}
				return &chain.RPCError{Op: "getTransactionReceipt", Err: err}
			}
			if receipt.Status != ethtypes.ReceiptStatusSuccessful {
				return fmt.Errorf("transaction %s reverted", txHash.Hex())
			}
			return nil
		}
	}
}
