// Package svm implements the chain.Client contract on Solana using solana-go.
// Native SOL moves through the system program; everything else is an SPL
// token transfer between associated token accounts.
package svm

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/w3hf/s402-go/chain"
	svmsigner "github.com/w3hf/s402-go/signers/svm"
)

const defaultPollInterval = 2 * time.Second

// Client is the Solana chain backend.
type Client struct {
	rpc          *rpc.Client
	wallet       *svmsigner.Wallet
	commitment   rpc.CommitmentType
	pollInterval time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithCommitment sets the commitment level used for balance reads, preflight
// and confirmation. Defaults to confirmed.
func WithCommitment(c rpc.CommitmentType) Option {
	return func(cl *Client) { cl.commitment = c }
}

// WithPollInterval sets how often confirmation status is polled.
func WithPollInterval(d time.Duration) Option {
	return func(cl *Client) { cl.pollInterval = d }
}

// New creates a Solana backend talking to the given RPC endpoint, paying
// from the given wallet.
func New(rpcURL string, wallet *svmsigner.Wallet, opts ...Option) *Client {
	c := &Client{
		rpc:          rpc.New(rpcURL),
		wallet:       wallet,
		commitment:   rpc.CommitmentConfirmed,
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// transferOp carries built instructions until submission. The blockhash is
// fetched at submit time so the operation does not go stale between build
// and submit.
type transferOp struct {
	instructions []solana.Instruction
	token        chain.Token
	amount       *big.Int
	recipient    string
}

func (o *transferOp) Describe() string {
	return fmt.Sprintf("transfer %s %s to %s",
		chain.FormatAmount(o.amount, o.token.Decimals), o.token.Symbol, o.recipient)
}

// BuildTransfer resolves the token, converts the decimal amount to base
// units, verifies the payer's balance covers it, and assembles the transfer
// instructions.
func (c *Client) BuildTransfer(ctx context.Context, tokenID, amount, recipient string) (chain.Operation, error) {
	tok := ResolveToken(tokenID)

	base, err := chain.ParseAmount(amount, tok.Decimals)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	if !base.IsUint64() {
		return nil, fmt.Errorf("amount %s overflows u64 base units", amount)
	}
	lamports := base.Uint64()

	recipientKey, err := solana.PublicKeyFromBase58(recipient)
	if err != nil {
		return nil, fmt.Errorf("invalid recipient address %q: %w", recipient, err)
	}
	payer := c.wallet.Account()

	op := &transferOp{token: tok, amount: base, recipient: recipient}

	if tok.Native {
		balance, err := c.rpc.GetBalance(ctx, payer, c.commitment)
		if err != nil {
			return nil, &chain.RPCError{Op: "getBalance", Err: err}
		}
		if balance.Value < lamports {
			return nil, fmt.Errorf("balance %s SOL below demanded %s: %w",
				chain.FormatAmount(new(big.Int).SetUint64(balance.Value), tok.Decimals),
				amount, chain.ErrInsufficientFunds)
		}
		op.instructions = []solana.Instruction{
			system.NewTransferInstruction(lamports, payer, recipientKey).Build(),
		}
		return op, nil
	}

	mint, err := solana.PublicKeyFromBase58(tok.Address)
	if err != nil {
		return nil, fmt.Errorf("invalid token mint %q: %w", tok.Address, err)
	}

	source, _, err := solana.FindAssociatedTokenAddress(payer, mint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive source token account: %w", err)
	}
	held, err := c.tokenBalance(ctx, source)
	if err != nil {
		return nil, err
	}
	if held < lamports {
		return nil, fmt.Errorf("token balance %s %s below demanded %s: %w",
			chain.FormatAmount(new(big.Int).SetUint64(held), tok.Decimals),
			tok.Symbol, amount, chain.ErrInsufficientFunds)
	}

	dest, _, err := solana.FindAssociatedTokenAddress(recipientKey, mint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive destination token account: %w", err)
	}

	// Create the recipient's token account when it does not exist yet; the
	// payer funds the rent.
	if _, err := c.rpc.GetAccountInfo(ctx, dest); err != nil {
		if !errors.Is(err, rpc.ErrNotFound) {
			return nil, &chain.RPCError{Op: "getAccountInfo", Err: err}
		}
		op.instructions = append(op.instructions,
			associatedtokenaccount.NewCreateInstruction(payer, recipientKey, mint).Build())
	}

	op.instructions = append(op.instructions,
		token.NewTransferCheckedInstruction(
			lamports, uint8(tok.Decimals), source, mint, dest, payer, nil,
		).Build())

	return op, nil
}

// tokenBalance reads and decodes the SPL token account at addr. A missing
// account means the payer holds none of the token.
func (c *Client) tokenBalance(ctx context.Context, addr solana.PublicKey) (uint64, error) {
	info, err := c.rpc.GetAccountInfo(ctx, addr)
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return 0, fmt.Errorf("payer has no token account: %w", chain.ErrInsufficientFunds)
		}
		return 0, &chain.RPCError{Op: "getAccountInfo", Err: err}
	}

	var account token.Account
	if err := bin.NewBinDecoder(info.Value.Data.GetBinary()).Decode(&account); err != nil {
		return 0, fmt.Errorf("failed to decode token account: %w", err)
	}
	return account.Amount, nil
}

// SubmitAndConfirm signs and submits the operation, then polls until the
// cluster reports at least the configured commitment. The transaction id is
// the base58 signature.
func (c *Client) SubmitAndConfirm(ctx context.Context, op chain.Operation) (string, error) {
	xfer, ok := op.(*transferOp)
	if !ok {
		return "", fmt.Errorf("operation %T was not built by this backend", op)
	}

	recent, err := c.rpc.GetLatestBlockhash(ctx, c.commitment)
	if err != nil {
		return "", &chain.RPCError{Op: "getLatestBlockhash", Err: err}
	}

	tx, err := solana.NewTransaction(
		xfer.instructions,
		recent.Value.Blockhash,
		solana.TransactionPayer(c.wallet.Account()),
	)
	if err != nil {
		return "", fmt.Errorf("failed to build transaction: %w", err)
	}
	if err := c.wallet.SignTransaction(tx); err != nil {
		return "", err
	}

	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: c.commitment,
	})
	if err != nil {
		return "", &chain.RPCError{Op: "sendTransaction", Err: err}
	}

	if err := c.awaitConfirmation(ctx, sig); err != nil {
		return "", err
	}
	return sig.String(), nil
}

func (c *Client) awaitConfirmation(ctx context.Context, sig solana.Signature) error {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			out, err := c.rpc.GetSignatureStatuses(ctx, true, sig)
			if err != nil {
				return &chain.RPCError{Op: "getSignatureStatuses", Err: err}
			}
			if len(out.Value) == 0 || out.Value[0] == nil {
				continue // not yet observed by the cluster
			}
			status := out.Value[0]
			if status.Err != nil {
				return fmt.Errorf("transaction %s failed on chain: %v", sig, status.Err)
			}
			switch status.ConfirmationStatus {
			case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
				return nil
			}
		}
	}
}
