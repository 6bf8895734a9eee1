package chain

import (
	"context"
	"errors"
)

var (
	// ErrRPC marks transient provider failures. Callers may retry; stored
	// payment state must not be touched on this error.
	ErrRPC = errors.New("chain rpc unavailable")

	ErrUnsupportedChain = errors.New("unsupported chain")
	ErrBadAddress       = errors.New("malformed address")
)

// TxResult is the outcome of an on-chain transaction as seen at the
// configured commitment level.
type TxResult struct {
	Signature string
	// Failed is true when the transaction was included but its execution
	// carried a chain-level error. Distinct from ErrRPC.
	Failed bool
	// ExecErr holds the raw chain error for logging, empty when Failed is false.
	ExecErr string
}

// Client is the read side of a ledger. One instance is constructed at startup
// and shared by every component that needs it.
type Client interface {
	// LatestBlockhash returns the current reference blockhash for building
	// transactions.
	LatestBlockhash(ctx context.Context) (string, error)

	// LatestReferenceSignature returns the most recent transaction signature
	// that mentions the given reference public key, or "" when the chain has
	// not observed one yet. An empty result is not an error.
	LatestReferenceSignature(ctx context.Context, reference string) (string, error)

	// TransactionResult fetches the transaction for a signature and reports
	// whether its execution succeeded.
	TransactionResult(ctx context.Context, signature string) (*TxResult, error)

	// ValidateAddress rejects addresses that are not well formed for this chain.
	ValidateAddress(address string) error
}
