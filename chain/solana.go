package chain

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// SolanaClient wraps a single shared RPC client. The commitment level is
// fixed at construction so signature lookup and transaction fetch always run
// at the same level.
type SolanaClient struct {
	rpc        *rpc.Client
	commitment rpc.CommitmentType
}

func NewSolanaClient(rpcURL, commitment string) (*SolanaClient, error) {
	c, err := ParseCommitment(commitment)
	if err != nil {
		return nil, err
	}
	return &SolanaClient{
		rpc:        rpc.New(rpcURL),
		commitment: c,
	}, nil
}

func ParseCommitment(s string) (rpc.CommitmentType, error) {
	switch s {
	case "processed":
		return rpc.CommitmentProcessed, nil
	case "confirmed", "":
		return rpc.CommitmentConfirmed, nil
	case "finalized":
		return rpc.CommitmentFinalized, nil
	}
	return "", fmt.Errorf("unknown commitment level %q", s)
}

func (s *SolanaClient) LatestBlockhash(ctx context.Context) (string, error) {
	bh, err := s.rpc.GetLatestBlockhash(ctx, s.commitment)
	if err != nil {
		return "", fmt.Errorf("%w: get latest blockhash: %v", ErrRPC, err)
	}
	return bh.Value.Blockhash.String(), nil
}

func (s *SolanaClient) LatestReferenceSignature(ctx context.Context, reference string) (string, error) {
	ref, err := solana.PublicKeyFromBase58(reference)
	if err != nil {
		return "", fmt.Errorf("%w: reference key: %v", ErrBadAddress, err)
	}

	limit := 1
	sigs, err := s.rpc.GetSignaturesForAddressWithOpts(ctx, ref, &rpc.GetSignaturesForAddressOpts{
		Limit:      &limit,
		Commitment: s.commitment,
	})
	if err != nil {
		return "", fmt.Errorf("%w: get signatures for reference: %v", ErrRPC, err)
	}
	if len(sigs) == 0 {
		return "", nil
	}
	return sigs[0].Signature.String(), nil
}

func (s *SolanaClient) TransactionResult(ctx context.Context, signature string) (*TxResult, error) {
	sig, err := solana.SignatureFromBase58(signature)
	if err != nil {
		return nil, fmt.Errorf("%w: signature: %v", ErrBadAddress, err)
	}

	maxVersion := uint64(0)
	tx, err := s.rpc.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
		Encoding:                       solana.EncodingBase64,
		Commitment:                     s.commitment,
		MaxSupportedTransactionVersion: &maxVersion,
	})
	if err != nil || tx == nil {
		return nil, fmt.Errorf("%w: get transaction: %v", ErrRPC, err)
	}

	res := &TxResult{Signature: signature}
	if tx.Meta != nil && tx.Meta.Err != nil {
		res.Failed = true
		res.ExecErr = fmt.Sprintf("%v", tx.Meta.Err)
	}
	return res, nil
}

func (s *SolanaClient) ValidateAddress(address string) error {
	if _, err := solana.PublicKeyFromBase58(address); err != nil {
		return fmt.Errorf("%w: %v", ErrBadAddress, err)
	}
	return nil
}
