package chain

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// EVMClient is a stub for the account-based chain family. Address validation
// works; settlement queries are not implemented.
type EVMClient struct{}

func NewEVMClient() *EVMClient {
	return &EVMClient{}
}

func (e *EVMClient) LatestBlockhash(context.Context) (string, error) {
	return "", ErrUnsupportedChain
}

func (e *EVMClient) LatestReferenceSignature(context.Context, string) (string, error) {
	return "", ErrUnsupportedChain
}

func (e *EVMClient) TransactionResult(context.Context, string) (*TxResult, error) {
	return nil, ErrUnsupportedChain
}

func (e *EVMClient) ValidateAddress(address string) error {
	if !common.IsHexAddress(address) {
		return fmt.Errorf("%w: %q is not a hex address", ErrBadAddress, address)
	}
	return nil
}
