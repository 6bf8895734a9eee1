package payment

import (
	"github.com/gagliardetto/solana-go"
)

// NewReference generates a fresh single-use reference key and returns only
// the base58 public half. The private half is never needed: the key only
// tags the transfer instruction so the chain indexer can find the
// transaction later, it never signs anything.
func NewReference() (string, error) {
	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		return "", err
	}
	return key.PublicKey().String(), nil
}
