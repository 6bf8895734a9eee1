package deeplink

import (
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/nacl/box"
)

var (
	// ErrDecrypt means the callback payload did not authenticate against the
	// expected key pair. Terminal for the flow attempt; never fall back to a
	// guessed payload.
	ErrDecrypt = errors.New("unable to decrypt wallet payload")

	ErrBadKey   = errors.New("bad encryption key")
	ErrBadNonce = errors.New("bad nonce")
)

// Keypair is an ephemeral box keypair, base58-encoded. The private half is a
// short-lived secret: it lives only in the wallet-link session row and dies
// with its expiry.
type Keypair struct {
	Public  string
	Private string
}

func GenerateKeypair() (Keypair, error) {
	pub, priv, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return Keypair{}, err
	}
	return Keypair{
		Public:  base58.Encode(pub[:]),
		Private: base58.Encode(priv[:]),
	}, nil
}

func decodeKey(s string) (*[32]byte, error) {
	raw, err := base58.Decode(s)
	if err != nil || len(raw) != 32 {
		return nil, fmt.Errorf("%w: %q", ErrBadKey, s)
	}
	var k [32]byte
	copy(k[:], raw)
	return &k, nil
}

func decodeNonce(s string) (*[24]byte, error) {
	raw, err := base58.Decode(s)
	if err != nil || len(raw) != 24 {
		return nil, fmt.Errorf("%w: %q", ErrBadNonce, s)
	}
	var n [24]byte
	copy(n[:], raw)
	return &n, nil
}

// Seal encrypts payload for the counterpart key with a fresh random nonce.
// Both the nonce and the ciphertext come back base58-encoded, ready for a
// deep-link query string.
func Seal(payload []byte, theirPublic, ourPrivate string) (nonce, data string, err error) {
	pub, err := decodeKey(theirPublic)
	if err != nil {
		return "", "", err
	}
	priv, err := decodeKey(ourPrivate)
	if err != nil {
		return "", "", err
	}

	var n [24]byte
	if _, err := rand.Read(n[:]); err != nil {
		return "", "", err
	}

	sealed := box.Seal(nil, payload, &n, pub, priv)
	return base58.Encode(n[:]), base58.Encode(sealed), nil
}

// Open authenticates and decrypts a base58 box payload. A failed
// authentication returns ErrDecrypt, never garbage bytes.
func Open(data, nonce, theirPublic, ourPrivate string) ([]byte, error) {
	pub, err := decodeKey(theirPublic)
	if err != nil {
		return nil, err
	}
	priv, err := decodeKey(ourPrivate)
	if err != nil {
		return nil, err
	}
	n, err := decodeNonce(nonce)
	if err != nil {
		return nil, err
	}

	raw, err := base58.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: payload is not base58", ErrDecrypt)
	}

	plain, ok := box.Open(nil, raw, n, pub, priv)
	if !ok {
		return nil, ErrDecrypt
	}
	return plain, nil
}
