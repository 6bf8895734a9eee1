package deeplink

import (
	"bytes"
	"testing"
)

func TestBoxRoundTrip(t *testing.T) {
	dapp, err := GenerateKeypair()
	if err != nil {
		t.Fatal(err)
	}
	wallet, err := GenerateKeypair()
	if err != nil {
		t.Fatal(err)
	}

	msg := []byte(`{"public_key":"abc","session":"tok"}`)
	nonce, data, err := Seal(msg, wallet.Public, dapp.Private)
	if err != nil {
		t.Fatal(err)
	}
	if nonce == "" || data == "" {
		t.Fatal("empty seal output")
	}

	got, err := Open(data, nonce, dapp.Public, wallet.Private)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, msg) {
		t.Errorf("round trip mismatch: %q", got)
	}
}

func TestBoxFreshNonce(t *testing.T) {
	dapp, _ := GenerateKeypair()
	wallet, _ := GenerateKeypair()

	n1, _, err := Seal([]byte("x"), wallet.Public, dapp.Private)
	if err != nil {
		t.Fatal(err)
	}
	n2, _, err := Seal([]byte("x"), wallet.Public, dapp.Private)
	if err != nil {
		t.Fatal(err)
	}
	if n1 == n2 {
		t.Error("nonce reused across seals")
	}
}

func TestBoxOpenWrongKey(t *testing.T) {
	dapp, _ := GenerateKeypair()
	wallet, _ := GenerateKeypair()
	other, _ := GenerateKeypair()

	nonce, data, err := Seal([]byte("secret"), wallet.Public, dapp.Private)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := Open(data, nonce, dapp.Public, other.Private); err == nil {
		t.Error("opened with wrong private key")
	}
	if _, err := Open(data, nonce, other.Public, wallet.Private); err == nil {
		t.Error("opened with wrong sender key")
	}
}

func TestBoxOpenTampered(t *testing.T) {
	dapp, _ := GenerateKeypair()
	wallet, _ := GenerateKeypair()

	nonce, _, err := Seal([]byte("secret"), wallet.Public, dapp.Private)
	if err != nil {
		t.Fatal(err)
	}
	_, otherData, err := Seal([]byte("other"), wallet.Public, dapp.Private)
	if err != nil {
		t.Fatal(err)
	}

	// ciphertext from a different nonce must not authenticate
	if _, err := Open(otherData, nonce, dapp.Public, wallet.Private); err == nil {
		t.Error("opened ciphertext under mismatched nonce")
	}
}

func TestBoxBadInputs(t *testing.T) {
	dapp, _ := GenerateKeypair()

	if _, _, err := Seal([]byte("x"), "not-base58-0OIl", dapp.Private); err == nil {
		t.Error("sealed to malformed key")
	}
	if _, err := Open("abc", "short", dapp.Public, dapp.Private); err == nil {
		t.Error("opened with malformed nonce")
	}
}
