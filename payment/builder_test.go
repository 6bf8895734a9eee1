package payment

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	"solpay/chain"
)

const usdtMint = "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB"

func txContext(t *testing.T) (payer, recipient, reference, blockhash string) {
	t.Helper()
	return solana.NewWallet().PublicKey().String(),
		solana.NewWallet().PublicKey().String(),
		solana.NewWallet().PublicKey().String(),
		solana.NewWallet().PublicKey().String()
}

func instructionData(t *testing.T, tx *solana.Transaction, i int) (solana.PublicKey, []byte, []solana.PublicKey) {
	t.Helper()
	inst := tx.Message.Instructions[i]
	program, err := tx.Message.Program(inst.ProgramIDIndex)
	if err != nil {
		t.Fatal(err)
	}
	var accounts []solana.PublicKey
	for _, idx := range inst.Accounts {
		acc, err := tx.Message.Account(idx)
		if err != nil {
			t.Fatal(err)
		}
		accounts = append(accounts, acc)
	}
	return program, inst.Data, accounts
}

func TestBuildTokenTransfer(t *testing.T) {
	payer, recipient, reference, blockhash := txContext(t)
	amount, _ := decimal.NewFromString("12.5")

	tx, err := BuildTransferTx(TransferRequest{
		Payer:     payer,
		Recipient: recipient,
		Amount:    amount,
		Asset:     Asset{Symbol: "USDT", Mint: usdtMint, Decimals: 6},
		Reference: reference,
		OrderID:   "ORD-1",
		Blockhash: blockhash,
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(tx.Message.Instructions) != 2 {
		t.Fatalf("instructions = %d, want 2", len(tx.Message.Instructions))
	}
	if tx.Message.AccountKeys[0].String() != payer {
		t.Errorf("fee payer = %s, want %s", tx.Message.AccountKeys[0], payer)
	}

	program, data, _ := instructionData(t, tx, 0)
	if program != memoProgramID {
		t.Errorf("instruction 0 program = %s, want memo", program)
	}
	if !bytes.Equal(data, []byte("ORD-1")) {
		t.Errorf("memo bytes = %q, want %q", data, "ORD-1")
	}

	program, data, accounts := instructionData(t, tx, 1)
	if program != tokenProgramID {
		t.Errorf("instruction 1 program = %s, want token program", program)
	}
	if data[0] != 12 {
		t.Errorf("discriminator = %d, want 12 (TransferChecked)", data[0])
	}
	if got := binary.LittleEndian.Uint64(data[1:9]); got != 12500000 {
		t.Errorf("amount = %d, want 12500000", got)
	}
	if data[9] != 6 {
		t.Errorf("decimals byte = %d, want 6", data[9])
	}

	ref := solana.MustPublicKeyFromBase58(reference)
	found := false
	for _, acc := range accounts {
		if acc == ref {
			found = true
		}
	}
	if !found {
		t.Error("reference key not attached to the transfer instruction")
	}

	mint := solana.MustPublicKeyFromBase58(usdtMint)
	destATA, _, _ := solana.FindAssociatedTokenAddress(solana.MustPublicKeyFromBase58(recipient), mint)
	found = false
	for _, acc := range accounts {
		if acc == destATA {
			found = true
		}
	}
	if !found {
		t.Error("destination associated token account missing")
	}
}

func TestBuildNativeTransfer(t *testing.T) {
	payer, recipient, reference, blockhash := txContext(t)
	amount, _ := decimal.NewFromString("0.5")

	tx, err := BuildTransferTx(TransferRequest{
		Payer:     payer,
		Recipient: recipient,
		Amount:    amount,
		Asset:     Asset{Symbol: "SOL", Decimals: 9, Native: true},
		Reference: reference,
		OrderID:   "ORD-2",
		Blockhash: blockhash,
	})
	if err != nil {
		t.Fatal(err)
	}

	program, data, accounts := instructionData(t, tx, 1)
	if program != systemProgramID {
		t.Errorf("program = %s, want system program", program)
	}
	if got := binary.LittleEndian.Uint32(data[0:4]); got != 2 {
		t.Errorf("instruction index = %d, want 2 (Transfer)", got)
	}
	if got := binary.LittleEndian.Uint64(data[4:12]); got != 500000000 {
		t.Errorf("lamports = %d, want 500000000", got)
	}

	ref := solana.MustPublicKeyFromBase58(reference)
	if len(accounts) != 3 || accounts[2] != ref {
		t.Error("reference key must be the third transfer account")
	}
}

func TestBuildUnsignedSerializes(t *testing.T) {
	payer, recipient, reference, blockhash := txContext(t)
	amount, _ := decimal.NewFromString("1")

	tx, err := BuildTransferTx(TransferRequest{
		Payer:     payer,
		Recipient: recipient,
		Amount:    amount,
		Asset:     Asset{Symbol: "SOL", Decimals: 9, Native: true},
		Reference: reference,
		OrderID:   "ORD-3",
		Blockhash: blockhash,
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(tx.Signatures) != int(tx.Message.Header.NumRequiredSignatures) {
		t.Errorf("signature slots = %d, want %d", len(tx.Signatures), tx.Message.Header.NumRequiredSignatures)
	}

	b64, err := EncodeBase64Tx(tx)
	if err != nil {
		t.Fatal(err)
	}
	back, err := DecodeBase64Tx(b64)
	if err != nil {
		t.Fatal(err)
	}
	if back.Message.RecentBlockhash != tx.Message.RecentBlockhash {
		t.Error("blockhash lost in serialization round trip")
	}

	if _, err := EncodeBase58Tx(tx); err != nil {
		t.Fatal(err)
	}
}

func TestBuildRejects(t *testing.T) {
	payer, recipient, reference, blockhash := txContext(t)
	amount, _ := decimal.NewFromString("1")
	zero, _ := decimal.NewFromString("0")

	req := TransferRequest{
		Payer:     "not-an-address",
		Recipient: recipient,
		Amount:    amount,
		Asset:     Asset{Symbol: "SOL", Decimals: 9, Native: true},
		Reference: reference,
		OrderID:   "x",
		Blockhash: blockhash,
	}
	if _, err := BuildTransferTx(req); !errors.Is(err, chain.ErrBadAddress) {
		t.Errorf("err = %v, want ErrBadAddress", err)
	}

	req.Payer = payer
	req.Amount = zero
	if _, err := BuildTransferTx(req); !errors.Is(err, ErrBadAmount) {
		t.Errorf("err = %v, want ErrBadAmount", err)
	}
}
