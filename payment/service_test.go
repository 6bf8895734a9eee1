package payment

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"

	"solpay/chain"
	"solpay/config"
	"solpay/logger"
)

func testService(store *memStore, cl chain.Client) *Service {
	assets := NewAssetTable([]config.AssetConfig{
		{Symbol: "SOL", Decimals: 9, Native: true},
		{Symbol: "USDT", Mint: usdtMint, Decimals: 6},
	})
	return NewService(assets, 100, store, map[string]chain.Client{ChainSolana: cl}, logger.NoopLogger{})
}

func TestCreateIntent(t *testing.T) {
	store := newMemStore()
	svc := testService(store, &scriptedChain{})
	recipient := solana.NewWallet().PublicKey().String()

	checkout, err := svc.CreateIntent(context.Background(), &Intent{
		Recipient: recipient,
		Amount:    "12.5",
		Asset:     "USDT",
		OrderID:   "ORD-1",
		Label:     "Example Shop",
	})
	if err != nil {
		t.Fatal(err)
	}

	rec := checkout.Record
	if rec.MPID == "" || rec.Reference == "" {
		t.Fatal("mpid and reference must be assigned at creation")
	}
	if rec.Status != StatusPending {
		t.Errorf("status = %s, want PENDING", rec.Status)
	}
	if rec.Amount != "12.5" || rec.Asset != "USDT" {
		t.Errorf("amount/asset = %s/%s", rec.Amount, rec.Asset)
	}

	if !strings.Contains(checkout.URI, rec.Reference) {
		t.Error("payment link must carry the reference key")
	}
	parsed, err := ParseURI(checkout.URI)
	if err != nil {
		t.Fatal(err)
	}
	if parsed.Recipient != recipient || parsed.Memo != "ORD-1" || parsed.SPLToken != usdtMint {
		t.Errorf("parsed link mismatch: %+v", parsed)
	}

	// the audit snapshot must round-trip back to the intent
	var snap Intent
	if err := json.Unmarshal(rec.Raw, &snap); err != nil {
		t.Fatal(err)
	}
	if snap.OrderID != "ORD-1" || snap.Amount != "12.5" {
		t.Errorf("snapshot mismatch: %+v", snap)
	}

	if _, err := store.PaymentByReference(context.Background(), rec.Reference); err != nil {
		t.Error("record not findable by reference")
	}
}

func TestCreateIntentRejects(t *testing.T) {
	svc := testService(newMemStore(), &scriptedChain{})
	recipient := solana.NewWallet().PublicKey().String()
	ctx := context.Background()

	cases := []struct {
		name   string
		intent Intent
		want   error
	}{
		{"unknown asset", Intent{Recipient: recipient, Amount: "1", Asset: "DOGE", OrderID: "o"}, ErrUnknownAsset},
		{"zero amount", Intent{Recipient: recipient, Amount: "0", Asset: "SOL", OrderID: "o"}, ErrBadAmount},
		{"dust amount", Intent{Recipient: recipient, Amount: "0.0000001", Asset: "USDT", OrderID: "o"}, ErrBadAmount},
		{"evm stub", Intent{Recipient: recipient, Amount: "1", Asset: "SOL", OrderID: "o", Chain: "evm"}, chain.ErrUnsupportedChain},
	}
	for _, tc := range cases {
		if _, err := svc.CreateIntent(ctx, &tc.intent); !errors.Is(err, tc.want) {
			t.Errorf("%s: err = %v, want %v", tc.name, err, tc.want)
		}
	}

	long := strings.Repeat("x", 101)
	if _, err := svc.CreateIntent(ctx, &Intent{Recipient: recipient, Amount: "1", Asset: "SOL", OrderID: long}); err == nil {
		t.Error("oversized order id accepted")
	}
}

func TestRecordTransactionIdempotent(t *testing.T) {
	store := newMemStore()
	rec := pendingRecord(store)
	svc := testService(store, &scriptedChain{})
	ctx := context.Background()

	if err := svc.RecordTransaction(ctx, rec.MPID, "sig-1"); err != nil {
		t.Fatal(err)
	}
	if err := svc.RecordTransaction(ctx, rec.MPID, "sig-1"); err != nil {
		t.Fatal(err)
	}
	if err := svc.RecordTransaction(ctx, rec.MPID, "sig-2"); err != nil {
		t.Fatal(err)
	}
	if rec.TxID != "sig-1" {
		t.Errorf("tx id = %q, the first write must win", rec.TxID)
	}

	if err := svc.RecordTransaction(ctx, "nope", "sig"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUnsignedTxUsesFreshBlockhash(t *testing.T) {
	store := newMemStore()
	svc := testService(store, &scriptedChain{})
	recipient := solana.NewWallet().PublicKey().String()
	payer := solana.NewWallet().PublicKey().String()

	checkout, err := svc.CreateIntent(context.Background(), &Intent{
		Recipient: recipient,
		Amount:    "0.5",
		Asset:     "SOL",
		OrderID:   "ORD-9",
	})
	if err != nil {
		t.Fatal(err)
	}

	tx, err := svc.UnsignedTx(context.Background(), checkout.Record, payer)
	if err != nil {
		t.Fatal(err)
	}
	if tx.Message.AccountKeys[0].String() != payer {
		t.Errorf("fee payer = %s, want %s", tx.Message.AccountKeys[0], payer)
	}
	if tx.Message.RecentBlockhash.IsZero() {
		t.Error("blockhash not set")
	}
}
