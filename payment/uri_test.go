package payment

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestURIRoundTrip(t *testing.T) {
	amount, _ := decimal.NewFromString("12.5")
	in := PaymentURI{
		Recipient: "8FE27ioQh3T7o22QsYVT5Re8NnHFqmFNbdqwiF3ywuZQ",
		Amount:    amount,
		SPLToken:  usdtMint,
		Reference: "9aE476sH92Vz7DMPyq5WLcKBzcDGnkNea9HtDYPd2kTc",
		Label:     "Example Shop",
		Message:   "thanks for your order",
		Memo:      "ORD-1",
	}

	encoded := in.Encode()
	if !strings.HasPrefix(encoded, "solana:"+in.Recipient+"?") {
		t.Fatalf("unexpected prefix: %s", encoded)
	}

	out, err := ParseURI(encoded)
	if err != nil {
		t.Fatal(err)
	}
	if out.Recipient != in.Recipient ||
		!out.Amount.Equal(in.Amount) ||
		out.SPLToken != in.SPLToken ||
		out.Reference != in.Reference ||
		out.Label != in.Label ||
		out.Message != in.Message ||
		out.Memo != in.Memo {
		t.Errorf("round trip mismatch:\n in: %+v\nout: %+v", in, out)
	}
}

func TestURINativeOmitsToken(t *testing.T) {
	amount, _ := decimal.NewFromString("0.5")
	encoded := PaymentURI{
		Recipient: "8FE27ioQh3T7o22QsYVT5Re8NnHFqmFNbdqwiF3ywuZQ",
		Amount:    amount,
	}.Encode()

	if strings.Contains(encoded, "spl-token") {
		t.Errorf("native payment link must not carry spl-token: %s", encoded)
	}
}

func TestURIEncodesSpecials(t *testing.T) {
	amount, _ := decimal.NewFromString("1")
	encoded := PaymentURI{
		Recipient: "8FE27ioQh3T7o22QsYVT5Re8NnHFqmFNbdqwiF3ywuZQ",
		Amount:    amount,
		Message:   "coffee & cake",
	}.Encode()

	if strings.Contains(encoded, "coffee & cake") {
		t.Errorf("message not URL-encoded: %s", encoded)
	}
	out, err := ParseURI(encoded)
	if err != nil {
		t.Fatal(err)
	}
	if out.Message != "coffee & cake" {
		t.Errorf("message = %q", out.Message)
	}
}

func TestParseURIRejects(t *testing.T) {
	if _, err := ParseURI("bitcoin:abc?amount=1"); !errors.Is(err, ErrBadURI) {
		t.Errorf("err = %v, want ErrBadURI", err)
	}
	if _, err := ParseURI("solana:?amount=1"); !errors.Is(err, ErrBadURI) {
		t.Errorf("err = %v, want ErrBadURI", err)
	}
	if _, err := ParseURI("solana:abc?amount=twelve"); !errors.Is(err, ErrBadURI) {
		t.Errorf("err = %v, want ErrBadURI", err)
	}
}
