package payment

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

const uriScheme = "solana:"

var ErrBadURI = errors.New("malformed payment uri")

// PaymentURI carries everything a wallet needs to build the transfer on its
// own. The encoded string is the canonical artifact; the QR code just renders it.
type PaymentURI struct {
	Recipient string
	Amount    decimal.Decimal
	SPLToken  string // mint, empty for the native asset
	Reference string
	Label     string
	Message   string
	Memo      string
}

// Encode produces the wallet-consumable payment link. All query parameters
// are URL-encoded.
func (p PaymentURI) Encode() string {
	var b strings.Builder
	b.WriteString(uriScheme)
	b.WriteString(p.Recipient)

	q := url.Values{}
	q.Set("amount", p.Amount.String())
	if p.SPLToken != "" {
		q.Set("spl-token", p.SPLToken)
	}
	if p.Reference != "" {
		q.Set("reference", p.Reference)
	}
	if p.Label != "" {
		q.Set("label", p.Label)
	}
	if p.Message != "" {
		q.Set("message", p.Message)
	}
	if p.Memo != "" {
		q.Set("memo", p.Memo)
	}

	b.WriteString("?")
	b.WriteString(q.Encode())
	return b.String()
}

// ParseURI is the inverse of Encode. Round-tripping is lossless for
// ASCII-safe fields.
func ParseURI(s string) (PaymentURI, error) {
	if !strings.HasPrefix(s, uriScheme) {
		return PaymentURI{}, fmt.Errorf("%w: missing %q prefix", ErrBadURI, uriScheme)
	}
	rest := strings.TrimPrefix(s, uriScheme)

	recipient, query, _ := strings.Cut(rest, "?")
	if recipient == "" {
		return PaymentURI{}, fmt.Errorf("%w: empty recipient", ErrBadURI)
	}

	q, err := url.ParseQuery(query)
	if err != nil {
		return PaymentURI{}, fmt.Errorf("%w: %v", ErrBadURI, err)
	}

	p := PaymentURI{
		Recipient: recipient,
		SPLToken:  q.Get("spl-token"),
		Reference: q.Get("reference"),
		Label:     q.Get("label"),
		Message:   q.Get("message"),
		Memo:      q.Get("memo"),
	}
	if raw := q.Get("amount"); raw != "" {
		p.Amount, err = decimal.NewFromString(raw)
		if err != nil {
			return PaymentURI{}, fmt.Errorf("%w: amount: %v", ErrBadURI, err)
		}
	}
	return p, nil
}
