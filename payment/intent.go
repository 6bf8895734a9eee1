package payment

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

var ErrMemoTooLong = errors.New("order id exceeds memo size limit")

// Intent is the merchant-submitted payment request. It is validated once,
// snapshotted into the PaymentRecord as an opaque blob, and never mutated.
type Intent struct {
	Recipient string `json:"recipient" validate:"required"`
	Amount    string `json:"amount" validate:"required"`
	Asset     string `json:"asset" validate:"required"`
	OrderID   string `json:"orderId" validate:"required,max=100"`
	Message   string `json:"message" validate:"max=40"`
	Label     string `json:"label" validate:"max=100"`
	ReturnURL string `json:"returnUrl" validate:"omitempty,url"`
	Chain     string `json:"chain" validate:"omitempty,oneof=solana evm"`
}

// Validate rejects a bad intent before anything is built or persisted.
func (i *Intent) Validate(assets AssetTable, memoMaxLen int) error {
	if err := validate.Struct(i); err != nil {
		return fmt.Errorf("invalid intent: %w", err)
	}
	if _, err := assets.Lookup(i.Asset); err != nil {
		return err
	}
	if _, err := ParseAmount(i.Amount); err != nil {
		return err
	}
	if len(i.OrderID) > memoMaxLen {
		return fmt.Errorf("%w: %d > %d bytes", ErrMemoTooLong, len(i.OrderID), memoMaxLen)
	}
	return nil
}
