package payment

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"solpay/config"
)

var (
	ErrUnknownAsset = errors.New("unsupported asset")
	ErrBadAmount    = errors.New("amount must be positive")
)

// Asset is a recognized settlement asset: the chain's native token or an SPL
// token identified by its mint.
type Asset struct {
	Symbol   string
	Mint     string // empty for the native asset
	Decimals int32
	Native   bool
}

type AssetTable map[string]Asset

func NewAssetTable(cfgs []config.AssetConfig) AssetTable {
	t := make(AssetTable, len(cfgs))
	for _, a := range cfgs {
		t[a.Symbol] = Asset{
			Symbol:   a.Symbol,
			Mint:     a.Mint,
			Decimals: int32(a.Decimals),
			Native:   a.Native,
		}
	}
	return t
}

func (t AssetTable) Lookup(symbol string) (Asset, error) {
	a, ok := t[symbol]
	if !ok {
		return Asset{}, fmt.Errorf("%w: %q", ErrUnknownAsset, symbol)
	}
	return a, nil
}

// BaseUnits converts a decimal amount to the integer smallest-unit amount for
// this asset. Amounts that round to zero or below are rejected.
func (a Asset) BaseUnits(amount decimal.Decimal) (uint64, error) {
	units := amount.Shift(a.Decimals).Round(0)
	if units.Sign() <= 0 {
		return 0, fmt.Errorf("%w: %s %s is below one base unit", ErrBadAmount, amount, a.Symbol)
	}
	if !units.IsInteger() || units.BigInt().BitLen() > 63 {
		return 0, fmt.Errorf("%w: %s %s does not fit a transfer amount", ErrBadAmount, amount, a.Symbol)
	}
	return units.BigInt().Uint64(), nil
}

// ParseAmount validates the wire representation of an amount.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrBadAmount, err)
	}
	if d.Sign() <= 0 {
		return decimal.Zero, ErrBadAmount
	}
	return d, nil
}
