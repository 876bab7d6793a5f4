package domain

import (
	"math/big"
	"sort"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// AssetHolding is a raw on-chain quantity of a single basket asset.
type AssetHolding struct {
	Symbol      string
	RawQuantity *big.Int
	Decimals    uint8
}

// Quantity returns the holding expressed in whole units.
func (h AssetHolding) Quantity() decimal.Decimal {
	return ToDecimal(h.RawQuantity, h.Decimals)
}

// ToDecimal converts a raw integer amount into whole units: raw / 10^decimals.
// A nil amount converts to zero.
func ToDecimal(raw *big.Int, decimals uint8) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(raw, -int32(decimals))
}

// FromDecimal converts whole units into a raw integer amount.
// Digits beyond the asset precision are truncated.
func FromDecimal(amount decimal.Decimal, decimals uint8) *big.Int {
	return amount.Shift(int32(decimals)).Truncate(0).BigInt()
}

// DecimalsTable maps an asset symbol to its on-chain precision.
type DecimalsTable map[string]uint8

// Decimals returns the precision registered for symbol.
func (t DecimalsTable) Decimals(symbol string) (uint8, bool) {
	d, ok := t[symbol]
	return d, ok
}

// Require reports the first symbol that has no registered precision.
// It is called once at startup so that lookups never fail mid-cycle.
func (t DecimalsTable) Require(symbols ...string) error {
	missing := make([]string, 0)
	for _, s := range symbols {
		if _, ok := t[s]; !ok {
			missing = append(missing, s)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return errors.Errorf("no decimals configured for %v", missing)
}
