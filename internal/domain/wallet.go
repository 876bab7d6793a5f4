package domain

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// NativeDecimals is the precision of the chain's native token.
const NativeDecimals = 18

// WalletState holds balances read from the chain during the current cycle.
type WalletState struct {
	ETHBalanceWei        *big.Int
	IndexTokenBalanceRaw *big.Int
}

// ETHBalance returns the native balance in whole units.
func (w WalletState) ETHBalance() decimal.Decimal {
	return ToDecimal(w.ETHBalanceWei, NativeDecimals)
}

// IndexBalance returns the index token balance in whole units.
func (w WalletState) IndexBalance(decimals uint8) decimal.Decimal {
	return ToDecimal(w.IndexTokenBalanceRaw, decimals)
}
