package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// SwapQuote is a DEX aggregator answer for a sell/buy token pair.
// Indicative quotes leave To, Calldata and Value empty.
type SwapQuote struct {
	SellToken               common.Address
	BuyToken                common.Address
	SellAmount              *big.Int
	BuyAmount               *big.Int
	Price                   decimal.Decimal
	EstimatedGas            uint64
	GasPriceWei             *big.Int
	EstimatedPriceImpactPct decimal.Decimal
	To                      common.Address
	Calldata                []byte
	Value                   *big.Int
}

// GasCostWei returns estimatedGas * gasPrice.
func (q SwapQuote) GasCostWei() *big.Int {
	if q.GasPriceWei == nil {
		return new(big.Int)
	}
	return new(big.Int).Mul(new(big.Int).SetUint64(q.EstimatedGas), q.GasPriceWei)
}
