// Package inventory checks that the wallet can settle a trade before it is attempted.
package inventory

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/navarb/internal/domain"
)

// Guard compares wallet balances against the fixed per-cycle trade amount.
type Guard struct {
	tradeAmount   decimal.Decimal
	indexDecimals uint8
}

// NewGuard creates a Guard for tradeAmount whole index tokens.
func NewGuard(tradeAmount decimal.Decimal, indexDecimals uint8) *Guard {
	return &Guard{tradeAmount: tradeAmount, indexDecimals: indexDecimals}
}

// CanTrade reports whether wallet holds enough of the asset that direction sells.
// Selling needs tradeAmount index tokens; buying needs tradeAmount*nav/ethUSD native tokens.
// A non-positive ethUSD never passes.
func (g *Guard) CanTrade(direction domain.Direction, nav, ethUSD decimal.Decimal, wallet domain.WalletState) bool {
	switch direction {
	case domain.DirectionSell:
		return wallet.IndexBalance(g.indexDecimals).GreaterThanOrEqual(g.tradeAmount)
	case domain.DirectionBuy:
		if !ethUSD.IsPositive() {
			return false
		}
		// eth >= amount*nav/ethUSD, multiplied through by ethUSD to stay exact
		return wallet.ETHBalance().Mul(ethUSD).GreaterThanOrEqual(g.tradeAmount.Mul(nav))
	default:
		return false
	}
}

// BalanceReader reads native and token balances.
type BalanceReader interface {
	GetBalance(ctx context.Context, addr common.Address) (*big.Int, error)
	GetTokenBalance(ctx context.Context, token, owner common.Address) (*big.Int, error)
}

// WalletReader builds a WalletState from the chain on every call.
type WalletReader struct {
	reader     BalanceReader
	wallet     common.Address
	indexToken common.Address
}

// NewWalletReader creates a WalletReader for wallet's holdings of indexToken.
func NewWalletReader(reader BalanceReader, wallet, indexToken common.Address) *WalletReader {
	return &WalletReader{reader: reader, wallet: wallet, indexToken: indexToken}
}

// Read returns fresh balances. Nothing is cached between calls.
func (r *WalletReader) Read(ctx context.Context) (domain.WalletState, error) {
	eth, err := r.reader.GetBalance(ctx, r.wallet)
	if err != nil {
		return domain.WalletState{}, errors.Wrap(err, "native balance")
	}

	index, err := r.reader.GetTokenBalance(ctx, r.indexToken, r.wallet)
	if err != nil {
		return domain.WalletState{}, errors.Wrap(err, "index token balance")
	}

	return domain.WalletState{ETHBalanceWei: eth, IndexTokenBalanceRaw: index}, nil
}
