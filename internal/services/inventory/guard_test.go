package inventory

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadiminshakov/navarb/internal/domain"
)

func tokens(n string) *big.Int {
	return domain.FromDecimal(decimal.RequireFromString(n), 18)
}

func TestGuard_CanTrade(t *testing.T) {
	guard := NewGuard(decimal.NewFromInt(5), 18)
	nav := decimal.NewFromInt(1000)
	ethUSD := decimal.NewFromInt(2500)

	tests := []struct {
		name      string
		direction domain.Direction
		ethUSD    decimal.Decimal
		wallet    domain.WalletState
		want      bool
	}{
		{
			name:      "sell with too few index tokens",
			direction: domain.DirectionSell,
			ethUSD:    ethUSD,
			wallet:    domain.WalletState{ETHBalanceWei: tokens("100"), IndexTokenBalanceRaw: tokens("3")},
			want:      false,
		},
		{
			name:      "sell with exact balance",
			direction: domain.DirectionSell,
			ethUSD:    ethUSD,
			wallet:    domain.WalletState{ETHBalanceWei: tokens("0"), IndexTokenBalanceRaw: tokens("5")},
			want:      true,
		},
		{
			// needs 5*1000/2500 = 2 ETH
			name:      "buy with exactly enough eth",
			direction: domain.DirectionBuy,
			ethUSD:    ethUSD,
			wallet:    domain.WalletState{ETHBalanceWei: tokens("2"), IndexTokenBalanceRaw: tokens("0")},
			want:      true,
		},
		{
			name:      "buy one wei short",
			direction: domain.DirectionBuy,
			ethUSD:    ethUSD,
			wallet:    domain.WalletState{ETHBalanceWei: new(big.Int).Sub(tokens("2"), big.NewInt(1)), IndexTokenBalanceRaw: tokens("50")},
			want:      false,
		},
		{
			name:      "buy with zero eth price",
			direction: domain.DirectionBuy,
			ethUSD:    decimal.Zero,
			wallet:    domain.WalletState{ETHBalanceWei: tokens("1000"), IndexTokenBalanceRaw: tokens("0")},
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, guard.CanTrade(tt.direction, nav, tt.ethUSD, tt.wallet))
		})
	}
}

type fakeBalances struct {
	eth, index *big.Int
	err        error
	calls      int
}

func (f *fakeBalances) GetBalance(context.Context, common.Address) (*big.Int, error) {
	f.calls++
	return f.eth, f.err
}

func (f *fakeBalances) GetTokenBalance(context.Context, common.Address, common.Address) (*big.Int, error) {
	f.calls++
	return f.index, nil
}

func TestWalletReader_ReadsFreshEachCall(t *testing.T) {
	fb := &fakeBalances{eth: big.NewInt(1), index: big.NewInt(2)}
	r := NewWalletReader(fb, common.HexToAddress("0x01"), common.HexToAddress("0x02"))

	w, err := r.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), w.ETHBalanceWei.Int64())
	assert.Equal(t, int64(2), w.IndexTokenBalanceRaw.Int64())

	fb.eth = big.NewInt(9)
	w, err = r.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(9), w.ETHBalanceWei.Int64())
	assert.Equal(t, 4, fb.calls)
}

func TestWalletReader_PropagatesChainRead(t *testing.T) {
	fb := &fakeBalances{err: domain.NewError(domain.KindChainRead, "balance", errors.New("timeout"))}
	_, err := NewWalletReader(fb, common.Address{}, common.Address{}).Read(context.Background())
	require.Error(t, err)
	assert.Equal(t, domain.KindChainRead, domain.KindOf(err))
}
