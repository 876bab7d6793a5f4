package nav

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadiminshakov/navarb/internal/domain"
)

var wstethAddr = common.HexToAddress("0xc1CBa3fCea344f92D9239c08C0568f6F2F0ee452")

func TestChainRateFetcher_Rate(t *testing.T) {
	raw, _ := new(big.Int).SetString("1180000000000000000", 10)
	caller := &fakeCaller{results: map[string][]any{"stEthPerToken": {raw}}}

	f, err := NewChainRateFetcher(caller, wstethAddr, "stEthPerToken", 18)
	require.NoError(t, err)

	rate, err := f.Rate(context.Background())
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.RequireFromString("1.18")), rate.String())

	require.Len(t, caller.calls, 1)
	assert.Equal(t, wstethAddr, caller.calls[0].contract)
	assert.Empty(t, caller.calls[0].args)
}

func TestChainRateFetcher_Errors(t *testing.T) {
	t.Run("call failure keeps its kind", func(t *testing.T) {
		caller := &fakeCaller{err: domain.Errorf(domain.KindChainRead, "chain.call", "boom")}
		f, err := NewChainRateFetcher(caller, wstethAddr, "stEthPerToken", 18)
		require.NoError(t, err)

		_, err = f.Rate(context.Background())
		assert.True(t, errors.Is(err, domain.ErrChainRead))
	})

	t.Run("empty output", func(t *testing.T) {
		f, err := NewChainRateFetcher(&fakeCaller{results: map[string][]any{}}, wstethAddr, "stEthPerToken", 18)
		require.NoError(t, err)

		_, err = f.Rate(context.Background())
		assert.True(t, errors.Is(err, domain.ErrChainRead))
	})

	t.Run("unexpected type", func(t *testing.T) {
		caller := &fakeCaller{results: map[string][]any{"stEthPerToken": {"1.18"}}}
		f, err := NewChainRateFetcher(caller, wstethAddr, "stEthPerToken", 18)
		require.NoError(t, err)

		_, err = f.Rate(context.Background())
		assert.True(t, errors.Is(err, domain.ErrChainRead))
	})
}
