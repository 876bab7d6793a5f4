package nav

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/navarb/internal/domain"
	"github.com/vadiminshakov/navarb/internal/services/chain"
)

// ChainRateFetcher reads an exchange rate from a no-argument uint256 view,
// e.g. stEthPerToken on wstETH, and scales it by 10^decimals.
type ChainRateFetcher struct {
	caller   ContractCaller
	contract common.Address
	method   string
	abi      abi.ABI
	decimals uint8
}

// NewChainRateFetcher creates a fetcher for contract.method().
func NewChainRateFetcher(caller ContractCaller, contract common.Address, method string, decimals uint8) (*ChainRateFetcher, error) {
	parsed, err := chain.RateViewABI(method)
	if err != nil {
		return nil, errors.Wrapf(err, "rate method %q", method)
	}

	return &ChainRateFetcher{
		caller:   caller,
		contract: contract,
		method:   method,
		abi:      parsed,
		decimals: decimals,
	}, nil
}

// Rate implements domain.RateFetcher.
func (f *ChainRateFetcher) Rate(ctx context.Context) (decimal.Decimal, error) {
	out, err := f.caller.Call(ctx, f.contract, f.abi, f.method)
	if err != nil {
		return decimal.Zero, err
	}

	if len(out) == 0 {
		return decimal.Zero, domain.Errorf(domain.KindChainRead, "nav.rate", "%s returned no values", f.method)
	}
	raw, ok := out[0].(*big.Int)
	if !ok {
		return decimal.Zero, domain.Errorf(domain.KindChainRead, "nav.rate", "unexpected %s type %T", f.method, out[0])
	}

	return domain.ToDecimal(raw, f.decimals), nil
}
