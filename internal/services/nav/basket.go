package nav

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/vadiminshakov/navarb/internal/domain"
	"github.com/vadiminshakov/navarb/internal/services/chain"
)

// ContractCaller executes a read-only contract call.
type ContractCaller interface {
	Call(ctx context.Context, contract common.Address, contractABI abi.ABI, method string, args ...any) ([]any, error)
}

// Constituent is one configured basket asset.
type Constituent struct {
	Symbol string
	Token  common.Address
}

// BasketReader reads the per-index-token units of each constituent from the index contract.
type BasketReader struct {
	caller       ContractCaller
	index        common.Address
	constituents []Constituent
	decimals     domain.DecimalsTable
}

// NewBasketReader fails if any constituent has no registered decimals.
func NewBasketReader(caller ContractCaller, index common.Address, constituents []Constituent, decimals domain.DecimalsTable) (*BasketReader, error) {
	symbols := make([]string, 0, len(constituents))
	for _, c := range constituents {
		symbols = append(symbols, c.Symbol)
	}
	if err := decimals.Require(symbols...); err != nil {
		return nil, errors.Wrap(err, "basket")
	}

	cp := make([]Constituent, len(constituents))
	copy(cp, constituents)

	return &BasketReader{
		caller:       caller,
		index:        index,
		constituents: cp,
		decimals:     decimals,
	}, nil
}

// Holdings returns one holding per constituent backing a single index token.
func (r *BasketReader) Holdings(ctx context.Context) ([]domain.AssetHolding, error) {
	holdings := make([]domain.AssetHolding, 0, len(r.constituents))

	for _, c := range r.constituents {
		out, err := r.caller.Call(ctx, r.index, chain.IndexTokenABI, "getDefaultPositionRealUnit", c.Token)
		if err != nil {
			return nil, errors.Wrapf(err, "units of %s", c.Symbol)
		}

		if len(out) == 0 {
			return nil, domain.Errorf(domain.KindChainRead, "nav.basket", "empty units output for %s", c.Symbol)
		}
		units, ok := out[0].(*big.Int)
		if !ok {
			return nil, domain.Errorf(domain.KindChainRead, "nav.basket", "unexpected units type %T for %s", out[0], c.Symbol)
		}
		if units.Sign() < 0 {
			return nil, domain.Errorf(domain.KindChainRead, "nav.basket", "negative units %s for %s", units.String(), c.Symbol)
		}

		dec, _ := r.decimals.Decimals(c.Symbol)
		holdings = append(holdings, domain.AssetHolding{
			Symbol:      c.Symbol,
			RawQuantity: units,
			Decimals:    dec,
		})
	}

	return holdings, nil
}

// Verify checks the configured constituents against the index token's component list.
// A component missing from the config would be left out of the NAV, so both directions are errors.
func (r *BasketReader) Verify(ctx context.Context) error {
	out, err := r.caller.Call(ctx, r.index, chain.IndexTokenABI, "getComponents")
	if err != nil {
		return errors.Wrap(err, "index components")
	}
	if len(out) == 0 {
		return domain.Errorf(domain.KindChainRead, "nav.basket", "empty components output")
	}
	components, ok := out[0].([]common.Address)
	if !ok {
		return domain.Errorf(domain.KindChainRead, "nav.basket", "unexpected components type %T", out[0])
	}

	onChain := make(map[common.Address]struct{}, len(components))
	for _, a := range components {
		onChain[a] = struct{}{}
	}
	configured := make(map[common.Address]struct{}, len(r.constituents))

	var problems []string
	for _, c := range r.constituents {
		configured[c.Token] = struct{}{}
		if _, ok := onChain[c.Token]; !ok {
			problems = append(problems, c.Symbol+" is not a component")
		}
	}
	for _, a := range components {
		if _, ok := configured[a]; !ok {
			problems = append(problems, a.Hex()+" is not configured")
		}
	}
	if len(problems) > 0 {
		return errors.Errorf("basket does not match index token %s: %s", r.index.Hex(), strings.Join(problems, "; "))
	}

	return nil
}
