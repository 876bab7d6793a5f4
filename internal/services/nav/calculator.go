// Package nav computes the fair USD value of one index token from its basket.
package nav

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/navarb/internal/domain"
)

// Calculator values holdings with a fixed rule table.
type Calculator struct {
	rules domain.ValuationRules
}

// NewCalculator creates a Calculator over rules. The table is not copied and must not be mutated.
func NewCalculator(rules domain.ValuationRules) *Calculator {
	return &Calculator{rules: rules}
}

// Rules returns the rule table.
func (c *Calculator) Rules() domain.ValuationRules {
	return c.rules
}

// ComputeNav values holdings with the calculator's rules.
func (c *Calculator) ComputeNav(ctx context.Context, holdings []domain.AssetHolding, quotes domain.MarketQuotes) (domain.NavSnapshot, error) {
	return ComputeNav(ctx, holdings, c.rules, quotes)
}

// ComputeNav sums the USD value of every holding. Decimal addition is exact, so the
// result does not depend on holding order. Derived rates are queried once per symbol.
func ComputeNav(ctx context.Context, holdings []domain.AssetHolding, rules domain.ValuationRules, quotes domain.MarketQuotes) (domain.NavSnapshot, error) {
	total := decimal.Zero
	breakdown := make(map[string]decimal.Decimal, len(holdings))
	rates := make(map[string]decimal.Decimal)

	for _, h := range holdings {
		rule, ok := rules[h.Symbol]
		if !ok {
			return domain.NavSnapshot{}, domain.Errorf(domain.KindValuation, "nav.compute", "no valuation rule for %s", h.Symbol)
		}

		price, ok := quotes.Price(rule.Reference)
		if !ok {
			return domain.NavSnapshot{}, domain.Errorf(domain.KindValuation, "nav.compute", "no quote for reference %s of %s", rule.Reference, h.Symbol)
		}

		value := h.Quantity().Mul(price)

		switch rule.Kind {
		case domain.ValuationDirectPrice:
		case domain.ValuationDerivedRate:
			rate, seen := rates[h.Symbol]
			if !seen {
				var err error
				rate, err = fetchRate(ctx, h.Symbol, rule)
				if err != nil {
					return domain.NavSnapshot{}, err
				}
				rates[h.Symbol] = rate
			}
			value = value.Mul(rate)
		default:
			return domain.NavSnapshot{}, domain.Errorf(domain.KindValuation, "nav.compute", "unknown valuation kind %d for %s", rule.Kind, h.Symbol)
		}

		breakdown[h.Symbol] = breakdown[h.Symbol].Add(value)
		total = total.Add(value)
	}

	return domain.NewNavSnapshot(total, breakdown), nil
}

func fetchRate(ctx context.Context, symbol string, rule domain.ValuationRule) (decimal.Decimal, error) {
	if rule.Rate == nil {
		return decimal.Zero, domain.Errorf(domain.KindValuation, "nav.rate", "no rate source for %s", symbol)
	}

	rate, err := rule.Rate.Rate(ctx)
	if err != nil {
		if domain.KindOf(err) != domain.KindUnknown {
			return decimal.Zero, errors.Wrapf(err, "rate for %s", symbol)
		}
		return decimal.Zero, domain.NewError(domain.KindValuation, "nav.rate", errors.Wrapf(err, "rate for %s", symbol))
	}
	if rate.IsNegative() {
		return decimal.Zero, domain.Errorf(domain.KindValuation, "nav.rate", "negative rate %s for %s", rate.String(), symbol)
	}

	return rate, nil
}
