package domain

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
)

// RateFetcher returns the number of reference units one unit of a wrapped asset is worth.
type RateFetcher interface {
	Rate(ctx context.Context) (decimal.Decimal, error)
}

// RateFetcherFunc adapts a plain function to RateFetcher.
type RateFetcherFunc func(ctx context.Context) (decimal.Decimal, error)

// Rate calls f.
func (f RateFetcherFunc) Rate(ctx context.Context) (decimal.Decimal, error) {
	return f(ctx)
}

// ValuationKind selects how a holding is priced.
type ValuationKind int

const (
	// ValuationDirectPrice prices a holding with its reference asset's USD price.
	ValuationDirectPrice ValuationKind = iota
	// ValuationDerivedRate additionally multiplies by an exchange rate read on-chain.
	ValuationDerivedRate
)

func (k ValuationKind) String() string {
	switch k {
	case ValuationDirectPrice:
		return "direct"
	case ValuationDerivedRate:
		return "derived"
	default:
		return "unknown"
	}
}

// ValuationRule describes how one basket asset is converted into USD.
type ValuationRule struct {
	Kind      ValuationKind
	Reference string
	Rate      RateFetcher
}

// DirectPrice values a holding at the USD price of ref.
func DirectPrice(ref string) ValuationRule {
	return ValuationRule{Kind: ValuationDirectPrice, Reference: ref}
}

// DerivedRate values a holding at the USD price of ref times the rate reported by f.
func DerivedRate(ref string, f RateFetcher) ValuationRule {
	return ValuationRule{Kind: ValuationDerivedRate, Reference: ref, Rate: f}
}

// ValuationRules maps a basket symbol to its rule. Built once at startup.
type ValuationRules map[string]ValuationRule

// References returns the sorted, deduplicated set of reference symbols the rules depend on.
func (r ValuationRules) References() []string {
	seen := make(map[string]struct{}, len(r))
	out := make([]string, 0, len(r))
	for _, rule := range r {
		if _, ok := seen[rule.Reference]; ok {
			continue
		}
		seen[rule.Reference] = struct{}{}
		out = append(out, rule.Reference)
	}
	sort.Strings(out)
	return out
}
