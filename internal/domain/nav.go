package domain

import "github.com/shopspring/decimal"

// NavSnapshot is the fair USD value of one index token at a point in time.
type NavSnapshot struct {
	valueUSD  decimal.Decimal
	breakdown map[string]decimal.Decimal
}

// NewNavSnapshot copies breakdown so the snapshot is not affected by later writes to it.
func NewNavSnapshot(value decimal.Decimal, breakdown map[string]decimal.Decimal) NavSnapshot {
	cp := make(map[string]decimal.Decimal, len(breakdown))
	for k, v := range breakdown {
		cp[k] = v
	}
	return NavSnapshot{valueUSD: value, breakdown: cp}
}

// ValueUSD returns the total NAV.
func (n NavSnapshot) ValueUSD() decimal.Decimal {
	return n.valueUSD
}

// Contribution returns the USD value contributed by symbol.
func (n NavSnapshot) Contribution(symbol string) (decimal.Decimal, bool) {
	v, ok := n.breakdown[symbol]
	return v, ok
}

// Breakdown returns a copy of the per-asset values.
func (n NavSnapshot) Breakdown() map[string]decimal.Decimal {
	cp := make(map[string]decimal.Decimal, len(n.breakdown))
	for k, v := range n.breakdown {
		cp[k] = v
	}
	return cp
}
