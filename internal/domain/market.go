package domain

import "github.com/shopspring/decimal"

// MarketQuote is the USD spot price and circulating supply of a reference asset.
type MarketQuote struct {
	Symbol            string
	PriceUSD          decimal.Decimal
	CirculatingSupply decimal.Decimal
}

// MarketCap returns price multiplied by circulating supply.
func (q MarketQuote) MarketCap() decimal.Decimal {
	return q.PriceUSD.Mul(q.CirculatingSupply)
}

// MarketQuotes is a symbol keyed set of quotes fetched in one provider call.
type MarketQuotes map[string]MarketQuote

// Price returns the USD price for symbol.
func (m MarketQuotes) Price(symbol string) (decimal.Decimal, bool) {
	q, ok := m[symbol]
	if !ok {
		return decimal.Zero, false
	}
	return q.PriceUSD, true
}
