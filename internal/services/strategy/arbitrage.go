package strategy

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vadiminshakov/navarb/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Inputs is everything the decision depends on.
type Inputs struct {
	NavUSD         decimal.Decimal
	IndexPriceUSD  decimal.Decimal
	PriceImpactPct decimal.Decimal
	GasCostUSD     decimal.Decimal
	InventoryOK    bool
	TradeAmount    decimal.Decimal
}

// PremiumPct returns (indexPrice - nav) / nav * 100. nav must be positive.
func PremiumPct(indexPriceUSD, navUSD decimal.Decimal) decimal.Decimal {
	return indexPriceUSD.Sub(navUSD).Div(navUSD).Mul(hundred)
}

// DirectionFor picks the side whose inventory must be checked: a premium means sell.
func DirectionFor(premiumPct decimal.Decimal) domain.Direction {
	if premiumPct.IsPositive() {
		return domain.DirectionSell
	}
	return domain.DirectionBuy
}

// Decide applies the ordered rules; the first match wins.
//
//	inventory fails                  -> NoTrade(insufficient inventory)
//	|premium| < price impact         -> NoTrade(impact too high)
//	index price < nav - gas          -> Buy
//	index price > nav + gas          -> Sell
//	otherwise                        -> NoTrade(no opportunity)
//
// A non-positive NAV has no meaningful premium and never trades.
func Decide(in Inputs) domain.TradeDecision {
	if !in.NavUSD.IsPositive() {
		return domain.NoTrade(domain.ReasonInvalidNav)
	}

	premium := PremiumPct(in.IndexPriceUSD, in.NavUSD)

	switch {
	case !in.InventoryOK:
		return domain.NoTrade(domain.ReasonInsufficientInventory)
	case premium.Abs().LessThan(in.PriceImpactPct):
		return domain.NoTrade(domain.ReasonImpactTooHigh)
	case in.IndexPriceUSD.LessThan(in.NavUSD.Sub(in.GasCostUSD)):
		return domain.Buy(in.TradeAmount)
	case in.IndexPriceUSD.GreaterThan(in.NavUSD.Add(in.GasCostUSD)):
		return domain.Sell(in.TradeAmount)
	default:
		return domain.NoTrade(domain.ReasonNoOpportunity)
	}
}

// inventoryChecker is satisfied by *inventory.Guard.
type inventoryChecker interface {
	CanTrade(direction domain.Direction, nav, ethUSD decimal.Decimal, wallet domain.WalletState) bool
}

// Evaluation is the derived view of one cycle, kept for logging and metrics.
type Evaluation struct {
	NavUSD         decimal.Decimal
	ETHUSD         decimal.Decimal
	IndexPriceUSD  decimal.Decimal
	PremiumPct     decimal.Decimal
	PriceImpactPct decimal.Decimal
	GasCostUSD     decimal.Decimal
	Direction      domain.Direction
	InventoryOK    bool
	Decision       domain.TradeDecision
}

// Fields renders the evaluation as zap fields.
func (e Evaluation) Fields() []zap.Field {
	return []zap.Field{
		zap.String("nav_usd", e.NavUSD.String()),
		zap.String("eth_usd", e.ETHUSD.String()),
		zap.String("index_price_usd", e.IndexPriceUSD.String()),
		zap.String("premium_pct", e.PremiumPct.StringFixed(4)),
		zap.String("price_impact_pct", e.PriceImpactPct.String()),
		zap.String("gas_cost_usd", e.GasCostUSD.StringFixed(4)),
		zap.String("inventory_direction", e.Direction.String()),
		zap.Bool("inventory_ok", e.InventoryOK),
		zap.String("decision", e.Decision.String()),
	}
}

// ArbitrageStrategy turns a NAV, an ETH price and an indicative quote into a decision.
type ArbitrageStrategy struct {
	inventory   inventoryChecker
	tradeAmount decimal.Decimal
}

// NewArbitrageStrategy trades a fixed tradeAmount of index tokens per cycle.
func NewArbitrageStrategy(inventory inventoryChecker, tradeAmount decimal.Decimal) *ArbitrageStrategy {
	return &ArbitrageStrategy{inventory: inventory, tradeAmount: tradeAmount}
}

// TradeAmount returns the fixed per-cycle size in whole index tokens.
func (s *ArbitrageStrategy) TradeAmount() decimal.Decimal {
	return s.tradeAmount
}

// Evaluate prices the index from quote (ETH per index token), estimates gas in USD,
// runs the inventory check for the side the premium points to and decides.
func (s *ArbitrageStrategy) Evaluate(nav domain.NavSnapshot, ethUSD decimal.Decimal, quote domain.SwapQuote, wallet domain.WalletState) Evaluation {
	e := Evaluation{
		NavUSD:         nav.ValueUSD(),
		ETHUSD:         ethUSD,
		IndexPriceUSD:  quote.Price.Mul(ethUSD),
		PriceImpactPct: quote.EstimatedPriceImpactPct,
		GasCostUSD:     domain.ToDecimal(quote.GasCostWei(), domain.NativeDecimals).Mul(ethUSD),
	}

	if !e.NavUSD.IsPositive() {
		e.Decision = domain.NoTrade(domain.ReasonInvalidNav)
		return e
	}

	e.PremiumPct = PremiumPct(e.IndexPriceUSD, e.NavUSD)
	e.Direction = DirectionFor(e.PremiumPct)
	e.InventoryOK = s.inventory.CanTrade(e.Direction, e.NavUSD, ethUSD, wallet)

	e.Decision = Decide(Inputs{
		NavUSD:         e.NavUSD,
		IndexPriceUSD:  e.IndexPriceUSD,
		PriceImpactPct: e.PriceImpactPct,
		GasCostUSD:     e.GasCostUSD,
		InventoryOK:    e.InventoryOK,
		TradeAmount:    s.tradeAmount,
	})

	return e
}
