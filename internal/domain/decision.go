package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Direction is the side of a trade relative to the index token.
type Direction int

const (
	// DirectionBuy spends native tokens to acquire index tokens.
	DirectionBuy Direction = iota
	// DirectionSell spends index tokens to acquire native tokens.
	DirectionSell
)

func (d Direction) String() string {
	switch d {
	case DirectionBuy:
		return "buy"
	case DirectionSell:
		return "sell"
	default:
		return "unknown"
	}
}

// DecisionKind is the outcome of one evaluation.
type DecisionKind int

const (
	DecisionNoTrade DecisionKind = iota
	DecisionBuy
	DecisionSell
)

func (k DecisionKind) String() string {
	switch k {
	case DecisionNoTrade:
		return "no_trade"
	case DecisionBuy:
		return "buy"
	case DecisionSell:
		return "sell"
	default:
		return "unknown"
	}
}

// reasons attached to a no-trade decision
const (
	ReasonInsufficientInventory = "insufficient inventory"
	ReasonImpactTooHigh         = "impact too high"
	ReasonNoOpportunity         = "no opportunity"
	ReasonInvalidNav            = "invalid nav"
)

// TradeDecision is a tagged result: NoTrade carries Reason, Buy and Sell carry Amount
// expressed in whole index tokens.
type TradeDecision struct {
	Kind   DecisionKind
	Reason string
	Amount decimal.Decimal
}

// NoTrade builds a decision not to trade.
func NoTrade(reason string) TradeDecision {
	return TradeDecision{Kind: DecisionNoTrade, Reason: reason}
}

// Buy builds a decision to buy amount index tokens.
func Buy(amount decimal.Decimal) TradeDecision {
	return TradeDecision{Kind: DecisionBuy, Amount: amount}
}

// Sell builds a decision to sell amount index tokens.
func Sell(amount decimal.Decimal) TradeDecision {
	return TradeDecision{Kind: DecisionSell, Amount: amount}
}

// IsTrade reports whether the decision requires execution.
func (d TradeDecision) IsTrade() bool {
	return d.Kind == DecisionBuy || d.Kind == DecisionSell
}

// Direction returns the trade side. ok is false for NoTrade.
func (d TradeDecision) Direction() (dir Direction, ok bool) {
	switch d.Kind {
	case DecisionBuy:
		return DirectionBuy, true
	case DecisionSell:
		return DirectionSell, true
	default:
		return 0, false
	}
}

func (d TradeDecision) String() string {
	if d.IsTrade() {
		return fmt.Sprintf("%s(%s)", d.Kind, d.Amount.String())
	}
	return fmt.Sprintf("%s(%s)", d.Kind, d.Reason)
}
