package internal

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vadiminshakov/navarb/internal/domain"
	"github.com/vadiminshakov/navarb/internal/events"
	"github.com/vadiminshakov/navarb/internal/services/notifier"
	"github.com/vadiminshakov/navarb/internal/services/strategy"
)

// Cycle outcomes reported to metrics and subscribers.
const (
	OutcomeNoTrade = "no_trade"
	OutcomeTraded  = "traded"
	OutcomeDryRun  = "dry_run"
	OutcomeFailed  = "failed"
)

type WalletReader interface {
	Read(ctx context.Context) (domain.WalletState, error)
}

type BasketReader interface {
	Holdings(ctx context.Context) ([]domain.AssetHolding, error)
}

type MarketData interface {
	Fetch(ctx context.Context, symbols []string) (domain.MarketQuotes, error)
}

type NavCalculator interface {
	Rules() domain.ValuationRules
	ComputeNav(ctx context.Context, holdings []domain.AssetHolding, quotes domain.MarketQuotes) (domain.NavSnapshot, error)
}

type IndicativeQuoter interface {
	GetIndicativePrice(ctx context.Context, sellToken, buyToken common.Address, sellAmount *big.Int) (domain.SwapQuote, error)
}

type Evaluator interface {
	TradeAmount() decimal.Decimal
	Evaluate(nav domain.NavSnapshot, ethUSD decimal.Decimal, quote domain.SwapQuote, wallet domain.WalletState) strategy.Evaluation
}

type Executor interface {
	Execute(ctx context.Context, decision domain.TradeDecision) (*types.Receipt, error)
}

type metricsRecorder interface {
	RecordCycle(outcome string, took time.Duration)
	RecordError(kind string)
	RecordDecision(decision, reason string)
	RecordTrade(direction, status string)
	RecordValuation(nav, indexPrice, premiumPct decimal.Decimal)
}

type cyclePublisher interface {
	Publish(r events.CycleReport)
}

// BotConfig holds the static parameters of the poll loop.
type BotConfig struct {
	PollInterval  time.Duration
	NativeSymbol  string
	NativeToken   common.Address
	IndexToken    common.Address
	IndexDecimals uint8
	DryRun        bool
	NotifyErrors  bool
}

// Components are the collaborators of one bot, built by the factory.
type Components struct {
	Wallet    WalletReader
	Basket    BasketReader
	Market    MarketData
	Nav       NavCalculator
	Quoter    IndicativeQuoter
	Strategy  Evaluator
	Executor  Executor
	Notifier  notifier.Notifier
	Metrics   metricsRecorder
	Publisher cyclePublisher
}

// TradingBot polls market data, values the basket and trades the premium or discount.
type TradingBot struct {
	cfg    BotConfig
	c      Components
	logger *zap.Logger
}

// NewTradingBot creates a bot. Notifier, Metrics and Publisher are optional.
func NewTradingBot(cfg BotConfig, c Components, logger *zap.Logger) (*TradingBot, error) {
	if cfg.PollInterval <= 0 {
		return nil, errors.New("poll interval must be positive")
	}
	if c.Wallet == nil || c.Basket == nil || c.Market == nil || c.Nav == nil ||
		c.Quoter == nil || c.Strategy == nil || c.Executor == nil {
		return nil, errors.New("trading bot is missing a required component")
	}
	if c.Notifier == nil {
		c.Notifier = notifier.Noop{}
	}
	if c.Metrics == nil {
		c.Metrics = noopMetrics{}
	}
	if c.Publisher == nil {
		c.Publisher = noopPublisher{}
	}

	return &TradingBot{cfg: cfg, c: c, logger: logger}, nil
}

// Run runs one cycle immediately and then one every poll interval until ctx is done.
// A tick that arrives while a cycle is still running is skipped.
func (b *TradingBot) Run(ctx context.Context) error {
	cronLogger := cron.PrintfLogger(zap.NewStdLog(b.logger.Named("cron")))
	c := cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	if _, err := c.AddFunc(fmt.Sprintf("@every %s", b.cfg.PollInterval), func() { b.RunCycle(ctx) }); err != nil {
		return errors.Wrap(err, "failed to schedule poll cycle")
	}

	b.logger.Info("Starting poll loop", zap.Duration("poll_interval", b.cfg.PollInterval), zap.Bool("dry_run", b.cfg.DryRun))

	b.RunCycle(ctx)
	if ctx.Err() != nil {
		return nil
	}

	c.Start()
	<-ctx.Done()

	b.logger.Info("Context done, waiting for the running cycle to finish")
	<-c.Stop().Done()

	return nil
}

type cycleResult struct {
	evaluated  bool
	evaluation strategy.Evaluation
	breakdown  map[string]string
	receipt    *types.Receipt
}

// RunCycle executes one full cycle. Errors never escape: they are logged, counted and reported.
func (b *TradingBot) RunCycle(ctx context.Context) {
	started := time.Now()
	cycleID := uuid.New().String()
	l := b.logger.With(zap.String("cycle_id", cycleID))

	report := events.CycleReport{Timestamp: started.UTC(), CycleID: cycleID}

	res, err := b.runCycleSafe(ctx, l)
	if err != nil {
		kind := domain.KindOf(err)
		report.Outcome = OutcomeFailed
		report.ErrorKind = string(kind)
		report.Error = err.Error()

		l.Error("Cycle failed", zap.String("kind", string(kind)), zap.Error(err))
		b.c.Metrics.RecordError(string(kind))
		if b.cfg.NotifyErrors {
			if nerr := b.c.Notifier.Notify(ctx, notifier.CycleFailed(cycleID, string(kind), err)); nerr != nil {
				l.Warn("error notification failed", zap.Error(nerr))
			}
		}
	} else {
		report.Outcome = outcomeOf(res, b.cfg.DryRun)
	}

	if res.evaluated {
		report.Decision = res.evaluation.Decision.String()
		report.NavUSD = res.evaluation.NavUSD.String()
		report.IndexUSD = res.evaluation.IndexPriceUSD.String()
		report.PremiumPct = res.evaluation.PremiumPct.StringFixed(4)
		report.NavBreakdown = res.breakdown
	}
	if res.receipt != nil {
		report.TxHash = res.receipt.TxHash.Hex()
	}

	took := time.Since(started)
	b.c.Metrics.RecordCycle(report.Outcome, took)
	b.c.Publisher.Publish(report)

	l.Debug("Cycle finished", zap.String("outcome", report.Outcome), zap.Duration("took", took))
}

func outcomeOf(res cycleResult, dryRun bool) string {
	switch {
	case !res.evaluation.Decision.IsTrade():
		return OutcomeNoTrade
	case res.receipt == nil && dryRun:
		return OutcomeDryRun
	default:
		return OutcomeTraded
	}
}

// runCycleSafe turns a panic inside a cycle into a failed cycle.
// The first cycle runs outside the cron chain, so cron.Recover does not cover it.
func (b *TradingBot) runCycleSafe(ctx context.Context, l *zap.Logger) (res cycleResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = cycleResult{}
			err = errors.Errorf("cycle panicked: %v", r)
		}
	}()

	return b.runCycle(ctx, l)
}

func (b *TradingBot) runCycle(ctx context.Context, l *zap.Logger) (cycleResult, error) {
	var res cycleResult

	wallet, err := b.c.Wallet.Read(ctx)
	if err != nil {
		return res, errors.Wrap(err, "read wallet")
	}

	holdings, err := b.c.Basket.Holdings(ctx)
	if err != nil {
		return res, errors.Wrap(err, "read basket")
	}

	symbols := append(b.c.Nav.Rules().References(), b.cfg.NativeSymbol)
	quotes, err := b.c.Market.Fetch(ctx, symbols)
	if err != nil {
		return res, errors.Wrap(err, "fetch market data")
	}
	ethUSD, ok := quotes.Price(b.cfg.NativeSymbol)
	if !ok {
		return res, domain.Errorf(domain.KindDataProvider, "bot.cycle", "no price for %s", b.cfg.NativeSymbol)
	}

	nav, err := b.c.Nav.ComputeNav(ctx, holdings, quotes)
	if err != nil {
		return res, errors.Wrap(err, "compute nav")
	}

	sellAmount := domain.FromDecimal(b.c.Strategy.TradeAmount(), b.cfg.IndexDecimals)
	quote, err := b.c.Quoter.GetIndicativePrice(ctx, b.cfg.IndexToken, b.cfg.NativeToken, sellAmount)
	if err != nil {
		return res, errors.Wrap(err, "indicative price")
	}

	res.evaluation = b.c.Strategy.Evaluate(nav, ethUSD, quote, wallet)
	res.evaluated = true
	res.breakdown = breakdownStrings(nav)
	decision := res.evaluation.Decision

	l.Info("Cycle evaluated", append(res.evaluation.Fields(), valuationFields(holdings, nav, quotes)...)...)
	b.c.Metrics.RecordValuation(res.evaluation.NavUSD, res.evaluation.IndexPriceUSD, res.evaluation.PremiumPct)
	b.c.Metrics.RecordDecision(decision.Kind.String(), decision.Reason)

	direction, isTrade := decision.Direction()
	if !isTrade {
		return res, nil
	}

	receipt, err := b.c.Executor.Execute(ctx, decision)
	res.receipt = receipt
	switch {
	case err != nil && receipt != nil:
		b.c.Metrics.RecordTrade(direction.String(), "reverted")
	case err != nil:
		b.c.Metrics.RecordTrade(direction.String(), "failed")
	case receipt == nil:
		b.c.Metrics.RecordTrade(direction.String(), OutcomeDryRun)
	default:
		b.c.Metrics.RecordTrade(direction.String(), "success")
	}
	if err != nil {
		return res, errors.Wrap(err, "execute trade")
	}

	return res, nil
}

// valuationFields lists the NAV contribution of each holding and the market cap of each fetched reference.
func valuationFields(holdings []domain.AssetHolding, nav domain.NavSnapshot, quotes domain.MarketQuotes) []zap.Field {
	fields := make([]zap.Field, 0, len(holdings)+len(quotes))
	for _, h := range holdings {
		if v, ok := nav.Contribution(h.Symbol); ok {
			fields = append(fields, zap.String("nav_usd_"+h.Symbol, v.String()))
		}
	}

	symbols := make([]string, 0, len(quotes))
	for s := range quotes {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	for _, s := range symbols {
		fields = append(fields, zap.String("market_cap_usd_"+s, quotes[s].MarketCap().StringFixed(0)))
	}

	return fields
}

func breakdownStrings(nav domain.NavSnapshot) map[string]string {
	breakdown := nav.Breakdown()
	out := make(map[string]string, len(breakdown))
	for symbol, v := range breakdown {
		out[symbol] = v.String()
	}
	return out
}

type noopMetrics struct{}

func (noopMetrics) RecordCycle(string, time.Duration) {}
func (noopMetrics) RecordError(string) {}
func (noopMetrics) RecordDecision(string, string) {}
func (noopMetrics) RecordTrade(string, string) {}
func (noopMetrics) RecordValuation(decimal.Decimal, decimal.Decimal, decimal.Decimal) {}

// Fanout publishes every report to each of its publishers in order.
type Fanout []cyclePublisher

func (f Fanout) Publish(r events.CycleReport) {
	for _, p := range f {
		p.Publish(r)
	}
}

type noopPublisher struct{}

func (noopPublisher) Publish(events.CycleReport) {}
