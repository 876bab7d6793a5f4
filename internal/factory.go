package internal

import (
	"context"
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/vadiminshakov/navarb/config"
	"github.com/vadiminshakov/navarb/internal/domain"
	"github.com/vadiminshakov/navarb/internal/events"
	"github.com/vadiminshakov/navarb/internal/metrics"
	"github.com/vadiminshakov/navarb/internal/services/chain"
	"github.com/vadiminshakov/navarb/internal/services/inventory"
	"github.com/vadiminshakov/navarb/internal/services/marketdata"
	"github.com/vadiminshakov/navarb/internal/services/nav"
	"github.com/vadiminshakov/navarb/internal/services/notifier"
	"github.com/vadiminshakov/navarb/internal/services/quote"
	"github.com/vadiminshakov/navarb/internal/services/strategy"
	"github.com/vadiminshakov/navarb/internal/services/trader"
	"github.com/vadiminshakov/navarb/internal/storage/journal"
)

// Dependencies are the long-lived objects created by main.
type Dependencies struct {
	Backend    chain.Backend
	PrivateKey *ecdsa.PrivateKey
	Registerer prometheus.Registerer
	Cycles     *events.CycleBroadcaster
	Journal    *journal.WALStore
}

// NewTradingBotFromConfig wires every component of the bot from cfg.
func NewTradingBotFromConfig(ctx context.Context, cfg config.Config, deps Dependencies, logger *zap.Logger) (*TradingBot, error) {
	evm, err := chain.New(ctx, deps.Backend, deps.PrivateKey, logger.Named("chain"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to init chain adapter")
	}

	wallet, err := resolveWallet(cfg.WalletAddress, evm.Sender(), deps.PrivateKey != nil)
	if err != nil {
		return nil, err
	}

	rules, constituents, err := valuationRules(cfg.Basket, evm)
	if err != nil {
		return nil, err
	}

	basket, err := nav.NewBasketReader(evm, cfg.Network.IndexToken, constituents, cfg.DecimalsTable())
	if err != nil {
		return nil, errors.Wrap(err, "failed to create basket reader")
	}
	if err := basket.Verify(ctx); err != nil {
		return nil, err
	}

	market := marketdata.NewAggregator(marketdata.ClientConfig{
		BaseURL: cfg.MarketDataURL,
		APIKey:  cfg.MarketDataAPIKey,
	}, logger.Named("marketdata"))

	zeroEx := quote.NewZeroExClient(quote.ClientConfig{
		PriceURL: cfg.Network.PriceEndpoint,
		QuoteURL: cfg.Network.QuoteEndpoint,
		APIKey:   cfg.ZeroExAPIKey,
		Taker:    wallet,
	}, logger.Named("0x"))

	guard := inventory.NewGuard(cfg.TradeAmount, cfg.IndexDecimals)
	notify := notifier.New(cfg.SlackWebhookURL)

	executor := trader.NewExecutor(trader.Config{
		Account:             wallet,
		NativeToken:         cfg.Network.NativeToken,
		IndexToken:          cfg.Network.IndexToken,
		IndexDecimals:       cfg.IndexDecimals,
		MaxSlippage:         cfg.MaxSlippage,
		ConfirmationTimeout: cfg.ConfirmationTimeout,
		DryRun:              cfg.DryRun,
	}, zeroEx, evm, notify, logger.Named("executor"))

	components := Components{
		Wallet:   inventory.NewWalletReader(evm, wallet, cfg.Network.IndexToken),
		Basket:   basket,
		Market:   market,
		Nav:      nav.NewCalculator(rules),
		Quoter:   zeroEx,
		Strategy: strategy.NewArbitrageStrategy(guard, cfg.TradeAmount),
		Executor: executor,
		Notifier: notify,
	}
	if deps.Registerer != nil {
		components.Metrics = metrics.New(deps.Registerer)
	}
	var publishers Fanout
	if deps.Cycles != nil {
		publishers = append(publishers, deps.Cycles)
	}
	if deps.Journal != nil {
		publishers = append(publishers, deps.Journal)
	}
	if len(publishers) > 0 {
		components.Publisher = publishers
	}

	return NewTradingBot(BotConfig{
		PollInterval:  cfg.PollInterval,
		NativeSymbol:  cfg.NativeSymbol,
		NativeToken:   cfg.Network.NativeToken,
		IndexToken:    cfg.Network.IndexToken,
		IndexDecimals: cfg.IndexDecimals,
		DryRun:        cfg.DryRun,
		NotifyErrors:  cfg.NotifyErrors,
	}, components, logger)
}

// resolveWallet prefers the key's address and rejects a configured address that disagrees with it.
func resolveWallet(configured, signer common.Address, hasKey bool) (common.Address, error) {
	if !hasKey {
		if configured == (common.Address{}) {
			return common.Address{}, errors.New("wallet address is required without a private key")
		}
		return configured, nil
	}
	if configured != (common.Address{}) && configured != signer {
		return common.Address{}, errors.Errorf("wallet address %s does not match the private key address %s", configured.Hex(), signer.Hex())
	}

	return signer, nil
}

func valuationRules(basket []config.Constituent, caller nav.ContractCaller) (domain.ValuationRules, []nav.Constituent, error) {
	rules := make(domain.ValuationRules, len(basket))
	constituents := make([]nav.Constituent, 0, len(basket))

	for _, b := range basket {
		constituents = append(constituents, nav.Constituent{Symbol: b.Symbol, Token: b.Token})

		switch b.Valuation.Kind {
		case domain.ValuationDirectPrice:
			rules[b.Symbol] = domain.DirectPrice(b.Valuation.Reference)
		case domain.ValuationDerivedRate:
			fetcher, err := nav.NewChainRateFetcher(caller, b.Valuation.RateContract, b.Valuation.RateMethod, b.Valuation.RateDecimals)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "valuation of %s", b.Symbol)
			}
			rules[b.Symbol] = domain.DerivedRate(b.Valuation.Reference, fetcher)
		default:
			return nil, nil, errors.Errorf("unknown valuation kind for %s", b.Symbol)
		}
	}

	return rules, constituents, nil
}
