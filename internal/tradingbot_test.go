package internal

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vadiminshakov/navarb/internal/domain"
	"github.com/vadiminshakov/navarb/internal/events"
	"github.com/vadiminshakov/navarb/internal/metrics"
	"github.com/vadiminshakov/navarb/internal/services/inventory"
	"github.com/vadiminshakov/navarb/internal/services/nav"
	"github.com/vadiminshakov/navarb/internal/services/strategy"
	botMock "github.com/vadiminshakov/navarb/mocks/bot"
	notifierMock "github.com/vadiminshakov/navarb/mocks/notifier"
)

var (
	nativeToken = common.HexToAddress("0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE")
	indexToken  = common.HexToAddress("0x13F4196cC779275888440b3000AE533BbBbC3166")
)

type botFixture struct {
	wallet   *botMock.WalletReader
	basket   *botMock.BasketReader
	market   *botMock.MarketData
	quoter   *botMock.IndicativeQuoter
	executor *botMock.Executor
	notifier *notifierMock.Notifier
	cycles   *events.CycleBroadcaster
	registry *prometheus.Registry
	bot      *TradingBot
}

func newBotFixture(t *testing.T, cfg BotConfig) *botFixture {
	t.Helper()

	f := &botFixture{
		wallet:   botMock.NewWalletReader(t),
		basket:   botMock.NewBasketReader(t),
		market:   botMock.NewMarketData(t),
		quoter:   botMock.NewIndicativeQuoter(t),
		executor: botMock.NewExecutor(t),
		notifier: notifierMock.NewNotifier(t),
		cycles:   events.NewCycleBroadcaster(4),
		registry: prometheus.NewRegistry(),
	}

	tradeAmount := decimal.NewFromInt(5)
	calculator := nav.NewCalculator(domain.ValuationRules{"cbBTC": domain.DirectPrice("BTC")})
	arbitrage := strategy.NewArbitrageStrategy(inventory.NewGuard(tradeAmount, 18), tradeAmount)

	if cfg.PollInterval == 0 {
		cfg.PollInterval = time.Hour
	}
	cfg.NativeSymbol = "ETH"
	cfg.NativeToken = nativeToken
	cfg.IndexToken = indexToken
	cfg.IndexDecimals = 18

	bot, err := NewTradingBot(cfg, Components{
		Wallet:    f.wallet,
		Basket:    f.basket,
		Market:    f.market,
		Nav:       calculator,
		Quoter:    f.quoter,
		Strategy:  arbitrage,
		Executor:  f.executor,
		Notifier:  f.notifier,
		Metrics:   metrics.New(f.registry),
		Publisher: f.cycles,
	}, zap.NewNop())
	require.NoError(t, err)
	f.bot = bot

	return f
}

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

// one cbBTC per index token at 60000 USD, ETH at 3000 USD
func (f *botFixture) expectValuation() {
	f.wallet.On("Read", mock.Anything).Return(domain.WalletState{
		ETHBalanceWei:        ether(200),
		IndexTokenBalanceRaw: ether(10),
	}, nil).Once()
	f.basket.On("Holdings", mock.Anything).Return([]domain.AssetHolding{
		{Symbol: "cbBTC", RawQuantity: big.NewInt(1e8), Decimals: 8},
	}, nil).Once()
	f.market.On("Fetch", mock.Anything, []string{"BTC", "ETH"}).Return(domain.MarketQuotes{
		"BTC": {Symbol: "BTC", PriceUSD: decimal.NewFromInt(60000)},
		"ETH": {Symbol: "ETH", PriceUSD: decimal.NewFromInt(3000)},
	}, nil).Once()
}

func indicative(ethPerIndex, impactPct string) domain.SwapQuote {
	return domain.SwapQuote{
		SellToken:               indexToken,
		BuyToken:                nativeToken,
		Price:                   decimal.RequireFromString(ethPerIndex),
		EstimatedGas:            200000,
		GasPriceWei:             big.NewInt(1e9),
		EstimatedPriceImpactPct: decimal.RequireFromString(impactPct),
	}
}

func sellAmountIs(expected *big.Int) interface{} {
	return mock.MatchedBy(func(v *big.Int) bool { return v != nil && v.Cmp(expected) == 0 })
}

func TestTradingBot_MarketDataErrorSkipsExecution(t *testing.T) {
	f := newBotFixture(t, BotConfig{NotifyErrors: true})

	f.wallet.On("Read", mock.Anything).Return(domain.WalletState{ETHBalanceWei: ether(1), IndexTokenBalanceRaw: big.NewInt(0)}, nil).Once()
	f.basket.On("Holdings", mock.Anything).Return([]domain.AssetHolding{}, nil).Once()
	f.market.On("Fetch", mock.Anything, mock.Anything).
		Return(nil, domain.Errorf(domain.KindDataProvider, "marketdata.fetch", "status 500")).Once()
	f.notifier.On("Notify", mock.Anything, mock.AnythingOfType("string")).Return(nil).Once()

	f.bot.RunCycle(context.Background())

	f.executor.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
	f.quoter.AssertNotCalled(t, "GetIndicativePrice", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	report, ok := f.cycles.Last()
	require.True(t, ok)
	assert.Equal(t, OutcomeFailed, report.Outcome)
	assert.Equal(t, string(domain.KindDataProvider), report.ErrorKind)
	assert.Empty(t, report.Decision)

	count, err := testutil.GatherAndCount(f.registry, "navarb_cycle_errors_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestTradingBot_ErrorsAreNotNotifiedByDefault(t *testing.T) {
	f := newBotFixture(t, BotConfig{})

	f.wallet.On("Read", mock.Anything).Return(domain.WalletState{}, domain.Errorf(domain.KindChainRead, "chain.balance", "rpc down")).Once()

	f.bot.RunCycle(context.Background())

	f.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
	f.basket.AssertNotCalled(t, "Holdings", mock.Anything)

	report, ok := f.cycles.Last()
	require.True(t, ok)
	assert.Equal(t, string(domain.KindChainRead), report.ErrorKind)
}

func TestTradingBot_DiscountBuys(t *testing.T) {
	f := newBotFixture(t, BotConfig{})
	f.expectValuation()

	// 19 ETH * 3000 = 57000 USD, a 5% discount to the 60000 NAV
	f.quoter.On("GetIndicativePrice", mock.Anything, indexToken, nativeToken, sellAmountIs(ether(5))).
		Return(indicative("19", "0.1"), nil).Once()

	receipt := &types.Receipt{Status: types.ReceiptStatusSuccessful, TxHash: common.HexToHash("0xabc")}
	f.executor.On("Execute", mock.Anything, mock.MatchedBy(func(d domain.TradeDecision) bool {
		return d.Kind == domain.DecisionBuy && d.Amount.Equal(decimal.NewFromInt(5))
	})).Return(receipt, nil).Once()

	f.bot.RunCycle(context.Background())

	report, ok := f.cycles.Last()
	require.True(t, ok)
	assert.Equal(t, OutcomeTraded, report.Outcome)
	assert.Equal(t, "buy(5)", report.Decision)
	assert.Equal(t, "60000", report.NavUSD)
	assert.Equal(t, "57000", report.IndexUSD)
	assert.Equal(t, "-5.0000", report.PremiumPct)
	assert.Equal(t, map[string]string{"cbBTC": "60000"}, report.NavBreakdown)
	assert.Equal(t, receipt.TxHash.Hex(), report.TxHash)
}

func TestTradingBot_ImpactTooHighDoesNotTrade(t *testing.T) {
	f := newBotFixture(t, BotConfig{})
	f.expectValuation()

	// 1% premium against a 2% price impact
	f.quoter.On("GetIndicativePrice", mock.Anything, indexToken, nativeToken, mock.Anything).
		Return(indicative("20.2", "2"), nil).Once()

	f.bot.RunCycle(context.Background())

	f.executor.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)

	report, ok := f.cycles.Last()
	require.True(t, ok)
	assert.Equal(t, OutcomeNoTrade, report.Outcome)
	assert.Equal(t, "no_trade(impact too high)", report.Decision)
}

func TestTradingBot_DryRunOutcome(t *testing.T) {
	f := newBotFixture(t, BotConfig{DryRun: true})
	f.expectValuation()

	// 21 ETH * 3000 = 63000 USD, a 5% premium
	f.quoter.On("GetIndicativePrice", mock.Anything, indexToken, nativeToken, mock.Anything).
		Return(indicative("21", "0.1"), nil).Once()
	f.executor.On("Execute", mock.Anything, mock.MatchedBy(func(d domain.TradeDecision) bool {
		return d.Kind == domain.DecisionSell
	})).Return(nil, nil).Once()

	f.bot.RunCycle(context.Background())

	report, ok := f.cycles.Last()
	require.True(t, ok)
	assert.Equal(t, OutcomeDryRun, report.Outcome)
	assert.Equal(t, "sell(5)", report.Decision)
	assert.Empty(t, report.TxHash)
}

func TestTradingBot_RevertIsReportedAsConfirmationError(t *testing.T) {
	f := newBotFixture(t, BotConfig{})
	f.expectValuation()

	f.quoter.On("GetIndicativePrice", mock.Anything, indexToken, nativeToken, mock.Anything).
		Return(indicative("19", "0.1"), nil).Once()
	receipt := &types.Receipt{Status: types.ReceiptStatusFailed, TxHash: common.HexToHash("0xdead")}
	f.executor.On("Execute", mock.Anything, mock.Anything).
		Return(receipt, domain.Errorf(domain.KindConfirmation, "trader.execute", "reverted")).Once()

	f.bot.RunCycle(context.Background())

	report, ok := f.cycles.Last()
	require.True(t, ok)
	assert.Equal(t, OutcomeFailed, report.Outcome)
	assert.Equal(t, string(domain.KindConfirmation), report.ErrorKind)
	assert.Equal(t, receipt.TxHash.Hex(), report.TxHash)
}

func TestTradingBot_PanicInCycleIsRecovered(t *testing.T) {
	f := newBotFixture(t, BotConfig{})

	f.wallet.On("Read", mock.Anything).Panic("index out of range").Once()

	require.NotPanics(t, func() { f.bot.RunCycle(context.Background()) })

	report, ok := f.cycles.Last()
	require.True(t, ok)
	assert.Equal(t, OutcomeFailed, report.Outcome)
	assert.Equal(t, string(domain.KindUnknown), report.ErrorKind)
	assert.Contains(t, report.Error, "index out of range")
	assert.Empty(t, report.Decision)
}

func TestValuationFields(t *testing.T) {
	holdings := []domain.AssetHolding{
		{Symbol: "cbBTC", RawQuantity: big.NewInt(1e8), Decimals: 8},
		{Symbol: "wstETH", RawQuantity: ether(2), Decimals: 18},
	}
	snapshot := domain.NewNavSnapshot(decimal.NewFromInt(67080), map[string]decimal.Decimal{
		"cbBTC":  decimal.NewFromInt(60000),
		"wstETH": decimal.NewFromInt(7080),
	})
	quotes := domain.MarketQuotes{
		"ETH": {Symbol: "ETH", PriceUSD: decimal.NewFromInt(3000), CirculatingSupply: decimal.NewFromInt(120_000_000)},
		"BTC": {Symbol: "BTC", PriceUSD: decimal.NewFromInt(60000), CirculatingSupply: decimal.NewFromInt(19_000_000)},
	}

	got := map[string]string{}
	var keys []string
	for _, field := range valuationFields(holdings, snapshot, quotes) {
		got[field.Key] = field.String
		keys = append(keys, field.Key)
	}

	assert.Equal(t, []string{"nav_usd_cbBTC", "nav_usd_wstETH", "market_cap_usd_BTC", "market_cap_usd_ETH"}, keys)
	assert.Equal(t, "60000", got["nav_usd_cbBTC"])
	assert.Equal(t, "7080", got["nav_usd_wstETH"])
	assert.Equal(t, "1140000000000", got["market_cap_usd_BTC"])
	assert.Equal(t, "360000000000", got["market_cap_usd_ETH"])
}

func TestTradingBot_RunStopsOnCancel(t *testing.T) {
	f := newBotFixture(t, BotConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	f.wallet.On("Read", mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(domain.WalletState{}, context.Canceled).Once()

	done := make(chan error, 1)
	go func() { done <- f.bot.Run(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	report, ok := f.cycles.Last()
	require.True(t, ok)
	assert.Equal(t, OutcomeFailed, report.Outcome)
}

func TestNewTradingBot_Validation(t *testing.T) {
	_, err := NewTradingBot(BotConfig{}, Components{}, zap.NewNop())
	assert.EqualError(t, err, "poll interval must be positive")

	_, err = NewTradingBot(BotConfig{PollInterval: time.Minute}, Components{}, zap.NewNop())
	assert.EqualError(t, err, "trading bot is missing a required component")
}
