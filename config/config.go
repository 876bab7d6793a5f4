package config

import (
	"flag"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/vadiminshakov/navarb/internal/domain"
)

// Disabled turns the ops server off when used as metrics_addr and the cycle journal off when used as journal_dir.
const Disabled = "off"

// Env variables that override or complement the yaml file. Secrets are accepted only from the environment.
const (
	EnvZeroExAPIKey    = "ZX_API_KEY"
	EnvPrivateKey      = "PRIVATE_KEY"
	EnvWalletAddress   = "ETH_ADDRESS"
	EnvNetwork         = "NETWORK"
	EnvSlackWebhookURL = "SLACK_WEBHOOK_URL"
	EnvMarketDataKey   = "CMC_API_KEY"
	EnvRPCURL          = "RPC_URL"
)

// Options are the command line flags.
type Options struct {
	ConfigPath string
	Setup      bool
	Debug      bool
}

// Valuation describes how one basket constituent is priced.
type Valuation struct {
	Kind         domain.ValuationKind
	Reference    string
	RateContract common.Address
	RateMethod   string
	RateDecimals uint8
}

// Constituent is a basket member with its token address and decimals.
type Constituent struct {
	Symbol    string
	Token     common.Address
	Decimals  uint8
	Valuation Valuation
}

type Config struct {
	Network       NetworkProfile
	WalletAddress common.Address

	// secrets, never logged
	PrivateKey       string
	ZeroExAPIKey     string
	MarketDataAPIKey string
	SlackWebhookURL  string

	MarketDataURL       string
	PollInterval        time.Duration
	TradeAmount         decimal.Decimal
	MaxSlippage         decimal.Decimal // fraction, 0.003 for 0.3%
	ConfirmationTimeout time.Duration
	IndexDecimals       uint8
	NativeSymbol        string
	DryRun              bool
	NotifyErrors        bool
	MetricsAddr         string
	StaleAfter          time.Duration
	JournalDir          string
	Basket              []Constituent
}

type ValuationTmp struct {
	Type         string `yaml:"type" default:"direct" validate:"oneof=direct derived"`
	Reference    string `yaml:"reference" validate:"required"`
	RateContract string `yaml:"rate_contract,omitempty" validate:"required_if=Type derived,omitempty,eth_addr"`
	RateMethod   string `yaml:"rate_method,omitempty" validate:"required_if=Type derived"`
	RateDecimals uint8  `yaml:"rate_decimals,omitempty" default:"18"`
}

type ConstituentTmp struct {
	Symbol    string       `yaml:"symbol" validate:"required"`
	Token     string       `yaml:"token" validate:"required,eth_addr"`
	Decimals  *uint8       `yaml:"decimals" validate:"required"`
	Valuation ValuationTmp `yaml:"valuation"`
}

type ConfigTmp struct {
	Network             string                `yaml:"network" default:"base"`
	Networks            map[string]NetworkTmp `yaml:"networks,omitempty" validate:"dive"`
	WalletAddress       string                `yaml:"wallet_address,omitempty" validate:"omitempty,eth_addr"`
	SlackWebhookURL     string                `yaml:"slack_webhook_url,omitempty" validate:"omitempty,url"`
	MarketDataURL       string                `yaml:"market_data_url" default:"https://pro-api.coinmarketcap.com" validate:"url"`
	PollInterval        time.Duration         `yaml:"poll_interval" default:"120s" validate:"gt=0"`
	TradeAmount         string                `yaml:"trade_amount" default:"5"`
	MaxSlippagePct      string                `yaml:"max_slippage_pct" default:"0.3"`
	ConfirmationTimeout time.Duration         `yaml:"confirmation_timeout,omitempty" validate:"gte=0"`
	IndexDecimals       uint8                 `yaml:"index_decimals" default:"18"`
	NativeSymbol        string                `yaml:"native_symbol" default:"ETH"`
	DryRun              bool                  `yaml:"dry_run,omitempty"`
	NotifyErrors        bool                  `yaml:"notify_errors,omitempty"`
	MetricsAddr         string                `yaml:"metrics_addr" default:":9108"`
	StaleAfter          time.Duration         `yaml:"stale_after,omitempty"`
	JournalDir          string                `yaml:"journal_dir" default:"off"`
	Basket              []ConstituentTmp      `yaml:"basket" validate:"required,min=1,dive"`
}

// ParseFlags reads the command line flags from args.
func ParseFlags(args []string) (Options, error) {
	fs := flag.NewFlagSet("navarb", flag.ContinueOnError)
	path := fs.String("config", "config.yaml", "path to yaml config")
	setup := fs.Bool("setup", false, "run interactive setup wizard")
	debug := fs.Bool("debug", false, "enable development logging")
	if err := fs.Parse(args); err != nil {
		return Options{}, err
	}

	return Options{ConfigPath: *path, Setup: *setup, Debug: *debug}, nil
}

// LoadDotEnv loads .env from the working directory if it exists.
func LoadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	return errors.Wrap(godotenv.Load(), "failed to load .env")
}

// Load reads the yaml file at path and applies defaults, env overrides and validation.
func Load(path string, getenv func(string) string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "failed to read config %s", path)
	}

	return Parse(data, getenv)
}

// Parse builds a Config from yaml bytes.
func Parse(data []byte, getenv func(string) string) (Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	var tmp ConfigTmp
	if err := yaml.Unmarshal(data, &tmp); err != nil {
		return Config{}, errors.Wrap(err, "failed to parse yaml config")
	}

	applyEnv(&tmp, getenv)

	if err := defaults.Set(&tmp); err != nil {
		return Config{}, errors.Wrap(err, "failed to apply config defaults")
	}
	for i := range tmp.Basket {
		if err := defaults.Set(&tmp.Basket[i].Valuation); err != nil {
			return Config{}, errors.Wrap(err, "failed to apply valuation defaults")
		}
	}

	if err := validator.New().Struct(tmp); err != nil {
		return Config{}, errors.Wrap(err, "invalid config")
	}

	return tmp.toConfig(getenv)
}

func applyEnv(tmp *ConfigTmp, getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvNetwork)); v != "" {
		tmp.Network = v
	}
	if v := strings.TrimSpace(getenv(EnvWalletAddress)); v != "" {
		tmp.WalletAddress = v
	}
	if v := strings.TrimSpace(getenv(EnvSlackWebhookURL)); v != "" {
		tmp.SlackWebhookURL = v
	}
}

func (tmp ConfigTmp) toConfig(getenv func(string) string) (Config, error) {
	network, err := resolveNetwork(tmp.Network, tmp.Networks)
	if err != nil {
		return Config{}, err
	}
	if v := strings.TrimSpace(getenv(EnvRPCURL)); v != "" {
		network.RPCURL = v
	}

	tradeAmount, err := decimal.NewFromString(tmp.TradeAmount)
	if err != nil {
		return Config{}, errors.Wrap(err, "invalid trade_amount")
	}
	if !tradeAmount.IsPositive() {
		return Config{}, errors.New("trade_amount must be positive")
	}

	slippagePct, err := decimal.NewFromString(tmp.MaxSlippagePct)
	if err != nil {
		return Config{}, errors.Wrap(err, "invalid max_slippage_pct")
	}
	if slippagePct.IsNegative() || slippagePct.GreaterThan(decimal.NewFromInt(100)) {
		return Config{}, errors.Errorf("max_slippage_pct must be within [0, 100], got %s", slippagePct)
	}

	basket, err := convertBasket(tmp.Basket)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Network:             network,
		PrivateKey:          strings.TrimSpace(getenv(EnvPrivateKey)),
		ZeroExAPIKey:        strings.TrimSpace(getenv(EnvZeroExAPIKey)),
		MarketDataAPIKey:    strings.TrimSpace(getenv(EnvMarketDataKey)),
		SlackWebhookURL:     tmp.SlackWebhookURL,
		MarketDataURL:       tmp.MarketDataURL,
		PollInterval:        tmp.PollInterval,
		TradeAmount:         tradeAmount,
		MaxSlippage:         slippagePct.Div(decimal.NewFromInt(100)),
		ConfirmationTimeout: tmp.ConfirmationTimeout,
		IndexDecimals:       tmp.IndexDecimals,
		NativeSymbol:        tmp.NativeSymbol,
		DryRun:              tmp.DryRun,
		NotifyErrors:        tmp.NotifyErrors,
		MetricsAddr:         tmp.MetricsAddr,
		StaleAfter:          tmp.StaleAfter,
		JournalDir:          tmp.JournalDir,
		Basket:              basket,
	}
	if cfg.MetricsAddr == Disabled {
		cfg.MetricsAddr = ""
	}
	if cfg.JournalDir == Disabled {
		cfg.JournalDir = ""
	}
	if cfg.StaleAfter == 0 {
		cfg.StaleAfter = 3 * cfg.PollInterval
	}
	if tmp.WalletAddress != "" {
		cfg.WalletAddress = common.HexToAddress(tmp.WalletAddress)
	}

	var missing []string
	if cfg.ZeroExAPIKey == "" {
		missing = append(missing, EnvZeroExAPIKey)
	}
	if cfg.MarketDataAPIKey == "" {
		missing = append(missing, EnvMarketDataKey)
	}
	if cfg.PrivateKey == "" && !cfg.DryRun {
		missing = append(missing, EnvPrivateKey)
	}
	if cfg.PrivateKey == "" && tmp.WalletAddress == "" {
		missing = append(missing, EnvWalletAddress)
	}
	if len(missing) > 0 {
		return Config{}, errors.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

func convertBasket(items []ConstituentTmp) ([]Constituent, error) {
	seen := make(map[string]struct{}, len(items))
	basket := make([]Constituent, 0, len(items))
	for _, item := range items {
		if _, dup := seen[item.Symbol]; dup {
			return nil, errors.Errorf("duplicate basket constituent %s", item.Symbol)
		}
		seen[item.Symbol] = struct{}{}

		c := Constituent{
			Symbol:   item.Symbol,
			Token:    common.HexToAddress(item.Token),
			Decimals: *item.Decimals,
			Valuation: Valuation{
				Kind:      domain.ValuationDirectPrice,
				Reference: item.Valuation.Reference,
			},
		}
		if item.Valuation.Type == "derived" {
			c.Valuation.Kind = domain.ValuationDerivedRate
			c.Valuation.RateContract = common.HexToAddress(item.Valuation.RateContract)
			c.Valuation.RateMethod = item.Valuation.RateMethod
			c.Valuation.RateDecimals = item.Valuation.RateDecimals
		}
		basket = append(basket, c)
	}

	return basket, nil
}

// DecimalsTable returns the constituent decimals keyed by symbol.
func (c Config) DecimalsTable() domain.DecimalsTable {
	table := make(domain.DecimalsTable, len(c.Basket))
	for _, b := range c.Basket {
		table[b.Symbol] = b.Decimals
	}
	return table
}

// Symbols returns the sorted constituent symbols.
func (c Config) Symbols() []string {
	out := make([]string, 0, len(c.Basket))
	for _, b := range c.Basket {
		out = append(out, b.Symbol)
	}
	sort.Strings(out)
	return out
}

// Redacted returns log fields describing the config without any secret values.
func (c Config) Redacted() []zap.Field {
	return []zap.Field{
		zap.String("network", c.Network.Name),
		zap.String("wallet", c.WalletAddress.Hex()),
		zap.String("index_token", c.Network.IndexToken.Hex()),
		zap.Duration("poll_interval", c.PollInterval),
		zap.String("trade_amount", c.TradeAmount.String()),
		zap.String("max_slippage", c.MaxSlippage.String()),
		zap.Duration("confirmation_timeout", c.ConfirmationTimeout),
		zap.Strings("basket", c.Symbols()),
		zap.Bool("dry_run", c.DryRun),
		zap.Bool("notify_errors", c.NotifyErrors),
		zap.Bool("slack_enabled", c.SlackWebhookURL != ""),
		zap.String("metrics_addr", c.MetricsAddr),
		zap.String("journal_dir", c.JournalDir),
	}
}
