package setup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadiminshakov/navarb/config"
	"github.com/vadiminshakov/navarb/internal/domain"
)

func sampleAnswers() answers {
	return answers{
		network:      "base",
		wallet:       "0x000000000000000000000000000000000000dEaD",
		pollInterval: "90s",
		tradeAmount:  "2.5",
		slippagePct:  "0.5",
		dryRun:       true,
		constituents: []constituentAnswers{
			{symbol: "cbBTC", token: "0xcbB7C0000aB88B473b1f5aFd9ef808440eed33Bf", decimals: "8", valuation: "direct", reference: "BTC"},
			{
				symbol:       "wstETH",
				token:        "0xc1CBa3fCea344f92D9239c08C0568f6F2F0ee452",
				decimals:     "18",
				valuation:    "derived",
				reference:    "ETH",
				rateContract: "0xc1CBa3fCea344f92D9239c08C0568f6F2F0ee452",
				rateMethod:   "stEthPerToken",
			},
		},
	}
}

func TestAnswers_RoundTripThroughConfig(t *testing.T) {
	data, err := sampleAnswers().marshal()
	require.NoError(t, err)
	assert.NotContains(t, string(data), "private")

	cfg, err := config.Parse(data, func(k string) string {
		return map[string]string{config.EnvZeroExAPIKey: "zx", config.EnvMarketDataKey: "cmc"}[k]
	})
	require.NoError(t, err)

	assert.Equal(t, 90*time.Second, cfg.PollInterval)
	assert.Equal(t, "2.5", cfg.TradeAmount.String())
	assert.Equal(t, "0.005", cfg.MaxSlippage.String())
	assert.True(t, cfg.DryRun)
	require.Len(t, cfg.Basket, 2)
	assert.Equal(t, uint8(8), cfg.Basket[0].Decimals)
	assert.Equal(t, domain.ValuationDerivedRate, cfg.Basket[1].Valuation.Kind)
	assert.Equal(t, "stEthPerToken", cfg.Basket[1].Valuation.RateMethod)
}

func TestAnswers_BadDecimals(t *testing.T) {
	a := sampleAnswers()
	a.constituents[0].decimals = "300"
	_, err := a.toConfig()
	assert.Error(t, err)
}

func TestValidators(t *testing.T) {
	assert.NoError(t, optionalAddress(""))
	assert.Error(t, optionalAddress("0x12"))
	assert.NoError(t, requiredAddress("0x000000000000000000000000000000000000dEaD"))
	assert.Error(t, required("  "))
	assert.Error(t, validateDecimals("-1"))
	assert.NoError(t, validateDecimals("18"))
	assert.Error(t, validateInterval("0s"))
	assert.NoError(t, validateInterval("2m"))
	assert.Error(t, validatePositive("0"))
	assert.NoError(t, validatePositive("5"))
	assert.Error(t, validatePercent("101"))
	assert.NoError(t, validatePercent("0.3"))
}
