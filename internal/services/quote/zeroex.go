// Package quote requests indicative prices and executable swap quotes from the 0x aggregator.
package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vadiminshakov/navarb/internal/domain"
)

const (
	// DefaultTimeout is the HTTP request timeout.
	DefaultTimeout = 20 * time.Second

	apiKeyHeader = "0x-api-key"
)

// ClientConfig configures the 0x client.
type ClientConfig struct {
	PriceURL   string
	QuoteURL   string
	APIKey     string
	Taker      common.Address
	Timeout    time.Duration
	HTTPClient *http.Client
}

// ZeroExClient talks to the 0x swap API.
type ZeroExClient struct {
	httpClient *http.Client
	priceURL   string
	quoteURL   string
	apiKey     string
	taker      common.Address
	logger     *zap.Logger
}

// NewZeroExClient creates a ZeroExClient.
func NewZeroExClient(config ClientConfig, logger *zap.Logger) *ZeroExClient {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	return &ZeroExClient{
		httpClient: httpClient,
		priceURL:   config.PriceURL,
		quoteURL:   config.QuoteURL,
		apiKey:     config.APIKey,
		taker:      config.Taker,
		logger:     logger,
	}
}

// numeric fields arrive either quoted or bare, so they are decoded as decimals
type swapResponse struct {
	Price                *decimal.Decimal `json:"price"`
	EstimatedGas         *decimal.Decimal `json:"estimatedGas"`
	GasPrice             *decimal.Decimal `json:"gasPrice"`
	EstimatedPriceImpact *decimal.Decimal `json:"estimatedPriceImpact"`
	SellAmount           *decimal.Decimal `json:"sellAmount"`
	BuyAmount            *decimal.Decimal `json:"buyAmount"`
	To                   string           `json:"to"`
	Data                 string           `json:"data"`
	Value                *decimal.Decimal `json:"value"`
	Gas                  *decimal.Decimal `json:"gas"`
}

type errorResponse struct {
	Code   int    `json:"code"`
	Reason string `json:"reason"`
}

// GetIndicativePrice asks how much buyToken sellAmount of sellToken fetches, without calldata.
func (c *ZeroExClient) GetIndicativePrice(ctx context.Context, sellToken, buyToken common.Address, sellAmount *big.Int) (domain.SwapQuote, error) {
	const op = "quote.price"

	if sellAmount == nil || sellAmount.Sign() <= 0 {
		return domain.SwapQuote{}, domain.Errorf(domain.KindQuoteUnavailable, op, "sell amount must be positive")
	}

	query := baseQuery(sellToken, buyToken, c.taker)
	query.Set("sellAmount", sellAmount.String())

	resp, err := c.get(ctx, op, c.priceURL, query)
	if err != nil {
		return domain.SwapQuote{}, err
	}

	q, err := priceFields(op, resp)
	if err != nil {
		return domain.SwapQuote{}, err
	}
	q.SellToken = sellToken
	q.BuyToken = buyToken
	q.SellAmount = sellAmount
	q.BuyAmount = optionalInt(resp.BuyAmount)

	c.logger.Debug("indicative price",
		zap.String("price", q.Price.String()),
		zap.Uint64("estimated_gas", q.EstimatedGas),
		zap.String("price_impact_pct", q.EstimatedPriceImpactPct.String()),
	)

	return q, nil
}

// GetBindingQuote returns an executable quote. Exactly one of sellAmount and buyAmount
// must be set; the aggregator solves for the other. maxSlippage is a fraction, 0.003 is 0.3%.
func (c *ZeroExClient) GetBindingQuote(ctx context.Context, sellToken, buyToken common.Address, sellAmount, buyAmount *big.Int, maxSlippage decimal.Decimal) (domain.SwapQuote, error) {
	const op = "quote.binding"

	if (sellAmount == nil) == (buyAmount == nil) {
		return domain.SwapQuote{}, domain.Errorf(domain.KindQuoteUnavailable, op, "exactly one of sell amount and buy amount is required")
	}
	if maxSlippage.IsNegative() {
		return domain.SwapQuote{}, domain.Errorf(domain.KindQuoteUnavailable, op, "negative slippage %s", maxSlippage.String())
	}

	query := baseQuery(sellToken, buyToken, c.taker)
	if sellAmount != nil {
		query.Set("sellAmount", sellAmount.String())
	} else {
		query.Set("buyAmount", buyAmount.String())
	}
	query.Set("slippagePercentage", maxSlippage.String())

	resp, err := c.get(ctx, op, c.quoteURL, query)
	if err != nil {
		return domain.SwapQuote{}, err
	}

	q, err := priceFields(op, resp)
	if err != nil {
		return domain.SwapQuote{}, err
	}

	if !common.IsHexAddress(resp.To) {
		return domain.SwapQuote{}, domain.Errorf(domain.KindQuoteUnavailable, op, "invalid target address %q", resp.To)
	}
	calldata, err := hexutil.Decode(resp.Data)
	if err != nil {
		return domain.SwapQuote{}, domain.NewError(domain.KindQuoteUnavailable, op, errors.Wrap(err, "invalid calldata"))
	}
	value, err := requireInt(op, "value", resp.Value)
	if err != nil {
		return domain.SwapQuote{}, err
	}
	gas, err := requireInt(op, "gas", resp.Gas)
	if err != nil {
		return domain.SwapQuote{}, err
	}
	if !gas.IsUint64() {
		return domain.SwapQuote{}, domain.Errorf(domain.KindQuoteUnavailable, op, "gas %s out of range", gas.String())
	}

	q.SellToken = sellToken
	q.BuyToken = buyToken
	q.SellAmount = optionalInt(resp.SellAmount)
	q.BuyAmount = optionalInt(resp.BuyAmount)
	if sellAmount != nil {
		q.SellAmount = sellAmount
	} else {
		q.BuyAmount = buyAmount
	}
	q.To = common.HexToAddress(resp.To)
	q.Calldata = calldata
	q.Value = value
	// the executable gas limit supersedes the estimate
	q.EstimatedGas = gas.Uint64()

	return q, nil
}

func (c *ZeroExClient) get(ctx context.Context, op, endpoint string, query url.Values) (*swapResponse, error) {
	requestURL := fmt.Sprintf("%s?%s", endpoint, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, domain.NewError(domain.KindQuoteUnavailable, op, errors.Wrap(err, "failed to create request"))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewError(domain.KindQuoteUnavailable, op, errors.Wrap(err, "request failed"))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewError(domain.KindQuoteUnavailable, op, errors.Wrap(err, "failed to read response"))
	}

	if resp.StatusCode != http.StatusOK {
		var e errorResponse
		if json.Unmarshal(body, &e) == nil && e.Reason != "" {
			return nil, domain.Errorf(domain.KindQuoteUnavailable, op, "0x status %d: %s (code %d)", resp.StatusCode, e.Reason, e.Code)
		}
		return nil, domain.Errorf(domain.KindQuoteUnavailable, op, "0x status %d", resp.StatusCode)
	}

	var parsed swapResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, domain.NewError(domain.KindQuoteUnavailable, op, errors.Wrap(err, "failed to parse response"))
	}

	return &parsed, nil
}

func baseQuery(sellToken, buyToken, taker common.Address) url.Values {
	query := url.Values{}
	query.Set("sellToken", sellToken.Hex())
	query.Set("buyToken", buyToken.Hex())
	if taker != (common.Address{}) {
		query.Set("takerAddress", taker.Hex())
	}
	return query
}

// priceFields extracts the fields shared by price and quote answers.
func priceFields(op string, resp *swapResponse) (domain.SwapQuote, error) {
	if resp.Price == nil || resp.Price.IsNegative() {
		return domain.SwapQuote{}, domain.Errorf(domain.KindQuoteUnavailable, op, "missing price")
	}
	if resp.EstimatedPriceImpact == nil {
		return domain.SwapQuote{}, domain.Errorf(domain.KindQuoteUnavailable, op, "missing estimatedPriceImpact")
	}

	gas, err := requireInt(op, "estimatedGas", resp.EstimatedGas)
	if err != nil {
		return domain.SwapQuote{}, err
	}
	if !gas.IsUint64() {
		return domain.SwapQuote{}, domain.Errorf(domain.KindQuoteUnavailable, op, "estimatedGas %s out of range", gas.String())
	}
	gasPrice, err := requireInt(op, "gasPrice", resp.GasPrice)
	if err != nil {
		return domain.SwapQuote{}, err
	}

	return domain.SwapQuote{
		Price:                   *resp.Price,
		EstimatedGas:            gas.Uint64(),
		GasPriceWei:             gasPrice,
		EstimatedPriceImpactPct: *resp.EstimatedPriceImpact,
	}, nil
}

func requireInt(op, field string, v *decimal.Decimal) (*big.Int, error) {
	if v == nil {
		return nil, domain.Errorf(domain.KindQuoteUnavailable, op, "missing %s", field)
	}
	if !v.IsInteger() || v.IsNegative() {
		return nil, domain.Errorf(domain.KindQuoteUnavailable, op, "%s is not a non-negative integer: %s", field, v.String())
	}
	return v.BigInt(), nil
}

func optionalInt(v *decimal.Decimal) *big.Int {
	if v == nil || !v.IsInteger() {
		return nil
	}
	return v.BigInt()
}
