// Package marketdata fetches USD spot prices and circulating supply for reference assets.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vadiminshakov/navarb/internal/domain"
)

const (
	// DefaultBaseURL is the CoinMarketCap professional API.
	DefaultBaseURL = "https://pro-api.coinmarketcap.com"

	// DefaultTimeout is the HTTP request timeout.
	DefaultTimeout = 15 * time.Second

	quotesPath   = "/v1/cryptocurrency/quotes/latest"
	apiKeyHeader = "X-CMC_PRO_API_KEY"
	convert      = "USD"
)

// ClientConfig configures the Aggregator.
type ClientConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Aggregator queries a market data provider for a batch of symbols in one request.
type Aggregator struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *zap.Logger
}

// NewAggregator creates an Aggregator.
func NewAggregator(config ClientConfig, logger *zap.Logger) *Aggregator {
	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Aggregator{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     config.APIKey,
		logger:     logger,
	}
}

type quotesResponse struct {
	Status struct {
		ErrorCode    int    `json:"error_code"`
		ErrorMessage string `json:"error_message"`
	} `json:"status"`
	Data map[string]struct {
		Symbol            string           `json:"symbol"`
		CirculatingSupply *decimal.Decimal `json:"circulating_supply"`
		Quote             map[string]struct {
			Price *decimal.Decimal `json:"price"`
		} `json:"quote"`
	} `json:"data"`
}

// Fetch returns a quote for every requested symbol. Duplicates are collapsed before the request.
// A non-success status or a symbol missing from the answer fails the whole call.
func (a *Aggregator) Fetch(ctx context.Context, symbols []string) (domain.MarketQuotes, error) {
	unique := dedupe(symbols)
	if len(unique) == 0 {
		return domain.MarketQuotes{}, nil
	}

	query := url.Values{}
	query.Set("symbol", strings.Join(unique, ","))
	query.Set("convert", convert)
	requestURL := fmt.Sprintf("%s%s?%s", a.baseURL, quotesPath, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, domain.NewError(domain.KindDataProvider, "marketdata.fetch", errors.Wrap(err, "failed to create request"))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(apiKeyHeader, a.apiKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewError(domain.KindDataProvider, "marketdata.fetch", errors.Wrap(err, "request failed"))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewError(domain.KindDataProvider, "marketdata.fetch", errors.Wrap(err, "failed to read response"))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, domain.Errorf(domain.KindDataProvider, "marketdata.fetch", "provider status %d: %s", resp.StatusCode, truncate(body))
	}

	var parsed quotesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, domain.NewError(domain.KindDataProvider, "marketdata.fetch", errors.Wrap(err, "failed to parse response"))
	}
	if parsed.Status.ErrorCode != 0 {
		return nil, domain.Errorf(domain.KindDataProvider, "marketdata.fetch", "provider error %d: %s", parsed.Status.ErrorCode, parsed.Status.ErrorMessage)
	}

	quotes := make(domain.MarketQuotes, len(unique))
	for _, symbol := range unique {
		entry, ok := parsed.Data[symbol]
		if !ok {
			return nil, domain.Errorf(domain.KindDataProvider, "marketdata.fetch", "symbol %s missing from response", symbol)
		}
		usd, ok := entry.Quote[convert]
		if !ok || usd.Price == nil {
			return nil, domain.Errorf(domain.KindDataProvider, "marketdata.fetch", "no %s price for %s", convert, symbol)
		}
		if usd.Price.IsNegative() {
			return nil, domain.Errorf(domain.KindDataProvider, "marketdata.fetch", "negative price for %s", symbol)
		}

		supply := decimal.Zero
		if entry.CirculatingSupply != nil && entry.CirculatingSupply.IsPositive() {
			supply = *entry.CirculatingSupply
		}

		quotes[symbol] = domain.MarketQuote{
			Symbol:            symbol,
			PriceUSD:          *usd.Price,
			CirculatingSupply: supply,
		}
	}

	a.logger.Debug("market data fetched", zap.Strings("symbols", unique))

	return quotes, nil
}

func dedupe(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func truncate(body []byte) string {
	const limit = 256
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
