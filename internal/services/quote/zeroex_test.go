package quote

import (
	"context"
	"math/big"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vadiminshakov/navarb/internal/domain"
)

var (
	ethToken   = common.HexToAddress("0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE")
	indexToken = common.HexToAddress("0x13F4196cC779275888440b3000AE533BbBbC3166")
	taker      = common.HexToAddress("0x00000000000000000000000000000000000000aa")
)

type recorded struct {
	path   string
	query  url.Values
	apiKey string
}

func newZeroEx(t *testing.T, status int, body string) (*ZeroExClient, *[]recorded) {
	t.Helper()
	var seen []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, recorded{path: r.URL.Path, query: r.URL.Query(), apiKey: r.Header.Get(apiKeyHeader)})
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	c := NewZeroExClient(ClientConfig{
		PriceURL: srv.URL + "/swap/v1/price",
		QuoteURL: srv.URL + "/swap/v1/quote",
		APIKey:   "zx",
		Taker:    taker,
	}, zap.NewNop())
	return c, &seen
}

func TestZeroEx_GetIndicativePrice(t *testing.T) {
	body := `{"price":"0.38","estimatedGas":"210000","gasPrice":"5000000","estimatedPriceImpact":"0.42","buyAmount":"1900000000000000000","sellAmount":"5000000000000000000"}`
	c, seen := newZeroEx(t, http.StatusOK, body)
	amount := new(big.Int).Mul(big.NewInt(5), big.NewInt(1e18))

	q, err := c.GetIndicativePrice(context.Background(), indexToken, ethToken, amount)
	require.NoError(t, err)

	require.Len(t, *seen, 1)
	req := (*seen)[0]
	assert.Equal(t, "/swap/v1/price", req.path)
	assert.Equal(t, "zx", req.apiKey)
	assert.Equal(t, indexToken.Hex(), req.query.Get("sellToken"))
	assert.Equal(t, ethToken.Hex(), req.query.Get("buyToken"))
	assert.Equal(t, "5000000000000000000", req.query.Get("sellAmount"))
	assert.Equal(t, taker.Hex(), req.query.Get("takerAddress"))
	assert.Empty(t, req.query.Get("slippagePercentage"))

	assert.True(t, q.Price.Equal(decimal.RequireFromString("0.38")))
	assert.Equal(t, uint64(210000), q.EstimatedGas)
	assert.Equal(t, int64(5000000), q.GasPriceWei.Int64())
	assert.True(t, q.EstimatedPriceImpactPct.Equal(decimal.RequireFromString("0.42")))
	assert.Equal(t, "1900000000000000000", q.BuyAmount.String())
	assert.Equal(t, int64(1050000000000), q.GasCostWei().Int64())
}

func TestZeroEx_GetBindingQuote_BuySide(t *testing.T) {
	body := `{"price":"2.6","estimatedGas":"200000","gasPrice":"5000000","estimatedPriceImpact":"0.1",
"to":"0xdef1c0ded9bec7f1a1670819833240f027b25eff","data":"0xd9627aa4","value":"1950000000000000000","gas":"260000",
"sellAmount":"1950000000000000000"}`
	c, seen := newZeroEx(t, http.StatusOK, body)
	buy := new(big.Int).Mul(big.NewInt(5), big.NewInt(1e18))

	q, err := c.GetBindingQuote(context.Background(), ethToken, indexToken, nil, buy, decimal.RequireFromString("0.003"))
	require.NoError(t, err)

	req := (*seen)[0]
	assert.Equal(t, "/swap/v1/quote", req.path)
	assert.Equal(t, "5000000000000000000", req.query.Get("buyAmount"))
	assert.Empty(t, req.query.Get("sellAmount"))
	assert.Equal(t, "0.003", req.query.Get("slippagePercentage"))

	assert.Equal(t, common.HexToAddress("0xdef1c0ded9bec7f1a1670819833240f027b25eff"), q.To)
	assert.Equal(t, []byte{0xd9, 0x62, 0x7a, 0xa4}, q.Calldata)
	assert.Equal(t, "1950000000000000000", q.Value.String())
	assert.Equal(t, uint64(260000), q.EstimatedGas)
	assert.Equal(t, 0, q.BuyAmount.Cmp(buy))
	assert.Equal(t, "1950000000000000000", q.SellAmount.String())
}

func TestZeroEx_GetBindingQuote_RequiresExactlyOneAmount(t *testing.T) {
	c, seen := newZeroEx(t, http.StatusOK, `{}`)
	one := big.NewInt(1)

	_, err := c.GetBindingQuote(context.Background(), ethToken, indexToken, one, one, decimal.Zero)
	assert.True(t, errors.Is(err, domain.ErrQuoteUnavailable))
	_, err = c.GetBindingQuote(context.Background(), ethToken, indexToken, nil, nil, decimal.Zero)
	assert.True(t, errors.Is(err, domain.ErrQuoteUnavailable))
	assert.Empty(t, *seen)
}

func TestZeroEx_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		binding bool
		errPart string
	}{
		{name: "upstream error", status: http.StatusBadRequest, body: `{"code":100,"reason":"Validation Failed"}`, errPart: "Validation Failed"},
		{name: "upstream error without body", status: http.StatusBadGateway, body: `oops`, errPart: "status 502"},
		{name: "missing price", status: http.StatusOK, body: `{"estimatedGas":"1","gasPrice":"1","estimatedPriceImpact":"0"}`, errPart: "missing price"},
		{name: "missing gas", status: http.StatusOK, body: `{"price":"1","gasPrice":"1","estimatedPriceImpact":"0"}`, errPart: "missing estimatedGas"},
		{name: "null impact", status: http.StatusOK, body: `{"price":"1","estimatedGas":"1","gasPrice":"1","estimatedPriceImpact":null}`, errPart: "estimatedPriceImpact"},
		{name: "fractional gas price", status: http.StatusOK, body: `{"price":"1","estimatedGas":"1","gasPrice":"1.5","estimatedPriceImpact":"0"}`, errPart: "gasPrice"},
		{name: "not json", status: http.StatusOK, body: `<html>`, errPart: "parse"},
		{name: "binding without target", status: http.StatusOK, binding: true,
			body: `{"price":"1","estimatedGas":"1","gasPrice":"1","estimatedPriceImpact":"0","data":"0x","value":"0","gas":"1"}`, errPart: "target"},
		{name: "binding bad calldata", status: http.StatusOK, binding: true,
			body: `{"price":"1","estimatedGas":"1","gasPrice":"1","estimatedPriceImpact":"0","to":"0xdef1c0ded9bec7f1a1670819833240f027b25eff","data":"zz","value":"0","gas":"1"}`, errPart: "calldata"},
		{name: "binding without value", status: http.StatusOK, binding: true,
			body: `{"price":"1","estimatedGas":"1","gasPrice":"1","estimatedPriceImpact":"0","to":"0xdef1c0ded9bec7f1a1670819833240f027b25eff","data":"0x","gas":"1"}`, errPart: "missing value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newZeroEx(t, tt.status, tt.body)
			var err error
			if tt.binding {
				_, err = c.GetBindingQuote(context.Background(), indexToken, ethToken, big.NewInt(1), nil, decimal.Zero)
			} else {
				_, err = c.GetIndicativePrice(context.Background(), indexToken, ethToken, big.NewInt(1))
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrQuoteUnavailable))
			assert.Contains(t, err.Error(), tt.errPart)
		})
	}
}
