package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlackNotifier_Notify(t *testing.T) {
	var got slackMessage
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, srv.Client())
	require.NoError(t, n.Notify(context.Background(), "hello"))
	assert.Equal(t, "hello", got.Text)
	assert.Equal(t, "application/json", contentType)
}

func TestSlackNotifier_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	err := NewSlackNotifier(srv.URL, srv.Client()).Notify(context.Background(), "x")
	require.EqualError(t, err, "slack webhook returned status 403")
	// carries a stack trace like every other error in the tree
	assert.Contains(t, fmt.Sprintf("%+v", err), "(*SlackNotifier).Notify")
}

func TestNew_EmptyURLIsNoop(t *testing.T) {
	n := New("")
	assert.IsType(t, Noop{}, n)
	assert.NoError(t, n.Notify(context.Background(), "ignored"))
}

func TestMessages(t *testing.T) {
	sell := common.HexToAddress("0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE")
	buy := common.HexToAddress("0x13F4196cC779275888440b3000AE533BbBbC3166")

	msg := TradeStarted(sell, buy, nil, big.NewInt(5))
	assert.Equal(t, "Sell amount: auto Buy amount: 5 Sell token: "+sell.Hex()+" Buy token: "+buy.Hex(), msg)

	hash := common.HexToHash("0x01")
	assert.Contains(t, TradeConfirmed(hash, types.ReceiptStatusSuccessful), "success")
	assert.Contains(t, TradeConfirmed(hash, types.ReceiptStatusFailed), "reverted")
}
