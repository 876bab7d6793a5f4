package notifier

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// TradeStarted formats the notification sent before a swap is submitted.
// A nil amount is the side the aggregator solves for.
func TradeStarted(sellToken, buyToken common.Address, sellAmount, buyAmount *big.Int) string {
	return fmt.Sprintf("Sell amount: %s Buy amount: %s Sell token: %s Buy token: %s",
		amountText(sellAmount), amountText(buyAmount), sellToken.Hex(), buyToken.Hex())
}

// TradeConfirmed formats the notification sent once a receipt is available.
func TradeConfirmed(hash common.Hash, status uint64) string {
	result := "success"
	if status != types.ReceiptStatusSuccessful {
		result = "reverted"
	}
	return fmt.Sprintf("Transaction confirmed! Hash: %s Status: %s", hash.Hex(), result)
}

// CycleFailed formats an error notification for a skipped cycle.
func CycleFailed(cycleID, kind string, err error) string {
	return fmt.Sprintf("Cycle %s skipped (%s): %v", cycleID, kind, err)
}

func amountText(v *big.Int) string {
	if v == nil {
		return "auto"
	}
	return v.String()
}
