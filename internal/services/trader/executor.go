// Package trader turns a trade decision into a confirmed on-chain swap.
package trader

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vadiminshakov/navarb/internal/domain"
	"github.com/vadiminshakov/navarb/internal/services/chain"
	"github.com/vadiminshakov/navarb/internal/services/notifier"
)

// Quoter returns an executable swap quote.
type Quoter interface {
	GetBindingQuote(ctx context.Context, sellToken, buyToken common.Address, sellAmount, buyAmount *big.Int, maxSlippage decimal.Decimal) (domain.SwapQuote, error)
}

// ChainWriter submits transactions and waits for their receipts.
type ChainWriter interface {
	GetTransactionCount(ctx context.Context, addr common.Address) (uint64, error)
	SignAndSend(ctx context.Context, req chain.TxRequest) (*types.Transaction, error)
	WaitForReceipt(ctx context.Context, tx *types.Transaction, timeout time.Duration) (*types.Receipt, error)
}

// Config holds the static parameters of the executor.
type Config struct {
	Account       common.Address
	NativeToken   common.Address
	IndexToken    common.Address
	IndexDecimals uint8
	MaxSlippage   decimal.Decimal

	// ConfirmationTimeout of zero waits until the receipt arrives.
	ConfirmationTimeout time.Duration

	// DryRun stops after the binding quote; nothing is signed or sent.
	DryRun bool
}

// Executor runs quote, notify, build, sign, submit, confirm, notify.
type Executor struct {
	cfg      Config
	quoter   Quoter
	chain    ChainWriter
	notifier notifier.Notifier
	logger   *zap.Logger
}

// NewExecutor creates an Executor.
func NewExecutor(cfg Config, quoter Quoter, chain ChainWriter, n notifier.Notifier, logger *zap.Logger) *Executor {
	if n == nil {
		n = notifier.Noop{}
	}
	return &Executor{
		cfg:      cfg,
		quoter:   quoter,
		chain:    chain,
		notifier: n,
		logger:   logger,
	}
}

// Execute carries out decision. It returns nil, nil for NoTrade and in dry-run mode.
// A reverted transaction returns its receipt together with a confirmation error.
func (e *Executor) Execute(ctx context.Context, decision domain.TradeDecision) (*types.Receipt, error) {
	direction, ok := decision.Direction()
	if !ok {
		return nil, nil
	}

	l := e.logger.With(
		zap.String("trade_id", uuid.New().String()),
		zap.String("direction", direction.String()),
		zap.String("amount", decision.Amount.String()),
	)

	amount := domain.FromDecimal(decision.Amount, e.cfg.IndexDecimals)
	if amount.Sign() <= 0 {
		return nil, errors.Errorf("trade amount %s is not positive", decision.Amount.String())
	}

	sellToken, buyToken := e.cfg.IndexToken, e.cfg.NativeToken
	var sellAmount, buyAmount *big.Int
	if direction == domain.DirectionBuy {
		// spend native tokens for an exact amount of index tokens
		sellToken, buyToken = e.cfg.NativeToken, e.cfg.IndexToken
		buyAmount = amount
	} else {
		sellAmount = amount
	}

	quote, err := e.quoter.GetBindingQuote(ctx, sellToken, buyToken, sellAmount, buyAmount, e.cfg.MaxSlippage)
	if err != nil {
		return nil, errors.Wrap(err, "binding quote")
	}
	l.Info("binding quote received",
		zap.String("to", quote.To.Hex()),
		zap.String("value", bigString(quote.Value)),
		zap.Uint64("gas", quote.EstimatedGas),
		zap.String("gas_price", bigString(quote.GasPriceWei)),
	)

	if e.cfg.DryRun {
		l.Info("dry run, transaction not submitted")
		return nil, nil
	}

	e.notify(ctx, l, notifier.TradeStarted(sellToken, buyToken, sellAmount, buyAmount))

	nonce, err := e.chain.GetTransactionCount(ctx, e.cfg.Account)
	if err != nil {
		return nil, errors.Wrap(err, "nonce")
	}

	tx, err := e.chain.SignAndSend(ctx, chain.TxRequest{
		To:       quote.To,
		Data:     quote.Calldata,
		Value:    quote.Value,
		Gas:      quote.EstimatedGas,
		GasPrice: quote.GasPriceWei,
		Nonce:    nonce,
	})
	if err != nil {
		return nil, errors.Wrap(err, "submit")
	}
	l = l.With(zap.String("tx_hash", tx.Hash().Hex()))
	l.Info("transaction sent")

	receipt, err := e.chain.WaitForReceipt(ctx, tx, e.cfg.ConfirmationTimeout)
	if err != nil {
		return nil, errors.Wrap(err, "confirm")
	}

	e.notify(ctx, l, notifier.TradeConfirmed(tx.Hash(), receipt.Status))

	if receipt.Status != types.ReceiptStatusSuccessful {
		l.Error("transaction reverted", zap.Uint64("gas_used", receipt.GasUsed))
		return receipt, domain.Errorf(domain.KindConfirmation, "trader.execute", "transaction %s reverted", tx.Hash().Hex())
	}

	l.Info("transaction confirmed", zap.Uint64("gas_used", receipt.GasUsed), zap.String("block", bigString(receipt.BlockNumber)))

	return receipt, nil
}

// notify is best effort: failures are logged and never abort the trade.
func (e *Executor) notify(ctx context.Context, l *zap.Logger, text string) {
	if err := e.notifier.Notify(ctx, text); err != nil {
		l.Warn("notification failed", zap.Error(err))
	}
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
