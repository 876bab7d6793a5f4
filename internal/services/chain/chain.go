// Package chain reads balances and contract state from an EVM chain and submits signed transactions.
package chain

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vadiminshakov/navarb/internal/domain"
)

// Backend is the part of *ethclient.Client used here.
type Backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	NonceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (uint64, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
}

// TxRequest holds the fields of an unsigned legacy transaction.
type TxRequest struct {
	To       common.Address
	Data     []byte
	Value    *big.Int
	Gas      uint64
	GasPrice *big.Int
	Nonce    uint64
}

// Chain wraps a Backend together with the trading account's signing key.
type Chain struct {
	backend Backend
	chainID *big.Int
	key     *ecdsa.PrivateKey
	sender  common.Address
	logger  *zap.Logger
}

// New creates a Chain. key may be nil for read-only use, SignAndSend then fails.
func New(ctx context.Context, backend Backend, key *ecdsa.PrivateKey, logger *zap.Logger) (*Chain, error) {
	chainID, err := backend.ChainID(ctx)
	if err != nil {
		return nil, domain.NewError(domain.KindChainRead, "chain.id", err)
	}

	c := &Chain{
		backend: backend,
		chainID: chainID,
		key:     key,
		logger:  logger,
	}
	if key != nil {
		c.sender = crypto.PubkeyToAddress(key.PublicKey)
	}

	return c, nil
}

// ChainID returns the id the Chain signs for.
func (c *Chain) ChainID() *big.Int {
	return new(big.Int).Set(c.chainID)
}

// Sender returns the address derived from the signing key.
func (c *Chain) Sender() common.Address {
	return c.sender
}

// GetBalance returns the native balance of addr in wei at the latest block.
func (c *Chain) GetBalance(ctx context.Context, addr common.Address) (*big.Int, error) {
	bal, err := c.backend.BalanceAt(ctx, addr, nil)
	if err != nil {
		return nil, domain.NewError(domain.KindChainRead, "chain.balance", errors.Wrapf(err, "balance of %s", addr.Hex()))
	}
	return bal, nil
}

// GetTokenBalance returns ERC-20 balanceOf(owner) in raw units.
func (c *Chain) GetTokenBalance(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	out, err := c.Call(ctx, token, ERC20ABI, "balanceOf", owner)
	if err != nil {
		return nil, err
	}
	bal, ok := out[0].(*big.Int)
	if !ok {
		return nil, domain.Errorf(domain.KindChainRead, "chain.token_balance", "unexpected balanceOf type %T", out[0])
	}
	return bal, nil
}

// GetTransactionCount returns the latest confirmed nonce of addr.
func (c *Chain) GetTransactionCount(ctx context.Context, addr common.Address) (uint64, error) {
	nonce, err := c.backend.NonceAt(ctx, addr, nil)
	if err != nil {
		return 0, domain.NewError(domain.KindChainRead, "chain.nonce", errors.Wrapf(err, "nonce of %s", addr.Hex()))
	}
	return nonce, nil
}

// Call packs method with args, executes eth_call against contract and unpacks the result.
// An empty result set is an error.
func (c *Chain) Call(ctx context.Context, contract common.Address, contractABI abi.ABI, method string, args ...any) ([]any, error) {
	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, domain.NewError(domain.KindChainRead, "chain.call", errors.Wrapf(err, "pack %s", method))
	}

	raw, err := c.backend.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: data}, nil)
	if err != nil {
		return nil, domain.NewError(domain.KindChainRead, "chain.call", errors.Wrapf(err, "%s on %s", method, contract.Hex()))
	}

	out, err := contractABI.Unpack(method, raw)
	if err != nil {
		return nil, domain.NewError(domain.KindChainRead, "chain.call", errors.Wrapf(err, "unpack %s", method))
	}
	if len(out) == 0 {
		return nil, domain.Errorf(domain.KindChainRead, "chain.call", "%s returned no values", method)
	}

	return out, nil
}

// SignAndSend signs req with the configured key and broadcasts it.
// The returned transaction carries the hash; it is not yet confirmed.
func (c *Chain) SignAndSend(ctx context.Context, req TxRequest) (*types.Transaction, error) {
	if c.key == nil {
		return nil, domain.Errorf(domain.KindSubmission, "chain.sign", "no signing key configured")
	}

	value := req.Value
	if value == nil {
		value = new(big.Int)
	}
	to := req.To
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    req.Nonce,
		GasPrice: req.GasPrice,
		Gas:      req.Gas,
		To:       &to,
		Value:    value,
		Data:     req.Data,
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(c.chainID), c.key)
	if err != nil {
		return nil, domain.NewError(domain.KindSubmission, "chain.sign", err)
	}

	if err := c.backend.SendTransaction(ctx, signed); err != nil {
		return nil, domain.NewError(domain.KindSubmission, "chain.send", err)
	}

	c.logger.Info("transaction submitted",
		zap.String("hash", signed.Hash().Hex()),
		zap.String("to", to.Hex()),
		zap.Uint64("nonce", req.Nonce),
	)

	return signed, nil
}

// WaitForReceipt blocks until tx is mined. A zero timeout waits until ctx is done.
// The receipt is returned whatever its status.
func (c *Chain) WaitForReceipt(ctx context.Context, tx *types.Transaction, timeout time.Duration) (*types.Receipt, error) {
	waitCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	receipt, err := bind.WaitMined(waitCtx, c.backend, tx)
	if err != nil {
		return nil, domain.NewError(domain.KindConfirmation, "chain.wait", errors.Wrapf(err, "wait for %s", tx.Hash().Hex()))
	}

	return receipt, nil
}
