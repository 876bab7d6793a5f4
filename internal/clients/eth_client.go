package clients

import (
	"context"
	"crypto/ecdsa"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vadiminshakov/navarb/pkg/retrier"
)

// EthClient is a dialed RPC connection together with the trading account.
type EthClient struct {
	client      *ethclient.Client
	privateKey  *ecdsa.PrivateKey
	accountAddr common.Address
}

// NewEthClient dials rpcURL and checks the connection by fetching the chain id.
// Both steps are retried with r. privateKeyHex may be empty for read-only use.
func NewEthClient(ctx context.Context, rpcURL, privateKeyHex string, r *retrier.Retrier, logger *zap.Logger) (*EthClient, error) {
	c := &EthClient{}

	if privateKeyHex != "" {
		key, addr, err := ParsePrivateKey(privateKeyHex)
		if err != nil {
			return nil, err
		}
		c.privateKey = key
		c.accountAddr = addr
	}

	client, err := retrier.DoWithData(r, ctx, func(ctx context.Context) (*ethclient.Client, error) {
		cl, err := ethclient.DialContext(ctx, rpcURL)
		if err != nil {
			logger.Warn("rpc dial failed", zap.Error(err))
			return nil, err
		}
		if _, err := cl.ChainID(ctx); err != nil {
			cl.Close()
			logger.Warn("rpc chain id failed", zap.Error(err))
			return nil, err
		}
		return cl, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to rpc")
	}
	c.client = client

	return c, nil
}

// ParsePrivateKey decodes a hex key with or without a 0x prefix and derives its address.
func ParsePrivateKey(privateKeyHex string) (*ecdsa.PrivateKey, common.Address, error) {
	key := strings.TrimSpace(privateKeyHex)
	if len(key) >= 2 && (key[:2] == "0x" || key[:2] == "0X") {
		key = key[2:]
	}

	privateKey, err := crypto.HexToECDSA(key)
	if err != nil {
		// the decode error may echo key material
		return nil, common.Address{}, errors.New("invalid private key")
	}

	return privateKey, crypto.PubkeyToAddress(privateKey.PublicKey), nil
}

// Client returns the underlying RPC client.
func (c *EthClient) Client() *ethclient.Client {
	return c.client
}

// PrivateKey returns the signing key, nil in read-only mode.
func (c *EthClient) PrivateKey() *ecdsa.PrivateKey {
	return c.privateKey
}

// AccountAddress returns the address derived from the signing key.
func (c *EthClient) AccountAddress() common.Address {
	return c.accountAddr
}

// Close closes the RPC connection.
func (c *EthClient) Close() {
	if c.client != nil {
		c.client.Close()
	}
}
