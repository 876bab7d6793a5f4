package config

import (
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// NetworkProfile holds the per-chain endpoints and token addresses.
type NetworkProfile struct {
	Name          string
	PriceEndpoint string
	QuoteEndpoint string
	NativeToken   common.Address
	IndexToken    common.Address
	RPCURL        string
}

// 0x uses this sentinel for the chain's native token
var nativeTokenSentinel = common.HexToAddress("0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE")

var builtinNetworks = map[string]NetworkProfile{
	"base": {
		Name:          "base",
		PriceEndpoint: "https://base.api.0x.org/swap/v1/price",
		QuoteEndpoint: "https://base.api.0x.org/swap/v1/quote",
		NativeToken:   nativeTokenSentinel,
		IndexToken:    common.HexToAddress("0x13F4196cC779275888440b3000AE533BbBbC3166"),
		RPCURL:        "https://mainnet.base.org",
	},
}

// NetworkTmp is the yaml form of a network profile.
type NetworkTmp struct {
	PriceEndpoint string `yaml:"price_endpoint" validate:"required,url"`
	QuoteEndpoint string `yaml:"quote_endpoint" validate:"required,url"`
	NativeToken   string `yaml:"native_token,omitempty" validate:"omitempty,eth_addr"`
	IndexToken    string `yaml:"index_token" validate:"required,eth_addr"`
	RPCURL        string `yaml:"rpc_url" validate:"required"`
}

// resolveNetwork looks name up in the yaml profiles first, then in the built-in ones.
func resolveNetwork(name string, custom map[string]NetworkTmp) (NetworkProfile, error) {
	if n, ok := custom[name]; ok {
		native := nativeTokenSentinel
		if n.NativeToken != "" {
			native = common.HexToAddress(n.NativeToken)
		}
		return NetworkProfile{
			Name:          name,
			PriceEndpoint: n.PriceEndpoint,
			QuoteEndpoint: n.QuoteEndpoint,
			NativeToken:   native,
			IndexToken:    common.HexToAddress(n.IndexToken),
			RPCURL:        n.RPCURL,
		}, nil
	}

	if p, ok := builtinNetworks[name]; ok {
		return p, nil
	}

	return NetworkProfile{}, errors.Errorf("unsupported network %q, known: %v", name, knownNetworks(custom))
}

func knownNetworks(custom map[string]NetworkTmp) []string {
	names := make([]string, 0, len(builtinNetworks)+len(custom))
	for n := range builtinNetworks {
		names = append(names, n)
	}
	for n := range custom {
		if _, ok := builtinNetworks[n]; !ok {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

// NetworkNames lists the built-in network profiles.
func NetworkNames() []string {
	return knownNetworks(nil)
}
