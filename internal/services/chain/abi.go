package chain

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const erc20ABIJSON = `[
	{"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"type":"function"}
]`

// index tokens built on Set Protocol expose per-token component units
const indexTokenABIJSON = `[
	{"inputs":[{"name":"_component","type":"address"}],"name":"getDefaultPositionRealUnit","outputs":[{"name":"","type":"int256"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"getComponents","outputs":[{"name":"","type":"address[]"}],"stateMutability":"view","type":"function"}
]`

var (
	ERC20ABI      = mustParseABI(erc20ABIJSON)
	IndexTokenABI = mustParseABI(indexTokenABIJSON)
)

// RateViewABI builds a single-method ABI for a no-argument view returning uint256,
// such as wstETH.stEthPerToken().
func RateViewABI(method string) (abi.ABI, error) {
	return abi.JSON(strings.NewReader(`[{"inputs":[],"name":"` + method +
		`","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"}]`))
}

func mustParseABI(s string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(err)
	}
	return parsed
}
