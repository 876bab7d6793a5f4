package clients

import (
	"encoding/hex"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrivateKey(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	raw := hex.EncodeToString(crypto.FromECDSA(key))
	want := crypto.PubkeyToAddress(key.PublicKey)

	for _, in := range []string{raw, "0x" + raw, "  0X" + raw + "\n"} {
		_, addr, err := ParsePrivateKey(in)
		require.NoError(t, err)
		assert.Equal(t, want, addr)
	}
}

func TestParsePrivateKey_InvalidDoesNotEcho(t *testing.T) {
	_, _, err := ParsePrivateKey("0xnotreallyakey")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "notreallyakey")
}
