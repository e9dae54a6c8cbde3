package eth

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guildlabs/guild-gateway/errors"
)

func TestPackExecuteRoundTrip(t *testing.T) {
	target := common.HexToAddress("0x1000000000000000000000000000000000000001")
	other := common.HexToAddress("0x3000000000000000000000000000000000000003")

	data, err := PackExecute(target, "transfer", []interface{}{
		other,
		big.NewInt(1024),
		"memo",
		[]byte{0xca, 0xfe},
		true,
	})
	require.Nil(t, err)

	method := guildABI.Methods["execute"]
	assert.Equal(t, method.ID, data[:4])

	values, uerr := method.Inputs.Unpack(data[4:])
	require.NoError(t, uerr)
	require.Len(t, values, 3)

	assert.Equal(t, target, values[0].(common.Address))
	assert.Equal(t, "transfer", values[1].(string))

	chunks := values[2].([][]byte)
	require.Len(t, chunks, 5)
	assert.Equal(t, other.Bytes(), chunks[0])
	assert.Equal(t, big.NewInt(1024).Bytes(), chunks[1])
	assert.Equal(t, []byte("memo"), chunks[2])
	assert.Equal(t, []byte{0xca, 0xfe}, chunks[3])
	assert.Equal(t, []byte{1}, chunks[4])
}

func TestPackExecuteNoArgs(t *testing.T) {
	target := common.HexToAddress("0x1000000000000000000000000000000000000001")

	data, err := PackExecute(target, "ping", nil)
	require.Nil(t, err)

	values, uerr := guildABI.Methods["execute"].Inputs.Unpack(data[4:])
	require.NoError(t, uerr)
	assert.Empty(t, values[2].([][]byte))
}

func TestPackExecuteUnsupportedArgument(t *testing.T) {
	target := common.HexToAddress("0x1000000000000000000000000000000000000001")

	_, err := PackExecute(target, "transfer", []interface{}{
		map[string]string{"k": "v"},
	})
	require.Error(t, err)
	assert.Equal(t, errors.ErrUnsupportedArgument, err.ErrorCode())
}

func TestEncodeArgInteger(t *testing.T) {
	for _, v := range []interface{}{uint64(255), int64(255), int(255)} {
		chunk, err := encodeArg(v)
		require.NoError(t, err)
		assert.Equal(t, []byte{0xff}, chunk)
	}
}
