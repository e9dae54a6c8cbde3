package eth

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/guildlabs/guild-gateway/errors"
)

// guildABIJSON is the fixed ABI surface of a guild contract as
// far as the gateway is concerned: a single execute entry point
// that re-dispatches the wrapped call to the target contract.
// The ABI is not caller supplied
const guildABIJSON = `[
	{
		"type": "function",
		"name": "execute",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "target", "type": "address"},
			{"name": "method", "type": "string"},
			{"name": "args", "type": "bytes[]"}
		],
		"outputs": []
	}
]`

var guildABI = func() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(guildABIJSON))
	if err != nil {
		panic(fmt.Sprintf("failed to parse guild ABI: %s", err.Error()))
	}

	return parsed
}()

// PackExecute encodes the calldata for the guild's execute entry
// point: the target contract, the method name and the caller's
// argument values encoded as raw byte chunks, in that order
func PackExecute(target common.Address, method string, args []interface{}) ([]byte, errors.Err) {
	chunks := make([][]byte, 0, len(args))
	for _, arg := range args {
		chunk, err := encodeArg(arg)
		if err != nil {
			return nil, errors.New(errors.ErrUnsupportedArgument, err)
		}

		chunks = append(chunks, chunk)
	}

	data, err := guildABI.Pack("execute", target, method, chunks)
	if err != nil {
		return nil, errors.New(errors.ErrInternalError, err)
	}

	return data, nil
}

// encodeArg turns an opaque argument value into the byte chunk
// submitted to the guild. The guild contract is responsible for
// decoding the chunks for the target method
func encodeArg(v interface{}) ([]byte, error) {
	switch v := v.(type) {
	case []byte:
		return v, nil
	case common.Address:
		return v.Bytes(), nil
	case common.Hash:
		return v.Bytes(), nil
	case string:
		return []byte(v), nil
	case *big.Int:
		return v.Bytes(), nil
	case uint64:
		return new(big.Int).SetUint64(v).Bytes(), nil
	case int64:
		return big.NewInt(v).Bytes(), nil
	case int:
		return big.NewInt(int64(v)).Bytes(), nil
	case bool:
		if v {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	default:
		return nil, fmt.Errorf("argument of type %T cannot be encoded", v)
	}
}
