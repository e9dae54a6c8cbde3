package eth_test

import (
	"context"
	"crypto/ecdsa"
	stderr "errors"
	"io"
	"math/big"
	"testing"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/guildlabs/guild-gateway/concurrent"
	"github.com/guildlabs/guild-gateway/errors"
	"github.com/guildlabs/guild-gateway/eth"
	"github.com/guildlabs/guild-gateway/eth/ethtest"
	"github.com/guildlabs/guild-gateway/guild"
	"github.com/guildlabs/guild-gateway/log"
)

var (
	Context = context.Background()
	Logger  = log.NewLogrus(log.LogrusProps{
		Level:  logrus.DebugLevel,
		Output: io.Discard,
	})

	chainID    = big.NewInt(1337)
	targetAddr = common.HexToAddress("0x1000000000000000000000000000000000000001")
	guildAddr  = common.HexToAddress("0x2000000000000000000000000000000000000002")
)

var fastRetry = concurrent.RetryConfig{
	Random:          false,
	Attempts:        4,
	BaseExp:         1,
	BaseTimeout:     time.Millisecond,
	MaxRetryTimeout: 10 * time.Millisecond,
}

func testKey() *ecdsa.PrivateKey {
	key, err := crypto.HexToECDSA("b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291")
	if err != nil {
		panic(err)
	}

	return key
}

func newSubmitter(t *testing.T, client *ethtest.MockClient) *eth.Submitter {
	client.On("PendingNonceAt", mock.Anything, mock.Anything).
		Return(uint64(5), nil).Once()
	client.On("BalanceAt", mock.Anything, mock.Anything, mock.Anything).
		Return(big.NewInt(1000000000000000000), nil).Once()

	s, err := eth.NewSubmitter(Context, &eth.SubmitterServices{
		Logger: Logger,
		Client: client,
	}, &eth.SubmitterProps{
		PrivateKey:   testKey(),
		ChainID:      chainID,
		SendRetry:    &fastRetry,
		ReceiptRetry: &fastRetry,
	})
	require.Nil(t, err)

	return s
}

func submitRequest(args ...interface{}) guild.SubmitRequest {
	return guild.SubmitRequest{
		Contract: guildAddr,
		Method:   guild.ExecuteMethod,
		Args:     guild.ExecuteArgs(targetAddr, "transfer", args),
	}
}

func successReceipt(gasUsed uint64) *types.Receipt {
	return &types.Receipt{
		Status:      types.ReceiptStatusSuccessful,
		GasUsed:     gasUsed,
		BlockNumber: big.NewInt(42),
	}
}

func TestSubmitProxiedCall(t *testing.T) {
	client := &ethtest.MockClient{}
	s := newSubmitter(t, client)

	var sent *types.Transaction
	client.On("EstimateGas", mock.Anything, mock.Anything).
		Return(uint64(90000), nil)
	client.On("SendTransaction", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			sent = args.Get(1).(*types.Transaction)
		}).Return(nil)
	client.On("TransactionReceipt", mock.Anything, mock.Anything).
		Return(successReceipt(21500), nil)

	res, err := s.Submit(Context, submitRequest([]byte{0xca, 0xfe}, uint64(10)))
	require.Nil(t, err)
	require.NotNil(t, sent)

	assert.Equal(t, guildAddr, *sent.To())
	assert.Equal(t, uint64(5), sent.Nonce())
	assert.Equal(t, uint64(90000), sent.Gas())
	assert.Equal(t, big.NewInt(1000000000), sent.GasPrice())

	data, derr := eth.PackExecute(targetAddr, "transfer",
		[]interface{}{[]byte{0xca, 0xfe}, uint64(10)})
	require.Nil(t, derr)
	assert.Equal(t, data, sent.Data())

	assert.Equal(t, sent.Hash().Hex(), res.Hash)
	assert.Equal(t, uint64(21500), res.GasUsed)
	assert.Equal(t, uint64(42), res.BlockNumber)
}

func TestSubmitOverrides(t *testing.T) {
	client := &ethtest.MockClient{}
	s := newSubmitter(t, client)

	var sent *types.Transaction
	client.On("SendTransaction", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			sent = args.Get(1).(*types.Transaction)
		}).Return(nil)
	client.On("TransactionReceipt", mock.Anything, mock.Anything).
		Return(successReceipt(1000), nil)

	nonce := uint64(9)
	req := submitRequest([]byte{0x01})
	req.Overrides = guild.Overrides{
		GasLimit: 50000,
		GasPrice: big.NewInt(77),
		Nonce:    &nonce,
		Value:    big.NewInt(3),
	}

	_, err := s.Submit(Context, req)
	require.Nil(t, err)
	require.NotNil(t, sent)

	client.AssertNotCalled(t, "EstimateGas", mock.Anything, mock.Anything)
	assert.Equal(t, uint64(50000), sent.Gas())
	assert.Equal(t, big.NewInt(77), sent.GasPrice())
	assert.Equal(t, uint64(9), sent.Nonce())
	assert.Equal(t, big.NewInt(3), sent.Value())
}

func TestSubmitTransactionReverted(t *testing.T) {
	client := &ethtest.MockClient{}
	s := newSubmitter(t, client)

	client.On("EstimateGas", mock.Anything, mock.Anything).
		Return(uint64(90000), nil)
	client.On("SendTransaction", mock.Anything, mock.Anything).
		Return(nil)
	client.On("TransactionReceipt", mock.Anything, mock.Anything).
		Return(&types.Receipt{
			Status:      types.ReceiptStatusFailed,
			BlockNumber: big.NewInt(42),
		}, nil)

	res, err := s.Submit(Context, submitRequest([]byte{0x01}))
	assert.Nil(t, res)
	require.Error(t, err)
	assert.Equal(t, errors.ErrTransactionReverted, err.ErrorCode())
}

func TestSubmitSendFailure(t *testing.T) {
	client := &ethtest.MockClient{}
	s := newSubmitter(t, client)

	client.On("EstimateGas", mock.Anything, mock.Anything).
		Return(uint64(90000), nil)
	client.On("SendTransaction", mock.Anything, mock.Anything).
		Return(stderr.New("connection refused"))

	res, err := s.Submit(Context, submitRequest([]byte{0x01}))
	assert.Nil(t, res)
	require.Error(t, err)
	assert.Equal(t, errors.ErrSendTransaction, err.ErrorCode())
	client.AssertNumberOfCalls(t, "SendTransaction", 1)
}

func TestSubmitNonceRefresh(t *testing.T) {
	client := &ethtest.MockClient{}
	s := newSubmitter(t, client)

	var sent *types.Transaction
	client.On("EstimateGas", mock.Anything, mock.Anything).
		Return(uint64(90000), nil)
	client.On("SendTransaction", mock.Anything, mock.Anything).
		Return(stderr.New("nonce too low")).Once()
	client.On("PendingNonceAt", mock.Anything, mock.Anything).
		Return(uint64(7), nil).Once()
	client.On("SendTransaction", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			sent = args.Get(1).(*types.Transaction)
		}).Return(nil).Once()
	client.On("TransactionReceipt", mock.Anything, mock.Anything).
		Return(successReceipt(1000), nil)

	_, err := s.Submit(Context, submitRequest([]byte{0x01}))
	require.Nil(t, err)
	require.NotNil(t, sent)

	// the retried transaction carries the refreshed account nonce
	assert.Equal(t, uint64(7), sent.Nonce())
}

func TestSubmitReceiptPolling(t *testing.T) {
	client := &ethtest.MockClient{}
	s := newSubmitter(t, client)

	client.On("EstimateGas", mock.Anything, mock.Anything).
		Return(uint64(90000), nil)
	client.On("SendTransaction", mock.Anything, mock.Anything).
		Return(nil)
	client.On("TransactionReceipt", mock.Anything, mock.Anything).
		Return(nil, ethereum.NotFound).Twice()
	client.On("TransactionReceipt", mock.Anything, mock.Anything).
		Return(successReceipt(1000), nil).Once()

	res, err := s.Submit(Context, submitRequest([]byte{0x01}))
	require.Nil(t, err)
	assert.Equal(t, uint64(1000), res.GasUsed)
	client.AssertNumberOfCalls(t, "TransactionReceipt", 3)
}

func TestSubmitUnsupportedArgument(t *testing.T) {
	client := &ethtest.MockClient{}
	s := newSubmitter(t, client)

	res, err := s.Submit(Context, submitRequest(struct{ A int }{A: 1}))
	assert.Nil(t, res)
	require.Error(t, err)
	assert.Equal(t, errors.ErrUnsupportedArgument, err.ErrorCode())
	client.AssertNotCalled(t, "EstimateGas", mock.Anything, mock.Anything)
	client.AssertNotCalled(t, "SendTransaction", mock.Anything, mock.Anything)
}

func TestSubmitterBalance(t *testing.T) {
	client := &ethtest.MockClient{}
	s := newSubmitter(t, client)

	client.On("BalanceAt", mock.Anything, mock.Anything, mock.Anything).
		Return(big.NewInt(42), nil).Once()

	balance, err := s.Balance(Context)
	require.Nil(t, err)
	assert.Equal(t, big.NewInt(42), balance)
}

func TestSubmitEstimateGasFailure(t *testing.T) {
	client := &ethtest.MockClient{}
	s := newSubmitter(t, client)

	client.On("EstimateGas", mock.Anything, mock.Anything).
		Return(uint64(0), stderr.New("execution reverted"))

	res, err := s.Submit(Context, submitRequest([]byte{0x01}))
	assert.Nil(t, res)
	require.Error(t, err)
	assert.Equal(t, errors.ErrEstimateGas, err.ErrorCode())
	client.AssertNotCalled(t, "SendTransaction", mock.Anything, mock.Anything)
}
