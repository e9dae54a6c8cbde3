package ethtest

import (
	"context"
	"math/big"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/mock"
)

type MockClient struct {
	mock.Mock
}

func (c *MockClient) ChainID(ctx context.Context) (*big.Int, error) {
	args := c.Called(ctx)
	if args.Get(1) != nil {
		return nil, args.Get(1).(error)
	}

	return args.Get(0).(*big.Int), nil
}

func (c *MockClient) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	args := c.Called(ctx, account, blockNumber)
	if args.Get(1) != nil {
		return nil, args.Get(1).(error)
	}

	return args.Get(0).(*big.Int), nil
}

func (c *MockClient) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	args := c.Called(ctx, account)
	if args.Get(1) != nil {
		return 0, args.Get(1).(error)
	}

	return args.Get(0).(uint64), nil
}

func (c *MockClient) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	args := c.Called(ctx, msg)
	if args.Get(1) != nil {
		return 0, args.Get(1).(error)
	}

	return args.Get(0).(uint64), nil
}

func (c *MockClient) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	args := c.Called(ctx, tx)
	if args.Get(0) != nil {
		return args.Get(0).(error)
	}

	return nil
}

func (c *MockClient) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	args := c.Called(ctx, txHash)
	if args.Get(1) != nil {
		return nil, args.Get(1).(error)
	}

	return args.Get(0).(*types.Receipt), nil
}

func (c *MockClient) Close() {
	c.Called()
}
