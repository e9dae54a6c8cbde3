package eth

import (
	"context"
	stderr "errors"
	"fmt"
	"math/big"
	"net/url"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Client is the subset of an ethereum endpoint the submitter
// relies on. *ethclient.Client implements it
type Client interface {
	ChainID(ctx context.Context) (*big.Int, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	Close()
}

// DialContext connects a Client to the endpoint at rawurl. Only
// websocket and http schemes are supported
func DialContext(ctx context.Context, rawurl string) (Client, error) {
	if len(rawurl) == 0 {
		return nil, stderr.New("no url provided for eth client")
	}

	parsed, err := url.Parse(rawurl)
	if err != nil {
		return nil, fmt.Errorf("failed to parse url %s", err.Error())
	}

	switch parsed.Scheme {
	case "ws", "wss", "http", "https":
	default:
		return nil, fmt.Errorf("url scheme %q not supported, must be one of ws, wss, http, https", parsed.Scheme)
	}

	client, err := ethclient.DialContext(ctx, rawurl)
	if err != nil {
		return nil, fmt.Errorf("failed to dial endpoint %s", err.Error())
	}

	return client, nil
}
