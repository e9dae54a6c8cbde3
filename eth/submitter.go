package eth

import (
	"context"
	"crypto/ecdsa"
	stderr "errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/guildlabs/guild-gateway/concurrent"
	"github.com/guildlabs/guild-gateway/errors"
	"github.com/guildlabs/guild-gateway/guild"
	"github.com/guildlabs/guild-gateway/log"
)

const defaultGasPrice int64 = 1000000000

var defaultSendRetry = concurrent.RetryConfig{
	Random:          false,
	Attempts:        10,
	BaseExp:         2,
	BaseTimeout:     time.Second,
	MaxRetryTimeout: 5 * time.Second,
}

var defaultReceiptRetry = concurrent.RetryConfig{
	Random:          true,
	Attempts:        20,
	BaseExp:         2,
	BaseTimeout:     500 * time.Millisecond,
	MaxRetryTimeout: 5 * time.Second,
}

// SubmitterServices are the dependencies a Submitter requires
type SubmitterServices struct {
	Logger log.Logger
	Client Client
}

// SubmitterProps are the construction parameters of a Submitter.
// ChainID may be nil, in which case it is fetched from the
// endpoint. GasPrice may be nil, in which case a default is used
// for transactions that do not override it. SendRetry and
// ReceiptRetry may be nil to use the package defaults
type SubmitterProps struct {
	PrivateKey   *ecdsa.PrivateKey
	ChainID      *big.Int
	GasPrice     *big.Int
	SendRetry    *concurrent.RetryConfig
	ReceiptRetry *concurrent.RetryConfig
}

// Submitter implements the guild.Submitter boundary on top of an
// ethereum endpoint. It owns a wallet, keeps the account nonce up
// to date and turns a call submission into a signed transaction
// to the guild contract
type Submitter struct {
	client       Client
	wallet       Wallet
	logger       log.Logger
	gasPrice     *big.Int
	sendRetry    concurrent.RetryConfig
	receiptRetry concurrent.RetryConfig

	mu    sync.Mutex
	nonce uint64
}

// NewSubmitter creates a submitter whose wallet is derived from
// the provided private key. The account nonce is read from the
// endpoint at construction time
func NewSubmitter(ctx context.Context, services *SubmitterServices, props *SubmitterProps) (*Submitter, error) {
	if props.PrivateKey == nil {
		return nil, stderr.New("no private key provided for the submitter")
	}

	chainID := props.ChainID
	if chainID == nil {
		id, err := services.Client.ChainID(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch chain id %s", err.Error())
		}
		chainID = id
	}

	gasPrice := props.GasPrice
	if gasPrice == nil {
		gasPrice = big.NewInt(defaultGasPrice)
	}

	sendRetry := defaultSendRetry
	if props.SendRetry != nil {
		sendRetry = *props.SendRetry
	}

	receiptRetry := defaultReceiptRetry
	if props.ReceiptRetry != nil {
		receiptRetry = *props.ReceiptRetry
	}

	s := &Submitter{
		client:       services.Client,
		wallet:       NewWallet(props.PrivateKey, types.LatestSignerForChainID(chainID)),
		logger:       services.Logger.ForClass("eth", "Submitter"),
		gasPrice:     gasPrice,
		sendRetry:    sendRetry,
		receiptRetry: receiptRetry,
	}

	if err := s.updateNonce(ctx); err != nil {
		return nil, err
	}

	if balance, err := s.Balance(ctx); err != nil {
		s.logger.Warn(ctx, "failed to read wallet balance", log.MapFields{
			"call_type": "BalanceFailure",
			"address":   s.wallet.Address().Hex(),
		}, err)
	} else {
		s.logger.Debug(ctx, "", log.MapFields{
			"call_type": "WalletOpened",
			"address":   s.wallet.Address().Hex(),
			"balance":   balance.String(),
		})
	}

	return s, nil
}

// Balance returns the current balance of the submitting account
func (s *Submitter) Balance(ctx context.Context) (*big.Int, errors.Err) {
	address := s.wallet.Address()
	balance, err := s.client.BalanceAt(ctx, address, nil)
	if err != nil {
		return nil, errors.New(errors.ErrInternalError, err)
	}

	return balance, nil
}

// Submit implementation of guild.Submitter. The request's
// argument list is the proxy payload built by the engine: the
// target contract, the method name and then the caller's
// arguments. Overrides shape the submitted transaction
func (s *Submitter) Submit(ctx context.Context, req guild.SubmitRequest) (*guild.Response, errors.Err) {
	data, err := s.packCall(req)
	if err != nil {
		return nil, err
	}

	gas := req.Overrides.GasLimit
	if gas == 0 {
		estimated, err := s.estimateGas(ctx, req.Contract, req.Overrides.Value, data)
		if err != nil {
			return nil, err
		}
		gas = estimated
	}

	tx, err := s.sendTransaction(ctx, req, gas, data)
	if err != nil {
		return nil, err
	}

	receipt, err := s.waitReceipt(ctx, tx.Hash())
	if err != nil {
		s.logger.Debug(ctx, "failure to retrieve transaction receipt", log.MapFields{
			"call_type": "SubmitFailure",
			"address":   req.Contract.Hex(),
			"txHash":    tx.Hash().Hex(),
		}, err)
		return nil, err
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		err := errors.New(errors.ErrTransactionReverted,
			fmt.Errorf("transaction receipt has status %d", receipt.Status))
		s.logger.Debug(ctx, "transaction execution failed", log.MapFields{
			"call_type": "SubmitFailure",
			"address":   req.Contract.Hex(),
			"txHash":    tx.Hash().Hex(),
		}, err)
		return nil, err
	}

	var blockNumber uint64
	if receipt.BlockNumber != nil {
		blockNumber = receipt.BlockNumber.Uint64()
	}

	s.logger.Debug(ctx, "transaction committed", log.MapFields{
		"call_type": "SubmitSuccess",
		"address":   req.Contract.Hex(),
		"txHash":    tx.Hash().Hex(),
		"gasUsed":   receipt.GasUsed,
	})

	return &guild.Response{
		Hash:        tx.Hash().Hex(),
		GasUsed:     receipt.GasUsed,
		BlockNumber: blockNumber,
	}, nil
}

func (s *Submitter) packCall(req guild.SubmitRequest) ([]byte, errors.Err) {
	if req.Method != guild.ExecuteMethod {
		return nil, errors.New(errors.ErrInternalError,
			fmt.Errorf("guild ABI has no entry point %q", req.Method))
	}

	if len(req.Args) < 2 {
		return nil, errors.New(errors.ErrUnsupportedArgument,
			stderr.New("proxy payload must start with the target contract and method name"))
	}

	target, ok := req.Args[0].(common.Address)
	if !ok {
		return nil, errors.New(errors.ErrUnsupportedArgument,
			fmt.Errorf("proxy payload target has type %T, expected address", req.Args[0]))
	}

	method, ok := req.Args[1].(string)
	if !ok {
		return nil, errors.New(errors.ErrUnsupportedArgument,
			fmt.Errorf("proxy payload method has type %T, expected string", req.Args[1]))
	}

	return PackExecute(target, method, req.Args[2:])
}

func (s *Submitter) estimateGas(ctx context.Context, to common.Address, value *big.Int, data []byte) (uint64, errors.Err) {
	gas, err := s.client.EstimateGas(ctx, ethereum.CallMsg{
		From:  s.wallet.Address(),
		To:    &to,
		Value: value,
		Data:  data,
	})
	if err != nil {
		err := errors.New(errors.ErrEstimateGas, err)
		s.logger.Debug(ctx, "EstimateGas request failed", log.MapFields{
			"call_type": "EstimateGasFailure",
			"address":   to.Hex(),
		}, err)
		return 0, err
	}

	return gas, nil
}

func (s *Submitter) sendTransaction(
	ctx context.Context,
	req guild.SubmitRequest,
	gas uint64,
	data []byte,
) (*types.Transaction, errors.Err) {
	v, err := concurrent.RetryWithConfig(ctx, concurrent.SupplierFunc(func() (interface{}, error) {
		tx, err := s.signTransaction(req, gas, data)
		if err != nil {
			return nil, concurrent.ErrCannotRecover{Cause: err}
		}

		if err := s.client.SendTransaction(ctx, tx); err != nil {
			if isNonceError(err) && req.Overrides.Nonce == nil {
				if uerr := s.updateNonce(ctx); uerr != nil {
					// if the nonce cannot be refreshed there is no
					// point in attempting the transaction again
					return nil, concurrent.ErrCannotRecover{Cause: uerr}
				}

				return nil, err
			}

			return nil, concurrent.ErrCannotRecover{
				Cause: errors.New(errors.ErrSendTransaction, err),
			}
		}

		return tx, nil
	}), s.sendRetry)

	if err != nil {
		if err, ok := err.(errors.Err); ok {
			return nil, err
		}

		return nil, errors.New(errors.ErrSendTransaction, err)
	}

	return v.(*types.Transaction), nil
}

func (s *Submitter) signTransaction(req guild.SubmitRequest, gas uint64, data []byte) (*types.Transaction, errors.Err) {
	var nonce uint64
	if req.Overrides.Nonce != nil {
		nonce = *req.Overrides.Nonce
	} else {
		nonce = s.transactionNonce()
	}

	gasPrice := req.Overrides.GasPrice
	if gasPrice == nil {
		gasPrice = s.gasPrice
	}

	value := req.Overrides.Value
	if value == nil {
		value = big.NewInt(0)
	}

	to := req.Contract
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    value,
		Gas:      gas,
		GasPrice: gasPrice,
		Data:     data,
	})

	return s.wallet.SignTransaction(tx)
}

func (s *Submitter) waitReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, errors.Err) {
	v, err := concurrent.RetryWithConfig(ctx, concurrent.SupplierFunc(func() (interface{}, error) {
		receipt, err := s.client.TransactionReceipt(ctx, hash)
		if err != nil {
			if stderr.Is(err, ethereum.NotFound) {
				// transaction not mined yet, keep polling
				return nil, err
			}

			return nil, concurrent.ErrCannotRecover{
				Cause: errors.New(errors.ErrTransactionReceipt, err),
			}
		}

		return receipt, nil
	}), s.receiptRetry)

	if err != nil {
		if err, ok := err.(errors.Err); ok {
			return nil, err
		}

		return nil, errors.New(errors.ErrTransactionReceipt, err)
	}

	return v.(*types.Receipt), nil
}

func (s *Submitter) transactionNonce() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	nonce := s.nonce
	s.nonce++
	return nonce
}

func (s *Submitter) updateNonce(ctx context.Context) errors.Err {
	address := s.wallet.Address()
	nonce, err := s.client.PendingNonceAt(ctx, address)
	if err != nil {
		err := errors.New(errors.ErrFetchNonce, err)
		s.logger.Debug(ctx, "PendingNonceAt request failed", log.MapFields{
			"call_type": "NonceFailure",
			"address":   address.Hex(),
		}, err)
		return err
	}

	s.mu.Lock()
	s.nonce = nonce
	s.mu.Unlock()

	s.logger.Debug(ctx, "", log.MapFields{
		"call_type": "NonceSuccess",
		"address":   address.Hex(),
		"nonce":     nonce,
	})

	return nil
}

// isNonceError reports whether the endpoint rejected a
// transaction because the account nonce it carried is stale
func isNonceError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "nonce too low") ||
		strings.Contains(msg, "nonce too high") ||
		strings.Contains(msg, "invalid nonce")
}
