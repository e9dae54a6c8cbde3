package main

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/guildlabs/guild-gateway/concurrent"
	"github.com/guildlabs/guild-gateway/eth"
	"github.com/guildlabs/guild-gateway/guild"
	"github.com/guildlabs/guild-gateway/log"
)

func dialEngine(ctx context.Context, conf Config, target guild.TargetRef) (*guild.Engine, error) {
	privateKey, err := crypto.HexToECDSA(conf.Eth.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key with error %s", err.Error())
	}

	client, err := eth.DialContext(ctx, conf.Eth.URL)
	if err != nil {
		return nil, err
	}

	logger := log.New(&conf.Logging)

	var gasPrice *big.Int
	if conf.Eth.GasPrice > 0 {
		gasPrice = big.NewInt(conf.Eth.GasPrice)
	}

	var receiptRetry *concurrent.RetryConfig
	if conf.Eth.ReceiptTimeoutMs > 0 {
		receiptRetry = &concurrent.RetryConfig{
			Random:          true,
			Attempts:        20,
			BaseExp:         2,
			BaseTimeout:     500 * time.Millisecond,
			MaxRetryTimeout: time.Duration(conf.Eth.ReceiptTimeoutMs) * time.Millisecond,
		}
	}

	submitter, err := eth.NewSubmitter(ctx, &eth.SubmitterServices{
		Logger: logger,
		Client: client,
	}, &eth.SubmitterProps{
		PrivateKey:   privateKey,
		GasPrice:     gasPrice,
		ReceiptRetry: receiptRetry,
	})
	if err != nil {
		return nil, err
	}

	registry := guild.NewRegistry()
	registry.Set(guild.Handle{Address: common.HexToAddress(conf.Invoke.Guild)})

	return guild.NewEngine(&guild.EngineServices{
		Logger:    logger,
		Resolver:  registry,
		Submitter: submitter,
	}, &guild.EngineProps{Target: target}), nil
}
