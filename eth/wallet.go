package eth

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/guildlabs/guild-gateway/errors"
)

// Wallet is an interface for any type that holds an account and
// signs transactions on its behalf
type Wallet interface {
	Address() common.Address
	SignTransaction(tx *types.Transaction) (*types.Transaction, errors.Err)
}

// KeyWallet is a Wallet derived from an in-memory ECDSA
// private key
type KeyWallet struct {
	privateKey *ecdsa.PrivateKey
	signer     types.Signer
}

// NewWallet creates a wallet for the account derived from the
// provided private key
func NewWallet(privateKey *ecdsa.PrivateKey, signer types.Signer) *KeyWallet {
	return &KeyWallet{
		privateKey: privateKey,
		signer:     signer,
	}
}

func (w *KeyWallet) Address() common.Address {
	return crypto.PubkeyToAddress(w.privateKey.PublicKey)
}

func (w *KeyWallet) SignTransaction(tx *types.Transaction) (*types.Transaction, errors.Err) {
	tx, err := types.SignTx(tx, w.signer, w.privateKey)
	if err != nil {
		return nil, errors.New(errors.ErrSignedTx, err)
	}

	return tx, nil
}
