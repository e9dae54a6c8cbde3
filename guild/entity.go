package guild

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/guildlabs/guild-gateway/errors"
)

// ExecuteMethod is the fixed entry point exposed by every guild
// contract. The guild re-dispatches the wrapped call to the
// target contract on the caller's behalf
const ExecuteMethod = "execute"

// TargetRef identifies the contract method an engine invokes
// through the guild. The contract may be unset when the engine
// is built; invoking in that state fails with ErrMissingContract
type TargetRef struct {
	// Contract is the address of the target contract. It may be
	// nil while the application has not resolved it yet
	Contract *common.Address

	// Method is the name of the method to invoke on the target
	Method string
}

// Overrides are the transaction shaping parameters applied to the
// outer guild transaction. They never describe the inner target
// call
type Overrides struct {
	// GasLimit for the guild transaction. Zero lets the
	// transport estimate it
	GasLimit uint64

	// GasPrice for the guild transaction. Nil lets the
	// transport pick its configured price
	GasPrice *big.Int

	// Nonce for the guild transaction. Nil lets the transport
	// manage the account nonce
	Nonce *uint64

	// Value transferred along with the guild transaction
	Value *big.Int
}

// Request is a single proxied invocation request
type Request struct {
	// Args are the arguments forwarded to the target method,
	// in order. The engine treats them as opaque values
	Args []interface{}

	// Overrides shape the outer guild transaction
	Overrides Overrides

	// Metadata is an opaque application payload carried alongside
	// the request. Reserved: it is not forwarded to the transport,
	// only reported as a diagnostic
	Metadata interface{}
}

// Response is the transaction handle returned by the transport
// when the guild transaction has been committed
type Response struct {
	Hash        string `json:"transactionHash"`
	GasUsed     uint64 `json:"gasUsed"`
	BlockNumber uint64 `json:"blockNumber"`
}

// SubmitRequest is a call submission handed to the transport:
// invoke Method on Contract with Args, shaping the transaction
// with Overrides. Payload encoding is the transport's concern
type SubmitRequest struct {
	Contract  common.Address
	Method    string
	Args      []interface{}
	Overrides Overrides
}

// Submitter is the boundary to the contract call transport.
// Implementations submit the named method call and either return
// the transaction response or fail. Failures are returned to the
// engine's caller exactly as produced here
type Submitter interface {
	Submit(ctx context.Context, req SubmitRequest) (*Response, errors.Err)
}

// Invoker is implemented by types that perform a proxied
// invocation. The Engine is the canonical implementation; the
// Operation holder accepts any Invoker
type Invoker interface {
	Invoke(ctx context.Context, req Request) (*Response, errors.Err)
}

// ExecuteArgs builds the argument list submitted to the guild's
// execute entry point: the target contract, the method name and
// then the caller's arguments, in that order
func ExecuteArgs(target common.Address, method string, args []interface{}) []interface{} {
	payload := make([]interface{}, 0, len(args)+2)
	payload = append(payload, target, method)
	payload = append(payload, args...)
	return payload
}
