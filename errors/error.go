package errors

import (
	"fmt"

	"github.com/guildlabs/guild-gateway/log"
)

// Err is the error type returned by the packages in this
// repository. It carries an ErrorCode that uniquely identifies
// the failure and it knows how to report itself as log fields
type Err interface {
	Error() string
	ErrorCode() ErrorCode
	log.Loggable
}

var (
	// ErrMissingContract is returned when an invocation is attempted
	// before the target contract has been set
	ErrMissingContract = ErrorCode{
		category: InputError,
		code:     2001,
		desc:     "No target contract set for the invocation.",
	}

	// ErrMissingMethod is returned when an invocation is attempted
	// without a method name on the target
	ErrMissingMethod = ErrorCode{
		category: InputError,
		code:     2002,
		desc:     "No method name set for the invocation.",
	}

	ErrInvalidAddress = ErrorCode{
		category: InputError,
		code:     2003,
		desc:     "Provided invalid address.",
	}

	ErrUnsupportedArgument = ErrorCode{
		category: InputError,
		code:     2004,
		desc:     "Provided argument value cannot be encoded for the transport.",
	}

	// ErrMissingGuild is returned when no guild is currently active,
	// so there is no contract to route the invocation through
	ErrMissingGuild = ErrorCode{
		category: StateConflict,
		code:     4001,
		desc:     "No guild resolved. An active guild is required to route the call.",
	}

	ErrInternalError = ErrorCode{
		category: InternalError,
		code:     1000,
		desc:     "Internal Error. Please check the status of the service.",
	}

	ErrEstimateGas = ErrorCode{
		category: InternalError,
		code:     1001,
		desc:     "Internal Error. Please check the status of the service.",
	}

	ErrSignedTx = ErrorCode{
		category: InternalError,
		code:     1002,
		desc:     "Internal Error. Please check the status of the service.",
	}

	ErrSendTransaction = ErrorCode{
		category: InternalError,
		code:     1003,
		desc:     "Internal Error. Please check the status of the service.",
	}

	ErrTransactionReceipt = ErrorCode{
		category: InternalError,
		code:     1004,
		desc:     "Internal Error. Please check the status of the service.",
	}

	ErrTransactionReverted = ErrorCode{
		category: InternalError,
		code:     1005,
		desc:     "Transaction was committed but its execution failed.",
	}

	ErrFetchNonce = ErrorCode{
		category: InternalError,
		code:     1006,
		desc:     "Internal Error. Please check the status of the service.",
	}
)

// Category defines error categories that logically group errors
// together. The classification may be used to map errors to a
// transport specific representation
type Category string

const (
	// InternalError refers to errors related to programming errors
	// or other unexpected errors in the normal execution of an
	// action, such as failing to reach the chain endpoint. The only
	// action a user can take out of an InternalError is to reach
	// out to the operator
	InternalError Category = "InternalError"

	// InputError refers to errors that are returned because the
	// input provided to execute an action is incorrect, malformed
	// or could not be parsed
	InputError Category = "InputError"

	// StateConflict refers to errors that occur because an action
	// is attempted against application state that does not allow
	// it, such as invoking through a guild that is not set
	StateConflict Category = "StateConflict"
)

// Error is the implementation of Err for this package. It contains
// an ErrorCode which identifies the error and a cause which may be
// nil if there is no underlying failure
type Error struct {
	cause     error
	errorCode ErrorCode
}

func (e Error) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("[%d] error code %s with desc %s",
			e.errorCode.Code(), e.errorCode.Category(), e.errorCode.Desc())
	}

	return fmt.Sprintf("[%d] error code %s with desc %s with cause %s",
		e.errorCode.Code(), e.errorCode.Category(), e.errorCode.Desc(), e.cause)
}

// ErrorCode getter for the error's code
func (e Error) ErrorCode() ErrorCode {
	return e.errorCode
}

// Cause returns the underlying error, if any
func (e Error) Cause() error {
	return e.cause
}

// Unwrap allows errors.Is and errors.As from the standard library
// to reach the underlying cause
func (e Error) Unwrap() error {
	return e.cause
}

// Log implementation of log.Loggable
func (e Error) Log(fields log.Fields) {
	fields.Add("err", e.errorCode.Desc())
	fields.Add("errorCode", e.errorCode.Code())

	if e.cause != nil {
		fields.Add("cause", e.cause)
	}
}

// New creates a new instance of an error
func New(errorCode ErrorCode, cause error) Error {
	return Error{cause: cause, errorCode: errorCode}
}

// ErrorCode holds the necessary information to uniquely identify
// an error and make sure that a valuable response is returned to
// the user in case of encountering an error
type ErrorCode struct {
	category Category
	code     int
	desc     string
}

// Category getter for category
func (e ErrorCode) Category() Category {
	return e.category
}

// Code getter for code
func (e ErrorCode) Code() int {
	return e.code
}

// Desc getter for desc
func (e ErrorCode) Desc() string {
	return e.desc
}
