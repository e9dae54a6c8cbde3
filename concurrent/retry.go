package concurrent

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	stderr "github.com/pkg/errors"
)

// ErrCannotRecover is an error that can be returned by suppliers
// to retry mechanisms so that the attempted action is not retried
type ErrCannotRecover struct {
	Cause error
}

// Error implementation of error for ErrCannotRecover
func (e ErrCannotRecover) Error() string {
	return e.Cause.Error()
}

// ErrMaxAttemptsReached is returned after attempting an action
// multiple times with failures
type ErrMaxAttemptsReached struct {
	Causes []error
}

// Error implementation of error for ErrMaxAttemptsReached
func (e ErrMaxAttemptsReached) Error() string {
	return fmt.Sprintf("maximum number of attempts %d reached", len(e.Causes))
}

const (
	defaultBaseTimeout     time.Duration = 100 * time.Millisecond
	defaultBaseExp         uint8         = 2
	defaultMaxRetryTimeout time.Duration = 10 * time.Second
	defaultAttempts        uint8         = 10
)

// RandomConfig is a retry configuration with randomized backoff
// so that concurrent retriers do not hit the endpoint in lockstep
var RandomConfig = RetryConfig{
	BaseTimeout:     defaultBaseTimeout,
	BaseExp:         defaultBaseExp,
	MaxRetryTimeout: defaultMaxRetryTimeout,
	Attempts:        defaultAttempts,
	Random:          true,
}

// Supplier is an interface for a type that provides a value. It
// abstracts any operation into a generic method that can be run
// by Retry without knowing what the operation actually does. The
// preferred way to use it is through SupplierFunc with a closure
type Supplier interface {
	// Supply executes the operation the supplier is expected to
	// perform returning its value and error
	Supply() (interface{}, error)
}

// SupplierFunc allows functions and closures to be passed as
// a Supplier
type SupplierFunc func() (interface{}, error)

// Supply is the implementation of Supplier for SupplierFunc
func (s SupplierFunc) Supply() (interface{}, error) {
	return s()
}

// RetryConfig is the configuration for the Retry utility. Look at
// RetryWithConfig for more information
type RetryConfig struct {
	// Random sets the retry to wait a random time based on the
	// exponential backoff
	Random bool

	// UnlimitedAttempts when set to true makes Attempts ignored;
	// the action is retried until it succeeds or the context stops
	UnlimitedAttempts bool

	// Attempts is the maximum number of attempts allowed
	Attempts uint8

	// BaseExp is the base exponent for the calculation of the
	// next attempt timeout using exponential backoff
	BaseExp uint8

	// BaseTimeout is the initial timeout used after the first
	// attempt fails
	BaseTimeout time.Duration

	// MaxRetryTimeout is an upper bound on the time the retry
	// waits until attempting the operation again
	MaxRetryTimeout time.Duration
}

// RetryWithConfig is an exponential backoff retry for a supplier.
// It keeps retrying the operation until it succeeds, or until the
// maximum number of attempts has been reached, in which case the
// accumulated errors are returned. A supplier that returns
// ErrCannotRecover stops the retry immediately
func RetryWithConfig(ctx context.Context, supplier Supplier, config RetryConfig) (interface{}, error) {
	var errs []error
	timeout := config.BaseTimeout.Nanoseconds()
	exp := int64(config.BaseExp)
	maxTimeout := config.MaxRetryTimeout.Nanoseconds()
	attempts := 0
	maxAttempts := int(config.Attempts)
	timer := time.NewTimer(0)

	if config.UnlimitedAttempts {
		maxAttempts = -1
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, stderr.WithStack(ctx.Err())

		case <-timer.C:
			v, err := supplier.Supply()
			if err == nil {
				return v, nil
			}

			if err, ok := err.(ErrCannotRecover); ok {
				return nil, stderr.WithStack(err.Cause)
			}

			errs = append(errs, err)
		}

		attempts++
		if attempts >= maxAttempts && maxAttempts >= 0 {
			return nil, ErrMaxAttemptsReached{Causes: errs}
		}

		timeout = timeout * exp
		multiplier := rand.Float64() + 0.5
		if timeout > maxTimeout {
			timeout = maxTimeout
			multiplier = rand.Float64() + 1
		}
		if config.Random {
			timeout = int64(multiplier*float64(timeout)) + 1
		}
		timer.Reset(time.Duration(timeout))
	}
}

// Retry is the same operation as RetryWithConfig using the
// default configuration values
func Retry(ctx context.Context, supplier Supplier) (interface{}, error) {
	return RetryWithConfig(ctx, supplier, RetryConfig{
		BaseTimeout:     defaultBaseTimeout,
		BaseExp:         defaultBaseExp,
		MaxRetryTimeout: defaultMaxRetryTimeout,
		Attempts:        defaultAttempts,
	})
}
