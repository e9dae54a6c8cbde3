package guild

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/guildlabs/guild-gateway/errors"
	"github.com/guildlabs/guild-gateway/log"
	"github.com/guildlabs/guild-gateway/metrics"
)

// State is the lifecycle state of an Operation
type State string

const (
	// StateIdle is the initial state, and the state after a
	// reset. No data and no error are held
	StateIdle State = "idle"

	// StatePending is the state while an invocation is in
	// flight on the transport
	StatePending State = "pending"

	// StateSucceeded holds the response of the latest
	// invocation until the next invoke or reset
	StateSucceeded State = "succeeded"

	// StateFailed holds the failure of the latest invocation
	// until the next invoke or reset
	StateFailed State = "failed"
)

// Snapshot is the externally observable view of an Operation
type Snapshot struct {
	State   State
	Data    *Response
	Err     errors.Err
	Loading bool
}

// Log implementation of log.Loggable
func (s Snapshot) Log(fields log.Fields) {
	fields.Add("state", string(s.State))
	fields.Add("loading", s.Loading)
}

// OperationServices are the dependencies an Operation requires.
// Metrics may be nil, in which case no metrics are collected
type OperationServices struct {
	Logger  log.Logger
	Invoker Invoker
	Metrics *metrics.Invocations
}

// Operation wraps an Invoker in an observable state machine. It
// starts Idle, transitions to Pending when an invocation starts
// and to Succeeded or Failed when the transport responds; Reset
// returns it to Idle at any time. The operation is reusable
// indefinitely.
//
// Admission policy is latest-wins: a second Invoke issued while
// one is still Pending is neither queued nor rejected. Each
// invocation is tagged with a generation; only the response for
// the current generation updates the observable state, so a late
// response from a superseded or reset invocation is dropped. The
// caller of a superseded Invoke still receives its own result.
// Reset does not abort the in-flight transport call, it only
// invalidates its generation
type Operation struct {
	mu         sync.Mutex
	invoker    Invoker
	logger     log.Logger
	collector  *metrics.Invocations
	generation uint64
	state      State
	data       *Response
	err        errors.Err
	watchers   map[chan<- Snapshot]struct{}
}

// NewOperation creates a new operation in the Idle state
func NewOperation(services *OperationServices) *Operation {
	if services.Invoker == nil {
		panic("Invoker must be set")
	}

	if services.Logger == nil {
		panic("Logger must be set")
	}

	return &Operation{
		invoker:   services.Invoker,
		logger:    services.Logger.ForClass("guild", "Operation"),
		collector: services.Metrics,
		state:     StateIdle,
		watchers:  make(map[chan<- Snapshot]struct{}),
	}
}

// State returns the current snapshot of the operation
func (o *Operation) State() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshot()
}

// Watch registers a channel that receives a snapshot on every
// state change. Sends never block: a watcher that does not keep
// up misses intermediate snapshots, so watcher channels should
// be buffered
func (o *Operation) Watch(c chan<- Snapshot) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.watchers[c] = struct{}{}
}

// Unwatch removes a channel registered with Watch
func (o *Operation) Unwatch(c chan<- Snapshot) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.watchers, c)
}

// Invoke runs the underlying invoker, tracking its lifecycle in
// the operation's state. It blocks until the invocation finishes
// and returns the invoker's result to the caller; run it on its
// own goroutine to observe the Pending state from outside. The
// returned failure and the failure held in the snapshot are the
// same value
func (o *Operation) Invoke(ctx context.Context, req Request) (*Response, errors.Err) {
	o.mu.Lock()
	o.generation++
	gen := o.generation
	o.state = StatePending
	o.data = nil
	o.err = nil
	o.broadcast()
	o.mu.Unlock()

	if len(log.GetTraceID(ctx)) == 0 {
		ctx = log.PutTraceID(ctx, uuid.New().String())
	}

	start := time.Now()
	res, err := o.invoker.Invoke(ctx, req)
	elapsed := time.Since(start)

	o.mu.Lock()
	if gen == o.generation {
		if err != nil {
			o.state = StateFailed
			o.err = err
		} else {
			o.state = StateSucceeded
			o.data = res
		}
		o.broadcast()
	} else {
		o.logger.Debug(ctx, "dropped response for a superseded invocation", log.MapFields{
			"call_type":  "InvokeResponseDropped",
			"generation": gen,
		})
	}
	o.mu.Unlock()

	o.observe(err, elapsed)
	return res, err
}

// Reset unconditionally returns the operation to Idle, clearing
// any stored data and error. It may be called at any time,
// including while an invocation is Pending; the in-flight call is
// not cancelled but its response will not reach the state
func (o *Operation) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.generation++
	o.state = StateIdle
	o.data = nil
	o.err = nil
	o.broadcast()
}

// snapshot must be called with o.mu held
func (o *Operation) snapshot() Snapshot {
	return Snapshot{
		State:   o.state,
		Data:    o.data,
		Err:     o.err,
		Loading: o.state == StatePending,
	}
}

// broadcast must be called with o.mu held
func (o *Operation) broadcast() {
	snapshot := o.snapshot()
	for c := range o.watchers {
		select {
		case c <- snapshot:
		default:
		}
	}
}

func (o *Operation) observe(err errors.Err, elapsed time.Duration) {
	if o.collector == nil {
		return
	}

	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultFailure
	}

	o.collector.Observe(result, elapsed)
}
