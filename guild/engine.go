package guild

import (
	"context"
	"time"

	"github.com/guildlabs/guild-gateway/errors"
	"github.com/guildlabs/guild-gateway/log"
	"github.com/guildlabs/guild-gateway/stats"
)

// EngineServices are the dependencies an Engine requires
type EngineServices struct {
	Logger    log.Logger
	Resolver  Resolver
	Submitter Submitter
}

// EngineProps are the construction parameters of an Engine
type EngineProps struct {
	Target TargetRef
}

// Engine turns a direct "call method M on contract C" request
// into a proxied call to the active guild's execute entry point.
// The engine is stateless across invocations apart from latency
// tracking; the guild is resolved again on every call
type Engine struct {
	target    TargetRef
	resolver  Resolver
	submitter Submitter
	logger    log.Logger
	latencies *stats.IntWindow
}

// NewEngine creates a new engine for the provided target
func NewEngine(services *EngineServices, props *EngineProps) *Engine {
	if services.Resolver == nil {
		panic("Resolver must be set")
	}

	if services.Submitter == nil {
		panic("Submitter must be set")
	}

	if services.Logger == nil {
		panic("Logger must be set")
	}

	return &Engine{
		target:    props.Target,
		resolver:  services.Resolver,
		submitter: services.Submitter,
		logger:    services.Logger.ForClass("guild", "Engine"),
		latencies: stats.NewIntWindow(64),
	}
}

// Name implementation of stats.Collector
func (e *Engine) Name() string {
	return "guild.Engine"
}

// Stats implementation of stats.Collector
func (e *Engine) Stats() stats.Metrics {
	s := make(stats.Metrics)
	s["latency"] = e.latencies.Stats()
	return s
}

// Target returns the target reference the engine was built with
func (e *Engine) Target() TargetRef {
	return e.target
}

// Invoke submits a proxied invocation of the engine's target
// through the currently active guild. Preconditions are checked
// in order before any transport interaction: the target contract
// must be set, the method name must be set and a guild must
// resolve. Once they hold, the call is submitted to the guild's
// execute entry point with the request overrides applied to the
// outer transaction, and the transport's response or failure is
// returned verbatim. There is no retry at this level
func (e *Engine) Invoke(ctx context.Context, req Request) (*Response, errors.Err) {
	start := time.Now().UnixNano()

	if e.target.Contract == nil {
		err := errors.New(errors.ErrMissingContract, nil)
		e.logger.Debug(ctx, "invocation attempted without a target contract", log.MapFields{
			"call_type": "InvokeFailure",
			"method":    e.target.Method,
		}, err)
		return nil, err
	}

	if len(e.target.Method) == 0 {
		err := errors.New(errors.ErrMissingMethod, nil)
		e.logger.Debug(ctx, "invocation attempted without a method name", log.MapFields{
			"call_type": "InvokeFailure",
			"contract":  e.target.Contract.Hex(),
		}, err)
		return nil, err
	}

	handle, ok := e.resolver.Resolve(ctx)
	if !ok {
		err := errors.New(errors.ErrMissingGuild, nil)
		e.logger.Debug(ctx, "no active guild to route the invocation", log.MapFields{
			"call_type": "InvokeFailure",
			"contract":  e.target.Contract.Hex(),
			"method":    e.target.Method,
		}, err)
		return nil, err
	}

	if req.Metadata != nil {
		// reserved field; there is no transport contract to carry it
		e.logger.Debug(ctx, "invocation metadata is not forwarded to the transport", log.MapFields{
			"call_type": "InvokeMetadataDropped",
			"metadata":  req.Metadata,
		})
	}

	e.logger.Debug(ctx, "", log.MapFields{
		"call_type": "InvokeAttempt",
		"contract":  e.target.Contract.Hex(),
		"method":    e.target.Method,
		"args":      len(req.Args),
	}, handle)

	res, err := e.submitter.Submit(ctx, SubmitRequest{
		Contract:  handle.Address,
		Method:    ExecuteMethod,
		Args:      ExecuteArgs(*e.target.Contract, e.target.Method, req.Args),
		Overrides: req.Overrides,
	})
	if err != nil {
		e.logger.Debug(ctx, "transport failed to submit the call", log.MapFields{
			"call_type": "InvokeFailure",
			"contract":  e.target.Contract.Hex(),
			"method":    e.target.Method,
		}, handle, err)
		return nil, err
	}

	latency := time.Now().UnixNano() - start
	e.latencies.Add(latency)
	e.logger.Debug(ctx, "", log.MapFields{
		"call_type": "InvokeSuccess",
		"contract":  e.target.Contract.Hex(),
		"method":    e.target.Method,
		"txHash":    res.Hash,
		"latency":   latency,
	}, handle)

	return res, nil
}
