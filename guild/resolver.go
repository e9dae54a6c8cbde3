package guild

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/guildlabs/guild-gateway/log"
)

// Handle identifies the guild contract an invocation is routed
// through. The guild's ABI surface is fixed and known to the
// transport, so the address is all a handle needs to carry
type Handle struct {
	Address common.Address
}

// Log implementation of log.Loggable
func (h Handle) Log(fields log.Fields) {
	fields.Add("guildAddress", h.Address.Hex())
}

// Resolver supplies the currently active guild. It is a pure
// lookup: the engine re-reads it on every invocation because the
// active guild may change between calls
type Resolver interface {
	// Resolve returns the active guild handle, or false when no
	// guild is currently active
	Resolve(ctx context.Context) (Handle, bool)
}

// ResolverFunc allows functions to act as a Resolver
type ResolverFunc func(ctx context.Context) (Handle, bool)

// Resolve implementation of Resolver for ResolverFunc
func (f ResolverFunc) Resolve(ctx context.Context) (Handle, bool) {
	return f(ctx)
}

// Registry holds the application's active guild. It is the
// explicit replacement for a process-wide "current guild"
// variable: components that need the active guild receive the
// registry and look it up when they need it
type Registry struct {
	mu     sync.RWMutex
	handle *Handle
}

// NewRegistry creates a registry with no active guild
func NewRegistry() *Registry {
	return &Registry{}
}

// Set makes handle the active guild
func (r *Registry) Set(handle Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handle = &handle
}

// Clear removes the active guild. Subsequent resolutions fail
// until Set is called again
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handle = nil
}

// Resolve implementation of Resolver for Registry
func (r *Registry) Resolve(ctx context.Context) (Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.handle == nil {
		return Handle{}, false
	}

	return *r.handle, true
}
