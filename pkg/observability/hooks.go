// Package observability carries pipeline, cache and server events to
// whatever the binary wants to record them with.
//
// The medialaxis command registers log-backed hooks in main; library code
// only ever calls the getters:
//
//	h := observability.Pipeline()
//	h.OnSkeletonizeStart(ctx, alpha, bnd.Len())
//	res, err := propagation.SpherePropagationWithResult(bnd, opts)
//	h.OnSkeletonizeComplete(ctx, res.Graph.NodeCount(), time.Since(start), err)
//
// Until something is registered every getter returns a no-op.
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the skeletonization pipeline.
// Every Complete event follows its Start on the same goroutine.
type PipelineHooks interface {
	OnExtractStart(ctx context.Context, width, height int)
	OnExtractComplete(ctx context.Context, vertices int, duration time.Duration, err error)

	OnSkeletonizeStart(ctx context.Context, alpha float64, vertices int)
	OnSkeletonizeComplete(ctx context.Context, nodes int, duration time.Duration, err error)

	OnPruneStart(ctx context.Context, method string, param float64)
	OnPruneComplete(ctx context.Context, method string, removed int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives runner cache lookups. kind is the key kind
// ("skeleton" or "prune"); size is the encoded entry in bytes.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, kind string)
	OnCacheMiss(ctx context.Context, kind string)
	OnCacheSet(ctx context.Context, kind string, size int)
}

// =============================================================================
// Server Hooks
// =============================================================================

// ServerHooks receives events from the HTTP API.
type ServerHooks interface {
	// OnRequest records an incoming request. route is the matched pattern.
	OnRequest(ctx context.Context, method, route string)

	// OnResponse records a finished request.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-ops
// =============================================================================

// NoopPipelineHooks ignores every event. Embed it to implement a subset.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnExtractStart(context.Context, int, int)                           {}
func (NoopPipelineHooks) OnExtractComplete(context.Context, int, time.Duration, error)       {}
func (NoopPipelineHooks) OnSkeletonizeStart(context.Context, float64, int)                   {}
func (NoopPipelineHooks) OnSkeletonizeComplete(context.Context, int, time.Duration, error)   {}
func (NoopPipelineHooks) OnPruneStart(context.Context, string, float64)                      {}
func (NoopPipelineHooks) OnPruneComplete(context.Context, string, int, time.Duration, error) {}

// NoopCacheHooks ignores every event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopServerHooks ignores every event.
type NoopServerHooks struct{}

func (NoopServerHooks) OnRequest(context.Context, string, string)                      {}
func (NoopServerHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Registry
// =============================================================================

// slot holds one registered hook set and the no-op it falls back to.
type slot[T any] struct {
	mu   sync.RWMutex
	cur  T
	noop T
}

func newSlot[T any](noop T) *slot[T] { return &slot[T]{cur: noop, noop: noop} }

func (s *slot[T]) load() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

func (s *slot[T]) store(h T) {
	if any(h) == nil {
		return
	}
	s.mu.Lock()
	s.cur = h
	s.mu.Unlock()
}

func (s *slot[T]) reset() {
	s.mu.Lock()
	s.cur = s.noop
	s.mu.Unlock()
}

var (
	pipelineSlot = newSlot[PipelineHooks](NoopPipelineHooks{})
	cacheSlot    = newSlot[CacheHooks](NoopCacheHooks{})
	serverSlot   = newSlot[ServerHooks](NoopServerHooks{})
)

// SetPipelineHooks registers pipeline hooks. Nil is ignored. Call it before
// the first pipeline run; runs already in flight keep the hooks they loaded.
func SetPipelineHooks(h PipelineHooks) { pipelineSlot.store(h) }

// SetCacheHooks registers cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) { cacheSlot.store(h) }

// SetServerHooks registers server hooks. Nil is ignored.
func SetServerHooks(h ServerHooks) { serverSlot.store(h) }

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks { return pipelineSlot.load() }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return cacheSlot.load() }

// Server returns the registered server hooks.
func Server() ServerHooks { return serverSlot.load() }

// Reset restores every hook set to its no-op. Tests defer it after
// registering recorders.
func Reset() {
	pipelineSlot.reset()
	cacheSlot.reset()
	serverSlot.reset()
}
