package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/medialaxis/pkg/observability"
)

// LogHooks reports pipeline and cache events to a logger at debug level,
// so that --verbose shows where the time goes.
type LogHooks struct {
	observability.NoopPipelineHooks
	logger *log.Logger
}

// NewLogHooks creates hooks that log to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{logger: logger}
}

func (h *LogHooks) OnExtractComplete(_ context.Context, vertices int, d time.Duration, err error) {
	h.logger.Debug("boundary", "vertices", vertices, "duration", d, "err", err)
}

func (h *LogHooks) OnSkeletonizeStart(_ context.Context, alpha float64, vertices int) {
	h.logger.Debug("propagation started", "alpha", alpha, "vertices", vertices)
}

func (h *LogHooks) OnSkeletonizeComplete(_ context.Context, nodes int, d time.Duration, err error) {
	h.logger.Debug("propagation", "nodes", nodes, "duration", d, "err", err)
}

func (h *LogHooks) OnPruneComplete(_ context.Context, method string, removed int, d time.Duration, err error) {
	h.logger.Debug("pruning", "method", method, "removed", removed, "duration", d, "err", err)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

var (
	_ observability.PipelineHooks = (*LogHooks)(nil)
	_ observability.CacheHooks    = (*LogHooks)(nil)
)
