// Package cli implements the medialaxis command-line interface.
//
// Commands:
//   - skeletonize: Trace a mask and compute its sphere propagation skeleton
//   - evalshape: Compare two masks by area difference and Hausdorff distance
//   - prune: Simplify a skeleton with the scale axis, lambda or theta operator
//   - sweep: Measure every operator over a parameter grid
//   - render: Draw previews and node-link diagrams
//   - serve: Run the HTTP API
//   - cache: Manage the skeleton cache
//
// Every command reads its logger from the command context; --verbose
// switches it to debug level, which also surfaces pipeline and cache hook
// events.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger writes to w with short wall-clock timestamps ("14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// startTimer returns a func that logs a formatted message at info level
// with the time elapsed since startTimer was called, in milliseconds.
//
//	done := startTimer(logger)
//	...
//	done("Skeletonized %s", path) // INFO Skeletonized hand.png elapsed=84ms
func startTimer(l *log.Logger) func(format string, args ...any) {
	start := time.Now()
	return func(format string, args ...any) {
		l.Info(fmt.Sprintf(format, args...), "elapsed", time.Since(start).Round(time.Millisecond))
	}
}

type loggerKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the logger attached by the root command's
// PersistentPreRun, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
