// Package pipeline runs the skeletonization pipeline for the CLI and the
// HTTP API.
//
// # Architecture
//
// The pipeline has four stages, each a pure function over the previous
// stage's output:
//
//  1. Prepare: optional morphological closing of the binary mask
//  2. Boundary: Moore tracing into a single closed loop
//  3. Skeletonize: sphere propagation with tolerance α (cached)
//  4. Evaluate: area difference and Hausdorff distance of the result
//
// A [Runner] wires the stages to a cache, a logger and the observability
// hooks. Pruning and parameter sweeps work on a finished [Result].
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Skeletonize(ctx, mask, pipeline.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	pruned, err := runner.Prune(ctx, res.Skeleton, res.Boundary, pipeline.MethodScaleAxis, 1.3)
package pipeline

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/medialaxis/pkg/boundary"
	"github.com/matzehuels/medialaxis/pkg/cache"
	"github.com/matzehuels/medialaxis/pkg/errors"
	"github.com/matzehuels/medialaxis/pkg/evaluation"
	"github.com/matzehuels/medialaxis/pkg/shape"
	"github.com/matzehuels/medialaxis/pkg/skeleton"
	"github.com/matzehuels/medialaxis/pkg/skeleton/propagation"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultAlpha is the default reconstruction tolerance in pixels.
	DefaultAlpha = propagation.DefaultAlpha

	// DefaultThreshold is the default gray level above which a pixel is
	// foreground.
	DefaultThreshold = shape.DefaultThreshold
)

// Method names a skeleton simplification.
type Method string

// Pruning methods. MethodAlpha is not a pruning operator: it marks sweep
// points that re-run propagation with a different tolerance.
const (
	MethodScaleAxis Method = "sat"
	MethodLambda    Method = "lambda"
	MethodTheta     Method = "theta"
	MethodAlpha     Method = "alpha"
)

// ValidMethods is the set of pruning methods accepted by [Runner.Prune].
var ValidMethods = map[Method]bool{
	MethodScaleAxis: true,
	MethodLambda:    true,
	MethodTheta:     true,
}

// ParseMethod validates a pruning method name. "scale" is accepted as an
// alias for "sat".
func ParseMethod(s string) (Method, error) {
	m := Method(s)
	if s == "scale" {
		m = MethodScaleAxis
	}
	if !ValidMethods[m] {
		return "", errors.New(errors.ErrCodeInvalidInput, "invalid method: %q (must be one of: sat, lambda, theta)", s)
	}
	return m, nil
}

// ValidateParam checks a pruning parameter against the method's range.
func ValidateParam(m Method, v float64) error {
	switch m {
	case MethodScaleAxis:
		return errors.ValidateRange("scale factor", v, 1, math.Inf(1))
	case MethodLambda:
		return errors.ValidateRange("lambda", v, 0, math.Inf(1))
	case MethodTheta:
		return errors.ValidateRange("theta", v, 0, math.Pi)
	case MethodAlpha:
		return errors.ValidateRange("alpha", v, 0, math.Inf(1))
	default:
		return errors.New(errors.ErrCodeInvalidInput, "invalid method: %q", m)
	}
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures a skeletonization run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Alpha is the reconstruction tolerance in pixels.
	Alpha float64 `json:"alpha"`

	// TargetNodes, when positive, raises the tolerance until the skeleton
	// has at most this many nodes.
	TargetNodes int `json:"target_nodes,omitempty"`

	// NormalWindow is the chord half-width for boundary normals. Zero
	// selects the propagation default.
	NormalWindow int `json:"normal_window,omitempty"`

	// Close applies a 3x3 closing to the mask before tracing.
	Close bool `json:"close"`

	// Threshold is the gray level above which a decoded pixel is
	// foreground.
	Threshold uint8 `json:"threshold"`

	// Refresh bypasses cached skeletons (they are still written).
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// DefaultOptions returns the options of a plain CLI run: α = 2.1, closing
// enabled and the default threshold.
func DefaultOptions() Options {
	return Options{
		Alpha:     DefaultAlpha,
		Close:     true,
		Threshold: DefaultThreshold,
	}
}

// SetDefaults fills unset runtime fields.
func (o *Options) SetDefaults() {
	if o.NormalWindow == 0 {
		o.NormalWindow = propagation.DefaultNormalWindow
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks the numeric options.
func (o *Options) Validate() error {
	if err := errors.ValidateRange("alpha", o.Alpha, 0, math.Inf(1)); err != nil {
		return err
	}
	if o.TargetNodes < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "target_nodes must be >= 0, got %d", o.TargetNodes)
	}
	if o.NormalWindow < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "normal_window must be >= 0, got %d", o.NormalWindow)
	}
	return nil
}

// propagationOptions converts the options for the skeletonizer.
func (o *Options) propagationOptions() propagation.Options {
	return propagation.Options{
		Alpha:        o.Alpha,
		TargetNodes:  o.TargetNodes,
		NormalWindow: o.NormalWindow,
	}
}

// SkeletonKeyOpts returns cache key options for the skeleton stage.
func (o *Options) SkeletonKeyOpts() cache.SkeletonKeyOpts {
	return cache.SkeletonKeyOpts{
		Alpha:        o.Alpha,
		TargetNodes:  o.TargetNodes,
		NormalWindow: o.NormalWindow,
	}
}

// =============================================================================
// Results
// =============================================================================

// Result contains the outputs of a skeletonization run.
type Result struct {
	// RunID identifies the run in logs and API responses.
	RunID string

	// Shape is the prepared mask the skeleton was computed from. It is the
	// reference for evaluation.
	Shape *shape.Shape

	Boundary *boundary.Boundary
	Skeleton *skeleton.Graph

	// Tolerance is the tolerance propagation actually used: Alpha, or the
	// ladder level reached for TargetNodes. Fidelity is checked against
	// Alpha either way.
	Tolerance float64

	Metrics evaluation.Metrics
	Stats   Stats

	// CacheHit reports whether the skeleton came from the cache.
	CacheHit bool
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Vertices     int
	Candidates   int
	Rounds       int
	ExtractTime  time.Duration
	SkeletonTime time.Duration
	EvalTime     time.Duration
}

// PruneResult is the outcome of one pruning operator.
type PruneResult struct {
	Method   Method
	Param    float64
	Skeleton *skeleton.Graph
	Removed  int
	Metrics  evaluation.Metrics
	CacheHit bool
}

// fidelityError reports a skeleton whose reconstruction error exceeds its
// tolerance.
func fidelityError(h, tol float64) error {
	return errors.New(errors.ErrCodeFidelity, "hausdorff distance %.4f exceeds tolerance %.4f", h, tol)
}

// checkFidelity enforces the requested tolerance α.
func checkFidelity(m evaluation.Metrics, tol float64) error {
	if m.Hausdorff > tol+propagation.Epsilon {
		return fidelityError(m.Hausdorff, tol)
	}
	return nil
}

// describe formats a method and parameter for logs.
func describe(m Method, v float64) string {
	return fmt.Sprintf("%s=%g", m, v)
}
