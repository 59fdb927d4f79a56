package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"image"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/medialaxis/pkg/boundary"
	"github.com/matzehuels/medialaxis/pkg/cache"
	"github.com/matzehuels/medialaxis/pkg/errors"
	"github.com/matzehuels/medialaxis/pkg/evaluation"
	skelio "github.com/matzehuels/medialaxis/pkg/io"
	"github.com/matzehuels/medialaxis/pkg/observability"
	"github.com/matzehuels/medialaxis/pkg/shape"
	"github.com/matzehuels/medialaxis/pkg/skeleton"
	"github.com/matzehuels/medialaxis/pkg/skeleton/propagation"
	"github.com/matzehuels/medialaxis/pkg/skeleton/pruning"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger: it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// LoadShape opens and thresholds the mask image at path. A missing file is
// FILE_NOT_FOUND; an undecodable one is INVALID_FORMAT.
func LoadShape(path string, threshold uint8) (*shape.Shape, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "image not found: %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()
	return DecodeShape(f, threshold)
}

// DecodeShape thresholds an encoded image read from r.
func DecodeShape(r io.Reader, threshold uint8) (*shape.Shape, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode image")
	}
	return shape.FromImage(img, threshold), nil
}

// Prepare applies the configured preprocessing to a mask.
func Prepare(s *shape.Shape, opts Options) *shape.Shape {
	if opts.Close {
		return s.Close()
	}
	return s
}

// Boundary traces the outer boundary of s. Shapes without exactly one
// traceable loop are INVALID_SHAPE.
func (r *Runner) Boundary(ctx context.Context, s *shape.Shape) (*boundary.Boundary, error) {
	hooks := observability.Pipeline()
	hooks.OnExtractStart(ctx, s.Width(), s.Height())
	start := time.Now()

	bnd, err := boundary.Extract(s)
	if err != nil {
		hooks.OnExtractComplete(ctx, 0, time.Since(start), err)
		return nil, errors.Wrap(errors.ErrCodeInvalidShape, err, "extract boundary")
	}
	hooks.OnExtractComplete(ctx, bnd.Len(), time.Since(start), nil)
	return bnd, nil
}

// Skeletonize runs prepare, boundary, propagation and evaluation on s.
// The skeleton is cached by boundary content and propagation options.
// A skeleton whose Hausdorff distance exceeds opts.Alpha is a FIDELITY
// error, also when TargetNodes raised the propagation tolerance; the result
// is still returned alongside it.
func (r *Runner) Skeletonize(ctx context.Context, s *shape.Shape, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)
	opts.SetDefaults()
	logger := opts.Logger

	res := &Result{RunID: uuid.NewString()}
	res.Shape = Prepare(s, opts)

	extractStart := time.Now()
	bnd, err := r.Boundary(ctx, res.Shape)
	if err != nil {
		return nil, err
	}
	res.Boundary = bnd
	res.Stats.Vertices = bnd.Len()
	res.Stats.ExtractTime = time.Since(extractStart)

	logger.Debug("extracted boundary",
		"run", res.RunID,
		"vertices", bnd.Len(),
		"duration", res.Stats.ExtractTime)

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeTimeout, err, "skeletonize")
	}

	skelStart := time.Now()
	prop, hit, err := r.propagate(ctx, bnd, opts)
	if err != nil {
		return nil, err
	}
	res.Skeleton = prop.Graph
	res.Tolerance = prop.Tolerance
	res.Stats.Candidates = prop.Candidates
	res.Stats.Rounds = prop.Rounds
	res.Stats.SkeletonTime = time.Since(skelStart)
	res.CacheHit = hit

	logger.Info("computed skeleton",
		"run", res.RunID,
		"nodes", prop.Graph.NodeCount(),
		"edges", prop.Graph.EdgeCount(),
		"tolerance", prop.Tolerance,
		"cached", hit,
		"duration", res.Stats.SkeletonTime)

	evalStart := time.Now()
	res.Metrics = evaluation.Evaluate(res.Shape, bnd, prop.Graph)
	res.Stats.EvalTime = time.Since(evalStart)

	logger.Debug("evaluated skeleton",
		"run", res.RunID,
		"area_diff_pct", res.Metrics.AreaDiffPct,
		"hausdorff", res.Metrics.Hausdorff)

	return res, checkFidelity(res.Metrics, opts.Alpha)
}

// Attach pairs a skeleton read from disk with the mask it was computed
// from. Radii are restored from the traced boundary because the point file
// does not carry them. The result is evaluated but not fidelity checked.
func (r *Runner) Attach(ctx context.Context, s *shape.Shape, g *skeleton.Graph, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	res := &Result{RunID: uuid.NewString(), Shape: Prepare(s, opts)}

	bnd, err := r.Boundary(ctx, res.Shape)
	if err != nil {
		return nil, err
	}
	restored, err := skelio.RestoreRadii(g, bnd)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "skeleton does not match mask")
	}
	res.Boundary = bnd
	res.Skeleton = restored
	res.Stats.Vertices = bnd.Len()
	res.Metrics = evaluation.Evaluate(res.Shape, bnd, restored)

	opts.Logger.Debug("attached skeleton", "run", res.RunID, "nodes", restored.NodeCount())
	return res, nil
}

// cachedSkeleton is the cache payload of a propagation run.
type cachedSkeleton struct {
	Tolerance  float64         `json:"tolerance"`
	Candidates int             `json:"candidates"`
	Rounds     int             `json:"rounds"`
	Skeleton   json.RawMessage `json:"skeleton"`
}

// propagate runs sphere propagation through the cache.
func (r *Runner) propagate(ctx context.Context, bnd *boundary.Boundary, opts Options) (*propagation.Result, bool, error) {
	var buf bytes.Buffer
	if err := skelio.WriteBoundary(&buf, bnd); err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "hash boundary")
	}
	key := r.Keyer.SkeletonKey(cache.Hash(buf.Bytes()), opts.SkeletonKeyOpts())
	cacheHooks := observability.Cache()

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if prop, err := decodeCached(data); err == nil {
				cacheHooks.OnCacheHit(ctx, "skeleton")
				return prop, true, nil
			}
			// If deserialization fails, fall through to recompute
		} else if err != nil {
			opts.Logger.Warn("cache read failed", "key", key, "err", err)
		}
		cacheHooks.OnCacheMiss(ctx, "skeleton")
	}

	hooks := observability.Pipeline()
	hooks.OnSkeletonizeStart(ctx, opts.Alpha, bnd.Len())
	start := time.Now()
	prop, err := propagation.SpherePropagationWithResult(bnd, opts.propagationOptions())
	if err != nil {
		hooks.OnSkeletonizeComplete(ctx, 0, time.Since(start), err)
		if stderrors.Is(err, propagation.ErrNegativeAlpha) {
			return nil, false, errors.Wrap(errors.ErrCodeInvalidInput, err, "skeletonize")
		}
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "skeletonize")
	}
	hooks.OnSkeletonizeComplete(ctx, prop.Graph.NodeCount(), time.Since(start), nil)

	if data, err := encodeCached(prop); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLSkeleton); err == nil {
			cacheHooks.OnCacheSet(ctx, "skeleton", len(data))
		}
	}
	return prop, false, nil
}

func encodeCached(prop *propagation.Result) ([]byte, error) {
	skel, err := skelio.MarshalSkeleton(prop.Graph)
	if err != nil {
		return nil, err
	}
	return json.Marshal(cachedSkeleton{
		Tolerance:  prop.Tolerance,
		Candidates: prop.Candidates,
		Rounds:     prop.Rounds,
		Skeleton:   skel,
	})
}

func decodeCached(data []byte) (*propagation.Result, error) {
	var c cachedSkeleton
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	g, err := skelio.UnmarshalSkeleton(c.Skeleton)
	if err != nil {
		return nil, err
	}
	return &propagation.Result{
		Graph:      g,
		Tolerance:  c.Tolerance,
		Candidates: c.Candidates,
		Rounds:     c.Rounds,
	}, nil
}

// Prune simplifies g with the given method. bnd is required by the lambda
// and theta operators. Results are cached by skeleton content, method and
// parameter. The returned Metrics are left zero; see [Runner.PruneResult].
func (r *Runner) Prune(ctx context.Context, g *skeleton.Graph, bnd *boundary.Boundary, m Method, param float64) (*PruneResult, error) {
	if !ValidMethods[m] {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid method: %q", m)
	}
	if err := ValidateParam(m, param); err != nil {
		return nil, err
	}

	data, err := skelio.MarshalSkeleton(g)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "hash skeleton")
	}
	key := r.Keyer.PruneKey(cache.Hash(data), cache.PruneKeyOpts{Method: string(m), Param: param})
	cacheHooks := observability.Cache()

	if cached, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		if pg, err := skelio.UnmarshalSkeleton(cached); err == nil {
			cacheHooks.OnCacheHit(ctx, "prune")
			return &PruneResult{
				Method:   m,
				Param:    param,
				Skeleton: pg,
				Removed:  g.NodeCount() - pg.NodeCount(),
				CacheHit: true,
			}, nil
		}
	}
	cacheHooks.OnCacheMiss(ctx, "prune")

	hooks := observability.Pipeline()
	hooks.OnPruneStart(ctx, string(m), param)
	start := time.Now()

	var pr *pruning.Result
	switch m {
	case MethodScaleAxis:
		pr, err = pruning.ScaleAxisWithResult(g, param)
	case MethodLambda:
		pr, err = pruning.LambdaMedialAxisWithResult(g, bnd, param)
	case MethodTheta:
		pr, err = pruning.ThetaMedialAxisWithResult(g, bnd, param)
	}
	if err != nil {
		hooks.OnPruneComplete(ctx, string(m), 0, time.Since(start), err)
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "prune %s", describe(m, param))
	}
	hooks.OnPruneComplete(ctx, string(m), pr.Removed, time.Since(start), nil)

	r.Logger.Debug("pruned skeleton",
		"op", describe(m, param),
		"removed", pr.Removed,
		"remaining", pr.Graph.NodeCount(),
		"duration", time.Since(start))

	if out, err := skelio.MarshalSkeleton(pr.Graph); err == nil {
		if err := r.Cache.Set(ctx, key, out, cache.TTLSkeleton); err == nil {
			cacheHooks.OnCacheSet(ctx, "prune", len(out))
		}
	}

	return &PruneResult{
		Method:   m,
		Param:    param,
		Skeleton: pr.Graph,
		Removed:  pr.Removed,
	}, nil
}

// PruneResult prunes the skeleton of a finished run and evaluates the
// pruned skeleton against the run's shape.
func (r *Runner) PruneResult(ctx context.Context, base *Result, m Method, param float64) (*PruneResult, error) {
	if base == nil || base.Skeleton == nil {
		return nil, fmt.Errorf("prune: %w", errNoResult)
	}
	pr, err := r.Prune(ctx, base.Skeleton, base.Boundary, m, param)
	if err != nil {
		return nil, err
	}
	pr.Metrics = evaluation.Evaluate(base.Shape, base.Boundary, pr.Skeleton)
	return pr, nil
}

var errNoResult = errors.New(errors.ErrCodeInvalidInput, "no skeleton to operate on")

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
