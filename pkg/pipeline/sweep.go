package pipeline

import (
	"context"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/medialaxis/pkg/errors"
	"github.com/matzehuels/medialaxis/pkg/evaluation"
)

// Range is an inclusive arithmetic progression of parameter values.
type Range struct {
	From float64 `toml:"from" json:"from"`
	To   float64 `toml:"to" json:"to"`
	Step float64 `toml:"step" json:"step"`
}

// Values lists From, From+Step, ... up to and including To (within
// rounding). A zero Range yields no values.
func (r Range) Values() []float64 {
	if r.Step <= 0 || r.To < r.From {
		return nil
	}
	n := int(math.Floor((r.To-r.From)/r.Step+1e-9)) + 1
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = r.From + float64(i)*r.Step
	}
	return vals
}

func (r Range) empty() bool { return r == (Range{}) }

// SweepConfig lists the parameter ranges of a sweep. Empty ranges are
// skipped.
type SweepConfig struct {
	Alpha  Range `toml:"alpha" json:"alpha"`
	Scale  Range `toml:"sat" json:"sat"`
	Lambda Range `toml:"lambda" json:"lambda"`
	Theta  Range `toml:"theta" json:"theta"`
}

// DefaultSweepConfig returns the parameter grid used for comparing the
// pruning operators.
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		Alpha:  Range{From: 0.5, To: 4.5, Step: 0.5},
		Scale:  Range{From: 1.1, To: 1.9, Step: 0.1},
		Lambda: Range{From: 1, To: 9, Step: 1},
		Theta:  Range{From: math.Pi / 18, To: math.Pi / 2, Step: math.Pi / 18},
	}
}

// LoadSweepConfig reads a TOML sweep file. Tables missing from the file
// keep their defaults; a table with step = 0 disables that method.
func LoadSweepConfig(path string) (SweepConfig, error) {
	cfg := DefaultSweepConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return SweepConfig{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse sweep config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return SweepConfig{}, errors.New(errors.ErrCodeInvalidFormat, "unknown sweep config key: %s", undecoded[0])
	}
	return cfg, cfg.Validate()
}

// Validate checks every non-empty range against its method's domain.
func (c SweepConfig) Validate() error {
	for _, sr := range c.ranges() {
		if sr.r.empty() || sr.r.Step == 0 {
			continue
		}
		if sr.r.Step < 0 || sr.r.To < sr.r.From {
			return errors.New(errors.ErrCodeInvalidInput, "%s range [%g, %g] step %g is empty", sr.m, sr.r.From, sr.r.To, sr.r.Step)
		}
		for _, v := range []float64{sr.r.From, sr.r.To} {
			if err := ValidateParam(sr.m, v); err != nil {
				return err
			}
		}
	}
	return nil
}

type methodRange struct {
	m Method
	r Range
}

func (c SweepConfig) ranges() []methodRange {
	return []methodRange{
		{MethodAlpha, c.Alpha},
		{MethodScaleAxis, c.Scale},
		{MethodLambda, c.Lambda},
		{MethodTheta, c.Theta},
	}
}

// Points lists the sweep points in execution order: α first, then SAT,
// λ and θ.
func (c SweepConfig) Points() []SweepPoint {
	var pts []SweepPoint
	for _, sr := range c.ranges() {
		for _, v := range sr.r.Values() {
			pts = append(pts, SweepPoint{Method: sr.m, Param: v})
		}
	}
	return pts
}

// SweepPoint is one measured parameter setting.
type SweepPoint struct {
	Method   Method             `json:"method"`
	Param    float64            `json:"param"`
	Metrics  evaluation.Metrics `json:"metrics"`
	Removed  int                `json:"removed"`
	Duration time.Duration      `json:"duration_ns"`
}

// Sweep measures every point of cfg against base. α points re-run
// propagation on base's boundary; the other points prune base's skeleton.
// Points run on up to workers goroutines (zero means GOMAXPROCS) and are
// returned in config order. The first failure cancels the sweep.
func (r *Runner) Sweep(ctx context.Context, base *Result, cfg SweepConfig, workers int) ([]SweepPoint, error) {
	return r.SweepWithProgress(ctx, base, cfg, workers, nil)
}

// SweepWithProgress is Sweep calling progress after each finished point.
// progress may be called from several goroutines, but never concurrently.
func (r *Runner) SweepWithProgress(ctx context.Context, base *Result, cfg SweepConfig, workers int, progress func(done, total int)) ([]SweepPoint, error) {
	if base == nil || base.Skeleton == nil {
		return nil, errNoResult
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	pts := cfg.Points()
	r.Logger.Info("starting sweep", "points", len(pts), "workers", workers)

	var (
		mu   sync.Mutex
		done int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range pts {
		p := &pts[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			if err := r.measure(gctx, base, p); err != nil {
				return err
			}
			p.Duration = time.Since(start)
			if progress != nil {
				mu.Lock()
				done++
				progress(done, len(pts))
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, err, "sweep cancelled")
		}
		return nil, err
	}
	return pts, nil
}

func (r *Runner) measure(ctx context.Context, base *Result, p *SweepPoint) error {
	if p.Method == MethodAlpha {
		opts := Options{Alpha: p.Param, Logger: r.Logger}
		opts.SetDefaults()
		prop, _, err := r.propagate(ctx, base.Boundary, opts)
		if err != nil {
			return err
		}
		p.Metrics = evaluation.Evaluate(base.Shape, base.Boundary, prop.Graph)
		return nil
	}
	pr, err := r.PruneResult(ctx, base, p.Method, p.Param)
	if err != nil {
		return err
	}
	p.Metrics = pr.Metrics
	p.Removed = pr.Removed
	return nil
}
