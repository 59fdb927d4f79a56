package pipeline

import (
	"bytes"
	"context"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/medialaxis/pkg/cache"
	"github.com/matzehuels/medialaxis/pkg/errors"
	"github.com/matzehuels/medialaxis/pkg/observability"
	"github.com/matzehuels/medialaxis/pkg/shape"
)

func rect() *shape.Shape {
	return shape.FromFunc(40, 20, func(x, y int) bool {
		return x >= 4 && x < 36 && y >= 4 && y < 16
	})
}

func blank(w, h int) *shape.Shape {
	return shape.FromFunc(w, h, func(x, y int) bool { return false })
}

func quietRunner(c cache.Cache) *Runner {
	return NewRunner(c, nil, log.NewWithOptions(io.Discard, log.Options{}))
}

func TestParseMethod(t *testing.T) {
	tests := []struct {
		in      string
		want    Method
		wantErr bool
	}{
		{"sat", MethodScaleAxis, false},
		{"scale", MethodScaleAxis, false},
		{"lambda", MethodLambda, false},
		{"theta", MethodTheta, false},
		{"alpha", "", true}, // not a pruning operator
		{"SAT", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseMethod(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMethod(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMethod(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("ParseMethod(%q) code = %s", tt.in, errors.GetCode(err))
		}
	}
}

func TestValidateParam(t *testing.T) {
	tests := []struct {
		m       Method
		v       float64
		wantErr bool
	}{
		{MethodScaleAxis, 1, false},
		{MethodScaleAxis, 1.3, false},
		{MethodScaleAxis, 0.9, true},
		{MethodLambda, 0, false},
		{MethodLambda, -1, true},
		{MethodTheta, math.Pi, false},
		{MethodTheta, 3.2, true},
		{MethodAlpha, 0, false},
		{MethodAlpha, math.NaN(), true},
		{Method("bogus"), 1, true},
	}

	for _, tt := range tests {
		if err := ValidateParam(tt.m, tt.v); (err != nil) != tt.wantErr {
			t.Errorf("ValidateParam(%s, %v) error = %v, wantErr %v", tt.m, tt.v, err, tt.wantErr)
		}
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr bool
	}{
		{"Defaults", func(*Options) {}, false},
		{"ZeroAlpha", func(o *Options) { o.Alpha = 0 }, false},
		{"NegativeAlpha", func(o *Options) { o.Alpha = -1 }, true},
		{"InfiniteAlpha", func(o *Options) { o.Alpha = math.Inf(1) }, true},
		{"NegativeTarget", func(o *Options) { o.TargetNodes = -3 }, true},
		{"NegativeWindow", func(o *Options) { o.NormalWindow = -1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := DefaultOptions()
			tt.mutate(&o)
			if err := o.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png", "dot"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestLoadShape(t *testing.T) {
	dir := t.TempDir()

	var buf bytes.Buffer
	if err := png.Encode(&buf, rect().ToImage()); err != nil {
		t.Fatal(err)
	}
	good := filepath.Join(dir, "mask.png")
	if err := os.WriteFile(good, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	bad := filepath.Join(dir, "mask.txt")
	if err := os.WriteFile(bad, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadShape(good, DefaultThreshold)
	if err != nil {
		t.Fatalf("LoadShape: %v", err)
	}
	if !s.Equal(rect()) {
		t.Error("loaded shape differs from the encoded one")
	}

	if _, err := LoadShape(filepath.Join(dir, "missing.png"), DefaultThreshold); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file: code = %s", errors.GetCode(err))
	}
	if _, err := LoadShape(bad, DefaultThreshold); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("bad file: code = %s", errors.GetCode(err))
	}
}

type countingCacheHooks struct {
	mu                sync.Mutex
	hits, misses, set int
}

func (h *countingCacheHooks) OnCacheHit(context.Context, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hits++
}

func (h *countingCacheHooks) OnCacheMiss(context.Context, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.misses++
}

func (h *countingCacheHooks) OnCacheSet(context.Context, string, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.set++
}

func TestSkeletonize(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	hooks := &countingCacheHooks{}
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	r := quietRunner(fc)
	defer r.Close()

	opts := DefaultOptions()
	opts.Alpha = 1
	first, err := r.Skeletonize(ctx, rect(), opts)
	if err != nil {
		t.Fatalf("Skeletonize: %v", err)
	}
	if first.RunID == "" || first.CacheHit {
		t.Errorf("first run: id %q, hit %v", first.RunID, first.CacheHit)
	}
	if first.Skeleton.NodeCount() == 0 || first.Stats.Vertices != first.Boundary.Len() {
		t.Errorf("first run: %d nodes, stats %+v", first.Skeleton.NodeCount(), first.Stats)
	}
	if first.Tolerance != 1 {
		t.Errorf("Tolerance = %v, want 1", first.Tolerance)
	}
	if first.Metrics.Hausdorff > 1+1e-9 {
		t.Errorf("Hausdorff = %v exceeds alpha", first.Metrics.Hausdorff)
	}

	second, err := r.Skeletonize(ctx, rect(), opts)
	if err != nil {
		t.Fatalf("Skeletonize (cached): %v", err)
	}
	if !second.CacheHit {
		t.Error("second run should hit the cache")
	}
	if second.RunID == first.RunID {
		t.Error("runs share an id")
	}
	if second.Skeleton.NodeCount() != first.Skeleton.NodeCount() || second.Metrics != first.Metrics {
		t.Errorf("cached run differs: %+v vs %+v", second.Metrics, first.Metrics)
	}

	opts.Refresh = true
	third, err := r.Skeletonize(ctx, rect(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheHit {
		t.Error("refresh should bypass the cache")
	}

	if hooks.hits != 1 || hooks.misses != 1 || hooks.set != 2 {
		t.Errorf("hooks: %d hits, %d misses, %d sets", hooks.hits, hooks.misses, hooks.set)
	}
}

func TestSkeletonizeErrors(t *testing.T) {
	ctx := context.Background()
	r := quietRunner(nil)

	empty := shape.FromFunc(8, 8, func(int, int) bool { return false })
	if _, err := r.Skeletonize(ctx, empty, DefaultOptions()); !errors.Is(err, errors.ErrCodeInvalidShape) {
		t.Errorf("empty shape: code = %s", errors.GetCode(err))
	}

	opts := DefaultOptions()
	opts.Alpha = -1
	if _, err := r.Skeletonize(ctx, rect(), opts); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("negative alpha: code = %s", errors.GetCode(err))
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := r.Skeletonize(cancelled, rect(), DefaultOptions()); !errors.Is(err, errors.ErrCodeTimeout) {
		t.Errorf("cancelled: code = %s", errors.GetCode(err))
	}
}

func TestSkeletonizeTargetNodesKeepsAlpha(t *testing.T) {
	ctx := context.Background()
	r := quietRunner(nil)

	opts := DefaultOptions()
	opts.Alpha = 0.5
	opts.TargetNodes = 1
	res, err := r.Skeletonize(ctx, rect(), opts)
	if !errors.Is(err, errors.ErrCodeFidelity) {
		t.Fatalf("code = %s, want FIDELITY once the target forces the tolerance above alpha", errors.GetCode(err))
	}
	if res == nil || res.Tolerance <= opts.Alpha || res.Metrics.Hausdorff <= opts.Alpha {
		t.Fatalf("result = %+v, want the raised tolerance and its Hausdorff distance", res)
	}

	// A target the α-run already meets leaves the tolerance alone.
	opts.TargetNodes = 1 << 20
	res, err = r.Skeletonize(ctx, rect(), opts)
	if err != nil {
		t.Fatalf("Skeletonize: %v", err)
	}
	if res.Tolerance != opts.Alpha || res.Stats.Rounds != 0 {
		t.Errorf("Tolerance = %v after %d rounds, want %v", res.Tolerance, res.Stats.Rounds, opts.Alpha)
	}
}

func TestPrune(t *testing.T) {
	ctx := context.Background()
	r := quietRunner(cache.NewNullCache())

	opts := DefaultOptions()
	opts.Alpha = 0.5
	res, err := r.Skeletonize(ctx, rect(), opts)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		m     Method
		param float64
		code  errors.Code
	}{
		{name: "ScaleAxis", m: MethodScaleAxis, param: 1.3},
		{name: "Lambda", m: MethodLambda, param: 4},
		{name: "Theta", m: MethodTheta, param: math.Pi / 4},
		{name: "ScaleBelowOne", m: MethodScaleAxis, param: 0.5, code: errors.ErrCodeInvalidInput},
		{name: "ThetaTooWide", m: MethodTheta, param: 4, code: errors.ErrCodeInvalidInput},
		{name: "AlphaIsNotPruning", m: MethodAlpha, param: 1, code: errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pr, err := r.PruneResult(ctx, res, tt.m, tt.param)
			if tt.code != "" {
				if !errors.Is(err, tt.code) {
					t.Fatalf("err = %v, want code %s", err, tt.code)
				}
				return
			}
			if err != nil {
				t.Fatalf("PruneResult: %v", err)
			}
			n := pr.Skeleton.NodeCount()
			if n == 0 || n+pr.Removed != res.Skeleton.NodeCount() {
				t.Errorf("%d kept + %d removed != %d", n, pr.Removed, res.Skeleton.NodeCount())
			}
			if pr.Metrics.Nodes != n {
				t.Errorf("Metrics.Nodes = %d, want %d", pr.Metrics.Nodes, n)
			}
		})
	}
}

func TestPruneCache(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := quietRunner(fc)

	res, err := r.Skeletonize(ctx, rect(), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	a, err := r.Prune(ctx, res.Skeleton, res.Boundary, MethodScaleAxis, 1.5)
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Prune(ctx, res.Skeleton, res.Boundary, MethodScaleAxis, 1.5)
	if err != nil {
		t.Fatal(err)
	}
	if a.CacheHit || !b.CacheHit {
		t.Errorf("cache hits: %v then %v", a.CacheHit, b.CacheHit)
	}
	if a.Removed != b.Removed || a.Skeleton.NodeCount() != b.Skeleton.NodeCount() {
		t.Errorf("cached prune differs: %d/%d vs %d/%d", a.Removed, a.Skeleton.NodeCount(), b.Removed, b.Skeleton.NodeCount())
	}
}

func TestRangeValues(t *testing.T) {
	tests := []struct {
		name string
		r    Range
		want int
	}{
		{"Integers", Range{From: 1, To: 9, Step: 1}, 9},
		{"Tenths", Range{From: 1.1, To: 1.9, Step: 0.1}, 9},
		{"Angles", Range{From: math.Pi / 18, To: math.Pi / 2, Step: math.Pi / 18}, 9},
		{"Single", Range{From: 2, To: 2, Step: 1}, 1},
		{"Zero", Range{}, 0},
		{"Reversed", Range{From: 3, To: 1, Step: 1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vals := tt.r.Values()
			if len(vals) != tt.want {
				t.Fatalf("len = %d, want %d (%v)", len(vals), tt.want, vals)
			}
			if len(vals) > 0 && vals[0] != tt.r.From {
				t.Errorf("first = %v, want %v", vals[0], tt.r.From)
			}
		})
	}
}

func TestLoadSweepConfig(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	cfg, err := LoadSweepConfig(write("ok.toml", `
[alpha]
from = 1.0
to = 2.0
step = 0.5

[lambda]
step = 0.0
`))
	if err != nil {
		t.Fatalf("LoadSweepConfig: %v", err)
	}
	if n := len(cfg.Alpha.Values()); n != 3 {
		t.Errorf("alpha values = %d, want 3", n)
	}
	if n := len(cfg.Lambda.Values()); n != 0 {
		t.Errorf("disabled lambda has %d values", n)
	}
	if cfg.Scale != DefaultSweepConfig().Scale {
		t.Errorf("sat range = %+v, want default", cfg.Scale)
	}
	if n := len(cfg.Points()); n != 3+9+9 {
		t.Errorf("points = %d, want 21", n)
	}

	if _, err := LoadSweepConfig(write("unknown.toml", "[beta]\nfrom = 1\n")); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("unknown key: err = %v", err)
	}
	if _, err := LoadSweepConfig(write("range.toml", "[theta]\nfrom = 1.0\nto = 4.0\nstep = 1.0\n")); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("theta beyond pi: err = %v", err)
	}
	if _, err := LoadSweepConfig(write("syntax.toml", "[alpha\n")); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("syntax error: err = %v", err)
	}
}

func TestSweep(t *testing.T) {
	ctx := context.Background()
	r := quietRunner(nil)

	res, err := r.Skeletonize(ctx, rect(), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	cfg := SweepConfig{
		Alpha:  Range{From: 1, To: 2, Step: 1},
		Lambda: Range{From: 1, To: 2, Step: 1},
	}
	pts, err := r.Sweep(ctx, res, cfg, 2)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}

	want := []struct {
		m Method
		v float64
	}{{MethodAlpha, 1}, {MethodAlpha, 2}, {MethodLambda, 1}, {MethodLambda, 2}}
	if len(pts) != len(want) {
		t.Fatalf("got %d points, want %d", len(pts), len(want))
	}
	for i, w := range want {
		p := pts[i]
		if p.Method != w.m || p.Param != w.v {
			t.Errorf("point %d = %s=%v, want %s=%v", i, p.Method, p.Param, w.m, w.v)
		}
		if p.Metrics.Nodes == 0 {
			t.Errorf("point %d has no metrics", i)
		}
		if p.Method == MethodAlpha && p.Metrics.Hausdorff > p.Param+1e-9 {
			t.Errorf("alpha=%v: Hausdorff %v exceeds tolerance", p.Param, p.Metrics.Hausdorff)
		}
	}

	if _, err := r.Sweep(ctx, nil, cfg, 1); err == nil {
		t.Error("sweep without a base result should fail")
	}
	bad := SweepConfig{Scale: Range{From: 0.5, To: 1, Step: 0.1}}
	if _, err := r.Sweep(ctx, res, bad, 1); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("invalid range: err = %v", err)
	}
}

func TestRender(t *testing.T) {
	ctx := context.Background()
	r := quietRunner(nil)
	res, err := r.Skeletonize(ctx, rect(), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	artifacts, err := Render(ctx, res, res.Skeleton, RenderOptions{
		Formats: []string{FormatPNG, FormatDOT, FormatJSON},
		Scale:   2,
		Fill:    true,
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(artifacts) != 3 {
		t.Fatalf("got %d artifacts, want 3", len(artifacts))
	}

	img, err := png.Decode(bytes.NewReader(artifacts[FormatPNG]))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 80 || b.Dy() != 40 {
		t.Errorf("png is %dx%d, want 80x40", b.Dx(), b.Dy())
	}
	if dot := string(artifacts[FormatDOT]); !strings.HasPrefix(dot, "graph G {") {
		t.Errorf("dot = %q", dot)
	}
	if !bytes.HasPrefix(artifacts[FormatJSON], []byte("{")) {
		t.Errorf("json = %q", artifacts[FormatJSON])
	}

	if _, err := Render(ctx, res, res.Skeleton, RenderOptions{Formats: []string{"gif"}}); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("unsupported format: err = %v", err)
	}
}

func TestCompare(t *testing.T) {
	narrow := shape.FromFunc(40, 20, func(x, y int) bool {
		return x >= 6 && x < 34 && y >= 4 && y < 16
	})

	same, err := Compare(rect(), rect())
	if err != nil {
		t.Fatalf("Compare(rect, rect) error = %v", err)
	}
	if same.SymDiffArea != 0 || same.Hausdorff != 0 {
		t.Errorf("Compare(rect, rect) = %+v, want zero", same)
	}

	diff, err := Compare(rect(), narrow)
	if err != nil {
		t.Fatalf("Compare(rect, narrow) error = %v", err)
	}
	// 4 columns of 12 pixels out of 384
	if want := 48.0 / 384.0; math.Abs(diff.SymDiffArea-want) > 1e-9 {
		t.Errorf("SymDiffArea = %v, want %v", diff.SymDiffArea, want)
	}
	if diff.Hausdorff <= 0 {
		t.Errorf("Hausdorff = %v, want > 0", diff.Hausdorff)
	}

	if _, err := Compare(rect(), blank(10, 10)); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("size mismatch: error = %v, want INVALID_INPUT", err)
	}
	if _, err := Compare(rect(), blank(40, 20)); !errors.Is(err, errors.ErrCodeInvalidShape) {
		t.Errorf("empty mask: error = %v, want INVALID_SHAPE", err)
	}
}

func TestAttach(t *testing.T) {
	r := quietRunner(cache.NewNullCache())
	ctx := context.Background()

	res, err := r.Skeletonize(ctx, rect(), Options{Alpha: 1, Close: true, Threshold: DefaultThreshold})
	if err != nil {
		t.Fatalf("Skeletonize() error = %v", err)
	}

	attached, err := r.Attach(ctx, rect(), res.Skeleton, Options{Close: true})
	if err != nil {
		t.Fatalf("Attach() error = %v", err)
	}
	if attached.Skeleton.NodeCount() != res.Skeleton.NodeCount() {
		t.Errorf("nodes = %d, want %d", attached.Skeleton.NodeCount(), res.Skeleton.NodeCount())
	}
	if attached.Metrics.Nodes != res.Metrics.Nodes {
		t.Errorf("metrics nodes = %d, want %d", attached.Metrics.Nodes, res.Metrics.Nodes)
	}

	if _, err := r.Attach(ctx, blank(40, 20), res.Skeleton, Options{}); !errors.Is(err, errors.ErrCodeInvalidShape) {
		t.Errorf("empty mask: error = %v, want INVALID_SHAPE", err)
	}
}
