package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/medialaxis/pkg/errors"
	skelio "github.com/matzehuels/medialaxis/pkg/io"
	"github.com/matzehuels/medialaxis/pkg/pipeline"
	"github.com/matzehuels/medialaxis/pkg/render"
	"github.com/matzehuels/medialaxis/pkg/skeleton"
)

// skeletonOpts holds the flags shared by every command that computes a
// skeleton from a mask.
type skeletonOpts struct {
	imgfile     string  // binary mask image
	alpha       float64 // reconstruction tolerance in pixels
	targetNodes int     // raise alpha until the skeleton has at most this many nodes
	threshold   uint8   // gray level above which a pixel is foreground
	noClose     bool    // skip the 3x3 closing of the mask
	noCache     bool    // disable the skeleton cache
	refresh     bool    // recompute even when cached
}

func (o *skeletonOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.imgfile, "imgfile", defaultImage, "binary image file")
	cmd.Flags().Float64Var(&o.alpha, "alpha", pipeline.DefaultAlpha, "skeleton precision (reconstruction tolerance in pixels)")
	cmd.Flags().IntVar(&o.targetNodes, "target-nodes", 0, "raise alpha until the skeleton has at most this many nodes")
	cmd.Flags().Uint8Var(&o.threshold, "threshold", pipeline.DefaultThreshold, "gray level above which a pixel is foreground")
	cmd.Flags().BoolVar(&o.noClose, "no-close", false, "do not apply morphological closing to the mask")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&o.refresh, "refresh", false, "recompute the skeleton even if cached")
}

// options merges the flags with the settings file. Flags win when set.
func (o *skeletonOpts) options(cmd *cobra.Command, cfg SkeletonConfig, logger *log.Logger) pipeline.Options {
	opts := pipeline.DefaultOptions()
	opts.Alpha = o.alpha
	if !cmd.Flags().Changed("alpha") {
		opts.Alpha = cfg.Alpha
	}
	opts.TargetNodes = o.targetNodes
	if !cmd.Flags().Changed("target-nodes") {
		opts.TargetNodes = cfg.TargetNodes
	}
	opts.Threshold = o.threshold
	opts.Close = !o.noClose
	opts.Refresh = o.refresh
	opts.Logger = logger
	return opts
}

// compute loads the mask and runs the pipeline on it.
func (c *CLI) compute(ctx context.Context, cmd *cobra.Command, runner *pipeline.Runner, o *skeletonOpts) (*pipeline.Result, error) {
	logger := loggerFromContext(ctx)
	opts := o.options(cmd, c.Config.Skeleton, logger)

	s, err := pipeline.LoadShape(o.imgfile, opts.Threshold)
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded mask", "file", o.imgfile, "width", s.Width(), "height", s.Height(), "area", s.Area())

	done := startTimer(logger)
	res, err := runner.Skeletonize(ctx, s, opts)
	if err != nil {
		return res, err
	}
	done("Skeletonized %s", o.imgfile)
	return res, nil
}

// skeletonizeOpts holds the flags of the skeletonize command.
type skeletonizeOpts struct {
	skeletonOpts
	fileskl string // three-file skeleton output
	filebnd string // boundary file output
	fileimg string // preview image base name
	output  bool   // write the preview image
	eval    bool   // print evaluation metrics
}

// skeletonizeCommand creates the skeletonize command.
func (c *CLI) skeletonizeCommand() *cobra.Command {
	opts := skeletonizeOpts{}

	cmd := &cobra.Command{
		Use:   "skeletonize",
		Short: "Compute the sphere propagation skeleton of a binary mask",
		Long: `Compute the sphere propagation skeleton of a binary mask.

The mask is thresholded, closed with a 3x3 square, and its outer boundary is
traced. The skeleton reconstructs every boundary pixel within --alpha. A
skeleton that fails this check is not written and the command exits with -1,
as does a mask without a single traceable boundary loop.`,
		Example: `  # Skeletonize mask.png and write the three skeleton files
  medialaxis skeletonize --fileskl out/skel.txt

  # Coarser skeleton with evaluation and a preview image
  medialaxis skeletonize --imgfile hand.png --alpha 4 --eval --output`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSkeletonize(cmd.Context(), cmd, &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&opts.fileskl, "fileskl", "", "skeleton file (writes skelpoints_, skeledges_ and skelbounds_ files)")
	cmd.Flags().StringVar(&opts.filebnd, "filebnd", "", "boundary file")
	cmd.Flags().StringVar(&opts.fileimg, "fileimg", defaultFileImg, "skeleton image file (without .png)")
	cmd.Flags().BoolVar(&opts.output, "output", false, "write the skeleton image")
	cmd.Flags().BoolVar(&opts.eval, "eval", false, "print evaluation metrics")

	return cmd
}

func (c *CLI) runSkeletonize(ctx context.Context, cmd *cobra.Command, opts *skeletonizeOpts) error {
	logger := loggerFromContext(ctx)

	if opts.output {
		if err := checkBaseName(opts.fileimg); err != nil {
			return err
		}
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	res, err := c.compute(ctx, cmd, runner, &opts.skeletonOpts)
	if err != nil {
		if errors.Is(err, errors.ErrCodeFidelity) {
			printWarning("Skeleton rejected, nothing written")
		}
		return err
	}

	printSuccess("Skeleton computed")
	printStats(res.Metrics, res.CacheHit)
	if opts.eval {
		printMetrics(res.Metrics, res.Tolerance)
	}

	if opts.fileskl != "" {
		writeOutput(logger, "skeleton", func() error {
			return skelio.WriteSkeleton(res.Skeleton, opts.fileskl)
		}, skelFiles(opts.fileskl)...)
	}
	if opts.filebnd != "" {
		writeOutput(logger, "boundary", func() error {
			return skelio.ExportBoundary(res.Boundary, opts.filebnd)
		}, opts.filebnd)
	}
	if opts.output {
		path := withExt(opts.fileimg, "png")
		writeOutput(logger, "image", func() error {
			return savePreview(res, res.Skeleton, path, render.PreviewOptions{})
		}, path)
	}

	if opts.fileskl != "" {
		printNextStep("Prune it", fmt.Sprintf("medialaxis prune --imgfile %s --method sat --param 1.3", opts.imgfile))
	}
	return nil
}

// writeOutput runs write and reports the files it produced. Write failures
// are logged and skipped so that one bad path does not lose the others.
func writeOutput(logger *log.Logger, what string, write func() error, paths ...string) {
	if err := write(); err != nil {
		logger.Error("write failed", "output", what, "err", err)
		printWarning("Skipped %s output: %v", what, err)
		return
	}
	for _, p := range paths {
		printFile(p)
	}
}

func skelFiles(path string) []string {
	pts, edg, bds := skelio.SkeletonPaths(path)
	return []string{pts, edg, bds}
}

// savePreview draws g over the mask of res and saves it as PNG.
func savePreview(res *pipeline.Result, g *skeleton.Graph, path string, opts render.PreviewOptions) error {
	canvas, err := render.Preview(res.Shape, res.Boundary, g, opts)
	if err != nil {
		return err
	}
	defer canvas.Close()
	return canvas.SavePNG(path)
}
