package cli

import (
	"context"

	"github.com/spf13/cobra"

	skelio "github.com/matzehuels/medialaxis/pkg/io"
	"github.com/matzehuels/medialaxis/pkg/pipeline"
	"github.com/matzehuels/medialaxis/pkg/render"
)

// pruneOpts holds the flags of the prune command.
type pruneOpts struct {
	skeletonOpts
	method  string
	param   float64
	fileskl string
	fileimg string
	output  bool
	eval    bool
}

// pruneCommand creates the prune command.
func (c *CLI) pruneCommand() *cobra.Command {
	opts := pruneOpts{}

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Skeletonize a mask and prune the skeleton",
		Long: `Skeletonize a mask and prune the skeleton with one of the pruning methods:

  sat     scale axis transform, param is the scale factor (> 1)
  lambda  lambda medial axis, param is the minimal circumradius of touch points
  theta   theta medial axis, param is the minimal object angle in radians
  alpha   recompute the skeleton with param as tolerance

Pruned skeletons are evaluated against the mask; no fidelity check applies.`,
		Example: `  # Scale axis transform with factor 1.3
  medialaxis prune --imgfile hand.png --method sat --param 1.3 --fileskl out/sat.txt

  # Theta medial axis at 45 degrees with a preview image
  medialaxis prune --method theta --param 0.785 --output --fileimg theta`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPrune(cmd.Context(), cmd, &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.method, "method", "m", string(pipeline.MethodScaleAxis), "pruning method: sat, lambda, theta, alpha")
	cmd.Flags().Float64VarP(&opts.param, "param", "p", 1.3, "pruning parameter")
	cmd.Flags().StringVar(&opts.fileskl, "fileskl", "", "pruned skeleton file (writes skelpoints_, skeledges_ and skelbounds_ files)")
	cmd.Flags().StringVar(&opts.fileimg, "fileimg", "skelpruned", "pruned skeleton image file (without .png)")
	cmd.Flags().BoolVar(&opts.output, "output", false, "write the pruned skeleton image")
	cmd.Flags().BoolVar(&opts.eval, "eval", false, "print evaluation metrics")

	return cmd
}

func (c *CLI) runPrune(ctx context.Context, cmd *cobra.Command, opts *pruneOpts) error {
	logger := loggerFromContext(ctx)

	method, err := pipeline.ParseMethod(opts.method)
	if err != nil {
		return err
	}
	if err := pipeline.ValidateParam(method, opts.param); err != nil {
		return err
	}
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
		return err
	}

	done := startTimer(logger)
	pr, err := runner.PruneResult(ctx, res, method, opts.param)
	if err != nil {
		return err
	}
	done("Pruned with %s=%s", method, fmtParam(method, opts.param))

	printSuccess("Removed %d of %d nodes", pr.Removed, res.Skeleton.NodeCount())
	printStats(pr.Metrics, pr.CacheHit)
	if opts.eval {
		printMetrics(pr.Metrics, 0)
	}

	if opts.fileskl != "" {
		writeOutput(logger, "skeleton", func() error {
			return skelio.WriteSkeleton(pr.Skeleton, opts.fileskl)
		}, skelFiles(opts.fileskl)...)
	}
	if opts.output {
		path := withExt(opts.fileimg, "png")
		writeOutput(logger, "image", func() error {
			return savePreview(res, pr.Skeleton, path, render.PreviewOptions{})
		}, path)
	}
	return nil
}
