package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/medialaxis/pkg/pipeline"
)

// sweepOpts holds the flags of the sweep command.
type sweepOpts struct {
	skeletonOpts
	config  string // sweep ranges file
	workers int    // concurrent evaluations
	jsonOut string // write points as JSON
}

// sweepCommand creates the sweep command.
func (c *CLI) sweepCommand() *cobra.Command {
	opts := sweepOpts{}

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Evaluate pruning methods over parameter ranges",
		Long: `Skeletonize a mask once, then prune and evaluate it for every value of
the configured parameter ranges. Alpha points recompute the skeleton.

Ranges are read from a TOML file:

  [sat]
  from = 1.1
  to = 1.9
  step = 0.1

Sections are alpha, sat, lambda and theta (radians). Missing sections use
the defaults; a section with step = 0 is skipped.`,
		Example: `  medialaxis sweep --imgfile hand.png
  medialaxis sweep --config ranges.toml --workers 4 --json sweep.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSweep(cmd.Context(), cmd, &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&opts.config, "config", "", "TOML file with sweep ranges")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "concurrent evaluations (default: number of CPUs)")
	cmd.Flags().StringVar(&opts.jsonOut, "json", "", "write sweep points to this JSON file")

	return cmd
}

func (c *CLI) runSweep(ctx context.Context, cmd *cobra.Command, opts *sweepOpts) error {
	logger := loggerFromContext(ctx)

	cfg := pipeline.DefaultSweepConfig()
	if opts.config != "" {
		var err error
		if cfg, err = pipeline.LoadSweepConfig(opts.config); err != nil {
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

	spinner := newSpinnerWithContext(ctx, "Sweeping...")
	spinner.Start()
	points, err := runner.SweepWithProgress(ctx, res, cfg, opts.workers, func(done, total int) {
		spinner.Update("Sweeping %d/%d", done, total)
	})
	if err != nil {
		spinner.StopWithError("Sweep failed")
		return err
	}
	spinner.StopWithSuccess(fmt.Sprintf("Evaluated %d parameter settings", len(points)))
	logger.Debug("sweep finished", "points", len(points), "workers", opts.workers)

	fmt.Println(sweepTable(points))

	if opts.jsonOut != "" {
		writeOutput(logger, "json", func() error {
			return writeJSON(opts.jsonOut, points)
		}, opts.jsonOut)
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
