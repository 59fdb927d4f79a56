package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/medialaxis/pkg/pipeline"
)

// evalshapeOpts holds the flags of the evalshape command.
type evalshapeOpts struct {
	imgref    string
	imgcmp    string
	threshold uint8
}

// evalshapeCommand creates the evalshape command.
func (c *CLI) evalshapeCommand() *cobra.Command {
	opts := evalshapeOpts{}

	cmd := &cobra.Command{
		Use:   "evalshape",
		Short: "Compare two binary masks",
		Long: `Compare a mask against a reference mask.

Prints the symmetric area difference as a fraction of the reference area and
the Hausdorff distance between the two traced boundaries.`,
		Example: `  medialaxis evalshape --imgref hand.png --imgcmp skinned.png`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvalshape(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.imgref, "imgref", "img1.png", "reference binary image file")
	cmd.Flags().StringVar(&opts.imgcmp, "imgcmp", "img2.png", "compared binary image file")
	cmd.Flags().Uint8Var(&opts.threshold, "threshold", pipeline.DefaultThreshold, "gray level above which a pixel is foreground")

	return cmd
}

func runEvalshape(ctx context.Context, opts *evalshapeOpts) error {
	logger := loggerFromContext(ctx)

	ref, err := pipeline.LoadShape(opts.imgref, opts.threshold)
	if err != nil {
		return err
	}
	cmp, err := pipeline.LoadShape(opts.imgcmp, opts.threshold)
	if err != nil {
		return err
	}
	logger.Debug("loaded masks", "ref", opts.imgref, "cmp", opts.imgcmp)

	res, err := pipeline.Compare(ref, cmp)
	if err != nil {
		return err
	}

	printKeyValue("Symmetric area difference", fmt.Sprintf("%g", res.SymDiffArea))
	printKeyValue("Hausdorff distance", fmt.Sprintf("%g", res.Hausdorff))
	return nil
}
