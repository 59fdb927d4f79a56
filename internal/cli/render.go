package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	skelio "github.com/matzehuels/medialaxis/pkg/io"
	"github.com/matzehuels/medialaxis/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	skeletonOpts
	fileskl  string   // existing skeleton to render instead of computing one
	output   string   // base path of the rendered files
	formats  []string // png, svg, pdf, dot, json
	scale    int      // pixels per mask pixel in the preview
	fill     bool     // fill the mask in the preview
	disks    bool     // draw skeleton disks in the preview
	detailed bool     // coordinates and radii in diagram labels
	ocaml    string   // OCaml export path
	overlay  string   // SVG overlay export path
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a skeleton as image, diagram or data",
		Long: `Render the skeleton of a mask.

By default the skeleton is computed from --imgfile. With --fileskl an existing
three-file skeleton is read instead and drawn over the mask it came from.

Formats:
  png   skeleton drawn over the mask
  svg   node-link diagram laid out by Graphviz
  pdf   node-link diagram (requires rsvg-convert)
  dot   Graphviz source
  json  skeleton graph`,
		Example: `  # Preview and diagram of a fresh skeleton
  medialaxis render --imgfile hand.png -f png,svg -o out/hand

  # Redraw a skeleton written earlier, with disks
  medialaxis render --imgfile hand.png --fileskl out/skel.txt --disks`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), cmd, &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&opts.fileskl, "fileskl", "", "render this skeleton instead of computing one")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output base path (default: image name)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", pipeline.FormatPNG, "output formats, comma separated: png, svg, pdf, dot, json")
	cmd.Flags().IntVar(&opts.scale, "scale", 0, "preview pixels per mask pixel (default: fit 512px)")
	cmd.Flags().BoolVar(&opts.fill, "fill", false, "fill the mask in the preview")
	cmd.Flags().BoolVar(&opts.disks, "disks", false, "draw skeleton disks in the preview")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show coordinates and radii in diagram labels")
	cmd.Flags().StringVar(&opts.ocaml, "ocaml", "", "also export the skeleton as an OCaml value")
	cmd.Flags().StringVar(&opts.overlay, "overlay", "", "also export the skeleton as an SVG overlay")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, cmd *cobra.Command, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	if opts.output != "" {
		if err := checkBaseName(opts.output); err != nil {
			return err
		}
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	res, err := c.loadResult(ctx, cmd, runner, opts)
	if err != nil {
		return err
	}

	done := startTimer(logger)
	artifacts, err := pipeline.Render(ctx, res, res.Skeleton, pipeline.RenderOptions{
		Formats:  opts.formats,
		Scale:    opts.scale,
		Fill:     opts.fill,
		Disks:    opts.disks,
		Detailed: opts.detailed,
	})
	if err != nil {
		return err
	}
	done("Rendered skeleton")

	base := opts.output
	if base == "" {
		base = strings.TrimSuffix(opts.imgfile, filepath.Ext(opts.imgfile))
	}
	if err := os.MkdirAll(filepath.Dir(base), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	printSuccess("Rendered %d nodes", res.Skeleton.NodeCount())
	for _, format := range opts.formats {
		path := base + "." + format
		writeOutput(logger, format, func() error {
			return os.WriteFile(path, artifacts[format], 0o644)
		}, path)
	}

	if opts.ocaml != "" {
		writeOutput(logger, "ocaml", func() error {
			return skelio.ExportOCaml(res.Skeleton, opts.ocaml)
		}, opts.ocaml)
	}
	if opts.overlay != "" {
		writeOutput(logger, "overlay", func() error {
			return skelio.ExportSVG(res.Skeleton, opts.overlay, res.Shape.Width(), res.Shape.Height())
		}, opts.overlay)
	}
	return nil
}

// loadResult computes the skeleton of the mask or attaches the one given
// with --fileskl.
func (c *CLI) loadResult(ctx context.Context, cmd *cobra.Command, runner *pipeline.Runner, opts *renderOpts) (*pipeline.Result, error) {
	if opts.fileskl == "" {
		return c.compute(ctx, cmd, runner, &opts.skeletonOpts)
	}

	logger := loggerFromContext(ctx)
	g, err := skelio.ReadSkeleton(opts.fileskl)
	if err != nil {
		return nil, err
	}
	s, err := pipeline.LoadShape(opts.imgfile, opts.threshold)
	if err != nil {
		return nil, err
	}
	return runner.Attach(ctx, s, g, opts.options(cmd, c.Config.Skeleton, logger))
}

// parseFormats splits a comma-separated format list.
func parseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}
