package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/medialaxis/internal/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	var noCache bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the skeletonization pipeline over HTTP",
		Long: `Serve the pipeline as a JSON API.

  GET  /healthz
  POST /v1/skeletonize?alpha=&target_nodes=&threshold=&close=&refresh=
  POST /v1/prune?method=&param=
  POST /v1/render?format=&scale=&fill=&disks=&detailed=
  POST /v1/evaluate            (multipart: ref, cmp)

Mask images are sent as the request body. All requests share the configured
cache, so Redis lets several instances reuse each other's skeletons.`,
		Example: `  medialaxis serve --addr :8080
  curl --data-binary @hand.png 'localhost:8080/v1/skeletonize?alpha=2'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = c.Config.Server.Addr
			}
			return c.runServe(cmd.Context(), addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	printInfo("Serving on %s", addr)
	return server.New(runner, loggerFromContext(ctx)).ListenAndServe(ctx, addr)
}
