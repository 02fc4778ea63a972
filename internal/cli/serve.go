package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nodeflow/pkg/errors"
	"github.com/matzehuels/nodeflow/pkg/node"
	"github.com/matzehuels/nodeflow/pkg/nodes"
	"github.com/matzehuels/nodeflow/pkg/server"
)

// serveCommand creates the serve command, which exposes graph processing
// over HTTP until interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	var addr, dataDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve the HTTP API.

Routes: GET /healthz, GET /nodes, POST /order, POST /process, POST /render.
Rendered diagrams are stored in the configured cache.

Load Image and Save Image are only available with --data-dir, and then
only read and write relative paths inside that directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.cfg.Server.Addr
			}
			if dataDir == "" {
				dataDir = c.cfg.Server.DataDir
			}
			ctx := cmd.Context()

			reg, root, err := serveRegistry(dataDir)
			if err != nil {
				return err
			}
			if root != nil {
				defer root.Close()
				printDetail(c.out, "File nodes confined to %s", root.Name())
			} else {
				c.Logger.Warn("file nodes disabled; pass --data-dir to enable them")
			}

			cc := c.newCache(ctx, false)
			defer cc.Close()

			srv := server.New(reg,
				server.WithLogger(c.Logger),
				server.WithEngine(c.newEngine()),
				server.WithCache(cc, c.cfg.CacheTTL()),
			)
			printInfo(c.out, "Serving on %s", addr)
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, localhost:8080)")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "directory the file nodes may read and write")

	return cmd
}

// serveRegistry builds the registry for documents posted over HTTP. With no
// dataDir the file nodes are left out; otherwise they are confined to an
// [os.Root] opened on dataDir, which the caller must close.
func serveRegistry(dataDir string) (*node.Registry, *os.Root, error) {
	if dataDir == "" {
		return nodes.DefaultRegistry(nodes.WithoutFiles()), nil, nil
	}
	root, err := os.OpenRoot(dataDir)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open data dir %s", dataDir)
	}
	return nodes.DefaultRegistry(nodes.WithFileRoot(root)), root, nil
}
