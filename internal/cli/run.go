package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nodeflow/pkg/engine"
	"github.com/matzehuels/nodeflow/pkg/errors"
	"github.com/matzehuels/nodeflow/pkg/node"
	"github.com/matzehuels/nodeflow/pkg/nodes"
	"github.com/matzehuels/nodeflow/pkg/render/nodelink"
)

// runOpts holds the command-line flags for the run command.
type runOpts struct {
	timeout time.Duration // abort the run after this long; zero means no limit
	quiet   bool          // suppress published values
}

// runCommand creates the run command, which executes a graph document.
func (c *CLI) runCommand() *cobra.Command {
	var opts runOpts

	cmd := &cobra.Command{
		Use:   "run [file]",
		Short: "Execute a graph document",
		Long: `Execute a graph document with the built-in node types.

Nodes run one at a time in dependency order. Values published by Display
nodes are printed as they arrive. The exit status is 2 when the graph has a
cycle and 3 when a node fails.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGraph(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "abort the run after this duration (e.g. 30s)")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "do not print published values")

	return cmd
}

func (c *CLI) runGraph(ctx context.Context, path string, opts runOpts) error {
	g, _, err := c.loadGraph(path)
	if err != nil {
		return err
	}

	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}
	if !opts.quiet {
		ctx = node.WithObserver(ctx, node.ObserverFunc(func(nodeID, port string, value any) {
			printInfo(c.out, "%s.%s = %v", nodeID, port, nodes.Summarize(value))
		}))
	}

	res := c.newEngine().Process(ctx, g)
	c.printRunSummary(g.Nodes(), res)
	return errors.FromRun(res)
}

// printRunSummary prints the state of every node followed by the outcome.
func (c *CLI) printRunSummary(all []node.Node, res engine.RunResult) {
	states := nodelink.StatesFromRun(res)
	names := make(map[string]string, len(all))
	for _, n := range all {
		names[n.ID()] = n.Name()
	}

	ids := res.Order
	if res.Status == engine.StatusCycleDetected {
		ids = res.Blocked
	}
	for _, id := range ids {
		printStateRow(c.out, states[id].String(), id, names[id])
	}

	elapsed := res.Duration.Round(time.Microsecond)
	if res.Succeeded() {
		printSuccess(c.out, "Executed %d nodes (%s)", len(res.Executed), elapsed)
		return
	}
	printError(c.out, "Run %s after %d of %d nodes (%s)", res.Status, len(res.Executed), len(res.Order), elapsed)
}
