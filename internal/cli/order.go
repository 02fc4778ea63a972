package cli

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nodeflow/pkg/engine"
	"github.com/matzehuels/nodeflow/pkg/errors"
)

// orderCommand creates the order command, which prints the execution
// order of a document without running it.
func (c *CLI) orderCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "order [file]",
		Short: "Print the execution order of a graph document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, _, err := c.loadGraph(args[0])
			if err != nil {
				return err
			}
			res := engine.Order(g)

			if asJSON {
				enc := json.NewEncoder(c.out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(orderJSON{Ok: res.Ok(), Order: res.Sequence, Blocked: res.Blocked()}); err != nil {
					return err
				}
			} else if res.Ok() {
				for i, id := range res.Sequence {
					n, _ := g.Node(id)
					printDetail(c.out, "%2d. %s (%s)", i+1, id, n.Name())
				}
				printSuccess(c.out, "%d nodes in order", len(res.Sequence))
			} else {
				printError(c.out, "cycle detected; blocked nodes: %s", strings.Join(res.Blocked(), ", "))
			}

			if !res.Ok() {
				return errors.FromRun(engine.RunResult{Status: engine.StatusCycleDetected, Blocked: res.Blocked()})
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the order as JSON")

	return cmd
}

type orderJSON struct {
	Ok      bool     `json:"ok"`
	Order   []string `json:"order"`
	Blocked []string `json:"blocked,omitempty"`
}
