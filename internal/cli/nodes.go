package cli

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nodeflow/pkg/nodes"
)

// nodesCommand creates the nodes command, which lists the registered node
// types.
func (c *CLI) nodesCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "nodes",
		Short: "List the available node types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := nodes.Catalog(c.reg)
			if asJSON {
				enc := json.NewEncoder(c.out)
				enc.SetIndent("", "  ")
				return enc.Encode(catalog)
			}

			rows := make([][]string, len(catalog))
			for i, info := range catalog {
				rows[i] = []string{
					info.Name,
					info.Category,
					joinOrDash(info.Inputs),
					joinOrDash(info.Outputs),
					formatParams(info),
				}
			}
			printTable(c.out, []string{"NAME", "CATEGORY", "INPUTS", "OUTPUTS", "PARAMETERS"}, rows)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the catalog as JSON")

	return cmd
}

func joinOrDash(ports []string) string {
	if len(ports) == 0 {
		return "-"
	}
	return strings.Join(ports, ", ")
}

func formatParams(info nodes.Info) string {
	if len(info.Params) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(info.Params))
	for _, k := range slices.Sorted(maps.Keys(info.Params)) {
		parts = append(parts, fmt.Sprintf("%s=%v", k, info.Params[k]))
	}
	return strings.Join(parts, " ")
}
