package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/jc-discdev/MIauCloudWeave-Proxmox/cmd/cloudweave/handlers"
)

// Ask returns the ask command.
//
// The prompt goes to the assistant once. When the answer proposes an action,
// it is executed after confirmation.
func Ask(g *handlers.Globals) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "ask <prompt>",
		Short: "Ask the assistant once",
		Long: `Ask sends a single prompt to the assistant and prints its answer.

If the answer proposes an action (creating, deleting, starting or stopping a
cluster, or deleting an instance), you are asked to confirm it before it runs.
Without a terminal the action only runs with --yes.

Example:
  cloudweave ask "create a cluster with 3 machines on gcp"
  cloudweave ask --yes "stop the web cluster on aws"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Ask(cmd.Context(), bind(cmd, g), strings.Join(args, " "), yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Execute a proposed action without asking")

	return cmd
}
