package commands

import (
	"github.com/spf13/cobra"

	"github.com/jc-discdev/MIauCloudWeave-Proxmox/cmd/cloudweave/handlers"
)

// Credentials returns the credentials command.
func Credentials(g *handlers.Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "credentials <instance-name>",
		Short: "Show how to log in to a machine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Credentials(cmd.Context(), bind(cmd, g), args[0])
		},
	}
}
