package commands

import (
	"github.com/spf13/cobra"

	"github.com/jc-discdev/MIauCloudWeave-Proxmox/cmd/cloudweave/handlers"
)

// Prefs returns the prefs command.
func Prefs(g *handlers.Globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Manage locally stored preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.ShowPrefs(cmd.Context(), bind(cmd, g))
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the stored preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.ShowPrefs(cmd.Context(), bind(cmd, g))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:       "consent accept|reject",
		Short:     "Allow or refuse storing preferences for a year",
		ValidArgs: []string{"accept", "reject"},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.SetConsent(cmd.Context(), bind(cmd, g), args[0])
		},
	})

	return cmd
}
