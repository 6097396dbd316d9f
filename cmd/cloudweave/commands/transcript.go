package commands

import (
	"github.com/spf13/cobra"

	"github.com/jc-discdev/MIauCloudWeave-Proxmox/cmd/cloudweave/handlers"
)

// Transcript returns the transcript command.
func Transcript(g *handlers.Globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transcript",
		Short: "Archive saved chat transcripts",
		Long: `Transcript uploads chat transcripts to the S3-compatible bucket configured
under archive in the configuration file.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "push <file>",
		Short: "Upload a transcript saved with chat --save or /save",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.PushTranscript(cmd.Context(), bind(cmd, g), args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List archived transcripts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.ListTranscripts(cmd.Context(), bind(cmd, g))
		},
	})

	return cmd
}
