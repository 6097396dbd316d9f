package commands

import (
	"github.com/spf13/cobra"

	"github.com/jc-discdev/MIauCloudWeave-Proxmox/cmd/cloudweave/handlers"
)

// Chat returns the chat command.
func Chat(g *handlers.Globals) *cobra.Command {
	var opts handlers.ChatOptions

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the assistant interactively",
		Long: `Chat opens a conversation with the assistant.

On a terminal a full-screen console is shown: enter sends, ctrl+y confirms the
latest proposal, ctrl+n cancels it and tab switches to the cluster view.
Otherwise (or with --line) prompts are read line by line; type /help for the
line commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Chat(cmd.Context(), bind(cmd, g), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Line, "line", false, "Use line mode even on a terminal")
	cmd.Flags().StringVar(&opts.Save, "save", "", "Write the transcript to this file on exit")
	cmd.Flags().BoolVar(&opts.Archive, "archive", false, "Upload the transcript to the configured archive on exit")

	return cmd
}
