// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/jc-discdev/MIauCloudWeave-Proxmox/cmd/cloudweave/handlers"
)

// Root returns the root command for the cloudweave CLI.
func Root() *cobra.Command {
	g := &handlers.Globals{}

	cmd := &cobra.Command{
		Use:           "cloudweave",
		Short:         "Operate Proxmox, GCP and AWS machines through an AI assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&g.ConfigPath, "config", "c", "", "Path to the configuration file (default $CLOUDWEAVE_CONFIG or ~/.cloudweave/config.yaml)")
	flags.StringVar(&g.APIURL, "api-url", "", "Base URL of the console backend")
	flags.CountVarP(&g.Verbosity, "verbose", "v", "Increase log verbosity (repeatable)")
	flags.StringVar(&g.LogFormat, "log-format", "console", "Log format: console or json")
	flags.StringVar(&g.MetricsListen, "metrics-listen", "", "Serve Prometheus metrics on this address")
	flags.BoolVar(&g.Trace, "trace", false, "Print trace spans to stderr")
	flags.StringVarP(&g.Output, "output", "o", handlers.OutputTable, "Output format: table, json or yaml")

	// Conversation
	cmd.AddCommand(Ask(g))
	cmd.AddCommand(Chat(g))

	// Infrastructure
	cmd.AddCommand(Clusters(g))
	cmd.AddCommand(Instances(g))
	cmd.AddCommand(Create(g))
	cmd.AddCommand(Catalog(g))
	cmd.AddCommand(Credentials(g))

	// Local state and utilities
	cmd.AddCommand(Prefs(g))
	cmd.AddCommand(Transcript(g))
	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}

// bind returns the globals with the command's streams attached.
func bind(cmd *cobra.Command, g *handlers.Globals) handlers.Globals {
	out := *g
	out.In = cmd.InOrStdin()
	out.Out = cmd.OutOrStdout()
	out.ErrOut = cmd.ErrOrStderr()
	return out
}
