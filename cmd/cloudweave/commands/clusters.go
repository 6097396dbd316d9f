package commands

import (
	"github.com/spf13/cobra"

	"github.com/jc-discdev/MIauCloudWeave-Proxmox/cmd/cloudweave/handlers"
)

// Clusters returns the clusters command and its action subcommands.
func Clusters(g *handlers.Globals) *cobra.Command {
	var opts handlers.ClustersOptions

	cmd := &cobra.Command{
		Use:   "clusters",
		Short: "List clusters across the cloud providers",
		Long: `Clusters groups the GCP and AWS instances into logical clusters.

Instances named <base>-<n> (for example web-1, web-2) form the cluster <base>
on their provider; a "cluster" label or tag takes precedence over the name.

Example:
  cloudweave clusters
  cloudweave clusters --select web@gcp
  cloudweave clusters --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Clusters(cmd.Context(), bind(cmd, g), opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Refresh periodically until interrupted")
	cmd.Flags().BoolVar(&opts.IncludeProxmox, "include-proxmox", false, "Include hypervisor machines")
	cmd.Flags().StringVar(&opts.Select, "select", "", "Show the members of a cluster (name@provider)")

	cmd.AddCommand(clusterAction(g, handlers.ClusterDelete, "Delete every instance of a cluster"))
	cmd.AddCommand(clusterAction(g, handlers.ClusterStart, "Start every instance of a cluster"))
	cmd.AddCommand(clusterAction(g, handlers.ClusterStop, "Stop every instance of a cluster"))

	return cmd
}

func clusterAction(g *handlers.Globals, action handlers.ClusterAction, short string) *cobra.Command {
	var (
		providerName string
		yes          bool
	)

	cmd := &cobra.Command{
		Use:   string(action) + " <name>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.RunClusterAction(cmd.Context(), bind(cmd, g), action, args[0], providerName, yes)
		},
	}

	cmd.Flags().StringVarP(&providerName, "provider", "p", "", "Provider of the cluster: gcp or aws (required)")
	_ = cmd.MarkFlagRequired("provider")
	if action == handlers.ClusterDelete {
		cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without asking")
	}

	return cmd
}
