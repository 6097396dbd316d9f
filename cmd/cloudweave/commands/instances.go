package commands

import (
	"github.com/spf13/cobra"

	"github.com/jc-discdev/MIauCloudWeave-Proxmox/cmd/cloudweave/handlers"
)

type locationFlags struct {
	zone   string
	region string
}

func (l *locationFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&l.zone, "zone", "", "GCP zone (default from configuration)")
	cmd.Flags().StringVar(&l.region, "region", "", "AWS region (default from configuration)")
}

func (l *locationFlags) location(providerName string) string {
	if providerName == "aws" {
		return l.region
	}
	return l.zone
}

// Instances returns the instances command.
func Instances(g *handlers.Globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "instances",
		Aliases: []string{"vms"},
		Short:   "List and operate single machines",
	}

	cmd.AddCommand(instancesList(g))
	for _, action := range []struct{ name, short string }{
		{"start", "Start a machine"},
		{"stop", "Stop a machine"},
		{"restart", "Restart a hypervisor machine"},
		{"delete", "Delete a machine"},
	} {
		cmd.AddCommand(instanceAction(g, action.name, action.short))
	}

	return cmd
}

func instancesList(g *handlers.Globals) *cobra.Command {
	var (
		providerName string
		loc          locationFlags
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a provider's machines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Instances(cmd.Context(), bind(cmd, g), providerName, loc.location(providerName))
		},
	}

	cmd.Flags().StringVarP(&providerName, "provider", "p", "proxmox", "Provider: proxmox, gcp or aws")
	loc.register(cmd)

	return cmd
}

func instanceAction(g *handlers.Globals, action, short string) *cobra.Command {
	var (
		providerName string
		loc          locationFlags
		yes          bool
	)

	cmd := &cobra.Command{
		Use:   action + " <id>",
		Short: short,
		Long: short + `.

<id> is the machine name on proxmox and GCP and the instance ID on AWS.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.InstanceAction(cmd.Context(), bind(cmd, g), action, providerName, args[0], loc.location(providerName), yes)
		},
	}

	cmd.Flags().StringVarP(&providerName, "provider", "p", "proxmox", "Provider: proxmox, gcp or aws")
	loc.register(cmd)
	if action == "delete" {
		cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without asking")
	}

	return cmd
}
