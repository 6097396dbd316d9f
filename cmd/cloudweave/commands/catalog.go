package commands

import (
	"github.com/spf13/cobra"

	"github.com/jc-discdev/MIauCloudWeave-Proxmox/cmd/cloudweave/handlers"
)

// Catalog returns the catalog command.
func Catalog(g *handlers.Globals) *cobra.Command {
	var opts handlers.CatalogOptions

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Look up cloud machine types",
		Long: `Catalog lists the machine types a cloud provider offers, optionally
filtered by vCPU count and memory. With --provider hybrid both clouds are
queried at once.

Example:
  cloudweave catalog --provider aws --cpu 2 --ram 4
  cloudweave catalog --provider hybrid --zone europe-west1-b --region eu-west-1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Catalog(cmd.Context(), bind(cmd, g), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Provider, "provider", "p", "gcp", "Provider: gcp, aws or hybrid")
	cmd.Flags().IntVar(&opts.CPU, "cpu", 0, "Required vCPUs")
	cmd.Flags().Float64Var(&opts.RAMGB, "ram", 0, "Required memory in GB")
	cmd.Flags().StringVar(&opts.Zone, "zone", "", "GCP zone (default from configuration)")
	cmd.Flags().StringVar(&opts.Region, "region", "", "AWS region (default from configuration)")

	return cmd
}
