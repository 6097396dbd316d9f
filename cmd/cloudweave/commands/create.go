package commands

import (
	"github.com/spf13/cobra"

	"github.com/jc-discdev/MIauCloudWeave-Proxmox/cmd/cloudweave/handlers"
	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/wizard"
)

// Create returns the create command.
func Create(g *handlers.Globals) *cobra.Command {
	var opts handlers.CreateOptions

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create machines on a provider",
		Long: `Create provisions machines on proxmox, GCP, AWS, or on both clouds at once
(--provider hybrid).

Hypervisor machines are sized with --cores, --memory and --disk; cloud machines
with --machine-type (GCP) and --instance-type (AWS). Use --interactive to be
guided through the options.

Example:
  cloudweave create --provider proxmox --name lab --cores 4 --memory 4096 --disk 40
  cloudweave create --provider gcp --name web --count 3 --machine-type e2-small
  cloudweave create --provider hybrid --name edge --count 2
  cloudweave create --interactive`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Create(cmd.Context(), bind(cmd, g), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Provider, "provider", "p", "", "Target: proxmox, gcp, aws or hybrid (default proxmox)")
	cmd.Flags().BoolVarP(&opts.Interactive, "interactive", "i", false, "Choose the options in interactive forms")
	cmd.Flags().BoolVar(&opts.Remote, "remote", false, "Let the backend run a hybrid create in one request")
	addSizingFlags(cmd, &opts)

	cmd.AddCommand(createSwarm(g))

	return cmd
}

func createSwarm(g *handlers.Globals) *cobra.Command {
	var opts handlers.CreateOptions

	cmd := &cobra.Command{
		Use:   "swarm",
		Short: "Create a Docker Swarm cluster on the hypervisor",
		Long: `Swarm creates one manager named <name>-manager and --nodes minus one workers
named <name>-worker on the hypervisor.

Example:
  cloudweave create swarm --name apps --nodes 3 --cores 2 --memory 2048`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.Provider = "proxmox"
			opts.Stack = wizard.SwarmStack
			return handlers.Create(cmd.Context(), bind(cmd, g), opts)
		},
	}

	addSizingFlags(cmd, &opts)
	cmd.Flags().IntVar(&opts.Count, "nodes", 3, "Number of nodes, manager included")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func addSizingFlags(cmd *cobra.Command, opts *handlers.CreateOptions) {
	f := cmd.Flags()
	f.StringVarP(&opts.Name, "name", "n", "", "Machine or cluster name")
	if cmd.Name() != "swarm" {
		f.IntVar(&opts.Count, "count", 1, "Number of machines (1-20)")
		f.StringVar(&opts.Stack, "stack", "", "Software stack: docker-swarm, kubernetes, redis or portainer")
		f.StringVar(&opts.MachineType, "machine-type", "", "GCP machine type")
		f.StringVar(&opts.InstanceType, "instance-type", "", "AWS instance type")
		f.StringVar(&opts.Location, "location", "", "GCP zone or AWS region (not with --provider hybrid)")
	}
	f.StringVar(&opts.VMType, "vm-type", "", "Hypervisor guest type: qemu or lxc")
	f.IntVar(&opts.Cores, "cores", 0, "Hypervisor vCPUs (1, 2, 4, 8 or 16)")
	f.IntVar(&opts.MemoryMB, "memory", 0, "Hypervisor memory in MB")
	f.IntVar(&opts.DiskGB, "disk", 0, "Hypervisor disk in GB")
	f.StringVar(&opts.Password, "password", "", "Login password (at least 8 characters)")
	f.BoolVar(&opts.GenerateSSHKey, "generate-ssh-key", false, "Generate an ed25519 key and install it on the hypervisor machine")
	f.StringVar(&opts.KeyPath, "ssh-key-path", "", "Where to write the generated key (default ~/.ssh/cloudweave_<name>)")
}
