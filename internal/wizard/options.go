package wizard

import (
	"strconv"

	"github.com/charmbracelet/huh"

	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/provider"
)

// Hybrid creates the same cluster on both cloud providers.
const Hybrid = "hybrid"

// SwarmStack is the software stack created as a manager plus workers.
const SwarmStack = "docker-swarm"

// Choice is a selectable value with a label.
type Choice struct {
	Value       string
	Label       string
	Description string
}

// Targets contains where machines can be created.
var Targets = []Choice{
	{Value: string(provider.Proxmox), Label: "Proxmox", Description: "Private hypervisor"},
	{Value: string(provider.GCP), Label: "Google Cloud", Description: "Compute Engine instances"},
	{Value: string(provider.AWS), Label: "AWS", Description: "EC2 instances"},
	{Value: Hybrid, Label: "Hybrid", Description: "Google Cloud and AWS at once"},
}

// VMTypes contains the hypervisor guest types.
var VMTypes = []Choice{
	{Value: provider.VMTypeQEMU, Label: "qemu", Description: "Full virtual machine"},
	{Value: provider.VMTypeLXC, Label: "lxc", Description: "Lightweight container"},
}

// SoftwareStacks contains the stacks a cluster can be provisioned with.
var SoftwareStacks = []Choice{
	{Value: "", Label: "None", Description: "Plain machines"},
	{Value: SwarmStack, Label: "Docker Swarm", Description: "One manager, the rest workers"},
	{Value: "kubernetes", Label: "Kubernetes (K3s)"},
	{Value: "redis", Label: "Redis Cluster"},
	{Value: "portainer", Label: "Portainer"},
}

// GCPMachineTypes contains common machine types, used when the catalog is unavailable.
var GCPMachineTypes = []Choice{
	{Value: "e2-micro", Label: "e2-micro", Description: "2 vCPU (shared), 1GB RAM"},
	{Value: "e2-small", Label: "e2-small", Description: "2 vCPU (shared), 2GB RAM"},
	{Value: "e2-medium", Label: "e2-medium", Description: "2 vCPU (shared), 4GB RAM"},
	{Value: "e2-standard-2", Label: "e2-standard-2", Description: "2 vCPU, 8GB RAM"},
	{Value: "e2-standard-4", Label: "e2-standard-4", Description: "4 vCPU, 16GB RAM"},
}

// AWSInstanceTypes contains common instance types, used when the catalog is unavailable.
var AWSInstanceTypes = []Choice{
	{Value: "t3.micro", Label: "t3.micro", Description: "2 vCPU, 1GB RAM"},
	{Value: "t3.small", Label: "t3.small", Description: "2 vCPU, 2GB RAM"},
	{Value: "t3.medium", Label: "t3.medium", Description: "2 vCPU, 4GB RAM"},
	{Value: "t3.large", Label: "t3.large", Description: "2 vCPU, 8GB RAM"},
	{Value: "m5.xlarge", Label: "m5.xlarge", Description: "4 vCPU, 16GB RAM"},
}

// Sizes offered for hypervisor machines.
var (
	CoreSizes   = []int{1, 2, 4, 8, 16}
	MemorySizes = []int{512, 1024, 2048, 4096, 8192, 16384}
	DiskSizes   = []int{8, 10, 20, 40, 80, 100}
)

// ChoicesToOptions converts a Choice slice to huh options.
func ChoicesToOptions(choices []Choice) []huh.Option[string] {
	opts := make([]huh.Option[string], len(choices))
	for i, c := range choices {
		label := c.Label
		if c.Description != "" {
			label += " - " + c.Description
		}
		opts[i] = huh.NewOption(label, c.Value)
	}
	return opts
}

// InstanceTypesToChoices converts catalog entries to choices.
func InstanceTypesToChoices(types []provider.InstanceType) []Choice {
	out := make([]Choice, 0, len(types))
	for _, t := range types {
		c := Choice{Value: t.Name, Label: t.Name}
		if t.CPU > 0 {
			c.Description = strconv.Itoa(t.CPU) + " vCPU, " + strconv.FormatFloat(t.RAMGB, 'f', -1, 64) + "GB RAM"
		}
		out = append(out, c)
	}
	return out
}

// SizesToOptions converts sizes to huh options labelled with unit.
func SizesToOptions(sizes []int, unit string) []huh.Option[int] {
	opts := make([]huh.Option[int], len(sizes))
	for i, n := range sizes {
		opts[i] = huh.NewOption(strconv.Itoa(n)+" "+unit, n)
	}
	return opts
}
