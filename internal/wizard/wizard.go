package wizard

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/provider"
)

// Result holds all the answers from the interactive wizard.
type Result struct {
	// Target is a provider name or Hybrid.
	Target string
	Name   string
	Count  int

	// Hypervisor sizing
	VMType        string
	Cores         int
	MemoryMB      int
	DiskGB        int
	SoftwareStack string

	// Cloud sizing
	MachineType  string // gcp
	InstanceType string // aws

	Password       string
	GenerateSSHKey bool
}

// Defaults returns the answers preselected in the forms.
func Defaults() Result {
	return Result{
		Target:       string(provider.Proxmox),
		Name:         "my-vm",
		Count:        1,
		VMType:       provider.VMTypeQEMU,
		Cores:        2,
		MemoryMB:     2048,
		DiskGB:       10,
		MachineType:  "e2-medium",
		InstanceType: "t3.micro",
	}
}

// Catalog lists the machine types a cloud provider offers.
type Catalog func(ctx context.Context, name provider.Name) ([]provider.InstanceType, error)

// RunWizard runs the interactive creation wizard starting from initial.
// catalog may be nil; when it fails the built-in type lists are offered.
// The context is used for cancellation support (e.g., Ctrl+C).
func RunWizard(ctx context.Context, initial Result, catalog Catalog) (*Result, error) {
	result := initial

	if err := runTargetGroup(ctx, &result); err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}

	if err := runIdentityGroup(ctx, &result); err != nil {
		return nil, fmt.Errorf("identity: %w", err)
	}

	switch result.Target {
	case string(provider.Proxmox):
		if err := runHypervisorGroup(ctx, &result); err != nil {
			return nil, fmt.Errorf("sizing: %w", err)
		}
	case string(provider.GCP):
		if err := runMachineTypeGroup(ctx, &result.MachineType, "Machine Type", typeChoices(ctx, catalog, provider.GCP, GCPMachineTypes)); err != nil {
			return nil, fmt.Errorf("machine type: %w", err)
		}
	case string(provider.AWS):
		if err := runMachineTypeGroup(ctx, &result.InstanceType, "Instance Type", typeChoices(ctx, catalog, provider.AWS, AWSInstanceTypes)); err != nil {
			return nil, fmt.Errorf("instance type: %w", err)
		}
	case Hybrid:
		if err := runMachineTypeGroup(ctx, &result.MachineType, "GCP Machine Type", typeChoices(ctx, catalog, provider.GCP, GCPMachineTypes)); err != nil {
			return nil, fmt.Errorf("machine type: %w", err)
		}
		if err := runMachineTypeGroup(ctx, &result.InstanceType, "AWS Instance Type", typeChoices(ctx, catalog, provider.AWS, AWSInstanceTypes)); err != nil {
			return nil, fmt.Errorf("instance type: %w", err)
		}
	}

	if err := runStackGroup(ctx, &result); err != nil {
		return nil, fmt.Errorf("software: %w", err)
	}

	if err := runAccessGroup(ctx, &result); err != nil {
		return nil, fmt.Errorf("access: %w", err)
	}

	return &result, nil
}

func typeChoices(ctx context.Context, catalog Catalog, name provider.Name, fallback []Choice) []Choice {
	if catalog == nil {
		return fallback
	}
	types, err := catalog(ctx, name)
	if err != nil || len(types) == 0 {
		return fallback
	}
	return InstanceTypesToChoices(types)
}

// Swarm reports whether the answers describe a hypervisor docker swarm.
func (r *Result) Swarm() bool {
	return r.Target == string(provider.Proxmox) && r.SoftwareStack == SwarmStack && r.Count > 1
}

// Spec returns the sizing spec for a single-provider target. For Hybrid it
// returns the GCP half; see AWSSpec.
func (r *Result) Spec() provider.SizingSpec {
	spec := provider.SizingSpec{
		Name:          r.Name,
		Count:         max(r.Count, 1),
		SoftwareStack: r.SoftwareStack,
		Password:      r.Password,
	}
	switch r.Target {
	case string(provider.Proxmox):
		spec.VMType = r.VMType
		spec.Cores = r.Cores
		spec.MemoryMB = r.MemoryMB
		spec.DiskGB = r.DiskGB
		spec.Start = true
	case string(provider.AWS):
		spec.MachineType = r.InstanceType
	default:
		spec.MachineType = r.MachineType
	}
	return spec
}

// AWSSpec returns the AWS half of a Hybrid request.
func (r *Result) AWSSpec() provider.SizingSpec {
	spec := r.Spec()
	spec.MachineType = r.InstanceType
	return spec
}

// Validate applies the form rules to answers given without the forms.
func (r *Result) Validate() error {
	switch r.Target {
	case string(provider.Proxmox), string(provider.GCP), string(provider.AWS), Hybrid:
	default:
		return fmt.Errorf("unknown target %q", r.Target)
	}
	if err := validateName(r.Name); err != nil {
		return err
	}
	if err := validateCount(strconv.Itoa(r.Count)); err != nil {
		return err
	}
	if err := validatePassword(r.Password); err != nil {
		return err
	}
	switch r.Target {
	case string(provider.GCP):
		return validateType(r.MachineType)
	case string(provider.AWS):
		return validateType(r.InstanceType)
	case Hybrid:
		if err := validateType(r.MachineType); err != nil {
			return err
		}
		return validateType(r.InstanceType)
	}
	return nil
}
