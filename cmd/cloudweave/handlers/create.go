package handlers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/provider"
	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/util/keygen"
	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/wizard"
)

// runWizard runs the interactive create forms. Replaced in tests.
var runWizard = wizard.RunWizard

// CreateOptions holds the create flags.
type CreateOptions struct {
	Provider     string
	Name         string
	Count        int
	VMType       string
	Cores        int
	MemoryMB     int
	DiskGB       int
	Stack        string
	MachineType  string
	InstanceType string
	Location     string
	Password     string

	GenerateSSHKey bool
	KeyPath        string

	Interactive bool
	// Remote lets the backend run a hybrid create through /all/create.
	Remote bool
}

// Result returns the wizard answers the flags describe.
func (o CreateOptions) Result() wizard.Result {
	r := wizard.Defaults()
	if o.Provider != "" {
		r.Target = o.Provider
	}
	setString(&r.Name, o.Name)
	setString(&r.VMType, o.VMType)
	setString(&r.SoftwareStack, o.Stack)
	setString(&r.MachineType, o.MachineType)
	setString(&r.InstanceType, o.InstanceType)
	setString(&r.Password, o.Password)
	setInt(&r.Count, o.Count)
	setInt(&r.Cores, o.Cores)
	setInt(&r.MemoryMB, o.MemoryMB)
	setInt(&r.DiskGB, o.DiskGB)
	r.GenerateSSHKey = o.GenerateSSHKey
	return r
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

// Create provisions machines from flags or the interactive forms.
func Create(ctx context.Context, g Globals, opts CreateOptions) error {
	a, err := newApp(ctx, g)
	if err != nil {
		return err
	}
	defer a.close()

	answers := opts.Result()
	if opts.Interactive {
		if !isInteractive() {
			return errors.New("--interactive requires a terminal")
		}
		res, err := runWizard(ctx, answers, a.catalog)
		if err != nil {
			return err
		}
		answers = *res
	}
	if err := answers.Validate(); err != nil {
		return err
	}

	if answers.Target == wizard.Hybrid {
		if opts.Location != "" {
			return errors.New("--location does not apply to --provider hybrid")
		}
		return a.createHybrid(ctx, answers, opts.Remote)
	}

	p, err := provider.ParseName(answers.Target)
	if err != nil {
		return err
	}
	spec := answers.Spec()
	spec.Location = opts.Location

	if answers.GenerateSSHKey {
		if p != provider.Proxmox {
			return fmt.Errorf("--generate-ssh-key is only supported on %s", provider.Proxmox)
		}
		key, err := a.generateKey(spec.Name, opts.KeyPath)
		if err != nil {
			return err
		}
		spec.SSHKey = key
	}

	var res provider.CreateResult
	switch {
	case answers.Swarm():
		res = a.registry.Proxmox().CreateSwarm(ctx, spec)
	default:
		adapter, err := a.registry.Adapter(p)
		if err != nil {
			return err
		}
		res = adapter.Create(ctx, spec)
	}

	if a.format != OutputTable {
		if err := writeStructured(a.out, a.format, res); err != nil {
			return err
		}
	} else {
		a.printCreate(p, spec.Name, res)
	}
	if !res.Success {
		return fmt.Errorf("failed to create %s on %s: %s", spec.Name, p, orDefault(res.Error, "creation was not successful"))
	}
	return nil
}

func (a *app) createHybrid(ctx context.Context, answers wizard.Result, remote bool) error {
	gcpSpec := answers.Spec()
	awsSpec := answers.AWSSpec()

	var res provider.HybridResult
	if remote {
		res = a.registry.CreateAllRemote(ctx, &gcpSpec, &awsSpec)
	} else {
		res = a.registry.CreateAll(ctx, gcpSpec, awsSpec)
	}

	if a.format != OutputTable {
		if err := writeStructured(a.out, a.format, res); err != nil {
			return err
		}
	} else {
		a.printCreate(provider.GCP, gcpSpec.Name, res.GCP)
		a.printCreate(provider.AWS, awsSpec.Name, res.AWS)
	}
	if !res.AnySucceeded() {
		return fmt.Errorf("hybrid create of %s failed on both providers", gcpSpec.Name)
	}
	return nil
}

func (a *app) printCreate(p provider.Name, name string, res provider.CreateResult) {
	if !res.Success {
		a.printf("❌ %s: %s\n", p, orDefault(res.Error, "creation was not successful"))
		return
	}
	a.printf("✅ Created %s on %s\n", orDefault(res.Name, name), p)
	if res.ID != "" {
		a.printf("  ID:       %s\n", res.ID)
	}
	if res.IP != "" {
		a.printf("  IP:       %s\n", res.IP)
	}
	if res.Password != "" {
		a.printf("  Password: %s\n", res.Password)
	}
	if len(res.Created) > 1 {
		a.printf("  Machines: %d\n", len(res.Created))
	}
}

// generateKey writes a fresh ed25519 pair and returns the authorized_keys line.
func (a *app) generateKey(name, path string) (string, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		path = filepath.Join(home, ".ssh", "cloudweave_"+name)
	}
	kp, err := keygen.GenerateEd25519("cloudweave@" + name)
	if err != nil {
		return "", err
	}
	if err := kp.WriteFiles(path); err != nil {
		return "", err
	}
	a.printf("SSH key written to %s\n", path)
	return kp.AuthorizedKey(), nil
}

// catalog feeds the create forms with the live instance-type catalog.
func (a *app) catalog(ctx context.Context, name provider.Name) ([]provider.InstanceType, error) {
	return a.registry.InstanceTypes(ctx, name, provider.CatalogFilter{})
}
