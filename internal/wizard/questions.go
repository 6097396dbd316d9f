package wizard

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
)

// nameRegex validates machine and cluster names: lowercase, starts with a letter.
var nameRegex = regexp.MustCompile(`^[a-z](?:[a-z0-9-]{0,38}[a-z0-9])?$`)

// runTargetGroup prompts for the provider.
func runTargetGroup(ctx context.Context, result *Result) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Provider").
				Description("Where the machines are created").
				Options(ChoicesToOptions(Targets)...).
				Value(&result.Target),
		).Title("Target"),
	).RunWithContext(ctx)
}

// runIdentityGroup prompts for name and count.
func runIdentityGroup(ctx context.Context, result *Result) error {
	count := strconv.Itoa(max(result.Count, 1))

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Description("Machines are named <name>-1, <name>-2, ...").
				Placeholder("my-cluster").
				Value(&result.Name).
				Validate(validateName),
			huh.NewInput().
				Title("Number of machines").
				Value(&count).
				Validate(validateCount),
		).Title("Identity"),
	).RunWithContext(ctx)
	if err != nil {
		return err
	}

	result.Count, _ = strconv.Atoi(strings.TrimSpace(count))
	return nil
}

// runHypervisorGroup prompts for the hypervisor guest type and size.
func runHypervisorGroup(ctx context.Context, result *Result) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Virtualization").
				Options(ChoicesToOptions(VMTypes)...).
				Value(&result.VMType),
			huh.NewSelect[int]().
				Title("CPU").
				Options(SizesToOptions(CoreSizes, "vCPU")...).
				Value(&result.Cores),
			huh.NewSelect[int]().
				Title("Memory").
				Options(SizesToOptions(MemorySizes, "MB")...).
				Value(&result.MemoryMB),
			huh.NewSelect[int]().
				Title("Disk").
				Options(SizesToOptions(DiskSizes, "GB")...).
				Value(&result.DiskGB),
		).Title("Sizing"),
	).RunWithContext(ctx)
}

// runMachineTypeGroup prompts for a cloud machine type.
func runMachineTypeGroup(ctx context.Context, value *string, title string, choices []Choice) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(title).
				Options(ChoicesToOptions(choices)...).
				Value(value).
				Validate(validateType),
		).Title("Sizing"),
	).RunWithContext(ctx)
}

// runStackGroup prompts for the software stack.
func runStackGroup(ctx context.Context, result *Result) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Software").
				Description("Installed on every machine after creation").
				Options(ChoicesToOptions(SoftwareStacks)...).
				Value(&result.SoftwareStack),
		).Title("Software"),
	).RunWithContext(ctx)
}

// runAccessGroup prompts for the root password and SSH key generation.
func runAccessGroup(ctx context.Context, result *Result) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Root Password (Optional)").
				Description("Leave empty to let the backend generate one").
				EchoMode(huh.EchoModePassword).
				Value(&result.Password).
				Validate(validatePassword),
			huh.NewConfirm().
				Title("Generate an SSH key pair?").
				Value(&result.GenerateSSHKey),
		).Title("Access"),
	).RunWithContext(ctx)
}

// Confirm asks a yes/no question, defaulting to no.
func Confirm(ctx context.Context, title, description string) (bool, error) {
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	).RunWithContext(ctx)
	return ok, err
}

// validateName validates the machine name format.
func validateName(s string) error {
	if s == "" {
		return errNameRequired
	}
	if !nameRegex.MatchString(s) {
		return errNameInvalid
	}
	return nil
}

// validateCount validates the machine count.
func validateCount(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > 20 {
		return errCountInvalid
	}
	return nil
}

// validatePassword accepts an empty password or one of at least 8 characters.
func validatePassword(s string) error {
	if s != "" && len(s) < 8 {
		return errPasswordTooWeak
	}
	return nil
}

// validateType requires a machine type.
func validateType(s string) error {
	if strings.TrimSpace(s) == "" {
		return errTypeRequired
	}
	return nil
}
