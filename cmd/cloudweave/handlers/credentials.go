package handlers

import (
	"context"

	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/ui/tui"
)

// Credentials prints the login details of an instance.
func Credentials(ctx context.Context, g Globals, instanceName string) error {
	a, err := newApp(ctx, g)
	if err != nil {
		return err
	}
	defer a.close()

	creds, err := a.registry.Credentials(ctx, instanceName)
	if err != nil {
		return err
	}
	return a.render(creds, func() string { return tui.RenderCredentials(creds) })
}
