package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/provider"
	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/ui/tui"
)

// ErrRestartUnsupported is returned for a restart on a cloud provider.
var ErrRestartUnsupported = errors.New("restart is only supported on proxmox")

// Instances lists one provider's instances. location is a zone for GCP and a
// region for AWS; empty means the configured default.
func Instances(ctx context.Context, g Globals, providerName, location string) error {
	p, err := provider.ParseName(providerName)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, g)
	if err != nil {
		return err
	}
	defer a.close()

	adapter, err := a.registry.Adapter(p)
	if err != nil {
		return err
	}
	instances, err := adapter.List(ctx, location)
	if err != nil {
		return err
	}
	return a.render(instances, func() string { return tui.RenderInstances(instances) })
}

// InstanceAction runs start, stop, restart or delete on one instance. id is
// the name for proxmox and GCP and the instance ID for AWS.
func InstanceAction(ctx context.Context, g Globals, action, providerName, id, location string, yes bool) error {
	p, err := provider.ParseName(providerName)
	if err != nil {
		return err
	}
	if action == "restart" && p != provider.Proxmox {
		return ErrRestartUnsupported
	}

	a, err := newApp(ctx, g)
	if err != nil {
		return err
	}
	defer a.close()

	adapter, err := a.registry.Adapter(p)
	if err != nil {
		return err
	}

	var res provider.ActionResult
	switch action {
	case "start":
		res = adapter.Start(ctx, id, location)
	case "stop":
		res = adapter.Stop(ctx, id, location)
	case "restart":
		res = a.registry.Proxmox().Restart(ctx, id)
	case "delete":
		ok, err := a.confirm(ctx, yes, fmt.Sprintf("Delete %s on %s?", id, p), "This cannot be undone.")
		if err != nil {
			return err
		}
		if !ok {
			a.printf("Cancelled.\n")
			return nil
		}
		res = adapter.Delete(ctx, id, location)
	default:
		return fmt.Errorf("unknown instance action %q", action)
	}

	if !res.Success {
		return fmt.Errorf("failed to %s %s: %s", action, id, orDefault(res.Error, "action was not successful"))
	}
	a.printf("✅ %s %s\n", actionPastTense(action), id)
	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
