package handlers

import (
	"context"
	"strings"

	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/provider"
	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/ui/tui"
	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/wizard"
)

// CatalogOptions filters the instance-type lookup.
type CatalogOptions struct {
	Provider string
	CPU      int
	RAMGB    float64
	Zone     string
	Region   string
}

// Catalog prints the instance types a cloud provider offers, or both clouds'
// catalogs for hybrid.
func Catalog(ctx context.Context, g Globals, opts CatalogOptions) error {
	a, err := newApp(ctx, g)
	if err != nil {
		return err
	}
	defer a.close()

	gcpFilter := provider.CatalogFilter{Location: opts.Zone, CPU: opts.CPU, RAMGB: opts.RAMGB}
	awsFilter := provider.CatalogFilter{Location: opts.Region, CPU: opts.CPU, RAMGB: opts.RAMGB}

	if opts.Provider == wizard.Hybrid {
		cat, err := a.registry.HybridInstanceTypes(ctx, gcpFilter, awsFilter)
		if err != nil {
			return err
		}
		return a.render(cat, func() string {
			return strings.Join([]string{
				tui.RenderInstanceTypes(cat.GCP),
				tui.RenderInstanceTypes(cat.AWS),
			}, "\n")
		})
	}

	p, err := provider.ParseName(opts.Provider)
	if err != nil {
		return err
	}
	filter := gcpFilter
	if p == provider.AWS {
		filter = awsFilter
	}
	types, err := a.registry.InstanceTypes(ctx, p, filter)
	if err != nil {
		return err
	}
	return a.render(types, func() string { return tui.RenderInstanceTypes(types) })
}
