package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/util/async"
)

// InstanceType is one entry of a cloud's machine catalog.
type InstanceType struct {
	Name     string  `json:"name"`
	Provider Name    `json:"provider"`
	CPU      int     `json:"cpu"`
	RAMGB    float64 `json:"ram_gb"`
	Location string  `json:"location,omitempty"`
}

// CatalogFilter narrows an instance-type lookup. Zero values are not sent.
type CatalogFilter struct {
	Location string
	CPU      int
	RAMGB    float64
}

type catalogEntry struct {
	Name         string `json:"name"`
	InstanceType string `json:"instance_type"`
	CPU          number `json:"cpu"`
	VCPUs        number `json:"vcpus"`
	RAM          number `json:"ram"`
	MemoryGB     number `json:"memory_gb"`
	Zone         string `json:"zone"`
	Region       string `json:"region"`
}

// InstanceTypes looks up the catalog of one cloud provider.
func (r *Registry) InstanceTypes(ctx context.Context, name Name, f CatalogFilter) ([]InstanceType, error) {
	locKey := "zone"
	switch name {
	case GCP:
		if f.Location == "" {
			f.Location = r.adapters[GCP].(*GCPAdapter).DefaultLocation()
		}
	case AWS:
		locKey = "region"
		if f.Location == "" {
			f.Location = r.adapters[AWS].(*AWSAdapter).DefaultLocation()
		}
	default:
		return nil, fmt.Errorf("%w: %q has no instance-type catalog", ErrUnknownProvider, name)
	}

	q := url.Values{locKey: {f.Location}}
	if f.CPU > 0 {
		q.Set("cpu", strconv.Itoa(f.CPU))
	}
	if f.RAMGB > 0 {
		q.Set("ram", strconv.FormatFloat(f.RAMGB, 'f', -1, 64))
	}

	var resp struct {
		InstanceTypes []json.RawMessage `json:"instance_types"`
	}
	if err := r.api.Get(ctx, string(name)+"_instance_types", "/instance-types/"+string(name), q, &resp); err != nil {
		return nil, fmt.Errorf("failed to look up %s instance types: %w", name, err)
	}

	out := make([]InstanceType, 0, len(resp.InstanceTypes))
	for _, raw := range resp.InstanceTypes {
		out = append(out, decodeCatalogEntry(raw, name, f.Location))
	}
	return out, nil
}

// decodeCatalogEntry accepts either a bare type name or an object.
func decodeCatalogEntry(raw json.RawMessage, name Name, location string) InstanceType {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return InstanceType{Name: s, Provider: name, Location: location}
	}
	var e catalogEntry
	_ = json.Unmarshal(raw, &e)
	it := InstanceType{
		Name:     firstOf(e.Name, e.InstanceType),
		Provider: name,
		CPU:      e.CPU.Int(),
		RAMGB:    float64(e.RAM),
		Location: firstOf(e.Zone, e.Region, location),
	}
	if it.CPU == 0 {
		it.CPU = e.VCPUs.Int()
	}
	if it.RAMGB == 0 {
		it.RAMGB = float64(e.MemoryGB)
	}
	return it
}

// HybridCatalog holds both clouds' catalogs.
type HybridCatalog struct {
	GCP []InstanceType `json:"gcp"`
	AWS []InstanceType `json:"aws"`
}

// HybridInstanceTypes looks up both clouds concurrently. If either lookup
// fails, neither catalog is returned.
func (r *Registry) HybridInstanceTypes(ctx context.Context, gcp, aws CatalogFilter) (HybridCatalog, error) {
	results, err := async.Collect(ctx,
		func(ctx context.Context) ([]InstanceType, error) { return r.InstanceTypes(ctx, GCP, gcp) },
		func(ctx context.Context) ([]InstanceType, error) { return r.InstanceTypes(ctx, AWS, aws) },
	)
	if err != nil {
		return HybridCatalog{}, err
	}
	return HybridCatalog{GCP: results[0], AWS: results[1]}, nil
}
