package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/platform/api"
)

// DefaultGCPZone is used when neither the sizing spec nor the caller names a zone.
const DefaultGCPZone = "us-central1-a"

// GCPAdapter manages Compute Engine instances. Instances are addressed by name
// within a zone.
type GCPAdapter struct {
	api  api.Caller
	zone string
}

// NewGCPAdapter creates a GCPAdapter with a default zone.
func NewGCPAdapter(caller api.Caller, zone string) *GCPAdapter {
	if zone == "" {
		zone = DefaultGCPZone
	}
	return &GCPAdapter{api: caller, zone: zone}
}

// Name implements Adapter.
func (g *GCPAdapter) Name() Name { return GCP }

// DefaultLocation returns the zone used when none is given.
func (g *GCPAdapter) DefaultLocation() string { return g.zone }

type gcpCreateRequest struct {
	Name        string `json:"name"`
	MachineType string `json:"machine_type"`
	Zone        string `json:"zone"`
	Count       int    `json:"count"`
	ClusterType string `json:"cluster_type,omitempty"`
	Password    string `json:"password,omitempty"`
}

func (g *GCPAdapter) createRequest(spec SizingSpec) gcpCreateRequest {
	return gcpCreateRequest{
		Name:        spec.Name,
		MachineType: spec.MachineType,
		Zone:        g.location(spec.Location),
		Count:       max(spec.Count, 1),
		ClusterType: spec.SoftwareStack,
		Password:    spec.Password,
	}
}

// Create implements Adapter.
func (g *GCPAdapter) Create(ctx context.Context, spec SizingSpec) CreateResult {
	var raw json.RawMessage
	if err := g.api.Post(ctx, "gcp_create", "/create", g.createRequest(spec), &raw); err != nil {
		return createFailure(err)
	}
	return decodeCreate(raw)
}

type gcpInstance struct {
	ID          json.RawMessage   `json:"id"`
	Name        string            `json:"name"`
	Zone        string            `json:"zone"`
	Status      string            `json:"status"`
	ExternalIPs []string          `json:"external_ips"`
	MachineType string            `json:"machine_type"`
	CPU         number            `json:"cpu"`
	RAM         number            `json:"ram"`
	Labels      map[string]string `json:"labels"`
}

type cloudListResponse[T any] struct {
	Success   bool   `json:"success"`
	Count     int    `json:"count"`
	Instances []T    `json:"instances"`
	Error     string `json:"error"`
	Message   string `json:"message"`
}

// List implements Adapter. location is a zone.
func (g *GCPAdapter) List(ctx context.Context, zone string) ([]Instance, error) {
	zone = g.location(zone)
	var resp cloudListResponse[gcpInstance]
	if err := g.api.Get(ctx, "gcp_list", "/list", url.Values{"zone": {zone}}, &resp); err != nil {
		return nil, fmt.Errorf("failed to list gcp instances: %w", err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("%w: gcp: %s", ErrListUnsuccessful, firstNonEmpty(resp.Error, resp.Message))
	}
	out := make([]Instance, 0, len(resp.Instances))
	for _, in := range resp.Instances {
		inst := Instance{
			ID:          in.Name,
			Name:        in.Name,
			Provider:    GCP,
			Status:      normalizeStatus(in.Status),
			Location:    lastSegment(in.Zone),
			CPU:         in.CPU.Int(),
			RAMGB:       float64(in.RAM),
			PublicIPs:   in.ExternalIPs,
			MachineType: lastSegment(in.MachineType),
			ClusterTag:  in.Labels["cluster"],
		}
		if inst.Location == "" {
			inst.Location = zone
		}
		if inst.ID == "" && len(in.ID) > 0 {
			inst.ID = scalarText(in.ID)
		}
		out = append(out, inst)
	}
	return out, nil
}

type cloudActionRequest struct {
	Provider Name   `json:"provider"`
	ID       string `json:"id"`
	Zone     string `json:"zone,omitempty"`
	Region   string `json:"region,omitempty"`
}

// Start implements Adapter.
func (g *GCPAdapter) Start(ctx context.Context, name, zone string) ActionResult {
	return g.action(ctx, "gcp_start", "/action/start", name, zone)
}

// Stop implements Adapter.
func (g *GCPAdapter) Stop(ctx context.Context, name, zone string) ActionResult {
	return g.action(ctx, "gcp_stop", "/action/stop", name, zone)
}

// Delete implements Adapter.
func (g *GCPAdapter) Delete(ctx context.Context, name, zone string) ActionResult {
	return g.action(ctx, "gcp_delete", "/delete", name, zone)
}

func (g *GCPAdapter) action(ctx context.Context, operation, path, name, zone string) ActionResult {
	req := cloudActionRequest{Provider: GCP, ID: name, Zone: g.location(zone)}
	var raw json.RawMessage
	if err := g.api.Post(ctx, operation, path, req, &raw); err != nil {
		return actionFailure(err)
	}
	return decodeAction(raw)
}

func (g *GCPAdapter) location(zone string) string {
	if zone != "" {
		return zone
	}
	return g.zone
}
