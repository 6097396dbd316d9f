package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/platform/api"
)

// Registry holds one adapter per provider.
type Registry struct {
	api      api.Caller
	proxmox  *ProxmoxAdapter
	adapters map[Name]Adapter
}

// RegistryOption configures a Registry.
type RegistryOption func(*registryConfig)

type registryConfig struct {
	gcpZone   string
	awsRegion string
	vmType    string
}

// WithGCPZone sets the default GCP zone.
func WithGCPZone(zone string) RegistryOption {
	return func(c *registryConfig) {
		c.gcpZone = zone
	}
}

// WithAWSRegion sets the default AWS region.
func WithAWSRegion(region string) RegistryOption {
	return func(c *registryConfig) {
		c.awsRegion = region
	}
}

// WithProxmoxVMType sets the default Proxmox VM type.
func WithProxmoxVMType(vmType string) RegistryOption {
	return func(c *registryConfig) {
		c.vmType = vmType
	}
}

// NewRegistry creates adapters for every provider over one backend client.
func NewRegistry(caller api.Caller, opts ...RegistryOption) *Registry {
	cfg := registryConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	px := NewProxmoxAdapter(caller, cfg.vmType)
	return &Registry{
		api:     caller,
		proxmox: px,
		adapters: map[Name]Adapter{
			Proxmox: px,
			GCP:     NewGCPAdapter(caller, cfg.gcpZone),
			AWS:     NewAWSAdapter(caller, cfg.awsRegion),
		},
	}
}

// Adapter returns the adapter for name.
func (r *Registry) Adapter(name Name) (Adapter, error) {
	a, ok := r.adapters[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return a, nil
}

// Proxmox returns the hypervisor adapter, which has operations the other
// providers lack.
func (r *Registry) Proxmox() *ProxmoxAdapter {
	return r.proxmox
}

// HybridResult holds each cloud's answer to a hybrid create, unmerged.
type HybridResult struct {
	GCP CreateResult `json:"gcp"`
	AWS CreateResult `json:"aws"`
}

// AnySucceeded reports whether at least one cloud created something.
func (h HybridResult) AnySucceeded() bool {
	return h.GCP.Success || h.AWS.Success
}

// CreateAll creates on GCP and AWS concurrently and returns both results as
// received. A failure on one side does not affect the other.
func (r *Registry) CreateAll(ctx context.Context, gcpSpec, awsSpec SizingSpec) HybridResult {
	var (
		wg  sync.WaitGroup
		out HybridResult
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		out.GCP = r.adapters[GCP].Create(ctx, gcpSpec)
	}()
	go func() {
		defer wg.Done()
		out.AWS = r.adapters[AWS].Create(ctx, awsSpec)
	}()
	wg.Wait()
	return out
}

type hybridCreateRequest struct {
	GCP         *gcpCreateRequest `json:"gcp,omitempty"`
	AWS         *awsCreateRequest `json:"aws,omitempty"`
	ClusterType string            `json:"cluster_type,omitempty"`
}

// CreateAllRemote asks the backend to perform the hybrid create itself through
// POST /all/create. A nil spec leaves that cloud out of the request.
func (r *Registry) CreateAllRemote(ctx context.Context, gcpSpec, awsSpec *SizingSpec) HybridResult {
	req := hybridCreateRequest{}
	if gcpSpec != nil {
		g := r.adapters[GCP].(*GCPAdapter).createRequest(*gcpSpec)
		req.GCP = &g
		req.ClusterType = gcpSpec.SoftwareStack
	}
	if awsSpec != nil {
		a := r.adapters[AWS].(*AWSAdapter).createRequest(*awsSpec)
		req.AWS = &a
		if req.ClusterType == "" {
			req.ClusterType = awsSpec.SoftwareStack
		}
	}

	var raw json.RawMessage
	if err := r.api.Post(ctx, "all_create", "/all/create", req, &raw); err != nil {
		failed := createFailure(err)
		return HybridResult{GCP: failed, AWS: failed}
	}

	var parts struct {
		GCP json.RawMessage `json:"gcp"`
		AWS json.RawMessage `json:"aws"`
	}
	if err := json.Unmarshal(raw, &parts); err != nil {
		failed := createFailure(fmt.Errorf("failed to decode hybrid create response: %w", err))
		return HybridResult{GCP: failed, AWS: failed}
	}
	out := HybridResult{}
	if len(parts.GCP) > 0 {
		out.GCP = decodeCreate(parts.GCP)
	}
	if len(parts.AWS) > 0 {
		out.AWS = decodeCreate(parts.AWS)
	}
	return out
}
