package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/platform/api"
)

// Proxmox VM types.
const (
	VMTypeQEMU = "qemu"
	VMTypeLXC  = "lxc"
)

// ProxmoxAdapter manages virtual machines and containers on the private
// hypervisor. Its actions address machines by name; the location hint is
// ignored because the backend resolves the node itself.
type ProxmoxAdapter struct {
	api    api.Caller
	vmType string
}

// NewProxmoxAdapter creates a ProxmoxAdapter. defaultVMType is used when a
// spec does not name one.
func NewProxmoxAdapter(caller api.Caller, defaultVMType string) *ProxmoxAdapter {
	if defaultVMType == "" {
		defaultVMType = VMTypeQEMU
	}
	return &ProxmoxAdapter{api: caller, vmType: defaultVMType}
}

// Name implements Adapter.
func (p *ProxmoxAdapter) Name() Name { return Proxmox }

type proxmoxCreateRequest struct {
	Name        string `json:"name"`
	VMType      string `json:"vm_type"`
	Cores       int    `json:"cores"`
	Memory      int    `json:"memory"`
	DiskSize    int    `json:"disk_size"`
	Count       int    `json:"count,omitempty"`
	Password    string `json:"password,omitempty"`
	ClusterType string `json:"cluster_type,omitempty"`
	SSHKey      string `json:"ssh_key,omitempty"`
	Start       bool   `json:"start,omitempty"`
}

// Create implements Adapter.
func (p *ProxmoxAdapter) Create(ctx context.Context, spec SizingSpec) CreateResult {
	req := proxmoxCreateRequest{
		Name:        spec.Name,
		VMType:      p.vmTypeFor(spec),
		Cores:       spec.Cores,
		Memory:      spec.MemoryMB,
		DiskSize:    spec.DiskGB,
		Count:       spec.Count,
		Password:    spec.Password,
		ClusterType: spec.SoftwareStack,
		SSHKey:      spec.SSHKey,
		Start:       spec.Start,
	}
	var raw json.RawMessage
	if err := p.api.Post(ctx, "proxmox_create", "/proxmox/create", req, &raw); err != nil {
		return createFailure(err)
	}
	return decodeCreate(raw)
}

type proxmoxVM struct {
	VMID   number `json:"vmid"`
	Name   string `json:"name"`
	Node   string `json:"node"`
	Type   string `json:"type"`
	Status string `json:"status"`
	CPU    number `json:"cpu"`
	Memory number `json:"memory"`
	Disk   number `json:"disk"`
	IP     string `json:"ip"`
}

type proxmoxListResponse struct {
	Success bool        `json:"success"`
	Count   int         `json:"count"`
	VMs     []proxmoxVM `json:"vms"`
	Message string      `json:"message"`
	Error   string      `json:"error"`
}

// List implements Adapter. location is unused.
func (p *ProxmoxAdapter) List(ctx context.Context, _ string) ([]Instance, error) {
	var resp proxmoxListResponse
	if err := p.api.Get(ctx, "proxmox_list", "/proxmox/list", nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list proxmox machines: %w", err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("%w: proxmox: %s", ErrListUnsuccessful, firstNonEmpty(resp.Error, resp.Message))
	}
	out := make([]Instance, 0, len(resp.VMs))
	for _, vm := range resp.VMs {
		inst := Instance{
			ID:          strconv.Itoa(vm.VMID.Int()),
			Name:        vm.Name,
			Provider:    Proxmox,
			Status:      normalizeStatus(vm.Status),
			Location:    vm.Node,
			CPU:         vm.CPU.Int(),
			RAMGB:       float64(vm.Memory) / 1024,
			DiskGB:      vm.Disk.Int(),
			MachineType: vm.Type,
		}
		if vm.IP != "" {
			inst.PublicIPs = []string{vm.IP}
		}
		out = append(out, inst)
	}
	return out, nil
}

type proxmoxActionRequest struct {
	Name  string `json:"name"`
	Force bool   `json:"force,omitempty"`
}

// Start implements Adapter.
func (p *ProxmoxAdapter) Start(ctx context.Context, name, _ string) ActionResult {
	return p.action(ctx, "start", proxmoxActionRequest{Name: name})
}

// Stop implements Adapter.
func (p *ProxmoxAdapter) Stop(ctx context.Context, name, _ string) ActionResult {
	return p.action(ctx, "stop", proxmoxActionRequest{Name: name})
}

// Delete implements Adapter. Running machines are removed too.
func (p *ProxmoxAdapter) Delete(ctx context.Context, name, _ string) ActionResult {
	return p.action(ctx, "delete", proxmoxActionRequest{Name: name, Force: true})
}

// Restart reboots a machine.
func (p *ProxmoxAdapter) Restart(ctx context.Context, name string) ActionResult {
	return p.action(ctx, "restart", proxmoxActionRequest{Name: name})
}

func (p *ProxmoxAdapter) action(ctx context.Context, verb string, req proxmoxActionRequest) ActionResult {
	var raw json.RawMessage
	if err := p.api.Post(ctx, "proxmox_"+verb, "/proxmox/"+verb, req, &raw); err != nil {
		return actionFailure(err)
	}
	return decodeAction(raw)
}

// SwarmNode sizes one role of a Docker Swarm cluster.
type SwarmNode struct {
	Name     string `json:"name"`
	VMType   string `json:"vm_type"`
	Cores    int    `json:"cores"`
	Memory   int    `json:"memory"`
	DiskSize int    `json:"disk_size"`
	Count    int    `json:"count,omitempty"`
}

// SwarmRequest is the body of POST /cluster/create.
type SwarmRequest struct {
	Manager SwarmNode   `json:"manager"`
	Workers []SwarmNode `json:"workers"`
}

// NewSwarmRequest splits spec.Count nodes into one manager named
// <name>-manager and Count-1 workers named <name>-worker.
func (p *ProxmoxAdapter) NewSwarmRequest(spec SizingSpec) SwarmRequest {
	node := SwarmNode{
		VMType:   p.vmTypeFor(spec),
		Cores:    spec.Cores,
		Memory:   spec.MemoryMB,
		DiskSize: spec.DiskGB,
	}
	manager := node
	manager.Name = spec.Name + "-manager"

	req := SwarmRequest{Manager: manager, Workers: []SwarmNode{}}
	if workers := spec.Count - 1; workers > 0 {
		worker := node
		worker.Name = spec.Name + "-worker"
		worker.Count = workers
		req.Workers = append(req.Workers, worker)
	}
	return req
}

// CreateSwarm creates a Docker Swarm cluster.
func (p *ProxmoxAdapter) CreateSwarm(ctx context.Context, spec SizingSpec) CreateResult {
	var raw json.RawMessage
	if err := p.api.Post(ctx, "swarm_create", "/cluster/create", p.NewSwarmRequest(spec), &raw); err != nil {
		return createFailure(err)
	}
	return decodeCreate(raw)
}

func (p *ProxmoxAdapter) vmTypeFor(spec SizingSpec) string {
	if spec.VMType != "" {
		return spec.VMType
	}
	return p.vmType
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return "no details"
}
