package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Name identifies a provider.
type Name string

const (
	Proxmox Name = "proxmox"
	GCP     Name = "gcp"
	AWS     Name = "aws"
)

// Names lists every provider in display order.
var Names = []Name{Proxmox, GCP, AWS}

// ParseName validates a provider name.
func ParseName(s string) (Name, error) {
	n := Name(strings.ToLower(strings.TrimSpace(s)))
	switch n {
	case Proxmox, GCP, AWS:
		return n, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownProvider, s)
}

// Status is the normalized power state of an instance.
type Status string

const (
	StatusRunning Status = "running"
	StatusStopped Status = "stopped"
	StatusUnknown Status = "unknown"
)

var (
	// ErrUnknownProvider is returned for a provider name the registry does not know.
	ErrUnknownProvider = errors.New("unknown provider")
	// ErrListUnsuccessful is returned when a listing answers success:false.
	ErrListUnsuccessful = errors.New("listing was not successful")
)

// Instance is the provider-neutral view of one machine.
type Instance struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Provider    Name     `json:"provider"`
	Status      Status   `json:"status"`
	Location    string   `json:"location,omitempty"`
	CPU         int      `json:"cpu"`
	RAMGB       float64  `json:"ram_gb"`
	DiskGB      int      `json:"disk_gb,omitempty"`
	PublicIPs   []string `json:"public_ips,omitempty"`
	MachineType string   `json:"machine_type,omitempty"`
	ClusterTag  string   `json:"cluster_tag,omitempty"`
}

// Target returns the identifier the provider's actions expect:
// the name for Proxmox and GCP, the instance ID for AWS.
func (i Instance) Target() string {
	if i.Provider == AWS {
		return i.ID
	}
	if i.Name != "" {
		return i.Name
	}
	return i.ID
}

// SizingSpec describes machines to create, independent of provider.
type SizingSpec struct {
	Name          string
	Cores         int
	MemoryMB      int
	DiskGB        int
	Count         int
	SoftwareStack string
	Password      string
	SSHKey        string
	MachineType   string
	Location      string
	VMType        string
	Start         bool
}

// CreateResult is a provider's answer to a create request.
type CreateResult struct {
	Success  bool              `json:"success"`
	Error    string            `json:"error,omitempty"`
	ID       string            `json:"id,omitempty"`
	Name     string            `json:"name,omitempty"`
	IP       string            `json:"ip,omitempty"`
	Password string            `json:"password,omitempty"`
	Created  []json.RawMessage `json:"created,omitempty"`
	Raw      json.RawMessage   `json:"raw,omitempty"`
}

// ActionResult is a provider's answer to start, stop, restart or delete.
type ActionResult struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Raw     json.RawMessage `json:"raw,omitempty"`
}

// Adapter is one infrastructure backend.
type Adapter interface {
	Name() Name
	Create(ctx context.Context, spec SizingSpec) CreateResult
	List(ctx context.Context, location string) ([]Instance, error)
	Start(ctx context.Context, id, location string) ActionResult
	Stop(ctx context.Context, id, location string) ActionResult
	Delete(ctx context.Context, id, location string) ActionResult
}

type createEnvelope struct {
	Success  bool              `json:"success"`
	Error    json.RawMessage   `json:"error"`
	VMID     number            `json:"vmid"`
	ID       json.RawMessage   `json:"id"`
	Name     string            `json:"name"`
	IP       string            `json:"ip"`
	Password string            `json:"password"`
	Created  []json.RawMessage `json:"created"`
}

func decodeCreate(raw json.RawMessage) CreateResult {
	var env createEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return CreateResult{Error: fmt.Sprintf("failed to decode create response: %v", err), Raw: raw}
	}
	res := CreateResult{
		Success:  env.Success,
		Error:    errorText(env.Error),
		Name:     env.Name,
		IP:       env.IP,
		Password: env.Password,
		Created:  env.Created,
		Raw:      raw,
	}
	switch {
	case env.VMID > 0:
		res.ID = strconv.Itoa(int(env.VMID))
	case len(env.ID) > 0:
		res.ID = scalarText(env.ID)
	}
	return res
}

func decodeAction(raw json.RawMessage) ActionResult {
	var env struct {
		Success bool            `json:"success"`
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return ActionResult{Error: fmt.Sprintf("failed to decode action response: %v", err), Raw: raw}
	}
	res := ActionResult{Success: env.Success, Error: errorText(env.Error), Raw: raw}
	if !res.Success && res.Error == "" {
		res.Error = env.Message
	}
	return res
}

func createFailure(err error) CreateResult {
	return CreateResult{Error: err.Error()}
}

func actionFailure(err error) ActionResult {
	return ActionResult{Error: err.Error()}
}

// errorText renders an error field that may be a string or any JSON value.
func errorText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func scalarText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// normalizeStatus maps the provider status vocabularies onto Status.
func normalizeStatus(s string) Status {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "running":
		return StatusRunning
	case "stopped", "terminated", "suspended":
		return StatusStopped
	default:
		return StatusUnknown
	}
}

// lastSegment reduces a resource URL to its final path element.
func lastSegment(s string) string {
	if i := strings.LastIndex(s, "/"); i >= 0 {
		return s[i+1:]
	}
	return s
}

// number decodes JSON numbers and numeric strings. Anything else reads as 0.
type number float64

func (n *number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*n = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		_ = json.Unmarshal(data, &s)
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			*n = 0
			return nil
		}
		*n = number(f)
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = number(f)
	return nil
}

func (n number) Int() int {
	return int(math.Round(float64(n)))
}
