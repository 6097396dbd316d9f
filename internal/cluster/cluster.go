// Package cluster reconstructs logical clusters from flat instance listings.
//
// Providers have no notion of a cluster; machines created together share a name
// prefix (web-1, web-2, ...). Group strips the numeric suffix and groups by
// what remains, unless the provider returned an explicit cluster tag, which
// always wins. The heuristic is lossy: unrelated machines whose names collide
// after stripping end up in one cluster.
package cluster

import (
	"errors"
	"regexp"

	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/provider"
)

// Status summarizes a cluster's power state.
type Status string

const (
	StatusActive  Status = "active"
	StatusMixed   Status = "mixed"
	StatusStopped Status = "stopped"
)

// UnknownName is the base name of instances without a name.
const UnknownName = "unknown"

// ErrNotFound is returned when no cluster matches a name and provider.
var ErrNotFound = errors.New("cluster not found")

// Key identifies a cluster within one refresh.
type Key struct {
	Name     string        `json:"name"`
	Provider provider.Name `json:"provider"`
}

func (k Key) String() string {
	return k.Name + "@" + string(k.Provider)
}

// Cluster is a display-time group of instances. It is never empty.
type Cluster struct {
	BaseName  string              `json:"name"`
	Provider  provider.Name       `json:"provider"`
	Instances []provider.Instance `json:"instances"`
	CPUTotal  int                 `json:"cpu_total"`
	RAMTotal  float64             `json:"ram_total_gb"`
	// Status is always StatusActive; see ObservedStatus.
	Status Status `json:"status"`
}

// Key returns the cluster's identity.
func (c Cluster) Key() Key {
	return Key{Name: c.BaseName, Provider: c.Provider}
}

// ObservedStatus derives a status from the members' power states: active if
// all run, stopped if none do, mixed otherwise. Unlike Status it reflects the
// instances, and is meant for display only.
func (c Cluster) ObservedStatus() Status {
	running := 0
	for _, inst := range c.Instances {
		if inst.Status == provider.StatusRunning {
			running++
		}
	}
	switch running {
	case len(c.Instances):
		return StatusActive
	case 0:
		return StatusStopped
	default:
		return StatusMixed
	}
}

var (
	dashSuffix  = regexp.MustCompile(`-\d+$`)
	digitSuffix = regexp.MustCompile(`\d+$`)
)

// BaseName strips a trailing -<digits> from name or, when there is none,
// trailing bare digits. A name made only of digits is kept as is.
func BaseName(name string) string {
	if name == "" {
		return UnknownName
	}
	var base string
	if dashSuffix.MatchString(name) {
		base = dashSuffix.ReplaceAllString(name, "")
	} else {
		base = digitSuffix.ReplaceAllString(name, "")
	}
	if base == "" {
		return name
	}
	return base
}

func groupName(inst provider.Instance) string {
	if inst.ClusterTag != "" {
		return inst.ClusterTag
	}
	return BaseName(inst.Name)
}

// Group partitions instances of one provider into clusters, in the order each
// base name is first seen.
func Group(instances []provider.Instance, p provider.Name) []Cluster {
	index := make(map[string]int)
	var out []Cluster
	for _, inst := range instances {
		name := groupName(inst)
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, Cluster{BaseName: name, Provider: p, Status: StatusActive})
		}
		c := &out[i]
		c.Instances = append(c.Instances, inst)
		c.CPUTotal += max(inst.CPU, 0)
		if inst.RAMGB > 0 {
			c.RAMTotal += inst.RAMGB
		}
	}
	return out
}

// Flatten returns the instances of clusters in order.
func Flatten(clusters []Cluster) []provider.Instance {
	var out []provider.Instance
	for _, c := range clusters {
		out = append(out, c.Instances...)
	}
	return out
}

// Find returns the cluster with key k.
func Find(clusters []Cluster, k Key) (Cluster, bool) {
	for _, c := range clusters {
		if c.Key() == k {
			return c, true
		}
	}
	return Cluster{}, false
}
