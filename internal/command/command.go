// Package command models the structured instructions proposed by the assistant
// and the result of executing them.
//
// A Command keeps the exact JSON object it was decoded from. Execution sends that
// object back verbatim, so fields this package does not model are never lost.
package command

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Kind identifies what a command does.
type Kind string

// Actionable kinds.
const (
	KindCreateCluster  Kind = "create_cluster"
	KindDeleteCluster  Kind = "delete_cluster"
	KindDeleteInstance Kind = "delete_instance"
	KindStartCluster   Kind = "start_cluster"
	KindStopCluster    Kind = "stop_cluster"
)

// actionable is the closed set of kinds that may be confirmed and executed.
// Anything else is shown as information only.
var actionable = map[Kind]struct{}{
	KindCreateCluster:  {},
	KindDeleteCluster:  {},
	KindDeleteInstance: {},
	KindStartCluster:   {},
	KindStopCluster:    {},
}

// Actionable reports whether k is in the executable whitelist.
func (k Kind) Actionable() bool {
	_, ok := actionable[k]
	return ok
}

// ActionableKinds returns the whitelist in sorted order.
func ActionableKinds() []Kind {
	kinds := make([]Kind, 0, len(actionable))
	for k := range actionable {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Command is a structured instruction proposed by the assistant.
type Command struct {
	Kind        Kind
	Explanation string
	Parameters  ParameterSet

	raw json.RawMessage
}

// wireCommand is the JSON shape of a command object.
type wireCommand struct {
	Command     Kind         `json:"command"`
	Explanation string       `json:"explanation,omitempty"`
	Parameters  ParameterSet `json:"parameters"`
}

// New builds a command from its parts. The payload is synthesized from them.
func New(kind Kind, explanation string, params ParameterSet) (*Command, error) {
	raw, err := json.Marshal(wireCommand{Command: kind, Explanation: explanation, Parameters: params})
	if err != nil {
		return nil, fmt.Errorf("failed to encode command: %w", err)
	}
	return &Command{Kind: kind, Explanation: explanation, Parameters: params, raw: raw}, nil
}

// Parse decodes a command object, keeping data as its payload.
func Parse(data []byte) (*Command, error) {
	c := &Command{}
	if err := c.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return c, nil
}

// Actionable reports whether the command may be confirmed and executed.
func (c *Command) Actionable() bool {
	return c != nil && c.Kind.Actionable()
}

// Payload returns the object sent to the execution backend.
func (c *Command) Payload() json.RawMessage {
	return c.raw
}

// UnmarshalJSON implements json.Unmarshaler. Any JSON object is accepted;
// fields of an unexpected type are left empty.
func (c *Command) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("failed to decode command: %w", err)
	}
	if fields == nil {
		return fmt.Errorf("failed to decode command: not an object")
	}
	var kind, explanation string
	_ = json.Unmarshal(fields["command"], &kind)
	_ = json.Unmarshal(fields["explanation"], &explanation)
	var params ParameterSet
	if raw, ok := fields["parameters"]; ok {
		_ = params.UnmarshalJSON(raw)
	}
	c.Kind = Kind(kind)
	c.Explanation = explanation
	c.Parameters = params
	c.raw = append(json.RawMessage(nil), bytes.TrimSpace(data)...)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (c Command) MarshalJSON() ([]byte, error) {
	if len(c.raw) > 0 {
		return c.raw, nil
	}
	return json.Marshal(wireCommand{Command: c.Kind, Explanation: c.Explanation, Parameters: c.Parameters})
}

// ProviderParameters holds one provider's sizing for a command.
// gcp uses MachineType/Zone/Count, aws uses InstanceType/Region/MinCount/MaxCount.
type ProviderParameters struct {
	MachineType  string `json:"machine_type,omitempty"`
	InstanceType string `json:"instance_type,omitempty"`
	Zone         string `json:"zone,omitempty"`
	Region       string `json:"region,omitempty"`
	Count        int    `json:"count,omitempty"`
	MinCount     int    `json:"min_count,omitempty"`
	MaxCount     int    `json:"max_count,omitempty"`
	Name         string `json:"name,omitempty"`
	ClusterType  string `json:"cluster_type,omitempty"`
}

// Nodes returns the node count the parameters describe, at least 1.
func (p ProviderParameters) Nodes() int {
	for _, n := range []int{p.Count, p.MinCount, p.MaxCount} {
		if n > 0 {
			return n
		}
	}
	return 1
}

// Type returns the machine or instance type, whichever is set.
func (p ProviderParameters) Type() string {
	if p.MachineType != "" {
		return p.MachineType
	}
	return p.InstanceType
}

// Location returns the zone or region, whichever is set.
func (p ProviderParameters) Location() string {
	if p.Zone != "" {
		return p.Zone
	}
	return p.Region
}

// UnmarshalJSON accepts counts encoded as numbers or numeric strings.
func (p *ProviderParameters) UnmarshalJSON(data []byte) error {
	var w struct {
		MachineType  string      `json:"machine_type"`
		InstanceType string      `json:"instance_type"`
		Zone         string      `json:"zone"`
		Region       string      `json:"region"`
		Count        json.Number `json:"count"`
		MinCount     json.Number `json:"min_count"`
		MaxCount     json.Number `json:"max_count"`
		Name         string      `json:"name"`
		ClusterType  string      `json:"cluster_type"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*p = ProviderParameters{
		MachineType:  w.MachineType,
		InstanceType: w.InstanceType,
		Zone:         w.Zone,
		Region:       w.Region,
		Count:        atoi(w.Count),
		MinCount:     atoi(w.MinCount),
		MaxCount:     atoi(w.MaxCount),
		Name:         w.Name,
		ClusterType:  w.ClusterType,
	}
	return nil
}

func atoi(n json.Number) int {
	if n == "" {
		return 0
	}
	if i, err := n.Int64(); err == nil {
		return int(i)
	}
	if f, err := strconv.ParseFloat(string(n), 64); err == nil {
		return int(f)
	}
	return 0
}

// ParameterSet maps provider names to their parameters, plus an optional
// software-stack tag shared by all of them.
type ParameterSet struct {
	Providers   map[string]ProviderParameters
	ClusterType string
}

// Provider returns the parameters for name.
func (ps ParameterSet) Provider(name string) (ProviderParameters, bool) {
	p, ok := ps.Providers[name]
	return p, ok
}

// ProviderNames returns the providers the set targets in sorted order.
func (ps ParameterSet) ProviderNames() []string {
	names := make([]string, 0, len(ps.Providers))
	for n := range ps.Providers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// UnmarshalJSON reads provider entries from object-valued keys and the
// cluster_type tag. Values of any other shape are ignored.
func (ps *ParameterSet) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*ps = ParameterSet{}
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("failed to decode parameters: %w", err)
	}
	out := ParameterSet{}
	for key, raw := range fields {
		if key == "cluster_type" {
			_ = json.Unmarshal(raw, &out.ClusterType)
			continue
		}
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) == 0 || trimmed[0] != '{' {
			continue
		}
		var p ProviderParameters
		if err := json.Unmarshal(trimmed, &p); err != nil {
			continue
		}
		if out.Providers == nil {
			out.Providers = make(map[string]ProviderParameters)
		}
		out.Providers[key] = p
	}
	*ps = out
	return nil
}

// MarshalJSON implements json.Marshaler.
func (ps ParameterSet) MarshalJSON() ([]byte, error) {
	fields := make(map[string]any, len(ps.Providers)+1)
	for name, p := range ps.Providers {
		fields[name] = p
	}
	if ps.ClusterType != "" {
		fields["cluster_type"] = ps.ClusterType
	}
	return json.Marshal(fields)
}
