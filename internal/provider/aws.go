package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/platform/api"
)

// DefaultAWSRegion is used when neither the sizing spec nor the caller names a region.
const DefaultAWSRegion = "us-east-1"

// AWSAdapter manages EC2 instances. Instances are addressed by instance ID
// within a region.
type AWSAdapter struct {
	api    api.Caller
	region string
}

// NewAWSAdapter creates an AWSAdapter with a default region.
func NewAWSAdapter(caller api.Caller, region string) *AWSAdapter {
	if region == "" {
		region = DefaultAWSRegion
	}
	return &AWSAdapter{api: caller, region: region}
}

// Name implements Adapter.
func (a *AWSAdapter) Name() Name { return AWS }

// DefaultLocation returns the region used when none is given.
func (a *AWSAdapter) DefaultLocation() string { return a.region }

type awsCreateRequest struct {
	Name         string `json:"name"`
	InstanceType string `json:"instance_type"`
	Region       string `json:"region"`
	MinCount     int    `json:"min_count"`
	MaxCount     int    `json:"max_count"`
	ClusterType  string `json:"cluster_type,omitempty"`
	Password     string `json:"password,omitempty"`
}

func (a *AWSAdapter) createRequest(spec SizingSpec) awsCreateRequest {
	count := max(spec.Count, 1)
	return awsCreateRequest{
		Name:         spec.Name,
		InstanceType: spec.MachineType,
		Region:       a.location(spec.Location),
		MinCount:     count,
		MaxCount:     count,
		ClusterType:  spec.SoftwareStack,
		Password:     spec.Password,
	}
}

// Create implements Adapter.
func (a *AWSAdapter) Create(ctx context.Context, spec SizingSpec) CreateResult {
	var raw json.RawMessage
	if err := a.api.Post(ctx, "aws_create", "/aws/create", a.createRequest(spec), &raw); err != nil {
		return createFailure(err)
	}
	return decodeCreate(raw)
}

type awsTag struct {
	Key   string `json:"Key"`
	Value string `json:"Value"`
}

type awsInstance struct {
	InstanceID      string `json:"InstanceId"`
	Name            string `json:"Name"`
	LowerName       string `json:"name"`
	PublicIPAddress string `json:"PublicIpAddress"`
	InstanceType    string `json:"InstanceType"`
	State           struct {
		Name string `json:"Name"`
	} `json:"State"`
	Placement struct {
		AvailabilityZone string `json:"AvailabilityZone"`
	} `json:"Placement"`
	CPU  number   `json:"cpu"`
	RAM  number   `json:"ram"`
	Tags []awsTag `json:"Tags"`
}

func (in awsInstance) tag(key string) string {
	for _, t := range in.Tags {
		if strings.EqualFold(t.Key, key) {
			return t.Value
		}
	}
	return ""
}

// List implements Adapter. location is a region.
func (a *AWSAdapter) List(ctx context.Context, region string) ([]Instance, error) {
	region = a.location(region)
	var resp cloudListResponse[awsInstance]
	if err := a.api.Get(ctx, "aws_list", "/aws/list", url.Values{"region": {region}}, &resp); err != nil {
		return nil, fmt.Errorf("failed to list aws instances: %w", err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("%w: aws: %s", ErrListUnsuccessful, firstNonEmpty(resp.Error, resp.Message))
	}
	out := make([]Instance, 0, len(resp.Instances))
	for _, in := range resp.Instances {
		name := firstOf(in.Name, in.LowerName, in.tag("Name"), in.InstanceID)
		inst := Instance{
			ID:          in.InstanceID,
			Name:        name,
			Provider:    AWS,
			Status:      normalizeStatus(in.State.Name),
			Location:    regionFromZone(in.Placement.AvailabilityZone),
			CPU:         in.CPU.Int(),
			RAMGB:       float64(in.RAM),
			MachineType: in.InstanceType,
			ClusterTag:  in.tag("cluster"),
		}
		if inst.Location == "" {
			inst.Location = region
		}
		if in.PublicIPAddress != "" {
			inst.PublicIPs = []string{in.PublicIPAddress}
		}
		out = append(out, inst)
	}
	return out, nil
}

// Start implements Adapter.
func (a *AWSAdapter) Start(ctx context.Context, id, region string) ActionResult {
	return a.action(ctx, "aws_start", "/action/start", id, region)
}

// Stop implements Adapter.
func (a *AWSAdapter) Stop(ctx context.Context, id, region string) ActionResult {
	return a.action(ctx, "aws_stop", "/action/stop", id, region)
}

// Delete implements Adapter.
func (a *AWSAdapter) Delete(ctx context.Context, id, region string) ActionResult {
	return a.action(ctx, "aws_delete", "/aws/delete", id, region)
}

func (a *AWSAdapter) action(ctx context.Context, operation, path, id, region string) ActionResult {
	req := cloudActionRequest{Provider: AWS, ID: id, Region: a.location(region)}
	var raw json.RawMessage
	if err := a.api.Post(ctx, operation, path, req, &raw); err != nil {
		return actionFailure(err)
	}
	return decodeAction(raw)
}

func (a *AWSAdapter) location(region string) string {
	if region != "" {
		return region
	}
	return a.region
}

// regionFromZone turns an availability zone such as us-east-1a into its region.
func regionFromZone(zone string) string {
	return strings.TrimRightFunc(zone, unicode.IsLetter)
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
