package provider

import (
	"context"
	"errors"
	"fmt"
	"net/url"
)

// ErrNoCredentials is returned when the backend has no credentials for an instance.
var ErrNoCredentials = errors.New("no credentials available")

// Credentials grant login access to one instance.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	IP       string `json:"ip"`
	Provider Name   `json:"provider"`
	Location string `json:"location,omitempty"`
	Node     string `json:"node,omitempty"`
	VMID     int    `json:"vmid,omitempty"`
}

// SSHCommand returns the command line to log in.
func (c Credentials) SSHCommand() string {
	return fmt.Sprintf("ssh %s@%s", c.Username, c.IP)
}

type credentialsResponse struct {
	Success     bool   `json:"success"`
	Error       string `json:"error"`
	Credentials *struct {
		Username string `json:"username"`
		Password string `json:"password"`
		IP       string `json:"ip"`
		Provider string `json:"provider"`
		Zone     string `json:"zone"`
		Region   string `json:"region"`
		Node     string `json:"node"`
		VMID     number `json:"vmid"`
	} `json:"credentials"`
}

// Credentials looks up the login for an instance by name.
func (r *Registry) Credentials(ctx context.Context, instanceName string) (Credentials, error) {
	var resp credentialsResponse
	q := url.Values{"instance_name": {instanceName}}
	if err := r.api.Get(ctx, "credentials", "/credentials", q, &resp); err != nil {
		return Credentials{}, fmt.Errorf("failed to look up credentials for %s: %w", instanceName, err)
	}
	if !resp.Success || resp.Credentials == nil {
		if resp.Error != "" {
			return Credentials{}, fmt.Errorf("%w for %s: %s", ErrNoCredentials, instanceName, resp.Error)
		}
		return Credentials{}, fmt.Errorf("%w for %s", ErrNoCredentials, instanceName)
	}
	c := resp.Credentials
	out := Credentials{
		Username: c.Username,
		Password: c.Password,
		IP:       c.IP,
		Provider: Name(c.Provider),
		Location: firstOf(c.Zone, c.Region),
		Node:     c.Node,
		VMID:     c.VMID.Int(),
	}
	if out.Location == "" && out.Node != "" {
		out.Location = out.Node
	}
	return out, nil
}
