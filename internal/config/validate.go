package config

import (
	"fmt"
	"net/url"
)

// ValidVMTypes contains the hypervisor guest types.
var ValidVMTypes = map[string]bool{
	"qemu": true, // full virtual machine
	"lxc":  true, // container
}

// Validate checks the configuration for common errors and returns a detailed error if validation fails.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute URL, got %q", c.API.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.base_url must use http or https, got %q", u.Scheme)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative")
	}

	if c.Defaults.GCPZone == "" {
		return fmt.Errorf("defaults.gcp_zone is required")
	}
	if c.Defaults.AWSRegion == "" {
		return fmt.Errorf("defaults.aws_region is required")
	}
	if !ValidVMTypes[c.Defaults.ProxmoxVMType] {
		return fmt.Errorf("defaults.proxmox_vm_type must be qemu or lxc, got %q", c.Defaults.ProxmoxVMType)
	}

	if c.Executor.RedirectDelay < 0 {
		return fmt.Errorf("executor.redirect_delay must not be negative")
	}
	if c.Refresh.Interval <= 0 {
		return fmt.Errorf("refresh.interval must be positive")
	}

	if c.Archive.Enabled() {
		if c.Archive.Region == "" {
			return fmt.Errorf("archive.region is required when archive.bucket is set")
		}
		if (c.Archive.AccessKey == "") != (c.Archive.SecretKey == "") {
			return fmt.Errorf("archive.access_key and archive.secret_key must be set together")
		}
	}

	if c.Events.NATSURL != "" && c.Events.Subject == "" {
		return fmt.Errorf("events.subject is required when events.nats_url is set")
	}
	return nil
}
