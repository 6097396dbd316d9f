package config

import (
	"time"
)

// Config is the console configuration.
type Config struct {
	API         APIConfig         `yaml:"api"`
	Defaults    DefaultsConfig    `yaml:"defaults"`
	Executor    ExecutorConfig    `yaml:"executor"`
	Refresh     RefreshConfig     `yaml:"refresh"`
	Preferences PreferencesConfig `yaml:"preferences"`
	Archive     ArchiveConfig     `yaml:"archive"`
	Events      EventsConfig      `yaml:"events"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Tracing     TracingConfig     `yaml:"tracing"`
}

// APIConfig points at the console backend.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	// Timeout bounds each backend call. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout"`
	Token   string        `yaml:"token"`
}

// DefaultsConfig holds the locations and VM type used when a request names none.
type DefaultsConfig struct {
	GCPZone       string `yaml:"gcp_zone"`
	AWSRegion     string `yaml:"aws_region"`
	ProxmoxVMType string `yaml:"proxmox_vm_type"`
}

// ExecutorConfig tunes command execution.
type ExecutorConfig struct {
	RedirectDelay time.Duration `yaml:"redirect_delay"`
}

// RefreshConfig tunes the cluster view.
type RefreshConfig struct {
	Interval       time.Duration `yaml:"interval"`
	IncludeProxmox bool          `yaml:"include_proxmox"`
}

// PreferencesConfig locates the preference store.
type PreferencesConfig struct {
	Path     string `yaml:"path"`
	InMemory bool   `yaml:"in_memory"`
}

// ArchiveConfig configures transcript upload. An empty bucket disables it.
type ArchiveConfig struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Prefix    string `yaml:"prefix"`
}

// Enabled reports whether an archive bucket is configured.
func (a ArchiveConfig) Enabled() bool {
	return a.Bucket != ""
}

// EventsConfig configures execution event publishing. An empty URL disables it.
type EventsConfig struct {
	NATSURL string `yaml:"nats_url"`
	Subject string `yaml:"subject"`
}

// MetricsConfig configures the Prometheus endpoint. An empty address disables it.
type MetricsConfig struct {
	Listen string `yaml:"listen"`
}

// TracingConfig toggles span output on stderr.
type TracingConfig struct {
	Stdout bool `yaml:"stdout"`
}

// Default values.
const (
	DefaultBaseURL        = "http://localhost:8000/api"
	DefaultGCPZone        = "us-central1-a"
	DefaultAWSRegion      = "us-east-1"
	DefaultProxmoxVMType  = "qemu"
	DefaultRedirectDelay  = 1500 * time.Millisecond
	DefaultRefresh        = 30 * time.Second
	DefaultEventsSubject  = "cloudweave.executions"
	DefaultArchiveRegion  = "us-east-1"
	DefaultPreferencesDir = ".cloudweave/prefs"
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{BaseURL: DefaultBaseURL},
		Defaults: DefaultsConfig{
			GCPZone:       DefaultGCPZone,
			AWSRegion:     DefaultAWSRegion,
			ProxmoxVMType: DefaultProxmoxVMType,
		},
		Executor: ExecutorConfig{RedirectDelay: DefaultRedirectDelay},
		Refresh:  RefreshConfig{Interval: DefaultRefresh},
		Archive:  ArchiveConfig{Region: DefaultArchiveRegion},
		Events:   EventsConfig{Subject: DefaultEventsSubject},
	}
}
