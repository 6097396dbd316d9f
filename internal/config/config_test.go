package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultBaseURL, cfg.API.BaseURL)
	assert.Equal(t, time.Duration(0), cfg.API.Timeout)
	assert.Equal(t, 1500*time.Millisecond, cfg.Executor.RedirectDelay)
	assert.False(t, cfg.Archive.Enabled())
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
api:
  base_url: https://console.example.com/api
  timeout: 20s
defaults:
  gcp_zone: europe-west1-b
  proxmox_vm_type: lxc
refresh:
  interval: 1m
  include_proxmox: true
preferences:
  in_memory: true
archive:
  bucket: transcripts
  endpoint: http://minio:9000
events:
  nats_url: nats://localhost:4222
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "https://console.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 20*time.Second, cfg.API.Timeout)
	assert.Equal(t, "europe-west1-b", cfg.Defaults.GCPZone)
	assert.Equal(t, DefaultAWSRegion, cfg.Defaults.AWSRegion)
	assert.Equal(t, "lxc", cfg.Defaults.ProxmoxVMType)
	assert.Equal(t, time.Minute, cfg.Refresh.Interval)
	assert.True(t, cfg.Refresh.IncludeProxmox)
	assert.True(t, cfg.Preferences.InMemory)
	assert.True(t, cfg.Archive.Enabled())
	assert.Equal(t, DefaultArchiveRegion, cfg.Archive.Region)
	assert.Equal(t, DefaultEventsSubject, cfg.Events.Subject)
	assert.Equal(t, DefaultRedirectDelay, cfg.Executor.RedirectDelay)
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")

	_, err = LoadFile(writeConfig(t, "api: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal yaml")

	_, err = LoadFile(writeConfig(t, "defaults:\n  proxmox_vm_type: xen\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
api:
  base_url: http://file.example.com/api
  timeout: 5s
preferences:
  in_memory: true
`)
	t.Setenv(EnvAPIURL, "http://env.example.com/api")
	t.Setenv(EnvAPITimeout, "45s")
	t.Setenv(EnvAWSRegion, "eu-west-3")
	t.Setenv(EnvNATSURL, "nats://bus:4222")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://env.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 45*time.Second, cfg.API.Timeout)
	assert.Equal(t, "eu-west-3", cfg.Defaults.AWSRegion)
	assert.Equal(t, "nats://bus:4222", cfg.Events.NATSURL)
}

func TestLoad_ConfigPathFromEnv(t *testing.T) {
	path := writeConfig(t, "defaults:\n  gcp_zone: asia-east1-a\npreferences:\n  in_memory: true\n")
	t.Setenv(EnvConfigPath, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "asia-east1-a", cfg.Defaults.GCPZone)
}

func TestLoad_MissingDefaultFileIsFine(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(EnvConfigPath, "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, cfg.API.BaseURL)
	assert.Equal(t, filepath.Join(os.Getenv("HOME"), DefaultPreferencesDir), cfg.Preferences.Path)
}

func TestLoad_MissingExplicitFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidEnvDuration(t *testing.T) {
	t.Setenv(EnvAPITimeout, "soon")
	_, err := Load(writeConfig(t, "preferences:\n  in_memory: true\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvAPITimeout)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"relative url", func(c *Config) { c.API.BaseURL = "/api" }, "api.base_url"},
		{"bad scheme", func(c *Config) { c.API.BaseURL = "ftp://h/api" }, "http or https"},
		{"negative timeout", func(c *Config) { c.API.Timeout = -time.Second }, "api.timeout"},
		{"no zone", func(c *Config) { c.Defaults.GCPZone = "" }, "gcp_zone"},
		{"no region", func(c *Config) { c.Defaults.AWSRegion = "" }, "aws_region"},
		{"zero refresh", func(c *Config) { c.Refresh.Interval = 0 }, "refresh.interval"},
		{"negative redirect", func(c *Config) { c.Executor.RedirectDelay = -1 }, "redirect_delay"},
		{"half archive keys", func(c *Config) {
			c.Archive.Bucket = "b"
			c.Archive.AccessKey = "ak"
		}, "set together"},
		{"archive without region", func(c *Config) {
			c.Archive.Bucket = "b"
			c.Archive.Region = ""
		}, "archive.region"},
		{"nats without subject", func(c *Config) {
			c.Events.NATSURL = "nats://x"
			c.Events.Subject = ""
		}, "events.subject"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
