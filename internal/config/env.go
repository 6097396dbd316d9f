package config

import (
	"fmt"
	"os"
	"time"
)

// Environment variables that override file settings.
const (
	EnvAPIURL          = "CLOUDWEAVE_API_URL"
	EnvAPIToken        = "CLOUDWEAVE_API_TOKEN"
	EnvAPITimeout      = "CLOUDWEAVE_API_TIMEOUT"
	EnvGCPZone         = "CLOUDWEAVE_GCP_ZONE"
	EnvAWSRegion       = "CLOUDWEAVE_AWS_REGION"
	EnvNATSURL         = "CLOUDWEAVE_NATS_URL"
	EnvArchiveBucket   = "CLOUDWEAVE_ARCHIVE_BUCKET"
	EnvArchiveAccess   = "CLOUDWEAVE_ARCHIVE_ACCESS_KEY"
	EnvArchiveSecret   = "CLOUDWEAVE_ARCHIVE_SECRET_KEY"
	EnvMetricsListen   = "CLOUDWEAVE_METRICS_LISTEN"
	EnvRefreshInterval = "CLOUDWEAVE_REFRESH_INTERVAL"
)

// ApplyEnv overrides settings from the environment. Unlike file values, a
// malformed duration is an error rather than silently ignored.
func (c *Config) ApplyEnv() error {
	setString(&c.API.BaseURL, EnvAPIURL)
	setString(&c.API.Token, EnvAPIToken)
	setString(&c.Defaults.GCPZone, EnvGCPZone)
	setString(&c.Defaults.AWSRegion, EnvAWSRegion)
	setString(&c.Events.NATSURL, EnvNATSURL)
	setString(&c.Archive.Bucket, EnvArchiveBucket)
	setString(&c.Archive.AccessKey, EnvArchiveAccess)
	setString(&c.Archive.SecretKey, EnvArchiveSecret)
	setString(&c.Metrics.Listen, EnvMetricsListen)

	var err error
	if c.API.Timeout, err = parseDuration(EnvAPITimeout, c.API.Timeout); err != nil {
		return err
	}
	if c.Refresh.Interval, err = parseDuration(EnvRefreshInterval, c.Refresh.Interval); err != nil {
		return err
	}
	return nil
}

func setString(dst *string, envVar string) {
	if v := os.Getenv(envVar); v != "" {
		*dst = v
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set the current value is kept.
func parseDuration(envVar string, current time.Duration) (time.Duration, error) {
	val := os.Getenv(envVar)
	if val == "" {
		return current, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return current, fmt.Errorf("invalid %s: %w", envVar, err)
	}
	return d, nil
}
