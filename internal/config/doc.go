// Package config loads the console's settings.
//
// Settings come from an optional YAML file, then environment variables
// override individual keys, and finally command-line flags override both
// (flags are applied by the CLI, not here). [Default] returns a working
// configuration for a backend on localhost.
package config
