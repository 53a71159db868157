// Package config holds the server and CLI configuration: a YAML file,
// overridden by environment variables (optionally loaded from a .env file),
// with default data paths under the XDG data directory.
package config
