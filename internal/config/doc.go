// Package config defines the launcher profile and pipeline configuration.
//
// Configuration can be provided via:
//   - A YAML file (config.yaml in the instance directory)
//   - Environment variables (BAMC_ prefix, optionally from a .env file)
//   - Command-line flags merged on top by the commands
//
// The version manifest URL and asset index ID are configuration values,
// not compiled-in constants; the defaults pin release 1.20.4.
package config
