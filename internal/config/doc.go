// Package config loads the service configuration from defaults, an optional
// YAML file and THREADFLOW_-prefixed environment variables, and validates it
// before any component is built from it.
package config
