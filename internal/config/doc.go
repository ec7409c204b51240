// Package config defines the application's configuration structure and
// loading. Configuration comes from environment variables (TASKBOARD_ prefix)
// layered over an optional YAML file, and is validated before use so the
// process refuses to start with an incomplete or nonsensical setup.
package config
