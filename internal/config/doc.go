// Package config handles runtime configuration for hosts embedding the
// settings engine: where the project lives, how to reach the settings
// database, and how to log. Values come from environment variables with the
// CONFSTACK_ prefix and are validated before use, keeping deployment
// concerns separate from the engine itself.
package config
