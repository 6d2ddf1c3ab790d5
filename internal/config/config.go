package config

// Config holds all runtime configuration for a confstack host process.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database"`
	Project  ProjectConfig  `mapstructure:"project" validate:"required"`
}

// ServerConfig contains process-level settings.
type ServerConfig struct {
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains the settings-database connection. The URL is
// optional: without it the database store is simply not wired up.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,uri"`
}

// ProjectConfig locates the project whose settings are being served.
type ProjectConfig struct {
	Dir string `mapstructure:"dir" validate:"required"`

	// DotenvFile overrides the default .env location inside the project
	// directory. Relative paths are resolved against Dir.
	DotenvFile string `mapstructure:"dotenv_file"`
}
