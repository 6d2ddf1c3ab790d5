package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// envPrefix namespaces every configuration variable; server.log_level is
// read from CONFSTACK_SERVER_LOG_LEVEL, and so on.
const envPrefix = "CONFSTACK"

// Load reads configuration from environment variables, applies defaults, and
// validates the result. Returns a populated Config or an error naming the
// first invalid field.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.log_level", "info")
	v.SetDefault("database.url", "")
	v.SetDefault("project.dir", ".")
	v.SetDefault("project.dotenv_file", "")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv alone does not surface env-only keys through Unmarshal;
	// each key needs an explicit binding.
	for _, key := range []string{
		"server.log_level",
		"database.url",
		"project.dir",
		"project.dotenv_file",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}
