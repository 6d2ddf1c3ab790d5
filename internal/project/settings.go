package project

import (
	"github.com/confstack/confstack/internal/setting"
)

// settingsDocsURL points at the reference page for project-level settings.
const settingsDocsURL = "https://confstack.dev/docs/reference/settings"

// definitions is the declared catalog of the engine's own project-level
// settings. Anything else found in the config file resolves as an
// undeclared extra.
var definitions = []*setting.Definition{
	{
		Name:        "project_id",
		Kind:        setting.KindString,
		Description: "Stable identifier for this project, used to scope stored settings.",
	},
	{
		Name:        "database_uri",
		Kind:        setting.KindPassword,
		Description: "Connection string for the settings database.",
	},
	{
		Name:        "send_anonymous_usage_stats",
		Kind:        setting.KindBoolean,
		Default:     true,
		Aliases:     []string{"!no_usage_stats"},
		Description: "Share anonymous usage metrics.",
	},
	{
		Name:        "cli.log_level",
		Kind:        setting.KindString,
		Default:     "info",
		Description: "Log level for command-line output.",
	},
	{
		Name:        "env_var_strict_mode",
		Kind:        setting.KindBoolean,
		Default:     false,
		Description: "Fail instead of warn when an env var reference cannot be expanded.",
	},
	{
		Name: "experimental",
		Kind: setting.KindHidden,
	},
}

// Settings is the project-level settings variant: the engine's own settings,
// resolved against the project config file under the "confstack" prefix.
type Settings struct {
	project *Project
}

// NewSettings returns the settings variant for project.
func NewSettings(project *Project) *Settings {
	return &Settings{project: project}
}

// Project returns the backing project.
func (s *Settings) Project() *Project { return s.project }

// Label implements settings.Variant.
func (s *Settings) Label() string { return "project" }

// DocsURL implements settings.Variant.
func (s *Settings) DocsURL() string { return settingsDocsURL }

// EnvPrefixes implements settings.Variant.
func (s *Settings) EnvPrefixes() []string { return []string{"confstack"} }

// GenericEnvPrefix implements settings.Variant. Project-level settings have
// no generic projection distinct from their own prefix.
func (s *Settings) GenericEnvPrefix() string { return "" }

// DBNamespace implements settings.Variant.
func (s *Settings) DBNamespace() string { return "confstack" }

// Definitions implements settings.Variant.
func (s *Settings) Definitions() []*setting.Definition { return definitions }

// ProjectConfig implements settings.Variant.
func (s *Settings) ProjectConfig() (map[string]any, error) {
	return s.project.Config()
}

// UpdateProjectConfig implements settings.Variant.
func (s *Settings) UpdateProjectConfig(update func(config map[string]any) error) error {
	return s.project.Update(update)
}

// ProcessConfig implements settings.Variant. Project-level settings need no
// post-processing.
func (s *Settings) ProcessConfig(config map[string]any) map[string]any {
	return config
}
