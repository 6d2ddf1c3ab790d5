package settings_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confstack/confstack/internal/redact"
	"github.com/confstack/confstack/internal/setting"
	"github.com/confstack/confstack/internal/settings"
	"github.com/confstack/confstack/internal/store"
)

// testVariant is an in-memory Variant for exercising the orchestrator.
type testVariant struct {
	defs      []*setting.Definition
	config    map[string]any
	processed int
}

func (v *testVariant) Label() string                     { return "test" }
func (v *testVariant) DocsURL() string                   { return "https://example.com/docs/settings" }
func (v *testVariant) EnvPrefixes() []string             { return []string{"app"} }
func (v *testVariant) GenericEnvPrefix() string          { return "generic" }
func (v *testVariant) DBNamespace() string               { return "test" }
func (v *testVariant) Definitions() []*setting.Definition { return v.defs }

func (v *testVariant) ProjectConfig() (map[string]any, error) { return v.config, nil }

func (v *testVariant) UpdateProjectConfig(update func(map[string]any) error) error {
	return update(v.config)
}

func (v *testVariant) ProcessConfig(config map[string]any) map[string]any {
	v.processed++
	return config
}

func newTestVariant() *testVariant {
	return &testVariant{
		config: map[string]any{},
		defs: []*setting.Definition{
			{Name: "color", Kind: setting.KindString, Default: "green"},
			{Name: "batch_size", Kind: setting.KindInteger, Default: 100},
			{Name: "usage_stats", Kind: setting.KindBoolean, Default: true, Aliases: []string{"!no_usage_stats"}},
			{Name: "api_token", Kind: setting.KindPassword},
			{Name: "server", Kind: setting.KindObject, Aliases: []string{"srv"}},
			{Name: "base_url", Kind: setting.KindString, Default: "https://example.com"},
			{Name: "internal_flag", Kind: setting.KindHidden},
		},
	}
}

func TestFindSettingByNameAndAlias(t *testing.T) {
	svc := settings.New(newTestVariant())

	byName, err := svc.FindSetting("usage_stats")
	require.NoError(t, err)
	byAlias, err := svc.FindSetting("no_usage_stats")
	require.NoError(t, err)
	assert.Same(t, byName, byAlias, "name and alias must resolve to the same definition")

	_, err = svc.FindSetting("nonexistent")
	assert.ErrorIs(t, err, setting.ErrSettingMissing)
}

func TestGetFallsBackToDefault(t *testing.T) {
	svc := settings.New(newTestVariant())

	value, metadata, err := svc.GetWithMetadata(context.Background(), "color", settings.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "green", value)
	assert.Equal(t, store.Default, metadata.Source)

	// Asking the default store explicitly gives the same answer.
	value, metadata, err = svc.GetWithMetadata(context.Background(), "color",
		settings.GetOptions{Source: store.Default})
	require.NoError(t, err)
	assert.Equal(t, "green", value)
	assert.Equal(t, store.Default, metadata.Source)
}

func TestGetPrecedenceEnvBeatsProjectFile(t *testing.T) {
	variant := newTestVariant()
	variant.config["color"] = "b"
	svc := settings.New(variant,
		settings.WithEnvOverride(map[string]string{"APP_COLOR": "a"}))

	value, metadata, err := svc.GetWithMetadata(context.Background(), "color", settings.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "a", value, "the higher-precedence store must win")
	assert.Equal(t, store.Env, metadata.Source)
	assert.Equal(t, "APP_COLOR", metadata.EnvVar)

	// Explicitly asking the lower-precedence store still reads it.
	value, metadata, err = svc.GetWithMetadata(context.Background(), "color",
		settings.GetOptions{Source: store.ProjectFile})
	require.NoError(t, err)
	assert.Equal(t, "b", value)
	assert.Equal(t, store.ProjectFile, metadata.Source)
}

func TestGetConfigOverrideWinsOverEverything(t *testing.T) {
	variant := newTestVariant()
	variant.config["color"] = "from-file"
	svc := settings.New(variant,
		settings.WithEnvOverride(map[string]string{"APP_COLOR": "from-env"}),
		settings.WithConfigOverride(map[string]any{"color": "from-override"}))

	value, metadata, err := svc.GetWithMetadata(context.Background(), "color", settings.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "from-override", value)
	assert.Equal(t, store.Override, metadata.Source)
}

func TestGetReadsProcessEnvironment(t *testing.T) {
	t.Setenv("APP_COLOR", "from-process-env")
	svc := settings.New(newTestVariant())

	value, metadata, err := svc.GetWithMetadata(context.Background(), "color", settings.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "from-process-env", value)
	assert.Equal(t, store.Env, metadata.Source)
}

func TestGetCastsAndRecordsUncastValue(t *testing.T) {
	svc := settings.New(newTestVariant(),
		settings.WithEnvOverride(map[string]string{"APP_BATCH_SIZE": "250"}))

	value, metadata, err := svc.GetWithMetadata(context.Background(), "batch_size", settings.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, 250, value)
	assert.Equal(t, "250", metadata.UncastValue, "the raw pre-cast input must be recorded")

	// A value that needs no casting records nothing.
	_, metadata, err = svc.GetWithMetadata(context.Background(), "color", settings.GetOptions{})
	require.NoError(t, err)
	assert.Nil(t, metadata.UncastValue)
}

func TestGetNegatedEnvVar(t *testing.T) {
	svc := settings.New(newTestVariant(),
		settings.WithEnvOverride(map[string]string{"APP_NO_USAGE_STATS": "true"}))

	value, metadata, err := svc.GetWithMetadata(context.Background(), "usage_stats", settings.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, false, value)
	assert.Equal(t, store.Env, metadata.Source)
	assert.Equal(t, "APP_NO_USAGE_STATS", metadata.EnvVar)
}

func TestGetRedaction(t *testing.T) {
	variant := newTestVariant()
	variant.config["api_token"] = "s3cr3t"
	svc := settings.New(variant)

	// Redacted read: the sentinel stands in for the value.
	value, metadata, err := svc.GetWithMetadata(context.Background(), "api_token",
		settings.GetOptions{Redacted: true})
	require.NoError(t, err)
	assert.Equal(t, redact.Sentinel, value)
	assert.True(t, metadata.Redacted)
	assert.Nil(t, metadata.UncastValue, "the uncast value must never be a redacted placeholder")

	// Unredacted read still exposes the true underlying value.
	value, metadata, err = svc.GetWithMetadata(context.Background(), "api_token", settings.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t", value)
	assert.False(t, metadata.Redacted)
}

func TestGetRedactionSkipsEmptyValues(t *testing.T) {
	svc := settings.New(newTestVariant())

	value, metadata, err := svc.GetWithMetadata(context.Background(), "api_token",
		settings.GetOptions{Redacted: true})
	require.NoError(t, err)
	assert.Nil(t, value, "an unset secret resolves to nil, not to the sentinel")
	assert.False(t, metadata.Redacted)
}

func TestGetAnonymousSetting(t *testing.T) {
	variant := newTestVariant()
	variant.defs = nil
	variant.config["adhoc"] = "42"
	svc := settings.New(variant)

	// The key is discovered from the config, so a synthesized definition
	// exists for it.
	value, metadata, err := svc.GetWithMetadata(context.Background(), "adhoc", settings.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "42", value)
	require.NotNil(t, metadata.Setting)
	assert.True(t, metadata.Setting.Extra)

	// A name known nowhere at all resolves anonymously: no definition, no
	// casting, no default.
	value, metadata, err = svc.GetWithMetadata(context.Background(), "completely.unknown", settings.GetOptions{})
	require.NoError(t, err)
	assert.Nil(t, value)
	assert.Nil(t, metadata.Setting)
}

func TestObjectAssembly(t *testing.T) {
	variant := newTestVariant()
	variant.config["server.x"] = 1
	variant.config["server.y"] = 2
	svc := settings.New(variant)

	value, metadata, err := svc.GetWithMetadata(context.Background(), "server", settings.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"x": 1, "y": 2}, value,
		"an object with no direct entry assembles from its dotted sub-keys")
	assert.Equal(t, store.ProjectFile, metadata.Source,
		"the assembled source is promoted to the nested entries' store")
}

func TestObjectAssemblySourcePromotion(t *testing.T) {
	variant := newTestVariant()
	variant.config["server.x"] = "file"
	// The y sub-key needs a config entry to enter the catalog; env vars
	// alone do not synthesize definitions. The env value still wins.
	variant.config["server.y"] = "placeholder"
	svc := settings.New(variant,
		settings.WithEnvOverride(map[string]string{"APP_SERVER__Y": "env"}))

	value, metadata, err := svc.GetWithMetadata(context.Background(), "server", settings.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"x": "file", "y": "env"}, value)
	assert.Equal(t, store.Env, metadata.Source,
		"the object source promotes to the highest-precedence contributing store")
}

func TestObjectAssemblyAliasFirstOccurrenceWins(t *testing.T) {
	variant := newTestVariant()
	variant.config["server.x"] = "canonical"
	variant.config["srv.x"] = "alias"
	variant.config["srv.z"] = "alias-only"
	svc := settings.New(variant)

	value, _, err := svc.GetWithMetadata(context.Background(), "server", settings.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"x": "canonical", "z": "alias-only"}, value,
		"for colliding nested keys, the canonical name's entry wins")
}

func TestObjectDirectEntrySkipsAssembly(t *testing.T) {
	variant := newTestVariant()
	variant.config["server.x"] = "nested"
	svc := settings.New(variant,
		settings.WithConfigOverride(map[string]any{
			"server": map[string]any{"direct": true},
		}))

	value, metadata, err := svc.GetWithMetadata(context.Background(), "server", settings.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, store.Override, metadata.Source)
	assert.Equal(t, map[string]any{"direct": true}, value,
		"a directly defined object is never merged with nested entries")
}

func TestExtraSettingExpandsSiblingEnv(t *testing.T) {
	variant := newTestVariant()
	variant.config["custom_endpoint"] = "$APP_BASE_URL/api"
	svc := settings.New(variant)

	def, err := svc.FindSetting("custom_endpoint")
	require.NoError(t, err)
	require.True(t, def.Extra, "undeclared config keys synthesize extra settings")

	value, _, err := svc.GetWithMetadata(context.Background(), "custom_endpoint", settings.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/api", value,
		"extra values interpolate against the non-extra env projection")
}

func TestSetRoundTrip(t *testing.T) {
	variant := newTestVariant()
	svc := settings.New(variant)
	ctx := context.Background()

	// Writing a stringy integer persists the cast form.
	persisted, metadata, err := svc.SetWithMetadata(ctx, settings.Path("batch_size"), "250", store.ProjectFile)
	require.NoError(t, err)
	assert.Equal(t, 250, persisted)
	assert.Equal(t, "250", metadata.UncastValue)
	assert.Equal(t, store.ProjectFile, metadata.Store)

	for i := 0; i < 2; i++ {
		value, md, err := svc.GetWithMetadata(ctx, "batch_size", settings.GetOptions{})
		require.NoError(t, err)
		assert.Equal(t, 250, value, "read %d after write", i)
		assert.Equal(t, store.ProjectFile, md.Source)
	}
}

func TestSetSentinelSuppressesWrite(t *testing.T) {
	variant := newTestVariant()
	variant.config["api_token"] = "s3cr3t"
	svc := settings.New(variant)
	ctx := context.Background()

	value, metadata, err := svc.SetWithMetadata(ctx, settings.Path("api_token"), redact.Sentinel, store.ProjectFile)
	require.NoError(t, err)
	assert.Nil(t, value)
	assert.True(t, metadata.Redacted)

	assert.Equal(t, "s3cr3t", variant.config["api_token"], "the store must be left unchanged")
}

func TestSetRequiresConcreteStore(t *testing.T) {
	svc := settings.New(newTestVariant())

	_, _, err := svc.SetWithMetadata(context.Background(), settings.Path("color"), "red", store.Auto)
	assert.ErrorIs(t, err, store.ErrStoreNotSupported, "writes never resolve through auto")

	_, _, err = svc.SetWithMetadata(context.Background(), settings.Path("color"), "red", store.Env)
	assert.ErrorIs(t, err, store.ErrStoreNotSupported, "the process environment is read-only")
}

func TestSetNestedPath(t *testing.T) {
	variant := newTestVariant()
	svc := settings.New(variant)

	_, _, err := svc.SetWithMetadata(context.Background(), []string{"server", "host"}, "db.internal", store.ProjectFile)
	require.NoError(t, err)

	server, ok := variant.config["server"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "db.internal", server["host"])
}

func TestUnset(t *testing.T) {
	variant := newTestVariant()
	variant.config["color"] = "blue"
	svc := settings.New(variant)

	metadata, err := svc.Unset(context.Background(), settings.Path("color"), store.ProjectFile)
	require.NoError(t, err)
	assert.Equal(t, store.ProjectFile, metadata.Store)
	assert.NotContains(t, variant.config, "color")

	value, err := svc.Get(context.Background(), "color", settings.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "green", value, "after unset the default applies again")
}

func TestReset(t *testing.T) {
	variant := newTestVariant()
	variant.config["color"] = "blue"
	variant.config["batch_size"] = 5
	svc := settings.New(variant)

	_, err := svc.Reset(context.Background(), store.ProjectFile)
	require.NoError(t, err)
	assert.Empty(t, variant.config)
}

func TestDotenvStoreThroughService(t *testing.T) {
	variant := newTestVariant()
	path := filepath.Join(t.TempDir(), ".env")
	svc := settings.New(variant, settings.WithDotenvFile(path))
	ctx := context.Background()

	_, _, err := svc.SetWithMetadata(ctx, settings.Path("color"), "magenta", store.Dotenv)
	require.NoError(t, err)

	entries, err := godotenv.Read(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"APP_COLOR": "magenta"}, entries)

	value, metadata, err := svc.GetWithMetadata(ctx, "color", settings.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "magenta", value)
	assert.Equal(t, store.Dotenv, metadata.Source)
}

func TestConfigWithMetadata(t *testing.T) {
	variant := newTestVariant()
	variant.config["color"] = "blue"
	svc := settings.New(variant)

	config, err := svc.ConfigWithMetadata(context.Background(), settings.ConfigOptions{})
	require.NoError(t, err)

	require.Contains(t, config, "color")
	assert.Equal(t, "blue", config["color"].Value)
	assert.Equal(t, store.ProjectFile, config["color"].Metadata.Source)

	require.Contains(t, config, "batch_size")
	assert.Equal(t, 100, config["batch_size"].Value)
	assert.Equal(t, store.Default, config["batch_size"].Metadata.Source)
}

func TestConfigWithMetadataPrefixStripping(t *testing.T) {
	variant := newTestVariant()
	variant.config["server.host"] = "a"
	variant.config["server.port"] = 1
	svc := settings.New(variant)

	config, err := svc.ConfigWithMetadata(context.Background(), settings.ConfigOptions{Prefix: "server."})
	require.NoError(t, err)

	assert.Len(t, config, 2)
	assert.Equal(t, "a", config["host"].Value)
	assert.Equal(t, 1, config["port"].Value)
}

func TestAsDictProcessing(t *testing.T) {
	variant := newTestVariant()
	svc := settings.New(variant)

	_, err := svc.AsDict(context.Background(), settings.ConfigOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, variant.processed, "processing is opt-in")

	_, err = svc.AsDict(context.Background(), settings.ConfigOptions{Process: true})
	require.NoError(t, err)
	assert.Equal(t, 1, variant.processed)
}

func TestAsEnv(t *testing.T) {
	variant := newTestVariant()
	variant.config["color"] = "blue"
	svc := settings.New(variant)

	env, err := svc.AsEnv(context.Background(), settings.ConfigOptions{})
	require.NoError(t, err)

	assert.Equal(t, "blue", env["APP_COLOR"])
	assert.Equal(t, "blue", env["GENERIC_COLOR"], "the generic prefix is projected alongside")
	assert.Equal(t, "true", env["APP_USAGE_STATS"])
	assert.NotContains(t, env, "APP_NO_USAGE_STATS",
		"the negated variable is never emitted")
	assert.NotContains(t, env, "APP_API_TOKEN", "nil values are omitted entirely")

	// Compound values are stringified.
	variant.config["server"] = map[string]any{"host": "h"}
	svc.InvalidateCatalog()
	env, err = svc.AsEnv(context.Background(), settings.ConfigOptions{})
	require.NoError(t, err)
	assert.Equal(t, `{"host":"h"}`, env["APP_SERVER"])
}

func TestCatalogMemoizationAndInvalidation(t *testing.T) {
	variant := newTestVariant()
	svc := settings.New(variant)

	before := len(svc.Definitions(settings.ExtrasAll))

	// New undeclared keys are invisible until the catalog is invalidated.
	variant.config["brand_new"] = "v"
	assert.Len(t, svc.Definitions(settings.ExtrasAll), before)

	svc.InvalidateCatalog()
	after := svc.Definitions(settings.ExtrasAll)
	assert.Len(t, after, before+1)
}

func TestDefinitionsExtrasFilter(t *testing.T) {
	variant := newTestVariant()
	variant.config["undeclared"] = "v"
	svc := settings.New(variant)

	for _, def := range svc.Definitions(settings.ExtrasOnly) {
		assert.True(t, def.Extra)
	}
	for _, def := range svc.Definitions(settings.ExtrasExclude) {
		assert.False(t, def.Extra)
	}
	assert.Len(t, svc.Definitions(settings.ExtrasAll),
		len(svc.Definitions(settings.ExtrasOnly))+len(svc.Definitions(settings.ExtrasExclude)))
}

func TestHiddenSettingsVisibility(t *testing.T) {
	shown := settings.New(newTestVariant())
	_, err := shown.FindSetting("internal_flag")
	assert.NoError(t, err, "hidden settings are visible by default")

	hiding := settings.New(newTestVariant(), settings.HideHidden())
	_, err = hiding.FindSetting("internal_flag")
	assert.ErrorIs(t, err, setting.ErrSettingMissing)
}

func TestUnmarshal(t *testing.T) {
	variant := newTestVariant()
	variant.config["color"] = "blue"
	svc := settings.New(variant)

	var target struct {
		Color      string `mapstructure:"color"`
		BatchSize  int    `mapstructure:"batch_size"`
		UsageStats bool   `mapstructure:"usage_stats"`
	}
	require.NoError(t, svc.Unmarshal(context.Background(), &target, settings.ConfigOptions{}))

	assert.Equal(t, "blue", target.Color)
	assert.Equal(t, 100, target.BatchSize)
	assert.True(t, target.UsageStats)
}

func TestUnredact(t *testing.T) {
	out := settings.Unredact(map[string]any{
		"api_token": redact.Sentinel,
		"color":     "blue",
	})
	assert.Equal(t, map[string]any{"color": "blue"}, out)
}

func TestOptionMapsAreCopied(t *testing.T) {
	envOverride := map[string]string{"APP_COLOR": "from-override"}
	configOverride := map[string]any{"batch_size": 1}
	svc := settings.New(newTestVariant(),
		settings.WithEnvOverride(envOverride),
		settings.WithConfigOverride(configOverride))

	// Mutations after construction must not be observed.
	envOverride["APP_COLOR"] = "mutated"
	configOverride["batch_size"] = 999

	value, err := svc.Get(context.Background(), "color", settings.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "from-override", value)

	value, err = svc.Get(context.Background(), "batch_size", settings.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, value)
}

func TestSettingEnvVars(t *testing.T) {
	svc := settings.New(newTestVariant())
	def, err := svc.FindSetting("usage_stats")
	require.NoError(t, err)

	own := svc.SettingEnvVars(def, false)
	withGeneric := svc.SettingEnvVars(def, true)
	assert.Greater(t, len(withGeneric), len(own), "generic prefix adds projections")
	assert.Equal(t, "APP_USAGE_STATS", svc.SettingEnv(def))
}
