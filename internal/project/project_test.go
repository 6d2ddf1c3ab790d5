package project_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confstack/confstack/internal/project"
	"github.com/confstack/confstack/internal/settings"
	"github.com/confstack/confstack/internal/store"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, project.ConfigFileName), []byte(content), 0o644))
}

func TestFindWalksUpToProjectRoot(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "project_id: abc\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	p, err := project.Find(nested)
	require.NoError(t, err)
	assert.Equal(t, root, p.Root())
}

func TestFindFailsOutsideAnyProject(t *testing.T) {
	_, err := project.Find(t.TempDir())
	assert.ErrorContains(t, err, project.ConfigFileName)
}

func TestConfigMissingFileIsEmpty(t *testing.T) {
	p := project.New(t.TempDir())

	config, err := p.Config()
	require.NoError(t, err)
	assert.Empty(t, config)
}

func TestConfigParsesNestedMapping(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "project_id: abc\ncli:\n  log_level: debug\n")
	p := project.New(root)

	config, err := p.Config()
	require.NoError(t, err)
	assert.Equal(t, "abc", config["project_id"])
	assert.Equal(t, map[string]any{"log_level": "debug"}, config["cli"])
}

func TestConfigRejectsMalformedYAML(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "project_id: [unclosed\n")
	p := project.New(root)

	_, err := p.Config()
	assert.ErrorContains(t, err, project.ConfigFileName)
}

func TestUpdatePreservesUnrelatedKeys(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "project_id: abc\nplugins:\n  - name: one\n")
	p := project.New(root)

	err := p.Update(func(config map[string]any) error {
		config["send_anonymous_usage_stats"] = false
		return nil
	})
	require.NoError(t, err)

	config, err := p.Config()
	require.NoError(t, err)
	assert.Equal(t, "abc", config["project_id"])
	assert.Equal(t, false, config["send_anonymous_usage_stats"])
	assert.Equal(t, []any{map[string]any{"name": "one"}}, config["plugins"])
}

func TestUpdateCreatesConfigFile(t *testing.T) {
	root := t.TempDir()
	p := project.New(root)

	err := p.Update(func(config map[string]any) error {
		config["project_id"] = "fresh"
		return nil
	})
	require.NoError(t, err)

	_, err = os.Stat(p.ConfigFile())
	require.NoError(t, err)

	config, err := p.Config()
	require.NoError(t, err)
	assert.Equal(t, "fresh", config["project_id"])
}

func TestUpdateErrorLeavesFileUntouched(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "project_id: abc\n")
	p := project.New(root)

	sentinel := assert.AnError
	err := p.Update(func(config map[string]any) error {
		config["project_id"] = "mutated"
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)

	config, err := p.Config()
	require.NoError(t, err)
	assert.Equal(t, "abc", config["project_id"])
}

func TestUpdateLeavesNoTempFiles(t *testing.T) {
	root := t.TempDir()
	p := project.New(root)

	require.NoError(t, p.Update(func(config map[string]any) error {
		config["project_id"] = "x"
		return nil
	}))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, project.ConfigFileName, entries[0].Name())
}

func TestSettingsVariantEndToEnd(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "cli:\n  log_level: warning\n")
	p := project.New(root)
	svc := settings.New(project.NewSettings(p), settings.WithDotenvFile(p.DotenvFile()))
	ctx := context.Background()

	// Declared nested setting resolves from the file.
	value, metadata, err := svc.GetWithMetadata(ctx, "cli.log_level", settings.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "warning", value)
	assert.Equal(t, store.ProjectFile, metadata.Source)

	// Declared defaults apply when the file is silent.
	value, metadata, err = svc.GetWithMetadata(ctx, "send_anonymous_usage_stats", settings.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, true, value)
	assert.Equal(t, store.Default, metadata.Source)

	// The variant's env prefix projects onto CONFSTACK_* variables.
	t.Setenv("CONFSTACK_NO_USAGE_STATS", "true")
	value, metadata, err = svc.GetWithMetadata(ctx, "send_anonymous_usage_stats", settings.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, false, value)
	assert.Equal(t, "CONFSTACK_NO_USAGE_STATS", metadata.EnvVar)

	// Writes land nested in the file and resolve back.
	_, err = svc.Set(ctx, settings.Path("cli.log_level"), "debug", store.ProjectFile)
	require.NoError(t, err)

	config, err := p.Config()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"log_level": "debug"}, config["cli"])
}
