package setting

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatches(t *testing.T) {
	def := &Definition{Name: "database_uri", Aliases: []string{"db_uri", "!no_database"}}

	assert.True(t, def.Matches("database_uri"), "canonical name should match")
	assert.True(t, def.Matches("db_uri"), "alias should match")
	assert.True(t, def.Matches("no_database"), "negated alias should match without the marker")
	assert.False(t, def.Matches("DATABASE_URI"), "matching is case-sensitive")
	assert.False(t, def.Matches("database"), "matching is exact, not prefix")
}

func TestKeysSkipNegatedAliases(t *testing.T) {
	def := &Definition{Name: "usage_stats", Aliases: []string{"tracking", "!no_usage_stats"}}
	assert.Equal(t, []string{"usage_stats", "tracking"}, def.Keys())
}

func TestFind(t *testing.T) {
	defs := []*Definition{
		{Name: "first"},
		{Name: "second", Aliases: []string{"2nd"}},
	}

	for _, name := range []string{"second", "2nd"} {
		def, err := Find(defs, name)
		require.NoError(t, err, "Find(%q) should succeed", name)
		assert.Equal(t, "second", def.Name, "alias and canonical name must resolve identically")
	}

	_, err := Find(defs, "third")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSettingMissing), "miss should wrap ErrSettingMissing")
	assert.Contains(t, err.Error(), "third")
}

func TestIsRedacted(t *testing.T) {
	assert.True(t, (&Definition{Name: "s", Sensitive: true}).IsRedacted())
	assert.True(t, (&Definition{Name: "s", Kind: KindPassword}).IsRedacted())
	assert.False(t, (&Definition{Name: "s", Kind: KindString}).IsRedacted())
}
