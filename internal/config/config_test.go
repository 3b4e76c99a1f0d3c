package config

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jravasi/mediawiki-wikilog/internal/testutil"
	"github.com/jravasi/mediawiki-wikilog/internal/wiki"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(""), "empty.cue")
	require.NoError(t, err)
	assert.True(t, cfg.EnableTags)
	assert.Empty(t, cfg.Namespaces)
	assert.Equal(t, "", cfg.Database)
}

func TestParse_Values(t *testing.T) {
	src := `
enable_tags: false
namespaces: {
	Blog: 100
	News: 102
}
database: "wiki.db"
`
	cfg, err := Parse([]byte(src), "wikilog.cue")
	require.NoError(t, err)
	assert.False(t, cfg.EnableTags)
	assert.Equal(t, map[string]int{"Blog": 100, "News": 102}, cfg.Namespaces)
	assert.Equal(t, "wiki.db", cfg.Database)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unknown field", `colour: "red"`},
		{"wrong type", `enable_tags: "yes"`},
		{"namespace below custom range", `namespaces: {Blog: 4}`},
		{"syntax", `namespaces: {`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "bad.cue")
			assert.Error(t, err)
		})
	}
}

func TestParse_ErrorCarriesPosition(t *testing.T) {
	_, err := Parse([]byte("enable_tags: \"yes\"\n"), "bad.cue")
	require.Error(t, err)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.True(t, loadErr.Pos.IsValid())
	assert.Contains(t, err.Error(), "enable_tags")
}

func TestLoad_ExplicitPath(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/wikilog.cue", []byte(`namespaces: {Blog: 100}`), 0o644))

	cfg, err := Load(fs, "/etc/wikilog.cue")
	require.NoError(t, err)
	assert.Equal(t, "/etc/wikilog.cue", cfg.Path)
	assert.Equal(t, 100, cfg.Namespaces["Blog"])
}

func TestLoad_MissingExplicitPath(t *testing.T) {
	_, err := Load(afero.NewMemMapFs(), "/nowhere.cue")
	assert.Error(t, err)
}

func TestLoad_MissingDefaultPath(t *testing.T) {
	cfg, err := Load(afero.NewMemMapFs(), "")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestDefaultPath(t *testing.T) {
	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Contains(t, path, ".config/wikilog/config.cue")
}

func TestConfig_Env(t *testing.T) {
	cfg := &Config{EnableTags: false, Namespaces: map[string]int{"Blog": 100, "News": 102}}
	lookup := wiki.NewMemoryLookup()
	clock := testutil.ClockAt(2024, time.March, 15)

	env, err := cfg.Env(lookup, clock)
	require.NoError(t, err)
	assert.False(t, env.EnableTags)
	assert.Same(t, lookup, env.Lookup)
	assert.True(t, env.Namespaces.IsWikilog(100))
	assert.True(t, env.Namespaces.IsWikilog(102))
	assert.False(t, env.Namespaces.IsWikilog(104))
	assert.Equal(t, 2024, env.Clock.Now().Year())
}

func TestConfig_EnvRejectsOddNamespace(t *testing.T) {
	cfg := &Config{Namespaces: map[string]int{"Blog": 101}}
	_, err := cfg.Env(nil, nil)
	assert.Error(t, err)
}
