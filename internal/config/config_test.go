package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "none.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "127.0.0.1:7420", cfg.Addr())
}

func TestLoad_OverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level = "debug"
id_scheme = "xxh3"

[server]
port = 9000

[storage]
root = "/srv/tree"
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "xxh3", cfg.IDScheme)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "/srv/tree", cfg.Storage.Root)
	assert.Equal(t, 256, cfg.Storage.CacheSize)
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown key", "colour = \"red\"\n"},
		{"bad port", "[server]\nport = 70000\n"},
		{"not toml", "server = {"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestPath(t *testing.T) {
	t.Setenv("SVC_ENV", "")
	assert.Equal(t, "config/config.development.toml", Path())
	t.Setenv("SVC_ENV", "production")
	assert.Equal(t, "config/config.production.toml", Path())
}
