package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.ini")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.ini"))
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, DefaultAppName, cfg.App.Name)
	assert.Equal(t, "display", cfg.Surface.Type)
	assert.Equal(t, DefaultServerAddress, cfg.Server.Listen)
	assert.Equal(t, DefaultRecentSize, cfg.Media.Recent)
	assert.False(t, cfg.Permissions.RequireGrant)
}

func TestLoad_AllSections(t *testing.T) {
	path := writeConfig(t, `
[app]
name = Notes

[storage]
dir = /data/shared

[surface]
type = file
file = /data/frame.png
display = 1

[permissions]
require_grant = true

[media]
database = /data/index.db
recent = 8

[server]
listen = 0.0.0.0:13000
cors = true

[log]
verbose = true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Notes", cfg.App.Name)
	assert.Equal(t, "/data/shared", cfg.Storage.Dir)
	assert.Equal(t, SurfaceConfig{Type: "file", Display: 1, File: "/data/frame.png"}, cfg.Surface)
	assert.True(t, cfg.Permissions.RequireGrant)
	assert.Equal(t, MediaConfig{Database: "/data/index.db", Recent: 8}, cfg.Media)
	assert.Equal(t, ServerConfig{Listen: "0.0.0.0:13000", CORS: true}, cfg.Server)
	assert.True(t, cfg.Log.Verbose)
}

func TestLoad_EmptyDatabaseDisablesIndex(t *testing.T) {
	cfg, err := Load(writeConfig(t, "[media]\ndatabase =\n"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Media.Database)
}

func TestLoad_ExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg, err := Load(writeConfig(t, "[storage]\ndir = ~/Shots\n"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "Shots"), cfg.Storage.Dir)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"display", "[surface]\ndisplay = first\n"},
		{"require_grant", "[permissions]\nrequire_grant = perhaps\n"},
		{"recent", "[media]\nrecent = lots\n"},
		{"cors", "[server]\ncors = maybe\n"},
		{"verbose", "[log]\nverbose = loud\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	_, err := Load(writeConfig(t, "[app\nname = x\n"))
	assert.Error(t, err)
}
