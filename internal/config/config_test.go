package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	// Run from a directory with no config file so defaults apply.
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data/cholera_deaths.xlsx", cfg.Data.DeathsPath)
	assert.Equal(t, "data/pumps.xlsx", cfg.Data.PumpsPath)
	assert.Equal(t, "data/polys.shp", cfg.Data.AreasPath)
	assert.Equal(t, "EPSG:4326", cfg.Data.DeathsCRS)
	assert.Equal(t, "EPSG:4326", cfg.Data.AreasCRS)
	assert.Equal(t, "osm", cfg.Map.DefaultBasemap)
	assert.Equal(t, 16, cfg.Map.DefaultZoom)
	assert.Equal(t, 2000, cfg.Tiles.CacheSize)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`
data:
  deaths_path: /srv/data/deaths.xlsx
  areas_crs: EPSG:3857
map:
  default_basemap: positron
server:
  port: 9090
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o644))
	t.Chdir(dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/srv/data/deaths.xlsx", cfg.Data.DeathsPath)
	assert.Equal(t, "EPSG:3857", cfg.Data.AreasCRS)
	assert.Equal(t, "positron", cfg.Map.DefaultBasemap)
	assert.Equal(t, 9090, cfg.Server.Port)

	// Unset keys keep their defaults.
	assert.Equal(t, "data/pumps.xlsx", cfg.Data.PumpsPath)
	assert.Equal(t, 16, cfg.Map.DefaultZoom)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BROADSTREET_MAP_DEFAULT_BASEMAP", "imagery")
	t.Setenv("BROADSTREET_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "imagery", cfg.Map.DefaultBasemap)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestInitLogger_InvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "shout", Format: "json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse log level")
}

func TestInitLogger_Console(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
}
