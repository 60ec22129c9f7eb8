package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnv_Defaults(t *testing.T) {
	for _, k := range []string{"GHOSTLAP_DB_PATH", "GHOSTLAP_CONFIG", "GHOSTLAP_DRIVER", "GHOSTLAP_ADMIN_ADDR", "GHOSTLAP_QUIET"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	e, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, "ghostlap.db", e.DBPath)
	assert.Equal(t, "Default", e.Driver)
	assert.Equal(t, "localhost:8089", e.AdminAddr)
	assert.Empty(t, e.ConfigPath)
	assert.False(t, e.Quiet)

	cfg, err := e.Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultGhostConfig().GetLapCount(), cfg.GetLapCount())
}

func TestLoadEnv_Overrides(t *testing.T) {
	path := writeConfig(t, "ghost.json", `{"lap_count": 7}`)
	t.Setenv("GHOSTLAP_DB_PATH", "/tmp/other.db")
	t.Setenv("GHOSTLAP_CONFIG", path)
	t.Setenv("GHOSTLAP_DRIVER", "ada")
	t.Setenv("GHOSTLAP_QUIET", "true")

	e, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/other.db", e.DBPath)
	assert.Equal(t, "ada", e.Driver)
	assert.True(t, e.Quiet)

	cfg, err := e.Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.GetLapCount())
}

func TestLoadEnv_BadBool(t *testing.T) {
	t.Setenv("GHOSTLAP_QUIET", "maybe")
	_, err := LoadEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env")
}
