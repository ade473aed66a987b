package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/stockmap/pkg/constants"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "inv_data", config.DataDir)
	assert.Equal(t, ".", config.OutputDir)
	assert.Equal(t, "appdata/stockmap.db", config.DBPath)
	assert.Equal(t, 1, config.Concurrency)
	assert.Equal(t, constants.DefaultStaleAfter, config.StaleAfter)
	assert.NotEmpty(t, config.LogFormat)
}

func TestLoadConfigEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STOCKMAP_DATA_DIR", "/srv/feeds")
	t.Setenv("STOCKMAP_CONCURRENCY", "4")
	t.Setenv("STOCKMAP_STALE_AFTER", "48h")
	t.Setenv("STOCKMAP_OUTPUT", "json")

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "/srv/feeds", config.DataDir)
	assert.Equal(t, 4, config.Concurrency)
	assert.Equal(t, 48*time.Hour, config.StaleAfter)
	assert.Equal(t, "json", config.Output)
}

func TestLoadConfigDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	// godotenv sets variables for the whole process
	t.Setenv("STOCKMAP_LOCATION_ID", "")
	require.NoError(t, os.Unsetenv("STOCKMAP_LOCATION_ID"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("STOCKMAP_LOCATION_ID=from-env\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.local"), []byte("STOCKMAP_LOCATION_ID=from-local\n"), 0o644))

	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "from-local", config.LocationID)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".stockmap.yaml"), []byte(`
data_dir: feeds
pos_file: feeds/POS.xlsx
schedule: "0 6 * * *"
stale_after: 72h
`), 0o644))

	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "feeds", config.DataDir)
	assert.Equal(t, "feeds/POS.xlsx", config.POSFile)
	assert.Equal(t, "0 6 * * *", config.Schedule)
	assert.Equal(t, 72*time.Hour, config.StaleAfter)
	assert.Contains(t, config.ConfigFile, ".stockmap.yaml")
}

func TestLoadConfigErrors(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Run("missing explicit file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})

	t.Run("invalid concurrency", func(t *testing.T) {
		t.Setenv("STOCKMAP_CONCURRENCY", "0")
		_, err := LoadConfig("")
		require.Error(t, err)
	})
}

func TestUpdateFromFlags(t *testing.T) {
	c := &Config{Output: "yaml"}
	c.UpdateFromFlags(true, false, true, "")
	assert.True(t, c.Verbose)
	assert.True(t, c.NoColor)
	assert.Equal(t, "yaml", c.Output)

	c.UpdateFromFlags(false, true, false, "json")
	assert.True(t, c.Quiet)
	assert.Equal(t, "json", c.Output)
	assert.True(t, c.Settings().Quiet)
}
