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
	path := filepath.Join(t.TempDir(), "relay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFromPath_Defaults(t *testing.T) {
	cfg, err := LoadFromPath("")
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "file", cfg.StoreDriver)
	assert.Equal(t, "shift_relay.json", cfg.DataPath)
	assert.Equal(t, 30, cfg.NotifyMinutesBefore)
	assert.Equal(t, ":8000", cfg.Addr())
}

func TestLoadFromPath_YAMLThenEnv(t *testing.T) {
	path := writeConfig(t, `
port: "9000"
storeDriver: sqlite
timezone: Asia/Kolkata
notifyMinutesBefore: 15
`)
	t.Setenv("PORT", "9100")

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Port, "env wins over file")
	assert.Equal(t, "sqlite", cfg.StoreDriver)
	assert.Equal(t, "shift_relay.db", cfg.DataPath)
	assert.Equal(t, 15, cfg.NotifyMinutesBefore)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Kolkata", loc.String())
}

func TestLoadFromPath_Invalid(t *testing.T) {
	tests := map[string]string{
		"driver":   "storeDriver: mongo\n",
		"postgres": "storeDriver: postgres\n",
		"timezone": "timezone: Mars/Olympus\n",
		"port":     "port: abc\n",
		"email":    "adminEmail: nope\n",
		"yaml":     "port: [\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFromPath(writeConfig(t, content))
			assert.Error(t, err)
		})
	}
}

func TestLoadFromPath_MissingFile(t *testing.T) {
	_, err := LoadFromPath(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadFromPath_PostgresWithURL(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://relay@localhost/relay")

	cfg, err := LoadFromPath("")
	require.NoError(t, err)
	assert.Equal(t, "postgres://relay@localhost/relay", cfg.DatabaseURL)
}
