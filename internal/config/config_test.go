package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(configPathEnv, filepath.Join(t.TempDir(), "missing.yml"))

	cfg := Load()

	assert.Equal(t, "vc_database.db", cfg.Database.Path)
	assert.Equal(t, 300, cfg.Scanner.MessageLimit)
	assert.Equal(t, 72*time.Hour, cfg.Scanner.ScanInterval())
	assert.Equal(t, time.Hour, cfg.Scanner.TickInterval())
	assert.Equal(t, 2*time.Second, cfg.Scanner.FetchDelay())
	assert.Empty(t, cfg.Channels)
}

func TestLoadYAMLFile(t *testing.T) {
	raw := `
database:
  path: /tmp/vc.db
scanner:
  messageLimit: 100
  scanIntervalHours: 24
channels:
  - name: rusven
  - name: "@startupoftheday"
    strategy: webpreview
`
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))
	t.Setenv(configPathEnv, path)

	cfg := Load()

	assert.Equal(t, "/tmp/vc.db", cfg.Database.Path)
	assert.Equal(t, 100, cfg.Scanner.MessageLimit)
	assert.Equal(t, 24*time.Hour, cfg.Scanner.ScanInterval())

	require.Len(t, cfg.Channels, 2)
	assert.Equal(t, "@rusven", cfg.Channels[0].Name)
	assert.Equal(t, "mtproto", cfg.Channels[0].Strategy)
	assert.Equal(t, "@startupoftheday", cfg.Channels[1].Name)
	assert.Equal(t, "webpreview", cfg.Channels[1].Strategy)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(configPathEnv, filepath.Join(t.TempDir(), "missing.yml"))
	t.Setenv(databasePathEnv, "/tmp/override.db")
	t.Setenv(apiIDEnv, "12345")
	t.Setenv(apiHashEnv, "abcdef")
	t.Setenv(botTokenEnv, "123:token")
	t.Setenv(channelsEnv, "rusven, @proVenture;startupoftheday")
	t.Setenv(messageLimitEnv, "50")

	cfg := Load()

	assert.Equal(t, "/tmp/override.db", cfg.Database.Path)
	assert.Equal(t, 12345, cfg.Telegram.APIID)
	assert.Equal(t, "abcdef", cfg.Telegram.APIHash)
	assert.Equal(t, "123:token", cfg.Bot.Token)
	assert.True(t, cfg.Bot.Enabled)
	assert.Equal(t, 50, cfg.Scanner.MessageLimit)

	require.Len(t, cfg.Channels, 3)
	assert.Equal(t, "@rusven", cfg.Channels[0].Name)
	assert.Equal(t, "@proVenture", cfg.Channels[1].Name)
	assert.Equal(t, "@startupoftheday", cfg.Channels[2].Name)
}

func TestBrokenYAMLFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml"), 0o644))
	t.Setenv(configPathEnv, path)

	cfg := Load()
	assert.Equal(t, "vc_database.db", cfg.Database.Path)
}
