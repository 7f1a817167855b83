package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetViper() {
	viper.Reset()
	Global = nil
}

func TestInitDefaults(t *testing.T) {
	resetViper()
	defer resetViper()

	require.NoError(t, Init(filepath.Join(t.TempDir(), "missing.yaml")))

	settings := Get()
	assert.Equal(t, "http://localhost:8420", settings.Server.URL)
	assert.Equal(t, 1, settings.Stream.BackoffFloorSeconds)
	assert.Equal(t, 30, settings.Stream.BackoffCeilingSeconds)
	assert.Equal(t, 200, settings.Timeline.Retention)
	assert.Equal(t, "web-dashboard", settings.Chat.SessionID)
	assert.Equal(t, "info", settings.Logging.Level)
}

func TestInitReadsConfigFile(t *testing.T) {
	resetViper()
	defer resetViper()

	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "settings.yaml")
	content := `
server:
  url: https://board.example.com
  token: secret
timeline:
  retention: 50
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(cfgFile, []byte(content), 0644))
	require.NoError(t, Init(cfgFile))

	settings := Get()
	assert.Equal(t, "https://board.example.com", settings.Server.URL)
	assert.Equal(t, "secret", settings.Server.Token)
	assert.Equal(t, 50, settings.Timeline.Retention)
	assert.Equal(t, "debug", settings.Logging.Level)
	assert.Equal(t, cfgFile, settings.ConfigFile)
}

func TestBuildSettingsPathUsesConfigPathOverride(t *testing.T) {
	resetViper()
	defer resetViper()

	viper.Set("config.path", "/tmp/spaceboard-test")
	assert.Equal(t, "/tmp/spaceboard-test/system.log", BuildSettingsPath("system.log"))
}
