// file: cmd/root_test.go
// version: 2.0.0
// guid: 7eae8d0c-7fda-4f45-8f73-5d1e0c7c9f1a

package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/oovz/calibre-changpei/internal/config"
	"github.com/oovz/calibre-changpei/internal/metadata"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// forgetConfigFile replaces whatever viper loaded with an empty document.
func forgetConfigFile(t *testing.T) {
	t.Helper()
	empty := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	viper.SetConfigFile(empty)
	_ = viper.ReadInConfig()
}

func TestInitConfigUsesHomeConfig(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, ".changpei.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("base_url: http://from-file.test/\nlog_level: DEBUG\n"), 0o644))

	origCfgFile := cfgFile
	origConfig := config.AppConfig
	t.Cleanup(func() {
		cfgFile = origCfgFile
		config.AppConfig = origConfig
		forgetConfigFile(t)
	})

	resetFlags(rootCmd)
	t.Setenv("HOME", tempDir)
	cfgFile = ""

	initConfig()

	assert.Equal(t, configPath, viper.ConfigFileUsed())
	assert.Equal(t, "http://from-file.test", config.AppConfig.BaseURL)
	assert.Equal(t, "debug", config.AppConfig.LogLevel)
}

func TestInitConfigExplicitFile(t *testing.T) {
	tempDir := t.TempDir()

	origCfgFile := cfgFile
	origConfig := config.AppConfig
	t.Cleanup(func() {
		cfgFile = origCfgFile
		config.AppConfig = origConfig
		forgetConfigFile(t)
	})

	resetFlags(rootCmd)
	cfgFile = filepath.Join(tempDir, "custom.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("timeout: 5s\noutput: yml\n"), 0o644))

	initConfig()

	assert.Equal(t, 5*time.Second, config.AppConfig.Timeout)
	assert.Equal(t, "yaml", config.AppConfig.Output)
}

func TestInitConfigEnvOverride(t *testing.T) {
	origConfig := config.AppConfig
	t.Cleanup(func() { config.AppConfig = origConfig })

	resetFlags(rootCmd)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CHANGPEI_BASE_URL", "http://from-env.test")

	initConfig()

	assert.Equal(t, "http://from-env.test", config.AppConfig.BaseURL)
}

func TestIdentifyRequest(t *testing.T) {
	req := identifyRequest("1312354", "降水", "芥菜糊糊", time.Second)
	assert.Equal(t, "1312354", req.Identifiers[metadata.ProviderID])
	assert.Equal(t, "降水", req.Title)
	assert.Equal(t, []string{"芥菜糊糊"}, req.Authors)
	assert.Equal(t, time.Second, req.Timeout)

	req = identifyRequest("", "降水", "", 0)
	assert.Empty(t, req.Identifiers)
	assert.Nil(t, req.Authors)
}
