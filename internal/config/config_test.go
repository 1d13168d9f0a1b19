package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"latex-corrector/internal/logger"
	"latex-corrector/internal/parser"
	"latex-corrector/internal/types"
)

// clearEnv unsets variables that would leak into Load from the host.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvOpenAIAPIKey, EnvOpenAIBaseURL, EnvGitHubToken} {
		t.Setenv(key, "")
	}
}

func newManager(t *testing.T) *ConfigManager {
	t.Helper()
	clearEnv(t)
	cm, err := NewConfigManager(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	return cm
}

func writeConfigFile(t *testing.T, cm *ConfigManager, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(cm.GetConfigPath(), []byte(content), 0600))
}

func TestNewConfigManager(t *testing.T) {
	t.Run("with custom path", func(t *testing.T) {
		cm, err := NewConfigManager("/tmp/test-config.json")
		require.NoError(t, err)
		assert.Equal(t, "/tmp/test-config.json", cm.GetConfigPath())
	})

	t.Run("with empty path uses default", func(t *testing.T) {
		cm, err := NewConfigManager("")
		require.NoError(t, err)
		assert.Equal(t, DefaultConfigFileName, filepath.Base(cm.GetConfigPath()))
		assert.Equal(t, "latex-corrector", filepath.Base(filepath.Dir(cm.GetConfigPath())))
	})
}

func TestConfigManager_LoadMissingFileUsesDefaults(t *testing.T) {
	cm := newManager(t)
	require.NoError(t, cm.Load())

	c := cm.GetConfig()
	assert.Equal(t, ProviderOpenAI, c.AIProvider)
	assert.Equal(t, DefaultModel, c.OpenAIModel)
	assert.Equal(t, DefaultBaseURL, c.OpenAIBaseURL)
	assert.True(t, c.EnableCache)
	assert.Equal(t, 100, c.MaxCacheSize)
	assert.Equal(t, 50, c.MaxExerciseTitleLength)
	assert.Equal(t, 30000, c.AITimeoutMs)
	assert.Equal(t, 3, c.MaxRegenerationAttempts)
	assert.False(t, c.EnablePerformanceMetric)
	assert.True(t, c.EnableCorrectionCache)
	assert.Equal(t, 50, c.CorrectionCacheSize)
	assert.Equal(t, 60, c.CorrectionCacheTTLMinutes)
	assert.Equal(t, 10, c.RateLimitMaxRequests)
	assert.Equal(t, 60, c.RateLimitWindowSeconds)
	assert.Equal(t, int64(DefaultMaxDocumentSize), c.MaxDocumentSize)
	assert.Equal(t, 5, c.MaxBackups)
}

func TestConfigManager_LoadFile(t *testing.T) {
	cm := newManager(t)
	writeConfigFile(t, cm, `{
  "openai_api_key": "file-key",
  "openai_model": "gpt-4o-mini",
  "enable_cache": false,
  "max_cache_size": 7,
  "max_exercise_title_length": 20,
  "log_level": "debug"
}`)

	require.NoError(t, cm.Load())
	c := cm.GetConfig()
	assert.Equal(t, "file-key", cm.GetAPIKey())
	assert.Equal(t, "gpt-4o-mini", cm.GetModel())
	assert.False(t, c.EnableCache)
	assert.Equal(t, 7, c.MaxCacheSize)
	assert.Equal(t, 20, c.MaxExerciseTitleLength)
	// keys absent from the file keep their defaults
	assert.Equal(t, 3, c.MaxRegenerationAttempts)
	assert.Equal(t, DefaultBaseURL, cm.GetBaseURL())
}

func TestConfigManager_LoadInvalidJSONUsesDefaults(t *testing.T) {
	cm := newManager(t)
	writeConfigFile(t, cm, "{not json")

	require.NoError(t, cm.Load())
	assert.Equal(t, DefaultModel, cm.GetConfig().OpenAIModel)
	assert.Equal(t, 100, cm.GetConfig().MaxCacheSize)
}

func TestConfigManager_LoadZeroValuesFallBack(t *testing.T) {
	cm := newManager(t)
	writeConfigFile(t, cm, `{"max_cache_size": 0, "ai_timeout_ms": -5, "openai_model": "", "max_backups": 0}`)

	require.NoError(t, cm.Load())
	c := cm.GetConfig()
	assert.Equal(t, DefaultMaxBackups, c.MaxBackups)
	assert.Equal(t, 100, c.MaxCacheSize)
	assert.Equal(t, 30000, c.AITimeoutMs)
	assert.Equal(t, DefaultModel, c.OpenAIModel)
}

func TestConfigManager_EnvironmentOverrides(t *testing.T) {
	cm := newManager(t)
	writeConfigFile(t, cm, `{"max_cache_size": 7}`)
	t.Setenv("CORRIGER_MAX_CACHE_SIZE", "12")
	t.Setenv("CORRIGER_ENABLE_PERFORMANCE_METRICS", "true")

	require.NoError(t, cm.Load())
	assert.Equal(t, 12, cm.GetConfig().MaxCacheSize)
	assert.True(t, cm.GetConfig().EnablePerformanceMetric)
}

func TestConfigManager_EnvironmentFallbacks(t *testing.T) {
	cm := newManager(t)
	t.Setenv(EnvOpenAIAPIKey, "env-key")
	t.Setenv(EnvOpenAIBaseURL, "https://proxy.example.com/v1")

	require.NoError(t, cm.Load())
	assert.Equal(t, "env-key", cm.GetAPIKey())
	assert.Equal(t, "https://proxy.example.com/v1", cm.GetBaseURL())

	// a key in the file wins over the plain environment variable
	writeConfigFile(t, cm, `{"openai_api_key": "file-key"}`)
	require.NoError(t, cm.Load())
	assert.Equal(t, "file-key", cm.GetAPIKey())
}

func TestConfigManager_CopilotProvider(t *testing.T) {
	cm := newManager(t)
	t.Setenv(EnvGitHubToken, "ghp_test")
	writeConfigFile(t, cm, `{"ai_provider": "Copilot"}`)

	require.NoError(t, cm.Load())
	assert.Equal(t, ProviderCopilot, cm.GetProvider())
	assert.Equal(t, "ghp_test", cm.GetAPIKey())
	assert.Equal(t, DefaultCopilotBaseURL, cm.GetBaseURL())
	assert.Equal(t, DefaultCopilotModel, cm.GetModel())
}

func TestConfigManager_SaveAndReload(t *testing.T) {
	cm := newManager(t)
	require.NoError(t, cm.Load())
	cm.GetConfig().OpenAIModel = "gpt-4.1"
	cm.GetConfig().MaxCacheSize = 3
	require.NoError(t, cm.SetAPIKey("saved-key"))

	info, err := os.Stat(cm.GetConfigPath())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	data, err := os.ReadFile(cm.GetConfigPath())
	require.NoError(t, err)
	var onDisk types.Config
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Equal(t, "saved-key", onDisk.OpenAIAPIKey)

	reloaded, err := NewConfigManager(cm.GetConfigPath())
	require.NoError(t, err)
	require.NoError(t, reloaded.Load())
	assert.Equal(t, "gpt-4.1", reloaded.GetModel())
	assert.Equal(t, 3, reloaded.GetConfig().MaxCacheSize)
	assert.Equal(t, "saved-key", reloaded.GetAPIKey())
}

func TestConfigManager_SaveCreatesDirectory(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "dir", "config.json")
	cm, err := NewConfigManager(path)
	require.NoError(t, err)
	require.NoError(t, cm.Save())
	assert.FileExists(t, path)
}

func TestConfigManager_DerivedSettings(t *testing.T) {
	cm := newManager(t)
	require.NoError(t, cm.Load())

	assert.Equal(t, 30*time.Second, cm.GetAITimeout())
	n, window := cm.GetRateLimit()
	assert.Equal(t, 10, n)
	assert.Equal(t, time.Minute, window)
	assert.Equal(t, time.Hour, cm.GetCorrectionCacheTTL())
	assert.Equal(t, int64(10*1024*1024), cm.GetMaxDocumentSize())
	assert.Equal(t, 5, cm.GetMaxBackups())

	cm.GetConfig().MaxBackups = 2
	assert.Equal(t, 2, cm.GetMaxBackups())
	cm.GetConfig().MaxBackups = -1
	assert.Equal(t, DefaultMaxBackups, cm.GetMaxBackups())

	assert.Equal(t, parser.Options{
		EnableCache:        true,
		MaxCacheSize:       100,
		MaxTitleLength:     50,
		MaxCachedExercises: parser.DefaultMaxCachedExercises,
	}, cm.DetectorOptions())
}

func TestConfigManager_LoggerConfig(t *testing.T) {
	cm := newManager(t)
	cm.SetConfig(&types.Config{LogLevel: "warning", LogFile: "/tmp/x.log"})
	lc := cm.LoggerConfig()
	assert.Equal(t, logger.LevelWarn, lc.Level)
	assert.Equal(t, "/tmp/x.log", lc.LogFilePath)

	cm.SetConfig(&types.Config{LogLevel: "verbose"})
	assert.Equal(t, logger.LevelInfo, cm.LoggerConfig().Level)
}

func TestConfigManager_NilConfigGetters(t *testing.T) {
	cm := newManager(t)
	cm.SetConfig(nil)
	assert.Equal(t, DefaultModel, cm.GetModel())
	assert.Equal(t, DefaultBaseURL, cm.GetBaseURL())
	assert.Equal(t, ProviderOpenAI, cm.GetProvider())
	assert.Equal(t, 30*time.Second, cm.GetAITimeout())
}
