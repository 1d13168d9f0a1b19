// Package config provides configuration management for the LaTeX exercise corrector.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"latex-corrector/internal/logger"
	"latex-corrector/internal/parser"
	"latex-corrector/internal/types"
)

const (
	// DefaultConfigFileName is the default configuration file name
	DefaultConfigFileName = "latex-corrector-config.json"
	// EnvPrefix prefixes every environment override, e.g. CORRIGER_ENABLE_CACHE
	EnvPrefix = "CORRIGER"
	// EnvOpenAIAPIKey is the environment variable name for OpenAI API key
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	// EnvOpenAIBaseURL is the environment variable name for OpenAI base URL
	EnvOpenAIBaseURL = "OPENAI_BASE_URL"
	// EnvGitHubToken is the environment variable name for the GitHub Models token
	EnvGitHubToken = "GITHUB_TOKEN"

	ProviderOpenAI  = "openai"
	ProviderCopilot = "copilot"

	DefaultProvider       = ProviderOpenAI
	DefaultBaseURL        = "https://api.openai.com/v1"
	DefaultModel          = "gpt-5-mini"
	DefaultCopilotBaseURL = "https://models.github.ai/inference"
	DefaultCopilotModel   = "openai/gpt-4o"
	DefaultLogLevel       = "info"
	DefaultLogFile        = "latex-corrector.log"

	DefaultAITimeoutMs               = 30000
	DefaultMaxRegenerationAttempts   = 3
	DefaultCorrectionCacheSize       = 50
	DefaultCorrectionCacheTTLMinutes = 60
	DefaultRateLimitMaxRequests      = 10
	DefaultRateLimitWindowSeconds    = 60
	DefaultMaxDocumentSize           = 10 * 1024 * 1024
	DefaultMaxBackups                = 5
)

// ConfigManager manages application configuration
type ConfigManager struct {
	configPath string
	v          *viper.Viper
	config     *types.Config
}

// NewConfigManager creates a new ConfigManager with the specified config path.
// If configPath is empty, it uses the default path in user's home directory.
func NewConfigManager(configPath string) (*ConfigManager, error) {
	if configPath == "" {
		path, err := DefaultConfigPath()
		if err != nil {
			logger.Error("failed to get user home directory", err)
			return nil, types.NewAppError(types.ErrConfig, "failed to get user home directory", err)
		}
		configPath = path
	}

	logger.Debug("ConfigManager initialized", logger.String("configPath", configPath))
	return &ConfigManager{
		configPath: configPath,
		v:          newViper(configPath),
		config:     defaultConfig(),
	}, nil
}

// DefaultConfigPath returns ~/.config/latex-corrector/latex-corrector-config.json.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "latex-corrector", DefaultConfigFileName), nil
}

func newViper(configPath string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := defaultConfig()
	v.SetDefault("ai_provider", d.AIProvider)
	v.SetDefault("openai_api_key", "")
	v.SetDefault("openai_base_url", "")
	v.SetDefault("openai_model", d.OpenAIModel)
	v.SetDefault("github_token", "")
	v.SetDefault("copilot_base_url", d.CopilotBaseURL)
	v.SetDefault("copilot_model", d.CopilotModel)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("enable_cache", d.EnableCache)
	v.SetDefault("max_cache_size", d.MaxCacheSize)
	v.SetDefault("max_exercise_title_length", d.MaxExerciseTitleLength)
	v.SetDefault("ai_timeout_ms", d.AITimeoutMs)
	v.SetDefault("max_regeneration_attempts", d.MaxRegenerationAttempts)
	v.SetDefault("enable_performance_metrics", d.EnablePerformanceMetric)
	v.SetDefault("enable_correction_cache", d.EnableCorrectionCache)
	v.SetDefault("correction_cache_size", d.CorrectionCacheSize)
	v.SetDefault("correction_cache_ttl_minutes", d.CorrectionCacheTTLMinutes)
	v.SetDefault("rate_limit_max_requests", d.RateLimitMaxRequests)
	v.SetDefault("rate_limit_window_seconds", d.RateLimitWindowSeconds)
	v.SetDefault("max_document_size", d.MaxDocumentSize)
	v.SetDefault("max_backups", d.MaxBackups)
	return v
}

// defaultConfig returns a Config with default values
func defaultConfig() *types.Config {
	return &types.Config{
		AIProvider:                DefaultProvider,
		OpenAIBaseURL:             DefaultBaseURL,
		OpenAIModel:               DefaultModel,
		CopilotBaseURL:            DefaultCopilotBaseURL,
		CopilotModel:              DefaultCopilotModel,
		LogLevel:                  DefaultLogLevel,
		LogFile:                   DefaultLogFile,
		EnableCache:               true,
		MaxCacheSize:              parser.DefaultMaxCacheSize,
		MaxExerciseTitleLength:    parser.DefaultMaxTitleLength,
		AITimeoutMs:               DefaultAITimeoutMs,
		MaxRegenerationAttempts:   DefaultMaxRegenerationAttempts,
		EnablePerformanceMetric:   false,
		EnableCorrectionCache:     true,
		CorrectionCacheSize:       DefaultCorrectionCacheSize,
		CorrectionCacheTTLMinutes: DefaultCorrectionCacheTTLMinutes,
		RateLimitMaxRequests:      DefaultRateLimitMaxRequests,
		RateLimitWindowSeconds:    DefaultRateLimitWindowSeconds,
		MaxDocumentSize:           DefaultMaxDocumentSize,
		MaxBackups:                DefaultMaxBackups,
	}
}

// Load loads configuration from the config file.
// If the file doesn't exist or is not valid JSON, it uses default values.
// CORRIGER_* environment variables override file values; OPENAI_API_KEY,
// OPENAI_BASE_URL and GITHUB_TOKEN fill in values left empty.
func (m *ConfigManager) Load() error {
	logger.Debug("loading configuration", logger.String("path", m.configPath))

	if _, err := os.Stat(m.configPath); err != nil {
		if !os.IsNotExist(err) {
			logger.Error("failed to stat config file", err, logger.String("path", m.configPath))
			return types.NewAppError(types.ErrConfig, "failed to read config file", err)
		}
		logger.Info("config file not found, using defaults", logger.String("path", m.configPath))
	} else if err := m.v.ReadInConfig(); err != nil {
		var parseErr viper.ConfigParseError
		if !errors.As(err, &parseErr) {
			logger.Error("failed to read config file", err, logger.String("path", m.configPath))
			return types.NewAppError(types.ErrConfig, "failed to read config file", err)
		}
		// Invalid JSON, keep defaults and environment
		logger.Warn("invalid config file format, using defaults", logger.String("path", m.configPath), logger.Err(err))
	}

	config := &types.Config{}
	if err := m.v.Unmarshal(config); err != nil {
		logger.Warn("invalid config values, using defaults", logger.String("path", m.configPath), logger.Err(err))
		config = defaultConfig()
	}
	applyDefaults(config)
	m.config = config

	logger.Info("configuration loaded",
		logger.String("path", m.configPath),
		logger.String("provider", config.AIProvider),
		logger.Int("apiKeyLength", len(config.OpenAIAPIKey)),
		logger.String("model", m.GetModel()))
	return nil
}

// applyDefaults fills empty or non-positive fields.
func applyDefaults(c *types.Config) {
	d := defaultConfig()
	if c.AIProvider == "" {
		c.AIProvider = d.AIProvider
	}
	if c.OpenAIAPIKey == "" {
		c.OpenAIAPIKey = os.Getenv(EnvOpenAIAPIKey)
	}
	if c.OpenAIBaseURL == "" {
		c.OpenAIBaseURL = os.Getenv(EnvOpenAIBaseURL)
	}
	if c.OpenAIBaseURL == "" {
		c.OpenAIBaseURL = d.OpenAIBaseURL
	}
	if c.OpenAIModel == "" {
		c.OpenAIModel = d.OpenAIModel
	}
	if c.GitHubToken == "" {
		c.GitHubToken = os.Getenv(EnvGitHubToken)
	}
	if c.CopilotBaseURL == "" {
		c.CopilotBaseURL = d.CopilotBaseURL
	}
	if c.CopilotModel == "" {
		c.CopilotModel = d.CopilotModel
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.LogFile == "" {
		c.LogFile = d.LogFile
	}
	if c.MaxCacheSize <= 0 {
		c.MaxCacheSize = d.MaxCacheSize
	}
	if c.MaxExerciseTitleLength <= 0 {
		c.MaxExerciseTitleLength = d.MaxExerciseTitleLength
	}
	if c.AITimeoutMs <= 0 {
		c.AITimeoutMs = d.AITimeoutMs
	}
	if c.MaxRegenerationAttempts <= 0 {
		c.MaxRegenerationAttempts = d.MaxRegenerationAttempts
	}
	if c.CorrectionCacheSize <= 0 {
		c.CorrectionCacheSize = d.CorrectionCacheSize
	}
	if c.CorrectionCacheTTLMinutes <= 0 {
		c.CorrectionCacheTTLMinutes = d.CorrectionCacheTTLMinutes
	}
	if c.RateLimitMaxRequests <= 0 {
		c.RateLimitMaxRequests = d.RateLimitMaxRequests
	}
	if c.RateLimitWindowSeconds <= 0 {
		c.RateLimitWindowSeconds = d.RateLimitWindowSeconds
	}
	if c.MaxDocumentSize <= 0 {
		c.MaxDocumentSize = d.MaxDocumentSize
	}
	if c.MaxBackups <= 0 {
		c.MaxBackups = d.MaxBackups
	}
}

// Save saves the current configuration to the config file.
func (m *ConfigManager) Save() error {
	logger.Debug("saving configuration", logger.String("path", m.configPath))

	dir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		logger.Error("failed to create config directory", err, logger.String("dir", dir))
		return types.NewAppError(types.ErrConfig, "failed to create config directory", err)
	}

	data, err := json.MarshalIndent(m.GetConfig(), "", "  ")
	if err != nil {
		logger.Error("failed to marshal config", err)
		return types.NewAppError(types.ErrConfig, "failed to marshal config", err)
	}

	if err := os.WriteFile(m.configPath, data, 0600); err != nil {
		logger.Error("failed to write config file", err, logger.String("path", m.configPath))
		return types.NewAppError(types.ErrConfig, "failed to write config file", err)
	}

	logger.Info("configuration saved successfully", logger.String("path", m.configPath))
	return nil
}

// GetConfig returns the current configuration.
func (m *ConfigManager) GetConfig() *types.Config {
	if m.config == nil {
		return defaultConfig()
	}
	return m.config
}

// SetConfig sets the entire configuration.
func (m *ConfigManager) SetConfig(config *types.Config) {
	m.config = config
}

// GetConfigPath returns the path to the config file.
func (m *ConfigManager) GetConfigPath() string {
	return m.configPath
}

// GetProvider returns the configured AI provider, "openai" or "copilot".
func (m *ConfigManager) GetProvider() string {
	if p := strings.ToLower(m.GetConfig().AIProvider); p != "" {
		return p
	}
	return DefaultProvider
}

// GetAPIKey returns the credential for the active provider.
func (m *ConfigManager) GetAPIKey() string {
	c := m.GetConfig()
	if m.GetProvider() == ProviderCopilot {
		if c.GitHubToken != "" {
			return c.GitHubToken
		}
		return os.Getenv(EnvGitHubToken)
	}
	if c.OpenAIAPIKey != "" {
		return c.OpenAIAPIKey
	}
	return os.Getenv(EnvOpenAIAPIKey)
}

// SetAPIKey sets the OpenAI API key and saves the configuration.
func (m *ConfigManager) SetAPIKey(key string) error {
	logger.Info("setting API key")
	if m.config == nil {
		m.config = defaultConfig()
	}
	m.config.OpenAIAPIKey = key
	return m.Save()
}

// GetBaseURL returns the API base URL of the active provider.
func (m *ConfigManager) GetBaseURL() string {
	c := m.GetConfig()
	if m.GetProvider() == ProviderCopilot {
		if c.CopilotBaseURL != "" {
			return c.CopilotBaseURL
		}
		return DefaultCopilotBaseURL
	}
	if c.OpenAIBaseURL != "" {
		return c.OpenAIBaseURL
	}
	if envURL := os.Getenv(EnvOpenAIBaseURL); envURL != "" {
		return envURL
	}
	return DefaultBaseURL
}

// GetModel returns the model name of the active provider.
func (m *ConfigManager) GetModel() string {
	c := m.GetConfig()
	if m.GetProvider() == ProviderCopilot {
		if c.CopilotModel != "" {
			return c.CopilotModel
		}
		return DefaultCopilotModel
	}
	if c.OpenAIModel != "" {
		return c.OpenAIModel
	}
	return DefaultModel
}

// GetAITimeout returns the per-call model timeout.
func (m *ConfigManager) GetAITimeout() time.Duration {
	if ms := m.GetConfig().AITimeoutMs; ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return DefaultAITimeoutMs * time.Millisecond
}

// GetRateLimit returns the maximum number of model requests per window.
func (m *ConfigManager) GetRateLimit() (int, time.Duration) {
	c := m.GetConfig()
	n, secs := c.RateLimitMaxRequests, c.RateLimitWindowSeconds
	if n <= 0 {
		n = DefaultRateLimitMaxRequests
	}
	if secs <= 0 {
		secs = DefaultRateLimitWindowSeconds
	}
	return n, time.Duration(secs) * time.Second
}

// GetCorrectionCacheTTL returns how long a generated correction stays cached.
func (m *ConfigManager) GetCorrectionCacheTTL() time.Duration {
	if mins := m.GetConfig().CorrectionCacheTTLMinutes; mins > 0 {
		return time.Duration(mins) * time.Minute
	}
	return DefaultCorrectionCacheTTLMinutes * time.Minute
}

// GetMaxDocumentSize returns the largest document size accepted, in bytes.
func (m *ConfigManager) GetMaxDocumentSize() int64 {
	if n := m.GetConfig().MaxDocumentSize; n > 0 {
		return n
	}
	return DefaultMaxDocumentSize
}

// GetMaxBackups returns how many backups to keep per document. At least one
// is always kept so the last correction can be undone.
func (m *ConfigManager) GetMaxBackups() int {
	if n := m.GetConfig().MaxBackups; n > 0 {
		return n
	}
	return DefaultMaxBackups
}

// DetectorOptions maps the cache and title settings onto parser.Options.
func (m *ConfigManager) DetectorOptions() parser.Options {
	c := m.GetConfig()
	return parser.Options{
		EnableCache:        c.EnableCache,
		MaxCacheSize:       c.MaxCacheSize,
		MaxTitleLength:     c.MaxExerciseTitleLength,
		MaxCachedExercises: parser.DefaultMaxCachedExercises,
	}
}

// LoggerConfig builds the logger configuration from the log settings.
// An unknown level falls back to info.
func (m *ConfigManager) LoggerConfig() *logger.Config {
	c := m.GetConfig()
	lc := logger.DefaultConfig()
	if c.LogFile != "" {
		lc.LogFilePath = c.LogFile
	}
	if level, err := logger.ParseLevel(c.LogLevel); err == nil {
		lc.Level = level
	}
	return lc
}
