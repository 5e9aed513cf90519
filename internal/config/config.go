// Package config handles configuration loading for aimon.
// It supports XDG config paths and the AI_MONITOR_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all configuration for aimon.
type Config struct {
	Orchestrator OrchestratorConfig `mapstructure:"orchestrator"`
	Supervisor   SupervisorConfig   `mapstructure:"supervisor"`
	Memory       MemoryConfig       `mapstructure:"memory"`
	// TokenOptimize enables the classifier/filter/cache tier in front of
	// agent calls.
	TokenOptimize bool `mapstructure:"token_optimize"`
}

// OrchestratorConfig holds pipeline orchestrator settings.
type OrchestratorConfig struct {
	// Enabled gates orchestrator integration in host tooling.
	Enabled bool `mapstructure:"enabled"`
	// DefaultPipeline is the pipeline used when none is named.
	DefaultPipeline string `mapstructure:"default_pipeline"`
	// ConfigPath is the pipelines JSON document path.
	ConfigPath string `mapstructure:"config_path"`
	// LogPath is the debug log file; empty disables logging.
	LogPath string `mapstructure:"log_path"`
}

// SupervisorConfig holds settings for invoking decision agents.
type SupervisorConfig struct {
	// Command is the supervisor executable spawned per invocation.
	Command string `mapstructure:"command"`
	// Args are fixed arguments passed before the per-agent flags.
	Args []string `mapstructure:"args"`
	// UseAPI switches from the subprocess supervisor to direct API calls.
	UseAPI bool `mapstructure:"use_api"`
	// Model is the default model for API invocations.
	Model string `mapstructure:"model"`
	// APIKey is the Anthropic API key for API invocations.
	APIKey string `mapstructure:"api_key"`
}

// MemoryConfig holds decision store settings.
type MemoryConfig struct {
	// DBPath is the SQLite database backing the decision store.
	DBPath string `mapstructure:"db_path"`
}

// ConfigDir returns the aimon user config directory.
func ConfigDir() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, _ := os.UserHomeDir()
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "aimon")
}

// DataDir returns the aimon user data directory.
func DataDir() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, _ := os.UserHomeDir()
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "aimon")
}

// Load loads configuration from the user config file and environment.
// Precedence (highest to lowest):
//  1. AI_MONITOR_* environment variables
//  2. User config (~/.config/aimon/config.yaml)
//  3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(ConfigDir())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	bindEnv(v)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// LoadFromPath loads configuration from a specific file (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	bindEnv(v)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// setDefaults installs the built-in defaults.
func setDefaults(v *viper.Viper) {
	v.SetDefault("orchestrator.enabled", false)
	v.SetDefault("orchestrator.default_pipeline", "tiered")
	v.SetDefault("orchestrator.config_path", filepath.Join(ConfigDir(), "pipelines.json"))
	v.SetDefault("orchestrator.log_path", "")
	v.SetDefault("supervisor.command", "ai-supervisor")
	v.SetDefault("supervisor.args", []string{})
	v.SetDefault("supervisor.use_api", false)
	v.SetDefault("supervisor.model", "")
	v.SetDefault("token_optimize", true)
	v.SetDefault("memory.db_path", filepath.Join(DataDir(), "monitor.db"))
}

// bindEnv maps the AI_MONITOR_* environment variables onto config keys.
func bindEnv(v *viper.Viper) {
	v.BindEnv("orchestrator.enabled", "AI_MONITOR_ORCHESTRATOR_ENABLED")
	v.BindEnv("orchestrator.default_pipeline", "AI_MONITOR_PIPELINE")
	v.BindEnv("orchestrator.config_path", "AI_MONITOR_PIPELINE_CONFIG")
	v.BindEnv("token_optimize", "AI_MONITOR_TOKEN_OPTIMIZE")
	v.BindEnv("memory.db_path", "AI_MONITOR_MEMORY_DB")
	v.BindEnv("supervisor.command", "AI_MONITOR_SUPERVISOR_CMD")
	v.BindEnv("supervisor.use_api", "AI_MONITOR_USE_API")
	v.BindEnv("supervisor.model", "AI_MONITOR_LLM_MODEL")
	v.BindEnv("supervisor.api_key", "ANTHROPIC_API_KEY")
}
