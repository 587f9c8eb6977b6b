package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for ChatSpark
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Chat     ChatConfig     `mapstructure:"chat"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Speech   SpeechConfig   `mapstructure:"speech"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LLMConfig holds completion provider configuration
type LLMConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
}

// ChatConfig holds default conversation settings
type ChatConfig struct {
	Personality   string `mapstructure:"personality"`
	DefensiveMode bool   `mapstructure:"defensive_mode"`
}

// MetricsConfig holds metrics reporting configuration
type MetricsConfig struct {
	ReportIntervalSeconds int `mapstructure:"report_interval_seconds"`
}

// SpeechConfig enables the optional speech capabilities
type SpeechConfig struct {
	Input  bool `mapstructure:"input"`
	Output bool `mapstructure:"output"`
}

// Load loads configuration from file and environment
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read config file if specified
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("CHATSPARK")
	v.AutomaticEnv()

	// Read config
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3001)
	v.SetDefault("server.base_url", "http://localhost:3001")
	v.SetDefault("server.api_key", "")

	v.SetDefault("database.path", "./data/chatspark.db")

	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "gpt-4o-mini")

	v.SetDefault("chat.personality", "friendly")
	v.SetDefault("chat.defensive_mode", false)

	v.SetDefault("metrics.report_interval_seconds", 5)

	v.SetDefault("speech.input", false)
	v.SetDefault("speech.output", false)
}

// Address returns the server address
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// ReportInterval returns the metrics reporter period.
func (c *Config) ReportInterval() time.Duration {
	return time.Duration(c.Metrics.ReportIntervalSeconds) * time.Second
}
