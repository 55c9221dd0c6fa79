// file: internal/config/config.go
// version: 2.0.0
// guid: 7b8c9d0e-1f2a-3b4c-5d6e-7f8a9b0c1d2e

package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	LogLevel  string
	LogFormat string // "text" (default) or "json"
	Output    string // "json" (default) or "yaml"
	CoverDir  string
	Server    ServerConfig
}

// ServerConfig holds the HTTP surface settings
type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

var AppConfig Config

// SetDefaults registers default values with viper
func SetDefaults() {
	viper.SetDefault("base_url", "https://www.gongzicp.com")
	viper.SetDefault("user_agent", "")
	viper.SetDefault("timeout", 30*time.Second)
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "text")
	viper.SetDefault("output", "json")
	viper.SetDefault("cover_dir", ".")
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.read_timeout", 15*time.Second)
	viper.SetDefault("server.write_timeout", 60*time.Second)
	viper.SetDefault("server.idle_timeout", 60*time.Second)
}

// InitConfig initializes the application configuration
func InitConfig() {
	SetDefaults()

	AppConfig = Config{
		BaseURL:   strings.TrimRight(viper.GetString("base_url"), "/"),
		UserAgent: viper.GetString("user_agent"),
		Timeout:   viper.GetDuration("timeout"),
		LogLevel:  strings.ToLower(viper.GetString("log_level")),
		LogFormat: strings.ToLower(viper.GetString("log_format")),
		Output:    strings.ToLower(viper.GetString("output")),
		CoverDir:  viper.GetString("cover_dir"),
		Server: ServerConfig{
			Host:         viper.GetString("server.host"),
			Port:         viper.GetString("server.port"),
			ReadTimeout:  viper.GetDuration("server.read_timeout"),
			WriteTimeout: viper.GetDuration("server.write_timeout"),
			IdleTimeout:  viper.GetDuration("server.idle_timeout"),
		},
	}

	// Normalize
	if AppConfig.Timeout <= 0 {
		AppConfig.Timeout = 30 * time.Second
	}
	if AppConfig.LogFormat != "json" {
		AppConfig.LogFormat = "text"
	}
	if AppConfig.Output == "yml" {
		AppConfig.Output = "yaml"
	}
	if AppConfig.Output != "yaml" {
		AppConfig.Output = "json"
	}
}
