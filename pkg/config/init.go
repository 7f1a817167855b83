package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Settings holds all application configuration
type Settings struct {
	// Server settings
	Server struct {
		// URL is the base URL of the backend (http/https)
		URL string
		// Token is the bearer token sent on every request
		Token string
	}

	// Stream settings govern the reconnecting event stream
	Stream struct {
		// BackoffFloorSeconds is the first retry delay
		BackoffFloorSeconds int
		// BackoffCeilingSeconds caps the retry delay
		BackoffCeilingSeconds int
	}

	// Timeline settings
	Timeline struct {
		// Retention bounds the per-channel message timeline
		Retention int
	}

	// Chat settings
	Chat struct {
		// SessionID identifies this client's chat session
		SessionID string
	}

	// Logging settings
	Logging struct {
		LogFile string
		Persist bool
		Level   string
	}

	// ConfigFile stores the path to the config file used
	ConfigFile string
}

// Global settings instance
var Global *Settings

// Init initializes the configuration system
func Init(cfgFile string) error {
	Global = &Settings{}

	// Set config file
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		Global.ConfigFile = cfgFile
	} else {
		viper.AddConfigPath("./.spaceboard")
		viper.SetConfigType("yaml")
		viper.SetConfigName("settings")
		Global.ConfigFile = ".spaceboard/settings.yaml"
	}

	// Set all defaults
	setDefaults()

	// Enable environment variable support
	viper.AutomaticEnv()

	// Bind specific environment variables to config keys
	viper.BindEnv("server.url", "SPACEBOARD_SERVER_URL")
	viper.BindEnv("server.token", "SPACEBOARD_TOKEN")

	// Read config file if it exists
	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}

	// Load settings into global struct
	return Load()
}

// setDefaults sets all default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.url", "http://localhost:8420")
	viper.SetDefault("server.token", "")

	// Stream defaults
	viper.SetDefault("stream.backoff_floor_seconds", 1)
	viper.SetDefault("stream.backoff_ceiling_seconds", 30)

	// Timeline defaults
	viper.SetDefault("timeline.retention", 200)

	// Chat defaults
	viper.SetDefault("chat.session_id", "web-dashboard")

	// Logging defaults
	viper.SetDefault("logging.log_file", "system.log")
	viper.SetDefault("logging.persist", false)
	viper.SetDefault("logging.level", "info")
}

// Load loads configuration from viper into the Settings struct
func Load() error {
	// Server settings
	Global.Server.URL = viper.GetString("server.url")
	Global.Server.Token = viper.GetString("server.token")

	// Stream settings
	Global.Stream.BackoffFloorSeconds = viper.GetInt("stream.backoff_floor_seconds")
	Global.Stream.BackoffCeilingSeconds = viper.GetInt("stream.backoff_ceiling_seconds")

	// Timeline settings
	Global.Timeline.Retention = viper.GetInt("timeline.retention")

	// Chat settings
	Global.Chat.SessionID = viper.GetString("chat.session_id")

	// Logging settings
	Global.Logging.LogFile = viper.GetString("logging.log_file")
	Global.Logging.Persist = viper.GetBool("logging.persist")
	Global.Logging.Level = viper.GetString("logging.level")

	return nil
}

// Get returns the global settings instance
func Get() *Settings {
	if Global == nil {
		Global = &Settings{}
		setDefaults()
		Load()
	}
	return Global
}
