// Package config loads contextd configuration from file and environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// HTTPConfig configures the ingest/status API listener.
type HTTPConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Addr returns the listen address in host:port form.
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// ActionsConfig configures the external commands invoked when scenarios
// fire. Commands are looked up on PATH; empty commands disable the
// corresponding side effect (the firing is still logged and recorded).
type ActionsConfig struct {
	// NotifyCommand sends a desktop notification; invoked as
	// `<cmd> <title> <body>`.
	NotifyCommand string `mapstructure:"notify_command"`

	// OpenCommand opens a URI (deep link) with the platform handler.
	OpenCommand string `mapstructure:"open_command"`

	// MediaURI is the deep link launched by the music scenario.
	MediaURI string `mapstructure:"media_uri"`

	// BrightnessDevice is the sysfs brightness file written by the home
	// scenario's night mode.
	BrightnessDevice string `mapstructure:"brightness_device"`

	// NightBrightness and DayBrightness are the raw values written for
	// night and day mode.
	NightBrightness int `mapstructure:"night_brightness"`
	DayBrightness   int `mapstructure:"day_brightness"`
}

// Config is the top-level contextd configuration.
type Config struct {
	// DataDir holds the SQLite database and any runtime files.
	DataDir string `mapstructure:"data_dir"`

	// LogLevel is one of trace, debug, info, warn, error.
	LogLevel string `mapstructure:"log_level"`

	// LogConsole renders logs for humans instead of JSON.
	LogConsole bool `mapstructure:"log_console"`

	HTTP    HTTPConfig    `mapstructure:"http"`
	Actions ActionsConfig `mapstructure:"actions"`
}

// DBPath returns the path of the SQLite database.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "contextd.db")
}

// EnsureDataDir creates the data directory if it does not exist.
func (c *Config) EnsureDataDir() error {
	if err := os.MkdirAll(c.DataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	v.SetDefault("data_dir", filepath.Join(home, ".contextd"))
	v.SetDefault("log_level", "info")
	v.SetDefault("log_console", true)
	v.SetDefault("http.host", "127.0.0.1")
	v.SetDefault("http.port", 8750)
	v.SetDefault("actions.notify_command", "notify-send")
	v.SetDefault("actions.open_command", "xdg-open")
	v.SetDefault("actions.media_uri", "spotify:playlist:4cgeOaRCHDkVDQPaDrRQFR")
	v.SetDefault("actions.brightness_device", "")
	v.SetDefault("actions.night_brightness", 5)
	v.SetDefault("actions.day_brightness", 80)
}

// Load reads configuration from the given file (optional; empty path means
// the default search locations) with CONTEXTD_* environment overrides on
// top.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("CONTEXTD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("contextd")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".contextd"))
		}
		if err := v.ReadInConfig(); err != nil {
			// A missing config file is fine; defaults apply.
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Default returns the built-in configuration without consulting files or
// the environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("default config unmarshal: %v", err))
	}
	return &cfg
}
