// Package config handles configuration management using Viper
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	// Server configuration (MCP transport)
	Server ServerConfig `mapstructure:"server"`

	// Input backend configuration
	Input InputConfig `mapstructure:"input"`

	// Rate limiter configuration
	Rate RateConfig `mapstructure:"rate"`

	// Logging configuration
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig contains MCP server settings
type ServerConfig struct {
	Transport string `mapstructure:"transport"` // "stdio" or "http"
	HTTPAddr  string `mapstructure:"http_addr"` // bind address for the http transport
}

// InputConfig selects and tunes the injection backend
type InputConfig struct {
	Backend    string `mapstructure:"backend"`     // "simdll", "ahk", or "auto"
	Driver     string `mapstructure:"driver"`      // driver name passed to the simulator init
	SimDir     string `mapstructure:"sim_dir"`     // directory containing the simulator DLL/bindings
	AHKExe     string `mapstructure:"ahk_exe"`     // explicit AutoHotkey v2 executable path
	AHKTimeout int    `mapstructure:"ahk_timeout"` // per-script timeout in seconds
}

// RateConfig tunes event pacing and motion shaping
type RateConfig struct {
	MoveHz       float64 `mapstructure:"move_hz"`        // mouse move steps per second
	MaxDelta     int     `mapstructure:"max_delta"`      // max pixels per move step, per axis
	Smooth       float64 `mapstructure:"smooth"`         // exponential smoothing factor [0,1)
	ClicksPerSec float64 `mapstructure:"clicks_per_sec"` // click events per second
	KeysPerSec   float64 `mapstructure:"keys_per_sec"`   // key events per second
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	LogLevel string `mapstructure:"log_level"` // Override WINJECT_LOG_LEVEL env var
}

var (
	// DefaultConfig provides sensible defaults
	DefaultConfig = Config{
		Server: ServerConfig{
			Transport: "stdio",
			HTTPAddr:  "localhost:8001",
		},
		Input: InputConfig{
			Backend:    "simdll",
			Driver:     "AnyDriver",
			SimDir:     "",
			AHKExe:     "",
			AHKTimeout: 6,
		},
		Rate: RateConfig{
			MoveHz:       120,
			MaxDelta:     60,
			Smooth:       0.0,
			ClicksPerSec: 8.0,
			KeysPerSec:   12.0,
		},
		Logging: LoggingConfig{
			LogLevel: "",
		},
	}

	// Global config instance
	cfg *Config

	// Override config path if set
	configPathOverride string
)

// SetConfigPath allows overriding the config path
func SetConfigPath(path string) {
	configPathOverride = path
}

// Init initializes the configuration system
func Init() error {
	viper.SetConfigName("winject")
	viper.SetConfigType("toml")

	// If a specific path is set, use only that
	if configPathOverride != "" {
		viper.SetConfigFile(configPathOverride)
	} else {
		if dir := userConfigDir(); dir != "" {
			viper.AddConfigPath(dir)
		}
		viper.AddConfigPath(".") // Current directory (lowest priority)
	}

	// Set defaults - need to set individual fields for proper merging
	viper.SetDefault("server.transport", DefaultConfig.Server.Transport)
	viper.SetDefault("server.http_addr", DefaultConfig.Server.HTTPAddr)

	viper.SetDefault("input.backend", DefaultConfig.Input.Backend)
	viper.SetDefault("input.driver", DefaultConfig.Input.Driver)
	viper.SetDefault("input.sim_dir", DefaultConfig.Input.SimDir)
	viper.SetDefault("input.ahk_exe", DefaultConfig.Input.AHKExe)
	viper.SetDefault("input.ahk_timeout", DefaultConfig.Input.AHKTimeout)

	viper.SetDefault("rate.move_hz", DefaultConfig.Rate.MoveHz)
	viper.SetDefault("rate.max_delta", DefaultConfig.Rate.MaxDelta)
	viper.SetDefault("rate.smooth", DefaultConfig.Rate.Smooth)
	viper.SetDefault("rate.clicks_per_sec", DefaultConfig.Rate.ClicksPerSec)
	viper.SetDefault("rate.keys_per_sec", DefaultConfig.Rate.KeysPerSec)

	viper.SetDefault("logging.log_level", DefaultConfig.Logging.LogLevel)

	// Environment overrides: WINJECT_INPUT_BACKEND, WINJECT_RATE_MOVE_HZ, ...
	viper.SetEnvPrefix("winject")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, use defaults
	}

	// Unmarshal config
	cfg = &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	return nil
}

// Get returns the current configuration
func Get() *Config {
	if cfg == nil {
		// Return defaults if not initialized
		return &DefaultConfig
	}
	return cfg
}

// Set sets the current configuration (for testing)
func Set(c *Config) {
	cfg = c
}

// Save saves the current configuration to file
func Save() error {
	configPath := GetConfigPath()

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := viper.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() string {
	// If override is set, use that
	if configPathOverride != "" {
		return configPathOverride
	}

	// Check if config file is already loaded
	if viper.ConfigFileUsed() != "" {
		return viper.ConfigFileUsed()
	}

	if dir := userConfigDir(); dir != "" {
		return filepath.Join(dir, "winject.toml")
	}

	return "winject.toml"
}

// UpdateInput updates the input backend configuration
func UpdateInput(inputCfg InputConfig) error {
	viper.Set("input", inputCfg)
	Get().Input = inputCfg
	return Save()
}

// UpdateRate updates the rate limiter configuration
func UpdateRate(rateCfg RateConfig) error {
	viper.Set("rate", rateCfg)
	Get().Rate = rateCfg
	return Save()
}

// userConfigDir resolves the per-user config directory: %APPDATA%\winject on
// Windows, ~/.config/winject elsewhere.
func userConfigDir() string {
	if runtime.GOOS == "windows" {
		if appdata := os.Getenv("APPDATA"); appdata != "" {
			return filepath.Join(appdata, "winject")
		}
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".config", "winject")
	}
	return ""
}
