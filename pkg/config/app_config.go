package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Default theme constant - easy to change
const DefaultThemeName = "tokyo-night"

// Polling interval bounds. Values outside these are clamped so a bad
// config cannot hammer the manager or freeze the listing.
const (
	MinPollInterval = 5 * time.Second
	MaxPollInterval = 10 * time.Minute
)

// AppConfig represents the complete application configuration
type AppConfig struct {
	Appearance      AppearanceConfig `toml:"appearance"`
	Sort            SortConfig       `toml:"sort,omitempty"`
	Poll            PollConfig       `toml:"poll,omitempty"`
	Pager           PagerConfig      `toml:"pager,omitempty"`
	Export          ExportConfig     `toml:"export,omitempty"`
	LastSeenVersion string           `toml:"last_seen_version,omitempty"`
}

// AppearanceConfig holds theme and visual settings
type AppearanceConfig struct {
	Theme     string            `toml:"theme"`
	Overrides map[string]string `toml:"overrides,omitempty"`
}

// SortConfig holds session sort preferences
type SortConfig struct {
	Field     string `toml:"field"`
	Direction string `toml:"direction"`
}

// PollConfig holds refresh intervals, in seconds
type PollConfig struct {
	SessionsSeconds  int `toml:"sessions_seconds,omitempty"`
	ResourcesSeconds int `toml:"resources_seconds,omitempty"`
}

// PagerConfig holds log viewer settings
type PagerConfig struct {
	Command string `toml:"command,omitempty"` // External pager command (default: "less")
}

// ExportConfig holds CSV/HTML export settings
type ExportConfig struct {
	Directory string `toml:"directory,omitempty"` // Where exports land (default: working directory)
}

// GetAppConfigPath returns the path to the application configuration file
func GetAppConfigPath() string {
	if configPath := os.Getenv("SESSIONAUT_CONFIG"); configPath != "" {
		return configPath
	}

	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			// Fallback for Windows
			home, _ := os.UserHomeDir()
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		return filepath.Join(appData, "sessionaut", "config.toml")
	default:
		// Unix-like systems (Linux, macOS, BSD)
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			return filepath.Join(xdgConfig, "sessionaut", "config.toml")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "sessionaut", "config.toml")
	}
}

// EnsureAppConfigDir creates the config directory if it doesn't exist
func EnsureAppConfigDir() error {
	configPath := GetAppConfigPath()
	configDir := filepath.Dir(configPath)

	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return os.MkdirAll(configDir, 0755)
	}
	return nil
}

// ConfigFileExists returns true if the config file exists on disk
func ConfigFileExists() bool {
	configPath := GetAppConfigPath()
	_, err := os.Stat(configPath)
	return err == nil
}

// GetDefaultConfig returns a config with sensible defaults
func GetDefaultConfig() *AppConfig {
	return &AppConfig{
		Appearance: AppearanceConfig{
			Theme: DefaultThemeName,
		},
		Sort: SortConfig{
			Field:     "created",
			Direction: "desc",
		},
		Poll: PollConfig{
			SessionsSeconds:  15,
			ResourcesSeconds: 20,
		},
	}
}

// LoadAppConfig loads the application configuration with fallback to defaults
func LoadAppConfig() (*AppConfig, error) {
	configPath := GetAppConfigPath()

	// If config file doesn't exist, return defaults
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return GetDefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config from %s: %w", configPath, err)
	}

	var config AppConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Apply defaults for missing fields
	if config.Appearance.Theme == "" {
		config.Appearance.Theme = DefaultThemeName
	}
	if config.Sort.Field == "" {
		config.Sort.Field = "created"
	}
	if config.Sort.Direction == "" {
		config.Sort.Direction = "desc"
	}
	if config.Poll.SessionsSeconds == 0 {
		config.Poll.SessionsSeconds = 15
	}
	if config.Poll.ResourcesSeconds == 0 {
		config.Poll.ResourcesSeconds = 20
	}

	return &config, nil
}

// SaveAppConfig saves the configuration to the config file
func SaveAppConfig(config *AppConfig) error {
	if err := EnsureAppConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := GetAppConfigPath()

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to %s: %w", configPath, err)
	}

	return nil
}

// GetConfigPathForHelp returns the config path for display in help text
func GetConfigPathForHelp() string {
	return GetAppConfigPath()
}

// GetPagerCommand returns the log pager command.
// Priority: SESSIONAUT_PAGER env var > config file > default "less"
func (c *AppConfig) GetPagerCommand() string {
	if envCmd := os.Getenv("SESSIONAUT_PAGER"); envCmd != "" {
		return envCmd
	}
	if c.Pager.Command != "" {
		return c.Pager.Command
	}
	return "less"
}

// SessionsInterval returns the clamped session polling interval
func (c *AppConfig) SessionsInterval() time.Duration {
	return clampInterval(time.Duration(c.Poll.SessionsSeconds) * time.Second)
}

// ResourcesInterval returns the clamped resource polling interval
func (c *AppConfig) ResourcesInterval() time.Duration {
	return clampInterval(time.Duration(c.Poll.ResourcesSeconds) * time.Second)
}

func clampInterval(d time.Duration) time.Duration {
	if d < MinPollInterval {
		return MinPollInterval
	}
	if d > MaxPollInterval {
		return MaxPollInterval
	}
	return d
}

// GetExportDirectory returns where exports are written, defaulting to
// the current working directory
func (c *AppConfig) GetExportDirectory() string {
	if c.Export.Directory != "" {
		return c.Export.Directory
	}
	return "."
}
