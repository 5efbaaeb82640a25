// Package config handles waybill configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tOgg1/waybill/internal/models"
)

// Config is the root configuration structure.
type Config struct {
	// Global settings
	Global GlobalConfig `yaml:"global" mapstructure:"global"`

	// Database settings
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`

	// List store settings
	List ListConfig `yaml:"list" mapstructure:"list"`

	// Page behaviour
	Page PageConfig `yaml:"page" mapstructure:"page"`

	// TUI settings
	TUI TUIConfig `yaml:"tui" mapstructure:"tui"`

	// Catalog is the category/filter vocabulary shown as tabs.
	Catalog models.Catalog `yaml:"catalog" mapstructure:"catalog"`
}

// GlobalConfig contains global settings.
type GlobalConfig struct {
	// DataDir is where the waybill database lives (default: ~/.local/share/waybill).
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`

	// ConfigDir is where config and context files are stored (default: ~/.config/waybill).
	ConfigDir string `yaml:"config_dir" mapstructure:"config_dir"`
}

// DatabaseConfig contains database settings.
type DatabaseConfig struct {
	// Path is the SQLite database file path.
	Path string `yaml:"path" mapstructure:"path"`

	// MaxConnections is the maximum number of database connections.
	MaxConnections int `yaml:"max_connections" mapstructure:"max_connections"`

	// BusyTimeoutMs is how long to wait for a locked database.
	BusyTimeoutMs int `yaml:"busy_timeout_ms" mapstructure:"busy_timeout_ms"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level" mapstructure:"level"`

	// Format is the output format (json, console).
	Format string `yaml:"format" mapstructure:"format"`

	// File is an optional log file path. The TUI logs here instead of stderr.
	File string `yaml:"file" mapstructure:"file"`

	// EnableCaller adds caller information to logs.
	EnableCaller bool `yaml:"enable_caller" mapstructure:"enable_caller"`
}

// ListConfig contains list store settings.
type ListConfig struct {
	// PageSize is the number of waybills fetched per page.
	PageSize int `yaml:"page_size" mapstructure:"page_size"`

	// QueryDelay simulates network latency on every query.
	QueryDelay time.Duration `yaml:"query_delay" mapstructure:"query_delay"`
}

// PageConfig contains page behaviour settings.
type PageConfig struct {
	// ID names the page on the event bus (page.show.<id>).
	ID string `yaml:"id" mapstructure:"id"`

	// ToastDuration is how long transient toasts stay visible.
	ToastDuration time.Duration `yaml:"toast_duration" mapstructure:"toast_duration"`

	// GuideStorageKey is the key holding the last day the recommend popup was shown.
	GuideStorageKey string `yaml:"guide_storage_key" mapstructure:"guide_storage_key"`

	// RestoreContext reopens the last selected tabs when no route params are given.
	RestoreContext bool `yaml:"restore_context" mapstructure:"restore_context"`
}

// TUIConfig contains TUI settings.
type TUIConfig struct {
	// Theme is the color theme (default, high-contrast).
	Theme string `yaml:"theme" mapstructure:"theme"`

	// CardWidth caps the rendered card width.
	CardWidth int `yaml:"card_width" mapstructure:"card_width"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Global: GlobalConfig{
			DataDir:   filepath.Join(homeDir, ".local", "share", "waybill"),
			ConfigDir: filepath.Join(homeDir, ".config", "waybill"),
		},
		Database: DatabaseConfig{
			Path:           "", // Will be set to DataDir/waybill.db
			MaxConnections: 4,
			BusyTimeoutMs:  5000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		List: ListConfig{
			PageSize:   10,
			QueryDelay: 0,
		},
		Page: PageConfig{
			ID:              "waybill",
			ToastDuration:   time.Second,
			GuideStorageKey: "waybill.guide.lastday",
			RestoreContext:  true,
		},
		TUI: TUIConfig{
			Theme:     "default",
			CardWidth: 72,
		},
		Catalog: models.DefaultCatalog(),
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database.max_connections must be at least 1")
	}
	if c.List.PageSize < 1 || c.List.PageSize > 100 {
		return fmt.Errorf("list.page_size must be between 1 and 100")
	}
	if c.List.QueryDelay < 0 {
		return fmt.Errorf("list.query_delay must not be negative")
	}
	if c.Page.ID == "" {
		return fmt.Errorf("page.id is required")
	}
	if c.Page.ToastDuration < 100*time.Millisecond {
		return fmt.Errorf("page.toast_duration must be at least 100ms")
	}
	if c.Page.GuideStorageKey == "" {
		return fmt.Errorf("page.guide_storage_key is required")
	}
	switch c.TUI.Theme {
	case "default", "high-contrast":
	default:
		return fmt.Errorf("tui.theme must be one of default, high-contrast")
	}
	if err := c.Catalog.Validate(); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	return nil
}

// EnsureDirectories creates required directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Global.DataDir, c.Global.ConfigDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the full database path.
func (c *Config) DatabasePath() string {
	if c.Database.Path != "" {
		return c.Database.Path
	}
	return filepath.Join(c.Global.DataDir, "waybill.db")
}

// ContextPath returns the path of the saved page context.
func (c *Config) ContextPath() string {
	return filepath.Join(c.Global.ConfigDir, "context.yaml")
}
