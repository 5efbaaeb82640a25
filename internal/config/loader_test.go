package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tOgg1/waybill/internal/models"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, 10, cfg.List.PageSize)
	require.Equal(t, "waybill.guide.lastday", cfg.Page.GuideStorageKey)
	require.Equal(t, time.Second, cfg.Page.ToastDuration)
	require.Equal(t, filepath.Join(cfg.Global.DataDir, "waybill.db"), cfg.DatabasePath())
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"page size", func(c *Config) { c.List.PageSize = 0 }, "list.page_size"},
		{"toast", func(c *Config) { c.Page.ToastDuration = time.Millisecond }, "page.toast_duration"},
		{"theme", func(c *Config) { c.TUI.Theme = "matrix" }, "tui.theme"},
		{"catalog", func(c *Config) { c.Catalog = models.Catalog{} }, "catalog"},
		{"page id", func(c *Config) { c.Page.ID = "" }, "page.id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFromFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
list:
  page_size: 20
page:
  toast_duration: 2s
catalog:
  categories:
    - label: Inbound
      code: receipt
      filters:
        - label: All
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	require.Equal(t, 20, cfg.List.PageSize)
	require.Equal(t, 2*time.Second, cfg.Page.ToastDuration)
	require.Len(t, cfg.Catalog.Categories, 1)
	require.Len(t, cfg.Catalog.Categories[0].Filters, 1)
	require.True(t, cfg.Catalog.Categories[0].Filters[0].IsAll())
	require.Equal(t, "waybill", cfg.Page.ID)
}

func TestLoadEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: warn\n"), 0o644))
	t.Setenv("WAYBILL_LIST_PAGE_SIZE", "5")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	require.Equal(t, 5, cfg.List.PageSize)
	require.Equal(t, "warn", cfg.Logging.Level)
	require.Len(t, cfg.Catalog.Categories, 2)
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestExpandTilde(t *testing.T) {
	home, _ := os.UserHomeDir()
	require.Equal(t, "", expandTilde(""))
	require.Equal(t, home, expandTilde("~"))
	require.Equal(t, filepath.Join(home, "x"), expandTilde("~/x"))
	require.Equal(t, "/abs", expandTilde("/abs"))
}
