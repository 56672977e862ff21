package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	cfile := filepath.Join(dir, "visionmark.yml")
	content := `
system:
  workdir: ` + dir + `
web:
  port: 9090
  base_url: https://visionmark.example/
database:
  type: postgres
  name: shop
media:
  quality: 70
`
	require.NoError(t, os.WriteFile(cfile, []byte(content), 0o644))

	cfg := LoadConfig(cfile)
	assert.Equal(t, 9090, cfg.Web.Port)
	assert.Equal(t, "https://visionmark.example", cfg.Web.BaseURL)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, "shop", cfg.Database.Name)
	assert.Equal(t, 70, cfg.Media.Quality)
	// untouched sections keep their defaults
	assert.Equal(t, "admin", cfg.Admin.Username)
	assert.DirExists(t, cfg.GetMediaDir())
}

func TestEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("VISIONMARK_SYSTEM_WORKER_DIR", dir)
	t.Setenv("VISIONMARK_WEB_PORT", "8181")
	t.Setenv("VISIONMARK_DB_DEBUG", "true")
	t.Setenv("VISIONMARK_MEDIA_QUALITY", "not-a-number")

	cfg := LoadConfig(filepath.Join(dir, "missing.yml"))
	assert.Equal(t, dir, cfg.System.Workdir)
	assert.Equal(t, 8181, cfg.Web.Port)
	assert.True(t, cfg.Database.Debug)
	assert.Equal(t, DefaultAppConfig.Media.Quality, cfg.Media.Quality)
}

func TestMediaDir(t *testing.T) {
	cfg := &AppConfig{System: SysConfig{Workdir: "/srv/vm"}, Media: MediaConfig{Root: "media"}}
	assert.Equal(t, "/srv/vm/media", cfg.GetMediaDir())
	cfg.Media.Root = "/data/uploads"
	assert.Equal(t, "/data/uploads", cfg.GetMediaDir())
}
