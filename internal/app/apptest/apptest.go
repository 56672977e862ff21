// Package apptest builds a fully migrated Application backed by a
// throwaway sqlite database and media root.
package apptest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/visionmark/visionmark/config"
	"github.com/visionmark/visionmark/internal/app"
	"go.uber.org/zap"
)

func Config(t testing.TB) *config.AppConfig {
	dir := t.TempDir()
	cfg := *config.DefaultAppConfig
	cfg.System.Workdir = dir
	cfg.Web.BaseURL = "https://visionmark.test"
	cfg.Database.Type = "sqlite"
	cfg.Database.Name = filepath.Join(dir, "test.db")
	cfg.Logger.FileEnable = false
	cfg.Media.Root = filepath.Join(dir, "media")
	return &cfg
}

func New(t testing.TB) *app.Application {
	zap.ReplaceGlobals(zap.NewNop())
	cfg := Config(t)
	a := app.NewApplication(cfg)
	db, err := app.OpenDatabase(cfg.Database, cfg.System.Workdir)
	require.NoError(t, err)
	a.OverrideDB(db)
	require.NoError(t, a.MigrateDB(false))
	a.EnsureSuper()
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return a
}
