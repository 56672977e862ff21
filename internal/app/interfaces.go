package app

import (
	"context"

	"github.com/visionmark/visionmark/config"
	"github.com/visionmark/visionmark/internal/media"
	"gorm.io/gorm"
)

// DBProvider provides database access
type DBProvider interface {
	DB() *gorm.DB
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// MediaProvider provides the upload store
type MediaProvider interface {
	Media() *media.Store
}

// AppContext combines all provider interfaces for full application context
// Handlers should depend on specific providers or this combined interface
type AppContext interface {
	DBProvider
	ConfigProvider
	MediaProvider

	MigrateDB(track bool) error
	InitDb()
	DropAll()
	// CleanupMedia removes uploaded files no record references any more
	CleanupMedia() (int, error)
	// RecompressMedia converts stored images that predate the WebP step
	RecompressMedia(ctx context.Context, workers int) (int, error)
}
