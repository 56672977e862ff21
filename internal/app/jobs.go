package app

import (
	"context"
	"path"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/visionmark/visionmark/internal/domain"
	"github.com/visionmark/visionmark/internal/imaging"
	"go.uber.org/zap"
)

// uploads younger than this are never treated as orphans; an admin save may
// still be between writing the file and committing the row
const orphanGrace = time.Hour

// imageColumn an image field of a persisted entity
type imageColumn struct {
	table     string
	column    string
	timestamp bool // table has updated_at
}

var imageColumns = []imageColumn{
	{table: domain.Service{}.TableName(), column: "image", timestamp: true},
	{table: domain.Blog{}.TableName(), column: "featured_image", timestamp: true},
	{table: domain.News{}.TableName(), column: "featured_image", timestamp: true},
	{table: domain.Product{}.TableName(), column: "main_image", timestamp: true},
	{table: domain.ProductImage{}.TableName(), column: "image"},
}

type imageRef struct {
	ID   int64
	Path string
}

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	cleanupSched := a.appConfig.Media.CleanupSched
	if cleanupSched == "" {
		cleanupSched = "@daily"
	}
	_, err := a.sched.AddFunc(cleanupSched, func() {
		defer func() {
			if err := recover(); err != nil {
				zap.S().Error(err)
			}
		}()
		if n, err := a.CleanupMedia(); err != nil {
			zap.L().Error("media cleanup failed", zap.Error(err))
		} else if n > 0 {
			zap.L().Info("media cleanup finished", zap.Int("removed", n))
		}
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@daily", func() {
		a.gormDB.
			Where("opt_time < ? ", time.Now().
				Add(-time.Hour*24*365)).Delete(&domain.SysOprLog{})
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	a.sched.Start()
}

func (a *Application) referencedMedia() (map[string]struct{}, error) {
	refs := make(map[string]struct{})
	for _, col := range imageColumns {
		var paths []string
		if err := a.gormDB.Table(col.table).Where(col.column+" <> ''").Pluck(col.column, &paths).Error; err != nil {
			return nil, errors.Wrapf(err, "query %s.%s", col.table, col.column)
		}
		for _, p := range paths {
			refs[p] = struct{}{}
		}
	}
	return refs, nil
}

// CleanupMedia deletes stored uploads that no record points to.
func (a *Application) CleanupMedia() (int, error) {
	refs, err := a.referencedMedia()
	if err != nil {
		return 0, err
	}
	orphans, err := a.media.Orphans(refs, time.Now().Add(-orphanGrace))
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, rel := range orphans {
		if err := a.media.Delete(rel); err != nil {
			zap.L().Warn("failed to delete orphan media", zap.String("path", rel), zap.Error(err))
			continue
		}
		removed++
	}
	return removed, nil
}

// RecompressMedia runs every stored image that is not WebP yet through the
// normalization step, rewriting the owning row on success.
func (a *Application) RecompressMedia(ctx context.Context, workers int) (int, error) {
	if workers <= 0 {
		workers = 4
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return 0, errors.Wrap(err, "create worker pool")
	}
	defer pool.Release()

	var (
		wg        sync.WaitGroup
		converted int64
	)
	for _, col := range imageColumns {
		var refs []imageRef
		err := a.gormDB.WithContext(ctx).Table(col.table).
			Select("id, "+col.column+" AS path").
			Where(col.column+" <> ''").
			Scan(&refs).Error
		if err != nil {
			return int(converted), errors.Wrapf(err, "query %s.%s", col.table, col.column)
		}
		for _, ref := range refs {
			if strings.HasSuffix(strings.ToLower(ref.Path), imaging.Extension) {
				continue
			}
			if ctx.Err() != nil {
				wg.Wait()
				return int(atomic.LoadInt64(&converted)), ctx.Err()
			}
			wg.Add(1)
			err := pool.Submit(func() {
				defer wg.Done()
				if a.recompressOne(ctx, col, ref) {
					atomic.AddInt64(&converted, 1)
				}
			})
			if err != nil {
				wg.Done()
				zap.L().Warn("recompress submit failed", zap.String("path", ref.Path), zap.Error(err))
			}
		}
	}
	wg.Wait()
	return int(atomic.LoadInt64(&converted)), nil
}

func (a *Application) recompressOne(ctx context.Context, col imageColumn, ref imageRef) bool {
	data, err := a.media.Read(ref.Path)
	if err != nil {
		zap.L().Warn("recompress read failed", zap.String("path", ref.Path), zap.Error(err))
		return false
	}
	out := imaging.Compress(&imaging.Upload{Name: path.Base(ref.Path), Data: data}, a.appConfig.Media.Quality)
	if out == nil {
		return false
	}
	rel, err := a.media.SaveImage(path.Dir(ref.Path), out)
	if err != nil {
		zap.L().Warn("recompress write failed", zap.String("path", ref.Path), zap.Error(err))
		return false
	}
	updates := map[string]interface{}{col.column: rel}
	if col.timestamp {
		updates["updated_at"] = time.Now()
	}
	err = a.gormDB.WithContext(ctx).Table(col.table).Where("id = ?", ref.ID).Updates(updates).Error
	if err != nil {
		zap.L().Error("recompress update failed", zap.String("table", col.table), zap.Int64("id", ref.ID), zap.Error(err))
		_ = a.media.Delete(rel)
		return false
	}
	_ = a.media.Delete(ref.Path)
	return true
}
