package app_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/visionmark/visionmark/internal/app/apptest"
	"github.com/visionmark/visionmark/internal/domain"
	"github.com/visionmark/visionmark/internal/imaging"
	"github.com/visionmark/visionmark/internal/media"
	"github.com/visionmark/visionmark/pkg/common"
)

func writeRaw(t *testing.T, root, rel string, data []byte, age time.Duration) {
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, data, 0o644))
	old := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(p, old, old))
}

func pngData(t *testing.T) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(0, 0, color.RGBA{G: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestSuperOperatorSeeded(t *testing.T) {
	a := apptest.New(t)

	var opr domain.SysOpr
	require.NoError(t, a.DB().Where("username = ?", "admin").First(&opr).Error)
	assert.Equal(t, "super", opr.Level)
	assert.True(t, common.CheckPassword(opr.Password, a.Config().Admin.Password))

	// a disabled operator is repaired on the next check
	require.NoError(t, a.DB().Model(&opr).Update("status", common.DISABLED).Error)
	a.EnsureSuper()
	require.NoError(t, a.DB().First(&opr, opr.ID).Error)
	assert.Equal(t, common.ENABLED, opr.Status)
}

func TestCleanupMedia(t *testing.T) {
	a := apptest.New(t)
	root := a.Media().Root()

	writeRaw(t, root, "services/used.webp", []byte("u"), 2*time.Hour)
	writeRaw(t, root, "services/stale.webp", []byte("s"), 2*time.Hour)
	writeRaw(t, root, "blog/fresh.webp", []byte("f"), 0)
	require.NoError(t, a.DB().Create(&domain.Service{Name: "Eye test", Image: "services/used.webp"}).Error)

	removed, err := a.CleanupMedia()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.FileExists(t, filepath.Join(root, "services", "used.webp"))
	assert.FileExists(t, filepath.Join(root, "blog", "fresh.webp"))
	assert.NoFileExists(t, filepath.Join(root, "services", "stale.webp"))
}

func TestRecompressMedia(t *testing.T) {
	a := apptest.New(t)
	root := a.Media().Root()

	writeRaw(t, root, "products/legacy.png", pngData(t), 0)
	writeRaw(t, root, "products/gallery/legacy.jpg", []byte("corrupt"), 0)
	rel, err := a.Media().SaveImage(media.DirBlog, &imaging.Upload{Name: "done.webp", Data: []byte("RIFF")})
	require.NoError(t, err)

	p := domain.Product{Name: "Aviator", Slug: "aviator", MainImage: "products/legacy.png", IsActive: true}
	require.NoError(t, a.DB().Create(&p).Error)
	img := domain.ProductImage{ProductID: p.ID, Image: "products/gallery/legacy.jpg"}
	require.NoError(t, a.DB().Create(&img).Error)
	require.NoError(t, a.DB().Create(&domain.Blog{Title: "Done", Slug: "done", FeaturedImage: rel}).Error)

	n, err := a.RecompressMedia(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, a.DB().First(&p, p.ID).Error)
	assert.Equal(t, "products/legacy.webp", p.MainImage)
	assert.FileExists(t, filepath.Join(root, "products", "legacy.webp"))
	assert.NoFileExists(t, filepath.Join(root, "products", "legacy.png"))

	// undecodable images are left untouched
	require.NoError(t, a.DB().First(&img, img.ID).Error)
	assert.True(t, strings.HasSuffix(img.Image, ".jpg"))
}
