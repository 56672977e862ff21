// Package imaging converts uploaded images to compressed WebP before they
// are persisted.
package imaging

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/chai2010/webp"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

const (
	DefaultQuality = 80
	Extension      = ".webp"
	ContentType    = "image/webp"
)

// MaxPixels largest width*height decoded; bigger uploads are kept as-is
var MaxPixels = 2 * 89478485

// Upload an in-memory uploaded file
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

func (u *Upload) Empty() bool {
	return u == nil || u.Name == "" || len(u.Data) == 0
}

// Compress re-encodes the upload as WebP at the given quality.
// It returns nil when there is nothing to do (empty upload, already WebP)
// and when decoding or encoding fails; failures are logged and the caller
// keeps the original upload.
func Compress(up *Upload, quality int) *Upload {
	if up.Empty() {
		return nil
	}
	if strings.HasSuffix(strings.ToLower(up.Name), Extension) {
		return nil
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(up.Data))
	if err != nil {
		zap.L().Warn("error compressing image", zap.String("name", up.Name), zap.Error(err))
		return nil
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(MaxPixels) {
		zap.L().Warn("image too large to compress",
			zap.String("name", up.Name), zap.Int("width", cfg.Width), zap.Int("height", cfg.Height))
		return nil
	}

	img, format, err := image.Decode(bytes.NewReader(up.Data))
	if err != nil {
		zap.L().Warn("error compressing image", zap.String("name", up.Name), zap.Error(err))
		return nil
	}

	var buf bytes.Buffer
	if err = webp.Encode(&buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		zap.L().Warn("error compressing image",
			zap.String("name", up.Name), zap.String("format", format), zap.Error(err))
		return nil
	}

	// everything after the first dot is dropped: my.photo.v2.jpg -> my.webp
	name := strings.Split(up.Name, ".")[0] + Extension
	return &Upload{
		Name:        name,
		ContentType: ContentType,
		Data:        buf.Bytes(),
	}
}

// Normalize is the pre-persist hook every image field goes through: the
// compressed replacement when there is one, the original otherwise.
func Normalize(up *Upload, quality int) *Upload {
	if compressed := Compress(up, quality); compressed != nil {
		return compressed
	}
	return up
}
