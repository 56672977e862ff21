// Package media stores uploaded files below the media root and resolves
// their public URLs. Records keep the relative path only.
package media

import (
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/visionmark/visionmark/internal/imaging"
	"github.com/visionmark/visionmark/pkg/common"
	"go.uber.org/zap"
)

// Upload directories, one per image field
const (
	DirServices       = "services"
	DirBlog           = "blog"
	DirNews           = "news"
	DirProducts       = "products"
	DirProductGallery = "products/gallery"
)

// MaxUploadSize upper bound for a single uploaded image
const MaxUploadSize = 20 << 20

type Store struct {
	root    string
	url     string
	quality int
}

func NewStore(root, url string, quality int) *Store {
	if url == "" {
		url = "/media/"
	}
	return &Store{root: root, url: url, quality: quality}
}

func (s *Store) Root() string { return s.root }

func (s *Store) URLPrefix() string { return s.url }

// URL the public url of a stored relative path, "" for an empty path
func (s *Store) URL(rel string) string {
	if rel == "" {
		return ""
	}
	return strings.TrimRight(s.url, "/") + "/" + strings.TrimLeft(rel, "/")
}

// ReadFileHeader loads a multipart upload into memory.
func ReadFileHeader(fh *multipart.FileHeader) (*imaging.Upload, error) {
	if fh == nil {
		return nil, nil
	}
	if fh.Size > MaxUploadSize {
		return nil, errors.Errorf("upload %s too large: %s", fh.Filename, humanize.Bytes(uint64(fh.Size)))
	}
	f, err := fh.Open()
	if err != nil {
		return nil, errors.Wrap(err, "open upload")
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, MaxUploadSize+1))
	if err != nil {
		return nil, errors.Wrap(err, "read upload")
	}
	return &imaging.Upload{
		Name:        filepath.Base(fh.Filename),
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// SaveImage runs the upload through the image normalization step and writes
// the result under dir. It returns the stored relative path.
func (s *Store) SaveImage(dir string, up *imaging.Upload) (string, error) {
	if up.Empty() {
		return "", nil
	}
	out := imaging.Normalize(up, s.quality)
	rel, err := s.write(dir, out.Name, out.Data)
	if err != nil {
		return "", err
	}
	zap.L().Info("media stored",
		zap.String("path", rel),
		zap.String("original", up.Name),
		zap.String("size", humanize.Bytes(uint64(len(out.Data)))))
	return rel, nil
}

// SaveFileHeader is SaveImage for a multipart upload; a nil header is a no-op.
func (s *Store) SaveFileHeader(dir string, fh *multipart.FileHeader) (string, error) {
	up, err := ReadFileHeader(fh)
	if err != nil || up == nil {
		return "", err
	}
	return s.SaveImage(dir, up)
}

func (s *Store) write(dir, name string, data []byte) (string, error) {
	name = cleanName(name)
	if err := os.MkdirAll(filepath.Join(s.root, filepath.FromSlash(dir)), 0o755); err != nil {
		return "", errors.Wrap(err, "create media dir")
	}
	rel := path.Join(dir, name)
	if common.FileExists(s.abs(rel)) {
		ext := path.Ext(name)
		suffix := strconv.FormatInt(common.UUIDint64(), 36)
		rel = path.Join(dir, strings.TrimSuffix(name, ext)+"_"+suffix+ext)
	}
	if err := os.WriteFile(s.abs(rel), data, 0o644); err != nil {
		return "", errors.Wrapf(err, "write %s", rel)
	}
	return rel, nil
}

func (s *Store) abs(rel string) string {
	return filepath.Join(s.root, filepath.FromSlash(path.Clean("/"+rel)))
}

// Delete removes a stored file; missing files are ignored.
func (s *Store) Delete(rel string) error {
	if rel == "" {
		return nil
	}
	if err := os.Remove(s.abs(rel)); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "delete %s", rel)
	}
	return nil
}

// Read returns the stored bytes of rel.
func (s *Store) Read(rel string) ([]byte, error) {
	data, err := os.ReadFile(s.abs(rel))
	return data, errors.Wrapf(err, "read %s", rel)
}

// Orphans lists stored files whose relative path is not in referenced and
// that were last modified before the given time (zero means any time).
func (s *Store) Orphans(referenced map[string]struct{}, before time.Time) ([]string, error) {
	var orphans []string
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if _, ok := referenced[rel]; ok {
			return nil
		}
		if !before.IsZero() {
			info, err := d.Info()
			if err != nil || !info.ModTime().Before(before) {
				return nil
			}
		}
		orphans = append(orphans, rel)
		return nil
	})
	return orphans, errors.Wrap(err, "walk media root")
}

// cleanName keeps the base name and replaces characters unsafe in urls.
func cleanName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == ' ':
			b.WriteByte('_')
		case r == '.' || r == '-' || r == '_' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		}
	}
	out := strings.TrimLeft(b.String(), ".")
	if out == "" {
		out = "image"
	}
	return out
}

// Usage counts stored files and their total size.
func (s *Store) Usage() (files int, size int64, err error) {
	err = filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		files++
		size += info.Size()
		return nil
	})
	return files, size, errors.Wrap(err, "walk media root")
}
