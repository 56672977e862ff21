package adminapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func isMultipart(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm)
}

// saveUpload stores the multipart file of field under dir through the
// image normalization step. It returns "" when the request carries no file.
func saveUpload(c echo.Context, field, dir string) (string, error) {
	if !isMultipart(c) {
		return "", nil
	}
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return GetAppContext(c).Media().SaveFileHeader(dir, fh)
}

// replaceUpload stores a new upload for field and returns the new path and
// whether it changed. The caller removes the old file once the row is saved.
func replaceUpload(c echo.Context, field, dir string) (string, bool, error) {
	rel, err := saveUpload(c, field, dir)
	if err != nil || rel == "" {
		return "", false, err
	}
	return rel, true, nil
}

func uploadFailed(c echo.Context, field string, err error) error {
	zap.L().Warn("store upload", zap.String("field", field), zap.Error(err))
	return fail(c, http.StatusBadRequest, "UPLOAD_FAILED", "Unable to store "+field, err.Error())
}

// discardUpload removes a file stored for a write that did not commit.
func discardUpload(c echo.Context, rel string) {
	if rel == "" {
		return
	}
	if err := GetAppContext(c).Media().Delete(rel); err != nil {
		zap.L().Warn("discard upload", zap.String("path", rel), zap.Error(err))
	}
}

func imagePreview(c echo.Context, rel string) string {
	return GetAppContext(c).Media().URL(rel)
}
