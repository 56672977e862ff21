package webserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// httpErrorHandler answers admin api errors with the JSON envelope and
// site errors with the html 404 page when one is installed.
func (s *WebServer) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	message := http.StatusText(code)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(code)
		}
	}
	if code >= http.StatusInternalServerError {
		zap.L().Error("request failed", zap.String("uri", c.Request().RequestURI), zap.Error(err))
	}

	if strings.HasPrefix(c.Request().URL.Path, AdminAPIPrefix) {
		resp := map[string]interface{}{
			"code":    strings.ToUpper(strings.ReplaceAll(http.StatusText(code), " ", "_")),
			"message": message,
		}
		if werr := c.JSON(code, resp); werr != nil {
			zap.L().Error("write error response", zap.Error(werr))
		}
		return
	}

	if code == http.StatusNotFound && s.notFound != nil && c.Request().Method != http.MethodHead {
		rerr := s.notFound(c)
		if rerr == nil {
			return
		}
		zap.L().Error("render 404 page", zap.Error(rerr))
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.String(code, message)
}
