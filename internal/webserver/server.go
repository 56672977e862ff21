package webserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/visionmark/visionmark/internal/app"
	"go.uber.org/zap"
)

const (
	// AppContextKey echo context key holding the app.AppContext
	AppContextKey = "appCtx"
	// UserContextKey echo context key holding the admin *jwt.Token
	UserContextKey = "user"
	// AdminAPIPrefix root of the back-office JSON API
	AdminAPIPrefix = "/admin/api"
)

var server *WebServer

type WebServer struct {
	appCtx    app.AppContext
	root      *echo.Echo
	api       *echo.Group
	jwtConfig echojwt.Config
	notFound  echo.HandlerFunc
}

// Init creates the process-wide server; routes are registered afterwards
// through Root and the Api* helpers.
func Init(appCtx app.AppContext) {
	server = NewWebServer(appCtx)
}

func NewWebServer(appCtx app.AppContext) *WebServer {
	cfg := appCtx.Config()
	s := &WebServer{appCtx: appCtx}
	s.root = echo.New()
	s.root.HideBanner = true
	s.root.HidePort = true
	s.root.Debug = cfg.System.Debug
	s.root.JSONSerializer = new(JSONSerializer)
	s.root.Validator = NewValidator()
	s.root.HTTPErrorHandler = s.httpErrorHandler

	s.root.Pre(middleware.RemoveTrailingSlash())
	s.root.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	s.root.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			zap.L().Error("panic recovered", zap.Error(err), zap.ByteString("stack", stack))
			return err
		},
	}))
	s.root.Use(requestLogger())
	s.root.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Path(), "/metrics") || strings.HasPrefix(c.Request().URL.Path, "/media/")
		},
	}))
	s.root.Use(s.appContextMiddleware)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	s.root.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "visionmark",
		Registerer: registry,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))
	s.root.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: registry}))

	s.root.Static(strings.TrimRight(appCtx.Media().URLPrefix(), "/"), appCtx.Media().Root())

	s.jwtConfig = echojwt.Config{
		SigningKey: []byte(cfg.Web.Secret),
		ContextKey: UserContextKey,
		Skipper: func(c echo.Context) bool {
			return c.Path() == AdminAPIPrefix+"/login"
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusUnauthorized, map[string]interface{}{
				"code":    "UNAUTHORIZED",
				"message": "Authentication required",
				"details": err.Error(),
			})
		},
	}
	s.api = s.root.Group(AdminAPIPrefix, echojwt.WithConfig(s.jwtConfig))
	return s
}

func (s *WebServer) appContextMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Set(AppContextKey, s.appCtx)
		return next(c)
	}
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
				zap.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				zap.L().Warn("request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			zap.L().Debug("request", fields...)
			return nil
		},
	})
}

// Root the underlying echo instance
func Root() *echo.Echo {
	return server.root
}

func (s *WebServer) Root() *echo.Echo {
	return s.root
}

// SetRenderer installs the html renderer for site pages.
func SetRenderer(r echo.Renderer) {
	server.root.Renderer = r
}

// SetNotFoundHandler installs the handler rendering the html 404 page.
func SetNotFoundHandler(h echo.HandlerFunc) {
	server.notFound = h
}

// Static serves files from dir under prefix.
func Static(prefix, dir string) {
	server.root.Static(prefix, dir)
}

func ApiGET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.GET(path, h, m...)
}

func ApiPOST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.POST(path, h, m...)
}

func ApiPUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.PUT(path, h, m...)
}

func ApiDELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.DELETE(path, h, m...)
}

// IssueToken signs an admin api token for the given operator.
func IssueToken(secret string, id int64, username, level string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":      fmt.Sprintf("%d", id),
		"username": username,
		"level":    level,
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// CurrentUsername reads the operator name from the verified admin token.
func CurrentUsername(c echo.Context) string {
	token, ok := c.Get(UserContextKey).(*jwt.Token)
	if !ok {
		return ""
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}
	name, _ := claims["username"].(string)
	return name
}

func Listen() error {
	return server.Start()
}

func (s *WebServer) Start() error {
	cfg := s.appCtx.Config()
	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
	zap.S().Infof("Visionmark web server listening on %s", addr)
	err := s.root.Start(addr)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		zap.S().Errorf("web server error: %s", err.Error())
		return err
	}
	return nil
}

func Shutdown(ctx context.Context) error {
	if server == nil {
		return nil
	}
	return server.root.Shutdown(ctx)
}

// GetAppContext returns the application injected by the app context middleware.
func GetAppContext(c echo.Context) app.AppContext {
	return c.Get(AppContextKey).(app.AppContext)
}
