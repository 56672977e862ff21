package adminapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/visionmark/visionmark/internal/domain"
	"github.com/visionmark/visionmark/internal/webserver"
	"github.com/visionmark/visionmark/pkg/common"
	"go.uber.org/zap"
)

type loginPayload struct {
	Username string `json:"username" form:"username" validate:"required,max=100"`
	Password string `json:"password" form:"password" validate:"required"`
}

type loginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Username  string    `json:"username"`
	Level     string    `json:"level"`
}

// login exchanges operator credentials for a bearer token.
func login(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse login parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	var opr domain.SysOpr
	err := GetDB(c).Where("username = ?", strings.TrimSpace(payload.Username)).First(&opr).Error
	if err != nil && !isNotFound(err) {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query operator", err.Error())
	}
	if err != nil || !common.CheckPassword(opr.Password, payload.Password) {
		zap.L().Warn("admin login rejected", zap.String("username", payload.Username), zap.String("ip", c.RealIP()))
		return fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password", nil)
	}
	if opr.Status != common.ENABLED {
		return fail(c, http.StatusForbidden, "OPERATOR_DISABLED", "Operator account is disabled", nil)
	}

	cfg := GetAppContext(c).Config()
	ttl := time.Duration(cfg.Admin.TokenTTL) * time.Hour
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	token, err := webserver.IssueToken(cfg.Web.Secret, opr.ID, opr.Username, opr.Level, ttl)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "TOKEN_ERROR", "Failed to issue token", err.Error())
	}

	GetDB(c).Model(&opr).Update("last_login", time.Now())
	entry := domain.SysOprLog{
		OprName:   opr.Username,
		OprIp:     c.RealIP(),
		OptAction: "login",
		OptDesc:   "operator logged in",
		OptTime:   time.Now(),
	}
	GetDB(c).Create(&entry)

	return ok(c, loginResult{
		Token:     token,
		ExpiresAt: time.Now().Add(ttl),
		Username:  opr.Username,
		Level:     opr.Level,
	})
}
