package adminapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/visionmark/visionmark/internal/app"
	"github.com/visionmark/visionmark/internal/domain"
	"github.com/visionmark/visionmark/internal/webserver"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Response envelope of successful calls
type Response struct {
	Data interface{} `json:"data"`
	Meta *Meta       `json:"meta,omitempty"`
}

// Meta paging information of list responses
type Meta struct {
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}

// ErrorResponse envelope of failed calls
type ErrorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Response{Data: data})
}

func created(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, Response{Data: data})
}

func paged(c echo.Context, data interface{}, total int64, page, pageSize int) error {
	return c.JSON(http.StatusOK, Response{
		Data: data,
		Meta: &Meta{Total: total, Page: page, PageSize: pageSize},
	})
}

func fail(c echo.Context, status int, code, message string, details interface{}) error {
	return c.JSON(status, ErrorResponse{Code: code, Message: message, Details: details})
}

// handleValidationError reports validator failures per field.
func handleValidationError(c echo.Context, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request parameters", err.Error())
	}
	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		if fe.Param() != "" {
			details[field] = fe.Tag() + "=" + fe.Param()
		} else {
			details[field] = fe.Tag()
		}
	}
	return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", details)
}

func fieldError(c echo.Context, field, message string) error {
	return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", map[string]string{field: message})
}

// GetAppContext the application serving this request
func GetAppContext(c echo.Context) app.AppContext {
	return webserver.GetAppContext(c)
}

func GetDB(c echo.Context) *gorm.DB {
	return GetAppContext(c).DB().WithContext(c.Request().Context())
}

// parsePagination reads page and perPage (pageSize is accepted too).
func parsePagination(c echo.Context) (int, int) {
	page := 1
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}
	pageSize := 20
	raw := c.QueryParam("perPage")
	if raw == "" {
		raw = c.QueryParam("pageSize")
	}
	if ps, err := strconv.Atoi(raw); err == nil && ps > 0 {
		pageSize = ps
	}
	if pageSize > 500 {
		pageSize = 500
	}
	return page, pageSize
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

// parseSort resolves sort/order query params against a whitelist.
func parseSort(c echo.Context, allowed map[string]string, fallback string) string {
	order := strings.ToUpper(strings.TrimSpace(c.QueryParam("order")))
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	col, found := allowed[strings.TrimSpace(c.QueryParam("sort"))]
	if !found || col == "" {
		return fallback
	}
	return col + " " + order
}

// searchLike matches q against the columns, case-insensitively.
func searchLike(db *gorm.DB, q string, columns ...string) *gorm.DB {
	q = strings.TrimSpace(q)
	if q == "" || len(columns) == 0 {
		return db
	}
	conds := make([]string, len(columns))
	args := make([]interface{}, len(columns))
	if strings.EqualFold(db.Name(), "postgres") { //nolint:staticcheck
		for i, col := range columns {
			conds[i] = col + " ILIKE ?"
			args[i] = "%" + q + "%"
		}
	} else {
		for i, col := range columns {
			conds[i] = "LOWER(" + col + ") LIKE ?"
			args[i] = "%" + strings.ToLower(q) + "%"
		}
	}
	return db.Where(strings.Join(conds, " OR "), args...)
}

// boolFilter applies an optional true/false query filter on column.
func boolFilter(c echo.Context, db *gorm.DB, param, column string) *gorm.DB {
	raw := strings.TrimSpace(c.QueryParam(param))
	if raw == "" {
		return db
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return db
	}
	return db.Where(column+" = ?", v)
}

// slugTaken reports whether another row of model already uses slug.
func slugTaken(c echo.Context, model interface{}, slug string, id int64) (bool, error) {
	var n int64
	err := GetDB(c).Model(model).Where("slug = ? AND id <> ?", slug, id).Count(&n).Error
	return n > 0, err
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// logOperation records a back-office write in the operator log.
func logOperation(c echo.Context, action, desc string) {
	entry := domain.SysOprLog{
		OprName:   webserver.CurrentUsername(c),
		OprIp:     c.RealIP(),
		OptAction: action,
		OptDesc:   desc,
		OptTime:   time.Now(),
	}
	if err := GetDB(c).Create(&entry).Error; err != nil {
		zap.L().Warn("write operator log", zap.String("action", action), zap.Error(err))
	}
}
