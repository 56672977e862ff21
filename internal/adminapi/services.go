package adminapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/visionmark/visionmark/internal/domain"
	"github.com/visionmark/visionmark/internal/media"
	"github.com/visionmark/visionmark/internal/webserver"
)

type servicePayload struct {
	Name               string `json:"name" form:"name" validate:"required,max=255"`
	Description        string `json:"description" form:"description" validate:"required"`
	DetailsTitle       string `json:"details_title" form:"details_title" validate:"omitempty,max=255"`
	DetailsDescription string `json:"details_description" form:"details_description"`
}

type serviceRow struct {
	domain.Service
	ImagePreview string `json:"image_preview"`
}

func registerServiceRoutes() {
	webserver.ApiGET("/services", listServices)
	webserver.ApiGET("/services/:id", getService)
	webserver.ApiPOST("/services", createService)
	webserver.ApiPUT("/services/:id", updateService)
	webserver.ApiDELETE("/services/:id", deleteService)
}

func toServiceRow(c echo.Context, s domain.Service) serviceRow {
	return serviceRow{Service: s, ImagePreview: imagePreview(c, s.Image)}
}

func listServices(c echo.Context) error {
	page, pageSize := parsePagination(c)
	db := searchLike(GetDB(c).Model(&domain.Service{}), c.QueryParam("q"), "name", "description")

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query services", err.Error())
	}

	order := parseSort(c, map[string]string{
		"id":         "id",
		"name":       "name",
		"created_at": "created_at",
		"updated_at": "updated_at",
	}, "id DESC")
	var services []domain.Service
	if err := db.Order(order).Offset((page - 1) * pageSize).Limit(pageSize).Find(&services).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query services", err.Error())
	}

	rows := make([]serviceRow, len(services))
	for i, s := range services {
		rows[i] = toServiceRow(c, s)
	}
	return paged(c, rows, total, page, pageSize)
}

func getService(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid service ID", nil)
	}
	var s domain.Service
	if err := GetDB(c).Where("id = ?", id).First(&s).Error; isNotFound(err) {
		return fail(c, http.StatusNotFound, "SERVICE_NOT_FOUND", "Service not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query service", err.Error())
	}
	return ok(c, toServiceRow(c, s))
}

func createService(c echo.Context) error {
	var payload servicePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse service parameters", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	image, err := saveUpload(c, "image", media.DirServices)
	if err != nil {
		return uploadFailed(c, "image", err)
	}
	if image == "" {
		return fieldError(c, "image", "required")
	}

	s := domain.Service{
		Name:               strings.TrimSpace(payload.Name),
		Description:        payload.Description,
		Image:              image,
		DetailsTitle:       strings.TrimSpace(payload.DetailsTitle),
		DetailsDescription: payload.DetailsDescription,
	}
	if err := GetDB(c).Create(&s).Error; err != nil {
		discardUpload(c, image)
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create service", err.Error())
	}
	logOperation(c, "create_service", "created service "+s.Name)
	return created(c, toServiceRow(c, s))
}

func updateService(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid service ID", nil)
	}
	var s domain.Service
	if err := GetDB(c).Where("id = ?", id).First(&s).Error; isNotFound(err) {
		return fail(c, http.StatusNotFound, "SERVICE_NOT_FOUND", "Service not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query service", err.Error())
	}

	payload := servicePayload{
		Name:               s.Name,
		Description:        s.Description,
		DetailsTitle:       s.DetailsTitle,
		DetailsDescription: s.DetailsDescription,
	}
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse service parameters", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	image, replaced, err := replaceUpload(c, "image", media.DirServices)
	if err != nil {
		return uploadFailed(c, "image", err)
	}
	oldImage := s.Image
	s.Name = strings.TrimSpace(payload.Name)
	s.Description = payload.Description
	s.DetailsTitle = strings.TrimSpace(payload.DetailsTitle)
	s.DetailsDescription = payload.DetailsDescription
	if replaced {
		s.Image = image
	}
	s.UpdatedAt = time.Now()

	if err := GetDB(c).Save(&s).Error; err != nil {
		discardUpload(c, image)
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update service", err.Error())
	}
	if replaced {
		discardUpload(c, oldImage)
	}
	logOperation(c, "update_service", "updated service "+s.Name)
	return ok(c, toServiceRow(c, s))
}

func deleteService(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid service ID", nil)
	}
	var s domain.Service
	if err := GetDB(c).Where("id = ?", id).First(&s).Error; isNotFound(err) {
		return fail(c, http.StatusNotFound, "SERVICE_NOT_FOUND", "Service not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query service", err.Error())
	}
	if err := GetDB(c).Delete(&s).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DELETE_FAILED", "Failed to delete service", err.Error())
	}
	discardUpload(c, s.Image)
	logOperation(c, "delete_service", "deleted service "+s.Name)
	return ok(c, map[string]interface{}{"id": id})
}
