package adminapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/visionmark/visionmark/internal/domain"
	"github.com/visionmark/visionmark/internal/site"
	"github.com/visionmark/visionmark/internal/webserver"
)

type testimonialPayload struct {
	Name           string  `json:"name" form:"name" validate:"required,max=255"`
	Rating         float64 `json:"rating" form:"rating" validate:"gte=0,lte=5"`
	Comment        string  `json:"comment" form:"comment" validate:"required"`
	Date           string  `json:"date" form:"date"`
	IsGoogleReview bool    `json:"is_google_review" form:"is_google_review"`
	IsPublished    bool    `json:"is_published" form:"is_published"`
	SortOrder      int     `json:"sort_order" form:"sort_order" validate:"gte=0"`
}

type testimonialRow struct {
	domain.Testimonial
	Stars []string `json:"stars"`
}

func registerTestimonialRoutes() {
	webserver.ApiGET("/testimonials", listTestimonials)
	webserver.ApiGET("/testimonials/:id", getTestimonial)
	webserver.ApiPOST("/testimonials", createTestimonial)
	webserver.ApiPUT("/testimonials/:id", updateTestimonial)
	webserver.ApiDELETE("/testimonials/:id", deleteTestimonial)
}

func toTestimonialRow(t domain.Testimonial) testimonialRow {
	return testimonialRow{Testimonial: t, Stars: site.StarRating(t.Rating)}
}

func listTestimonials(c echo.Context) error {
	page, pageSize := parsePagination(c)
	db := searchLike(GetDB(c).Model(&domain.Testimonial{}), c.QueryParam("q"), "name", "comment")
	db = boolFilter(c, db, "is_published", "is_published")
	db = boolFilter(c, db, "is_google_review", "is_google_review")

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query testimonials", err.Error())
	}

	order := parseSort(c, map[string]string{
		"name":       "name",
		"rating":     "rating",
		"date":       "date",
		"sort_order": "sort_order",
		"created_at": "created_at",
	}, "sort_order, date DESC, created_at DESC")
	var items []domain.Testimonial
	if err := db.Order(order).Offset((page - 1) * pageSize).Limit(pageSize).Find(&items).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query testimonials", err.Error())
	}

	rows := make([]testimonialRow, len(items))
	for i, t := range items {
		rows[i] = toTestimonialRow(t)
	}
	return paged(c, rows, total, page, pageSize)
}

func findTestimonial(c echo.Context) (*domain.Testimonial, error) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return nil, fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid testimonial ID", nil)
	}
	var t domain.Testimonial
	if err := GetDB(c).Where("id = ?", id).First(&t).Error; isNotFound(err) {
		return nil, fail(c, http.StatusNotFound, "TESTIMONIAL_NOT_FOUND", "Testimonial not found", nil)
	} else if err != nil {
		return nil, fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query testimonial", err.Error())
	}
	return &t, nil
}

func getTestimonial(c echo.Context) error {
	t, err := findTestimonial(c)
	if t == nil {
		return err
	}
	return ok(c, toTestimonialRow(*t))
}

func applyTestimonialPayload(c echo.Context, payload *testimonialPayload, t *domain.Testimonial) (bool, error) {
	if err := c.Validate(payload); err != nil {
		return false, handleValidationError(c, err)
	}
	date, err := parseOptionalTime(payload.Date)
	if err != nil {
		return false, fieldError(c, "date", "datetime")
	}
	t.Name = strings.TrimSpace(payload.Name)
	t.Rating = payload.Rating
	t.Comment = payload.Comment
	t.Date = date
	t.IsGoogleReview = payload.IsGoogleReview
	t.IsPublished = payload.IsPublished
	t.SortOrder = payload.SortOrder
	return true, nil
}

func createTestimonial(c echo.Context) error {
	payload := testimonialPayload{Rating: 5.0, IsPublished: true}
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse testimonial parameters", err.Error())
	}
	var t domain.Testimonial
	if valid, err := applyTestimonialPayload(c, &payload, &t); !valid {
		return err
	}
	if err := GetDB(c).Create(&t).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create testimonial", err.Error())
	}
	logOperation(c, "create_testimonial", "created testimonial "+t.String())
	return created(c, toTestimonialRow(t))
}

func updateTestimonial(c echo.Context) error {
	t, err := findTestimonial(c)
	if t == nil {
		return err
	}
	payload := testimonialPayload{
		Name:           t.Name,
		Rating:         t.Rating,
		Comment:        t.Comment,
		Date:           formatOptionalTime(t.Date),
		IsGoogleReview: t.IsGoogleReview,
		IsPublished:    t.IsPublished,
		SortOrder:      t.SortOrder,
	}
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse testimonial parameters", err.Error())
	}
	if valid, err := applyTestimonialPayload(c, &payload, t); !valid {
		return err
	}
	t.UpdatedAt = time.Now()
	if err := GetDB(c).Save(t).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update testimonial", err.Error())
	}
	logOperation(c, "update_testimonial", "updated testimonial "+t.String())
	return ok(c, toTestimonialRow(*t))
}

func deleteTestimonial(c echo.Context) error {
	t, err := findTestimonial(c)
	if t == nil {
		return err
	}
	if err := GetDB(c).Delete(&domain.Testimonial{}, t.ID).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DELETE_FAILED", "Failed to delete testimonial", err.Error())
	}
	logOperation(c, "delete_testimonial", "deleted testimonial "+t.String())
	return ok(c, map[string]interface{}{"id": t.ID})
}
