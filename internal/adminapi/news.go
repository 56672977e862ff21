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

type newsPayload struct {
	Title       string `json:"title" form:"title" validate:"required,max=255"`
	Slug        string `json:"slug" form:"slug" validate:"omitempty,max=255"`
	Subtitle    string `json:"subtitle" form:"subtitle" validate:"omitempty,max=255"`
	NewsType    string `json:"news_type" form:"news_type"`
	Location    string `json:"location" form:"location" validate:"omitempty,max=255"`
	Content     string `json:"content" form:"content" validate:"required"`
	IsPublished bool   `json:"is_published" form:"is_published"`
	PublishedAt string `json:"published_at" form:"published_at"`
}

type newsRow struct {
	domain.News
	NewsTypeLabel string `json:"news_type_label"`
	ImagePreview  string `json:"featured_image_preview"`
}

func registerNewsRoutes() {
	webserver.ApiGET("/news", listNews)
	webserver.ApiGET("/news/types", listNewsTypes)
	webserver.ApiGET("/news/:id", getNews)
	webserver.ApiPOST("/news", createNews)
	webserver.ApiPUT("/news/:id", updateNews)
	webserver.ApiDELETE("/news/:id", deleteNews)
}

func toNewsRow(c echo.Context, n domain.News) newsRow {
	return newsRow{News: n, NewsTypeLabel: n.NewsType.Label(), ImagePreview: imagePreview(c, n.FeaturedImage)}
}

func listNewsTypes(c echo.Context) error {
	return ok(c, domain.NewsTypeChoices)
}

func listNews(c echo.Context) error {
	page, pageSize := parsePagination(c)
	db := searchLike(GetDB(c).Model(&domain.News{}), c.QueryParam("q"), "title", "subtitle", "content", "location")
	db = boolFilter(c, db, "is_published", "is_published")
	if t := strings.TrimSpace(c.QueryParam("news_type")); t != "" {
		db = db.Where("news_type = ?", t)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query news", err.Error())
	}

	order := parseSort(c, map[string]string{
		"title":        "title",
		"news_type":    "news_type",
		"location":     "location",
		"published_at": "published_at",
		"created_at":   "created_at",
	}, "published_at DESC, created_at DESC")
	var items []domain.News
	if err := db.Order(order).Offset((page - 1) * pageSize).Limit(pageSize).Find(&items).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query news", err.Error())
	}

	rows := make([]newsRow, len(items))
	for i, n := range items {
		rows[i] = toNewsRow(c, n)
	}
	return paged(c, rows, total, page, pageSize)
}

func findNews(c echo.Context) (*domain.News, error) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return nil, fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid news ID", nil)
	}
	var n domain.News
	if err := GetDB(c).Where("id = ?", id).First(&n).Error; isNotFound(err) {
		return nil, fail(c, http.StatusNotFound, "NEWS_NOT_FOUND", "News item not found", nil)
	} else if err != nil {
		return nil, fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query news item", err.Error())
	}
	return &n, nil
}

func getNews(c echo.Context) error {
	n, err := findNews(c)
	if n == nil {
		return err
	}
	return ok(c, toNewsRow(c, *n))
}

func applyNewsPayload(c echo.Context, payload *newsPayload, n *domain.News) (bool, error) {
	if err := c.Validate(payload); err != nil {
		return false, handleValidationError(c, err)
	}
	newsType := domain.NewsType(strings.TrimSpace(payload.NewsType))
	if newsType == "" {
		newsType = domain.NewsAnnouncement
	}
	if !newsType.Valid() {
		return false, fieldError(c, "news_type", "oneof")
	}
	publishedAt, err := parseOptionalTime(payload.PublishedAt)
	if err != nil {
		return false, fieldError(c, "published_at", err.Error())
	}
	slug := resolveSlug(payload.Slug, payload.Title)
	if slug == "" {
		return false, fieldError(c, "slug", "required")
	}
	taken, err := slugTaken(c, &domain.News{}, slug, n.ID)
	if err != nil {
		return false, fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to check slug", err.Error())
	}
	if taken {
		return false, fail(c, http.StatusConflict, "SLUG_EXISTS", "News slug already exists", nil)
	}

	n.Title = strings.TrimSpace(payload.Title)
	n.Slug = slug
	n.Subtitle = strings.TrimSpace(payload.Subtitle)
	n.NewsType = newsType
	n.Location = strings.TrimSpace(payload.Location)
	n.Content = payload.Content
	n.IsPublished = payload.IsPublished
	n.PublishedAt = publishedAt
	return true, nil
}

func createNews(c echo.Context) error {
	payload := newsPayload{
		NewsType:    string(domain.NewsAnnouncement),
		IsPublished: true,
	}
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse news parameters", err.Error())
	}
	var n domain.News
	if valid, err := applyNewsPayload(c, &payload, &n); !valid {
		return err
	}

	image, err := saveUpload(c, "featured_image", media.DirNews)
	if err != nil {
		return uploadFailed(c, "featured_image", err)
	}
	n.FeaturedImage = image
	if err := GetDB(c).Create(&n).Error; err != nil {
		discardUpload(c, image)
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create news item", err.Error())
	}
	logOperation(c, "create_news", "created news "+n.Slug)
	return created(c, toNewsRow(c, n))
}

func updateNews(c echo.Context) error {
	n, err := findNews(c)
	if n == nil {
		return err
	}
	payload := newsPayload{
		Title:       n.Title,
		Slug:        n.Slug,
		Subtitle:    n.Subtitle,
		NewsType:    string(n.NewsType),
		Location:    n.Location,
		Content:     n.Content,
		IsPublished: n.IsPublished,
		PublishedAt: formatOptionalTime(n.PublishedAt),
	}
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse news parameters", err.Error())
	}
	if valid, err := applyNewsPayload(c, &payload, n); !valid {
		return err
	}

	image, replaced, err := replaceUpload(c, "featured_image", media.DirNews)
	if err != nil {
		return uploadFailed(c, "featured_image", err)
	}
	oldImage := n.FeaturedImage
	if replaced {
		n.FeaturedImage = image
	}
	n.UpdatedAt = time.Now()
	if err := GetDB(c).Save(n).Error; err != nil {
		discardUpload(c, image)
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update news item", err.Error())
	}
	if replaced {
		discardUpload(c, oldImage)
	}
	logOperation(c, "update_news", "updated news "+n.Slug)
	return ok(c, toNewsRow(c, *n))
}

func deleteNews(c echo.Context) error {
	n, err := findNews(c)
	if n == nil {
		return err
	}
	if err := GetDB(c).Delete(n).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DELETE_FAILED", "Failed to delete news item", err.Error())
	}
	discardUpload(c, n.FeaturedImage)
	logOperation(c, "delete_news", "deleted news "+n.Slug)
	return ok(c, map[string]interface{}{"id": n.ID})
}
