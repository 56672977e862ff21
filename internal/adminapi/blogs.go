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

type blogPayload struct {
	Title       string `json:"title" form:"title" validate:"required,max=255"`
	Slug        string `json:"slug" form:"slug" validate:"omitempty,max=255"`
	Content     string `json:"content" form:"content" validate:"required"`
	Excerpt     string `json:"excerpt" form:"excerpt" validate:"omitempty,max=500"`
	Author      string `json:"author" form:"author" validate:"omitempty,max=100"`
	IsPublished bool   `json:"is_published" form:"is_published"`
	PublishedAt string `json:"published_at" form:"published_at"`
}

type blogRow struct {
	domain.Blog
	ImagePreview string `json:"featured_image_preview"`
}

func registerBlogRoutes() {
	webserver.ApiGET("/blogs", listBlogs)
	webserver.ApiGET("/blogs/:id", getBlog)
	webserver.ApiPOST("/blogs", createBlog)
	webserver.ApiPUT("/blogs/:id", updateBlog)
	webserver.ApiDELETE("/blogs/:id", deleteBlog)
}

func toBlogRow(c echo.Context, b domain.Blog) blogRow {
	return blogRow{Blog: b, ImagePreview: imagePreview(c, b.FeaturedImage)}
}

func listBlogs(c echo.Context) error {
	page, pageSize := parsePagination(c)
	db := searchLike(GetDB(c).Model(&domain.Blog{}), c.QueryParam("q"), "title", "content", "author")
	db = boolFilter(c, db, "is_published", "is_published")

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query blogs", err.Error())
	}

	order := parseSort(c, map[string]string{
		"title":        "title",
		"author":       "author",
		"published_at": "published_at",
		"created_at":   "created_at",
		"updated_at":   "updated_at",
	}, "created_at DESC")
	var blogs []domain.Blog
	if err := db.Order(order).Offset((page - 1) * pageSize).Limit(pageSize).Find(&blogs).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query blogs", err.Error())
	}

	rows := make([]blogRow, len(blogs))
	for i, b := range blogs {
		rows[i] = toBlogRow(c, b)
	}
	return paged(c, rows, total, page, pageSize)
}

func findBlog(c echo.Context) (*domain.Blog, error) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return nil, fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid blog ID", nil)
	}
	var b domain.Blog
	if err := GetDB(c).Where("id = ?", id).First(&b).Error; isNotFound(err) {
		return nil, fail(c, http.StatusNotFound, "BLOG_NOT_FOUND", "Blog post not found", nil)
	} else if err != nil {
		return nil, fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query blog post", err.Error())
	}
	return &b, nil
}

func getBlog(c echo.Context) error {
	b, err := findBlog(c)
	if b == nil {
		return err
	}
	return ok(c, toBlogRow(c, *b))
}

// applyBlogPayload validates the payload and copies it onto b. A non-nil
// return means a response was already written.
func applyBlogPayload(c echo.Context, payload *blogPayload, b *domain.Blog) (bool, error) {
	if err := c.Validate(payload); err != nil {
		return false, handleValidationError(c, err)
	}
	publishedAt, err := parseOptionalTime(payload.PublishedAt)
	if err != nil {
		return false, fieldError(c, "published_at", err.Error())
	}
	slug := resolveSlug(payload.Slug, payload.Title)
	if slug == "" {
		return false, fieldError(c, "slug", "required")
	}
	taken, err := slugTaken(c, &domain.Blog{}, slug, b.ID)
	if err != nil {
		return false, fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to check slug", err.Error())
	}
	if taken {
		return false, fail(c, http.StatusConflict, "SLUG_EXISTS", "Blog slug already exists", nil)
	}

	b.Title = strings.TrimSpace(payload.Title)
	b.Slug = slug
	b.Content = payload.Content
	b.Excerpt = payload.Excerpt
	b.Author = strings.TrimSpace(payload.Author)
	b.IsPublished = payload.IsPublished
	b.PublishedAt = publishedAt
	return true, nil
}

func createBlog(c echo.Context) error {
	var payload blogPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse blog parameters", err.Error())
	}
	var b domain.Blog
	if valid, err := applyBlogPayload(c, &payload, &b); !valid {
		return err
	}

	image, err := saveUpload(c, "featured_image", media.DirBlog)
	if err != nil {
		return uploadFailed(c, "featured_image", err)
	}
	b.FeaturedImage = image
	if err := GetDB(c).Create(&b).Error; err != nil {
		discardUpload(c, image)
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create blog post", err.Error())
	}
	logOperation(c, "create_blog", "created blog post "+b.Slug)
	return created(c, toBlogRow(c, b))
}

func updateBlog(c echo.Context) error {
	b, err := findBlog(c)
	if b == nil {
		return err
	}
	payload := blogPayload{
		Title:       b.Title,
		Slug:        b.Slug,
		Content:     b.Content,
		Excerpt:     b.Excerpt,
		Author:      b.Author,
		IsPublished: b.IsPublished,
		PublishedAt: formatOptionalTime(b.PublishedAt),
	}
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse blog parameters", err.Error())
	}
	if valid, err := applyBlogPayload(c, &payload, b); !valid {
		return err
	}

	image, replaced, err := replaceUpload(c, "featured_image", media.DirBlog)
	if err != nil {
		return uploadFailed(c, "featured_image", err)
	}
	oldImage := b.FeaturedImage
	if replaced {
		b.FeaturedImage = image
	}
	b.UpdatedAt = time.Now()
	if err := GetDB(c).Save(b).Error; err != nil {
		discardUpload(c, image)
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update blog post", err.Error())
	}
	if replaced {
		discardUpload(c, oldImage)
	}
	logOperation(c, "update_blog", "updated blog post "+b.Slug)
	return ok(c, toBlogRow(c, *b))
}

func deleteBlog(c echo.Context) error {
	b, err := findBlog(c)
	if b == nil {
		return err
	}
	if err := GetDB(c).Delete(b).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DELETE_FAILED", "Failed to delete blog post", err.Error())
	}
	discardUpload(c, b.FeaturedImage)
	logOperation(c, "delete_blog", "deleted blog post "+b.Slug)
	return ok(c, map[string]interface{}{"id": b.ID})
}
