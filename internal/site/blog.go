package site

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/visionmark/visionmark/internal/domain"
	"github.com/visionmark/visionmark/pkg/paginator"
	"gorm.io/gorm"
)

func BlogList(c echo.Context) error {
	db := getDB(c).Model(&domain.Blog{}).Where("is_published = ?", true)
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return err
	}
	page := paginator.New(total, BlogPageSize).GetPage(c.QueryParam("page"))

	var posts []domain.Blog
	err := db.Order("published_at DESC").
		Offset(page.Offset()).Limit(page.Limit()).
		Find(&posts).Error
	if err != nil {
		return err
	}
	return render(c, http.StatusOK, "blog", echo.Map{
		"posts":    posts,
		"page_obj": page,
	})
}

// BlogDetail shows a published post and the latest other posts.
func BlogDetail(c echo.Context) error {
	var post domain.Blog
	err := getDB(c).Where("slug = ? AND is_published = ?", c.Param("slug"), true).First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.ErrNotFound
	} else if err != nil {
		return err
	}

	var popular []domain.Blog
	err = getDB(c).Where("is_published = ? AND id <> ?", true, post.ID).
		Order("created_at DESC").
		Limit(PopularPosts).Find(&popular).Error
	if err != nil {
		return err
	}
	return render(c, http.StatusOK, "blog-single", echo.Map{
		"post":          post,
		"popular_posts": popular,
	})
}
