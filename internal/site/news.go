package site

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/visionmark/visionmark/internal/domain"
	"github.com/visionmark/visionmark/pkg/paginator"
	"gorm.io/gorm"
)

func NewsList(c echo.Context) error {
	db := getDB(c).Model(&domain.News{}).Where("is_published = ?", true)
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return err
	}
	page := paginator.New(total, NewsPageSize).GetPage(c.QueryParam("page"))

	var items []domain.News
	err := db.Order("published_at DESC").Order("created_at DESC").
		Offset(page.Offset()).Limit(page.Limit()).
		Find(&items).Error
	if err != nil {
		return err
	}
	return render(c, http.StatusOK, "news_list", echo.Map{
		"news_items": items,
		"page_obj":   page,
	})
}

// NewsDetail shows a published news item and the most recent others.
func NewsDetail(c echo.Context) error {
	var item domain.News
	err := getDB(c).Where("slug = ? AND is_published = ?", c.Param("slug"), true).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.ErrNotFound
	} else if err != nil {
		return err
	}

	var recent []domain.News
	err = getDB(c).Where("is_published = ? AND id <> ?", true, item.ID).
		Order("published_at DESC").
		Limit(RecentNews).Find(&recent).Error
	if err != nil {
		return err
	}
	return render(c, http.StatusOK, "news_detail", echo.Map{
		"news":        item,
		"recent_news": recent,
	})
}
