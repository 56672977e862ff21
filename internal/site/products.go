package site

import (
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/visionmark/visionmark/internal/domain"
	"github.com/visionmark/visionmark/pkg/paginator"
	"gorm.io/gorm"
)

func galleryOrder(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order").Order("id")
}

// Products lists active products, newest first, optionally narrowed to a
// category and/or brand.
func Products(c echo.Context) error {
	db := getDB(c).Model(&domain.Product{}).Where("is_active = ?", true)

	filters := url.Values{}
	category := domain.ProductCategory(strings.TrimSpace(c.QueryParam("category")))
	if category != "" && category.Valid() {
		db = db.Where("category = ?", category)
		filters.Set("category", string(category))
	}
	brand := strings.TrimSpace(c.QueryParam("brand"))
	if brand != "" {
		db = db.Where("brand = ?", brand)
		filters.Set("brand", brand)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return err
	}
	page := paginator.New(total, ProductPageSize).GetPage(c.QueryParam("page"))

	var products []domain.Product
	err := db.Preload("Gallery", galleryOrder).
		Order("created_at DESC").
		Offset(page.Offset()).Limit(page.Limit()).
		Find(&products).Error
	if err != nil {
		return err
	}

	brands, err := activeBrands(getDB(c))
	if err != nil {
		return err
	}

	query := filters.Encode()
	if query != "" {
		query += "&"
	}
	return render(c, http.StatusOK, "products", echo.Map{
		"products":          products,
		"page_obj":          page,
		"category_choices":  domain.ProductCategoryChoices,
		"brands":            brands,
		"selected_category": string(category),
		"selected_brand":    brand,
		"filter_query":      template.URL(query),
	})
}

// activeBrands distinct non-empty brands of active products, sorted.
func activeBrands(db *gorm.DB) ([]string, error) {
	var brands []string
	err := db.Model(&domain.Product{}).
		Where("is_active = ? AND brand <> ''", true).
		Distinct("brand").Order("brand").
		Pluck("brand", &brands).Error
	return brands, err
}

// ProductDetail shows an active product with its gallery and related items.
func ProductDetail(c echo.Context) error {
	var product domain.Product
	err := getDB(c).Preload("Gallery", galleryOrder).
		Where("slug = ? AND is_active = ?", c.Param("slug"), true).
		First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.ErrNotFound
	} else if err != nil {
		return err
	}

	var related []domain.Product
	err = getDB(c).Preload("Gallery", galleryOrder).
		Where("is_active = ? AND id <> ?", true, product.ID).
		Order("created_at DESC").
		Limit(RelatedProducts).Find(&related).Error
	if err != nil {
		return err
	}
	return render(c, http.StatusOK, "product", echo.Map{
		"product":          &product,
		"gallery":          product.Gallery,
		"related_products": related,
	})
}
