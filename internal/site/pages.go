package site

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/visionmark/visionmark/internal/domain"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// KeyBenefit a highlight shown on every service detail page
type KeyBenefit struct {
	Title       string
	Description string
}

var KeyBenefits = []KeyBenefit{
	{"Expert Guidance", "Get support from trained optical professionals."},
	{"Modern Tools", "Accurate results using updated diagnostic equipment."},
	{"Quick Service", "Fast and comfortable experience for every customer."},
	{"Personalized Advice", "Solutions tailored to your needs and lifestyle."},
	{"Affordable Options", "Budget-friendly and premium solutions available."},
	{"Trusted Care", "Safe, reliable, and customer-first optical care."},
}

// Home shows the latest testimonials and products next to all services.
func Home(c echo.Context) error {
	var (
		testimonials []domain.Testimonial
		products     []domain.Product
		services     []domain.Service
	)
	g, ctx := errgroup.WithContext(c.Request().Context())
	db := getDB(c)
	g.Go(func() error {
		return db.WithContext(ctx).Where("is_published = ?", true).
			Order("date DESC").Order("created_at DESC").
			Limit(HomeHighlights).Find(&testimonials).Error
	})
	g.Go(func() error {
		return db.WithContext(ctx).Where("is_active = ?", true).
			Preload("Gallery").
			Order("created_at DESC").
			Limit(HomeHighlights).Find(&products).Error
	})
	g.Go(func() error {
		return db.WithContext(ctx).Order("id").Find(&services).Error
	})
	if err := g.Wait(); err != nil {
		return err
	}
	return render(c, http.StatusOK, "home", echo.Map{
		"testimonials":    testimonials,
		"latest_products": products,
		"services":        services,
	})
}

func Services(c echo.Context) error {
	return render(c, http.StatusOK, "services", nil)
}

// ServiceDetail shows one service with the static key benefits.
func ServiceDetail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.ErrNotFound
	}
	var service domain.Service
	if err := getDB(c).Where("id = ?", id).First(&service).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.ErrNotFound
	} else if err != nil {
		return err
	}
	return render(c, http.StatusOK, "servicedetails", echo.Map{
		"service":      service,
		"key_benefits": KeyBenefits,
	})
}

// Testimonials lists every published testimonial in display order.
func Testimonials(c echo.Context) error {
	var rows []domain.Testimonial
	err := getDB(c).Where("is_published = ?", true).
		Order("sort_order").Order("date DESC").Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return err
	}
	return render(c, http.StatusOK, "testimonials", echo.Map{"testimonials": rows})
}
