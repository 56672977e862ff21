package site

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/visionmark/visionmark/internal/app"
	"github.com/visionmark/visionmark/internal/app/apptest"
	"github.com/visionmark/visionmark/internal/domain"
	"github.com/visionmark/visionmark/internal/webserver"
	"gorm.io/gorm"
)

func setup(t *testing.T) *app.Application {
	a := apptest.New(t)
	webserver.Init(a)
	require.NoError(t, Register(a))
	return a
}

func get(t *testing.T, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	webserver.Root().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func ts(days int) *time.Time {
	v := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC).AddDate(0, 0, days)
	return &v
}

func seedBlog(t *testing.T, db *gorm.DB, n int) {
	for i := 1; i <= n; i++ {
		require.NoError(t, db.Create(&domain.Blog{
			Title:       fmt.Sprintf("Post %02d", i),
			Slug:        fmt.Sprintf("post-%02d", i),
			Content:     "<p>body</p>",
			IsPublished: true,
			PublishedAt: ts(i),
		}).Error)
	}
}

func TestStaticPages(t *testing.T) {
	a := setup(t)
	require.NoError(t, a.DB().Create(&domain.Service{Name: "Eye Examination", Image: "services/eye.webp"}).Error)

	for _, p := range []string{"/", "/about", "/services", "/faq", "/contact", "/book-your-visit", "/testimonials", "/terms", "/privacy", "/blog", "/news", "/products"} {
		rec := get(t, p)
		assert.Equal(t, http.StatusOK, rec.Code, p)
		// services are part of the site navigation on every page
		assert.Contains(t, rec.Body.String(), "Eye Examination", p)
	}
}

func TestHome(t *testing.T) {
	a := setup(t)
	db := a.DB()
	for i := 0; i < 12; i++ {
		require.NoError(t, db.Create(&domain.Product{
			Name: fmt.Sprintf("Frame %02d", i), Slug: fmt.Sprintf("frame-%02d", i),
			Price: decimal.NewFromInt(1000), IsActive: true,
			CreatedAt: time.Now().Add(time.Duration(i) * time.Minute),
		}).Error)
	}
	require.NoError(t, db.Create(&domain.Product{Name: "Hidden Frame", Slug: "hidden", IsActive: false}).Error)
	require.NoError(t, db.Create(&domain.Testimonial{Name: "Asha", Rating: 4.5, Comment: "Great care", IsPublished: true, Date: ts(3)}).Error)
	require.NoError(t, db.Create(&domain.Testimonial{Name: "Ravi", Rating: 5, Comment: "Draft", IsPublished: false}).Error)

	rec := get(t, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Frame 11")
	assert.Contains(t, body, "Frame 02")
	assert.NotContains(t, body, "Frame 01")
	assert.NotContains(t, body, "Hidden Frame")
	assert.Contains(t, body, "Great care")
	assert.Contains(t, body, StarHalf)
	assert.NotContains(t, body, "Draft")
}

func TestBlogList(t *testing.T) {
	a := setup(t)
	seedBlog(t, a.DB(), 8)
	require.NoError(t, a.DB().Create(&domain.Blog{Title: "Draft Post", Slug: "draft", IsPublished: false}).Error)

	body := get(t, "/blog").Body.String()
	assert.Contains(t, body, "Post 08")
	assert.Contains(t, body, "Post 03")
	assert.NotContains(t, body, "Post 02")
	assert.NotContains(t, body, "Draft Post")
	assert.Less(t, strings.Index(body, "Post 08"), strings.Index(body, "Post 07"))

	body = get(t, "/blog?page=2").Body.String()
	assert.Contains(t, body, "Post 02")
	assert.Contains(t, body, "Post 01")
	assert.NotContains(t, body, "Post 03")

	// out of range pages fall back to the last page, garbage to the first
	assert.Contains(t, get(t, "/blog?page=99").Body.String(), "Post 01")
	assert.Contains(t, get(t, "/blog?page=abc").Body.String(), "Post 08")
}

func TestBlogDetailRequiresPublished(t *testing.T) {
	a := setup(t)
	post := domain.Blog{Title: "Caring for lenses", Slug: "caring-for-lenses", Content: "<p>Rinse daily</p>"}
	require.NoError(t, a.DB().Create(&post).Error)

	rec := get(t, "/blog/caring-for-lenses/")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Page not found")

	require.NoError(t, a.DB().Model(&post).Update("is_published", true).Error)
	rec = get(t, "/blog/caring-for-lenses/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<p>Rinse daily</p>")
}

func TestNewsDetailRequiresPublished(t *testing.T) {
	a := setup(t)
	item := domain.News{Title: "Draft notice", Slug: "draft-notice", NewsType: domain.NewsUpdate, Content: "<p>Soon</p>"}
	require.NoError(t, a.DB().Create(&item).Error)

	rec := get(t, "/news/draft-notice")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Page not found")

	require.NoError(t, a.DB().Model(&item).Update("is_published", true).Error)
	rec = get(t, "/news/draft-notice")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Draft notice")
}

func TestProductDetailRequiresActive(t *testing.T) {
	a := setup(t)
	p := domain.Product{Name: "Retired Frame", Slug: "retired-frame", Price: decimal.NewFromInt(1200)}
	require.NoError(t, a.DB().Create(&p).Error)

	rec := get(t, "/products/retired-frame")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Page not found")

	require.NoError(t, a.DB().Model(&p).Update("is_active", true).Error)
	rec = get(t, "/products/retired-frame")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Retired Frame")
}

func TestBlogPopularPostsExcludeCurrent(t *testing.T) {
	a := setup(t)
	seedBlog(t, a.DB(), 8)

	body := get(t, "/blog/post-08").Body.String()
	popular := body[strings.Index(body, "Popular posts"):]
	assert.NotContains(t, popular, "Post 08")
	assert.Equal(t, PopularPosts, strings.Count(popular, `<li><a href="/blog/`))
}

func TestNewsDetail(t *testing.T) {
	a := setup(t)
	for i := 1; i <= 6; i++ {
		require.NoError(t, a.DB().Create(&domain.News{
			Title: fmt.Sprintf("Update %d", i), Slug: fmt.Sprintf("update-%d", i),
			NewsType: domain.NewsEvent, Location: "Kochi",
			IsPublished: true, PublishedAt: ts(i),
		}).Error)
	}

	rec := get(t, "/news/update-1")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Event")
	recent := body[strings.Index(body, "Recent news"):]
	assert.Equal(t, RecentNews, strings.Count(recent, `<li><a href="/news/`))
	assert.Contains(t, recent, "Update 6")
	assert.NotContains(t, recent, "Update 2")

	assert.Equal(t, http.StatusNotFound, get(t, "/news/missing").Code)
}

func TestServiceDetail(t *testing.T) {
	a := setup(t)
	svc := domain.Service{Name: "Contact Lens Fitting", Description: "Trial lenses", DetailsTitle: "What to expect"}
	require.NoError(t, a.DB().Create(&svc).Error)

	rec := get(t, fmt.Sprintf("/services/%d", svc.ID))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "What to expect")
	for _, b := range KeyBenefits {
		assert.Contains(t, body, b.Title)
	}

	assert.Equal(t, http.StatusNotFound, get(t, "/services/12345").Code)
	assert.Equal(t, http.StatusNotFound, get(t, "/services/abc").Code)
}

func TestProducts(t *testing.T) {
	a := setup(t)
	db := a.DB()
	mk := func(name string, cat domain.ProductCategory, brand string, active bool) {
		require.NoError(t, db.Create(&domain.Product{
			Name: name, Slug: strings.ToLower(strings.ReplaceAll(name, " ", "-")),
			Category: cat, Brand: brand, Price: decimal.NewFromInt(2500), IsActive: active,
		}).Error)
	}
	mk("Aviator Classic", domain.CategorySunglasses, "Ray-Ban", true)
	mk("Round Metal", domain.CategoryEyeglasses, "Ray-Ban", true)
	mk("Daily Comfort", domain.CategoryContactLenses, "Acuvue", true)
	mk("No Brand Case", domain.CategoryAccessories, "", true)
	mk("Retired Frame", domain.CategoryEyeglasses, "Oakley", false)

	body := get(t, "/products").Body.String()
	assert.Contains(t, body, "Aviator Classic")
	assert.NotContains(t, body, "Retired Frame")
	assert.Contains(t, body, `<option value="Acuvue">`)
	assert.Equal(t, 1, strings.Count(body, `<option value="Ray-Ban"`))
	assert.NotContains(t, body, `<option value="Oakley"`)
	assert.Less(t, strings.Index(body, `<option value="Acuvue"`), strings.Index(body, `<option value="Ray-Ban"`))

	body = get(t, "/products?category=sunglasses").Body.String()
	assert.Contains(t, body, "Aviator Classic")
	assert.NotContains(t, body, "Round Metal")

	body = get(t, "/products?brand=Ray-Ban").Body.String()
	assert.Contains(t, body, "Round Metal")
	assert.NotContains(t, body, "Daily Comfort")

	// unknown categories are ignored
	assert.Contains(t, get(t, "/products?category=hats").Body.String(), "Daily Comfort")
}

func TestProductsPaginationKeepsFilters(t *testing.T) {
	a := setup(t)
	for i := 0; i < ProductPageSize+1; i++ {
		require.NoError(t, a.DB().Create(&domain.Product{
			Name: fmt.Sprintf("Shade %d", i), Slug: fmt.Sprintf("shade-%d", i),
			Category: domain.CategorySunglasses, IsActive: true,
		}).Error)
	}
	body := get(t, "/products?category=sunglasses").Body.String()
	assert.Contains(t, body, `href="?category=sunglasses&amp;page=2"`)
}

func TestProductDetail(t *testing.T) {
	a := setup(t)
	p := domain.Product{Name: "Wayfarer", Slug: "wayfarer", IsActive: true, Price: decimal.RequireFromString("4999.00"),
		SalePrice: decimal.NewNullDecimal(decimal.RequireFromString("3999.50")), Rating: 4.8}
	require.NoError(t, a.DB().Create(&p).Error)
	require.NoError(t, a.DB().Create(&domain.ProductImage{ProductID: p.ID, Image: "products/gallery/front.webp", IsPrimary: true, SortOrder: 2}).Error)
	require.NoError(t, a.DB().Create(&domain.ProductImage{ProductID: p.ID, Image: "products/gallery/side.webp", SortOrder: 1}).Error)
	require.NoError(t, a.DB().Create(&domain.Product{Name: "Clubmaster", Slug: "clubmaster", IsActive: true}).Error)

	rec := get(t, "/products/wayfarer")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `class="main" src="/media/products/gallery/front.webp"`)
	assert.Less(t, strings.Index(body, "side.webp"), strings.Index(body, `src="/media/products/gallery/front.webp" alt=""`))
	assert.Contains(t, body, "3999.50")
	assert.Contains(t, body, "<del>")
	assert.Contains(t, body, "Clubmaster")

	assert.Equal(t, http.StatusNotFound, get(t, "/products/missing").Code)
}

func TestTestimonialsOrder(t *testing.T) {
	a := setup(t)
	require.NoError(t, a.DB().Create(&domain.Testimonial{Name: "Second", Rating: 5, IsPublished: true, SortOrder: 2, Date: ts(9)}).Error)
	require.NoError(t, a.DB().Create(&domain.Testimonial{Name: "First", Rating: 4, IsPublished: true, SortOrder: 1, Date: ts(1)}).Error)
	require.NoError(t, a.DB().Create(&domain.Testimonial{Name: "Hidden", Rating: 1, IsPublished: false}).Error)

	body := get(t, "/testimonials").Body.String()
	assert.Less(t, strings.Index(body, "First"), strings.Index(body, "Second"))
	assert.NotContains(t, body, "Hidden")
}

func TestSitemap(t *testing.T) {
	a := setup(t)
	db := a.DB()
	svc := domain.Service{Name: "Eye Exam"}
	require.NoError(t, db.Create(&svc).Error)
	require.NoError(t, db.Create(&domain.Product{Name: "Live", Slug: "live", IsActive: true}).Error)
	require.NoError(t, db.Create(&domain.Product{Name: "Gone", Slug: "gone", IsActive: false}).Error)
	require.NoError(t, db.Create(&domain.Blog{Title: "Post", Slug: "post", IsPublished: true}).Error)
	require.NoError(t, db.Create(&domain.Blog{Title: "Draft", Slug: "draft"}).Error)
	require.NoError(t, db.Create(&domain.News{Title: "Opening", Slug: "opening", IsPublished: true}).Error)

	rec := get(t, "/sitemap.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	var set URLSet
	require.NoError(t, xml.Unmarshal(rec.Body.Bytes(), &set))

	locs := map[string]SitemapURL{}
	for _, u := range set.URLs {
		locs[u.Loc] = u
		assert.Equal(t, "weekly", u.ChangeFreq)
	}
	base := a.Config().Web.BaseURL
	assert.Len(t, set.URLs, len(staticPages)+4)
	assert.Equal(t, "0.5", locs[base+"/about"].Priority)
	assert.Equal(t, "0.8", locs[fmt.Sprintf("%s/services/%d", base, svc.ID)].Priority)
	assert.Equal(t, "0.8", locs[base+"/products/live"].Priority)
	assert.Equal(t, "0.7", locs[base+"/blog/post/"].Priority)
	assert.Equal(t, "0.7", locs[base+"/news/opening"].Priority)
	assert.NotEmpty(t, locs[base+"/news/opening"].LastMod)
	assert.NotContains(t, locs, base+"/products/gone")
	assert.NotContains(t, locs, base+"/blog/draft/")
}

func TestRobots(t *testing.T) {
	setup(t)
	rec := get(t, "/robots.txt")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Disallow: /admin/")
	assert.Contains(t, rec.Body.String(), "Sitemap: https://visionmark.test/sitemap.xml")
}

func TestUnknownRouteRendersNotFoundPage(t *testing.T) {
	setup(t)
	rec := get(t, "/does-not-exist")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "no longer published")
}

func TestStaticAssets(t *testing.T) {
	setup(t)
	rec := get(t, "/static/css/site.css")
	assert.Equal(t, http.StatusOK, rec.Code)
}
