package site

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/visionmark/visionmark/internal/domain"
	"github.com/visionmark/visionmark/internal/webserver"
	"gorm.io/gorm"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

// Sitemap priorities per section
const (
	PriorityStatic  = 0.5
	PriorityCatalog = 0.8
	PriorityContent = 0.7
)

var staticPages = []string{
	"/", "/about", "/services", "/faq", "/contact",
	"/book-your-visit", "/products", "/testimonials",
}

type URLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []SitemapURL `xml:"url"`
}

type SitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

type sitemapRow struct {
	ID        int64
	Slug      string
	UpdatedAt time.Time
}

func newSitemapURL(base, loc string, updated time.Time, priority float64) SitemapURL {
	u := SitemapURL{
		Loc:        base + loc,
		ChangeFreq: "weekly",
		Priority:   fmt.Sprintf("%.1f", priority),
	}
	if !updated.IsZero() {
		u.LastMod = updated.Format("2006-01-02")
	}
	return u
}

// BuildSitemap collects the static pages, services, active products and
// published blog posts and news items.
func BuildSitemap(db *gorm.DB, baseURL string) (*URLSet, error) {
	base := strings.TrimRight(baseURL, "/")
	set := &URLSet{Xmlns: sitemapNS}
	for _, p := range staticPages {
		set.URLs = append(set.URLs, newSitemapURL(base, p, time.Time{}, PriorityStatic))
	}

	sections := []struct {
		model    interface{}
		where    string
		priority float64
		loc      func(r sitemapRow) string
	}{
		{&domain.Service{}, "", PriorityCatalog, func(r sitemapRow) string { return fmt.Sprintf("/services/%d", r.ID) }},
		{&domain.Product{}, "is_active = ?", PriorityCatalog, func(r sitemapRow) string { return "/products/" + r.Slug }},
		{&domain.Blog{}, "is_published = ?", PriorityContent, func(r sitemapRow) string { return "/blog/" + r.Slug + "/" }},
		{&domain.News{}, "is_published = ?", PriorityContent, func(r sitemapRow) string { return "/news/" + r.Slug }},
	}
	for _, sec := range sections {
		var rows []sitemapRow
		q := db.Model(sec.model)
		if _, isService := sec.model.(*domain.Service); isService {
			q = q.Select("id, updated_at")
		} else {
			q = q.Select("id, slug, updated_at").Where(sec.where, true)
		}
		if err := q.Order("id").Scan(&rows).Error; err != nil {
			return nil, err
		}
		for _, r := range rows {
			set.URLs = append(set.URLs, newSitemapURL(base, sec.loc(r), r.UpdatedAt, sec.priority))
		}
	}
	return set, nil
}

func Sitemap(c echo.Context) error {
	appCtx := webserver.GetAppContext(c)
	set, err := BuildSitemap(getDB(c), appCtx.Config().Web.BaseURL)
	if err != nil {
		return err
	}
	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, echo.MIMEApplicationXMLCharsetUTF8, append([]byte(xml.Header), out...))
}

func Robots(c echo.Context) error {
	base := strings.TrimRight(webserver.GetAppContext(c).Config().Web.BaseURL, "/")
	body := "User-agent: *\n" +
		"Disallow: /admin/\n" +
		"Allow: /\n\n" +
		"Sitemap: " + base + "/sitemap.xml\n"
	return c.String(http.StatusOK, body)
}
