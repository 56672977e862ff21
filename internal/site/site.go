// Package site serves the public pages of the Visionmark website.
package site

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/visionmark/visionmark/internal/app"
	"github.com/visionmark/visionmark/internal/domain"
	"github.com/visionmark/visionmark/internal/webserver"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed templates
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Page sizes and related item counts of the list and detail views
const (
	BlogPageSize    = 6
	NewsPageSize    = 6
	ProductPageSize = 9
	HomeHighlights  = 10
	PopularPosts    = 6
	RecentNews      = 4
	RelatedProducts = 4
)

// Register installs the html renderer, the 404 page and every public route.
func Register(appCtx app.AppContext) error {
	r, err := NewRenderer(appCtx.Media().URLPrefix())
	if err != nil {
		return err
	}
	webserver.SetRenderer(r)
	webserver.SetNotFoundHandler(NotFound)

	e := webserver.Root()
	e.StaticFS("/static", echo.MustSubFS(staticFS, "static"))

	e.GET("/", Home)
	e.GET("/about", staticPage("about"))
	e.GET("/services", Services)
	e.GET("/services/:id", ServiceDetail)
	e.GET("/faq", staticPage("faqs"))
	e.GET("/blog", BlogList)
	e.GET("/blog/:slug", BlogDetail)
	e.GET("/news", NewsList)
	e.GET("/news/:slug", NewsDetail)
	e.GET("/contact", staticPage("contact"))
	e.GET("/book-your-visit", staticPage("book-your-visit"))
	e.GET("/products", Products)
	e.GET("/products/:slug", ProductDetail)
	e.GET("/testimonials", Testimonials)
	e.GET("/terms", staticPage("terms"))
	e.GET("/privacy", staticPage("privacy"))
	e.GET("/robots.txt", Robots)
	e.GET("/sitemap.xml", Sitemap)
	return nil
}

// NewRenderer parses the embedded page templates with the site helpers.
func NewRenderer(mediaURL string) (*webserver.Renderer, error) {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, err
	}
	return webserver.NewRenderer(sub, "layouts/*.html", "pages/*.html", funcMap(mediaURL))
}

func funcMap(mediaURL string) template.FuncMap {
	return template.FuncMap{
		"stars": StarRating,
		"media": func(rel string) string {
			return domain.MediaURL(mediaURL, rel)
		},
		"productImage": func(p domain.Product) string {
			return p.MainImageURL(mediaURL)
		},
		"productHover": func(p domain.Product) string {
			return p.HoverImageURL(mediaURL)
		},
		"ago":  humanize.Time,
		"date": formatDate,
		"html": func(s string) template.HTML {
			return template.HTML(s)
		},
		"money": func(d decimal.Decimal) string {
			return d.StringFixed(2)
		},
		"lower": strings.ToLower,
	}
}

func formatDate(v interface{}) string {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.Format("January 2, 2006")
	case *time.Time:
		if t == nil || t.IsZero() {
			return ""
		}
		return t.Format("January 2, 2006")
	}
	return ""
}

func getDB(c echo.Context) *gorm.DB {
	return webserver.GetAppContext(c).DB().WithContext(c.Request().Context())
}

// render adds the site wide context (navigation services, base url) and
// renders the named page.
func render(c echo.Context, code int, name string, data echo.Map) error {
	if data == nil {
		data = echo.Map{}
	}
	if _, ok := data["services"]; !ok {
		var services []domain.Service
		if err := getDB(c).Order("id").Find(&services).Error; err != nil {
			zap.L().Warn("load navigation services", zap.Error(err))
		}
		data["services"] = services
	}
	if _, ok := data["filter_query"]; !ok {
		data["filter_query"] = template.URL("")
	}
	cfg := webserver.GetAppContext(c).Config()
	data["base_url"] = cfg.Web.BaseURL
	data["request_path"] = c.Request().URL.Path
	data["year"] = time.Now().Year()
	return c.Render(code, name, data)
}

func staticPage(name string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return render(c, http.StatusOK, name, nil)
	}
}

// NotFound renders the html 404 page.
func NotFound(c echo.Context) error {
	return render(c, http.StatusNotFound, "404", nil)
}
