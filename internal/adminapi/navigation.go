package adminapi

import (
	"github.com/labstack/echo/v4"
)

type NavItem struct {
	Title string `json:"title"`
	Icon  string `json:"icon"`
	Link  string `json:"link"`
}

type NavSection struct {
	Title     string    `json:"title"`
	Separator bool      `json:"separator"`
	Items     []NavItem `json:"items"`
}

type AdminTheme struct {
	SiteTitle    string            `json:"site_title"`
	SiteHeader   string            `json:"site_header"`
	SiteURL      string            `json:"site_url"`
	SiteSymbol   string            `json:"site_symbol"`
	PrimaryColor map[string]string `json:"primary_color"`
	Styles       []string          `json:"styles"`
	Scripts      []string          `json:"scripts"`
	ShowSearch   bool              `json:"show_search"`
	Navigation   []NavSection      `json:"navigation"`
}

// Navigation back-office sidebar and theming
var Navigation = AdminTheme{
	SiteTitle:  "Visionmark Admin",
	SiteHeader: "Visionmark Opticals & Eyecare",
	SiteURL:    "/",
	SiteSymbol: "visibility",
	PrimaryColor: map[string]string{
		"50":  "250 250 255",
		"100": "230 244 249",
		"200": "179 223 240",
		"300": "128 202 231",
		"400": "77 181 222",
		"500": "27 156 209",
		"600": "23 128 168",
		"700": "19 100 127",
		"800": "15 72 86",
		"900": "11 44 45",
	},
	Styles:     []string{"/static/css/admin-image-preview.css"},
	Scripts:    []string{"/static/js/admin-image-preview.js"},
	ShowSearch: true,
	Navigation: []NavSection{
		{
			Title:     "Dashboard",
			Separator: true,
			Items: []NavItem{
				{Title: "Dashboard", Icon: "dashboard", Link: "/admin/"},
				{Title: "Services", Icon: "category", Link: "/admin/services"},
				{Title: "Blogs", Icon: "article", Link: "/admin/blogs"},
				{Title: "News", Icon: "newspaper", Link: "/admin/news"},
				{Title: "Products", Icon: "inventory", Link: "/admin/products"},
				{Title: "Testimonials", Icon: "reviews", Link: "/admin/testimonials"},
			},
		},
		{
			Title: "System",
			Items: []NavItem{
				{Title: "Operator log", Icon: "history", Link: "/admin/system/logs"},
				{Title: "Maintenance", Icon: "build", Link: "/admin/system"},
			},
		},
	},
}

func getNavigation(c echo.Context) error {
	return ok(c, Navigation)
}
