// Package adminapi is the JSON back office under /admin/api. Every route
// except login requires a bearer token issued by login.
package adminapi

import "github.com/visionmark/visionmark/internal/webserver"

// Init registers the admin routes on the global web server.
func Init() {
	webserver.ApiPOST("/login", login)
	webserver.ApiGET("/navigation", getNavigation)

	registerServiceRoutes()
	registerBlogRoutes()
	registerNewsRoutes()
	registerProductRoutes()
	registerTestimonialRoutes()
	registerSystemRoutes()
}
