package assistant

import (
	"fmt"
	"net/http"
	"strings"
)

// RobotsHandler bloqueia crawlers na API e aponta para o sitemap do site.
func RobotsHandler(siteOrigin string) http.HandlerFunc {
	body := fmt.Sprintf("User-agent: *\nDisallow: /api/\nSitemap: %s/sitemap-index.xml\n", strings.TrimRight(siteOrigin, "/"))
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(body))
	}
}
