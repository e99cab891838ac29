// Package cors adiciona os headers de CORS do site e responde preflights.
//
// Roda antes do rate limit, então preflights OPTIONS nunca consomem cota.
package cors

import (
	"net/http"
	"strings"
)

const (
	allowMethods = "GET,HEAD,OPTIONS,POST,PUT"
	allowHeaders = "Origin, X-Requested-With, Content-Type, Accept"
)

type Options struct {
	// SiteOrigin é a origem liberada em produção (ex: https://example.com).
	SiteOrigin string
	// Dev ecoa o Origin do request, para desenvolvimento local.
	Dev bool
}

func (o Options) allowedOrigin(r *http.Request) string {
	if o.Dev {
		return r.Header.Get("Origin")
	}
	return strings.TrimRight(o.SiteOrigin, "/")
}

func Middleware(opts Options) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Add("Access-Control-Allow-Origin", opts.allowedOrigin(r))
			h.Add("Access-Control-Allow-Methods", allowMethods)
			h.Add("Access-Control-Allow-Headers", allowHeaders)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
