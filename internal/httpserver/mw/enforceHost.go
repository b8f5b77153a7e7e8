package mw

import (
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/rouse/internal/logger"
)

// EnforceHost allows requests only if r.Host matches one of the allowed
// hosts. Supports wildcard patterns like "*.example.com". If
// allowedHosts is empty, it acts as a passthrough. The gateway's
// catch-all route must NOT sit behind this: unknown hostnames there get
// a structured 404, not a 403.
func EnforceHost(allowedHosts []string, log logger.Logger) func(http.Handler) http.Handler {
	if len(allowedHosts) == 0 {
		log.Debug("EnforceHost: empty allowedHosts, passthrough mode")
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, pattern := range allowedHosts {
				if matchHost(r.Host, pattern) {
					next.ServeHTTP(w, r)
					return
				}
			}

			log.Warn("request blocked by host allowlist",
				logger.String("hostname", r.Host),
				logger.String("path", r.URL.Path))
			w.WriteHeader(http.StatusForbidden)
		})
	}
}

// matchHost checks if host matches pattern (supports wildcard *.example.com)
func matchHost(host, pattern string) bool {
	// Exact match
	if host == pattern {
		return true
	}

	// Wildcard match: *.example.com matches sub.example.com
	if strings.HasPrefix(pattern, "*.") {
		suffix := pattern[1:] // Remove * to get .example.com
		return strings.HasSuffix(host, suffix)
	}

	return false
}
