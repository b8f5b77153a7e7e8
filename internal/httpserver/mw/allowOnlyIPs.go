package mw

import (
	"net/http"

	"github.com/MrSnakeDoc/rouse/internal/logger"
	"github.com/MrSnakeDoc/rouse/internal/utils"
)

// AllowOnlyCIDRS allows only specific IPs/CIDRs. If the list is empty,
// it does NOT filter (passthrough). trustProxy should be true when
// running behind a trusted reverse proxy.
func AllowOnlyCIDRS(allowed []string, trustProxy bool, log logger.Logger) func(http.Handler) http.Handler {
	m := utils.NewIPMatcher(allowed)
	if m.IsEmpty() {
		log.Debug("AllowOnlyCIDRS: empty matcher, passthrough mode")
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := utils.ClientIP(r, trustProxy)
			if !m.Allow(ip) {
				log.Warn("request blocked by CIDR allowlist",
					logger.String("ip", ip),
					logger.String("path", r.URL.Path))
				w.WriteHeader(http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
