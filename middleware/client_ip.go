package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"

	"carebook/config"
)

// getClientIP resolves the caller address the rate limiter keys on. Forwarded
// headers are only honored when TRUST_PROXY_HEADERS is set: without a proxy in
// front, a spoofed X-Forwarded-For would hand every caller a fresh limiter.
func getClientIP(c *gin.Context) string {
	if config.AppConfig.TrustProxyHeaders {
		// X-Forwarded-For may carry a chain; the first entry is the client.
		if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
			if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
				return first
			}
		}
		if xri := strings.TrimSpace(c.GetHeader("X-Real-IP")); xri != "" {
			return xri
		}
	}

	if host, _, err := net.SplitHostPort(c.Request.RemoteAddr); err == nil {
		return host
	}
	return c.Request.RemoteAddr
}
