package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// The API carries no credentials, so the allowed headers are just what the
// dashboard actually sends: a JSON body and an optional correlation id.
const (
	corsMethods = http.MethodPost + ", " + http.MethodOptions
	corsHeaders = "Content-Type, X-Request-Id"
	corsMaxAge  = "600"
)

// corsMiddleware lets a browser-hosted map page call the API. Preflights are
// answered here with 204 and never reach a handler.
func corsMiddleware(allowed []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", resolveOrigin(c.GetHeader("Origin"), allowed))
		h.Set("Access-Control-Allow-Methods", corsMethods)
		h.Set("Access-Control-Allow-Headers", corsHeaders)
		h.Set("Access-Control-Max-Age", corsMaxAge)
		h.Set("Access-Control-Expose-Headers", "X-Request-Id")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// resolveOrigin echoes the request origin when the allow-list names it,
// otherwise falls back to the first configured origin. An empty or wildcard
// configuration stays permissive.
func resolveOrigin(requestOrigin string, allowed []string) string {
	if len(allowed) == 0 {
		return "*"
	}
	for _, candidate := range allowed {
		if candidate == "*" {
			return "*"
		}
	}
	if requestOrigin != "" {
		for _, candidate := range allowed {
			if strings.EqualFold(candidate, requestOrigin) {
				return requestOrigin
			}
		}
	}
	return allowed[0]
}
