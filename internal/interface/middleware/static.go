package middleware

import (
	"github.com/gin-gonic/gin"
)

// SetImmutableHeaders marks an uploaded file as cacheable forever and
// loadable cross-origin. Upload names are never reused.
func SetImmutableHeaders(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.Header("Cross-Origin-Resource-Policy", "cross-origin")
	c.Header("Access-Control-Allow-Origin", "*")
}
