package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

const CtxRealIPKey = "real_ip"

func parseIP(s string) string {
	if ip := net.ParseIP(strings.TrimSpace(s)); ip != nil {
		return ip.String()
	}
	return ""
}

// RealIP stores the client address under "real_ip" for rate limiting and logs.
// Order: CF-Connecting-IP, left-most X-Forwarded-For, X-Real-IP, c.ClientIP().
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := parseIP(c.GetHeader("CF-Connecting-IP"))
		if ip == "" {
			if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
				ip = parseIP(strings.SplitN(xff, ",", 2)[0])
			}
		}
		if ip == "" {
			ip = parseIP(c.GetHeader("X-Real-IP"))
		}
		if ip == "" {
			ip = c.ClientIP()
		}
		c.Set(CtxRealIPKey, ip)
		c.Next()
	}
}
