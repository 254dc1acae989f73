package middleware

import (
	"net"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-blog/internal/domain/entity"
)

// AllowPrivateIP bypasses the limiter for loopback and private addresses.
func AllowPrivateIP() AllowFunc {
	return func(c *gin.Context) bool {
		parsed := net.ParseIP(ipFromCtx(c))
		return parsed != nil && (parsed.IsLoopback() || parsed.IsPrivate())
	}
}

// AllowAdmin bypasses the limiter for authenticated admins; place after Auth.
func AllowAdmin() AllowFunc {
	return func(c *gin.Context) bool {
		return IdentityFrom(c).Role == entity.RoleAdmin
	}
}

// AnyOf bypasses when any of fns does.
func AnyOf(fns ...AllowFunc) AllowFunc {
	return func(c *gin.Context) bool {
		for _, f := range fns {
			if f != nil && f(c) {
				return true
			}
		}
		return false
	}
}
