package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-blog/internal/application"
	"github.com/oksasatya/go-ddd-blog/internal/domain/entity"
)

const (
	CtxUserIDKey = "userID"
	CtxRoleKey   = "userRole"
	CtxEmailKey  = "userEmail"
)

func setIdentity(c *gin.Context, id application.Identity) {
	c.Set(CtxUserIDKey, id.UserID)
	c.Set(CtxRoleKey, string(id.Role))
	c.Set(CtxEmailKey, id.Email)
}

// IdentityFrom returns the identity placed by Auth. The zero Identity means anonymous.
func IdentityFrom(c *gin.Context) application.Identity {
	return application.Identity{
		UserID: c.GetString(CtxUserIDKey),
		Role:   entity.Role(c.GetString(CtxRoleKey)),
		Email:  c.GetString(CtxEmailKey),
	}
}
