package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-ddd-blog/internal/domain/entity"
	handlers "github.com/oksasatya/go-ddd-blog/internal/interface/http"
	"github.com/oksasatya/go-ddd-blog/internal/interface/middleware"
)

// UserModule wires account routes.
// Public: POST /api/users/register, POST /api/users/login
// Protected: GET|PUT /api/users/profile, PUT /api/users/editProfile
// Admin: GET /api/users
type UserModule struct {
	Handler *handlers.UserHandler
	Auth    gin.HandlerFunc
	RDB     *redis.Client
}

func NewUserModule(h *handlers.UserHandler, auth gin.HandlerFunc, rdb *redis.Client) *UserModule {
	return &UserModule{Handler: h, Auth: auth, RDB: rdb}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	loginLimiter := middleware.RateLimit(m.RDB, 10, time.Minute, middleware.KeyByIP(), nil)         // 10 req/min per IP
	registerLimiter := middleware.RateLimit(m.RDB, 5, time.Minute, middleware.KeyByIPAndPath(), nil) // 5 req/min per IP

	users := rg.Group("/users")
	users.POST("/register", registerLimiter, m.Handler.Register)
	users.POST("/login", loginLimiter, m.Handler.Login)

	auth := users.Group("")
	auth.Use(m.Auth, middleware.RateLimit(m.RDB, 120, time.Minute, middleware.KeyByUserID(), middleware.AllowAdmin()))
	{
		auth.GET("/profile", m.Handler.GetProfile)
		auth.PUT("/profile", m.Handler.UpdateProfile)
		auth.PUT("/editProfile", m.Handler.UpdateProfile)
		auth.GET("", middleware.RequireRole(entity.RoleAdmin), m.Handler.List)
	}
}
