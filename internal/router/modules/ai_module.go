package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-ddd-blog/internal/domain/entity"
	handlers "github.com/oksasatya/go-ddd-blog/internal/interface/http"
	"github.com/oksasatya/go-ddd-blog/internal/interface/middleware"
)

// AIModule wires image generation under /api/ai. Generation calls a paid
// upstream API, so it is limited per user.
type AIModule struct {
	Handler *handlers.AIHandler
	Auth    gin.HandlerFunc
	RDB     *redis.Client
}

func NewAIModule(h *handlers.AIHandler, auth gin.HandlerFunc, rdb *redis.Client) *AIModule {
	return &AIModule{Handler: h, Auth: auth, RDB: rdb}
}

func (m *AIModule) Register(rg *gin.RouterGroup) {
	ai := rg.Group("/ai")
	ai.GET("/health", m.Handler.Health)

	auth := ai.Group("")
	auth.Use(m.Auth)
	{
		genLimiter := middleware.RateLimit(m.RDB, 10, time.Minute, middleware.KeyByUserID(), middleware.AllowAdmin())
		auth.POST("/generate-image", genLimiter, m.Handler.Generate)
		auth.POST("/generate-batch", genLimiter, m.Handler.GenerateBatch)
		auth.GET("/images", m.Handler.ListImages)
		auth.DELETE("/images/:filename", middleware.RequireRole(entity.RoleAdmin), m.Handler.DeleteImage)
	}
}
