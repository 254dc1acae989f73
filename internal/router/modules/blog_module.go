package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-ddd-blog/internal/interface/http"
	"github.com/oksasatya/go-ddd-blog/internal/interface/middleware"
)

// multipart framing on top of the file itself
const formOverhead = 1 << 20

// BlogModule wires blog routes under /api/blogs. Reads are public.
type BlogModule struct {
	Handler        *handlers.BlogHandler
	Auth           gin.HandlerFunc
	RDB            *redis.Client
	UploadMaxBytes int64
}

func NewBlogModule(h *handlers.BlogHandler, auth gin.HandlerFunc, rdb *redis.Client, uploadMaxBytes int64) *BlogModule {
	return &BlogModule{Handler: h, Auth: auth, RDB: rdb, UploadMaxBytes: uploadMaxBytes}
}

func (m *BlogModule) Register(rg *gin.RouterGroup) {
	blogs := rg.Group("/blogs")
	readLimiter := middleware.RateLimit(m.RDB, 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())

	blogs.GET("", readLimiter, m.Handler.List)
	blogs.GET("/search", readLimiter, m.Handler.Search)
	// static segment registered before :id
	blogs.GET("/myblogs", m.Auth, m.Handler.Mine)
	blogs.GET("/:id", readLimiter, m.Handler.Get)

	write := blogs.Group("")
	write.Use(m.Auth, middleware.RateLimit(m.RDB, 60, time.Minute, middleware.KeyByUserID(), middleware.AllowAdmin()))
	{
		var limit int64
		if m.UploadMaxBytes > 0 {
			limit = m.UploadMaxBytes + formOverhead
		}
		write.POST("", middleware.BodyLimit(limit), m.Handler.Create)
		write.PUT("/:id", m.Handler.Update)
		write.DELETE("/:id", m.Handler.Delete)
	}
}
