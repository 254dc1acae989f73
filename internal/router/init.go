package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-blog/internal/container"
	handlers "github.com/oksasatya/go-ddd-blog/internal/interface/http"
	"github.com/oksasatya/go-ddd-blog/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-blog/internal/router/modules"
	"github.com/oksasatya/go-ddd-blog/pkg/response"
	"github.com/oksasatya/go-ddd-blog/pkg/validation"
)

// InitModules builds handlers from the container and registers every module.
func InitModules(r *Registry, c *container.Container) {
	cfg, logger := c.Config, c.Logger
	presenter := handlers.BlogPresenter{PublicBaseURL: cfg.PublicBaseURL}
	authn := middleware.Auth(c.UserService)

	r.Add(modules.NewUserModule(handlers.NewUserHandler(c.UserService, logger), authn, c.Redis))
	r.Add(modules.NewBlogModule(handlers.NewBlogHandler(c.BlogService, presenter, logger), authn, c.Redis, cfg.UploadMaxBytes))
	r.Add(modules.NewAIModule(handlers.NewAIHandler(c.GenerationService, logger), authn, c.Redis))
	r.Add(modules.NewHealthModule(handlers.NewHealthHandler(cfg.AppName, c.HealthChecks())))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(c.Redis))
	}
	if c.Images != nil && c.Images.Driver() == "local" {
		r.AddRoot(modules.NewUploadsModule(cfg.UploadsDir))
	}
}

// NewEngine returns the gin engine with global middleware and all routes.
func NewEngine(c *container.Container) *gin.Engine {
	cfg := c.Config
	validation.Init()

	r := gin.New()
	r.Use(gin.CustomRecovery(func(ctx *gin.Context, rec any) {
		if c.Logger != nil {
			c.Logger.WithField("request_id", ctx.GetString("request_id")).Errorf("panic recovered: %v", rec)
		}
		response.Abort(ctx, http.StatusInternalServerError, "internal server error", nil)
	}))
	r.Use(middleware.RequestIDMiddleware(), middleware.RealIP())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Length", middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	if cfg.HTTPLogEnabled {
		r.Use(gin.Logger())
	}
	r.NoRoute(func(ctx *gin.Context) {
		response.Error(ctx, http.StatusNotFound, "route not found", nil)
	})

	reg := NewRegistry(r)
	InitModules(reg, c)
	reg.RegisterAll()
	return r
}
