package container

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-blog/config"
	"github.com/oksasatya/go-ddd-blog/internal/application"
	repo "github.com/oksasatya/go-ddd-blog/internal/domain/repository"
	"github.com/oksasatya/go-ddd-blog/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/go-ddd-blog/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ddd-blog/internal/infrastructure/search"
	"github.com/oksasatya/go-ddd-blog/internal/infrastructure/stability"
	imgstore "github.com/oksasatya/go-ddd-blog/internal/infrastructure/storage"
	"github.com/oksasatya/go-ddd-blog/pkg/helpers"
	mailtpl "github.com/oksasatya/go-ddd-blog/pkg/mailer/templates"
)

const gcsUploadsFolder = "uploads"

// Container holds everything built at startup. It is created once, passed
// explicitly to the router and never mutated after Wire.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger

	// Infrastructure; nil when the matching feature is disabled.
	PG     *pgxpool.Pool
	Redis  *redis.Client
	GCS    *storage.Client
	ES     *elasticsearch.Client
	Rabbit *helpers.RabbitPublisher

	JWT       *helpers.JWTManager
	Users     repo.UserRepository
	Blogs     repo.BlogRepository
	Images    repo.ImageStorage
	Index     application.BlogIndexer
	Generator application.ImageGenerator

	UserService       *application.UserService
	BlogService       *application.BlogService
	GenerationService *application.GenerationService

	closers []func()
}

// New connects the infrastructure selected by cfg and wires the services.
func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}
	if err := c.connect(ctx); err != nil {
		c.Close()
		return nil, err
	}
	c.Wire()
	return c, nil
}

func (c *Container) onClose(f func()) { c.closers = append(c.closers, f) }

func (c *Container) connect(ctx context.Context) error {
	cfg := c.Config

	switch cfg.StoreDriver {
	case "memory":
		users := memory.NewUserRepository()
		c.Users, c.Blogs = users, memory.NewBlogRepository(users)
		c.Logger.Warn("using in-memory store; data is lost on restart")
	case "postgres", "":
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		c.PG = pool
		c.onClose(pool.Close)
		if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, c.Logger); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		c.Users, c.Blogs = pginfra.NewUserRepository(pool), pginfra.NewBlogRepository(pool)
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	if cfg.RateLimitEnabled {
		rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := helpers.PingRedis(ctx, rdb); err != nil {
			// limiter fails open, keep the client so it recovers with redis
			helpers.LogWarn(c.Logger, "redis unreachable, rate limiting is degraded", err, nil)
		}
		c.Redis = rdb
		c.onClose(func() { _ = rdb.Close() })
	}

	switch cfg.StorageDriver {
	case "gcs":
		if cfg.GCSBucket == "" {
			return errors.New("STORAGE_DRIVER=gcs requires GCS_BUCKET")
		}
		client, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			return fmt.Errorf("init gcs client: %w", err)
		}
		c.GCS = client
		c.onClose(func() { _ = client.Close() })
		c.Images = imgstore.NewGCSStore(client, cfg.GCSBucket, gcsUploadsFolder)
	default:
		local, err := imgstore.NewLocalStore(cfg.UploadsDir)
		if err != nil {
			return err
		}
		c.Images = local
	}

	if cfg.SearchEnabled {
		es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			helpers.LogWarn(c.Logger, "elasticsearch disabled", err, nil)
		} else {
			c.ES = es
			c.Index = search.NewBlogIndex(es, cfg.ESBlogsIndex, c.Logger)
		}
	}

	if cfg.MailSendEnabled {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			helpers.LogWarn(c.Logger, "rabbitmq unreachable, email notifications disabled", err, nil)
		} else {
			c.Rabbit = pub
			c.onClose(pub.Close)
		}
	}

	c.Generator = stability.NewClient(cfg.StabilityAPIKey, cfg.StabilityAPIURL)
	return nil
}

// Wire builds services from the fields already set. Tests fill Users, Blogs,
// Images and Generator themselves and call Wire directly.
func (c *Container) Wire() {
	cfg := c.Config
	if c.JWT == nil {
		c.JWT = helpers.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL, cfg.AppName)
	}

	var notifier *application.Notifier
	if c.Rabbit != nil {
		brand := mailtpl.Brand{
			AppName:     cfg.AppName,
			CompanyName: cfg.CompanyName,
			LogoURL:     cfg.LogoURL,
			SupportURL:  cfg.SupportURL,
			SiteURL:     cfg.PublicBaseURL,
		}
		notifier = application.NewNotifier(c.Rabbit, brand, cfg.MailSendEnabled, c.Logger)
	}

	c.UserService = application.NewUserService(c.Users, c.JWT, notifier, c.Logger)

	resolver := application.NewImageResolver(c.Images, cfg.UploadMaxBytes, c.Logger)
	c.BlogService = application.NewBlogService(c.Blogs, resolver, c.Index, c.Logger)
	c.BlogService.EmptyMyBlogsNotFound = cfg.MyBlogsEmptyNotFound

	c.GenerationService = application.NewGenerationService(c.Generator, c.Images, cfg.StabilityBatchDelay, c.Logger)
}

// HealthChecks returns liveness probes for the connected dependencies.
func (c *Container) HealthChecks() map[string]func(ctx context.Context) error {
	checks := map[string]func(ctx context.Context) error{}
	if c.PG != nil {
		checks["postgres"] = c.PG.Ping
	}
	if c.Redis != nil {
		rdb := c.Redis
		checks["redis"] = func(ctx context.Context) error { return helpers.PingRedis(ctx, rdb) }
	}
	if c.ES != nil {
		es := c.ES
		checks["elasticsearch"] = func(ctx context.Context) error {
			res, err := es.Ping(es.Ping.WithContext(ctx))
			if err != nil {
				return err
			}
			defer func() { _ = res.Body.Close() }()
			if res.IsError() {
				return errors.New(res.Status())
			}
			return nil
		}
	}
	return checks
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
