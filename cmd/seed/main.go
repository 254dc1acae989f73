package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-ddd-blog/config"
	"github.com/oksasatya/go-ddd-blog/internal/application"
	"github.com/oksasatya/go-ddd-blog/internal/domain/entity"
	pginfra "github.com/oksasatya/go-ddd-blog/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ddd-blog/pkg/helpers"
)

// seed creates (or promotes) an admin account and optionally a sample post.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	name := flag.String("name", "Admin", "admin display name")
	email := flag.String("email", "admin@example.com", "admin email")
	password := flag.String("password", "password123", "admin password")
	sample := flag.Bool("sample", true, "create a sample blog post")
	flag.Parse()

	ctx := context.Background()
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()
	if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	users := pginfra.NewUserRepository(pool)
	jwt := helpers.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL, cfg.AppName)
	svc := application.NewUserService(users, jwt, nil, logger)

	_, err = svc.Register(ctx, application.RegisterInput{Name: *name, Email: *email, Password: *password})
	switch application.KindOf(err) {
	case application.KindConflict:
		fmt.Printf("user %s already exists\n", *email)
	default:
		if err != nil {
			log.Fatalf("failed to seed user: %v", err)
		}
		fmt.Printf("seeded user: email=%s name=%s password=%s\n", *email, *name, *password)
	}

	admin, err := svc.Promote(ctx, *email, entity.RoleAdmin)
	if err != nil {
		log.Fatalf("failed to assign admin role: %v", err)
	}
	fmt.Printf("admin role ensured for id=%s\n", admin.ID)

	if !*sample {
		return
	}
	blogs := pginfra.NewBlogRepository(pool)
	existing, err := blogs.ListByAuthor(ctx, admin.ID)
	if err != nil {
		log.Fatalf("failed to list blogs: %v", err)
	}
	if len(existing) > 0 {
		fmt.Println("sample blog skipped: admin already has posts")
		return
	}
	b := &entity.Blog{
		Title:    "Welcome to the blog",
		Content:  "This post was created by the seed tool. Edit or delete it from your dashboard.",
		AuthorID: admin.ID,
	}
	if err := blogs.Create(ctx, b); err != nil {
		log.Fatalf("failed to seed blog: %v", err)
	}
	fmt.Printf("seeded blog: id=%s\n", b.ID)
}
