package repository

import (
	"context"

	"github.com/oksasatya/go-ddd-blog/internal/domain/entity"
)

// BlogRepository persists blogs. Reads populate Blog.Author and return
// newest posts first.
type BlogRepository interface {
	Create(ctx context.Context, b *entity.Blog) error
	GetByID(ctx context.Context, id string) (*entity.Blog, error)
	GetByIDs(ctx context.Context, ids []string) ([]*entity.Blog, error)
	List(ctx context.Context) ([]*entity.Blog, error)
	ListByAuthor(ctx context.Context, authorID string) ([]*entity.Blog, error)
	Search(ctx context.Context, q string, limit int) ([]*entity.Blog, error)
	// Update writes title, content and image; last write wins.
	Update(ctx context.Context, b *entity.Blog) error
	Delete(ctx context.Context, id string) error
}
