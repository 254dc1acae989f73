package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-ddd-blog/internal/domain/entity"
	"github.com/oksasatya/go-ddd-blog/internal/domain/repository"
)

type BlogRepository struct {
	pool *pgxpool.Pool
}

func NewBlogRepository(pool *pgxpool.Pool) *BlogRepository {
	return &BlogRepository{pool: pool}
}

// blogSelect joins the author projection; never selects the password hash.
const blogSelect = `
	SELECT b.id, b.title, b.content, b.image, b.author_id, b.created_at, b.updated_at,
	       u.name, u.email
	FROM blogs b
	JOIN users u ON u.id = b.author_id`

func scanBlog(row pgx.Row) (*entity.Blog, error) {
	b := &entity.Blog{Author: &entity.Author{}}
	var image *string
	if err := row.Scan(&b.ID, &b.Title, &b.Content, &image, &b.AuthorID, &b.CreatedAt, &b.UpdatedAt,
		&b.Author.Name, &b.Author.Email); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if image != nil {
		b.Image = *image
	}
	b.Author.ID = b.AuthorID
	return b, nil
}

func (r *BlogRepository) query(ctx context.Context, sql string, args ...any) ([]*entity.Blog, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Blog
	for rows.Next() {
		b, err := scanBlog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *BlogRepository) Create(ctx context.Context, b *entity.Blog) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO blogs (title, content, image, author_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, b.Title, b.Content, nullable(b.Image), b.AuthorID)
	return row.Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

func (r *BlogRepository) GetByID(ctx context.Context, id string) (*entity.Blog, error) {
	return scanBlog(r.pool.QueryRow(ctx, blogSelect+` WHERE b.id = $1`, id))
}

func (r *BlogRepository) GetByIDs(ctx context.Context, ids []string) ([]*entity.Blog, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.query(ctx, blogSelect+` WHERE b.id = ANY($1::uuid[]) ORDER BY b.created_at DESC`, ids)
}

func (r *BlogRepository) List(ctx context.Context) ([]*entity.Blog, error) {
	return r.query(ctx, blogSelect+` ORDER BY b.created_at DESC`)
}

func (r *BlogRepository) ListByAuthor(ctx context.Context, authorID string) ([]*entity.Blog, error) {
	return r.query(ctx, blogSelect+` WHERE b.author_id = $1 ORDER BY b.created_at DESC`, authorID)
}

// escapeLike escapes LIKE metacharacters so q matches literally.
func escapeLike(q string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(q)
}

func (r *BlogRepository) Search(ctx context.Context, q string, limit int) ([]*entity.Blog, error) {
	pattern := "%" + escapeLike(q) + "%"
	return r.query(ctx, blogSelect+`
		WHERE b.title ILIKE $1 OR b.content ILIKE $1
		ORDER BY b.created_at DESC
		LIMIT $2`, pattern, limit)
}

func (r *BlogRepository) Update(ctx context.Context, b *entity.Blog) error {
	b.UpdatedAt = time.Now()
	res, err := r.pool.Exec(ctx, `
		UPDATE blogs
		SET title = $1, content = $2, image = $3, updated_at = $4
		WHERE id = $5
	`, b.Title, b.Content, nullable(b.Image), b.UpdatedAt, b.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *BlogRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM blogs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.BlogRepository = (*BlogRepository)(nil)
