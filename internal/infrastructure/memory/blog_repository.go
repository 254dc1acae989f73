package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/go-ddd-blog/internal/domain/entity"
	"github.com/oksasatya/go-ddd-blog/internal/domain/repository"
)

// BlogRepository keeps blogs in a map and projects authors from Users.
type BlogRepository struct {
	Users repository.UserRepository

	mu    sync.RWMutex
	blogs map[string]*entity.Blog
	seq   int64
	order map[string]int64
}

func NewBlogRepository(users repository.UserRepository) *BlogRepository {
	return &BlogRepository{Users: users, blogs: map[string]*entity.Blog{}, order: map[string]int64{}}
}

func (r *BlogRepository) project(ctx context.Context, b *entity.Blog) *entity.Blog {
	c := *b
	c.Author = &entity.Author{ID: b.AuthorID}
	if r.Users != nil {
		if u, err := r.Users.GetByID(ctx, b.AuthorID); err == nil {
			c.Author.Name, c.Author.Email = u.Name, u.Email
		}
	}
	return &c
}

// sorted returns matching blogs newest first; insertion order breaks timestamp ties.
func (r *BlogRepository) sorted(ctx context.Context, keep func(*entity.Blog) bool) []*entity.Blog {
	r.mu.RLock()
	matched := make([]*entity.Blog, 0, len(r.blogs))
	seq := make(map[string]int64, len(r.blogs))
	for id, b := range r.blogs {
		if keep(b) {
			c := *b
			matched = append(matched, &c)
			seq[id] = r.order[id]
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return seq[matched[i].ID] > seq[matched[j].ID] })
	out := make([]*entity.Blog, len(matched))
	for i, b := range matched {
		out[i] = r.project(ctx, b)
	}
	return out
}

func (r *BlogRepository) Create(_ context.Context, b *entity.Blog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	b.ID = uuid.NewString()
	b.CreatedAt, b.UpdatedAt = now, now
	c := *b
	c.Author = nil
	r.seq++
	r.blogs[b.ID] = &c
	r.order[b.ID] = r.seq
	return nil
}

func (r *BlogRepository) GetByID(ctx context.Context, id string) (*entity.Blog, error) {
	r.mu.RLock()
	b, ok := r.blogs[id]
	r.mu.RUnlock()
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.project(ctx, b), nil
}

func (r *BlogRepository) GetByIDs(ctx context.Context, ids []string) ([]*entity.Blog, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	return r.sorted(ctx, func(b *entity.Blog) bool { return want[b.ID] }), nil
}

func (r *BlogRepository) List(ctx context.Context) ([]*entity.Blog, error) {
	return r.sorted(ctx, func(*entity.Blog) bool { return true }), nil
}

func (r *BlogRepository) ListByAuthor(ctx context.Context, authorID string) ([]*entity.Blog, error) {
	return r.sorted(ctx, func(b *entity.Blog) bool { return b.AuthorID == authorID }), nil
}

func (r *BlogRepository) Search(ctx context.Context, q string, limit int) ([]*entity.Blog, error) {
	q = strings.ToLower(q)
	out := r.sorted(ctx, func(b *entity.Blog) bool {
		return strings.Contains(strings.ToLower(b.Title), q) || strings.Contains(strings.ToLower(b.Content), q)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *BlogRepository) Update(_ context.Context, b *entity.Blog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.blogs[b.ID]
	if !ok {
		return repository.ErrNotFound
	}
	b.UpdatedAt = time.Now()
	cur.Title, cur.Content, cur.Image, cur.UpdatedAt = b.Title, b.Content, b.Image, b.UpdatedAt
	return nil
}

func (r *BlogRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.blogs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.blogs, id)
	delete(r.order, id)
	return nil
}

var _ repository.BlogRepository = (*BlogRepository)(nil)
