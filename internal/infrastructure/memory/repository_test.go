package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/oksasatya/go-ddd-blog/internal/domain/entity"
	"github.com/oksasatya/go-ddd-blog/internal/domain/repository"
)

func TestUserRepositoryUniqueEmail(t *testing.T) {
	r := NewUserRepository()
	ctx := context.Background()

	a := &entity.User{Name: "A", Email: "a@example.com", Password: "h"}
	if err := r.Create(ctx, a); err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.ID == "" || a.Role != entity.RoleUser {
		t.Fatalf("defaults not set: %+v", a)
	}
	if err := r.Create(ctx, &entity.User{Name: "B", Email: "a@example.com"}); !errors.Is(err, repository.ErrDuplicateEmail) {
		t.Fatalf("duplicate: %v", err)
	}

	b := &entity.User{Name: "B", Email: "b@example.com"}
	_ = r.Create(ctx, b)
	b.Email = "a@example.com"
	if err := r.Update(ctx, b); !errors.Is(err, repository.ErrDuplicateEmail) {
		t.Fatalf("update to taken email: %v", err)
	}
	b.Email = "c@example.com"
	if err := r.Update(ctx, b); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := r.GetByEmail(ctx, "b@example.com"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("old email still indexed: %v", err)
	}
	got, err := r.GetByEmail(ctx, "c@example.com")
	if err != nil || got.ID != b.ID {
		t.Fatalf("new email lookup: %v %v", got, err)
	}

	got.Name = "mutated"
	again, _ := r.GetByID(ctx, b.ID)
	if again.Name == "mutated" {
		t.Fatal("repository returned shared pointer")
	}
}

func TestBlogRepository(t *testing.T) {
	users := NewUserRepository()
	r := NewBlogRepository(users)
	ctx := context.Background()

	ann := &entity.User{Name: "Ann", Email: "ann@example.com"}
	_ = users.Create(ctx, ann)

	first := &entity.Blog{Title: "first", Content: "hello", AuthorID: ann.ID}
	second := &entity.Blog{Title: "second", Content: "World news", AuthorID: ann.ID}
	other := &entity.Blog{Title: "other", Content: "x", AuthorID: "someone"}
	for _, b := range []*entity.Blog{first, second, other} {
		if err := r.Create(ctx, b); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	got, err := r.GetByID(ctx, first.ID)
	if err != nil || got.Author.Name != "Ann" || got.Author.Email != "ann@example.com" {
		t.Fatalf("author projection: %+v %v", got, err)
	}

	mine, _ := r.ListByAuthor(ctx, ann.ID)
	if len(mine) != 2 || mine[0].ID != second.ID {
		t.Fatalf("list by author newest first: %v", mine)
	}

	hits, _ := r.Search(ctx, "world", 10)
	if len(hits) != 1 || hits[0].ID != second.ID {
		t.Fatalf("search: %v", hits)
	}

	byIDs, _ := r.GetByIDs(ctx, []string{first.ID, "missing"})
	if len(byIDs) != 1 {
		t.Fatalf("get by ids: %v", byIDs)
	}

	first.Title = "first!"
	if err := r.Update(ctx, first); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = r.GetByID(ctx, first.ID)
	if got.Title != "first!" || got.AuthorID != ann.ID {
		t.Fatalf("after update: %+v", got)
	}

	if err := r.Delete(ctx, first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := r.Delete(ctx, first.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
	if err := r.Update(ctx, first); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("update deleted: %v", err)
	}
}
