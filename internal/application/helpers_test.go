package application

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/oksasatya/go-ddd-blog/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-blog/internal/domain/repository"
	"github.com/oksasatya/go-ddd-blog/internal/infrastructure/memory"
	"github.com/oksasatya/go-ddd-blog/pkg/helpers"
	mailtpl "github.com/oksasatya/go-ddd-blog/pkg/mailer/templates"
)

// fakeStorage is an in-memory ImageStorage.
type fakeStorage struct {
	mu      sync.Mutex
	files   map[string][]byte
	created map[string]time.Time
	saveErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{files: map[string][]byte{}, created: map[string]time.Time{}}
}

func (s *fakeStorage) Driver() string { return "fake" }

func (s *fakeStorage) Save(_ context.Context, name, _ string, r io.Reader) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = b
	s.created[name] = time.Now()
	return "/uploads/" + name, nil
}

func (s *fakeStorage) List(_ context.Context, prefix string) ([]entity.StoredImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.StoredImage
	for name, b := range s.files {
		if strings.HasPrefix(name, prefix) {
			out = append(out, entity.StoredImage{Name: name, URL: "/uploads/" + name, Size: int64(len(b)), CreatedAt: s.created[name]})
		}
	}
	return out, nil
}

func (s *fakeStorage) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[name]; !ok {
		return repo.ErrNotFound
	}
	delete(s.files, name)
	return nil
}

func (s *fakeStorage) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

type fakePublisher struct {
	mu   sync.Mutex
	jobs []any
	err  error
}

func (p *fakePublisher) PublishJSON(_ context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, body)
	return nil
}

type env struct {
	users   *memory.UserRepository
	blogs   *memory.BlogRepository
	store   *fakeStorage
	userSvc *UserService
	blogSvc *BlogService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	logger := helpers.NewDiscardLogger()
	users := memory.NewUserRepository()
	blogs := memory.NewBlogRepository(users)
	store := newFakeStorage()
	jwt := helpers.NewJWTManager("test-secret", time.Hour, "test")
	return &env{
		users:   users,
		blogs:   blogs,
		store:   store,
		userSvc: NewUserService(users, jwt, nil, logger),
		blogSvc: NewBlogService(blogs, NewImageResolver(store, 1<<20, logger), nil, logger),
	}
}

// signup registers a user and returns its identity.
func (e *env) signup(t *testing.T, name, email string) Identity {
	t.Helper()
	u, err := e.userSvc.Register(context.Background(), RegisterInput{Name: name, Email: email, Password: "secret123"})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return Identity{UserID: u.ID, Role: u.Role, Email: u.Email}
}

func wantKind(t *testing.T, err error, k Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", k)
	}
	if got := KindOf(err); got != k {
		t.Fatalf("expected %s error, got %s (%v)", k, got, err)
	}
}

func png() *bytes.Reader { return bytes.NewReader([]byte("\x89PNG fake")) }

var errBoom = errors.New("boom")

func mailtplBrand() mailtpl.Brand { return mailtpl.Brand{AppName: "test"} }
