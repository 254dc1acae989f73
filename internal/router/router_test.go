package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-blog/config"
	"github.com/oksasatya/go-ddd-blog/internal/container"
	"github.com/oksasatya/go-ddd-blog/internal/infrastructure/memory"
	"github.com/oksasatya/go-ddd-blog/internal/infrastructure/storage"
)

type stubGenerator struct{}

func (stubGenerator) Configured() bool { return true }

func (stubGenerator) TextToImage(context.Context, string, int, int, int) ([]byte, error) {
	return []byte("\x89PNG"), nil
}

type envelope struct {
	Status  int             `json:"status"`
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

type blogJSON struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Image    *string `json:"image"`
	ImageURL *string `json:"image_url"`
	Author   struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"author"`
}

type server struct {
	t       *testing.T
	engine  *gin.Engine
	uploads string
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := filepath.Join(t.TempDir(), "uploads")
	local, err := storage.NewLocalStore(dir)
	if err != nil {
		t.Fatalf("local store: %v", err)
	}
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	users := memory.NewUserRepository()
	c := &container.Container{
		Config: &config.Config{
			AppName:            "blog-test",
			JWTSecret:          "test-secret",
			JWTTTL:             time.Hour,
			CORSAllowedOrigins: "http://localhost:5173",
			PublicBaseURL:      "http://api.test",
			UploadsDir:         dir,
			UploadMaxBytes:     1 << 20,
		},
		Logger:    logger,
		Users:     users,
		Blogs:     memory.NewBlogRepository(users),
		Images:    local,
		Generator: stubGenerator{},
	}
	c.Wire()
	return &server{t: t, engine: NewEngine(c), uploads: dir}
}

func (s *server) do(method, path, token string, body io.Reader, contentType string) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			s.t.Fatalf("%s %s: decode: %v (%s)", method, path, err, w.Body.String())
		}
	}
	return w, env
}

func (s *server) json(method, path, token string, payload any) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	var body io.Reader
	if payload != nil {
		b, _ := json.Marshal(payload)
		body = bytes.NewReader(b)
	}
	return s.do(method, path, token, body, "application/json")
}

// signup registers and logs in, returning the bearer token.
func (s *server) signup(name, email string) string {
	s.t.Helper()
	w, _ := s.json(http.MethodPost, "/api/users/register", "", map[string]string{"name": name, "email": email, "password": "secret123"})
	if w.Code != http.StatusCreated {
		s.t.Fatalf("register %s: %d %s", email, w.Code, w.Body.String())
	}
	w, env := s.json(http.MethodPost, "/api/users/login", "", map[string]string{"email": email, "password": "secret123"})
	if w.Code != http.StatusOK {
		s.t.Fatalf("login %s: %d %s", email, w.Code, w.Body.String())
	}
	var out struct {
		Token string `json:"token"`
	}
	_ = json.Unmarshal(env.Data, &out)
	if out.Token == "" {
		s.t.Fatal("login returned no token")
	}
	return out.Token
}

func decodeBlog(t *testing.T, env envelope) blogJSON {
	t.Helper()
	var b blogJSON
	if err := json.Unmarshal(env.Data, &b); err != nil {
		t.Fatalf("decode blog: %v", err)
	}
	return b
}

func multipartBlog(t *testing.T, fields map[string]string, fileName string, file []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	if fileName != "" {
		fw, err := mw.CreateFormFile("image", fileName)
		if err != nil {
			t.Fatal(err)
		}
		_, _ = fw.Write(file)
	}
	_ = mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestUserFlow(t *testing.T) {
	s := newServer(t)
	token := s.signup("Ann", "Ann@Example.com")

	w, env := s.json(http.MethodGet, "/api/users/profile", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("profile: %d", w.Code)
	}
	var u struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	_ = json.Unmarshal(env.Data, &u)
	if u.Email != "ann@example.com" || u.Role != "user" {
		t.Fatalf("profile = %+v", u)
	}
	if strings.Contains(w.Body.String(), "secret123") || strings.Contains(w.Body.String(), "password") {
		t.Fatal("profile leaks the password")
	}

	if w, _ := s.json(http.MethodPost, "/api/users/register", "", map[string]string{"name": "x", "email": "ann@example.com", "password": "secret123"}); w.Code != http.StatusConflict {
		t.Fatalf("duplicate register: %d", w.Code)
	}
	if w, env := s.json(http.MethodPost, "/api/users/register", "", map[string]string{"name": "x", "email": "nope", "password": "1"}); w.Code != http.StatusBadRequest || env.Success {
		t.Fatalf("invalid register: %d", w.Code)
	}
	if w, _ := s.json(http.MethodPost, "/api/users/login", "", map[string]string{"email": "ann@example.com", "password": "wrong"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: %d", w.Code)
	}
	if w, _ := s.json(http.MethodGet, "/api/users/profile", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous profile: %d", w.Code)
	}
	if w, _ := s.json(http.MethodGet, "/api/users/profile", "garbage", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: %d", w.Code)
	}

	w, env = s.json(http.MethodPut, "/api/users/editProfile", token, map[string]string{"name": "Annie"})
	if w.Code != http.StatusOK || !strings.Contains(string(env.Data), `"Annie"`) {
		t.Fatalf("edit profile: %d %s", w.Code, w.Body.String())
	}
	if w, _ := s.json(http.MethodGet, "/api/users", token, nil); w.Code != http.StatusForbidden {
		t.Fatalf("user list as non-admin: %d", w.Code)
	}
}

func TestBlogLifecycle(t *testing.T) {
	s := newServer(t)
	ann := s.signup("Ann", "ann@example.com")
	bob := s.signup("Bob", "bob@example.com")

	w, env := s.json(http.MethodGet, "/api/blogs/myblogs", ann, nil)
	if w.Code != http.StatusOK || string(env.Data) != "[]" {
		t.Fatalf("empty myblogs: %d %s", w.Code, env.Data)
	}

	if w, _ := s.json(http.MethodPost, "/api/blogs", "", map[string]string{"title": "t", "content": "c"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous create: %d", w.Code)
	}
	if w, _ := s.json(http.MethodPost, "/api/blogs", ann, map[string]string{"title": "t"}); w.Code != http.StatusBadRequest {
		t.Fatalf("missing content: %d", w.Code)
	}

	w, env = s.json(http.MethodPost, "/api/blogs", ann, map[string]string{"title": "Plain", "content": "no picture"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	plain := decodeBlog(t, env)
	if plain.Image != nil || plain.ImageURL != nil {
		t.Fatalf("image should be null: %+v", plain)
	}
	if plain.Author.Name != "Ann" || plain.Author.Email != "ann@example.com" {
		t.Fatalf("author = %+v", plain.Author)
	}

	w, env = s.json(http.MethodGet, "/api/blogs/"+plain.ID, "", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"image":null`) {
		t.Fatalf("get: %d %s", w.Code, w.Body.String())
	}

	w, _ = s.json(http.MethodPut, "/api/blogs/"+plain.ID, bob, map[string]string{"title": "hijack"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("foreign update: %d", w.Code)
	}
	if w, _ := s.json(http.MethodDelete, "/api/blogs/"+plain.ID, bob, nil); w.Code != http.StatusForbidden {
		t.Fatalf("foreign delete: %d", w.Code)
	}

	w, env = s.json(http.MethodPut, "/api/blogs/"+plain.ID, ann, map[string]string{"title": "Renamed"})
	if w.Code != http.StatusOK {
		t.Fatalf("update: %d %s", w.Code, w.Body.String())
	}
	if b := decodeBlog(t, env); b.Title != "Renamed" {
		t.Fatalf("title = %q", b.Title)
	}

	if w, _ := s.json(http.MethodDelete, "/api/blogs/"+plain.ID, ann, nil); w.Code != http.StatusOK {
		t.Fatalf("delete: %d", w.Code)
	}
	if w, _ := s.json(http.MethodGet, "/api/blogs/"+plain.ID, "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("get deleted: %d", w.Code)
	}
	if w, _ := s.json(http.MethodGet, "/api/blogs/not-a-uuid", "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("malformed id: %d", w.Code)
	}
}

func TestBlogImages(t *testing.T) {
	s := newServer(t)
	ann := s.signup("Ann", "ann@example.com")

	body, ct := multipartBlog(t, map[string]string{
		"title":      "With upload",
		"content":    "cat",
		"aiImageUrl": "https://cdn.example.com/ignored.png",
	}, "cat.png", []byte("\x89PNGdata"))
	w, env := s.do(http.MethodPost, "/api/blogs", ann, body, ct)
	if w.Code != http.StatusCreated {
		t.Fatalf("multipart create: %d %s", w.Code, w.Body.String())
	}
	up := decodeBlog(t, env)
	if up.Image == nil || !strings.HasPrefix(*up.Image, "/uploads/") || !strings.HasSuffix(*up.Image, ".png") {
		t.Fatalf("upload should win: %+v", up.Image)
	}
	if *up.ImageURL != "http://api.test"+*up.Image {
		t.Fatalf("image_url = %q", *up.ImageURL)
	}

	name := strings.TrimPrefix(*up.Image, "/uploads/")
	if _, err := os.Stat(filepath.Join(s.uploads, name)); err != nil {
		t.Fatalf("uploaded file missing: %v", err)
	}
	w, _ = s.do(http.MethodGet, *up.Image, "", nil, "")
	if w.Code != http.StatusOK || w.Body.String() != "\x89PNGdata" {
		t.Fatalf("serve upload: %d", w.Code)
	}
	if cc := w.Header().Get("Cache-Control"); !strings.Contains(cc, "max-age=31536000") {
		t.Fatalf("cache-control = %q", cc)
	}
	if w, _ := s.do(http.MethodGet, "/uploads/missing.png", "", nil, ""); w.Code != http.StatusNotFound {
		t.Fatalf("missing upload: %d", w.Code)
	}

	body, ct = multipartBlog(t, map[string]string{"title": "t", "content": "c"}, "notes.txt", []byte("text"))
	if w, _ := s.do(http.MethodPost, "/api/blogs", ann, body, ct); w.Code != http.StatusBadRequest {
		t.Fatalf("bad extension: %d", w.Code)
	}

	w, env = s.json(http.MethodPost, "/api/blogs", ann, map[string]string{
		"title": "Generated", "content": "ai", "aiImageUrl": "/uploads/ai-image-1.png",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("ai create: %d", w.Code)
	}
	ai := decodeBlog(t, env)
	if *ai.Image != "/uploads/ai-image-1.png" || *ai.ImageURL != "http://api.test/uploads/ai-image-1.png" {
		t.Fatalf("ai image = %q / %q", *ai.Image, *ai.ImageURL)
	}

	w, env = s.json(http.MethodGet, "/api/blogs", "", nil)
	var list []blogJSON
	_ = json.Unmarshal(env.Data, &list)
	if w.Code != http.StatusOK || len(list) != 2 || list[0].ID != ai.ID {
		t.Fatalf("list newest first: %d %+v", w.Code, list)
	}
}

func TestGeneratedImages(t *testing.T) {
	s := newServer(t)
	token := s.signup("Ann", "ann@example.com")

	if w, _ := s.json(http.MethodPost, "/api/ai/generate-image", "", map[string]string{"prompt": "fox"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous generate: %d", w.Code)
	}
	if w, _ := s.json(http.MethodPost, "/api/ai/generate-image", token, map[string]string{}); w.Code != http.StatusBadRequest {
		t.Fatalf("missing prompt: %d", w.Code)
	}
	w, env := s.json(http.MethodPost, "/api/ai/generate-image", token, map[string]string{"prompt": "fox"})
	if w.Code != http.StatusOK {
		t.Fatalf("generate: %d %s", w.Code, w.Body.String())
	}
	var gen struct {
		Image    string `json:"image"`
		ImageURL string `json:"imageUrl"`
		FileName string `json:"fileName"`
	}
	_ = json.Unmarshal(env.Data, &gen)
	if !strings.HasPrefix(gen.Image, "data:image/png;base64,") || gen.ImageURL != "/uploads/"+gen.FileName {
		t.Fatalf("generated = %+v", gen)
	}

	w, env = s.json(http.MethodGet, "/api/ai/images", token, nil)
	if w.Code != http.StatusOK || !strings.Contains(string(env.Data), gen.FileName) {
		t.Fatalf("list images: %d %s", w.Code, env.Data)
	}
	if w, _ := s.json(http.MethodDelete, "/api/ai/images/"+gen.FileName, token, nil); w.Code != http.StatusForbidden {
		t.Fatalf("delete as non-admin: %d", w.Code)
	}

	if w, _ := s.json(http.MethodGet, "/api/ai/health", "", nil); w.Code != http.StatusOK {
		t.Fatalf("ai health: %d", w.Code)
	}
}

func TestHealthAndNoRoute(t *testing.T) {
	s := newServer(t)

	w, env := s.json(http.MethodGet, "/api/health", "", nil)
	if w.Code != http.StatusOK || !env.Success || !strings.Contains(string(env.Data), `"status":"OK"`) {
		t.Fatalf("health: %d %s", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("missing X-Request-ID")
	}

	w, env = s.json(http.MethodGet, "/api/nope", "", nil)
	if w.Code != http.StatusNotFound || env.Success || env.Error == "" {
		t.Fatalf("no route: %d %s", w.Code, w.Body.String())
	}
}
