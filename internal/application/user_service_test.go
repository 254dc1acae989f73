package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oksasatya/go-ddd-blog/internal/domain/entity"
	"github.com/oksasatya/go-ddd-blog/internal/infrastructure/memory"
	"github.com/oksasatya/go-ddd-blog/pkg/helpers"
	"github.com/oksasatya/go-ddd-blog/pkg/mailer"
)

func TestRegisterThenLogin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	u, err := e.userSvc.Register(ctx, RegisterInput{Name: " Ann ", Email: "Ann@Example.com ", Password: "secret123"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Name != "Ann" || u.Email != "ann@example.com" || u.Role != entity.RoleUser {
		t.Fatalf("unexpected user: %+v", u)
	}
	if u.Password == "secret123" {
		t.Fatal("password stored in plaintext")
	}

	res, err := e.userSvc.Login(ctx, "ann@example.com", "secret123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Token == "" || res.User.ID != u.ID {
		t.Fatalf("bad login result: %+v", res)
	}

	id, err := e.userSvc.Authenticate(ctx, res.Token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if id.UserID != u.ID || id.Role != entity.RoleUser || id.Email != u.Email {
		t.Fatalf("identity: %+v", id)
	}

	_, err = e.userSvc.Login(ctx, "ann@example.com", "wrong-password")
	wantKind(t, err, KindAuth)
	_, err = e.userSvc.Login(ctx, "nobody@example.com", "secret123")
	wantKind(t, err, KindAuth)
	_, err = e.userSvc.Login(ctx, "", "")
	wantKind(t, err, KindValidation)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	e := newEnv(t)
	e.signup(t, "Ann", "ann@example.com")
	_, err := e.userSvc.Register(context.Background(), RegisterInput{Name: "Other", Email: "ANN@example.com", Password: "secret123"})
	wantKind(t, err, KindConflict)
}

func TestRegisterValidation(t *testing.T) {
	e := newEnv(t)
	cases := map[string]RegisterInput{
		"missing name":   {Email: "a@example.com", Password: "secret123"},
		"missing email":  {Name: "A", Password: "secret123"},
		"bad email":      {Name: "A", Email: "not-an-email", Password: "secret123"},
		"short password": {Name: "A", Email: "a@example.com", Password: "123"},
		"no password":    {Name: "A", Email: "a@example.com"},
	}
	for name, in := range cases {
		_, err := e.userSvc.Register(context.Background(), in)
		if KindOf(err) != KindValidation {
			t.Errorf("%s: expected validation error, got %v", name, err)
		}
	}
	var appErr *Error
	_, err := e.userSvc.Register(context.Background(), RegisterInput{})
	if !errors.As(err, &appErr) || len(appErr.Fields) != 3 {
		t.Fatalf("expected 3 field errors, got %v", err)
	}
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.userSvc.Authenticate(ctx, "")
	if !errors.Is(err, ErrMissingToken) {
		t.Fatalf("empty token: %v", err)
	}
	_, err = e.userSvc.Authenticate(ctx, "abc.def.ghi")
	wantKind(t, err, KindAuth)

	other := helpers.NewJWTManager("other", time.Hour, "test")
	forged, _, _ := other.GenerateToken("u1", "admin", "x@example.com")
	_, err = e.userSvc.Authenticate(ctx, forged)
	wantKind(t, err, KindAuth)
}

func TestUpdateProfile(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	ann := e.signup(t, "Ann", "ann@example.com")
	e.signup(t, "Bob", "bob@example.com")

	name := "Ann B"
	u, err := e.userSvc.UpdateProfile(ctx, ann, UpdateProfileInput{Name: &name})
	if err != nil {
		t.Fatalf("update name: %v", err)
	}
	if u.Name != "Ann B" || u.Email != "ann@example.com" {
		t.Fatalf("only name should change: %+v", u)
	}

	blank := "  "
	_, err = e.userSvc.UpdateProfile(ctx, ann, UpdateProfileInput{Name: &blank})
	wantKind(t, err, KindValidation)

	taken := "Bob@example.com"
	_, err = e.userSvc.UpdateProfile(ctx, ann, UpdateProfileInput{Email: &taken})
	wantKind(t, err, KindConflict)

	own := "ANN@example.com"
	if _, err := e.userSvc.UpdateProfile(ctx, ann, UpdateProfileInput{Email: &own}); err != nil {
		t.Fatalf("re-submitting own email: %v", err)
	}

	_, err = e.userSvc.UpdateProfile(ctx, Identity{UserID: "ghost"}, UpdateProfileInput{Name: &name})
	wantKind(t, err, KindAuth)

	got, _ := e.userSvc.GetProfile(ctx, ann)
	if got.Name != "Ann B" {
		t.Fatalf("profile not persisted: %+v", got)
	}
}

func TestListUsersRequiresAdmin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	ann := e.signup(t, "Ann", "ann@example.com")

	_, err := e.userSvc.ListUsers(ctx, ann)
	wantKind(t, err, KindForbidden)

	if _, err := e.userSvc.Promote(ctx, "ann@example.com", entity.RoleAdmin); err != nil {
		t.Fatalf("promote: %v", err)
	}
	res, err := e.userSvc.Login(ctx, "ann@example.com", "secret123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	admin, _ := e.userSvc.Authenticate(ctx, res.Token)
	if !admin.IsAdmin() {
		t.Fatalf("token should carry admin role: %+v", admin)
	}
	users, err := e.userSvc.ListUsers(ctx, admin)
	if err != nil || len(users) != 1 {
		t.Fatalf("list users: %v %v", users, err)
	}
}

func TestNotifierPublishesJobs(t *testing.T) {
	pub := &fakePublisher{}
	logger := helpers.NewDiscardLogger()
	svc := NewUserService(memory.NewUserRepository(), helpers.NewJWTManager("s", time.Hour, "t"),
		NewNotifier(pub, mailtplBrand(), true, logger), logger)
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{Name: "Ann", Email: "ann@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	name := "Annie"
	if _, err := svc.UpdateProfile(ctx, Identity{UserID: u.ID}, UpdateProfileInput{Name: &name}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(pub.jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(pub.jobs))
	}
	welcome := pub.jobs[0].(mailer.EmailJob)
	if welcome.Template != "welcome" || welcome.To != "ann@example.com" {
		t.Fatalf("welcome job: %+v", welcome)
	}
	updated := pub.jobs[1].(mailer.EmailJob)
	if updated.Template != "profile_updated" {
		t.Fatalf("update job: %+v", updated)
	}

	pub.err = errBoom
	if _, err := svc.Register(ctx, RegisterInput{Name: "Bob", Email: "bob@example.com", Password: "secret123"}); err != nil {
		t.Fatalf("publish failure must not fail register: %v", err)
	}
}
