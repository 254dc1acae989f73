package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-blog/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-blog/internal/domain/repository"
	"github.com/oksasatya/go-ddd-blog/pkg/helpers"
	"github.com/oksasatya/go-ddd-blog/pkg/validation"
)

// Identity is the acting user extracted from a verified bearer token.
type Identity struct {
	UserID string
	Role   entity.Role
	Email  string
}

func (i Identity) IsAdmin() bool { return i.Role == entity.RoleAdmin }

// UserService owns registration, login, token verification and profiles.
type UserService struct {
	Repo     repo.UserRepository
	JWT      *helpers.JWTManager
	Notifier *Notifier
	Logger   *logrus.Logger

	validate *validator.Validate
}

func NewUserService(repo repo.UserRepository, jwt *helpers.JWTManager, notifier *Notifier, logger *logrus.Logger) *UserService {
	return &UserService{
		Repo:     repo,
		JWT:      jwt,
		Notifier: notifier,
		Logger:   logger,
		validate: validation.New(),
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginResult struct {
	User      *entity.User
	Token     string
	ExpiresAt time.Time
}

// UpdateProfileInput carries optional fields; nil means leave unchanged.
type UpdateProfileInput struct {
	Name  *string
	Email *string
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserService) checkEmail(fe fieldErrors, email string) {
	if email == "" {
		fe["email"] = "is required"
		return
	}
	if err := s.validate.Var(email, "email"); err != nil {
		fe["email"] = "must be a valid email"
	}
}

// Register creates an account with the default role.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)

	fe := fieldErrors{}
	fe.requireText("name", name)
	s.checkEmail(fe, email)
	switch {
	case in.Password == "":
		fe["password"] = "is required"
	case len(in.Password) < validation.MinPasswordLength:
		fe["password"] = "is too short"
	}
	if err := fe.err("invalid registration"); err != nil {
		return nil, err
	}

	if existing, err := s.Repo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, ErrEmailTaken
	} else if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, internalError("lookup user", err)
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, internalError("hash password", err)
	}
	u := &entity.User{Name: name, Email: email, Password: hash, Role: entity.RoleUser}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, internalError("create user", err)
	}
	count("users_registered")
	helpers.LogInfo(s.Logger, "user registered", logrus.Fields{"user_id": u.ID})

	s.Notifier.Welcome(ctx, u)
	return u, nil
}

// CheckCredentials validates email/password and returns the user without issuing a token.
func (s *UserService) CheckCredentials(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil || u == nil {
		return nil, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, ValidationError("email and password are required", nil)
	}
	u, err := s.CheckCredentials(ctx, email, password)
	if err != nil {
		return nil, err
	}
	token, exp, err := s.JWT.GenerateToken(u.ID, string(u.Role), u.Email)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		}
		return nil, internalError("issue token", err)
	}
	return &LoginResult{User: u, Token: token, ExpiresAt: exp}, nil
}

// Authenticate turns a bearer token into the acting identity. It does not
// touch the store.
func (s *UserService) Authenticate(ctx context.Context, token string) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, ErrMissingToken
	}
	claims, err := s.JWT.ParseToken(token)
	if err != nil {
		return Identity{}, &Error{Kind: KindAuth, Message: "invalid access token", Err: err}
	}
	role := entity.Role(claims.Role)
	if !role.Valid() {
		role = entity.RoleUser
	}
	return Identity{UserID: claims.UserID, Role: role, Email: claims.Email}, nil
}

func (s *UserService) GetProfile(ctx context.Context, id Identity) (*entity.User, error) {
	if id.UserID == "" {
		return nil, ErrMissingToken
	}
	u, err := s.Repo.GetByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUnknownAccount
		}
		return nil, internalError("load profile", err)
	}
	return u, nil
}

// UpdateProfile applies the provided fields only. A provided field must not be blank.
func (s *UserService) UpdateProfile(ctx context.Context, id Identity, in UpdateProfileInput) (*entity.User, error) {
	u, err := s.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	fe := fieldErrors{}
	var name, email string
	if in.Name != nil {
		name = strings.TrimSpace(*in.Name)
		fe.requireText("name", name)
	}
	if in.Email != nil {
		email = normalizeEmail(*in.Email)
		s.checkEmail(fe, email)
	}
	if err := fe.err("invalid profile"); err != nil {
		return nil, err
	}

	changes := map[string]string{}
	if in.Name != nil && name != u.Name {
		u.Name = name
		changes["name"] = name
	}
	if in.Email != nil && email != u.Email {
		other, err := s.Repo.GetByEmail(ctx, email)
		if err == nil && other != nil && other.ID != u.ID {
			return nil, ErrEmailTaken
		}
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return nil, internalError("lookup user", err)
		}
		u.Email = email
		changes["email"] = email
	}
	if len(changes) == 0 {
		return u, nil
	}

	if err := s.Repo.Update(ctx, u); err != nil {
		switch {
		case errors.Is(err, repo.ErrDuplicateEmail):
			return nil, ErrEmailTaken
		case errors.Is(err, repo.ErrNotFound):
			return nil, ErrUnknownAccount
		}
		return nil, internalError("update profile", err)
	}

	s.Notifier.ProfileUpdated(ctx, u, changes)
	return u, nil
}

// ListUsers is restricted to admins.
func (s *UserService) ListUsers(ctx context.Context, id Identity) ([]*entity.User, error) {
	if id.UserID == "" {
		return nil, ErrMissingToken
	}
	if !id.IsAdmin() {
		return nil, ErrAdminOnly
	}
	users, err := s.Repo.List(ctx)
	if err != nil {
		return nil, internalError("list users", err)
	}
	return users, nil
}

// Promote sets the role of the account with the given email. Used by the seed tool.
func (s *UserService) Promote(ctx context.Context, email string, role entity.Role) (*entity.User, error) {
	if !role.Valid() {
		return nil, ValidationError("unknown role", map[string]string{"role": "must be one of: user, admin"})
	}
	u, err := s.Repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, &Error{Kind: KindNotFound, Message: "user not found"}
		}
		return nil, internalError("lookup user", err)
	}
	if u.Role == role {
		return u, nil
	}
	u.Role = role
	if err := s.Repo.Update(ctx, u); err != nil {
		return nil, internalError("update role", err)
	}
	return u, nil
}
