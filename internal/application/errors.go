package application

import (
	"errors"
	"strings"

	repo "github.com/oksasatya/go-ddd-blog/internal/domain/repository"
)

// Kind classifies a failure for the transport layer.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuth
	KindForbidden
	KindNotFound
	KindConflict
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUpstream:
		return "upstream"
	default:
		return "internal"
	}
}

// Error is the error type returned by every service in this package.
// Fields holds per-field validation messages; Detail holds upstream
// diagnostics that are safe to show to the caller.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Detail  string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

var (
	ErrInvalidCredentials = &Error{Kind: KindAuth, Message: "invalid credentials"}
	ErrMissingToken       = &Error{Kind: KindAuth, Message: "missing access token"}
	ErrUnknownAccount     = &Error{Kind: KindAuth, Message: "account no longer exists"}
	ErrEmailTaken         = &Error{Kind: KindConflict, Message: "email already in use"}
	ErrBlogNotFound       = &Error{Kind: KindNotFound, Message: "blog not found"}
	ErrNoBlogs            = &Error{Kind: KindNotFound, Message: "no blogs found for this user"}
	ErrNotAuthor          = &Error{Kind: KindForbidden, Message: "not authorized"}
	ErrAdminOnly          = &Error{Kind: KindForbidden, Message: "admin role required"}
	ErrImageNotFound      = &Error{Kind: KindNotFound, Message: "image not found"}
	ErrGeneratorDisabled  = &Error{Kind: KindUpstream, Message: "image generation not configured"}
)

// ValidationError builds a KindValidation error. fields may be nil.
func ValidationError(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// UpstreamError wraps a failure of an external collaborator and keeps its
// detail for diagnostics.
func UpstreamError(message string, err error) *Error {
	e := &Error{Kind: KindUpstream, Message: message, Err: err}
	if err != nil {
		e.Detail = err.Error()
	}
	return e
}

func internalError(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the caller-facing message of err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// fieldErrors accumulates per-field validation messages.
type fieldErrors map[string]string

func (f fieldErrors) requireText(field, value string) {
	if strings.TrimSpace(value) == "" {
		f[field] = "is required"
	}
}

func (f fieldErrors) err(message string) error {
	if len(f) == 0 {
		return nil
	}
	return ValidationError(message, map[string]string(f))
}

func isNotFound(err error) bool {
	return errors.Is(err, repo.ErrNotFound)
}
