package handlers

import (
	"time"

	"github.com/oksasatya/go-ddd-blog/internal/domain/entity"
	"github.com/oksasatya/go-ddd-blog/pkg/helpers"
)

type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toUserResponse(u *entity.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type authorResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// blogResponse carries the stored image reference and its fetchable form.
// Both are null when the blog has no image.
type blogResponse struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Content   string          `json:"content"`
	Image     *string         `json:"image"`
	ImageURL  *string         `json:"image_url"`
	Author    *authorResponse `json:"author"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// BlogPresenter renders blogs with image references resolved against PublicBaseURL.
type BlogPresenter struct {
	PublicBaseURL string
}

func (p BlogPresenter) One(b *entity.Blog) blogResponse {
	out := blogResponse{
		ID:        b.ID,
		Title:     b.Title,
		Content:   b.Content,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
	if b.Image != "" {
		img := b.Image
		resolved := helpers.ResolveImageURL(p.PublicBaseURL, img)
		out.Image, out.ImageURL = &img, &resolved
	}
	if b.Author != nil {
		out.Author = &authorResponse{ID: b.Author.ID, Name: b.Author.Name, Email: b.Author.Email}
	} else {
		out.Author = &authorResponse{ID: b.AuthorID}
	}
	return out
}

func (p BlogPresenter) Many(blogs []*entity.Blog) []blogResponse {
	out := make([]blogResponse, 0, len(blogs))
	for _, b := range blogs {
		out = append(out, p.One(b))
	}
	return out
}
