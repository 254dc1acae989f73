package entity

import "time"

// Author is the public projection of a User attached to blog reads.
type Author struct {
	ID    string
	Name  string
	Email string
}

// Blog is a single post. AuthorID is set once at creation and never changes.
// Image is empty when the post has no picture; otherwise it is an uploads
// path, an absolute URL or an inline data URL.
type Blog struct {
	ID        string
	Title     string
	Content   string
	Image     string
	AuthorID  string
	Author    *Author
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OwnedBy reports whether userID authored the blog.
func (b *Blog) OwnedBy(userID string) bool {
	return userID != "" && b.AuthorID == userID
}
