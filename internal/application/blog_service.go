package application

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-blog/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-blog/internal/domain/repository"
	"github.com/oksasatya/go-ddd-blog/pkg/helpers"
)

const searchLimit = 50

// BlogIndexer mirrors blogs into a full-text index. Index failures never
// fail the write that caused them.
type BlogIndexer interface {
	Index(ctx context.Context, b *entity.Blog) error
	Remove(ctx context.Context, id string) error
	Search(ctx context.Context, q string, size int) ([]string, error)
}

// BlogService enforces authoring and ownership rules on blogs.
type BlogService struct {
	Blogs  repo.BlogRepository
	Images *ImageResolver
	Index  BlogIndexer // optional
	Logger *logrus.Logger

	// EmptyMyBlogsNotFound makes ListMyBlogs fail with ErrNoBlogs on an empty result.
	EmptyMyBlogsNotFound bool
}

func NewBlogService(blogs repo.BlogRepository, images *ImageResolver, index BlogIndexer, logger *logrus.Logger) *BlogService {
	return &BlogService{Blogs: blogs, Images: images, Index: index, Logger: logger}
}

type CreateBlogInput struct {
	Title   string
	Content string
	Image   ImageInput
}

// UpdateBlogInput carries optional fields; nil means leave unchanged.
type UpdateBlogInput struct {
	Title   *string
	Content *string
}

func requireIdentity(id Identity) error {
	if id.UserID == "" {
		return ErrMissingToken
	}
	return nil
}

func (s *BlogService) CreateBlog(ctx context.Context, id Identity, in CreateBlogInput) (*entity.Blog, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)
	fe := fieldErrors{}
	fe.requireText("title", title)
	fe.requireText("content", content)
	if err := fe.err("title and content are required"); err != nil {
		return nil, err
	}

	image, err := s.Images.Resolve(ctx, in.Image)
	if err != nil {
		return nil, err
	}

	b := &entity.Blog{Title: title, Content: content, Image: image, AuthorID: id.UserID}
	if err := s.Blogs.Create(ctx, b); err != nil {
		return nil, internalError("create blog", err)
	}
	// reload for the author projection
	if full, err := s.Blogs.GetByID(ctx, b.ID); err == nil {
		b = full
	}
	count("blogs_created")
	helpers.LogInfo(s.Logger, "blog created", logrus.Fields{"blog_id": b.ID, "author_id": id.UserID})
	s.index(ctx, b)
	return b, nil
}

func (s *BlogService) ListBlogs(ctx context.Context) ([]*entity.Blog, error) {
	blogs, err := s.Blogs.List(ctx)
	if err != nil {
		return nil, internalError("list blogs", err)
	}
	return nonNil(blogs), nil
}

func (s *BlogService) GetBlog(ctx context.Context, blogID string) (*entity.Blog, error) {
	if _, err := uuid.Parse(blogID); err != nil {
		return nil, ErrBlogNotFound
	}
	b, err := s.Blogs.GetByID(ctx, blogID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrBlogNotFound
		}
		return nil, internalError("get blog", err)
	}
	return b, nil
}

func (s *BlogService) ListMyBlogs(ctx context.Context, id Identity) ([]*entity.Blog, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	blogs, err := s.Blogs.ListByAuthor(ctx, id.UserID)
	if err != nil {
		return nil, internalError("list my blogs", err)
	}
	if len(blogs) == 0 && s.EmptyMyBlogsNotFound {
		return nil, ErrNoBlogs
	}
	return nonNil(blogs), nil
}

// owned loads a blog and checks that id authored it.
func (s *BlogService) owned(ctx context.Context, id Identity, blogID string) (*entity.Blog, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	b, err := s.GetBlog(ctx, blogID)
	if err != nil {
		return nil, err
	}
	if !b.OwnedBy(id.UserID) {
		return nil, ErrNotAuthor
	}
	return b, nil
}

func (s *BlogService) UpdateBlog(ctx context.Context, id Identity, blogID string, in UpdateBlogInput) (*entity.Blog, error) {
	b, err := s.owned(ctx, id, blogID)
	if err != nil {
		return nil, err
	}

	fe := fieldErrors{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		fe.requireText("title", title)
		b.Title = title
	}
	if in.Content != nil {
		content := strings.TrimSpace(*in.Content)
		fe.requireText("content", content)
		b.Content = content
	}
	if err := fe.err("title and content must not be blank"); err != nil {
		return nil, err
	}

	if err := s.Blogs.Update(ctx, b); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrBlogNotFound
		}
		return nil, internalError("update blog", err)
	}
	count("blogs_updated")
	s.index(ctx, b)
	return b, nil
}

func (s *BlogService) DeleteBlog(ctx context.Context, id Identity, blogID string) error {
	b, err := s.owned(ctx, id, blogID)
	if err != nil {
		return err
	}
	if err := s.Blogs.Delete(ctx, b.ID); err != nil && !errors.Is(err, repo.ErrNotFound) {
		return internalError("delete blog", err)
	}
	count("blogs_deleted")
	helpers.LogInfo(s.Logger, "blog deleted", logrus.Fields{"blog_id": b.ID, "author_id": id.UserID})
	if s.Index != nil {
		if err := s.Index.Remove(ctx, b.ID); err != nil {
			helpers.LogWarn(s.Logger, "search index remove failed", err, logrus.Fields{"blog_id": b.ID})
		}
	}
	return nil
}

// SearchBlogs matches q against title and content. The full-text index is
// used when present; the store is searched when it is absent or failing.
func (s *BlogService) SearchBlogs(ctx context.Context, q string) ([]*entity.Blog, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, ValidationError("query is required", map[string]string{"q": "is required"})
	}
	if s.Index != nil {
		ids, err := s.Index.Search(ctx, q, searchLimit)
		if err == nil {
			blogs, err := s.Blogs.GetByIDs(ctx, ids)
			if err != nil {
				return nil, internalError("load search hits", err)
			}
			return nonNil(orderByIDs(blogs, ids)), nil
		}
		helpers.LogWarn(s.Logger, "search index query failed, falling back to store", err, logrus.Fields{"q": q})
	}
	blogs, err := s.Blogs.Search(ctx, q, searchLimit)
	if err != nil {
		return nil, internalError("search blogs", err)
	}
	return nonNil(blogs), nil
}

func (s *BlogService) index(ctx context.Context, b *entity.Blog) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Index(ctx, b); err != nil {
		helpers.LogWarn(s.Logger, "search index update failed", err, logrus.Fields{"blog_id": b.ID})
	}
}

// orderByIDs returns blogs in the order of ids, dropping ids with no blog.
func orderByIDs(blogs []*entity.Blog, ids []string) []*entity.Blog {
	byID := make(map[string]*entity.Blog, len(blogs))
	for _, b := range blogs {
		byID[b.ID] = b
	}
	out := make([]*entity.Blog, 0, len(ids))
	for _, id := range ids {
		if b, ok := byID[id]; ok {
			out = append(out, b)
		}
	}
	return out
}

func nonNil(blogs []*entity.Blog) []*entity.Blog {
	if blogs == nil {
		return []*entity.Blog{}
	}
	return blogs
}
