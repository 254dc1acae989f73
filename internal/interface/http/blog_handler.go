package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-blog/internal/application"
	"github.com/oksasatya/go-ddd-blog/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-blog/pkg/response"
)

type BlogHandler struct {
	Svc       *application.BlogService
	Presenter BlogPresenter
	Logger    *logrus.Logger
}

func NewBlogHandler(svc *application.BlogService, presenter BlogPresenter, logger *logrus.Logger) *BlogHandler {
	return &BlogHandler{Svc: svc, Presenter: presenter, Logger: logger}
}

// createBlogRequest is the JSON form of blog creation. Multipart requests
// carry the same fields as form values plus an optional "image" file.
type createBlogRequest struct {
	Title      string `json:"title" form:"title"`
	Content    string `json:"content" form:"content"`
	AIImageURL string `json:"aiImageUrl" form:"aiImageUrl"`
}

type updateBlogRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

func (h *BlogHandler) List(c *gin.Context) {
	blogs, err := h.Svc.ListBlogs(c.Request.Context())
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, h.Presenter.Many(blogs), "blogs", map[string]any{"total": len(blogs)})
}

func (h *BlogHandler) Search(c *gin.Context) {
	q := c.Query("q")
	blogs, err := h.Svc.SearchBlogs(c.Request.Context(), q)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, h.Presenter.Many(blogs), "search results", map[string]any{"q": q, "total": len(blogs)})
}

func (h *BlogHandler) Get(c *gin.Context) {
	b, err := h.Svc.GetBlog(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, h.Presenter.One(b), "blog", nil)
}

func (h *BlogHandler) Mine(c *gin.Context) {
	blogs, err := h.Svc.ListMyBlogs(c.Request.Context(), middleware.IdentityFrom(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, h.Presenter.Many(blogs), "my blogs", map[string]any{"total": len(blogs)})
}

func (h *BlogHandler) Create(c *gin.Context) {
	in, cleanup, err := h.readCreate(c)
	if cleanup != nil {
		defer cleanup()
	}
	if err != nil {
		bindError(c, err)
		return
	}
	b, err := h.Svc.CreateBlog(c.Request.Context(), middleware.IdentityFrom(c), in)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, h.Presenter.One(b), "blog created", nil)
}

// readCreate decodes either a multipart form or a JSON body. cleanup closes
// the uploaded file when one was opened.
func (h *BlogHandler) readCreate(c *gin.Context) (application.CreateBlogInput, func(), error) {
	var req createBlogRequest
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := c.ShouldBindJSON(&req); err != nil {
			return application.CreateBlogInput{}, nil, err
		}
		return application.CreateBlogInput{
			Title:   req.Title,
			Content: req.Content,
			Image:   application.ImageInput{ExternalRef: req.AIImageURL},
		}, nil, nil
	}

	if err := c.ShouldBind(&req); err != nil {
		return application.CreateBlogInput{}, nil, err
	}
	in := application.CreateBlogInput{
		Title:   req.Title,
		Content: req.Content,
		Image:   application.ImageInput{ExternalRef: req.AIImageURL},
	}
	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return in, nil, nil
	}
	if err != nil {
		return in, nil, err
	}
	f, err := fh.Open()
	if err != nil {
		return in, nil, err
	}
	in.Image.Upload = &application.ImageUpload{Filename: fh.Filename, Size: fh.Size, Body: f}
	return in, func() { _ = f.Close() }, nil
}

func (h *BlogHandler) Update(c *gin.Context) {
	var req updateBlogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	b, err := h.Svc.UpdateBlog(c.Request.Context(), middleware.IdentityFrom(c), c.Param("id"),
		application.UpdateBlogInput{Title: req.Title, Content: req.Content})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, h.Presenter.One(b), "blog updated", nil)
}

func (h *BlogHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.Svc.DeleteBlog(c.Request.Context(), middleware.IdentityFrom(c), id); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id}, "blog deleted successfully", nil)
}
