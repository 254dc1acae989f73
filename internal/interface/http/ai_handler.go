package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-blog/internal/application"
	"github.com/oksasatya/go-ddd-blog/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-blog/pkg/response"
)

type AIHandler struct {
	Svc    *application.GenerationService
	Logger *logrus.Logger
}

func NewAIHandler(svc *application.GenerationService, logger *logrus.Logger) *AIHandler {
	return &AIHandler{Svc: svc, Logger: logger}
}

type generateRequest struct {
	Prompt string `json:"prompt"`
	Width  int    `json:"width" binding:"omitempty,min=64,max=2048"`
	Height int    `json:"height" binding:"omitempty,min=64,max=2048"`
	Steps  int    `json:"steps" binding:"omitempty,min=1,max=150"`
}

type batchRequest struct {
	Prompts []string `json:"prompts"`
}

type generatedImageResponse struct {
	Filename  string    `json:"filename"`
	URL       string    `json:"url"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

func (h *AIHandler) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	img, err := h.Svc.Generate(c.Request.Context(), application.GenerateInput{
		Prompt: req.Prompt, Width: req.Width, Height: req.Height, Steps: req.Steps,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"image":      img.DataURL,
		"imageUrl":   img.ImageRef,
		"fileName":   img.FileName,
		"prompt":     img.Prompt,
		"dimensions": img.Dimensions,
	}, "Image generated successfully", nil)
}

func (h *AIHandler) GenerateBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	res, err := h.Svc.GenerateBatch(c.Request.Context(), req.Prompts)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, res, "batch finished", nil)
}

func (h *AIHandler) ListImages(c *gin.Context) {
	imgs, err := h.Svc.ListGenerated(c.Request.Context())
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	out := make([]generatedImageResponse, 0, len(imgs))
	for _, im := range imgs {
		out = append(out, generatedImageResponse{Filename: im.Name, URL: im.URL, Size: im.Size, CreatedAt: im.CreatedAt})
	}
	response.Success(c, http.StatusOK, out, "generated images", map[string]any{"count": len(out)})
}

func (h *AIHandler) DeleteImage(c *gin.Context) {
	name := c.Param("filename")
	if err := h.Svc.DeleteGenerated(c.Request.Context(), middleware.IdentityFrom(c), name); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"filename": name}, "Image deleted successfully", nil)
}

func (h *AIHandler) Health(c *gin.Context) {
	response.Success(c, http.StatusOK, h.Svc.Health(), "", nil)
}
