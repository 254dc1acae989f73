package application

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-blog/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-blog/internal/domain/repository"
	"github.com/oksasatya/go-ddd-blog/pkg/helpers"
)

const (
	GeneratedPrefix = "ai-image-"
	MaxBatchPrompts = 5

	defaultWidth  = 1024
	defaultHeight = 1024
	defaultSteps  = 30
)

// ImageGenerator is the text-to-image collaborator.
type ImageGenerator interface {
	Configured() bool
	TextToImage(ctx context.Context, prompt string, width, height, steps int) ([]byte, error)
}

// GenerationService produces images from prompts and keeps them in the uploads area.
type GenerationService struct {
	Generator  ImageGenerator
	Storage    repo.ImageStorage
	BatchDelay time.Duration
	Logger     *logrus.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewGenerationService(gen ImageGenerator, storage repo.ImageStorage, batchDelay time.Duration, logger *logrus.Logger) *GenerationService {
	return &GenerationService{
		Generator:  gen,
		Storage:    storage,
		BatchDelay: batchDelay,
		Logger:     logger,
		now:        time.Now,
		sleep:      sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type GenerateInput struct {
	Prompt string
	Width  int
	Height int
	Steps  int
}

type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type GeneratedImage struct {
	DataURL    string
	ImageRef   string
	FileName   string
	Prompt     string
	Dimensions Dimensions
}

type BatchItem struct {
	Success  bool   `json:"success"`
	Prompt   string `json:"prompt"`
	FileName string `json:"filename,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
	Error    string `json:"error,omitempty"`
}

type BatchResult struct {
	Results    []BatchItem `json:"results"`
	Total      int         `json:"total"`
	Successful int         `json:"successful"`
	Failed     int         `json:"failed"`
}

type GenerationHealth struct {
	Status     string `json:"status"`
	Service    string `json:"service"`
	Configured bool   `json:"stabilityApiConfigured"`
	Storage    string `json:"storage"`
}

func (in *GenerateInput) applyDefaults() {
	if in.Width <= 0 {
		in.Width = defaultWidth
	}
	if in.Height <= 0 {
		in.Height = defaultHeight
	}
	if in.Steps <= 0 {
		in.Steps = defaultSteps
	}
}

func (s *GenerationService) configured() bool {
	return s.Generator != nil && s.Generator.Configured()
}

// Generate calls the generator once and stores the PNG as ai-image-<millis>.png.
func (s *GenerationService) Generate(ctx context.Context, in GenerateInput) (*GeneratedImage, error) {
	in.Prompt = strings.TrimSpace(in.Prompt)
	if in.Prompt == "" {
		return nil, ValidationError("Prompt is required", map[string]string{"prompt": "is required"})
	}
	if !s.configured() {
		return nil, ErrGeneratorDisabled
	}
	in.applyDefaults()

	name := fmt.Sprintf("%s%d.png", GeneratedPrefix, s.now().UnixMilli())
	return s.generate(ctx, in, name)
}

func (s *GenerationService) generate(ctx context.Context, in GenerateInput, name string) (*GeneratedImage, error) {
	png, err := s.Generator.TextToImage(ctx, in.Prompt, in.Width, in.Height, in.Steps)
	if err != nil {
		count("generation_failures")
		helpers.LogWarn(s.Logger, "image generation failed", err, logrus.Fields{"file": name})
		return nil, generatorError(err)
	}
	if len(png) == 0 {
		count("generation_failures")
		return nil, UpstreamError("No image generated", nil)
	}
	ref, err := s.Storage.Save(ctx, name, "image/png", bytes.NewReader(png))
	if err != nil {
		return nil, internalError("store generated image", err)
	}
	count("images_generated")
	helpers.LogInfo(s.Logger, "image generated", logrus.Fields{"file": name, "bytes": len(png)})
	return &GeneratedImage{
		DataURL:    "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
		ImageRef:   ref,
		FileName:   name,
		Prompt:     in.Prompt,
		Dimensions: Dimensions{Width: in.Width, Height: in.Height},
	}, nil
}

// upstreamReport is implemented by generator errors that carry the API's own message and body.
type upstreamReport interface {
	UpstreamMessage() string
	UpstreamBody() string
}

func generatorError(err error) *Error {
	e := UpstreamError("Failed to generate image", err)
	var rep upstreamReport
	if errors.As(err, &rep) {
		e.Message = rep.UpstreamMessage()
		e.Detail = rep.UpstreamBody()
	}
	return e
}

// GenerateBatch runs prompts one after another with BatchDelay between calls.
// A failing prompt is reported in its item and does not stop the batch.
func (s *GenerationService) GenerateBatch(ctx context.Context, prompts []string) (*BatchResult, error) {
	if len(prompts) == 0 {
		return nil, ValidationError("Prompts array is required", map[string]string{"prompts": "is required"})
	}
	if len(prompts) > MaxBatchPrompts {
		return nil, ValidationError(fmt.Sprintf("Maximum %d prompts allowed per batch", MaxBatchPrompts),
			map[string]string{"prompts": fmt.Sprintf("must contain at most %d items", MaxBatchPrompts)})
	}
	if !s.configured() {
		return nil, ErrGeneratorDisabled
	}

	res := &BatchResult{Results: make([]BatchItem, 0, len(prompts)), Total: len(prompts)}
	for i, p := range prompts {
		item := BatchItem{Prompt: p}
		in := GenerateInput{Prompt: strings.TrimSpace(p)}
		in.applyDefaults()
		if in.Prompt == "" {
			item.Error = "prompt is required"
		} else {
			name := fmt.Sprintf("%s%d-%d.png", GeneratedPrefix, s.now().UnixMilli(), i)
			img, err := s.generate(ctx, in, name)
			if err != nil {
				item.Error = MessageOf(err)
			} else {
				item.Success = true
				item.FileName = img.FileName
				item.ImageURL = img.ImageRef
			}
		}
		if item.Success {
			res.Successful++
		} else {
			res.Failed++
		}
		res.Results = append(res.Results, item)

		if i < len(prompts)-1 {
			if err := s.sleep(ctx, s.BatchDelay); err != nil {
				break
			}
		}
	}
	return res, nil
}

// ListGenerated returns stored generated images, newest first.
func (s *GenerationService) ListGenerated(ctx context.Context) ([]entity.StoredImage, error) {
	imgs, err := s.Storage.List(ctx, GeneratedPrefix)
	if err != nil {
		return nil, internalError("list generated images", err)
	}
	out := make([]entity.StoredImage, 0, len(imgs))
	for _, im := range imgs {
		if strings.HasSuffix(im.Name, ".png") {
			out = append(out, im)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ValidGeneratedName reports whether name is a bare ai-image-*.png file name.
func ValidGeneratedName(name string) bool {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return false
	}
	return path.Base(name) == name && strings.HasPrefix(name, GeneratedPrefix) && strings.HasSuffix(name, ".png")
}

// DeleteGenerated removes a generated image. Admin only.
func (s *GenerationService) DeleteGenerated(ctx context.Context, id Identity, name string) error {
	if err := requireIdentity(id); err != nil {
		return err
	}
	if !id.IsAdmin() {
		return ErrAdminOnly
	}
	if !ValidGeneratedName(name) {
		return ValidationError("Invalid filename", map[string]string{"filename": "must be an ai-image-*.png file name"})
	}
	if err := s.Storage.Delete(ctx, name); err != nil {
		if isNotFound(err) {
			return ErrImageNotFound
		}
		return internalError("delete generated image", err)
	}
	helpers.LogInfo(s.Logger, "generated image deleted", logrus.Fields{"file": name, "by": id.UserID})
	return nil
}

func (s *GenerationService) Health() GenerationHealth {
	driver := ""
	if s.Storage != nil {
		driver = s.Storage.Driver()
	}
	return GenerationHealth{Status: "OK", Service: "Stability AI Image Generation", Configured: s.configured(), Storage: driver}
}
