package application

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	repo "github.com/oksasatya/go-ddd-blog/internal/domain/repository"
)

var allowedUploadExt = map[string]string{
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".png":  "image/png",
}

// ImageUpload is a file attached directly to a blog-creation request.
type ImageUpload struct {
	Filename string
	Size     int64
	Body     io.Reader
}

// ImageInput holds the two optional image channels of a blog-creation request.
type ImageInput struct {
	Upload      *ImageUpload
	ExternalRef string
}

// ImageResolver decides the image value persisted on a new blog.
// Precedence: direct upload, then external reference, then none. When both
// channels are supplied the upload wins and the reference is ignored.
type ImageResolver struct {
	Storage  repo.ImageStorage
	MaxBytes int64
	Logger   *logrus.Logger

	now func() time.Time
}

func NewImageResolver(storage repo.ImageStorage, maxBytes int64, logger *logrus.Logger) *ImageResolver {
	return &ImageResolver{Storage: storage, MaxBytes: maxBytes, Logger: logger, now: time.Now}
}

// CheckUpload validates an upload without storing it.
func (r *ImageResolver) CheckUpload(up *ImageUpload) (ext string, err error) {
	ext = strings.ToLower(filepath.Ext(up.Filename))
	if _, ok := allowedUploadExt[ext]; !ok {
		return "", ValidationError("Only .jpeg, .jpg, .png files are allowed!", map[string]string{"image": "unsupported file type"})
	}
	if r.MaxBytes > 0 && up.Size > r.MaxBytes {
		return "", ValidationError("image too large", map[string]string{"image": fmt.Sprintf("must be at most %d bytes", r.MaxBytes)})
	}
	return ext, nil
}

// Resolve returns the value to persist in Blog.Image, storing the upload if present.
// An empty string means the blog has no image.
func (r *ImageResolver) Resolve(ctx context.Context, in ImageInput) (string, error) {
	if in.Upload != nil {
		ext, err := r.CheckUpload(in.Upload)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(in.ExternalRef) != "" && r.Logger != nil {
			r.Logger.WithField("filename", in.Upload.Filename).Info("both upload and external image supplied; using upload")
		}
		name := r.uploadName(ext)
		ref, err := r.Storage.Save(ctx, name, allowedUploadExt[ext], in.Upload.Body)
		if err != nil {
			return "", internalError("store upload", err)
		}
		if r.Logger != nil {
			r.Logger.WithFields(logrus.Fields{"name": name, "ref": ref}).Debug("upload stored")
		}
		return ref, nil
	}
	if ref := strings.TrimSpace(in.ExternalRef); ref != "" {
		return ref, nil
	}
	return "", nil
}

// uploadName is <unix-millis>-<8 hex><ext>.
func (r *ImageResolver) uploadName(ext string) string {
	return fmt.Sprintf("%d-%s%s", r.now().UnixMilli(), strings.ReplaceAll(uuid.NewString(), "-", "")[:8], ext)
}
