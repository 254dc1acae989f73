package modules

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-blog/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-blog/pkg/response"
)

// UploadsModule serves the local uploads directory read-only at /uploads.
type UploadsModule struct {
	Dir string
}

func NewUploadsModule(dir string) *UploadsModule { return &UploadsModule{Dir: dir} }

func (m *UploadsModule) Register(rg *gin.RouterGroup) {
	rg.GET("/uploads/:name", m.serve)
	rg.HEAD("/uploads/:name", m.serve)
}

func (m *UploadsModule) serve(c *gin.Context) {
	name := c.Param("name")
	if name == "" || strings.Contains(name, "..") || filepath.Base(name) != name {
		response.Error(c, http.StatusNotFound, "file not found", nil)
		return
	}
	p := filepath.Join(m.Dir, name)
	info, err := os.Stat(p)
	if err != nil || info.IsDir() {
		response.Error(c, http.StatusNotFound, "file not found", nil)
		return
	}
	middleware.SetImmutableHeaders(c)
	c.File(p)
}
