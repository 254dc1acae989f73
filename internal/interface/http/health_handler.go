package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-blog/pkg/response"
)

// HealthHandler reports liveness of the dependencies named in Checks.
type HealthHandler struct {
	AppName string
	Started time.Time
	Checks  map[string]func(ctx context.Context) error
}

func NewHealthHandler(appName string, checks map[string]func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{AppName: appName, Started: time.Now(), Checks: checks}
}

// Health always answers 200; degraded dependencies are listed, not fatal.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := "OK"
	deps := make(map[string]string, len(h.Checks))
	for name, ping := range h.Checks {
		if err := ping(ctx); err != nil {
			deps[name] = "down: " + err.Error()
			status = "DEGRADED"
			continue
		}
		deps[name] = "up"
	}
	response.Success(c, http.StatusOK, gin.H{
		"status":       status,
		"service":      h.AppName,
		"uptime":       time.Since(h.Started).Round(time.Second).String(),
		"dependencies": deps,
	}, "Server is running", nil)
}
