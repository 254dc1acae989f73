package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-blog/internal/application"
	"github.com/oksasatya/go-ddd-blog/pkg/response"
	"github.com/oksasatya/go-ddd-blog/pkg/validation"
)

// StatusOf maps an error kind to its HTTP status.
func StatusOf(k application.Kind) int {
	switch k {
	case application.KindValidation:
		return http.StatusBadRequest
	case application.KindAuth:
		return http.StatusUnauthorized
	case application.KindForbidden:
		return http.StatusForbidden
	case application.KindNotFound:
		return http.StatusNotFound
	case application.KindConflict:
		return http.StatusConflict
	case application.KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError translates a service error into the JSON envelope. Internal
// errors are logged and answered with a generic message.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	var appErr *application.Error
	if !errors.As(err, &appErr) || appErr.Kind == application.KindInternal {
		if logger != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"request_id": c.GetString("request_id"),
				"path":       c.FullPath(),
			}).Error("request failed")
		}
		response.Error(c, http.StatusInternalServerError, "internal server error", nil)
		return
	}

	var details any
	switch {
	case len(appErr.Fields) > 0:
		details = appErr.Fields
	case appErr.Detail != "":
		details = appErr.Detail
	}
	response.Error(c, StatusOf(appErr.Kind), appErr.Message, details)
}

// bindError answers a request body that could not be decoded or validated.
func bindError(c *gin.Context, err error) {
	response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
}
