package rest

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophnet/internal/common"
	"github.com/dmitrijs2005/gophnet/internal/server/media"
	"github.com/gin-gonic/gin"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

func abort(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, gin.H{"status": statusError, "message": msg})
}

// errorStatus maps a service error to an HTTP status and a client-safe message.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrValidation),
		errors.Is(err, common.ErrSelfFollow),
		errors.Is(err, common.ErrEmptyFollowSet):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrInvalidID):
		return http.StatusBadRequest, "invalid id"
	case errors.Is(err, media.ErrTooLarge):
		return http.StatusBadRequest, "file too large"
	case errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, common.ErrConflict):
		return http.StatusConflict, "already exists"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// writeError answers with the mapped status. Unexpected errors are logged
// with the request path and never leak to the client.
func (s *Server) writeError(c *gin.Context, err error) {
	code, msg := errorStatus(err)
	if code == http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "request failed", "path", c.Request.URL.Path, "error", err)
	}
	abort(c, code, msg)
}
