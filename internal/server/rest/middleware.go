package rest

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophnet/internal/common"
	"github.com/dmitrijs2005/gophnet/internal/server/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	claimsKey = "claims"
	entityKey = "entity"
)

type entityKind string

const (
	entityUser        entityKind = "user"
	entityPublication entityKind = "publication"
)

// selector tells requireEntity where the entity id comes from.
type selector int

const (
	fromPath selector = iota
	fromCaller
)

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
		)
	}
}

// bearerToken extracts the token from an Authorization header value. Quotes
// are dropped and the "Bearer " scheme is optional.
func bearerToken(header string) string {
	token := strings.NewReplacer(`"`, "", "'", "").Replace(header)
	token = strings.TrimSpace(token)
	if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}

// requireAuth validates the identity token and stores its claims. Every
// failure is answered with 403; only the message tells expired from invalid.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader(common.AuthorizationHeaderName))
		if token == "" {
			abort(c, http.StatusForbidden, "authorization header not present")
			return
		}

		claims, err := s.tokens.Validate(token)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, common.ErrTokenExpired) {
				msg = "token has expired"
			}
			abort(c, http.StatusForbidden, msg)
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// requireEntity makes sure the referenced entity exists and stores it. It
// does not check that the caller owns it.
func (s *Server) requireEntity(kind entityKind, sel selector) gin.HandlerFunc {
	return func(c *gin.Context) {
		var id string
		switch sel {
		case fromPath:
			id = c.Param("id")
		case fromCaller:
			id = callerID(c)
		}

		if _, err := uuid.Parse(id); err != nil {
			abort(c, http.StatusBadRequest, "invalid id")
			return
		}

		var (
			entity any
			err    error
		)
		switch kind {
		case entityUser:
			entity, err = s.users.Get(c.Request.Context(), id)
		case entityPublication:
			entity, err = s.publications.Get(c.Request.Context(), id)
		}

		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				abort(c, http.StatusNotFound, string(kind)+" not found")
				return
			}
			s.logger.Error(c.Request.Context(), "entity lookup failed", "kind", kind, "id", id, "error", err)
			abort(c, http.StatusInternalServerError, "internal error")
			return
		}

		c.Set(entityKey, entity)
		c.Next()
	}
}

func claims(c *gin.Context) *auth.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	cl, _ := v.(*auth.Claims)
	return cl
}

func callerID(c *gin.Context) string {
	if cl := claims(c); cl != nil {
		return cl.UserID
	}
	return ""
}
