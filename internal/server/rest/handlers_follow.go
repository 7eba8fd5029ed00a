package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophnet/internal/common"
	"github.com/dmitrijs2005/gophnet/internal/pagination"
	"github.com/dmitrijs2005/gophnet/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type followRequest struct {
	FollowedUser string `json:"followed_user"`
}

func (s *Server) follow(c *gin.Context) {
	var in followRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		abort(c, http.StatusBadRequest, "invalid request body")
		return
	}

	d, err := s.follows.Follow(c.Request.Context(), callerID(c), in.FollowedUser)
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			abort(c, http.StatusBadRequest, "you are already following this user")
			return
		}
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": statusSuccess, "follow": d})
}

func (s *Server) unfollow(c *gin.Context) {
	if err := s.follows.Unfollow(c.Request.Context(), callerID(c), c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": statusSuccess, "message": "unfollowed"})
}

func (s *Server) following(c *gin.Context) {
	s.listFollows(c, s.follows.ListFollowing)
}

func (s *Server) followers(c *gin.Context) {
	s.listFollows(c, s.follows.ListFollowers)
}

type listFollowsFunc = func(ctx context.Context, viewerID, userID string, p pagination.Params) (*services.FollowList, error)

// listFollows lists edges of :id, or of the caller when :id is absent.
func (s *Server) listFollows(c *gin.Context, list listFollowsFunc) {
	viewer := callerID(c)
	userID := c.Param("id")
	if userID == "" {
		userID = viewer
	}
	if _, err := uuid.Parse(userID); err != nil {
		s.writeError(c, common.ErrInvalidID)
		return
	}

	res, err := list(c.Request.Context(), viewer, userID, s.pageParams(c))
	if err != nil {
		s.writeError(c, err)
		return
	}

	body := pageBody("follows", res.Page)
	body["related"] = res.Related
	c.JSON(http.StatusOK, body)
}
