package rest

import (
	"net/http"

	"github.com/dmitrijs2005/gophnet/internal/server/services"
	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) register(c *gin.Context) {
	var in services.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		abort(c, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.users.Register(c.Request.Context(), in)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": statusSuccess, "user": user})
}

func (s *Server) login(c *gin.Context) {
	var in loginRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		abort(c, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := s.users.Login(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": statusSuccess, "user": res.User, "token": res.Token})
}

func (s *Server) profile(c *gin.Context) {
	p, err := s.users.Profile(c.Request.Context(), callerID(c), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      statusSuccess,
		"user":        p.User,
		"following":   p.Mutual.Following,
		"followed_by": p.Mutual.FollowedBy,
	})
}

func (s *Server) listUsers(c *gin.Context) {
	list, err := s.users.List(c.Request.Context(), callerID(c), s.pageParams(c))
	if err != nil {
		s.writeError(c, err)
		return
	}

	body := pageBody("users", list.Page)
	body["related"] = list.Related
	c.JSON(http.StatusOK, body)
}

func (s *Server) updateUser(c *gin.Context) {
	var in services.UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		abort(c, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.users.Update(c.Request.Context(), callerID(c), in)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": statusSuccess, "user": user})
}

func (s *Server) uploadAvatar(c *gin.Context) {
	file, header, ok := s.formFile(c)
	if !ok {
		return
	}
	defer file.Close()

	user, err := s.users.SetAvatar(c.Request.Context(), callerID(c), header.Filename, file)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": statusSuccess, "user": user})
}

func (s *Server) avatar(c *gin.Context) {
	obj, err := s.users.OpenAvatar(c.Request.Context(), c.Param("file"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	serveObject(c, c.Param("file"), obj)
}

// counters reports totals for :id, or for the caller when :id is absent.
func (s *Server) counters(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		id = callerID(c)
	}

	counters, err := s.users.Counters(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": statusSuccess, "counters": counters})
}
