package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type publicationRequest struct {
	Text string `json:"text"`
}

func (s *Server) createPublication(c *gin.Context) {
	var in publicationRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		abort(c, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := s.publications.Create(c.Request.Context(), callerID(c), in.Text)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": statusSuccess, "publication": p})
}

func (s *Server) showPublication(c *gin.Context) {
	p, err := s.publications.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": statusSuccess, "publication": p})
}

func (s *Server) deletePublication(c *gin.Context) {
	p, err := s.publications.Delete(c.Request.Context(), c.Param("id"), callerID(c))
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": statusSuccess, "publication": p})
}

func (s *Server) publicationsByUser(c *gin.Context) {
	page, err := s.publications.ListByAuthor(c.Request.Context(), c.Param("id"), s.pageParams(c))
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, pageBody("publications", *page))
}

func (s *Server) feed(c *gin.Context) {
	page, err := s.publications.Feed(c.Request.Context(), callerID(c), s.pageParams(c))
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, pageBody("publications", *page))
}

func (s *Server) uploadMedia(c *gin.Context) {
	file, header, ok := s.formFile(c)
	if !ok {
		return
	}
	defer file.Close()

	p, err := s.publications.AttachMedia(c.Request.Context(), c.Param("id"), callerID(c), header.Filename, file)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": statusSuccess, "publication": p})
}

func (s *Server) publicationMedia(c *gin.Context) {
	obj, err := s.publications.OpenMedia(c.Request.Context(), c.Param("file"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	serveObject(c, c.Param("file"), obj)
}
