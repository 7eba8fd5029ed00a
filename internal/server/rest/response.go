package rest

import (
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/dmitrijs2005/gophnet/internal/pagination"
	"github.com/dmitrijs2005/gophnet/internal/server/media"
	"github.com/gin-gonic/gin"
)

const (
	uploadField = "file0"
	// multipartOverhead leaves room for boundaries and part headers.
	multipartOverhead = 64 << 10
)

func pageBody[T any](key string, p pagination.Page[T]) gin.H {
	return gin.H{
		"status": statusSuccess,
		key:      p.Items,
		"total":  p.Total,
		"page":   p.Page,
		"limit":  p.Limit,
		"pages":  p.Pages,
	}
}

// formFile opens the uploaded file0 part. It answers the request itself and
// returns ok=false when there is no usable file.
func (s *Server) formFile(c *gin.Context) (multipart.File, *multipart.FileHeader, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUploadSize+multipartOverhead)

	file, header, err := c.Request.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(c, media.ErrTooLarge)
			return nil, nil, false
		}
		abort(c, http.StatusBadRequest, "no file uploaded")
		return nil, nil, false
	}

	return file, header, true
}

func serveObject(c *gin.Context, name string, obj *media.Object) {
	defer obj.Body.Close()

	ct := mime.TypeByExtension(filepath.Ext(name))
	if ct == "" {
		ct = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, obj.Size, ct, obj.Body, nil)
}
