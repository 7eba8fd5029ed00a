// Package media stores uploaded avatars and publication attachments. Objects
// are addressed by a flat file name; the backend is either a local directory
// or an S3-compatible bucket.
package media

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/gophnet/internal/common"
)

// ErrTooLarge is returned by Put when the stream exceeds maxBytes. Nothing is
// left behind in the store in that case.
var ErrTooLarge = errors.New("file too large")

// Object is an opened stored file. Callers must close Body. Size is -1 when
// the backend does not report a length.
type Object struct {
	Body io.ReadCloser
	Size int64
}

type Store interface {
	// Put stores at most maxBytes from r under name and returns the stored size.
	Put(ctx context.Context, name string, r io.Reader, maxBytes int64) (int64, error)
	// Open returns common.ErrorNotFound for unknown names.
	Open(ctx context.Context, name string) (*Object, error)
	Remove(ctx context.Context, name string) error
}

var (
	ImageExtensions = []string{"png", "jpg", "jpeg", "gif"}
	MediaExtensions = []string{"png", "jpg", "jpeg", "gif", "mp4"}
)

// Extension returns the lower-cased extension of name without the dot if it
// is one of allowed, or common.ErrValidation otherwise.
func Extension(name string, allowed []string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	for _, a := range allowed {
		if ext == a {
			return ext, nil
		}
	}
	return "", common.ErrValidation
}

// NewName builds a random object name with the given extension, prefixed by
// owner so that objects of one user stay grouped.
func NewName(owner, ext string) (string, error) {
	suffix, err := common.MakeRandHexString(8)
	if err != nil {
		return "", err
	}
	return owner + "-" + suffix + "." + ext, nil
}
