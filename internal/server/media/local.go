package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/dmitrijs2005/gophnet/internal/common"
	"github.com/dmitrijs2005/gophnet/internal/filex"
)

// LocalStore keeps objects as files in a single directory.
type LocalStore struct {
	dir string
}

// NewLocalStore creates dir if needed; relative paths are resolved against
// the working directory.
func NewLocalStore(dir string) (*LocalStore, error) {
	abs, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, err
	}
	return &LocalStore{dir: abs}, nil
}

func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) Put(ctx context.Context, name string, r io.Reader, maxBytes int64) (int64, error) {
	path, err := filex.SafeJoin(s.dir, name)
	if err != nil {
		return 0, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o640)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", name, err)
	}

	n, err := io.Copy(f, io.LimitReader(r, maxBytes+1))
	closeErr := f.Close()

	switch {
	case err != nil:
		_ = os.Remove(path)
		return 0, fmt.Errorf("write %s: %w", name, err)
	case closeErr != nil:
		_ = os.Remove(path)
		return 0, fmt.Errorf("close %s: %w", name, closeErr)
	case n > maxBytes:
		_ = os.Remove(path)
		return 0, ErrTooLarge
	}

	return n, nil
}

func (s *LocalStore) Open(ctx context.Context, name string) (*Object, error) {
	path, err := filex.SafeJoin(s.dir, name)
	if err != nil {
		return nil, common.ErrorNotFound
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, common.ErrorNotFound
		}
		return nil, err
	}

	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if st.IsDir() {
		_ = f.Close()
		return nil, common.ErrorNotFound
	}

	return &Object{Body: f, Size: st.Size()}, nil
}

// Remove deletes name; a missing file is not an error.
func (s *LocalStore) Remove(ctx context.Context, name string) error {
	path, err := filex.SafeJoin(s.dir, name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
