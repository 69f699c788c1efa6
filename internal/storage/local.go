package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
)

// Local stores blobs as flat files inside a directory
type Local struct {
	fs afero.Fs
}

// NewLocal creates the directory if needed and confines every access to it
func NewLocal(path string) (*Local, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory, %w", err)
	}

	return &Local{fs: afero.NewBasePathFs(afero.NewOsFs(), path)}, nil
}

// NewLocalFs uses fs as is. Tests pass an afero.MemMapFs.
func NewLocalFs(fs afero.Fs) *Local {
	return &Local{fs: fs}
}

func (l *Local) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	if !validKey(key) {
		return errBadKey
	}

	tmp := key + ".part"

	f, err := l.fs.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create blob, %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		l.fs.Remove(tmp)
		return fmt.Errorf("failed to write blob, %w", err)
	}

	if err := f.Close(); err != nil {
		l.fs.Remove(tmp)
		return fmt.Errorf("failed to write blob, %w", err)
	}

	if err := l.fs.Rename(tmp, key); err != nil {
		l.fs.Remove(tmp)
		return fmt.Errorf("failed to move blob into place, %w", err)
	}

	return nil
}

func (l *Local) Open(_ context.Context, key string) (io.ReadCloser, error) {
	if !validKey(key) {
		return nil, errBadKey
	}

	f, err := l.fs.Open(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotExist
		}
		return nil, fmt.Errorf("failed to open blob, %w", err)
	}

	return f, nil
}

func (l *Local) Stat(_ context.Context, key string) (int64, error) {
	if !validKey(key) {
		return 0, errBadKey
	}

	info, err := l.fs.Stat(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, ErrNotExist
		}
		return 0, fmt.Errorf("failed to stat blob, %w", err)
	}

	return info.Size(), nil
}

func (l *Local) Delete(_ context.Context, key string) error {
	if !validKey(key) {
		return errBadKey
	}

	err := l.fs.Remove(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotExist
		}
		return fmt.Errorf("failed to delete blob, %w", err)
	}

	return nil
}
