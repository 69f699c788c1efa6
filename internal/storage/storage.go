// Package storage keeps the bytes of uploaded files. Rows in the database only
// reference blobs by key, the original file name never reaches the backend.
package storage

import (
	"context"
	"errors"
	"io"
)

var ErrNotExist = errors.New("blob does not exist")

type Storage interface {
	// Put stores size bytes read from r under key, replacing any previous blob
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// Open returns a reader over the blob. Returns ErrNotExist if it's missing
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Stat returns the size of the blob. Returns ErrNotExist if it's missing
	Stat(ctx context.Context, key string) (int64, error)
	Delete(ctx context.Context, key string) error
}

func validKey(key string) bool {
	if key == "" || key == "." || key == ".." {
		return false
	}

	for _, r := range key {
		if r == '/' || r == '\\' || r == 0 {
			return false
		}
	}

	return true
}

var errBadKey = errors.New("invalid blob key")
