package storage

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// FileStore is an ObjectStore backed by the local filesystem. URIs are
// either plain paths or file:// URIs. Paths are resolved against the
// configured root when one is set.
type FileStore struct {
	root string
}

var _ ObjectStore = (*FileStore)(nil)

// NewFileStore creates a FileStore. An empty root resolves paths as given.
func NewFileStore(root string) *FileStore {
	return &FileStore{root: root}
}

// DownloadBytes reads the file content.
func (s *FileStore) DownloadBytes(_ context.Context, uri string) ([]byte, error) {
	path, err := s.resolve(uri)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, uri)
		}
		return nil, fmt.Errorf("read file %s: %w", uri, err)
	}
	return data, nil
}

// ContentType guesses the content type from the file extension.
func (s *FileStore) ContentType(_ context.Context, uri string) (string, error) {
	path, err := s.resolve(uri)
	if err != nil {
		return "", err
	}
	return mime.TypeByExtension(filepath.Ext(path)), nil
}

func (s *FileStore) resolve(uri string) (string, error) {
	path := strings.TrimPrefix(uri, "file://")
	if path == "" {
		return "", fmt.Errorf("%w: empty path", ErrInvalidURI)
	}
	if s.root != "" && !filepath.IsAbs(path) {
		path = filepath.Join(s.root, path)
	}
	return path, nil
}
