// Copyright 2026 Lattice Works
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package minio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/lattice-works/semdex/storage"
)

// Config holds connection settings for a MinIO or S3-compatible endpoint.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Region    string
}

// ObjectStore reads document content from an S3-compatible object store.
// URIs use the form s3://bucket/key.
type ObjectStore struct {
	client *minio.Client
	logger *slog.Logger
}

var _ storage.ObjectStore = (*ObjectStore)(nil)

// Option configures an ObjectStore.
type Option func(*ObjectStore)

// WithLogger sets the logger used by the store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *ObjectStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewObjectStore connects to the configured endpoint.
func NewObjectStore(cfg Config, opts ...Option) (*ObjectStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	s := &ObjectStore{
		client: client,
		logger: slog.Default().With("component", "objectstore"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// DownloadBytes fetches the full object content for an s3:// URI.
func (s *ObjectStore) DownloadBytes(ctx context.Context, uri string) ([]byte, error) {
	bucket, key, err := splitURI(uri)
	if err != nil {
		return nil, err
	}

	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", uri, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", uri, err)
	}

	s.logger.Debug("downloaded object", "uri", uri, "bytes", len(data))
	return data, nil
}

// ContentType reports the content type recorded for the object.
func (s *ObjectStore) ContentType(ctx context.Context, uri string) (string, error) {
	bucket, key, err := splitURI(uri)
	if err != nil {
		return "", err
	}

	info, err := s.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("stat object %s: %w", uri, err)
	}
	return info.ContentType, nil
}

// splitURI parses s3://bucket/key into bucket and key.
func splitURI(uri string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return "", "", fmt.Errorf("%w: %q is not an s3 URI", storage.ErrInvalidURI, uri)
	}
	bucket, key, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("%w: %q is missing bucket or key", storage.ErrInvalidURI, uri)
	}
	return bucket, key, nil
}
