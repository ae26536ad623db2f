package writer

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// Sink stores one named artifact.
type Sink interface {
	Put(ctx context.Context, name string, data []byte) error
	Location(name string) string
}

// LocalSink writes artifacts into a directory, creating it if absent.
type LocalSink struct {
	Dir string
}

// NewLocalSink creates a sink rooted at dir.
func NewLocalSink(dir string) *LocalSink {
	return &LocalSink{Dir: dir}
}

// Put writes data to Dir/name.
func (s *LocalSink) Put(_ context.Context, name string, data []byte) error {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("could not create output directory %s: %w", s.Dir, err)
	}

	if err := os.WriteFile(s.Location(name), data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// Location returns the file path for name.
func (s *LocalSink) Location(name string) string {
	return filepath.Join(s.Dir, name)
}

// GCSSink publishes artifacts as objects in a Cloud Storage bucket.
type GCSSink struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCSSink connects to Cloud Storage. credentialsFile may be empty to use
// application default credentials.
func NewGCSSink(ctx context.Context, bucket, prefix, credentialsFile string) (*GCSSink, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return NewGCSSinkWithClient(client, bucket, prefix), nil
}

// NewGCSSinkWithClient wraps an existing storage client.
func NewGCSSinkWithClient(client *storage.Client, bucket, prefix string) *GCSSink {
	return &GCSSink{client: client, bucket: bucket, prefix: prefix}
}

// Put uploads data as a JSON object.
func (s *GCSSink) Put(ctx context.Context, name string, data []byte) error {
	w := s.client.Bucket(s.bucket).Object(s.objectName(name)).NewWriter(ctx)
	w.ContentType = "application/json"
	w.CacheControl = "no-cache"

	if _, err := w.Write(data); err != nil {
		_ = w.Close()

		return fmt.Errorf("failed to upload %s: %w", s.Location(name), err)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize %s: %w", s.Location(name), err)
	}

	return nil
}

// Location returns the gs:// URL of name.
func (s *GCSSink) Location(name string) string {
	return "gs://" + s.bucket + "/" + s.objectName(name)
}

// Close releases the storage client.
func (s *GCSSink) Close() error {
	return s.client.Close()
}

func (s *GCSSink) objectName(name string) string {
	if s.prefix == "" {
		return name
	}

	return path.Join(s.prefix, name)
}
