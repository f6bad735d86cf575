// Package blob stores customer uploads (models, sketches) for custom print
// requests and returns a reference URL.
package blob

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"cloud.google.com/go/storage"
)

type Store interface {
	Put(ctx context.Context, name, contentType string, r io.Reader) (string, error)
}

// GCS writes objects to a Cloud Storage bucket.
type GCS struct {
	client *storage.Client
	bucket string
}

func NewGCS(ctx context.Context, bucket string) (*GCS, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("blob: storage client: %w", err)
	}
	log.Printf("[blob] gcs bucket %s", bucket)
	return &GCS{client: client, bucket: bucket}, nil
}

func (g *GCS) Put(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	w := g.client.Bucket(g.bucket).Object(name).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("blob: upload %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("blob: finalize %s: %w", name, err)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", g.bucket, name), nil
}

func (g *GCS) Close() error { return g.client.Close() }

// Local keeps uploads on disk; for development without a bucket.
type Local struct {
	Dir string
}

func (l Local) Put(_ context.Context, name, _ string, r io.Reader) (string, error) {
	// Rooting the name before cleaning keeps "../" from escaping Dir.
	path := filepath.Join(l.Dir, filepath.Clean("/"+name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}
	return "file://" + path, nil
}
