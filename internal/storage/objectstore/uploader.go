package objectstore

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/lakeline-data/lakeline-go/internal/domain"
)

// ObjectUploader transfers one local file into the landing bucket. Any
// transfer failure surfaces as an error; there is no partial success.
type ObjectUploader struct {
	store      Store
	bucket     string
	basePrefix string
}

func NewObjectUploader(store Store, bucket, basePrefix string) (*ObjectUploader, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if strings.TrimSpace(bucket) == "" {
		return nil, errors.New("bucket is required")
	}
	return &ObjectUploader{
		store:      store,
		bucket:     bucket,
		basePrefix: strings.Trim(basePrefix, "/"),
	}, nil
}

// ObjectKey builds the destination key for a file: the base prefix followed
// by the file name.
func (u *ObjectUploader) ObjectKey(file domain.FileIdentity) string {
	if u.basePrefix == "" {
		return file.Name()
	}
	return u.basePrefix + "/" + file.Name()
}

// Upload streams the file into the bucket and returns the destination
// reference stored verbatim in the ingest success event.
func (u *ObjectUploader) Upload(ctx context.Context, file domain.FileIdentity) (string, error) {
	src, err := os.Open(file.Path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", file.Path, err)
	}
	defer func() { _ = src.Close() }()

	key := u.ObjectKey(file)
	if err := u.store.Put(ctx, u.bucket, key, src, file.SizeBytes, contentTypeFor(file.Name())); err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	return fmt.Sprintf("s3://%s/%s", u.bucket, key), nil
}

func contentTypeFor(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
