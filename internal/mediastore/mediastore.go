// Package mediastore keeps uploaded images on the local filesystem,
// grouped into buckets, and maps stored objects to public URLs served
// from the media route.
package mediastore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore writes objects under rootDir/<bucket>/<objectPath> and
// exposes them at <publicBaseURL>/media/<bucket>/<objectPath>.
type FileStore struct {
	rootDir       string
	publicBaseURL string
}

// New returns a FileStore rooted at rootDir.
func New(rootDir, publicBaseURL string) *FileStore {
	return &FileStore{
		rootDir:       rootDir,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// RootDir returns the directory the store writes under, for serving the
// files back over HTTP.
func (store *FileStore) RootDir() string {
	return store.rootDir
}

// Upload stores the object. Without overwrite an existing object is an
// error; with it the object is replaced.
func (store *FileStore) Upload(ctx context.Context, bucket, objectPath string, data []byte, overwrite bool) error {
	fullPath, err := store.objectFilePath(bucket, objectPath)
	if err != nil {
		return err
	}

	if !overwrite {
		if _, err := os.Stat(fullPath); err == nil {
			return fmt.Errorf("object %q already exists in bucket %q", objectPath, bucket)
		}
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("in internal/mediastore/mediastore.go/Upload(): error while `os.MkdirAll()` calling: %w", err)
	}

	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return fmt.Errorf("in internal/mediastore/mediastore.go/Upload(): error while `os.WriteFile()` calling: %w", err)
	}

	return nil
}

// PublicURL returns the URL the stored object is served from.
func (store *FileStore) PublicURL(bucket, objectPath string) string {
	return fmt.Sprintf("%s/media/%s/%s", store.publicBaseURL, bucket, objectPath)
}

func (store *FileStore) objectFilePath(bucket, objectPath string) (string, error) {
	fullPath := filepath.Join(store.rootDir, bucket, filepath.FromSlash(objectPath))

	// Object paths come from request data; keep them inside the bucket.
	bucketRoot := filepath.Join(store.rootDir, bucket) + string(filepath.Separator)
	if !strings.HasPrefix(fullPath, bucketRoot) {
		return "", fmt.Errorf("object path %q escapes bucket %q", objectPath, bucket)
	}

	return fullPath, nil
}
