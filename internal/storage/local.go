package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalStorage keeps published videos on the local filesystem. It exists for
// development setups without an object store; the returned URL is a file://
// reference.
type LocalStorage struct {
	dir string
}

func NewLocalStorage(dir string) *LocalStorage {
	return &LocalStorage{dir: dir}
}

// PublishVideo copies the MP4 at path under the request's canonical key
// inside the storage directory.
func (l *LocalStorage) PublishVideo(_ context.Context, requestID, path string) (url, key string, err error) {
	key = VideoKey(requestID)
	dest := filepath.Join(l.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", "", fmt.Errorf("local storage: create directory: %w", err)
	}

	src, err := os.Open(path)
	if err != nil {
		return "", "", fmt.Errorf("local storage: open video: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(dest)
	if err != nil {
		return "", "", fmt.Errorf("local storage: create destination: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", "", fmt.Errorf("local storage: copy video: %w", err)
	}

	return "file://" + dest, key, nil
}
