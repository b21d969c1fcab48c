package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DefaultLocalURL is the path prefix local files are served under.
const DefaultLocalURL = "/media"

// LocalUploader stores files in a directory the HTTP server exposes.
type LocalUploader struct {
	BaseDir string
	BaseURL string
}

// NewLocalUploader constructs an uploader that writes to the provided directory.
func NewLocalUploader(baseDir, baseURL string) (*LocalUploader, error) {
	if baseDir == "" {
		baseDir = filepath.Join(os.TempDir(), "geniusdesign-media")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create local media dir: %w", err)
	}
	if baseURL == "" {
		baseURL = DefaultLocalURL
	}
	return &LocalUploader{BaseDir: baseDir, BaseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Upload writes the content under BaseDir and returns its public URL.
func (l *LocalUploader) Upload(_ context.Context, input UploadInput) (UploadResult, error) {
	if input.Body == nil {
		return UploadResult{}, fmt.Errorf("upload body is required")
	}

	key := buildKey("", input.Filename)
	target := filepath.Join(l.BaseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return UploadResult{}, fmt.Errorf("create media dir: %w", err)
	}

	f, err := os.Create(target)
	if err != nil {
		return UploadResult{}, fmt.Errorf("create media file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, input.Body); err != nil {
		os.Remove(target)
		return UploadResult{}, fmt.Errorf("write media file: %w", err)
	}

	return UploadResult{
		Key: key,
		URL: l.BaseURL + "/" + key,
	}, nil
}
