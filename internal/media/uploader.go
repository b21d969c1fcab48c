package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// ErrUploaderDisabled is returned when no archive backend is configured.
var ErrUploaderDisabled = errors.New("media uploader disabled")

// UploadInput is one rendered variation on its way to the archive.
type UploadInput struct {
	Filename    string
	ContentType string
	Body        io.Reader
	Size        int64
}

// UploadResult holds the stored object key and the URL share pages link to.
type UploadResult struct {
	Key string
	URL string
}

// Uploader archives generated variations.
type Uploader interface {
	Upload(ctx context.Context, input UploadInput) (UploadResult, error)
}

type disabledUploader struct{}

func (disabledUploader) Upload(_ context.Context, _ UploadInput) (UploadResult, error) {
	return UploadResult{}, ErrUploaderDisabled
}

// Disabled returns an uploader that refuses every variation.
func Disabled() Uploader {
	return disabledUploader{}
}

// ArchiveDir groups one generation's variations under the owner.
func ArchiveDir(userID string, at time.Time) string {
	return fmt.Sprintf("%s/%d", userID, at.UnixNano())
}

// VariationFilename names the n-th (zero based) variation inside dir.
func VariationFilename(dir string, index int, mimeType string) string {
	return fmt.Sprintf("%s/variation-%d%s", dir, index+1, Extension(mimeType))
}

// Extension maps an image MIME type to a file suffix, defaulting to png.
func Extension(mimeType string) string {
	switch strings.ToLower(strings.TrimSpace(mimeType)) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
