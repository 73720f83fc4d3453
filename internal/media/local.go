package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalUploader archives images on the local filesystem. It is the fallback
// when no bucket is configured, typically in development.
type LocalUploader struct {
	BaseDir string
}

// NewLocalUploader constructs an uploader that writes to the provided
// directory. If baseDir is empty, os.TempDir() is used.
func NewLocalUploader(baseDir string) (*LocalUploader, error) {
	dir := baseDir
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "leafsight-uploads")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create local media dir: %w", err)
	}
	return &LocalUploader{BaseDir: dir}, nil
}

// Upload writes the image to disk and returns its path as both key and URL.
func (u *LocalUploader) Upload(_ context.Context, input UploadInput) (UploadResult, error) {
	if input.Body == nil {
		return UploadResult{}, fmt.Errorf("upload body is required")
	}

	name := uuid.NewString()
	if ext := strings.ToLower(filepath.Ext(input.Filename)); ext != "" {
		name += ext
	}
	target := filepath.Join(u.BaseDir, name)

	f, err := os.Create(target)
	if err != nil {
		return UploadResult{}, fmt.Errorf("create local file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, input.Body); err != nil {
		return UploadResult{}, fmt.Errorf("write local file: %w", err)
	}

	return UploadResult{Key: name, URL: target}, nil
}
