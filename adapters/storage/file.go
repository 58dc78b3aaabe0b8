package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/satriahrh/lintas/domain/repositories"
)

// FileArchive stores synthesized audio under a local directory
type FileArchive struct {
	dir    string
	logger *zap.Logger
}

var _ repositories.AudioArchive = (*FileArchive)(nil)

// NewFileArchive creates the directory if needed
func NewFileArchive(dir string, logger *zap.Logger) (*FileArchive, error) {
	if dir == "" {
		return nil, fmt.Errorf("archive directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}
	return &FileArchive{dir: dir, logger: logger}, nil
}

// Save writes data to dir/key and returns the file path
func (f *FileArchive) Save(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	clean := filepath.Clean("/" + key)
	if strings.Trim(clean, "/") == "" {
		return "", fmt.Errorf("invalid archive key %q", key)
	}

	path := filepath.Join(f.dir, clean)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create archive directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write archive file: %w", err)
	}

	f.logger.Debug("Archived audio",
		zap.String("path", path),
		zap.String("contentType", contentType),
		zap.Int("bytes", len(data)))

	return path, nil
}
