package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"storefront/internal/domain/model"
	"storefront/internal/infrastructure/config"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LocalStorage keeps uploaded product images on the local filesystem under a
// single directory, named by random UUIDs.
type LocalStorage struct {
	dir     string
	maxSize int64
	allowed []string
	logger  *zap.Logger
}

func NewLocalStorage(cfg config.UploadConfig, logger *zap.Logger) (*LocalStorage, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	allowed := make([]string, 0, len(cfg.AllowedExtensions))
	for _, ext := range cfg.AllowedExtensions {
		allowed = append(allowed, strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), ".")))
	}
	return &LocalStorage{dir: cfg.Dir, maxSize: cfg.MaxFileSize, allowed: allowed, logger: logger}, nil
}

// Validate checks size, declared extension and sniffed content type, and
// returns the extension the stored file will carry.
func (s *LocalStorage) Validate(filename string, content []byte) (string, error) {
	if len(content) == 0 {
		return "", fmt.Errorf("%w: empty file", model.ErrValidation)
	}
	if int64(len(content)) > s.maxSize {
		return "", fmt.Errorf("%w: file too large (max %d bytes)", model.ErrValidation, s.maxSize)
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if !slices.Contains(s.allowed, ext) {
		return "", fmt.Errorf("%w: file extension %q is not allowed", model.ErrValidation, ext)
	}

	detected := mimetype.Detect(content)
	sniffed := strings.TrimPrefix(detected.Extension(), ".")
	if !slices.Contains(s.allowed, sniffed) {
		return "", fmt.Errorf("%w: file content is %s", model.ErrValidation, detected.String())
	}
	return sniffed, nil
}

func (s *LocalStorage) Save(ctx context.Context, filename string, content []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ext, err := s.Validate(filename, content)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close image: %w", err)
	}

	path := filepath.Join(s.dir, uuid.NewString()+"."+ext)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}

	s.logger.Debug("Stored image", zap.String("path", path), zap.Int("size", len(content)))
	return path, nil
}

// Delete removes a file previously returned by Save. Missing files are not an
// error; paths outside the upload directory are refused.
func (s *LocalStorage) Delete(_ context.Context, path string) error {
	rel, err := filepath.Rel(s.dir, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") || filepath.IsAbs(rel) {
		return fmt.Errorf("refusing to delete %q outside %q", path, s.dir)
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete image: %w", err)
	}
	return nil
}
