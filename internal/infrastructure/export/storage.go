package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StoreRequest contains the parameters for storing a generated file
type StoreRequest struct {
	// TenantID for multi-tenant isolation
	TenantID uuid.UUID
	// Name is the file name without directory; a missing extension becomes .xlsx
	Name string
	// Data is the raw file content
	Data []byte
}

// StoreResult contains the result of storing a file
type StoreResult struct {
	// Path is the storage path relative to the base directory
	Path string
	// FullPath is the path on disk
	FullPath string
	// Size is the file size in bytes
	Size int64
}

// FileSystemStorageConfig contains configuration for file system storage
type FileSystemStorageConfig struct {
	// BasePath is the root directory for exports
	// Default: exports
	BasePath string
	// RetentionDays is how long to keep exports (0 = forever)
	RetentionDays int
	Logger        *zap.Logger
}

// FileSystemStorage stores generated statements on the local file system
type FileSystemStorage struct {
	config *FileSystemStorageConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewFileSystemStorage creates the base directory and returns the storage
func NewFileSystemStorage(config *FileSystemStorageConfig) (*FileSystemStorage, error) {
	if config == nil {
		config = &FileSystemStorageConfig{}
	}
	if config.BasePath == "" {
		config.BasePath = "exports"
	}
	if err := os.MkdirAll(config.BasePath, 0755); err != nil {
		return nil, NewExportError(ErrCodeStorageFailed,
			fmt.Sprintf("failed to create export directory: %s", config.BasePath), err)
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileSystemStorage{config: config, logger: logger, now: time.Now}, nil
}

// Store writes a file under {base}/{tenant_id}/{year}/{month}/{name}
func (s *FileSystemStorage) Store(ctx context.Context, req *StoreRequest) (*StoreResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewExportError(ErrCodeStorageFailed, "operation cancelled", err)
	}
	if req == nil {
		return nil, NewExportError(ErrCodeStorageFailed, "store request is nil", nil)
	}
	if req.TenantID == uuid.Nil {
		return nil, NewExportError(ErrCodeStorageFailed, "tenant ID is required", nil)
	}
	if len(req.Data) == 0 {
		return nil, NewExportError(ErrCodeStorageFailed, "file data is empty", nil)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return nil, NewExportError(ErrCodeInvalidName, fmt.Sprintf("invalid file name %q", req.Name), nil)
	}
	if filepath.Ext(name) == "" {
		name += ".xlsx"
	}

	now := s.now()
	relativeDir := filepath.Join(
		req.TenantID.String(),
		fmt.Sprintf("%d", now.Year()),
		fmt.Sprintf("%02d", now.Month()),
	)
	dirPath := filepath.Join(s.config.BasePath, relativeDir)
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return nil, NewExportError(ErrCodeStorageFailed, "failed to create directory", err)
	}

	fullPath := filepath.Join(dirPath, name)
	if err := os.WriteFile(fullPath, req.Data, 0644); err != nil {
		return nil, NewExportError(ErrCodeStorageFailed, "failed to write export file", err)
	}

	s.logger.Info("Export stored",
		zap.String("path", fullPath),
		zap.Int("size", len(req.Data)))

	return &StoreResult{
		Path:     filepath.Join(relativeDir, name),
		FullPath: fullPath,
		Size:     int64(len(req.Data)),
	}, nil
}

// Open returns a stored file by its relative path
func (s *FileSystemStorage) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewExportError(ErrCodeStorageFailed, "operation cancelled", err)
	}
	fullPath, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewExportError(ErrCodeNotFound, "export not found", err)
		}
		return nil, NewExportError(ErrCodeStorageFailed, "failed to open export file", err)
	}
	return file, nil
}

// Delete removes a stored file. A missing file is not an error.
func (s *FileSystemStorage) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return NewExportError(ErrCodeStorageFailed, "operation cancelled", err)
	}
	fullPath, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return NewExportError(ErrCodeStorageFailed, "failed to delete export file", err)
	}
	s.logger.Info("Export deleted", zap.String("path", path))
	return nil
}

// CleanupExpired removes exports older than the configured retention. It does
// nothing when retention is zero.
func (s *FileSystemStorage) CleanupExpired(ctx context.Context) (int, error) {
	if s.config.RetentionDays <= 0 {
		return 0, nil
	}
	return s.CleanupOlderThan(ctx, time.Duration(s.config.RetentionDays)*24*time.Hour)
}

// CleanupOlderThan removes exports last modified before now minus age
func (s *FileSystemStorage) CleanupOlderThan(ctx context.Context, age time.Duration) (int, error) {
	cutoff := s.now().Add(-age)
	deleted := 0

	err := filepath.Walk(s.config.BasePath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".xlsx" {
			return nil
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(path); err == nil {
				deleted++
				s.logger.Debug("Deleted expired export", zap.String("path", path))
			}
		}
		return nil
	})
	if err != nil && err != context.Canceled && err != context.DeadlineExceeded {
		return deleted, NewExportError(ErrCodeStorageFailed, "cleanup walk failed", err)
	}

	s.logger.Info("Export cleanup completed",
		zap.Int("deleted", deleted),
		zap.Duration("age", age))
	return deleted, nil
}

// resolve maps a relative path into the base directory, rejecting anything that
// would escape it
func (s *FileSystemStorage) resolve(path string) (string, error) {
	cleanPath := filepath.Clean(path)
	if filepath.IsAbs(cleanPath) || containsDotDot(path) {
		s.logger.Warn("Blocked export path outside the base directory", zap.String("path", path))
		return "", NewExportError(ErrCodeInvalidName, "invalid path", nil)
	}

	fullPath := filepath.Join(s.config.BasePath, cleanPath)
	absBase, err := filepath.Abs(s.config.BasePath)
	if err != nil {
		return "", NewExportError(ErrCodeStorageFailed, "failed to resolve base path", err)
	}
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return "", NewExportError(ErrCodeStorageFailed, "failed to resolve file path", err)
	}
	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		s.logger.Warn("Blocked export path outside the base directory", zap.String("path", path))
		return "", NewExportError(ErrCodeInvalidName, "invalid path", nil)
	}
	return fullPath, nil
}

// containsDotDot checks the raw path for ".." components
func containsDotDot(path string) bool {
	parts := strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == filepath.Separator
	})
	return slices.Contains(parts, "..")
}
