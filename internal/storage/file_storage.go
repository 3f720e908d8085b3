package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FileStorage stores attachment bytes and hands back a durable reference.
type FileStorage interface {
	// Save writes content under the expense folder and returns the storage
	// reference and the full path written.
	Save(expenseFolder, fileName string, content []byte) (ref string, path string, err error)

	// Remove deletes a stored file. Used to undo uploads when the enclosing
	// transaction fails; missing files are not an error.
	Remove(path string) error

	// ValidatePath checks path security (no traversal, within base)
	ValidatePath(fullPath string) error
}

// LocalFileStorage implements FileStorage on the local filesystem.
type LocalFileStorage struct {
	baseDir string
	logger  *zap.Logger
}

// NewLocalFileStorage creates a new LocalFileStorage
func NewLocalFileStorage(baseDir string, logger *zap.Logger) *LocalFileStorage {
	return &LocalFileStorage{baseDir: baseDir, logger: logger}
}

// Save writes content to <base>/<expenseFolder>/<ref><ext>. The reference is
// a fresh UUID so concurrent uploads of same-named files never collide.
func (s *LocalFileStorage) Save(expenseFolder, fileName string, content []byte) (string, string, error) {
	ref := uuid.NewString()
	fullPath := filepath.Join(s.baseDir, expenseFolder, ref+filepath.Ext(fileName))

	if err := s.ValidatePath(fullPath); err != nil {
		return "", "", err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		s.logger.Error("Failed to create attachment directory",
			zap.String("path", filepath.Dir(fullPath)),
			zap.Error(err))
		return "", "", fmt.Errorf("failed to create directories: %w", err)
	}

	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		s.logger.Error("Failed to write file",
			zap.String("path", fullPath),
			zap.Error(err))
		return "", "", fmt.Errorf("failed to write file: %w", err)
	}

	s.logger.Debug("File saved",
		zap.String("path", fullPath),
		zap.String("ref", ref),
		zap.Int("size", len(content)))
	return ref, fullPath, nil
}

// Remove deletes a stored file, ignoring files already gone.
func (s *LocalFileStorage) Remove(path string) error {
	if err := s.ValidatePath(path); err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}

// ValidatePath checks that the path is safe and within baseDir
func (s *LocalFileStorage) ValidatePath(fullPath string) error {
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) && absPath != absBase {
		return fmt.Errorf("path escapes base directory: %s", fullPath)
	}
	return nil
}
