package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// FolderManager organizes attachments into one folder per expense, named by
// its sequential document number ("ci-42").
type FolderManager struct {
	baseDir string
	logger  *zap.Logger
}

// NewFolderManager creates a new FolderManager
func NewFolderManager(baseDir string, logger *zap.Logger) *FolderManager {
	return &FolderManager{baseDir: baseDir, logger: logger}
}

// ExpenseFolderName returns the folder name for an expense document number.
func (m *FolderManager) ExpenseFolderName(numeroCI int64) string {
	return fmt.Sprintf("ci-%d", numeroCI)
}

// CreateExpenseFolder creates the attachment folder for an expense and
// returns its full path.
func (m *FolderManager) CreateExpenseFolder(numeroCI int64) (string, error) {
	if numeroCI <= 0 {
		return "", fmt.Errorf("cannot create folder: invalid document number %d", numeroCI)
	}

	folderPath := filepath.Join(m.baseDir, m.ExpenseFolderName(numeroCI))
	if err := os.MkdirAll(folderPath, 0755); err != nil {
		m.logger.Error("Failed to create expense folder",
			zap.Int64("numero_ci", numeroCI),
			zap.String("folder_path", folderPath),
			zap.Error(err))
		return "", fmt.Errorf("failed to create folder: %w", err)
	}
	return folderPath, nil
}

// FolderExists checks whether the expense folder already exists.
func (m *FolderManager) FolderExists(numeroCI int64) bool {
	info, err := os.Stat(filepath.Join(m.baseDir, m.ExpenseFolderName(numeroCI)))
	if err != nil {
		return false
	}
	return info.IsDir()
}

// SanitizeFileName returns a filesystem-safe version of an uploaded file
// name, preventing directory traversal through crafted names.
func (m *FolderManager) SanitizeFileName(name string) string {
	name = strings.ReplaceAll(name, "..", "")
	name = strings.ReplaceAll(name, "/", "")
	name = strings.ReplaceAll(name, "\\", "")

	re := regexp.MustCompile(`[^a-zA-Z0-9.\-_]`)
	name = re.ReplaceAllString(name, "_")
	return name
}
