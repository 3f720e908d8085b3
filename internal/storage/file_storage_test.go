package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalFileStorage_SaveAndRemove(t *testing.T) {
	baseDir := t.TempDir()
	fs := NewLocalFileStorage(baseDir, zap.NewNop())

	ref, path, err := fs.Save("ci-7", "receipt.pdf", []byte("pdf bytes"))
	require.NoError(t, err)
	assert.NotEmpty(t, ref)
	assert.Equal(t, ".pdf", filepath.Ext(path))
	assert.Contains(t, path, filepath.Join(baseDir, "ci-7"))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("pdf bytes"), content)

	require.NoError(t, fs.Remove(path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Removing again is not an error.
	assert.NoError(t, fs.Remove(path))
}

func TestLocalFileStorage_DistinctRefsForSameName(t *testing.T) {
	fs := NewLocalFileStorage(t.TempDir(), zap.NewNop())

	ref1, path1, err := fs.Save("ci-7", "receipt.pdf", []byte("a"))
	require.NoError(t, err)
	ref2, path2, err := fs.Save("ci-7", "receipt.pdf", []byte("b"))
	require.NoError(t, err)

	assert.NotEqual(t, ref1, ref2)
	assert.NotEqual(t, path1, path2)
}

func TestLocalFileStorage_RejectsEscapingPaths(t *testing.T) {
	baseDir := t.TempDir()
	fs := NewLocalFileStorage(baseDir, zap.NewNop())

	err := fs.ValidatePath(filepath.Join(baseDir, "..", "outside.txt"))
	assert.Error(t, err)

	err = fs.ValidatePath("/etc/passwd")
	assert.Error(t, err)

	err = fs.ValidatePath(filepath.Join(baseDir, "ci-1", "fine.pdf"))
	assert.NoError(t, err)
}

func TestFolderManager_ExpenseFolders(t *testing.T) {
	baseDir := t.TempDir()
	fm := NewFolderManager(baseDir, zap.NewNop())

	assert.Equal(t, "ci-42", fm.ExpenseFolderName(42))
	assert.False(t, fm.FolderExists(42))

	path, err := fm.CreateExpenseFolder(42)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(baseDir, "ci-42"), path)
	assert.True(t, fm.FolderExists(42))

	_, err = fm.CreateExpenseFolder(0)
	assert.Error(t, err)
}

func TestFolderManager_SanitizeFileName(t *testing.T) {
	fm := NewFolderManager(t.TempDir(), zap.NewNop())

	tests := []struct {
		in   string
		want string
	}{
		{"receipt.pdf", "receipt.pdf"},
		{"../../etc/passwd", "etcpasswd"},
		{"nota fiscal (2).pdf", "nota_fiscal__2_.pdf"},
		{"comprovante\\pix.png", "comprovantepix.png"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, fm.SanitizeFileName(tt.in))
	}
}

func TestPDFValidator_NonPDFPassesThrough(t *testing.T) {
	v := NewPDFValidator(zap.NewNop())

	assert.NoError(t, v.Validate("photo.jpg", "image/jpeg", []byte{0xff, 0xd8}))
	assert.Error(t, v.Validate("empty.pdf", "application/pdf", nil))
	assert.Error(t, v.Validate("garbage.pdf", "application/pdf", []byte("not a pdf")))
}
