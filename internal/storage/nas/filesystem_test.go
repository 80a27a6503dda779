package nas

import (
	"ImageRecognitionSkill/internal/config"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string, data string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

func TestNewFileSystemStorage(t *testing.T) {
	_, err := NewFileSystemStorage(config.NASConfig{})
	assert.Error(t, err)

	base := filepath.Join(t.TempDir(), "images")
	fs, err := NewFileSystemStorage(config.NASConfig{ImagePath: base})
	require.NoError(t, err)
	assert.DirExists(t, base)
	assert.Equal(t, base, fs.basePath)
}

func TestReadImage(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "42", "notes.txt"), "ignore me")
	writeFile(t, filepath.Join(base, "42", "photo.PNG"), "png-bytes")
	writeFile(t, filepath.Join(base, "42", "z.jpg"), "jpg-bytes")
	writeFile(t, filepath.Join(base, "u7", "43", "scan.jpeg"), "actor-bytes")
	writeFile(t, filepath.Join(base, "44", "empty.png"), "")

	fs, err := NewFileSystemStorage(config.NASConfig{ImagePath: base})
	require.NoError(t, err)

	data, err := fs.ReadImage("42", "")
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	data, err = fs.ReadImage("42", "someone-else")
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	data, err = fs.ReadImage("43", "u7")
	require.NoError(t, err)
	assert.Equal(t, "actor-bytes", string(data))

	_, err = fs.ReadImage("43", "")
	assert.Error(t, err)

	_, err = fs.ReadImage("44", "")
	assert.Error(t, err)
}

func TestReadImage_RejectsTraversal(t *testing.T) {
	fs, err := NewFileSystemStorage(config.NASConfig{ImagePath: t.TempDir()})
	require.NoError(t, err)

	for _, id := range []string{"", "..", "../etc", `a\b`} {
		_, err := fs.ReadImage(id, "")
		assert.Error(t, err, id)
	}
	_, err = fs.ReadImage("42", "../x")
	assert.Error(t, err)
}
