package analyzer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModulePath(t *testing.T) {
	path, err := ModulePath(filepath.Join("testdata", "calc"))
	require.NoError(t, err)
	assert.Equal(t, "example.com/calc", path)
}

func TestModulePath_Missing(t *testing.T) {
	_, err := ModulePath(t.TempDir())
	assert.Error(t, err)
}

func TestModulePath_NoDirective(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("go 1.24\n"), 0644))

	_, err := ModulePath(dir)
	assert.Error(t, err)
}
