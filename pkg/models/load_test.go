package models

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDispatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Quad.JSON")
	require.NoError(t, os.WriteFile(path, []byte(triangleQuadJSON), 0o644))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, m.TriangleCount())
}

func TestLoadUnsupported(t *testing.T) {
	_, err := Load("mesh.obj")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".obj")
}
