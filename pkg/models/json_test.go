package models

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const triangleQuadJSON = `{
	"positions": [0,0,0, 1,0,0, 1,1,0, 0,1,0],
	"indices": [0,1,2, 0,2,3],
	"faceColors": [[1,0,0,1]],
	"vertexCount": 6
}`

func TestDecodeJSON(t *testing.T) {
	m, err := DecodeJSON(strings.NewReader(triangleQuadJSON))
	require.NoError(t, err)
	assert.Equal(t, 4, m.NumVertices())
	assert.Equal(t, 2, m.TriangleCount())
	assert.Equal(t, []Color4{{1, 0, 0, 1}}, m.FaceColors)
	assert.Equal(t, QuadFaceVertices, m.VerticesPerFace())
}

func TestDecodeJSONDefaultsVertexCount(t *testing.T) {
	in := strings.Replace(triangleQuadJSON, `"vertexCount": 6`, `"faceVertices": 4`, 1)
	m, err := DecodeJSON(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 6, m.VertexCount)
}

func TestDecodeJSONErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		invalid bool
	}{
		{"syntax", `{"positions": [`, false},
		{"negative index", `{"positions": [0,0,0], "indices": [-1]}`, false},
		{"index out of range", strings.Replace(triangleQuadJSON, "0,2,3]", "0,2,9]", 1), true},
		{"too few colors", strings.Replace(triangleQuadJSON, "[[1,0,0,1]]", "[]", 1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeJSON(strings.NewReader(tt.input))
			require.Error(t, err)
			if tt.invalid {
				assert.ErrorIs(t, err, ErrInvalidMesh)
			}
		})
	}
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quad.json")
	require.NoError(t, os.WriteFile(path, []byte(triangleQuadJSON), 0o644))

	m, err := LoadJSON(path)
	require.NoError(t, err)
	assert.Equal(t, 6, m.VertexCount)

	_, err = LoadJSON(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
