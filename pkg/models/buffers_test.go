package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildBuffersExpandsFaceColors(t *testing.T) {
	m := Cube()
	b := BuildBuffers(m)

	assert.Equal(t, 24, b.NumVertices())
	assert.Equal(t, 36, b.Count)
	assert.Equal(t, m.Indices, b.Indices)
	require.Len(t, b.Colors, 24*4)

	for v := range 24 {
		face := m.FaceColors[v/QuadFaceVertices]
		got := b.Colors[v*4 : v*4+4]
		assert.Equal(t, []float32{float32(face[0]), float32(face[1]), float32(face[2]), float32(face[3])}, got, "vertex %d", v)
	}
}

func TestBuildBuffersTriangleFaces(t *testing.T) {
	m := &MeshData{
		Positions:    []float64{0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 1, 1, 0, 1, 0, 1, 1},
		Indices:      []uint16{0, 1, 2, 3, 4, 5},
		FaceColors:   []Color4{{1, 0, 0, 1}, {0, 0, 1, 0.5}},
		VertexCount:  6,
		FaceVertices: 3,
	}
	b := BuildBuffers(m)
	require.Len(t, b.Colors, 6*4)
	assert.Equal(t, float32(1), b.Colors[2*4])
	assert.Equal(t, float32(0.5), b.Colors[3*4+3])
	assert.Equal(t, float32(1), b.Positions[14])
}

func TestBuildBuffersDoesNotAlias(t *testing.T) {
	m := Cube()
	b := BuildBuffers(m)
	b.Indices[0] = 9
	assert.Equal(t, uint16(0), m.Indices[0])
}
