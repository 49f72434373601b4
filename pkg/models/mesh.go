// Package models holds the mesh record the viewer draws, the loaders that
// produce it, and the shared state the render loop reads it from.
package models

import (
	"errors"
	"fmt"

	"github.com/taigrr/facet/pkg/math3d"
)

// ErrInvalidMesh is returned for mesh data that breaks an index or color
// invariant.
var ErrInvalidMesh = errors.New("invalid mesh")

// QuadFaceVertices is the number of vertices per face in the JSON mesh
// format: every face is a quad drawn as two triangles.
const QuadFaceVertices = 4

// Color4 is an RGBA color with channels in the 0-1 range.
type Color4 [4]float64

// MeshData is an indexed triangle mesh with one flat color per face.
//
// Vertices are laid out face by face: face i owns vertices
// [i*FaceVertices, (i+1)*FaceVertices). A MeshData held by a Store is
// never mutated; changes produce a new value.
type MeshData struct {
	Positions    []float64 `json:"positions"`    // x, y, z per vertex
	Indices      []uint16  `json:"indices"`      // Triangle list into Positions/3
	FaceColors   []Color4  `json:"faceColors"`   // One color per face
	VertexCount  int       `json:"vertexCount"`  // Number of indices to draw
	FaceVertices int       `json:"faceVertices"` // Vertices per face; 0 means QuadFaceVertices
}

// NumVertices returns the number of vertices in Positions.
func (m *MeshData) NumVertices() int {
	return len(m.Positions) / 3
}

// TriangleCount returns the number of triangles drawn.
func (m *MeshData) TriangleCount() int {
	return m.VertexCount / 3
}

// VerticesPerFace returns FaceVertices, defaulting to quads.
func (m *MeshData) VerticesPerFace() int {
	if m.FaceVertices <= 0 {
		return QuadFaceVertices
	}
	return m.FaceVertices
}

// Validate checks the index and color invariants.
func (m *MeshData) Validate() error {
	if len(m.Positions)%3 != 0 {
		return fmt.Errorf("%d position values is not a multiple of 3: %w", len(m.Positions), ErrInvalidMesh)
	}
	n := m.NumVertices()
	for i, idx := range m.Indices {
		if int(idx) >= n {
			return fmt.Errorf("index %d = %d out of range for %d vertices: %w", i, idx, n, ErrInvalidMesh)
		}
	}
	if m.VertexCount < 0 || m.VertexCount > len(m.Indices) {
		return fmt.Errorf("vertexCount %d exceeds %d indices: %w", m.VertexCount, len(m.Indices), ErrInvalidMesh)
	}
	if m.VertexCount%3 != 0 {
		return fmt.Errorf("vertexCount %d is not a whole number of triangles: %w", m.VertexCount, ErrInvalidMesh)
	}
	if got := len(m.FaceColors) * m.VerticesPerFace(); got != n {
		return fmt.Errorf("%d face colors x %d vertices per face = %d, mesh has %d vertices: %w",
			len(m.FaceColors), m.VerticesPerFace(), got, n, ErrInvalidMesh)
	}
	return nil
}

// Clone creates a deep copy of the mesh.
func (m *MeshData) Clone() *MeshData {
	return &MeshData{
		Positions:    append([]float64(nil), m.Positions...),
		Indices:      append([]uint16(nil), m.Indices...),
		FaceColors:   append([]Color4(nil), m.FaceColors...),
		VertexCount:  m.VertexCount,
		FaceVertices: m.FaceVertices,
	}
}

// Unshaded returns a copy whose face colors have their RGB channels zeroed.
// Alpha is kept, so faces still draw as solid silhouettes.
func (m *MeshData) Unshaded() *MeshData {
	u := m.Clone()
	for i := range u.FaceColors {
		u.FaceColors[i][0] = 0
		u.FaceColors[i][1] = 0
		u.FaceColors[i][2] = 0
	}
	return u
}

// Vertex returns the position of vertex i.
func (m *MeshData) Vertex(i int) math3d.Vec3 {
	return math3d.V3(m.Positions[i*3], m.Positions[i*3+1], m.Positions[i*3+2])
}

// Bounds returns the axis-aligned bounding box of all vertices.
func (m *MeshData) Bounds() (lo, hi math3d.Vec3) {
	n := m.NumVertices()
	if n == 0 {
		return
	}
	lo, hi = m.Vertex(0), m.Vertex(0)
	for i := 1; i < n; i++ {
		v := m.Vertex(i)
		lo = lo.Min(v)
		hi = hi.Max(v)
	}
	return lo, hi
}

// Normalized returns a copy centered on the origin whose largest dimension
// is size.
func (m *MeshData) Normalized(size float64) *MeshData {
	out := m.Clone()
	lo, hi := m.Bounds()
	center := lo.Add(hi).Scale(0.5)
	maxDim := hi.Sub(lo).MaxComponent()
	scale := 1.0
	if maxDim > 0 {
		scale = size / maxDim
	}
	transform := math3d.ScaleUniform(scale).Mul(math3d.Translate(center.Scale(-1)))
	for i := range out.NumVertices() {
		v := transform.MulVec3(m.Vertex(i))
		out.Positions[i*3] = v.X
		out.Positions[i*3+1] = v.Y
		out.Positions[i*3+2] = v.Z
	}
	return out
}

// Cube returns the unit cube in the JSON mesh layout: 24 vertices, 6 quad
// faces, 36 indices.
func Cube() *MeshData {
	return &MeshData{
		Positions: []float64{
			// Front
			-1, -1, 1, 1, -1, 1, 1, 1, 1, -1, 1, 1,
			// Back
			-1, -1, -1, -1, 1, -1, 1, 1, -1, 1, -1, -1,
			// Top
			-1, 1, -1, -1, 1, 1, 1, 1, 1, 1, 1, -1,
			// Bottom
			-1, -1, -1, 1, -1, -1, 1, -1, 1, -1, -1, 1,
			// Right
			1, -1, -1, 1, 1, -1, 1, 1, 1, 1, -1, 1,
			// Left
			-1, -1, -1, -1, -1, 1, -1, 1, 1, -1, 1, -1,
		},
		Indices: []uint16{
			0, 1, 2, 0, 2, 3,
			4, 5, 6, 4, 6, 7,
			8, 9, 10, 8, 10, 11,
			12, 13, 14, 12, 14, 15,
			16, 17, 18, 16, 18, 19,
			20, 21, 22, 20, 22, 23,
		},
		FaceColors: []Color4{
			{1, 1, 1, 1},
			{1, 0, 0, 1},
			{0, 1, 0, 1},
			{0, 0, 1, 1},
			{1, 1, 0, 1},
			{1, 0, 1, 1},
		},
		VertexCount:  36,
		FaceVertices: QuadFaceVertices,
	}
}
