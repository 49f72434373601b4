package models

import "github.com/taigrr/facet/pkg/math3d"

// Buffers are the packed vertex arrays a rasterizer binds for one mesh.
type Buffers struct {
	Positions []float32 // x, y, z per vertex
	Colors    []float32 // r, g, b, a per vertex
	Indices   []uint16
	Count     int // Number of indices to draw

	// Bounds of all vertices, for culling.
	Min, Max math3d.Vec3
}

// NumVertices returns the number of vertices in the position buffer.
func (b *Buffers) NumVertices() int {
	return len(b.Positions) / 3
}

// BuildBuffers packs m into GPU-style arrays, repeating each face color for
// every vertex of its face.
func BuildBuffers(m *MeshData) *Buffers {
	b := &Buffers{
		Positions: make([]float32, len(m.Positions)),
		Colors:    make([]float32, 0, m.NumVertices()*4),
		Indices:   append([]uint16(nil), m.Indices...),
		Count:     m.VertexCount,
	}
	b.Min, b.Max = m.Bounds()
	for i, p := range m.Positions {
		b.Positions[i] = float32(p)
	}

	per := m.VerticesPerFace()
	for _, c := range m.FaceColors {
		for range per {
			b.Colors = append(b.Colors, float32(c[0]), float32(c[1]), float32(c[2]), float32(c[3]))
		}
	}
	return b
}
