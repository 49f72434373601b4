package models

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// triangleDoc builds a document holding one indexed quad split into two
// triangles.
func triangleDoc(material *int) *gltf.Document {
	positions := [][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}
	indices := []uint16{0, 1, 2, 0, 2, 3}

	data := make([]byte, 0, len(positions)*12+len(indices)*2)
	for _, p := range positions {
		for _, f := range p {
			data = binary.LittleEndian.AppendUint32(data, math.Float32bits(f))
		}
	}
	for _, i := range indices {
		data = binary.LittleEndian.AppendUint16(data, i)
	}

	return &gltf.Document{
		Buffers: []*gltf.Buffer{{ByteLength: len(data), Data: data}},
		BufferViews: []*gltf.BufferView{
			{Buffer: 0, ByteLength: 48},
			{Buffer: 0, ByteOffset: 48, ByteLength: 12},
		},
		Accessors: []*gltf.Accessor{
			{BufferView: gltf.Index(0), ComponentType: gltf.ComponentFloat, Count: 4, Type: gltf.AccessorVec3},
			{BufferView: gltf.Index(1), ComponentType: gltf.ComponentUshort, Count: 6, Type: gltf.AccessorScalar},
		},
		Materials: []*gltf.Material{{
			Name:                 "red",
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{BaseColorFactor: &[4]float64{1, 0, 0, 1}},
		}},
		Meshes: []*gltf.Mesh{{
			Name: "quad",
			Primitives: []*gltf.Primitive{{
				Attributes: map[string]int{gltf.POSITION: 0},
				Indices:    gltf.Index(1),
				Material:   material,
				Mode:       gltf.PrimitiveTriangles,
			}},
		}},
	}
}

func TestProcessMesh(t *testing.T) {
	doc := triangleDoc(gltf.Index(0))
	mesh := &MeshData{FaceVertices: 3}
	require.NoError(t, processMesh(doc, doc.Meshes[0], mesh))
	mesh.VertexCount = len(mesh.Indices)

	require.NoError(t, mesh.Validate())
	assert.Equal(t, 6, mesh.NumVertices())
	assert.Equal(t, 2, mesh.TriangleCount())
	assert.Equal(t, []Color4{{1, 0, 0, 1}, {1, 0, 0, 1}}, mesh.FaceColors)
	// Second triangle is (0, 2, 3): its last vertex is (0, 1, 0).
	assert.Equal(t, []float64{0, 1, 0}, mesh.Positions[15:18])
}

func TestProcessMeshDefaultColor(t *testing.T) {
	doc := triangleDoc(nil)
	mesh := &MeshData{FaceVertices: 3}
	require.NoError(t, processMesh(doc, doc.Meshes[0], mesh))
	assert.Equal(t, DefaultFaceColor, mesh.FaceColors[0])
}

func TestProcessMeshShortBuffer(t *testing.T) {
	doc := triangleDoc(nil)
	doc.Accessors[0].Count = 40
	err := processMesh(doc, doc.Meshes[0], &MeshData{FaceVertices: 3})
	assert.Error(t, err)
}

func TestProcessMeshSkipsLines(t *testing.T) {
	doc := triangleDoc(nil)
	doc.Meshes[0].Primitives[0].Mode = gltf.PrimitiveLines
	mesh := &MeshData{FaceVertices: 3}
	require.NoError(t, processMesh(doc, doc.Meshes[0], mesh))
	assert.Zero(t, mesh.NumVertices())
}

func TestProcessMeshDanglingReferences(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(doc *gltf.Document)
	}{
		{"position buffer view", func(doc *gltf.Document) { doc.Accessors[0].BufferView = gltf.Index(7) }},
		{"index buffer view", func(doc *gltf.Document) { doc.Accessors[1].BufferView = gltf.Index(2) }},
		{"buffer", func(doc *gltf.Document) { doc.BufferViews[0].Buffer = 3 }},
		{"position accessor", func(doc *gltf.Document) { doc.Meshes[0].Primitives[0].Attributes[gltf.POSITION] = 9 }},
		{"index accessor", func(doc *gltf.Document) { doc.Meshes[0].Primitives[0].Indices = gltf.Index(9) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := triangleDoc(nil)
			tt.mutate(doc)
			var err error
			require.NotPanics(t, func() {
				err = processMesh(doc, doc.Meshes[0], &MeshData{FaceVertices: 3})
			})
			assert.Error(t, err)
		})
	}
}

// danglingGLTF has an accessor pointing at a buffer view that does not exist.
const danglingGLTF = `{
  "asset": {"version": "2.0"},
  "buffers": [{"byteLength": 36, "uri": "data:application/octet-stream;base64,AAAAAAAAAAAAAAAAAACAPwAAAAAAAAAAAAAAAAAAgD8AAAAA"}],
  "bufferViews": [{"buffer": 0, "byteLength": 36}],
  "accessors": [{"bufferView": 3, "componentType": 5126, "count": 3, "type": "VEC3"}],
  "meshes": [{"primitives": [{"attributes": {"POSITION": 0}}]}]
}`

func TestLoadGLTFDanglingBufferView(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.gltf")
	require.NoError(t, os.WriteFile(path, []byte(danglingGLTF), 0o644))

	var err error
	require.NotPanics(t, func() { _, err = LoadGLTF(path) })
	assert.Error(t, err)
}

func TestWatcherKeepsMeshOnBrokenGLTF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.gltf")
	require.NoError(t, os.WriteFile(path, []byte(danglingGLTF), 0o644))

	orig := Cube()
	s := NewStore(orig)
	w, err := NewWatcher(path, s)
	require.NoError(t, err)
	defer w.Close()
	w.Logger = quietLogger()

	require.NotPanics(t, w.Reload)
	assert.Same(t, orig, s.Source())
}

func TestLoadGLTFInvalidPath(t *testing.T) {
	_, err := LoadGLTF("/nonexistent/path.glb")
	assert.Error(t, err)
}
