package models

import (
	"fmt"
	"math"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/taigrr/facet/pkg/math3d"
)

// DefaultFaceColor is used for glTF primitives without a material.
var DefaultFaceColor = Color4{0.8, 0.8, 0.8, 1}

// maxVertices is the largest vertex count addressable by 16-bit indices.
const maxVertices = math.MaxUint16 + 1

// LoadGLTF loads a glTF or GLB file as a flat-colored triangle mesh. Each
// triangle becomes its own face with the base color of its material.
func LoadGLTF(path string) (*MeshData, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh := &MeshData{FaceVertices: 3}
	for _, m := range doc.Meshes {
		if err := processMesh(doc, m, mesh); err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
	}
	mesh.VertexCount = len(mesh.Indices)

	if err := mesh.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return mesh, nil
}

// processMesh appends the triangles of every primitive in m.
func processMesh(doc *gltf.Document, m *gltf.Mesh, mesh *MeshData) error {
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			// Skip non-triangle primitives (lines, points, etc)
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}

		positions, err := readPositions(doc, posIdx)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		var indices []int
		if prim.Indices != nil {
			indices, err = readIndices(doc, *prim.Indices)
			if err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
		} else {
			// No indices, assume sequential triangles
			indices = make([]int, len(positions))
			for i := range indices {
				indices[i] = i
			}
		}

		color := materialColor(doc, prim.Material)
		for i := 0; i+2 < len(indices); i += 3 {
			base := mesh.NumVertices()
			if base+3 > maxVertices {
				return fmt.Errorf("more than %d vertices: %w", maxVertices, ErrInvalidMesh)
			}
			for j := range 3 {
				idx := indices[i+j]
				if idx < 0 || idx >= len(positions) {
					return fmt.Errorf("index %d out of range for %d positions: %w", idx, len(positions), ErrInvalidMesh)
				}
				p := positions[idx]
				mesh.Positions = append(mesh.Positions, p.X, p.Y, p.Z)
				mesh.Indices = append(mesh.Indices, uint16(base+j))
			}
			mesh.FaceColors = append(mesh.FaceColors, color)
		}
	}

	return nil
}

// materialColor returns the base color factor of the referenced material.
func materialColor(doc *gltf.Document, material *int) Color4 {
	if material == nil || *material < 0 || *material >= len(doc.Materials) {
		return DefaultFaceColor
	}
	mat := doc.Materials[*material]
	if mat == nil || mat.PBRMetallicRoughness == nil || mat.PBRMetallicRoughness.BaseColorFactor == nil {
		return DefaultFaceColor
	}
	return Color4(*mat.PBRMetallicRoughness.BaseColorFactor)
}

// accessor returns accessor idx after checking that it, its buffer view and
// its buffer exist and that the bytes it reads lie inside them.
func accessor(doc *gltf.Document, idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(doc.Accessors) || doc.Accessors[idx] == nil {
		return nil, fmt.Errorf("accessor %d out of range: %w", idx, ErrInvalidMesh)
	}
	acr := doc.Accessors[idx]
	if acr.BufferView == nil {
		return acr, nil
	}
	bv := *acr.BufferView
	if bv < 0 || bv >= len(doc.BufferViews) || doc.BufferViews[bv] == nil {
		return nil, fmt.Errorf("accessor %d: buffer view %d out of range: %w", idx, bv, ErrInvalidMesh)
	}
	view := doc.BufferViews[bv]
	if view.Buffer < 0 || view.Buffer >= len(doc.Buffers) || doc.Buffers[view.Buffer] == nil {
		return nil, fmt.Errorf("accessor %d: buffer %d out of range: %w", idx, view.Buffer, ErrInvalidMesh)
	}
	if end := view.ByteOffset + view.ByteLength; view.ByteOffset < 0 || end > len(doc.Buffers[view.Buffer].Data) {
		return nil, fmt.Errorf("accessor %d: buffer view %d ends past its buffer: %w", idx, bv, ErrInvalidMesh)
	}
	if acr.Count > 0 {
		elem := acr.ComponentType.ByteSize() * acr.Type.Components()
		stride := view.ByteStride
		if stride == 0 {
			stride = elem
		}
		if end := acr.ByteOffset + (acr.Count-1)*stride + elem; acr.ByteOffset < 0 || end > view.ByteLength {
			return nil, fmt.Errorf("accessor %d reads %d bytes of a %d byte view: %w", idx, end, view.ByteLength, ErrInvalidMesh)
		}
	}
	return acr, nil
}

// readPositions reads a VEC3 position accessor.
func readPositions(doc *gltf.Document, idx int) ([]math3d.Vec3, error) {
	acr, err := accessor(doc, idx)
	if err != nil {
		return nil, err
	}
	floats, err := modeler.ReadPosition(doc, acr, nil)
	if err != nil {
		return nil, err
	}

	result := make([]math3d.Vec3, len(floats))
	for i, f := range floats {
		result[i] = math3d.V3(float64(f[0]), float64(f[1]), float64(f[2]))
	}
	return result, nil
}

// readIndices reads a scalar index accessor.
func readIndices(doc *gltf.Document, idx int) ([]int, error) {
	acr, err := accessor(doc, idx)
	if err != nil {
		return nil, err
	}
	raw, err := modeler.ReadIndices(doc, acr, nil)
	if err != nil {
		return nil, err
	}

	result := make([]int, len(raw))
	for i, x := range raw {
		result[i] = int(x)
	}
	return result, nil
}
