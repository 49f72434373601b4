package models

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// DecodeJSON reads a mesh in the viewer's JSON format:
//
//	{"positions": [...], "indices": [...], "faceColors": [[r,g,b,a], ...], "vertexCount": n}
//
// A missing vertexCount draws every index.
func DecodeJSON(r io.Reader) (*MeshData, error) {
	var m MeshData
	dec := json.NewDecoder(r)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("decode mesh json: %w", err)
	}
	if m.VertexCount == 0 {
		m.VertexCount = len(m.Indices)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadJSON loads a JSON mesh file.
func LoadJSON(path string) (*MeshData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mesh: %w", err)
	}
	defer f.Close()

	m, err := DecodeJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
