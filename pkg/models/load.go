package models

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Load reads a mesh file, choosing the format by extension.
func Load(path string) (*MeshData, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return LoadJSON(path)
	case ".glb", ".gltf":
		return LoadGLTF(path)
	default:
		return nil, fmt.Errorf("unsupported mesh format %q (use .json, .glb or .gltf)", ext)
	}
}
