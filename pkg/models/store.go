package models

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// state is one immutable generation of the Store.
type state struct {
	source  *MeshData // Mesh as loaded
	active  *MeshData // source, or its unshaded copy
	buffers *Buffers  // Packed from active
	shaded  bool
	version uint64
}

// Store owns the active mesh and the shading toggle. Writers build a complete
// new generation and swap it in; readers load one pointer, so a frame never
// sees a mesh from one load and colors from another.
type Store struct {
	mu  sync.Mutex // Serializes writers
	cur atomic.Pointer[state]
}

// NewStore creates a store holding m with shading on. m may be nil.
func NewStore(m *MeshData) *Store {
	s := &Store{}
	s.cur.Store(newState(m, true, 1))
	return s
}

func newState(m *MeshData, shaded bool, version uint64) *state {
	st := &state{source: m, shaded: shaded, version: version}
	if m == nil {
		return st
	}
	st.active = m
	if !shaded {
		st.active = m.Unshaded()
	}
	st.buffers = BuildBuffers(st.active)
	return st
}

// Replace validates m and makes it the active mesh, keeping the current
// shading mode. The store takes ownership of m.
func (s *Store) Replace(m *MeshData) error {
	if m == nil {
		return fmt.Errorf("nil mesh: %w", ErrInvalidMesh)
	}
	if err := m.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.cur.Load()
	s.cur.Store(newState(m, old.shaded, old.version+1))
	return nil
}

// SetShaded switches between the loaded face colors and the unshaded copy.
func (s *Store) SetShaded(shaded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.cur.Load()
	if old.shaded == shaded {
		return
	}
	s.cur.Store(newState(old.source, shaded, old.version+1))
}

// ToggleShading flips the shading mode and returns the new value.
func (s *Store) ToggleShading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.cur.Load()
	s.cur.Store(newState(old.source, !old.shaded, old.version+1))
	return !old.shaded
}

// Current returns the mesh to draw, with the shading mode applied.
// The result must not be modified.
func (s *Store) Current() *MeshData {
	return s.cur.Load().active
}

// Source returns the mesh as it was loaded.
func (s *Store) Source() *MeshData {
	return s.cur.Load().source
}

// IsShaded reports whether face colors are shown.
func (s *Store) IsShaded() bool {
	return s.cur.Load().shaded
}

// Buffers returns the packed arrays for Current along with their version,
// which changes whenever the mesh or shading mode does.
func (s *Store) Buffers() (*Buffers, uint64) {
	st := s.cur.Load()
	return st.buffers, st.version
}
