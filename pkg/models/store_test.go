package models

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreStartsShaded(t *testing.T) {
	s := NewStore(Cube())
	assert.True(t, s.IsShaded())
	assert.Same(t, s.Source(), s.Current())

	b, v := s.Buffers()
	require.NotNil(t, b)
	assert.Equal(t, uint64(1), v)
}

func TestStoreEmpty(t *testing.T) {
	s := NewStore(nil)
	assert.Nil(t, s.Current())
	b, _ := s.Buffers()
	assert.Nil(t, b)

	s.SetShaded(false)
	assert.Nil(t, s.Current())
	assert.False(t, s.IsShaded())
}

func TestStoreToggleShading(t *testing.T) {
	s := NewStore(Cube())
	_, v0 := s.Buffers()

	assert.False(t, s.ToggleShading())
	for _, c := range s.Current().FaceColors {
		assert.Equal(t, Color4{0, 0, 0, 1}, c)
	}
	assert.Equal(t, Color4{1, 1, 1, 1}, s.Source().FaceColors[0])
	_, v1 := s.Buffers()
	assert.Greater(t, v1, v0)

	assert.True(t, s.ToggleShading())
	assert.Same(t, s.Source(), s.Current())
}

func TestStoreSetShadedNoop(t *testing.T) {
	s := NewStore(Cube())
	_, v0 := s.Buffers()
	s.SetShaded(true)
	_, v1 := s.Buffers()
	assert.Equal(t, v0, v1)
}

func TestStoreReplaceKeepsShadingMode(t *testing.T) {
	s := NewStore(Cube())
	s.SetShaded(false)

	next := Cube()
	next.FaceColors[2] = Color4{0.3, 0.3, 0.3, 0.7}
	require.NoError(t, s.Replace(next))

	assert.Same(t, next, s.Source())
	assert.False(t, s.IsShaded())
	assert.Equal(t, Color4{0, 0, 0, 0.7}, s.Current().FaceColors[2])
}

func TestStoreReplaceRejectsInvalid(t *testing.T) {
	orig := Cube()
	s := NewStore(orig)

	bad := Cube()
	bad.Indices[0] = 100
	assert.ErrorIs(t, s.Replace(bad), ErrInvalidMesh)
	assert.ErrorIs(t, s.Replace(nil), ErrInvalidMesh)
	assert.Same(t, orig, s.Source())
}

func TestStoreConcurrentReaders(t *testing.T) {
	s := NewStore(Cube())
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for range 200 {
			s.ToggleShading()
		}
	}()

	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 500 {
				b, _ := s.Buffers()
				// Colors within a generation are all zero or all from the source.
				black := b.Colors[0] == 0 && b.Colors[1] == 0 && b.Colors[2] == 0
				for v := 1; v < b.NumVertices(); v++ {
					rgb := b.Colors[v*4 : v*4+3]
					isBlack := rgb[0] == 0 && rgb[1] == 0 && rgb[2] == 0
					if isBlack != black {
						t.Errorf("mixed shading in one generation at vertex %d", v)
						return
					}
				}
			}
		}()
	}
	wg.Wait()
}
