package models

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWatcherReloadKeepsPreviousOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mesh.json")
	orig := Cube()
	s := NewStore(orig)

	w, err := NewWatcher(path, s)
	require.NoError(t, err)
	defer w.Close()
	w.Logger = quietLogger()

	w.Load = func(string) (*MeshData, error) { return nil, errors.New("boom") }
	w.Reload()
	assert.Same(t, orig, s.Source())

	next := Cube().Normalized(1)
	w.Load = func(string) (*MeshData, error) { return next, nil }
	w.Reload()
	assert.Same(t, next, s.Source())
}

func TestWatcherPicksUpWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mesh.json")
	require.NoError(t, os.WriteFile(path, []byte(triangleQuadJSON), 0o644))

	s := NewStore(Cube())
	w, err := NewWatcher(path, s)
	require.NoError(t, err)
	defer w.Close()
	w.Logger = quietLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.NoError(t, os.WriteFile(path, []byte(triangleQuadJSON), 0o644))
	assert.Eventually(t, func() bool {
		return s.Source().NumVertices() == 4
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
