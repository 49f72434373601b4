package render

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/taigrr/facet/pkg/models"
	"github.com/taigrr/facet/pkg/scene"
)

// DefaultFPS is the frame rate used when LoopOptions.FPS is unset.
const DefaultFPS = 60

// MaxFPS is the highest frame rate a loop ticks at.
const MaxFPS = 1000

// ClearDepth is the depth every frame starts from.
const ClearDepth = 1.0

// ControlSource supplies the parameters for each frame.
type ControlSource interface {
	Snapshot() scene.FrameParameters
}

// Stepper is implemented by control sources that animate between frames.
type Stepper interface {
	Step()
}

// MeshSource supplies the buffers to draw. A nil result draws an empty frame.
type MeshSource interface {
	Buffers() (*models.Buffers, uint64)
}

// Presenter shows a finished frame.
type Presenter interface {
	Present(fb *Framebuffer) error
}

// Resizer is implemented by surfaces and presenters that follow the output
// size.
type Resizer interface {
	Resize(width, height int)
}

// framebufferSurface is a Surface whose color target can be presented.
type framebufferSurface interface {
	Framebuffer() *Framebuffer
}

// LoopOptions configures a Loop.
type LoopOptions struct {
	FPS        int    // Ticks per second; defaults to DefaultFPS, at most MaxFPS
	MaxFrames  int    // Stop after this many ticks; 0 runs until cancelled
	ClearColor *Color // Defaults to ClearColor
	Logger     *slog.Logger
}

// LoopStats counts ticks by outcome.
type LoopStats struct {
	Drawn   uint64
	Skipped uint64 // Compose, draw or present failed
}

// Loop is the frame driver. Each tick takes one snapshot of the controls,
// composes the matrices, clears, binds the current mesh, draws it and
// presents the result. Ticks never overlap.
type Loop struct {
	surface   Surface
	controls  ControlSource
	meshes    MeshSource
	presenter Presenter
	opts      LoopOptions
	logger    *slog.Logger

	drawn   atomic.Uint64
	skipped atomic.Uint64

	mu         sync.Mutex
	pendingW   int
	pendingH   int
	hasPending bool
}

// NewLoop creates a loop drawing meshes onto surface. presenter may be nil.
func NewLoop(surface Surface, controls ControlSource, meshes MeshSource, presenter Presenter, opts LoopOptions) *Loop {
	if opts.FPS <= 0 {
		opts.FPS = DefaultFPS
	}
	opts.FPS = min(opts.FPS, MaxFPS)
	if opts.ClearColor == nil {
		c := ClearColor
		opts.ClearColor = &c
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		surface:   surface,
		controls:  controls,
		meshes:    meshes,
		presenter: presenter,
		opts:      opts,
		logger:    logger,
	}
}

// Stats returns the tick counters.
func (l *Loop) Stats() LoopStats {
	return LoopStats{Drawn: l.drawn.Load(), Skipped: l.skipped.Load()}
}

// RequestResize asks for the surface to be resized before the next tick.
// It is safe to call from any goroutine.
func (l *Loop) RequestResize(width, height int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pendingW, l.pendingH, l.hasPending = width, height, true
}

// Run ticks at the configured rate until ctx is cancelled or MaxFrames ticks
// have run. A failed tick is logged and skipped; it never stops the loop.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(l.opts.FPS))
	defer ticker.Stop()

	for frame := 0; ; frame++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := l.Tick(); err != nil {
			l.logger.Warn("frame skipped", "frame", frame, "error", err)
		}
		if l.opts.MaxFrames > 0 && frame+1 >= l.opts.MaxFrames {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Tick renders and presents one frame. On error nothing is presented and the
// frame counts as skipped.
func (l *Loop) Tick() error {
	l.applyResize()

	if s, ok := l.controls.(Stepper); ok {
		s.Step()
	}
	params := l.controls.Snapshot()

	width, height := l.surface.Size()
	m, err := scene.Compose(params, scene.Viewport{Width: width, Height: height})
	if err != nil {
		l.skipped.Add(1)
		return fmt.Errorf("compose: %w", err)
	}

	l.surface.SetViewport(0, 0, width, height)
	l.surface.Clear(*l.opts.ClearColor, ClearDepth)

	if buffers, _ := l.meshes.Buffers(); buffers != nil {
		l.surface.Bind(buffers)
		l.surface.SetUniforms(m.Projection, m.ModelView)
		if err := l.surface.DrawElements(buffers.Count); err != nil {
			l.skipped.Add(1)
			return fmt.Errorf("draw: %w", err)
		}
	}

	if l.presenter != nil {
		if fs, ok := l.surface.(framebufferSurface); ok {
			if err := l.presenter.Present(fs.Framebuffer()); err != nil {
				l.skipped.Add(1)
				return fmt.Errorf("present: %w", err)
			}
		}
	}

	l.drawn.Add(1)
	return nil
}

func (l *Loop) applyResize() {
	l.mu.Lock()
	w, h, ok := l.pendingW, l.pendingH, l.hasPending
	l.hasPending = false
	l.mu.Unlock()
	if !ok {
		return
	}
	if r, ok := l.surface.(Resizer); ok {
		r.Resize(w, h)
	}
	if r, ok := l.presenter.(Resizer); ok {
		r.Resize(w, h)
	}
}
