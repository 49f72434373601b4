package render

import (
	"fmt"
	"image"
	"io"
	"log/slog"

	"github.com/taigrr/facet/pkg/models"
	"github.com/taigrr/facet/pkg/scene"
)

// SnapshotOptions configures a headless render.
type SnapshotOptions struct {
	Width, Height int
	Supersample   int    // Render at this multiple and scale down; 0 or 1 is off
	Background    *Color // Defaults to ClearColor
}

type fixedControls scene.FrameParameters

func (f fixedControls) Snapshot() scene.FrameParameters { return scene.FrameParameters(f) }

type fixedMesh struct{ b *models.Buffers }

func (f fixedMesh) Buffers() (*models.Buffers, uint64) { return f.b, 0 }

// Snapshot renders one frame of buffers with params through the same tick as
// the interactive loop. buffers may be nil for a background-only image.
func Snapshot(params scene.FrameParameters, buffers *models.Buffers, opts SnapshotOptions) (*image.RGBA, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("snapshot size %dx%d: %w", opts.Width, opts.Height, ErrDraw)
	}
	ss := max(opts.Supersample, 1)

	r := NewRasterizer(NewFramebuffer(opts.Width*ss, opts.Height*ss))
	loop := NewLoop(r, fixedControls(params), fixedMesh{buffers}, nil, LoopOptions{
		ClearColor: opts.Background,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err := loop.Tick(); err != nil {
		return nil, err
	}

	img := r.Framebuffer().ToImage()
	if ss > 1 {
		img = Downsample(img, opts.Width, opts.Height)
	}
	return img, nil
}
