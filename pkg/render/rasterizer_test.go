package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taigrr/facet/pkg/math3d"
	"github.com/taigrr/facet/pkg/models"
	"github.com/taigrr/facet/pkg/scene"
)

var (
	red   = [3]float32{1, 0, 0}
	green = [3]float32{0, 1, 0}
)

// triangles packs one color per triangle into unbounded buffers, so they
// are never culled.
func triangles(positions [][3]float32, colors ...[3]float32) *models.Buffers {
	b := &models.Buffers{}
	for i, p := range positions {
		c := colors[i/3]
		b.Positions = append(b.Positions, p[0], p[1], p[2])
		b.Colors = append(b.Colors, c[0], c[1], c[2], 1)
		b.Indices = append(b.Indices, uint16(i))
	}
	b.Count = len(b.Indices)
	return b
}

// fullScreen returns a triangle covering all of NDC at depth z.
func fullScreen(z float32) [][3]float32 {
	return [][3]float32{{-1, -1, z}, {3, -1, z}, {-1, 3, z}}
}

func newTestRasterizer(w, h int) *Rasterizer {
	r := NewRasterizer(NewFramebuffer(w, h))
	r.Clear(ClearColor, ClearDepth)
	r.SetUniforms(math3d.Identity(), math3d.Identity())
	return r
}

func TestRasterizerFillsTriangle(t *testing.T) {
	r := newTestRasterizer(8, 6)
	r.Bind(triangles(fullScreen(0), red))
	require.NoError(t, r.DrawElements(3))

	fb := r.Framebuffer()
	for y := range fb.Height {
		for x := range fb.Width {
			assert.Equal(t, RGB(255, 0, 0), fb.GetPixel(x, y), "pixel %d,%d", x, y)
		}
	}
	assert.InDelta(t, 0.5, r.Depth(3, 3), 1e-12)
	assert.Equal(t, 1, r.Stats.Triangles)
}

func TestRasterizerBothWindings(t *testing.T) {
	r := newTestRasterizer(8, 6)
	p := fullScreen(0)
	r.Bind(triangles([][3]float32{p[0], p[2], p[1]}, green))
	require.NoError(t, r.DrawElements(3))
	assert.Equal(t, RGB(0, 255, 0), r.Framebuffer().GetPixel(4, 3))
}

func TestRasterizerDepthTest(t *testing.T) {
	tests := []struct {
		name   string
		first  float32
		second float32
		want   Color
	}{
		{"equal depth, later wins", 0, 0, RGB(0, 255, 0)},
		{"nearer first stays", -0.5, 0.5, RGB(255, 0, 0)},
		{"nearer second wins", 0.5, -0.5, RGB(0, 255, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRasterizer(4, 4)
			pos := append(fullScreen(tt.first), fullScreen(tt.second)...)
			r.Bind(triangles(pos, red, green))
			require.NoError(t, r.DrawElements(6))
			assert.Equal(t, tt.want, r.Framebuffer().GetPixel(2, 2))
		})
	}
}

func TestRasterizerClipsDepthRange(t *testing.T) {
	r := newTestRasterizer(4, 4)
	r.Bind(triangles(fullScreen(1.5), red))
	require.NoError(t, r.DrawElements(3))
	assert.Equal(t, ClearColor, r.Framebuffer().GetPixel(2, 2))
	assert.Equal(t, 1.0, r.Depth(2, 2))
}

func TestRasterizerDropsTrianglesBehindEye(t *testing.T) {
	r := newTestRasterizer(8, 8)
	r.SetUniforms(math3d.Perspective(math3d.DegToRad(45), 1, 0.1, 100), math3d.Identity())
	// In front of the eye: drawn. Behind it: w <= 0, dropped.
	front := [][3]float32{{-1, -1, -2}, {1, -1, -2}, {0, 1, -2}}
	behind := [][3]float32{{-1, -1, 2}, {1, -1, 2}, {0, 1, 2}}
	r.Bind(triangles(append(front, behind...), red, green))
	require.NoError(t, r.DrawElements(6))

	assert.Equal(t, 2, r.Stats.Triangles)
	assert.Equal(t, 1, r.Stats.Dropped)
	for _, px := range r.Framebuffer().Pixels {
		assert.NotEqual(t, RGB(0, 255, 0), px)
	}
}

func TestRasterizerViewport(t *testing.T) {
	r := newTestRasterizer(8, 4)
	r.SetViewport(0, 0, 4, 4)
	r.Bind(triangles(fullScreen(0), red))
	require.NoError(t, r.DrawElements(3))

	fb := r.Framebuffer()
	assert.Equal(t, RGB(255, 0, 0), fb.GetPixel(3, 2))
	assert.Equal(t, ClearColor, fb.GetPixel(4, 2))
	assert.Equal(t, ClearColor, fb.GetPixel(7, 0))
}

func TestRasterizerPartialDraw(t *testing.T) {
	r := newTestRasterizer(4, 4)
	pos := append(fullScreen(0), fullScreen(-0.5)...)
	r.Bind(triangles(pos, red, green))
	require.NoError(t, r.DrawElements(3))
	assert.Equal(t, RGB(255, 0, 0), r.Framebuffer().GetPixel(1, 1))
	assert.Equal(t, 1, r.Stats.Triangles)
}

func TestRasterizerRejectsBadDraws(t *testing.T) {
	tests := []struct {
		name    string
		buffers *models.Buffers
		count   int
	}{
		{"nothing bound", nil, 3},
		{"count beyond indices", triangles(fullScreen(0), red), 6},
		{"negative count", triangles(fullScreen(0), red), -3},
		{"index out of range", func() *models.Buffers {
			b := triangles(fullScreen(0), red)
			b.Indices[2] = 3
			return b
		}(), 3},
		{"short colors", func() *models.Buffers {
			b := triangles(fullScreen(0), red)
			b.Colors = b.Colors[:4]
			return b
		}(), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRasterizer(4, 4)
			r.Bind(tt.buffers)
			assert.ErrorIs(t, r.DrawElements(tt.count), ErrDraw)
			for _, px := range r.Framebuffer().Pixels {
				assert.Equal(t, ClearColor, px)
			}
		})
	}
}

func TestRasterizerCullsOffscreenMesh(t *testing.T) {
	r := newTestRasterizer(32, 32)
	p := scene.Neutral()
	p.X = 50
	m, err := scene.Compose(p, scene.Viewport{Width: 32, Height: 32})
	require.NoError(t, err)

	b := models.BuildBuffers(models.Cube())
	r.Bind(b)
	r.SetUniforms(m.Projection, m.ModelView)
	require.NoError(t, r.DrawElements(b.Count))

	assert.Equal(t, 1, r.Stats.Culled)
	assert.Zero(t, r.Stats.Triangles)
}

func TestRasterizerDrawsCube(t *testing.T) {
	r := newTestRasterizer(40, 30)
	m, err := scene.Compose(scene.Defaults(), scene.Viewport{Width: 40, Height: 30})
	require.NoError(t, err)

	b := models.BuildBuffers(models.Cube())
	r.Bind(b)
	r.SetUniforms(m.Projection, m.ModelView)
	require.NoError(t, r.DrawElements(b.Count))

	fb := r.Framebuffer()
	assert.NotEqual(t, ClearColor, fb.GetPixel(20, 15), "center covered by the cube")
	assert.Equal(t, ClearColor, fb.GetPixel(0, 0), "corner shows background")
	assert.Less(t, r.Depth(20, 15), 1.0)
	assert.Equal(t, 12, r.Stats.Triangles)
	assert.Zero(t, r.Stats.Culled)
}

func TestRasterizerResize(t *testing.T) {
	r := newTestRasterizer(4, 4)
	r.SetViewport(1, 1, 2, 2)
	r.Resize(10, 6)

	w, h := r.Size()
	assert.Equal(t, 10, w)
	assert.Equal(t, 6, h)
	assert.Equal(t, Viewport{Width: 10, Height: 6}, r.Viewport())
	assert.Len(t, r.Framebuffer().Pixels, 60)
}

func TestColorFromFloats(t *testing.T) {
	assert.Equal(t, RGB(0, 128, 255), ColorFromFloats(-1, 0.5, 2))
}

func TestEdgeCoeffs(t *testing.T) {
	A, B, C := edgeCoeffs(0, 0, 1, 0)
	assert.Zero(t, edgeFunc(A, B, C, 0.5, 0))
	assert.Positive(t, edgeFunc(A, B, C, 0.5, 1))
	assert.Negative(t, edgeFunc(A, B, C, 0.5, -1))
}
