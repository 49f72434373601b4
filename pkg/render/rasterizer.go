package render

import (
	"errors"
	"fmt"
	"math"

	"github.com/taigrr/facet/pkg/math3d"
	"github.com/taigrr/facet/pkg/models"
)

// ErrDraw is returned for draw calls the bound buffers cannot satisfy.
var ErrDraw = errors.New("invalid draw call")

// Surface is the drawing target the render loop submits frames to.
type Surface interface {
	// Size returns the drawable size in pixels.
	Size() (width, height int)
	// SetViewport maps normalized device coordinates to the pixel rectangle
	// at (x, y) with the given size. y counts down from the top row.
	SetViewport(x, y, width, height int)
	// Clear fills the color target and resets every depth sample.
	Clear(c Color, depth float64)
	// Bind selects the vertex arrays used by DrawElements.
	Bind(b *models.Buffers)
	// SetUniforms uploads the matrices for the next draw.
	SetUniforms(projection, modelView math3d.Mat4)
	// DrawElements draws count indices from the bound buffers as triangles.
	DrawElements(count int) error
}

// Viewport is a pixel rectangle of the framebuffer.
type Viewport struct {
	X, Y, Width, Height int
}

// RasterStats counts triangles since the last Clear.
type RasterStats struct {
	Triangles int // Submitted
	Dropped   int // Behind the eye or zero area
	Culled    int // Draw calls skipped whole because the mesh is off screen
}

// Rasterizer is a software Surface drawing flat or interpolated colored
// triangles into a Framebuffer with a depth buffer.
type Rasterizer struct {
	fb       *Framebuffer
	zbuffer  []float64 // Window depth in [0, 1], row-major
	viewport Viewport
	buffers  *models.Buffers
	mvp      math3d.Mat4
	clip     []math3d.Vec4 // Clip-space positions of the bound vertices
	Stats    RasterStats
}

// screenVertex holds a vertex transformed to window space.
type screenVertex struct {
	X, Y    float64 // Pixel coordinates
	Z       float64 // Window depth
	R, G, B float64
}

// NewRasterizer creates a rasterizer drawing into fb, with the viewport
// covering all of it.
func NewRasterizer(fb *Framebuffer) *Rasterizer {
	r := &Rasterizer{fb: fb, mvp: math3d.Identity()}
	r.Resize(fb.Width, fb.Height)
	return r
}

// Framebuffer returns the color target.
func (r *Rasterizer) Framebuffer() *Framebuffer {
	return r.fb
}

// Resize resizes the color and depth targets and resets the viewport to
// cover them.
func (r *Rasterizer) Resize(width, height int) {
	r.fb.Resize(width, height)
	n := r.fb.Width * r.fb.Height
	if cap(r.zbuffer) >= n {
		r.zbuffer = r.zbuffer[:n]
	} else {
		r.zbuffer = make([]float64, n)
	}
	r.viewport = Viewport{Width: r.fb.Width, Height: r.fb.Height}
}

// Size returns the framebuffer dimensions.
func (r *Rasterizer) Size() (int, int) {
	return r.fb.Width, r.fb.Height
}

// SetViewport sets the NDC to pixel mapping.
func (r *Rasterizer) SetViewport(x, y, width, height int) {
	r.viewport = Viewport{X: x, Y: y, Width: width, Height: height}
}

// Viewport returns the current viewport.
func (r *Rasterizer) Viewport() Viewport {
	return r.viewport
}

// Clear fills the framebuffer with c and the depth buffer with depth.
func (r *Rasterizer) Clear(c Color, depth float64) {
	r.fb.Clear(c)
	// Use copy-doubling for faster clearing
	n := len(r.zbuffer)
	if n > 0 {
		r.zbuffer[0] = depth
		for i := 1; i < n; i *= 2 {
			copy(r.zbuffer[i:], r.zbuffer[:i])
		}
	}
	r.Stats = RasterStats{}
}

// Depth returns the depth sample at (x, y), or 1 out of bounds.
func (r *Rasterizer) Depth(x, y int) float64 {
	if x < 0 || x >= r.fb.Width || y < 0 || y >= r.fb.Height {
		return 1
	}
	return r.zbuffer[y*r.fb.Width+x]
}

// Bind selects the buffers for subsequent draws.
func (r *Rasterizer) Bind(b *models.Buffers) {
	r.buffers = b
}

// SetUniforms stores projection·modelView for subsequent draws.
func (r *Rasterizer) SetUniforms(projection, modelView math3d.Mat4) {
	r.mvp.Multiply(&projection, &modelView)
}

// DrawElements draws the first count indices of the bound buffers. Every
// index is checked before anything is drawn, so a rejected call leaves the
// targets untouched.
func (r *Rasterizer) DrawElements(count int) error {
	b := r.buffers
	if b == nil {
		return fmt.Errorf("draw %d elements with no buffers bound: %w", count, ErrDraw)
	}
	if count < 0 || count > len(b.Indices) {
		return fmt.Errorf("draw %d elements from %d indices: %w", count, len(b.Indices), ErrDraw)
	}
	n := b.NumVertices()
	if len(b.Colors) < n*4 {
		return fmt.Errorf("%d color values for %d vertices: %w", len(b.Colors), n, ErrDraw)
	}
	for i, idx := range b.Indices[:count] {
		if int(idx) >= n {
			return fmt.Errorf("index %d = %d out of range for %d vertices: %w", i, idx, n, ErrDraw)
		}
	}

	if count == 0 {
		return nil
	}
	// Zero bounds mean the buffers were packed without them.
	if b.Min != b.Max && !FrustumFromMatrix(r.mvp).IntersectAABB(AABB{Min: b.Min, Max: b.Max}) {
		r.Stats.Culled++
		return nil
	}

	if cap(r.clip) < n {
		r.clip = make([]math3d.Vec4, n)
	}
	r.clip = r.clip[:n]
	for i := range n {
		p := b.Positions[i*3 : i*3+3]
		r.clip[i] = r.mvp.MulVec4(math3d.V4(float64(p[0]), float64(p[1]), float64(p[2]), 1))
	}

	for t := 0; t+2 < count; t += 3 {
		r.Stats.Triangles++
		r.drawTriangle(int(b.Indices[t]), int(b.Indices[t+1]), int(b.Indices[t+2]))
	}
	return nil
}

// drawTriangle fills one triangle of the bound buffers using edge functions
// with incremental updates. Both windings are drawn.
func (r *Rasterizer) drawTriangle(i0, i1, i2 int) {
	var sv [3]screenVertex
	vp := r.viewport
	colors := r.buffers.Colors

	for i, vi := range [3]int{i0, i1, i2} {
		c := r.clip[vi]
		// No near-plane clipping: a vertex at or behind the eye drops the triangle.
		if c.W <= 0 {
			r.Stats.Dropped++
			return
		}
		invW := 1.0 / c.W
		sv[i].X = float64(vp.X) + (c.X*invW+1)*0.5*float64(vp.Width)
		sv[i].Y = float64(vp.Y) + (1-c.Y*invW)*0.5*float64(vp.Height) // Y flipped
		sv[i].Z = (c.Z*invW + 1) * 0.5
		sv[i].R = float64(colors[vi*4])
		sv[i].G = float64(colors[vi*4+1])
		sv[i].B = float64(colors[vi*4+2])
	}

	area2 := (sv[1].X-sv[0].X)*(sv[2].Y-sv[0].Y) - (sv[1].Y-sv[0].Y)*(sv[2].X-sv[0].X)
	if area2 == 0 || math.IsNaN(area2) {
		r.Stats.Dropped++
		return
	}

	// Bounding box clamped to the viewport and the framebuffer
	loX, hiX := max(vp.X, 0), min(vp.X+vp.Width, r.fb.Width)-1
	loY, hiY := max(vp.Y, 0), min(vp.Y+vp.Height, r.fb.Height)-1
	if loX > hiX || loY > hiY {
		return
	}
	minX := clampInt(math.Floor(min3(sv[0].X, sv[1].X, sv[2].X)), loX, hiX)
	maxX := clampInt(math.Ceil(max3(sv[0].X, sv[1].X, sv[2].X)), loX, hiX)
	minY := clampInt(math.Floor(min3(sv[0].Y, sv[1].Y, sv[2].Y)), loY, hiY)
	maxY := clampInt(math.Ceil(max3(sv[0].Y, sv[1].Y, sv[2].Y)), loY, hiY)
	if minX > maxX || minY > maxY {
		return
	}

	// Edge 0: v1 -> v2, Edge 1: v2 -> v0, Edge 2: v0 -> v1
	A0, B0, C0 := edgeCoeffs(sv[1].X, sv[1].Y, sv[2].X, sv[2].Y)
	A1, B1, C1 := edgeCoeffs(sv[2].X, sv[2].Y, sv[0].X, sv[0].Y)
	A2, B2, C2 := edgeCoeffs(sv[0].X, sv[0].Y, sv[1].X, sv[1].Y)

	// Flip clockwise triangles so inside is positive for either winding.
	if area2 < 0 {
		A0, B0, C0 = -A0, -B0, -C0
		A1, B1, C1 = -A1, -B1, -C1
		A2, B2, C2 = -A2, -B2, -C2
		area2 = -area2
	}
	invArea := 1.0 / area2

	px := float64(minX) + 0.5
	py := float64(minY) + 0.5
	w0Row := edgeFunc(A0, B0, C0, px, py)
	w1Row := edgeFunc(A1, B1, C1, px, py)
	w2Row := edgeFunc(A2, B2, C2, px, py)

	width := r.fb.Width
	zbuffer := r.zbuffer
	pixels := r.fb.Pixels

	for y := minY; y <= maxY; y++ {
		w0, w1, w2 := w0Row, w1Row, w2Row
		rowOffset := y * width

		for x := minX; x <= maxX; x++ {
			if w0 >= 0 && w1 >= 0 && w2 >= 0 {
				bc0 := w0 * invArea
				bc1 := w1 * invArea
				bc2 := w2 * invArea

				z := bc0*sv[0].Z + bc1*sv[1].Z + bc2*sv[2].Z
				idx := rowOffset + x
				// Nearer-or-equal wins; samples outside the depth range are clipped.
				if z >= 0 && z <= 1 && z <= zbuffer[idx] {
					zbuffer[idx] = z
					pixels[idx] = ColorFromFloats(
						float32(bc0*sv[0].R+bc1*sv[1].R+bc2*sv[2].R),
						float32(bc0*sv[0].G+bc1*sv[1].G+bc2*sv[2].G),
						float32(bc0*sv[0].B+bc1*sv[1].B+bc2*sv[2].B),
					)
				}
			}

			w0 += A0
			w1 += A1
			w2 += A2
		}

		w0Row += B0
		w1Row += B1
		w2Row += B2
	}
}

// edgeCoeffs returns A, B, C for the edge function A*x + B*y + C of the
// directed edge (x0, y0) -> (x1, y1). The sign tells which side a point is on.
func edgeCoeffs(x0, y0, x1, y1 float64) (A, B, C float64) {
	A = y0 - y1
	B = x1 - x0
	C = x0*y1 - x1*y0
	return
}

// edgeFunc evaluates an edge function at point (x, y).
func edgeFunc(A, B, C, x, y float64) float64 {
	return A*x + B*y + C
}

// clampInt converts v to an int in [lo, hi] without overflowing on huge
// coordinates from vertices close to the eye plane.
func clampInt(v float64, lo, hi int) int {
	if v <= float64(lo) {
		return lo
	}
	if v >= float64(hi) {
		return hi
	}
	return int(v)
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}
