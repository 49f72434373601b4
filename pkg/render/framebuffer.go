// Package render rasterizes facet meshes into a framebuffer and drives the
// frame loop that presents them.
package render

import (
	"image"
	"image/color"
)

// Color is an alias for color.RGBA for convenience.
type Color = color.RGBA

// ClearColor is the background every frame starts from.
var ClearColor = RGB(51, 51, 51)

// RGB creates an opaque color from RGB values.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 255}
}

// ColorFromFloats converts 0-1 channels to an opaque color. Alpha is dropped
// because frames are drawn without blending.
func ColorFromFloats(r, g, b float32) Color {
	return RGB(unitToByte(r), unitToByte(g), unitToByte(b))
}

func unitToByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

// Framebuffer is a 2D array of pixels. Terminal presenters show two rows per
// cell using half-block characters.
type Framebuffer struct {
	Width  int
	Height int
	Pixels []Color // Row-major pixel data
}

// NewFramebuffer creates a new framebuffer with the given dimensions.
func NewFramebuffer(width, height int) *Framebuffer {
	fb := &Framebuffer{}
	fb.Resize(width, height)
	return fb
}

// Resize changes the dimensions, discarding the contents.
func (fb *Framebuffer) Resize(width, height int) {
	width, height = max(width, 0), max(height, 0)
	fb.Width = width
	fb.Height = height
	if cap(fb.Pixels) >= width*height {
		fb.Pixels = fb.Pixels[:width*height]
	} else {
		fb.Pixels = make([]Color, width*height)
	}
}

// Clear fills the framebuffer with a solid color.
func (fb *Framebuffer) Clear(c Color) {
	for i := range fb.Pixels {
		fb.Pixels[i] = c
	}
}

// SetPixel sets a pixel at (x, y). Out of range coordinates are ignored.
func (fb *Framebuffer) SetPixel(x, y int, c Color) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return
	}
	fb.Pixels[y*fb.Width+x] = c
}

// GetPixel returns the color at (x, y).
// Returns transparent black if out of bounds.
func (fb *Framebuffer) GetPixel(x, y int) Color {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return Color{}
	}
	return fb.Pixels[y*fb.Width+x]
}

// ToImage copies the framebuffer into a standard image.RGBA.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			img.SetRGBA(x, y, fb.Pixels[y*fb.Width+x])
		}
	}
	return img
}
