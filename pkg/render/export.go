package render

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/draw"
)

// Format is an image file format.
type Format int

const (
	FormatPNG Format = iota
	FormatWebP
)

func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatWebP:
		return "webp"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		return FormatPNG, nil
	case ".webp":
		return FormatWebP, nil
	default:
		return 0, fmt.Errorf("unsupported image format %q (use .png or .webp)", ext)
	}
}

// EncodeImage writes img in the given format. WebP output is lossless.
func EncodeImage(w io.Writer, img image.Image, f Format) error {
	switch f {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatWebP:
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return fmt.Errorf("webp encode: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("encode %v: unsupported format", f)
	}
}

// SaveImage writes img to path, choosing the format by extension.
func SaveImage(path string, img image.Image) (err error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()
	return EncodeImage(out, img, f)
}

// Downsample scales img to width x height with Catmull-Rom filtering. Frames
// are opaque, so no alpha premultiplication is needed.
func Downsample(img image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}
