package render

import (
	"image"
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// TerminalPresenter shows frames on a terminal screen, two framebuffer rows
// per cell.
type TerminalPresenter struct {
	Screen uv.Screen
	// Display flushes the drawn cells to the terminal.
	Display func() error
	// OnResize is called with the new cell size before the first frame of a
	// new framebuffer size is drawn.
	OnResize func(cols, rows int)
	// Status, when set, supplies a line drawn over the bottom row.
	Status func() string

	statusStyle uv.Style
}

// NewTerminalPresenter creates a presenter drawing to scr.
func NewTerminalPresenter(scr uv.Screen, display func() error) *TerminalPresenter {
	return &TerminalPresenter{
		Screen:      scr,
		Display:     display,
		statusStyle: uv.Style{Fg: color.RGBA{220, 220, 220, 255}, Bg: color.RGBA{0, 0, 0, 255}},
	}
}

// FramebufferSize returns the framebuffer size for a terminal of cols x rows
// cells.
func FramebufferSize(cols, rows int) (width, height int) {
	return cols, rows * 2
}

// Resize implements Resizer.
func (p *TerminalPresenter) Resize(width, height int) {
	if p.OnResize != nil {
		p.OnResize(width, (height+1)/2)
	}
}

// Present draws fb and flushes it.
func (p *TerminalPresenter) Present(fb *Framebuffer) error {
	rows := (fb.Height + 1) / 2
	fb.Draw(p.Screen, image.Rect(0, 0, fb.Width, rows))
	if p.Status != nil && rows > 0 {
		p.drawText(0, rows-1, fb.Width, p.Status())
	}
	if p.Display == nil {
		return nil
	}
	return p.Display()
}

// drawText writes s at (x, y), truncated to width cells.
func (p *TerminalPresenter) drawText(x, y, width int, s string) {
	col := x
	for _, r := range s {
		if col >= x+width {
			break
		}
		p.Screen.SetCell(col, y, &uv.Cell{Content: string(r), Width: 1, Style: p.statusStyle})
		col++
	}
}

// Draw converts the framebuffer to terminal cells and draws them on the
// screen. The framebuffer height should be 2x the terminal height.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	// Each terminal row represents 2 framebuffer rows
	// We use ▀ (upper half block) with fg=top color and bg=bottom color
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := row * 2
		botY := topY + 1

		for col := area.Min.X; col < area.Max.X && col < fb.Width; col++ {
			cell := &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: rgbaToColor(fb.GetPixel(col, topY)),
					Bg: rgbaToColor(fb.GetPixel(col, botY)),
				},
			}
			scr.SetCell(col, row, cell)
		}
	}
}

// rgbaToColor converts Color to the color.Color interface.
func rgbaToColor(c Color) color.Color {
	if c.A == 0 {
		return nil // Transparent = no color
	}
	return c
}
