// Package scene turns viewer control values into the projection and
// model-view matrices a rasterizer needs each frame.
package scene

import (
	"fmt"
	"math"
	"strings"
)

// ProjectionMode selects the camera projection family.
type ProjectionMode int

const (
	Perspective  ProjectionMode = iota // Foreshortened frustum projection
	Orthographic                       // Parallel projection
	Oblique                            // Parallel projection sheared by fixed angles
)

var projectionNames = [...]string{
	Perspective:  "perspective",
	Orthographic: "orthographic",
	Oblique:      "oblique",
}

func (m ProjectionMode) String() string {
	if m < 0 || int(m) >= len(projectionNames) {
		return fmt.Sprintf("ProjectionMode(%d)", int(m))
	}
	return projectionNames[m]
}

// Next returns the following mode, wrapping from Oblique to Perspective.
func (m ProjectionMode) Next() ProjectionMode {
	return (m + 1) % ProjectionMode(len(projectionNames))
}

// ParseProjectionMode parses a mode name as produced by String.
func ParseProjectionMode(s string) (ProjectionMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range projectionNames {
		if s == name {
			return ProjectionMode(i), nil
		}
	}
	return Perspective, fmt.Errorf("unknown projection %q (want perspective, orthographic or oblique)", s)
}

// UI knob ranges for the camera controls.
const (
	UIMin    = 0.0
	UIMax    = 100.0
	UICenter = 50.0
)

// FrameParameters is the control snapshot a single frame is composed from.
// It is a plain value: copying it is how a frame freezes its inputs.
type FrameParameters struct {
	CameraAngle float64 // UI value in [0, 100]; 50 faces the object head-on
	CameraZoom  float64 // UI value in [0, 100]; 50 is the default distance
	Projection  ProjectionMode

	X, Y, Z float64 // Object translation

	// Object rotation in radians. AngleX turns about the Y axis and AngleY
	// about the X axis; see Compose.
	AngleX, AngleY, AngleZ float64

	Scale float64 // Uniform object scale
}

// Defaults returns the viewer's reset preset.
func Defaults() FrameParameters {
	return FrameParameters{
		CameraAngle: UICenter,
		CameraZoom:  UICenter,
		Projection:  Perspective,
		X:           0.1,
		AngleX:      2.0,
		AngleY:      3.2,
		Scale:       1,
	}
}

// Neutral returns centered camera controls with no object transform.
func Neutral() FrameParameters {
	return FrameParameters{
		CameraAngle: UICenter,
		CameraZoom:  UICenter,
		Projection:  Perspective,
		Scale:       1,
	}
}

// CameraAngleRadians maps the camera angle knob to a signed orbit angle:
// the full knob range sweeps two turns, centered on zero.
func (p FrameParameters) CameraAngleRadians() float64 {
	return (p.CameraAngle - UICenter) * math.Pi / 25
}

// CameraRadius maps the zoom knob to the camera distance before any
// projection-specific rescaling.
func (p FrameParameters) CameraRadius() float64 {
	return -(p.CameraZoom-UICenter)/25 + 5.5
}
