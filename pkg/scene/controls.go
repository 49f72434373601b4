package scene

import (
	"fmt"
	"math"
	"sync"

	"github.com/charmbracelet/harmonica"
)

// Knob identifies one continuous control.
type Knob int

const (
	KnobCameraAngle Knob = iota
	KnobCameraZoom
	KnobX
	KnobY
	KnobZ
	KnobAngleX
	KnobAngleY
	KnobAngleZ
	KnobScale
	knobCount
)

var knobNames = [...]string{
	KnobCameraAngle: "cameraAngle",
	KnobCameraZoom:  "cameraZoom",
	KnobX:           "x",
	KnobY:           "y",
	KnobZ:           "z",
	KnobAngleX:      "angleX",
	KnobAngleY:      "angleY",
	KnobAngleZ:      "angleZ",
	KnobScale:       "scale",
}

func (k Knob) String() string {
	if k < 0 || k >= knobCount {
		return fmt.Sprintf("Knob(%d)", int(k))
	}
	return knobNames[k]
}

// MinScale is the smallest object scale the controls will produce.
const MinScale = 0.01

// Controls is the live control source. UI handlers mutate it from their own
// goroutine; the render loop reads it once per frame through Snapshot.
//
// Held keys feed velocity into a knob with Nudge. Every Step applies that
// velocity and lets a critically damped spring bleed it back to zero, so a
// knob glides to rest instead of stopping dead.
type Controls struct {
	mu       sync.Mutex
	params   FrameParameters
	defaults FrameParameters

	velocity [knobCount]float64
	accel    [knobCount]float64 // spring state for animating velocity toward 0
	spring   harmonica.Spring
}

// NewControls creates controls starting at defaults. fps is the rate Step
// will be called at.
func NewControls(defaults FrameParameters, fps int) *Controls {
	c := &Controls{
		defaults: clampParams(defaults),
		// Frequency 4.0 = moderate speed, damping 1.0 = critically damped (no overshoot)
		spring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
	c.params = c.defaults
	return c
}

// Snapshot returns the current values as an immutable frame input.
func (c *Controls) Snapshot() FrameParameters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params
}

// Set replaces every value at once.
func (c *Controls) Set(p FrameParameters) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.params = clampParams(p)
	c.velocity = [knobCount]float64{}
	c.accel = [knobCount]float64{}
}

// Reset restores the defaults and stops all motion.
func (c *Controls) Reset() {
	c.Set(c.defaults)
}

// SetProjection selects the projection mode.
func (c *Controls) SetProjection(m ProjectionMode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.params.Projection = m
}

// CycleProjection advances to the next projection mode and returns it.
func (c *Controls) CycleProjection() ProjectionMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.params.Projection = c.params.Projection.Next()
	return c.params.Projection
}

// Adjust moves a knob by delta immediately.
func (c *Controls) Adjust(k Knob, delta float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v := knob(&c.params, k); v != nil {
		*v += delta
		c.params = clampParams(c.params)
	}
}

// Nudge adds velocity (knob units per Step) to a knob.
func (c *Controls) Nudge(k Knob, impulse float64) {
	if k < 0 || k >= knobCount {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.velocity[k] += impulse
}

// Step applies knob velocities and decays them toward zero.
func (c *Controls) Step() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range knobCount {
		if c.velocity[k] == 0 && c.accel[k] == 0 {
			continue
		}
		*knob(&c.params, k) += c.velocity[k]
		c.velocity[k], c.accel[k] = c.spring.Update(c.velocity[k], c.accel[k], 0)
		if math.Abs(c.velocity[k]) < 1e-6 && math.Abs(c.accel[k]) < 1e-6 {
			c.velocity[k], c.accel[k] = 0, 0
		}
	}
	c.params = clampParams(c.params)
}

func knob(p *FrameParameters, k Knob) *float64 {
	switch k {
	case KnobCameraAngle:
		return &p.CameraAngle
	case KnobCameraZoom:
		return &p.CameraZoom
	case KnobX:
		return &p.X
	case KnobY:
		return &p.Y
	case KnobZ:
		return &p.Z
	case KnobAngleX:
		return &p.AngleX
	case KnobAngleY:
		return &p.AngleY
	case KnobAngleZ:
		return &p.AngleZ
	case KnobScale:
		return &p.Scale
	}
	return nil
}

// clampParams keeps the camera knobs inside their UI range and the scale
// positive.
func clampParams(p FrameParameters) FrameParameters {
	p.CameraAngle = clamp(p.CameraAngle, UIMin, UIMax)
	p.CameraZoom = clamp(p.CameraZoom, UIMin, UIMax)
	if p.Scale < MinScale || math.IsNaN(p.Scale) {
		p.Scale = MinScale
	}
	return p
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
