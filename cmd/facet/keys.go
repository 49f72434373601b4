package main

import (
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/taigrr/facet/pkg/scene"
)

// Input step sizes.
const (
	orbitStep     = 1.0  // Camera angle knob units
	zoomStep      = 2.0  // Camera zoom knob units
	spinImpulse   = 0.02 // Radians per frame
	moveStep      = 0.1
	scaleStep     = 0.05
	dragSensitive = 0.01 // Radians of spin per cell of drag
)

type binding struct {
	keys []string
	act  func(v *viewer) (quit bool)
}

func adjust(k scene.Knob, delta float64) func(v *viewer) bool {
	return func(v *viewer) bool {
		v.controls.Adjust(k, delta)
		return false
	}
}

func nudge(k scene.Knob, impulse float64) func(v *viewer) bool {
	return func(v *viewer) bool {
		v.controls.Nudge(k, impulse)
		return false
	}
}

func project(m scene.ProjectionMode) func(v *viewer) bool {
	return func(v *viewer) bool {
		v.controls.SetProjection(m)
		return false
	}
}

var bindings = []binding{
	{[]string{"esc", "escape", "ctrl+c"}, func(*viewer) bool { return true }},
	{[]string{"1"}, project(scene.Perspective)},
	{[]string{"2"}, project(scene.Orthographic)},
	{[]string{"3"}, project(scene.Oblique)},
	{[]string{"p"}, func(v *viewer) bool {
		v.controls.CycleProjection()
		return false
	}},
	{[]string{"left"}, adjust(scene.KnobCameraAngle, -orbitStep)},
	{[]string{"right"}, adjust(scene.KnobCameraAngle, orbitStep)},
	{[]string{"+", "="}, adjust(scene.KnobCameraZoom, zoomStep)},
	{[]string{"-", "_"}, adjust(scene.KnobCameraZoom, -zoomStep)},
	{[]string{"w"}, nudge(scene.KnobAngleY, -spinImpulse)},
	{[]string{"s"}, nudge(scene.KnobAngleY, spinImpulse)},
	{[]string{"a"}, nudge(scene.KnobAngleX, -spinImpulse)},
	{[]string{"d"}, nudge(scene.KnobAngleX, spinImpulse)},
	{[]string{"q"}, nudge(scene.KnobAngleZ, spinImpulse)},
	{[]string{"e"}, nudge(scene.KnobAngleZ, -spinImpulse)},
	{[]string{"h"}, adjust(scene.KnobX, -moveStep)},
	{[]string{"l"}, adjust(scene.KnobX, moveStep)},
	{[]string{"j"}, adjust(scene.KnobY, -moveStep)},
	{[]string{"k"}, adjust(scene.KnobY, moveStep)},
	{[]string{"u"}, adjust(scene.KnobZ, -moveStep)},
	{[]string{"o"}, adjust(scene.KnobZ, moveStep)},
	{[]string{"["}, adjust(scene.KnobScale, -scaleStep)},
	{[]string{"]"}, adjust(scene.KnobScale, scaleStep)},
	{[]string{"f"}, func(v *viewer) bool {
		v.store.ToggleShading()
		return false
	}},
	{[]string{"r"}, func(v *viewer) bool {
		v.controls.Reset()
		return false
	}},
}

// press runs the binding for key. It reports whether the viewer should quit.
func (v *viewer) press(key string) bool {
	for _, b := range bindings {
		for _, k := range b.keys {
			if k == key {
				return b.act(v)
			}
		}
	}
	return false
}

// handleEvent applies one terminal event. It reports whether the viewer
// should quit.
func (v *viewer) handleEvent(ev uv.Event) bool {
	switch ev := ev.(type) {
	case uv.KeyPressEvent:
		for _, b := range bindings {
			if ev.MatchString(b.keys...) {
				return b.act(v)
			}
		}

	case uv.MouseClickEvent:
		v.dragging = true
		v.lastX, v.lastY = ev.X, ev.Y

	case uv.MouseReleaseEvent:
		v.dragging = false

	case uv.MouseMotionEvent:
		if v.dragging {
			v.drag(ev.X-v.lastX, ev.Y-v.lastY)
			v.lastX, v.lastY = ev.X, ev.Y
		}

	case uv.MouseWheelEvent:
		switch ev.Button {
		case uv.MouseWheelUp:
			v.press("+")
		case uv.MouseWheelDown:
			v.press("-")
		}
	}
	return false
}

// drag spins the mesh: horizontal motion about the vertical axis, vertical
// motion about the horizontal one.
func (v *viewer) drag(dx, dy int) {
	v.controls.Nudge(scene.KnobAngleX, float64(dx)*dragSensitive)
	v.controls.Nudge(scene.KnobAngleY, float64(dy)*dragSensitive)
}
