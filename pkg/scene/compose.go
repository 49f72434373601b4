package scene

import (
	"fmt"

	"github.com/taigrr/facet/pkg/math3d"
)

// Projection constants shared by every mode.
const (
	FieldOfView = 45.0 // Vertical field of view in degrees (perspective)
	ZNear       = 0.1
	ZFar        = 100.0

	// Oblique shear angles in degrees.
	ObliqueTheta = 80.0
	ObliquePhi   = 90.0
)

// Radius rescaling for the parallel projections. They have no foreshortening,
// so the camera is pulled in to keep the object about the same size on screen
// as under perspective at the default zoom.
const (
	defaultRadius     = 5.5
	orthographicRatio = 2.0 / defaultRadius
	obliqueRatio      = 1.5 / defaultRadius
)

// Viewport is the size of the drawing surface in pixels.
type Viewport struct {
	Width, Height int
}

// Aspect returns width / height.
func (v Viewport) Aspect() float64 {
	return float64(v.Width) / float64(v.Height)
}

// Matrices is the output of one composition.
type Matrices struct {
	Projection math3d.Mat4
	ModelView  math3d.Mat4
}

// Compose builds the projection and model-view matrices for one frame.
//
// The model-view matrix is assembled by right-multiplication in a fixed
// order: camera translate (0, 0, -radius), camera orbit about Y, object
// translate, AngleX about Y, AngleY about X, AngleZ about Z, uniform scale.
// The AngleX/AngleY axis pairing is kept as-is so existing control presets
// render the same.
func Compose(p FrameParameters, vp Viewport) (Matrices, error) {
	var out Matrices
	if vp.Width <= 0 || vp.Height <= 0 {
		return out, fmt.Errorf("viewport %dx%d: %w", vp.Width, vp.Height, math3d.ErrInvalidArgument)
	}
	aspect := vp.Aspect()
	radius := p.CameraRadius()

	proj := &out.Projection
	proj.SetIdentity()
	switch p.Projection {
	case Perspective:
		if err := proj.SetPerspective(math3d.DegToRad(FieldOfView), aspect, ZNear, ZFar); err != nil {
			return out, err
		}
	case Orthographic:
		if err := proj.SetOrthographic(-aspect, aspect, -1, 1, ZNear, ZFar); err != nil {
			return out, err
		}
		radius *= orthographicRatio
	case Oblique:
		if err := proj.SetOrthographic(-aspect, aspect, -1, 1, ZNear, ZFar); err != nil {
			return out, err
		}
		radius *= obliqueRatio
		var shear math3d.Mat4
		if err := shear.SetOblique(ObliqueTheta, ObliquePhi); err != nil {
			return out, err
		}
		proj.Multiply(proj, &shear)
	default:
		return out, fmt.Errorf("projection %v: %w", p.Projection, math3d.ErrInvalidArgument)
	}

	mv := &out.ModelView
	mv.SetIdentity()

	// Camera: orbit the object about the vertical axis at a fixed distance.
	mv.Translate(mv, math3d.V3(0, 0, -radius))
	if err := mv.Rotate(mv, p.CameraAngleRadians(), math3d.YAxis()); err != nil {
		return out, err
	}

	// Object.
	mv.Translate(mv, math3d.V3(p.X, p.Y, p.Z))
	if err := mv.Rotate(mv, p.AngleX, math3d.YAxis()); err != nil {
		return out, err
	}
	if err := mv.Rotate(mv, p.AngleY, math3d.XAxis()); err != nil {
		return out, err
	}
	if err := mv.Rotate(mv, p.AngleZ, math3d.ZAxis()); err != nil {
		return out, err
	}
	mv.Scale(mv, math3d.Splat(p.Scale))

	if !out.Projection.IsFinite() || !out.ModelView.IsFinite() {
		return out, fmt.Errorf("non-finite matrices for %+v: %w", p, math3d.ErrInvalidArgument)
	}
	return out, nil
}

// CameraDistance returns the camera radius Compose uses for p, after the
// projection-specific rescaling.
func CameraDistance(p FrameParameters) float64 {
	r := p.CameraRadius()
	switch p.Projection {
	case Orthographic:
		return r * orthographicRatio
	case Oblique:
		return r * obliqueRatio
	}
	return r
}

// Turntable returns n copies of p with the camera angle swept evenly over one
// full orbit, starting at p's own angle.
func Turntable(p FrameParameters, n int) []FrameParameters {
	frames := make([]FrameParameters, n)
	// One orbit (2π) is 50 knob units.
	const orbit = 50.0
	for i := range frames {
		f := p
		f.CameraAngle = p.CameraAngle + orbit*float64(i)/float64(n)
		frames[i] = f
	}
	return frames
}
