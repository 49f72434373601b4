package render

import (
	"github.com/taigrr/facet/pkg/math3d"
)

// Plane is the plane Normal·p + D = 0.
type Plane struct {
	Normal math3d.Vec3
	D      float64
}

// Normalize scales the plane equation so the normal has unit length.
func (p *Plane) Normalize() {
	l := p.Normal.Len()
	if l == 0 {
		return
	}
	p.Normal = p.Normal.Scale(1.0 / l)
	p.D /= l
}

// DistanceToPoint returns the signed distance from the plane to a point.
// Positive = in front (same side as normal), negative = behind.
func (p Plane) DistanceToPoint(point math3d.Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

// Frustum is the clip volume of a transform as 6 inward-facing planes:
// Left, Right, Bottom, Top, Near, Far.
type Frustum struct {
	Planes [6]Plane
}

// Frustum plane indices.
const (
	FrustumLeft = iota
	FrustumRight
	FrustumBottom
	FrustumTop
	FrustumNear
	FrustumFar
)

// FrustumFromMatrix extracts the clip planes of m using the Gribb/Hartmann
// method. With m = projection·modelView the planes are in model space.
func FrustumFromMatrix(m math3d.Mat4) Frustum {
	var f Frustum
	row := func(i int) (math3d.Vec3, float64) {
		return math3d.V3(m[i], m[i+4], m[i+8]), m[i+12]
	}
	w, ww := row(3)
	for axis := range 3 {
		r, rw := row(axis)
		f.Planes[axis*2] = Plane{Normal: w.Add(r), D: ww + rw}
		f.Planes[axis*2+1] = Plane{Normal: w.Sub(r), D: ww - rw}
	}
	for i := range f.Planes {
		f.Planes[i].Normalize()
	}
	return f
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min math3d.Vec3
	Max math3d.Vec3
}

// IntersectAABB reports whether any part of box may be inside the frustum.
// It tests the corner furthest along each plane normal, so boxes near a
// frustum edge can be reported visible when they are not.
func (f Frustum) IntersectAABB(box AABB) bool {
	for _, plane := range f.Planes {
		p := math3d.V3(
			selectComponent(plane.Normal.X >= 0, box.Max.X, box.Min.X),
			selectComponent(plane.Normal.Y >= 0, box.Max.Y, box.Min.Y),
			selectComponent(plane.Normal.Z >= 0, box.Max.Z, box.Min.Z),
		)
		if plane.DistanceToPoint(p) < 0 {
			return false
		}
	}
	return true
}

// ContainsPoint tests if a point is inside the frustum.
func (f Frustum) ContainsPoint(p math3d.Vec3) bool {
	for i := range f.Planes {
		if f.Planes[i].DistanceToPoint(p) < 0 {
			return false
		}
	}
	return true
}

func selectComponent(cond bool, a, b float64) float64 {
	if cond {
		return a
	}
	return b
}
