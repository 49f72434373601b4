package math3d

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidArgument is returned by matrix constructors given parameters that
// cannot describe a valid transform (zero-length axis, degenerate bounds).
var ErrInvalidArgument = errors.New("invalid argument")

// axisEpsilon is the shortest rotation axis Rotate accepts.
const axisEpsilon = 1e-12

// Mat4 is a 4x4 matrix stored in column-major order.
// This matches OpenGL conventions for easier reasoning about transforms.
//
// Memory layout (indices):
// | 0  4  8  12 |
// | 1  5  9  13 |
// | 2  6  10 14 |
// | 3  7  11 15 |
//
// The pointer-receiver operations write their result into the receiver and
// accept the receiver as one of their operands, so chains like
//
//	mv.Translate(&mv, v)
//	mv.Rotate(&mv, a, axis)
//
// accumulate a single transform by right-multiplication.
type Mat4 [16]float64

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// SetIdentity sets out to the identity matrix.
func (out *Mat4) SetIdentity() *Mat4 {
	*out = Identity()
	return out
}

// Translate sets out = m · T(v).
func (out *Mat4) Translate(m *Mat4, v Vec3) *Mat4 {
	x, y, z := v.X, v.Y, v.Z
	if out != m {
		copy(out[:12], m[:12])
	}
	// Columns 0-2 are never written, so each row only reads its own
	// translation element before replacing it.
	out[12] = m[0]*x + m[4]*y + m[8]*z + m[12]
	out[13] = m[1]*x + m[5]*y + m[9]*z + m[13]
	out[14] = m[2]*x + m[6]*y + m[10]*z + m[14]
	out[15] = m[3]*x + m[7]*y + m[11]*z + m[15]
	return out
}

// Rotate sets out = m · R(angle, axis). The axis is normalized here; a
// zero-length axis returns ErrInvalidArgument and leaves out untouched.
func (out *Mat4) Rotate(m *Mat4, angle float64, axis Vec3) error {
	l := axis.Len()
	if l < axisEpsilon || math.IsNaN(l) || math.IsInf(l, 0) {
		return fmt.Errorf("rotate about %v: zero-length axis: %w", axis, ErrInvalidArgument)
	}
	x, y, z := axis.X/l, axis.Y/l, axis.Z/l
	s, c := math.Sincos(angle)
	t := 1 - c

	a00, a01, a02, a03 := m[0], m[1], m[2], m[3]
	a10, a11, a12, a13 := m[4], m[5], m[6], m[7]
	a20, a21, a22, a23 := m[8], m[9], m[10], m[11]

	b00, b01, b02 := x*x*t+c, y*x*t+z*s, z*x*t-y*s
	b10, b11, b12 := x*y*t-z*s, y*y*t+c, z*y*t+x*s
	b20, b21, b22 := x*z*t+y*s, y*z*t-x*s, z*z*t+c

	out[0] = a00*b00 + a10*b01 + a20*b02
	out[1] = a01*b00 + a11*b01 + a21*b02
	out[2] = a02*b00 + a12*b01 + a22*b02
	out[3] = a03*b00 + a13*b01 + a23*b02
	out[4] = a00*b10 + a10*b11 + a20*b12
	out[5] = a01*b10 + a11*b11 + a21*b12
	out[6] = a02*b10 + a12*b11 + a22*b12
	out[7] = a03*b10 + a13*b11 + a23*b12
	out[8] = a00*b20 + a10*b21 + a20*b22
	out[9] = a01*b20 + a11*b21 + a21*b22
	out[10] = a02*b20 + a12*b21 + a22*b22
	out[11] = a03*b20 + a13*b21 + a23*b22

	if out != m {
		copy(out[12:], m[12:])
	}
	return nil
}

// Scale sets out = m · S(v).
func (out *Mat4) Scale(m *Mat4, v Vec3) *Mat4 {
	for i := range 4 {
		out[i] = m[i] * v.X
		out[i+4] = m[i+4] * v.Y
		out[i+8] = m[i+8] * v.Z
		out[i+12] = m[i+12]
	}
	return out
}

// Transpose sets out to the transpose of m. out may be m.
func (out *Mat4) Transpose(m *Mat4) *Mat4 {
	if out == m {
		// The off-diagonal upper triangle is overwritten before its mirror is
		// read, so stage it first.
		a01, a02, a03 := m[1], m[2], m[3]
		a12, a13 := m[6], m[7]
		a23 := m[11]

		out[1] = m[4]
		out[2] = m[8]
		out[3] = m[12]
		out[4] = a01
		out[6] = m[9]
		out[7] = m[13]
		out[8] = a02
		out[9] = a12
		out[11] = m[14]
		out[12] = a03
		out[13] = a13
		out[14] = a23
		return out
	}

	out[0] = m[0]
	out[1] = m[4]
	out[2] = m[8]
	out[3] = m[12]
	out[4] = m[1]
	out[5] = m[5]
	out[6] = m[9]
	out[7] = m[13]
	out[8] = m[2]
	out[9] = m[6]
	out[10] = m[10]
	out[11] = m[14]
	out[12] = m[3]
	out[13] = m[7]
	out[14] = m[11]
	out[15] = m[15]
	return out
}

// Multiply sets out = a · b. out may be a, b, or both.
func (out *Mat4) Multiply(a, b *Mat4) *Mat4 {
	*out = a.Mul(*b)
	return out
}

// SetPerspective sets out to a symmetric perspective projection.
// fovy is the vertical field of view in radians, aspect is width/height, and
// near and far must satisfy 0 < near < far.
func (out *Mat4) SetPerspective(fovy, aspect, near, far float64) error {
	if !finite(fovy, aspect, near, far) {
		return fmt.Errorf("perspective: non-finite argument: %w", ErrInvalidArgument)
	}
	if near <= 0 || far <= near {
		return fmt.Errorf("perspective: need 0 < near < far, got near=%g far=%g: %w", near, far, ErrInvalidArgument)
	}
	if fovy <= 0 || fovy >= math.Pi {
		return fmt.Errorf("perspective: fovy %g outside (0, π): %w", fovy, ErrInvalidArgument)
	}
	if aspect == 0 {
		return fmt.Errorf("perspective: zero aspect: %w", ErrInvalidArgument)
	}
	*out = Perspective(fovy, aspect, near, far)
	return nil
}

// SetOrthographic sets out to a parallel projection of the given box.
// Each pair of opposite bounds must differ.
func (out *Mat4) SetOrthographic(left, right, bottom, top, near, far float64) error {
	if !finite(left, right, bottom, top, near, far) {
		return fmt.Errorf("orthographic: non-finite argument: %w", ErrInvalidArgument)
	}
	if left == right || bottom == top || near == far {
		return fmt.Errorf("orthographic: degenerate box [%g,%g]x[%g,%g]x[%g,%g]: %w",
			left, right, bottom, top, near, far, ErrInvalidArgument)
	}
	*out = Orthographic(left, right, bottom, top, near, far)
	return nil
}

// SetOblique sets out to a shear that skews X and Y by cot(theta) and
// cot(phi) per unit of Z, so (x, y, z) maps to (x + z·cot θ, y + z·cot φ, z).
// Angles are in degrees. Multiples of 180° have no cotangent and return
// ErrInvalidArgument.
func (out *Mat4) SetOblique(theta, phi float64) error {
	if !finite(theta, phi) {
		return fmt.Errorf("oblique: non-finite angle: %w", ErrInvalidArgument)
	}
	if math.Mod(theta, 180) == 0 || math.Mod(phi, 180) == 0 {
		return fmt.Errorf("oblique: angles %g°, %g° have no cotangent: %w", theta, phi, ErrInvalidArgument)
	}
	cotT := cot(DegToRad(theta))
	cotP := cot(DegToRad(phi))

	// Built with the shear in the third row, then transposed into the
	// column-major layout the rest of the pipeline multiplies with.
	*out = Identity()
	out[2] = cotT
	out[6] = cotP
	out.Transpose(out)
	return nil
}

// Translate creates a translation matrix.
func Translate(v Vec3) Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		v.X, v.Y, v.Z, 1,
	}
}

// Scale creates a scaling matrix.
func Scale(v Vec3) Mat4 {
	return Mat4{
		v.X, 0, 0, 0,
		0, v.Y, 0, 0,
		0, 0, v.Z, 0,
		0, 0, 0, 1,
	}
}

// ScaleUniform creates a uniform scaling matrix.
func ScaleUniform(s float64) Mat4 {
	return Scale(V3(s, s, s))
}

// Perspective creates a perspective projection matrix without validating
// its arguments; see SetPerspective.
func Perspective(fovy, aspect, near, far float64) Mat4 {
	f := 1.0 / math.Tan(fovy/2)
	nf := 1.0 / (near - far)

	return Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (far + near) * nf, -1,
		0, 0, 2 * far * near * nf, 0,
	}
}

// Orthographic creates an orthographic projection matrix without validating
// its arguments; see SetOrthographic.
func Orthographic(left, right, bottom, top, near, far float64) Mat4 {
	rl := 1.0 / (right - left)
	tb := 1.0 / (top - bottom)
	fn := 1.0 / (far - near)

	return Mat4{
		2 * rl, 0, 0, 0,
		0, 2 * tb, 0, 0,
		0, 0, -2 * fn, 0,
		-(right + left) * rl, -(top + bottom) * tb, -(far + near) * fn, 1,
	}
}

// Mul multiplies two matrices: a * b.
//
//nolint:st1016 // a*b naming convention is clearer for matrix multiplication
func (a Mat4) Mul(b Mat4) Mat4 {
	var m Mat4
	for col := range 4 {
		for row := range 4 {
			var sum float64
			for k := range 4 {
				sum += a[row+k*4] * b[k+col*4]
			}
			m[row+col*4] = sum
		}
	}
	return m
}

// MulVec3 transforms a Vec3 as a point (w=1).
func (m Mat4) MulVec3(v Vec3) Vec3 {
	w := m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]
	if w == 0 {
		w = 1
	}
	return Vec3{
		(m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12]) / w,
		(m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13]) / w,
		(m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14]) / w,
	}
}

// MulVec4 transforms a Vec4.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	return Vec4{
		m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12]*v.W,
		m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13]*v.W,
		m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14]*v.W,
		m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]*v.W,
	}
}

// IsFinite reports whether no element is NaN or ±Inf.
func (m Mat4) IsFinite() bool {
	return finite(m[:]...)
}

// ApproxEqual reports whether every element of m is within eps of b.
func (m Mat4) ApproxEqual(b Mat4, eps float64) bool {
	for i := range m {
		if math.Abs(m[i]-b[i]) > eps {
			return false
		}
	}
	return true
}

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func cot(rad float64) float64 {
	s, c := math.Sincos(rad)
	return c / s
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
