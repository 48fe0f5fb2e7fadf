// Package vmath holds the float64 vector and quaternion helpers shared by the
// physics registry and the gameplay kernel.
package vmath

import "github.com/go-gl/mathgl/mgl64"

// Epsilon is the magnitude below which a vector is treated as zero.
const Epsilon = 1e-4

// Vec3 is a float64 3D vector. Right-handed, Y up, -Z forward.
type Vec3 struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
	Z float64 `json:"z" msgpack:"z"`
}

// Forward is the local forward axis of every oriented object.
var Forward = Vec3{0, 0, -1}

func (v Vec3) mgl() mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

func vecFromMgl(m mgl64.Vec3) Vec3 {
	return Vec3{m[0], m[1], m[2]}
}

func (v Vec3) Add(o Vec3) Vec3 {
	return vecFromMgl(v.mgl().Add(o.mgl()))
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return vecFromMgl(v.mgl().Sub(o.mgl()))
}

func (v Vec3) Scale(s float64) Vec3 {
	return vecFromMgl(v.mgl().Mul(s))
}

func (v Vec3) Dot(o Vec3) float64 {
	return v.mgl().Dot(o.mgl())
}

func (v Vec3) Cross(o Vec3) Vec3 {
	return vecFromMgl(v.mgl().Cross(o.mgl()))
}

func (v Vec3) LenSq() float64 {
	return v.mgl().LenSqr()
}

func (v Vec3) Len() float64 {
	return v.mgl().Len()
}

// Dist returns the euclidean distance between two points.
func (v Vec3) Dist(o Vec3) float64 {
	return v.Sub(o).Len()
}

// Normalize returns the unit vector, or the zero vector when the
// magnitude is below Epsilon.
func (v Vec3) Normalize() Vec3 {
	if v.Len() < Epsilon {
		return Vec3{}
	}
	return vecFromMgl(v.mgl().Normalize())
}

// ClampLen limits the magnitude to max, keeping direction.
func (v Vec3) ClampLen(max float64) Vec3 {
	l := v.Len()
	if l <= max || l == 0 {
		return v
	}
	return v.Scale(max / l)
}

// Rotate applies a unit quaternion to the vector.
func (v Vec3) Rotate(q Quat) Vec3 {
	return vecFromMgl(q.mgl().Rotate(v.mgl()))
}

// RotateY rotates the vector around the Y axis by angle radians.
func (v Vec3) RotateY(angle float64) Vec3 {
	return vecFromMgl(mgl64.QuatRotate(angle, mgl64.Vec3{0, 1, 0}).Rotate(v.mgl()))
}

func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}
