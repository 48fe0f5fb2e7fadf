package vmath

import "github.com/go-gl/mathgl/mgl64"

// Quat is a rotation quaternion. Field layout follows the wire format; the
// algebra is delegated to mgl64.
type Quat struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
	Z float64 `json:"z" msgpack:"z"`
	W float64 `json:"w" msgpack:"w"`
}

// Identity is the no-rotation quaternion.
var Identity = Quat{0, 0, 0, 1}

func (q Quat) mgl() mgl64.Quat {
	return mgl64.Quat{W: q.W, V: mgl64.Vec3{q.X, q.Y, q.Z}}
}

func fromMgl(m mgl64.Quat) Quat {
	return Quat{X: m.V[0], Y: m.V[1], Z: m.V[2], W: m.W}
}

// FromEuler builds a quaternion from intrinsic XYZ Euler angles.
func FromEuler(x, y, z float64) Quat {
	return fromMgl(mgl64.AnglesToQuat(x, y, z, mgl64.XYZ))
}

// FromYawPitch builds a heading orientation: pitch about the local X axis,
// then yaw about world Y.
func FromYawPitch(yaw, pitch float64) Quat {
	q := mgl64.QuatRotate(yaw, mgl64.Vec3{0, 1, 0}).Mul(mgl64.QuatRotate(pitch, mgl64.Vec3{1, 0, 0}))
	return fromMgl(q)
}

// FromUnitVectors returns the shortest rotation taking from onto to.
// Both inputs must be unit length.
func FromUnitVectors(from, to Vec3) Quat {
	return fromMgl(mgl64.QuatBetweenVectors(from.mgl(), to.mgl())).Normalize()
}

func (q Quat) Dot(o Quat) float64 {
	return q.mgl().Dot(o.mgl())
}

func (q Quat) Len() float64 {
	return q.mgl().Len()
}

// Normalize returns the unit quaternion, or Identity for a degenerate input.
func (q Quat) Normalize() Quat {
	if q.Len() == 0 {
		return Identity
	}
	return fromMgl(q.mgl().Normalize())
}

// Mul returns the Hamilton product q*o (apply o, then q).
func (q Quat) Mul(o Quat) Quat {
	return fromMgl(q.mgl().Mul(o.mgl()))
}

// Slerp interpolates from q toward target by t along the shorter arc.
func (q Quat) Slerp(target Quat, t float64) Quat {
	if t <= 0 {
		return q
	}
	if t >= 1 {
		return target
	}

	a, b := q.mgl(), target.mgl()
	cosHalf := a.Dot(b)
	if cosHalf < 0 {
		b = b.Scale(-1)
		cosHalf = -cosHalf
	}
	if cosHalf >= 1 {
		return q
	}
	return fromMgl(mgl64.QuatSlerp(a, b, t))
}
