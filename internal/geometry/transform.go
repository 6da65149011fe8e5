package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Rotations whose columns deviate from unit length or orthogonality by more
// than this are re-orthonormalized.
const OrthonormalTolerance = 1e-9

// RigidTransform is a proper rotation followed by a translation.
type RigidTransform struct {
	Rotation    mgl64.Mat3
	Translation Point3
}

func Identity() RigidTransform {
	return RigidTransform{Rotation: mgl64.Ident3()}
}

func NewRigidTransform(rotation mgl64.Mat3, translation Point3) RigidTransform {
	return RigidTransform{Rotation: rotation, Translation: translation}
}

// Apply maps p from the transform's source frame to its target frame.
func (t RigidTransform) Apply(p Point3) Point3 {
	return t.Rotation.Mul3x1(p).Add(t.Translation)
}

// Compose returns the transform that applies other first, then t.
func (t RigidTransform) Compose(other RigidTransform) RigidTransform {
	return RigidTransform{
		Rotation:    t.Rotation.Mul3(other.Rotation),
		Translation: t.Rotation.Mul3x1(other.Translation).Add(t.Translation),
	}
}

func (t RigidTransform) Inverse() RigidTransform {
	rt := t.Rotation.Transpose()
	return RigidTransform{
		Rotation:    rt,
		Translation: rt.Mul3x1(t.Translation).Mul(-1),
	}
}

// Mat4 returns the homogeneous matrix of the transform.
func (t RigidTransform) Mat4() mgl64.Mat4 {
	m := t.Rotation.Mat4()
	m.SetCol(3, t.Translation.Vec4(1))
	return m
}

// ApproxEqual compares rotation entries and translation with an absolute tolerance.
func (t RigidTransform) ApproxEqual(other RigidTransform, tolerance float64) bool {
	return RotationApproxEqual(t.Rotation, other.Rotation, tolerance) &&
		ApproxEqual(t.Translation, other.Translation, tolerance)
}

func RotationApproxEqual(a, b mgl64.Mat3, tolerance float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > tolerance {
			return false
		}
	}
	return true
}

// FromXYZRPY builds a transform from a translation and fixed-axis roll, pitch,
// yaw angles: R = Rz(yaw) * Ry(pitch) * Rx(roll).
func FromXYZRPY(xyz, rpy Point3) RigidTransform {
	r := mgl64.Rotate3DZ(rpy[2]).Mul3(mgl64.Rotate3DY(rpy[1])).Mul3(mgl64.Rotate3DX(rpy[0]))
	return RigidTransform{Rotation: r, Translation: xyz}
}

// RPY decomposes the rotation into fixed-axis roll, pitch, yaw angles.
func (t RigidTransform) RPY() Point3 {
	m := t.Rotation
	cy := math.Hypot(m.At(0, 0), m.At(1, 0))
	if cy > 1e-9 {
		return Point3{
			math.Atan2(m.At(2, 1), m.At(2, 2)),
			math.Atan2(-m.At(2, 0), cy),
			math.Atan2(m.At(1, 0), m.At(0, 0)),
		}
	}
	// gimbal lock, yaw is folded into roll
	return Point3{
		math.Atan2(-m.At(1, 2), m.At(1, 1)),
		math.Atan2(-m.At(2, 0), cy),
		0,
	}
}

// IsOrthonormal reports whether m is a right-handed rotation within tolerance.
func IsOrthonormal(m mgl64.Mat3, tolerance float64) bool {
	c0, c1, c2 := m.Cols()
	if math.Abs(c0.Len()-1) > tolerance || math.Abs(c1.Len()-1) > tolerance || math.Abs(c2.Len()-1) > tolerance {
		return false
	}
	if math.Abs(c0.Dot(c1)) > tolerance || math.Abs(c0.Dot(c2)) > tolerance || math.Abs(c1.Dot(c2)) > tolerance {
		return false
	}
	return m.Det() > 0
}

// Orthonormalize runs Gram-Schmidt over the columns of m and returns a
// right-handed rotation. Degenerate columns are replaced by perpendicular axes.
func Orthonormalize(m mgl64.Mat3) mgl64.Mat3 {
	c0, c1, _ := m.Cols()

	x, err := Normalize(c0)
	if err != nil {
		x = Point3{1, 0, 0}
	}
	y, err := Normalize(c1.Sub(x.Mul(x.Dot(c1))))
	if err != nil {
		y = Perpendicular(x)
	}
	z := x.Cross(y)
	return mgl64.Mat3FromCols(x, y, z)
}

// EnsureRotation returns m unchanged when it is already a proper rotation,
// otherwise its Gram-Schmidt re-orthonormalization.
func EnsureRotation(m mgl64.Mat3) mgl64.Mat3 {
	if IsOrthonormal(m, OrthonormalTolerance) {
		return m
	}
	return Orthonormalize(m)
}
