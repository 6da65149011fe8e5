package geometry

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vectors shorter than this cannot be normalized.
const DefaultDegenerateThreshold = 1e-12

// Point3 is a point or a free vector expressed in a single frame.
type Point3 = mgl64.Vec3

// PointCloud is an ordered sequence of points sharing the same local frame.
// Duplicates are allowed.
type PointCloud []Point3

type DegenerateVectorError struct {
	Vector    Point3
	Threshold float64
}

func (e *DegenerateVectorError) Error() string {
	return fmt.Sprintf("cannot normalize vector %v: length %g is below threshold %g", e.Vector, e.Vector.Len(), e.Threshold)
}

// Normalize returns v scaled to unit length.
func Normalize(v Point3) (Point3, error) {
	return NormalizeThreshold(v, DefaultDegenerateThreshold)
}

// NormalizeThreshold is Normalize with a caller supplied degeneracy threshold.
func NormalizeThreshold(v Point3, threshold float64) (Point3, error) {
	l := v.Len()
	if l <= threshold || math.IsNaN(l) {
		return Point3{}, &DegenerateVectorError{Vector: v, Threshold: threshold}
	}
	return v.Mul(1 / l), nil
}

// ScaleElem multiplies v by s component by component.
func ScaleElem(v, s Point3) Point3 {
	return Point3{v[0] * s[0], v[1] * s[1], v[2] * s[2]}
}

// ApproxEqual compares a and b component by component with an absolute tolerance.
func ApproxEqual(a, b Point3, tolerance float64) bool {
	for i := 0; i < 3; i++ {
		if math.Abs(a[i]-b[i]) > tolerance {
			return false
		}
	}
	return true
}

// Perpendicular returns a unit vector orthogonal to the unit vector n.
func Perpendicular(n Point3) Point3 {
	// cross with the world axis least aligned with n
	axis := Point3{1, 0, 0}
	ax, ay, az := math.Abs(n[0]), math.Abs(n[1]), math.Abs(n[2])
	if ay < ax && ay <= az {
		axis = Point3{0, 1, 0}
	} else if az < ax && az < ay {
		axis = Point3{0, 0, 1}
	}
	return n.Cross(axis).Normalize()
}

// Bounds returns the per-axis minimum and maximum of the cloud.
// The cloud must not be empty.
func (pc PointCloud) Bounds() (min, max Point3) {
	min, max = pc[0], pc[0]
	for _, p := range pc[1:] {
		for i := 0; i < 3; i++ {
			if p[i] < min[i] {
				min[i] = p[i]
			}
			if p[i] > max[i] {
				max[i] = p[i]
			}
		}
	}
	return min, max
}

func (pc PointCloud) Centroid() Point3 {
	var c Point3
	if len(pc) == 0 {
		return c
	}
	for _, p := range pc {
		c = c.Add(p)
	}
	return c.Mul(1 / float64(len(pc)))
}

// Transform returns a new cloud with every point mapped through t.
func (pc PointCloud) Transform(t RigidTransform) PointCloud {
	out := make(PointCloud, len(pc))
	for i, p := range pc {
		out[i] = t.Apply(p)
	}
	return out
}

// MaxAbsSum is the sum over axes of the largest absolute coordinate, used to
// scale numeric tolerances to the magnitude of the data.
func (pc PointCloud) MaxAbsSum() float64 {
	var m Point3
	for _, p := range pc {
		for i := 0; i < 3; i++ {
			if a := math.Abs(p[i]); a > m[i] {
				m[i] = a
			}
		}
	}
	return m[0] + m[1] + m[2]
}
