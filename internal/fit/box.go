// Package fit computes bounding boxes of point clouds and post-processes them.
package fit

import (
	"fmt"

	"github.com/ecopia-map/urdf_simplifier/internal/geometry"
	"github.com/go-gl/mathgl/mgl64"
)

// FittedBox is a box with full extents along its local axes, placed in the
// source frame by Transform.
type FittedBox struct {
	Extents   geometry.Point3
	Transform geometry.RigidTransform
}

func (b FittedBox) Volume() float64 {
	return b.Extents[0] * b.Extents[1] * b.Extents[2]
}

// Contains reports whether p lies inside the box, allowing tolerance on every side.
func (b FittedBox) Contains(p geometry.Point3, tolerance float64) bool {
	local := b.Transform.Inverse().Apply(p)
	for axis := 0; axis < 3; axis++ {
		half := b.Extents[axis] / 2
		if local[axis] < -half-tolerance || local[axis] > half+tolerance {
			return false
		}
	}
	return true
}

func (b FittedBox) String() string {
	return fmt.Sprintf("box %v at %v", b.Extents, b.Transform.Translation)
}

// boxInBasis fits the tightest box whose axes are the columns of rotation. A
// rotation that drifted from orthonormal is repaired first.
func boxInBasis(pc geometry.PointCloud, rotation mgl64.Mat3) FittedBox {
	rotation = geometry.EnsureRotation(rotation)
	axes := [3]geometry.Point3{rotation.Col(0), rotation.Col(1), rotation.Col(2)}

	var min, max geometry.Point3
	for i, p := range pc {
		for axis := 0; axis < 3; axis++ {
			d := axes[axis].Dot(p)
			if i == 0 || d < min[axis] {
				min[axis] = d
			}
			if i == 0 || d > max[axis] {
				max[axis] = d
			}
		}
	}
	center := min.Add(max).Mul(0.5)
	return FittedBox{
		Extents:   max.Sub(min),
		Transform: geometry.NewRigidTransform(rotation, rotation.Mul3x1(center)),
	}
}
