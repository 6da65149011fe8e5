package fit

import (
	"github.com/ecopia-map/urdf_simplifier/internal/geometry"
	"github.com/go-gl/mathgl/mgl64"
)

// FitAABB returns the axis-aligned box of pc. A single point yields zero extents.
func FitAABB(pc geometry.PointCloud) FittedBox {
	min, max := pc.Bounds()
	return FittedBox{
		Extents:   max.Sub(min),
		Transform: geometry.NewRigidTransform(mgl64.Ident3(), min.Add(max).Mul(0.5)),
	}
}
