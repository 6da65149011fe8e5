package fit

import (
	"math"

	"github.com/ecopia-map/urdf_simplifier/internal/simplifier"
)

// PostProcess scales, pads and clamps the extents of box in that order. Padding
// is added on each side, so an extent grows by twice the padding. The transform
// is left unchanged.
func PostProcess(box FittedBox, policy simplifier.AxisPolicy, minSize float64) FittedBox {
	out := box
	for axis := 0; axis < 3; axis++ {
		extent := box.Extents[axis] * policy.ResolveScale(axis)
		extent += 2 * policy.ResolvePadding(axis)
		out.Extents[axis] = math.Max(extent, minSize)
	}
	return out
}
