package fit

import (
	"github.com/ecopia-map/urdf_simplifier/internal/geometry"
	"github.com/ecopia-map/urdf_simplifier/internal/hull"
	"github.com/ecopia-map/urdf_simplifier/internal/simplifier"
)

// Fitter computes a box enclosing pc. h is the hull of pc when a tight fit was
// requested, nil otherwise.
type Fitter func(pc geometry.PointCloud, h *hull.Hull) FittedBox

var fitters = map[simplifier.BoxKind]Fitter{
	simplifier.AABB: func(pc geometry.PointCloud, _ *hull.Hull) FittedBox { return FitAABB(pc) },
	simplifier.OBB:  FitOBB,
}

func FitterFor(kind simplifier.BoxKind) (Fitter, error) {
	f, ok := fitters[kind]
	if !ok {
		return nil, &simplifier.InvalidConfigError{Field: "bbox-type", Value: string(kind), Reason: "no fitter registered"}
	}
	return f, nil
}
