package fit

import (
	"errors"
	"fmt"
	"math"

	"github.com/ecopia-map/urdf_simplifier/internal/data"
	"github.com/ecopia-map/urdf_simplifier/internal/geometry"
	"github.com/ecopia-map/urdf_simplifier/internal/hull"
	"github.com/ecopia-map/urdf_simplifier/internal/simplifier"
	"github.com/golang/glog"
)

var ErrEmptyMesh = errors.New("mesh has no vertices")

// FitReport describes the quality of a fit. Ratio is +Inf when the mesh
// does not enclose a positive volume.
type FitReport struct {
	MeshVolume   float64
	BoxVolume    float64 // after post-processing
	RawBoxVolume float64 // as fitted
	Ratio        float64
}

func NewFitReport(meshVolume, rawBoxVolume, boxVolume float64) FitReport {
	ratio := math.Inf(1)
	if meshVolume > 0 {
		ratio = boxVolume / meshVolume
	}
	return FitReport{
		MeshVolume:   meshVolume,
		BoxVolume:    boxVolume,
		RawBoxVolume: rawBoxVolume,
		Ratio:        ratio,
	}
}

// Inconsistent reports whether the fitted box encloses less than the mesh volume.
func (r FitReport) Inconsistent() bool {
	return r.MeshVolume > 0 && r.RawBoxVolume < r.MeshVolume*(1-volumeTolerance)
}

// Check returns a *simplifier.FitInconsistencyError naming entry when the report
// is inconsistent.
func (r FitReport) Check(entry string) error {
	if !r.Inconsistent() {
		return nil
	}
	return &simplifier.FitInconsistencyError{Entry: entry, MeshVolume: r.MeshVolume, BoxVolume: r.RawBoxVolume}
}

type FitResult struct {
	Box           FittedBox // in the mesh frame
	Report        FitReport
	HullDimension hull.Dimension // only meaningful for tight fits
}

// FitMesh fits a single box to mesh according to cfg.
func FitMesh(mesh *data.TriangleMesh, cfg simplifier.FitConfig) (*FitResult, error) {
	if mesh.IsEmpty() {
		return nil, ErrEmptyMesh
	}
	fitter, err := FitterFor(cfg.Kind)
	if err != nil {
		return nil, err
	}

	points := mesh.PointCloud()
	result := &FitResult{}

	var h *hull.Hull
	if cfg.TightFit {
		h, err = hull.Build(points)
		if err != nil {
			return nil, fmt.Errorf("failed to build convex hull: %w", err)
		}
		points = h.Vertices
		result.HullDimension = h.Dimension
	}

	raw := fitter(points, h)
	if err := checkThickness(raw, len(points)); err != nil {
		glog.V(2).Infof("%v, extents will be clamped to %g", err, cfg.MinSize)
	}

	result.Box = PostProcess(raw, cfg.Axis, cfg.MinSize)
	result.Report = NewFitReport(mesh.SignedVolume(), raw.Volume(), result.Box.Volume())
	return result, nil
}

func checkThickness(box FittedBox, points int) error {
	if points == 1 {
		return &simplifier.DegenerateGeometryError{Points: points, Reason: "single point"}
	}
	for axis := 0; axis < 3; axis++ {
		if box.Extents[axis] == 0 {
			return &simplifier.DegenerateGeometryError{Points: points, Reason: fmt.Sprintf("zero thickness along axis %d", axis)}
		}
	}
	return nil
}

// MergeMeshes expresses every mesh in a common frame through its transform and
// concatenates them into one mesh.
func MergeMeshes(meshes []*data.TriangleMesh, transforms []geometry.RigidTransform) *data.TriangleMesh {
	merged := data.NewTriangleMesh(nil, nil)
	for i, m := range meshes {
		if m.IsEmpty() {
			continue
		}
		merged.Append(m.Transformed(transforms[i]))
	}
	return merged
}
