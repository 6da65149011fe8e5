package fit

import (
	"math"
	"testing"

	"github.com/ecopia-map/urdf_simplifier/internal/data"
	"github.com/ecopia-map/urdf_simplifier/internal/geometry"
	"github.com/ecopia-map/urdf_simplifier/internal/hull"
	"github.com/ecopia-map/urdf_simplifier/internal/simplifier"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const containTolerance = 1e-9

// boxMesh returns a closed, outward wound box mesh of the given size centered at the origin.
func boxMesh(size geometry.Point3) *data.TriangleMesh {
	h := size.Mul(0.5)
	var vertices []geometry.Point3
	for _, x := range []float64{-h[0], h[0]} {
		for _, y := range []float64{-h[1], h[1]} {
			for _, z := range []float64{-h[2], h[2]} {
				vertices = append(vertices, geometry.Point3{x, y, z})
			}
		}
	}
	faces := [][3]int{
		{0, 1, 3}, {0, 3, 2},
		{4, 6, 7}, {4, 7, 5},
		{0, 4, 5}, {0, 5, 1},
		{2, 3, 7}, {2, 7, 6},
		{0, 2, 6}, {0, 6, 4},
		{1, 5, 7}, {1, 7, 3},
	}
	return data.NewTriangleMesh(vertices, faces)
}

func cloudGen() *rapid.Generator[geometry.PointCloud] {
	point := rapid.Custom(func(t *rapid.T) geometry.Point3 {
		return geometry.Point3{
			rapid.Float64Range(-5, 5).Draw(t, "x"),
			rapid.Float64Range(-5, 5).Draw(t, "y"),
			rapid.Float64Range(-5, 5).Draw(t, "z"),
		}
	})
	return rapid.Custom(func(t *rapid.T) geometry.PointCloud {
		return rapid.SliceOfN(point, 1, 40).Draw(t, "points")
	})
}

func config(kind simplifier.BoxKind, tight bool) simplifier.FitConfig {
	cfg := simplifier.DefaultFitConfig()
	cfg.Kind = kind
	cfg.TightFit = tight
	cfg.MinSize = 0
	return cfg
}

func TestAABBContainsCloud(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		pc := cloudGen().Draw(t, "cloud")
		box := FitAABB(pc)
		for axis := 0; axis < 3; axis++ {
			if box.Extents[axis] < 0 {
				t.Fatalf("negative extent %v", box.Extents)
			}
		}
		assert.Equal(t, mgl64.Ident3(), box.Transform.Rotation)
		for _, p := range pc {
			if !box.Contains(p, containTolerance) {
				t.Fatalf("%v does not contain %v", box, p)
			}
		}
	})
}

func TestOBBNeverLargerThanAABB(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		pc := cloudGen().Draw(t, "cloud")
		aabb := FitAABB(pc)

		h, err := hull.Build(pc)
		require.NoError(t, err)

		for _, obb := range []FittedBox{FitOBB(pc, nil), FitOBB(h.Vertices, h)} {
			if obb.Volume() > aabb.Volume()*(1+1e-9) {
				t.Fatalf("obb volume %g exceeds aabb volume %g", obb.Volume(), aabb.Volume())
			}
			if !geometry.IsOrthonormal(obb.Transform.Rotation, 1e-9) {
				t.Fatalf("obb rotation is not orthonormal: %v", obb.Transform.Rotation)
			}
			for _, p := range pc {
				if !obb.Contains(p, 1e-7) {
					t.Fatalf("%v does not contain %v", obb, p)
				}
			}
		}
	})
}

func TestOBBFindsRotatedBox(t *testing.T) {
	pose := geometry.FromXYZRPY(geometry.Point3{1, -2, 0.5}, geometry.Point3{0.4, -0.3, 1.1})
	mesh := boxMesh(geometry.Point3{4, 1, 0.5}).Transformed(pose)

	for _, tight := range []bool{false, true} {
		result, err := FitMesh(mesh, config(simplifier.OBB, tight))
		require.NoError(t, err)
		assert.InDelta(t, 2.0, result.Box.Volume(), 1e-6)
		assert.True(t, geometry.ApproxEqual(result.Box.Transform.Translation, pose.Translation, 1e-9))
		assert.InDelta(t, 1.0, result.Report.Ratio, 1e-6)

		aabb, err := FitMesh(mesh, config(simplifier.AABB, tight))
		require.NoError(t, err)
		assert.Greater(t, aabb.Box.Volume(), result.Box.Volume())
	}
}

func TestOBBFaceSearchOnFlatPrism(t *testing.T) {
	// a triangle prism is where principal axes are not optimal
	pc := geometry.PointCloud{{0, 0, 0}, {3, 0, 0}, {0, 1, 0}, {0, 0, 1}, {3, 0, 1}, {0, 1, 1}}
	rot := geometry.FromXYZRPY(geometry.Point3{}, geometry.Point3{0, 0, 0.7})
	pc = pc.Transform(rot)

	h, err := hull.Build(pc)
	require.NoError(t, err)
	tight := FitOBB(h.Vertices, h)
	loose := FitOBB(pc, nil)

	assert.InDelta(t, 3.0, tight.Volume(), 1e-6)
	assert.LessOrEqual(t, tight.Volume(), loose.Volume()+1e-9)
}

func TestUnitCubeRoundTrip(t *testing.T) {
	for _, kind := range []simplifier.BoxKind{simplifier.AABB, simplifier.OBB} {
		for _, tight := range []bool{false, true} {
			result, err := FitMesh(boxMesh(geometry.Point3{1, 1, 1}), config(kind, tight))
			require.NoError(t, err)
			assert.True(t, geometry.ApproxEqual(result.Box.Extents, geometry.Point3{1, 1, 1}, 1e-12), "%s tight=%v: %v", kind, tight, result.Box.Extents)
			assert.True(t, geometry.RotationApproxEqual(result.Box.Transform.Rotation, mgl64.Ident3(), 1e-12))
			assert.True(t, geometry.ApproxEqual(result.Box.Transform.Translation, geometry.Point3{}, 1e-12))
			assert.InDelta(t, 1.0, result.Report.Ratio, 1e-12)
			assert.NoError(t, result.Report.Check("cube"))
		}
	}
}

func TestSinglePointClampedToMinSize(t *testing.T) {
	mesh := data.NewTriangleMesh([]geometry.Point3{{0.3, 0.2, 0.1}}, nil)
	for _, kind := range []simplifier.BoxKind{simplifier.AABB, simplifier.OBB} {
		cfg := config(kind, true)
		cfg.MinSize = 0.01
		result, err := FitMesh(mesh, cfg)
		require.NoError(t, err)
		assert.Equal(t, geometry.Point3{0.01, 0.01, 0.01}, result.Box.Extents)
		assert.Equal(t, hull.Point, result.HullDimension)
		assert.True(t, math.IsInf(result.Report.Ratio, 1))
	}
}

func TestVolumeRatioWithScale(t *testing.T) {
	// two unit cubes whose joint bounding box is 2.8 x 1 x 1
	mesh := boxMesh(geometry.Point3{1, 1, 1})
	mesh.Append(boxMesh(geometry.Point3{1, 1, 1}).Transformed(geometry.FromXYZRPY(geometry.Point3{1.8, 0, 0}, geometry.Point3{})))

	cfg := config(simplifier.AABB, false)
	result, err := FitMesh(mesh, cfg)
	require.NoError(t, err)
	assert.InDelta(t, 1.4, result.Report.Ratio, 1e-12)

	cfg.Axis.Scale = 1.1
	result, err = FitMesh(mesh, cfg)
	require.NoError(t, err)
	assert.InDelta(t, 1.4*1.331, result.Report.Ratio, 1e-12)
	assert.InDelta(t, 1.86, result.Report.Ratio, 0.01)
	assert.InDelta(t, 2.8, result.Report.RawBoxVolume, 1e-12)
}

func TestEmptyMesh(t *testing.T) {
	_, err := FitMesh(data.NewTriangleMesh(nil, nil), config(simplifier.OBB, false))
	assert.ErrorIs(t, err, ErrEmptyMesh)
}

func TestUnknownBoxKind(t *testing.T) {
	_, err := FitMesh(boxMesh(geometry.Point3{1, 1, 1}), config("SPHERE", false))
	var invalid *simplifier.InvalidConfigError
	assert.ErrorAs(t, err, &invalid)
}

func TestInconsistentReport(t *testing.T) {
	r := NewFitReport(2, 1, 1)
	err := r.Check("link/0")
	var inconsistent *simplifier.FitInconsistencyError
	require.ErrorAs(t, err, &inconsistent)
	assert.Equal(t, "link/0", inconsistent.Entry)

	assert.NoError(t, NewFitReport(0, 1, 1).Check("open"))
	assert.NoError(t, NewFitReport(-1, 1, 1).Check("inverted"))
}

func TestMergeMeshes(t *testing.T) {
	meshes := []*data.TriangleMesh{boxMesh(geometry.Point3{1, 1, 1}), nil, boxMesh(geometry.Point3{1, 1, 1})}
	transforms := []geometry.RigidTransform{
		geometry.Identity(),
		geometry.Identity(),
		geometry.FromXYZRPY(geometry.Point3{0, 0, 2}, geometry.Point3{}),
	}
	merged := MergeMeshes(meshes, transforms)
	assert.Len(t, merged.Vertices, 16)

	result, err := FitMesh(merged, config(simplifier.AABB, false))
	require.NoError(t, err)
	assert.True(t, geometry.ApproxEqual(result.Box.Extents, geometry.Point3{1, 1, 3}, 1e-12))
	assert.True(t, geometry.ApproxEqual(result.Box.Transform.Translation, geometry.Point3{0, 0, 1}, 1e-12))
}
