package fit

import (
	"math"
	"testing"
	"time"

	"github.com/ecopia-map/urdf_simplifier/internal/geometry"
	"github.com/ecopia-map/urdf_simplifier/internal/hull"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// fibonacciSphere spreads n points evenly over the unit sphere.
func fibonacciSphere(n int) geometry.PointCloud {
	golden := math.Pi * (3 - math.Sqrt(5))
	pc := make(geometry.PointCloud, n)
	for i := range pc {
		z := 1 - 2*(float64(i)+0.5)/float64(n)
		r := math.Sqrt(1 - z*z)
		theta := golden * float64(i)
		pc[i] = geometry.Point3{r * math.Cos(theta), r * math.Sin(theta), z}
	}
	return pc
}

// bruteMinArea tries every hull edge against every hull vertex.
func bruteMinArea(pts []mgl64.Vec2) float64 {
	ring := hull.ConvexHull2D(pts, 0)
	best := math.Inf(1)
	for i := range ring {
		edge := pts[ring[(i+1)%len(ring)]].Sub(pts[ring[i]])
		if edge.Len() == 0 {
			continue
		}
		e := edge.Normalize()
		f := mgl64.Vec2{-e[1], e[0]}
		minE, maxE, minF, maxF := math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)
		for _, idx := range ring {
			minE, maxE = math.Min(minE, pts[idx].Dot(e)), math.Max(maxE, pts[idx].Dot(e))
			minF, maxF = math.Min(minF, pts[idx].Dot(f)), math.Max(maxF, pts[idx].Dot(f))
		}
		best = math.Min(best, (maxE-minE)*(maxF-minF))
	}
	return best
}

func TestMinAreaRectMatchesExhaustiveSearch(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		pt := rapid.Custom(func(t *rapid.T) mgl64.Vec2 {
			return mgl64.Vec2{rapid.Float64Range(-10, 10).Draw(t, "x"), rapid.Float64Range(-10, 10).Draw(t, "y")}
		})
		pts := rapid.SliceOfN(pt, 3, 60).Draw(t, "points")
		if len(hull.ConvexHull2D(pts, 0)) < 3 {
			t.Skip("collinear points")
		}

		_, area := minAreaRect(pts)
		want := bruteMinArea(pts)
		if math.Abs(area-want) > 1e-9*math.Max(1, want) {
			t.Fatalf("calipers found area %g, exhaustive search %g", area, want)
		}
	})
}

func TestMinAreaRectRotatedRectangle(t *testing.T) {
	rot := mgl64.Rotate2D(0.3)
	var pts []mgl64.Vec2
	for _, p := range []mgl64.Vec2{{0, 0}, {4, 0}, {4, 1}, {0, 1}, {2, 0.5}, {1, 0.2}} {
		pts = append(pts, rot.Mul2x1(p))
	}
	dir, area := minAreaRect(pts)
	assert.InDelta(t, 4.0, area, 1e-9)
	// either side of the rectangle gives the same area
	c := math.Abs(dir.Dot(rot.Mul2x1(mgl64.Vec2{1, 0})))
	assert.True(t, c < 1e-9 || c > 1-1e-9, "direction %v is not along a side", dir)
}

func TestTightOBBOnDenseSphere(t *testing.T) {
	pc := fibonacciSphere(4000)
	h, err := hull.Build(pc)
	require.NoError(t, err)
	require.Equal(t, hull.Solid, h.Dimension)

	start := time.Now()
	box := FitOBB(h.Vertices, h)
	elapsed := time.Since(start)

	assert.Less(t, elapsed, 3*time.Second)
	assert.LessOrEqual(t, box.Volume(), FitAABB(pc).Volume()*(1+1e-9))
	for _, p := range pc {
		require.True(t, box.Contains(p, containTolerance), "point %v outside %v", p, box)
	}
}

func TestFaceSearchOutlineOfCube(t *testing.T) {
	h, err := hull.Build(boxMesh(geometry.Point3{2, 1, 1}).PointCloud())
	require.NoError(t, err)
	search := newFaceSearch(h)
	require.True(t, search.closed)

	// looking down z the outline is one ring of four corners
	outline := search.outline(geometry.Point3{0, 0, 1})
	assert.Len(t, outline, 4)

	basis, area := search.faceBasis(geometry.Point3{0, 0, 1})
	assert.InDelta(t, 2.0, area, 1e-9)
	assert.True(t, geometry.IsOrthonormal(basis, 1e-9))
	assert.InDelta(t, 1.0, basis.Det(), 1e-9)
}
