// Package hull computes the convex hull of a point cloud. Degenerate clouds
// (a single point, collinear or coplanar points) produce a hull of reduced
// dimension instead of an error.
package hull

import (
	"errors"
	"math"
	"sort"

	"github.com/ecopia-map/urdf_simplifier/internal/geometry"
	"github.com/go-gl/mathgl/mgl64"
)

type Dimension int

const (
	Point Dimension = iota
	Segment
	Planar
	Solid
)

func (d Dimension) String() string {
	switch d {
	case Point:
		return "point"
	case Segment:
		return "segment"
	case Planar:
		return "planar"
	case Solid:
		return "solid"
	}
	return ""
}

var ErrEmptyCloud = errors.New("hull: empty point cloud")

// Hull holds the hull vertices and a triangulation of its boundary. Faces
// index into Vertices and are wound counter-clockwise seen from outside.
// Point and Segment hulls have no faces, Planar hulls are triangulated on one
// side only.
type Hull struct {
	Vertices  geometry.PointCloud
	Faces     [][3]int
	Dimension Dimension
}

// FaceNormal returns the outward unit normal of face i.
func (h *Hull) FaceNormal(i int) (geometry.Point3, error) {
	f := h.Faces[i]
	a, b, c := h.Vertices[f[0]], h.Vertices[f[1]], h.Vertices[f[2]]
	return geometry.Normalize(b.Sub(a).Cross(c.Sub(a)))
}

// Volume is the enclosed volume, zero for degenerate hulls.
func (h *Hull) Volume() float64 {
	if h.Dimension != Solid {
		return 0
	}
	origin := h.Vertices.Centroid()
	var v float64
	for _, f := range h.Faces {
		a := h.Vertices[f[0]].Sub(origin)
		b := h.Vertices[f[1]].Sub(origin)
		c := h.Vertices[f[2]].Sub(origin)
		v += a.Dot(b.Cross(c))
	}
	return v / 6
}

// Build computes the convex hull of pc.
func Build(pc geometry.PointCloud) (*Hull, error) {
	if len(pc) == 0 {
		return nil, ErrEmptyCloud
	}

	eps := 3 * 2.220446049250313e-16 * pc.MaxAbsSum()

	i0, i1 := extremePair(pc)
	if pc[i1].Sub(pc[i0]).Len() <= eps {
		return &Hull{Vertices: geometry.PointCloud{pc[i0]}, Dimension: Point}, nil
	}

	dir := pc[i1].Sub(pc[i0]).Normalize()
	i2, lineDist := -1, 0.0
	for i, p := range pc {
		if d := p.Sub(pc[i0]).Cross(dir).Len(); d > lineDist {
			i2, lineDist = i, d
		}
	}
	if lineDist <= eps {
		return segmentHull(pc, pc[i0], dir), nil
	}

	normal := pc[i1].Sub(pc[i0]).Cross(pc[i2].Sub(pc[i0])).Normalize()
	i3, planeDist := -1, 0.0
	for i, p := range pc {
		if d := math.Abs(p.Sub(pc[i0]).Dot(normal)); d > planeDist {
			i3, planeDist = i, d
		}
	}
	if planeDist <= eps {
		return planarHull(pc, pc[i0], dir, normal, eps), nil
	}

	qh := newQuickHull(pc, eps)
	qh.run([4]int{i0, i1, i2, i3})
	return qh.result(), nil
}

// extremePair returns, among the per-axis extreme points, the pair that is
// farthest apart.
func extremePair(pc geometry.PointCloud) (int, int) {
	var extremes [6]int
	for i, p := range pc {
		for axis := 0; axis < 3; axis++ {
			if p[axis] < pc[extremes[2*axis]][axis] {
				extremes[2*axis] = i
			}
			if p[axis] > pc[extremes[2*axis+1]][axis] {
				extremes[2*axis+1] = i
			}
		}
	}
	best0, best1, bestDist := extremes[0], extremes[0], -1.0
	for a := 0; a < 6; a++ {
		for b := a + 1; b < 6; b++ {
			if d := pc[extremes[b]].Sub(pc[extremes[a]]).LenSqr(); d > bestDist {
				best0, best1, bestDist = extremes[a], extremes[b], d
			}
		}
	}
	return best0, best1
}

func segmentHull(pc geometry.PointCloud, origin, dir geometry.Point3) *Hull {
	lo, hi := 0, 0
	loT, hiT := math.Inf(1), math.Inf(-1)
	for i, p := range pc {
		t := p.Sub(origin).Dot(dir)
		if t < loT {
			lo, loT = i, t
		}
		if t > hiT {
			hi, hiT = i, t
		}
	}
	return &Hull{Vertices: geometry.PointCloud{pc[lo], pc[hi]}, Dimension: Segment}
}

type point2 struct {
	x, y  float64
	index int
}

func cross2(o, a, b point2) float64 {
	return (a.x-o.x)*(b.y-o.y) - (a.y-o.y)*(b.x-o.x)
}

// convexHull2 is Andrew's monotone chain. It returns the hull counter-clockwise
// without collinear points.
func convexHull2(pts []point2, eps float64) []point2 {
	sorted := make([]point2, len(pts))
	copy(sorted, pts)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].x != sorted[j].x {
			return sorted[i].x < sorted[j].x
		}
		return sorted[i].y < sorted[j].y
	})
	if len(sorted) < 3 {
		return sorted
	}

	out := make([]point2, 0, 2*len(sorted))
	for _, p := range sorted {
		for len(out) >= 2 && cross2(out[len(out)-2], out[len(out)-1], p) <= eps {
			out = out[:len(out)-1]
		}
		out = append(out, p)
	}
	lower := len(out) + 1
	for i := len(sorted) - 2; i >= 0; i-- {
		p := sorted[i]
		for len(out) >= lower && cross2(out[len(out)-2], out[len(out)-1], p) <= eps {
			out = out[:len(out)-1]
		}
		out = append(out, p)
	}
	return out[:len(out)-1]
}

// ConvexHull2D returns the indices of the counter-clockwise hull of pts, without
// collinear points. Turns smaller than eps count as collinear.
func ConvexHull2D(pts []mgl64.Vec2, eps float64) []int {
	in := make([]point2, len(pts))
	for i, p := range pts {
		in[i] = point2{x: p[0], y: p[1], index: i}
	}
	ring := convexHull2(in, eps)
	out := make([]int, len(ring))
	for i, p := range ring {
		out[i] = p.index
	}
	return out
}

func planarHull(pc geometry.PointCloud, origin, u, normal geometry.Point3, eps float64) *Hull {
	v := normal.Cross(u)
	pts := make([]point2, len(pc))
	for i, p := range pc {
		d := p.Sub(origin)
		pts[i] = point2{x: d.Dot(u), y: d.Dot(v), index: i}
	}

	ring := convexHull2(pts, eps*eps)
	if len(ring) < 3 {
		return segmentHull(pc, origin, u)
	}

	h := &Hull{Dimension: Planar}
	for _, p := range ring {
		h.Vertices = append(h.Vertices, pc[p.index])
	}
	for i := 1; i+1 < len(ring); i++ {
		h.Faces = append(h.Faces, [3]int{0, i, i + 1})
	}
	return h
}
