package fit

import (
	"math"

	"github.com/ecopia-map/urdf_simplifier/internal/geometry"
	"github.com/ecopia-map/urdf_simplifier/internal/hull"
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

const (
	// a candidate replaces the current best only if smaller by this fraction
	volumeTolerance = 1e-9

	// face normals are deduplicated on a grid of this size
	normalResolution = 1e-9
)

// FitOBB returns the smallest box found among the identity basis, the principal
// axes of pc and, when h is a hull with faces, the basis of every distinct face
// normal combined with the minimum-area rectangle of the projection onto that
// face. Its volume never exceeds the AABB volume of pc.
func FitOBB(pc geometry.PointCloud, h *hull.Hull) FittedBox {
	bestBasis := mgl64.Ident3()
	bestVolume := boxInBasis(pc, bestBasis).Volume()

	consider := func(basis mgl64.Mat3, volume float64) {
		if volume < bestVolume*(1-volumeTolerance) {
			bestBasis, bestVolume = basis, volume
		}
	}

	if axes, ok := principalAxes(pc); ok {
		consider(axes, boxInBasis(pc, axes).Volume())
	}

	if h != nil && h.Dimension >= hull.Planar {
		search := newFaceSearch(h)
		tested := make(map[[3]int64]bool)
		for i := range h.Faces {
			n, err := h.FaceNormal(i)
			if err != nil {
				continue
			}
			key := directionKey(n)
			if tested[key] {
				continue
			}
			tested[key] = true
			basis, area := search.faceBasis(n)
			consider(basis, area*depth(pc, n))
		}
	}
	return boxInBasis(pc, bestBasis)
}

// principalAxes returns the eigenvectors of the covariance of pc as a
// right-handed rotation.
func principalAxes(pc geometry.PointCloud) (mgl64.Mat3, bool) {
	mean := pc.Centroid()
	var cov [9]float64
	for _, p := range pc {
		d := p.Sub(mean)
		for r := 0; r < 3; r++ {
			for c := 0; c < 3; c++ {
				cov[r*3+c] += d[r] * d[c]
			}
		}
	}
	n := float64(len(pc))
	for i := range cov {
		cov[i] /= n
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(mat.NewSymDense(3, cov[:]), true); !ok {
		return mgl64.Mat3{}, false
	}
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	var cols [3]geometry.Point3
	for c := 0; c < 3; c++ {
		cols[c] = geometry.Point3{vectors.At(0, c), vectors.At(1, c), vectors.At(2, c)}
	}
	if cols[0].Cross(cols[1]).Dot(cols[2]) < 0 {
		cols[2] = cols[2].Mul(-1)
	}
	return geometry.Orthonormalize(mgl64.Mat3FromCols(cols[0], cols[1], cols[2])), true
}

// directionKey identifies a unit normal up to sign, so opposite faces share
// a key.
func directionKey(n geometry.Point3) [3]int64 {
	for axis := 0; axis < 3; axis++ {
		if math.Abs(n[axis]) > normalResolution {
			if n[axis] < 0 {
				n = n.Mul(-1)
			}
			break
		}
	}
	var key [3]int64
	for axis := 0; axis < 3; axis++ {
		key[axis] = int64(math.Round(n[axis] / normalResolution))
	}
	return key
}

// depth is the extent of pc along the unit vector n.
func depth(pc geometry.PointCloud, n geometry.Point3) float64 {
	min, max := math.Inf(1), math.Inf(-1)
	for _, p := range pc {
		d := p.Dot(n)
		min, max = math.Min(min, d), math.Max(max, d)
	}
	return max - min
}

// faceSearch holds the edge adjacency of a hull so that the outline of its
// projection along a face normal can be found without projecting every vertex.
type faceSearch struct {
	vertices geometry.PointCloud
	normals  []geometry.Point3
	edges    []hullEdge
	closed   bool

	front   []bool
	visited []int
	stamp   int
}

// hullEdge is an undirected hull edge between vertices a and b with the two
// faces sharing it.
type hullEdge struct {
	a, b        int
	left, right int
}

func newFaceSearch(h *hull.Hull) *faceSearch {
	s := &faceSearch{
		vertices: h.Vertices,
		normals:  make([]geometry.Point3, len(h.Faces)),
		closed:   h.Dimension == hull.Solid,
		front:    make([]bool, len(h.Faces)),
		visited:  make([]int, len(h.Vertices)),
	}

	index := make(map[[2]int]int, 3*len(h.Faces)/2)
	for f, face := range h.Faces {
		n, err := h.FaceNormal(f)
		if err != nil {
			s.closed = false
		}
		s.normals[f] = n

		for k := 0; k < 3; k++ {
			a, b := face[k], face[(k+1)%3]
			key := [2]int{a, b}
			if b < a {
				key = [2]int{b, a}
			}
			i, ok := index[key]
			if !ok {
				index[key] = len(s.edges)
				s.edges = append(s.edges, hullEdge{a: a, b: b, left: f, right: -1})
				continue
			}
			if s.edges[i].right >= 0 {
				s.closed = false
				continue
			}
			s.edges[i].right = f
		}
	}
	for _, e := range s.edges {
		if e.right < 0 {
			s.closed = false
			break
		}
	}
	return s
}

// outline returns the vertices whose projection along n can lie on the
// boundary of the projected hull: the endpoints of edges between a face
// facing n and a face facing away. Open or degenerate hulls return every
// vertex.
func (s *faceSearch) outline(n geometry.Point3) []int {
	if !s.closed {
		all := make([]int, len(s.vertices))
		for i := range all {
			all[i] = i
		}
		return all
	}

	for f, m := range s.normals {
		s.front[f] = m.Dot(n) >= 0
	}
	s.stamp++
	var out []int
	for _, e := range s.edges {
		if s.front[e.left] == s.front[e.right] {
			continue
		}
		for _, v := range [2]int{e.a, e.b} {
			if s.visited[v] != s.stamp {
				s.visited[v] = s.stamp
				out = append(out, v)
			}
		}
	}
	return out
}

// faceBasis returns a rotation whose third axis is n and whose first two axes
// align with the minimum-area rectangle enclosing the projection of the hull
// onto the plane orthogonal to n, together with the rectangle area.
func (s *faceSearch) faceBasis(n geometry.Point3) (mgl64.Mat3, float64) {
	u := geometry.Perpendicular(n)
	v := n.Cross(u)

	outline := s.outline(n)
	projected := make([]mgl64.Vec2, len(outline))
	for i, idx := range outline {
		p := s.vertices[idx]
		projected[i] = mgl64.Vec2{p.Dot(u), p.Dot(v)}
	}
	e, area := minAreaRect(projected)
	f := mgl64.Vec2{-e[1], e[0]}

	a1 := u.Mul(e[0]).Add(v.Mul(e[1]))
	a2 := u.Mul(f[0]).Add(v.Mul(f[1]))
	return mgl64.Mat3FromCols(a1, a2, n), area
}

// minAreaRect runs rotating calipers over the 2D hull of pts and returns the
// unit edge direction and the area of the smallest enclosing rectangle. Ties
// go to the first hull edge.
func minAreaRect(pts []mgl64.Vec2) (mgl64.Vec2, float64) {
	ring := hull.ConvexHull2D(pts, 0)
	k := len(ring)
	if k < 2 {
		return mgl64.Vec2{1, 0}, 0
	}
	at := func(i int) mgl64.Vec2 {
		return pts[ring[i%k]]
	}
	if k == 2 {
		edge := at(1).Sub(at(0))
		return edge.Mul(1 / edge.Len()), 0
	}

	// advance moves j forward while the next vertex scores higher
	advance := func(j int, score func(mgl64.Vec2) float64) int {
		for steps := 0; steps < k && score(at(j+1)) > score(at(j)); steps++ {
			j++
		}
		return j % k
	}

	best, bestArea := mgl64.Vec2{1, 0}, math.Inf(1)
	started := false
	right, top, left := 0, 0, 0
	for i := 0; i < k; i++ {
		edge := at(i + 1).Sub(at(i))
		l := edge.Len()
		if l == 0 {
			continue
		}
		e := edge.Mul(1 / l)
		f := mgl64.Vec2{-e[1], e[0]}
		along := func(p mgl64.Vec2) float64 { return p.Dot(e) }
		across := func(p mgl64.Vec2) float64 { return p.Dot(f) }
		against := func(p mgl64.Vec2) float64 { return -p.Dot(e) }

		if !started {
			started = true
			right = advance(i, along)
			top = advance(right, across)
			left = advance(top, against)
		} else {
			right = advance(right, along)
			top = advance(top, across)
			left = advance(left, against)
		}

		width := along(at(right)) - along(at(left))
		height := across(at(top)) - across(at(i))
		if area := width * height; area < bestArea {
			best, bestArea = e, area
		}
	}
	return best, bestArea
}
