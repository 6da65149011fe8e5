package hull

import (
	"github.com/ecopia-map/urdf_simplifier/internal/geometry"
)

type edge [2]int

type face struct {
	v       [3]int
	normal  geometry.Point3
	offset  float64
	outside []int
	alive   bool
}

func (f *face) distance(p geometry.Point3) float64 {
	return f.normal.Dot(p) - f.offset
}

func (f *face) edges() [3]edge {
	return [3]edge{{f.v[0], f.v[1]}, {f.v[1], f.v[2]}, {f.v[2], f.v[0]}}
}

// quickHull is the incremental 3D hull. Each live face owns the points in
// front of it; edges maps a directed edge to the face that owns it so the
// neighbour across (a,b) is edges[(b,a)].
type quickHull struct {
	pc      geometry.PointCloud
	eps     float64
	faces   []face
	edges   map[edge]int
	pending []int
}

func newQuickHull(pc geometry.PointCloud, eps float64) *quickHull {
	return &quickHull{
		pc:    pc,
		eps:   eps,
		edges: make(map[edge]int),
	}
}

func (q *quickHull) addFace(a, b, c int) int {
	p0, p1, p2 := q.pc[a], q.pc[b], q.pc[c]
	n, err := geometry.NormalizeThreshold(p1.Sub(p0).Cross(p2.Sub(p0)), 0)
	if err != nil {
		// sliver face, never sees any point
		n = geometry.Point3{}
	}
	idx := len(q.faces)
	q.faces = append(q.faces, face{
		v:      [3]int{a, b, c},
		normal: n,
		offset: n.Dot(p0),
		alive:  true,
	})
	for _, e := range q.faces[idx].edges() {
		q.edges[e] = idx
	}
	return idx
}

func (q *quickHull) removeFace(i int) {
	q.faces[i].alive = false
	for _, e := range q.faces[i].edges() {
		if q.edges[e] == i {
			delete(q.edges, e)
		}
	}
}

// assign gives point p to the first face in candidates that sees it.
func (q *quickHull) assign(p int, candidates []int) {
	for _, fi := range candidates {
		if q.faces[fi].distance(q.pc[p]) > q.eps {
			q.faces[fi].outside = append(q.faces[fi].outside, p)
			if len(q.faces[fi].outside) == 1 {
				q.pending = append(q.pending, fi)
			}
			return
		}
	}
}

func (q *quickHull) run(simplex [4]int) {
	interior := q.pc[simplex[0]].Add(q.pc[simplex[1]]).Add(q.pc[simplex[2]]).Add(q.pc[simplex[3]]).Mul(0.25)

	var initial []int
	for _, tri := range [4][3]int{{0, 1, 2}, {0, 1, 3}, {0, 2, 3}, {1, 2, 3}} {
		a, b, c := simplex[tri[0]], simplex[tri[1]], simplex[tri[2]]
		n := q.pc[b].Sub(q.pc[a]).Cross(q.pc[c].Sub(q.pc[a]))
		if n.Dot(interior.Sub(q.pc[a])) > 0 {
			b, c = c, b
		}
		initial = append(initial, q.addFace(a, b, c))
	}

	for i := range q.pc {
		if i == simplex[0] || i == simplex[1] || i == simplex[2] || i == simplex[3] {
			continue
		}
		q.assign(i, initial)
	}

	for len(q.pending) > 0 {
		fi := q.pending[len(q.pending)-1]
		q.pending = q.pending[:len(q.pending)-1]
		if !q.faces[fi].alive || len(q.faces[fi].outside) == 0 {
			continue
		}
		q.expand(fi)
	}
}

// expand adds the farthest outside point of face fi to the hull.
func (q *quickHull) expand(fi int) {
	f := &q.faces[fi]
	eye, best := f.outside[0], f.distance(q.pc[f.outside[0]])
	for _, p := range f.outside[1:] {
		if d := f.distance(q.pc[p]); d > best {
			eye, best = p, d
		}
	}
	eyePoint := q.pc[eye]

	visible := []int{fi}
	seen := map[int]bool{fi: true}
	for i := 0; i < len(visible); i++ {
		for _, e := range q.faces[visible[i]].edges() {
			nb, ok := q.edges[edge{e[1], e[0]}]
			if !ok || seen[nb] {
				continue
			}
			if q.faces[nb].distance(eyePoint) > q.eps {
				seen[nb] = true
				visible = append(visible, nb)
			}
		}
	}

	var horizon []edge
	var orphans []int
	for _, vi := range visible {
		for _, e := range q.faces[vi].edges() {
			if nb, ok := q.edges[edge{e[1], e[0]}]; !ok || !seen[nb] {
				horizon = append(horizon, e)
			}
		}
		orphans = append(orphans, q.faces[vi].outside...)
		q.faces[vi].outside = nil
	}
	for _, vi := range visible {
		q.removeFace(vi)
	}

	created := make([]int, 0, len(horizon))
	for _, e := range horizon {
		created = append(created, q.addFace(e[0], e[1], eye))
	}
	for _, p := range orphans {
		if p != eye {
			q.assign(p, created)
		}
	}
}

// result compacts the live faces and the points they use.
func (q *quickHull) result() *Hull {
	h := &Hull{Dimension: Solid}
	remap := make(map[int]int)
	for _, f := range q.faces {
		if !f.alive {
			continue
		}
		var tri [3]int
		for k, v := range f.v {
			idx, ok := remap[v]
			if !ok {
				idx = len(h.Vertices)
				remap[v] = idx
				h.Vertices = append(h.Vertices, q.pc[v])
			}
			tri[k] = idx
		}
		h.Faces = append(h.Faces, tri)
	}
	return h
}
