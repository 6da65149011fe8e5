package data

import (
	"fmt"

	"github.com/ecopia-map/urdf_simplifier/internal/geometry"
)

// Contains a triangle mesh, namely vertex coordinates in the mesh file frame and
// triangular faces indexing into them
type TriangleMesh struct {
	Vertices []geometry.Point3
	Faces    [][3]int
}

// Builds a new TriangleMesh from the given vertices and faces
func NewTriangleMesh(vertices []geometry.Point3, faces [][3]int) *TriangleMesh {
	return &TriangleMesh{
		Vertices: vertices,
		Faces:    faces,
	}
}

func (m *TriangleMesh) IsEmpty() bool {
	return m == nil || len(m.Vertices) == 0
}

// Validate checks that every face references an existing vertex.
func (m *TriangleMesh) Validate() error {
	for i, f := range m.Faces {
		for _, v := range f {
			if v < 0 || v >= len(m.Vertices) {
				return fmt.Errorf("face %d references vertex %d, mesh has %d vertices", i, v, len(m.Vertices))
			}
		}
	}
	return nil
}

// PointCloud returns a copy of the mesh vertices.
func (m *TriangleMesh) PointCloud() geometry.PointCloud {
	pc := make(geometry.PointCloud, len(m.Vertices))
	copy(pc, m.Vertices)
	return pc
}

// SignedVolume sums the signed tetrahedra spanned by the origin and every face.
// It is the enclosed volume for closed, outward wound meshes and meaningless otherwise.
func (m *TriangleMesh) SignedVolume() float64 {
	var v float64
	for _, f := range m.Faces {
		a, b, c := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
		v += a.Dot(b.Cross(c))
	}
	return v / 6
}

// ScaleVertices multiplies every vertex by s component by component.
func (m *TriangleMesh) ScaleVertices(s geometry.Point3) {
	for i, v := range m.Vertices {
		m.Vertices[i] = geometry.ScaleElem(v, s)
	}
	// a mirroring scale flips the winding
	if s[0]*s[1]*s[2] < 0 {
		for i, f := range m.Faces {
			m.Faces[i] = [3]int{f[0], f[2], f[1]}
		}
	}
}

// Transformed returns a copy of the mesh with every vertex mapped through t.
func (m *TriangleMesh) Transformed(t geometry.RigidTransform) *TriangleMesh {
	faces := make([][3]int, len(m.Faces))
	copy(faces, m.Faces)
	return NewTriangleMesh(geometry.PointCloud(m.Vertices).Transform(t), faces)
}

// Append adds the vertices and faces of other to m.
func (m *TriangleMesh) Append(other *TriangleMesh) {
	offset := len(m.Vertices)
	m.Vertices = append(m.Vertices, other.Vertices...)
	for _, f := range other.Faces {
		m.Faces = append(m.Faces, [3]int{f[0] + offset, f[1] + offset, f[2] + offset})
	}
}
