package meshio

import (
	"bytes"
	"encoding/binary"

	"github.com/ecopia-map/urdf_simplifier/internal/data"
	"github.com/ecopia-map/urdf_simplifier/internal/geometry"
	"github.com/hschendel/stl"
)

const (
	stlHeaderSize   = 80
	stlTriangleSize = 50
)

// decodeSTL reads ascii and binary STL. Vertices repeated by adjacent facets are
// merged.
func decodeSTL(content []byte) (*data.TriangleMesh, error) {
	if isBinarySTL(content) && bytes.HasPrefix(content, []byte("solid")) {
		// the header is free text, blank it so the file is not taken for ascii
		content = append([]byte(nil), content...)
		copy(content, "     ")
	}

	solid, err := stl.ReadAll(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}

	vi := newVertexIndex()
	faces := make([][3]int, 0, len(solid.Triangles))
	for _, t := range solid.Triangles {
		var face [3]int
		for k, v := range t.Vertices {
			face[k] = vi.add(geometry.Point3{float64(v[0]), float64(v[1]), float64(v[2])})
		}
		faces = append(faces, face)
	}
	return data.NewTriangleMesh(vi.vertices, faces), nil
}

// isBinarySTL checks the declared triangle count against the file size. Binary
// files may start with "solid" too, so the prefix alone is not conclusive.
func isBinarySTL(content []byte) bool {
	if len(content) < stlHeaderSize+4 {
		return false
	}
	n := binary.LittleEndian.Uint32(content[stlHeaderSize:])
	return uint64(len(content)) == stlHeaderSize+4+uint64(n)*stlTriangleSize
}
