// Package meshio reads triangle meshes from STL, OBJ and PLY files.
package meshio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ecopia-map/urdf_simplifier/internal/data"
	"github.com/ecopia-map/urdf_simplifier/internal/geometry"
	"github.com/ecopia-map/urdf_simplifier/internal/simplifier"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported mesh format")
	ErrNoVertices        = errors.New("mesh has no vertices")
)

type Loader interface {
	// Load reads the mesh at path and multiplies its vertices by scale. Failures
	// are returned as *simplifier.MeshLoadError.
	Load(path string, scale geometry.Point3) (*data.TriangleMesh, error)
}

type decoder func(content []byte) (*data.TriangleMesh, error)

var decoders = map[string]decoder{
	".stl": decodeSTL,
	".obj": decodeOBJ,
	".ply": decodePLY,
}

type FileLoader struct{}

func NewFileLoader() *FileLoader {
	return &FileLoader{}
}

func (l *FileLoader) Load(path string, scale geometry.Point3) (*data.TriangleMesh, error) {
	mesh, err := l.load(path)
	if err != nil {
		return nil, &simplifier.MeshLoadError{Path: path, Err: err}
	}
	if scale != (geometry.Point3{1, 1, 1}) {
		mesh.ScaleVertices(scale)
	}
	return mesh, nil
}

func (l *FileLoader) load(path string) (*data.TriangleMesh, error) {
	decode, ok := decoders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	mesh, err := decode(content)
	if err != nil {
		return nil, err
	}
	if mesh.IsEmpty() {
		return nil, ErrNoVertices
	}
	if err := mesh.Validate(); err != nil {
		return nil, err
	}
	return mesh, nil
}

// vertexIndex deduplicates vertices of formats that repeat them per face.
type vertexIndex struct {
	vertices []geometry.Point3
	index    map[geometry.Point3]int
}

func newVertexIndex() *vertexIndex {
	return &vertexIndex{index: make(map[geometry.Point3]int)}
}

func (v *vertexIndex) add(p geometry.Point3) int {
	if i, ok := v.index[p]; ok {
		return i
	}
	i := len(v.vertices)
	v.vertices = append(v.vertices, p)
	v.index[p] = i
	return i
}

// fan triangulates a convex polygon given by vertex indices.
func fan(polygon []int) [][3]int {
	var faces [][3]int
	for i := 1; i+1 < len(polygon); i++ {
		faces = append(faces, [3]int{polygon[0], polygon[i], polygon[i+1]})
	}
	return faces
}
