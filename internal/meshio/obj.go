package meshio

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/ecopia-map/urdf_simplifier/internal/data"
	"github.com/ecopia-map/urdf_simplifier/internal/geometry"
)

// decodeOBJ reads v and f statements. Faces are fan triangulated; texture and
// normal references are ignored.
func decodeOBJ(content []byte) (*data.TriangleMesh, error) {
	var vertices []geometry.Point3
	var faces [][3]int

	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("obj: line %d: vertex needs three coordinates", line)
			}
			v, err := parsePoint(fields[1:4])
			if err != nil {
				return nil, fmt.Errorf("obj: line %d: %w", line, err)
			}
			vertices = append(vertices, v)
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("obj: line %d: face needs at least three vertices", line)
			}
			polygon := make([]int, 0, len(fields)-1)
			for _, ref := range fields[1:] {
				idx, err := parseOBJIndex(ref, len(vertices))
				if err != nil {
					return nil, fmt.Errorf("obj: line %d: %w", line, err)
				}
				polygon = append(polygon, idx)
			}
			faces = append(faces, fan(polygon)...)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return data.NewTriangleMesh(vertices, faces), nil
}

// parseOBJIndex converts a 1-based or negative (relative) reference like
// "7", "7/2" or "-1//3" to a 0-based vertex index.
func parseOBJIndex(ref string, defined int) (int, error) {
	if slash := strings.IndexByte(ref, '/'); slash >= 0 {
		ref = ref[:slash]
	}
	i, err := strconv.Atoi(ref)
	if err != nil {
		return 0, fmt.Errorf("bad vertex reference %q", ref)
	}
	switch {
	case i > 0:
		return i - 1, nil
	case i < 0 && defined+i >= 0:
		return defined + i, nil
	}
	return 0, fmt.Errorf("vertex reference %d out of range", i)
}

func parsePoint(fields []string) (geometry.Point3, error) {
	var p geometry.Point3
	for axis := 0; axis < 3; axis++ {
		v, err := strconv.ParseFloat(fields[axis], 64)
		if err != nil {
			return p, err
		}
		p[axis] = v
	}
	return p, nil
}
