package converters

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ecopia-map/urdf_simplifier/internal/geometry"
)

// FrameConverter translates between URDF attribute text and frame math types.
type FrameConverter interface {
	ParseOrigin(xyz, rpy string) (geometry.RigidTransform, error)
	FormatOrigin(t geometry.RigidTransform) (xyz, rpy string)
	FormatVector(v geometry.Point3) string
}

// ParseVector3 parses three space separated numbers. An empty attribute yields
// fallback and a single number is repeated on every axis.
func ParseVector3(attr string, fallback geometry.Point3) (geometry.Point3, error) {
	fields := strings.Fields(attr)
	switch len(fields) {
	case 0:
		return fallback, nil
	case 1:
		v, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return fallback, fmt.Errorf("invalid number %q: %w", fields[0], err)
		}
		return geometry.Point3{v, v, v}, nil
	case 3:
		var out geometry.Point3
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return fallback, fmt.Errorf("invalid number %q: %w", f, err)
			}
			out[i] = v
		}
		return out, nil
	}
	return fallback, fmt.Errorf("expected 3 numbers, got %q", attr)
}
