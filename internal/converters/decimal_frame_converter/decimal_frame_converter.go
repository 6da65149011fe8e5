package decimal_frame_converter

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ecopia-map/urdf_simplifier/internal/converters"
	"github.com/ecopia-map/urdf_simplifier/internal/geometry"
	"github.com/shopspring/decimal"
)

// Digits after the decimal point written into the document, enough for nanometres
// and nanoradians.
const DefaultPrecision int32 = 9

// DecimalFrameConverter formats numbers with fixed maximum precision, no
// exponent notation and no negative zero.
type DecimalFrameConverter struct {
	Precision int32
}

func NewDecimalFrameConverter(precision int32) converters.FrameConverter {
	return &DecimalFrameConverter{
		Precision: precision,
	}
}

func (c *DecimalFrameConverter) ParseOrigin(xyz, rpy string) (geometry.RigidTransform, error) {
	translation, err := converters.ParseVector3(xyz, geometry.Point3{})
	if err != nil {
		return geometry.Identity(), fmt.Errorf("origin xyz: %w", err)
	}
	angles, err := converters.ParseVector3(rpy, geometry.Point3{})
	if err != nil {
		return geometry.Identity(), fmt.Errorf("origin rpy: %w", err)
	}
	return geometry.FromXYZRPY(translation, angles), nil
}

func (c *DecimalFrameConverter) FormatOrigin(t geometry.RigidTransform) (string, string) {
	return c.FormatVector(t.Translation), c.FormatVector(t.RPY())
}

func (c *DecimalFrameConverter) FormatVector(v geometry.Point3) string {
	parts := make([]string, 3)
	for i := 0; i < 3; i++ {
		parts[i] = c.formatNumber(v[i])
	}
	return strings.Join(parts, " ")
}

func (c *DecimalFrameConverter) formatNumber(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return decimal.NewFromFloat(f).Round(c.Precision).String()
}
