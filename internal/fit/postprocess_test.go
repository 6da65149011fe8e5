package fit

import (
	"testing"

	"github.com/ecopia-map/urdf_simplifier/internal/geometry"
	"github.com/ecopia-map/urdf_simplifier/internal/simplifier"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func boxGen() *rapid.Generator[FittedBox] {
	return rapid.Custom(func(t *rapid.T) FittedBox {
		extents := geometry.Point3{
			rapid.Float64Range(0, 10).Draw(t, "ex"),
			rapid.Float64Range(0, 10).Draw(t, "ey"),
			rapid.Float64Range(0, 10).Draw(t, "ez"),
		}
		rpy := geometry.Point3{
			rapid.Float64Range(-3, 3).Draw(t, "roll"),
			rapid.Float64Range(-1.5, 1.5).Draw(t, "pitch"),
			rapid.Float64Range(-3, 3).Draw(t, "yaw"),
		}
		return FittedBox{Extents: extents, Transform: geometry.FromXYZRPY(geometry.Point3{1, 2, 3}, rpy)}
	})
}

func float(v float64) *float64 {
	return &v
}

func TestPostProcessIdentityPolicy(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		box := boxGen().Draw(t, "box")
		out := PostProcess(box, simplifier.DefaultAxisPolicy(), 0)
		if out != box {
			t.Fatalf("post-processing changed %v into %v", box, out)
		}
	})
}

func TestPostProcessMonotonic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		box := boxGen().Draw(t, "box")
		axis := rapid.IntRange(0, 2).Draw(t, "axis")
		low := rapid.Float64Range(0, 1).Draw(t, "low")
		high := low + rapid.Float64Range(1e-3, 1).Draw(t, "delta")

		policy := simplifier.DefaultAxisPolicy()
		policy.PaddingAxis[axis] = float(low)
		a := PostProcess(box, policy, 0)
		policy.PaddingAxis[axis] = float(high)
		b := PostProcess(box, policy, 0)
		if b.Extents[axis] <= a.Extents[axis] {
			t.Fatalf("padding %g -> %g did not grow axis %d: %g -> %g", low, high, axis, a.Extents[axis], b.Extents[axis])
		}

		if box.Extents[axis] > 0 {
			scale := 1 + rapid.Float64Range(1e-3, 2).Draw(t, "scale")
			policy = simplifier.DefaultAxisPolicy()
			policy.ScaleAxis[axis] = float(scale)
			c := PostProcess(box, policy, 0)
			if c.Extents[axis] <= box.Extents[axis] {
				t.Fatalf("scale %g did not grow axis %d", scale, axis)
			}
		}
	})
}

func TestPostProcessClamp(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		box := boxGen().Draw(t, "box")
		minSize := rapid.Float64Range(0, 5).Draw(t, "min")
		out := PostProcess(box, simplifier.DefaultAxisPolicy(), minSize)
		for axis := 0; axis < 3; axis++ {
			if out.Extents[axis] < minSize {
				t.Fatalf("extent %g below minimum %g", out.Extents[axis], minSize)
			}
		}
	})
}

func TestPostProcessOrder(t *testing.T) {
	box := FittedBox{Extents: geometry.Point3{1, 2, 0}, Transform: geometry.Identity()}
	policy := simplifier.AxisPolicy{
		Scale:       2,
		ScaleAxis:   [3]*float64{nil, float(0.5), nil},
		Padding:     0.1,
		PaddingAxis: [3]*float64{nil, nil, float(0)},
	}
	out := PostProcess(box, policy, 0.05)

	// scale first, then padding on both sides, then the clamp
	assert.InDelta(t, 1*2+0.2, out.Extents[0], 1e-12)
	assert.InDelta(t, 2*0.5+0.2, out.Extents[1], 1e-12)
	assert.InDelta(t, 0.05, out.Extents[2], 1e-12)
	assert.Equal(t, box.Transform, out.Transform)
}

func TestPaddingIsPerSide(t *testing.T) {
	box := FittedBox{Extents: geometry.Point3{1, 1, 1}, Transform: geometry.Identity()}
	policy := simplifier.DefaultAxisPolicy()
	policy.Padding = 0.1
	out := PostProcess(box, policy, 0)
	assert.InDelta(t, 1.2, out.Extents[0], 1e-12)
	assert.InDelta(t, 1.2, out.Extents[1], 1e-12)
	assert.InDelta(t, 1.2, out.Extents[2], 1e-12)
}
