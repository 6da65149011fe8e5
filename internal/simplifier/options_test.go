package simplifier

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float(v float64) *float64 {
	return &v
}

func TestParseBoxKind(t *testing.T) {
	assert.Equal(t, AABB, ParseBoxKind("aabb"))
	assert.Equal(t, OBB, ParseBoxKind(" OBB "))
	assert.Equal(t, BoxKind(""), ParseBoxKind("sphere"))
	assert.Equal(t, "obb", OBB.String())
}

func TestAxisPolicyOverrides(t *testing.T) {
	p := DefaultAxisPolicy()
	p.Scale = 2
	p.Padding = 0.1
	p.ScaleAxis[2] = float(3)
	p.PaddingAxis[0] = float(0)

	assert.Equal(t, 2.0, p.ResolveScale(0))
	assert.Equal(t, 3.0, p.ResolveScale(2))
	assert.Equal(t, 0.0, p.ResolvePadding(0))
	assert.Equal(t, 0.1, p.ResolvePadding(1))

	c := p.Copy()
	*c.ScaleAxis[2] = 5
	assert.Equal(t, 3.0, p.ResolveScale(2))
}

func TestFitConfigValidate(t *testing.T) {
	tests := []struct {
		field  string
		mutate func(c *FitConfig)
	}{
		{"", func(c *FitConfig) {}},
		{"bbox-type", func(c *FitConfig) { c.Kind = "SPHERE" }},
		{"scale", func(c *FitConfig) { c.Axis.Scale = 0 }},
		{"padding", func(c *FitConfig) { c.Axis.Padding = -0.1 }},
		{"scale-y", func(c *FitConfig) { c.Axis.ScaleAxis[1] = float(-1) }},
		{"padding-z", func(c *FitConfig) { c.Axis.PaddingAxis[2] = float(-1) }},
		{"min-size", func(c *FitConfig) { c.MinSize = -1 }},
		{"workers", func(c *FitConfig) { c.Workers = -2 }},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("field=%q", tt.field), func(t *testing.T) {
			c := DefaultFitConfig()
			tt.mutate(&c)
			err := c.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var invalid *InvalidConfigError
			require.True(t, errors.As(err, &invalid))
			assert.Equal(t, tt.field, invalid.Field)
		})
	}
}

func TestFitConfigCopyIsIndependent(t *testing.T) {
	c := DefaultFitConfig()
	c.Exclude = []string{"base_link"}
	d := c.Copy()
	d.Exclude[0] = "arm"
	assert.True(t, c.IsExcluded("base_link"))
	assert.False(t, c.IsExcluded("arm"))
}

func TestConfigFileApply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "simplify.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
bbox_type: aabb
tight_fit: true
scale: 1.5
padding_z: 0.02
min_size: 0.01
exclude: [base_link, gripper]
merge_links: true
workers: 3
`), 0644))

	cf, err := LoadConfigFile(path)
	require.NoError(t, err)

	opt := &SimplifierOptions{Fit: DefaultFitConfig()}
	require.NoError(t, cf.Apply(opt))

	assert.Equal(t, AABB, opt.Fit.Kind)
	assert.True(t, opt.Fit.TightFit)
	assert.Equal(t, 1.5, opt.Fit.Axis.ResolveScale(0))
	assert.Equal(t, 0.02, opt.Fit.Axis.ResolvePadding(2))
	assert.Equal(t, 0.0, opt.Fit.Axis.ResolvePadding(0))
	assert.Equal(t, 0.01, opt.Fit.MinSize)
	assert.Equal(t, []string{"base_link", "gripper"}, opt.Fit.Exclude)
	assert.Equal(t, PerLink, opt.Fit.Merge)
	assert.Equal(t, 3, opt.Fit.Workers)
	assert.NoError(t, opt.Fit.Validate())
}

func TestConfigFileRejectsUnknownBoxKind(t *testing.T) {
	cf, err := ParseConfig([]byte("bbox_type: capsule\n"))
	require.NoError(t, err)
	opt := &SimplifierOptions{Fit: DefaultFitConfig()}
	var invalid *InvalidConfigError
	assert.ErrorAs(t, cf.Apply(opt), &invalid)

	_, err = LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
