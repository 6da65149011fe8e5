package simplifier

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ConfigFile mirrors the command line flags. Unset keys leave the current value
// alone, so precedence is defaults, then file, then explicitly set flags.
type ConfigFile struct {
	BboxType   *string  `yaml:"bbox_type"`
	TightFit   *bool    `yaml:"tight_fit"`
	Scale      *float64 `yaml:"scale"`
	ScaleX     *float64 `yaml:"scale_x"`
	ScaleY     *float64 `yaml:"scale_y"`
	ScaleZ     *float64 `yaml:"scale_z"`
	Padding    *float64 `yaml:"padding"`
	PaddingX   *float64 `yaml:"padding_x"`
	PaddingY   *float64 `yaml:"padding_y"`
	PaddingZ   *float64 `yaml:"padding_z"`
	MinSize    *float64 `yaml:"min_size"`
	Exclude    []string `yaml:"exclude"`
	MergeLinks *bool    `yaml:"merge_links"`
	Workers    *int     `yaml:"workers"`
	Ros        *bool    `yaml:"ros"`
	Verbose    *bool    `yaml:"verbose"`
}

func LoadConfigFile(path string) (*ConfigFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseConfig(data)
}

func ParseConfig(data []byte) (*ConfigFile, error) {
	cf := &ConfigFile{}
	if err := yaml.Unmarshal(data, cf); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cf, nil
}

// Apply copies every key present in the file into opt.
func (cf *ConfigFile) Apply(opt *SimplifierOptions) error {
	if cf.BboxType != nil {
		kind := ParseBoxKind(*cf.BboxType)
		if kind == "" {
			return &InvalidConfigError{Field: "bbox_type", Value: *cf.BboxType, Reason: "must be aabb or obb"}
		}
		opt.Fit.Kind = kind
	}
	if cf.TightFit != nil {
		opt.Fit.TightFit = *cf.TightFit
	}
	if cf.Scale != nil {
		opt.Fit.Axis.Scale = *cf.Scale
	}
	if cf.Padding != nil {
		opt.Fit.Axis.Padding = *cf.Padding
	}
	for axis, v := range [3]*float64{cf.ScaleX, cf.ScaleY, cf.ScaleZ} {
		if v != nil {
			s := *v
			opt.Fit.Axis.ScaleAxis[axis] = &s
		}
	}
	for axis, v := range [3]*float64{cf.PaddingX, cf.PaddingY, cf.PaddingZ} {
		if v != nil {
			p := *v
			opt.Fit.Axis.PaddingAxis[axis] = &p
		}
	}
	if cf.MinSize != nil {
		opt.Fit.MinSize = *cf.MinSize
	}
	if len(cf.Exclude) > 0 {
		opt.Fit.Exclude = append([]string(nil), cf.Exclude...)
	}
	if cf.MergeLinks != nil {
		if *cf.MergeLinks {
			opt.Fit.Merge = PerLink
		} else {
			opt.Fit.Merge = PerEntry
		}
	}
	if cf.Workers != nil {
		opt.Fit.Workers = *cf.Workers
	}
	if cf.Ros != nil {
		opt.UseRos = *cf.Ros
	}
	if cf.Verbose != nil {
		opt.Verbose = *cf.Verbose
	}
	return nil
}
