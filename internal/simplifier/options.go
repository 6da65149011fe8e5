package simplifier

import "strings"

type BoxKind string
type MergePolicy string

const (
	// Axis-aligned box in the collision frame: per-axis min/max of the points.
	AABB BoxKind = "AABB"

	// Oriented box: the smallest of the identity, principal-axis and (with tight fit) hull-face
	// candidate bases. Never larger than the AABB of the same points.
	OBB BoxKind = "OBB"
)

const (
	// One box per collision entry, placed in that entry's frame.
	PerEntry MergePolicy = "PER_ENTRY"

	// One box per link enclosing all of its mesh entries, placed in the link frame.
	PerLink MergePolicy = "PER_LINK"
)

const (
	DefaultScale   = 1.0
	DefaultPadding = 0.0
	DefaultMinSize = 0.001
)

func (k BoxKind) String() string {
	if k == AABB {
		return "aabb"
	} else if k == OBB {
		return "obb"
	}
	return ""
}

func ParseBoxKind(value string) BoxKind {
	normalizedValue := strings.Trim(strings.ToUpper(value), " ")
	if normalizedValue == "AABB" {
		return AABB
	} else if normalizedValue == "OBB" {
		return OBB
	}
	return ""
}

func (m MergePolicy) String() string {
	if m == PerEntry {
		return "per-entry"
	} else if m == PerLink {
		return "per-link"
	}
	return ""
}

// AxisPolicy holds the uniform scale and padding plus optional per-axis overrides.
// A nil override means the uniform value applies to that axis.
type AxisPolicy struct {
	Scale       float64     // uniform scale factor, > 0
	ScaleAxis   [3]*float64 // x, y, z scale overrides
	Padding     float64     // uniform padding added on each side, >= 0
	PaddingAxis [3]*float64 // x, y, z padding overrides
}

func DefaultAxisPolicy() AxisPolicy {
	return AxisPolicy{Scale: DefaultScale, Padding: DefaultPadding}
}

func (p AxisPolicy) ResolveScale(axis int) float64 {
	if p.ScaleAxis[axis] != nil {
		return *p.ScaleAxis[axis]
	}
	return p.Scale
}

func (p AxisPolicy) ResolvePadding(axis int) float64 {
	if p.PaddingAxis[axis] != nil {
		return *p.PaddingAxis[axis]
	}
	return p.Padding
}

func (p AxisPolicy) Copy() AxisPolicy {
	newPolicy := AxisPolicy{Scale: p.Scale, Padding: p.Padding}
	for axis := 0; axis < 3; axis++ {
		if p.ScaleAxis[axis] != nil {
			v := *p.ScaleAxis[axis]
			newPolicy.ScaleAxis[axis] = &v
		}
		if p.PaddingAxis[axis] != nil {
			v := *p.PaddingAxis[axis]
			newPolicy.PaddingAxis[axis] = &v
		}
	}
	return newPolicy
}

// Contains the options driving the fit of every collision entry
type FitConfig struct {
	Kind     BoxKind     // Box strategy
	TightFit bool        // Fit on the convex hull and enable the hull-face OBB search
	Axis     AxisPolicy  // Scale and padding applied after fitting
	MinSize  float64     // Lower bound for every final extent
	Exclude  []string    // Link names left untouched
	Merge    MergePolicy // One box per entry or per link
	Workers  int         // Number of fitting goroutines, 0 means one per CPU
}

func DefaultFitConfig() FitConfig {
	return FitConfig{
		Kind:    OBB,
		Axis:    DefaultAxisPolicy(),
		MinSize: DefaultMinSize,
		Merge:   PerEntry,
	}
}

func (c FitConfig) IsExcluded(link string) bool {
	for _, name := range c.Exclude {
		if name == link {
			return true
		}
	}
	return false
}

func (c FitConfig) Copy() FitConfig {
	newConfig := c
	newConfig.Axis = c.Axis.Copy()
	if c.Exclude != nil {
		newConfig.Exclude = append([]string(nil), c.Exclude...)
	}
	return newConfig
}

var axisNames = [3]string{"x", "y", "z"}

// Validate reports the first invalid field as an *InvalidConfigError.
func (c FitConfig) Validate() error {
	if c.Kind != AABB && c.Kind != OBB {
		return &InvalidConfigError{Field: "bbox-type", Value: string(c.Kind), Reason: "must be aabb or obb"}
	}
	if c.Axis.Scale <= 0 {
		return &InvalidConfigError{Field: "scale", Value: c.Axis.Scale, Reason: "must be greater than zero"}
	}
	if c.Axis.Padding < 0 {
		return &InvalidConfigError{Field: "padding", Value: c.Axis.Padding, Reason: "must not be negative"}
	}
	for axis := 0; axis < 3; axis++ {
		if s := c.Axis.ScaleAxis[axis]; s != nil && *s <= 0 {
			return &InvalidConfigError{Field: "scale-" + axisNames[axis], Value: *s, Reason: "must be greater than zero"}
		}
		if p := c.Axis.PaddingAxis[axis]; p != nil && *p < 0 {
			return &InvalidConfigError{Field: "padding-" + axisNames[axis], Value: *p, Reason: "must not be negative"}
		}
	}
	if c.MinSize < 0 {
		return &InvalidConfigError{Field: "min-size", Value: c.MinSize, Reason: "must not be negative"}
	}
	if c.Merge != PerEntry && c.Merge != PerLink {
		return &InvalidConfigError{Field: "merge", Value: string(c.Merge), Reason: "unknown merge policy"}
	}
	if c.Workers < 0 {
		return &InvalidConfigError{Field: "workers", Value: c.Workers, Reason: "must not be negative"}
	}
	return nil
}

// Contains the options needed for a simplifier run
type SimplifierOptions struct {
	Command string    // simplify or report
	Input   string    // Input URDF file
	Output  string    // Output URDF file, empty for report
	UseRos  bool      // Resolve package:// URIs through ROS_PACKAGE_PATH
	Select  bool      // Ask for every link whether it should be simplified
	Verbose bool      // Print the fitted size and volume ratio of every mesh
	Fit     FitConfig // Fit parameters shared by every entry
}

// DryRun reports whether the run only prints the report without writing a document.
func (opt *SimplifierOptions) DryRun() bool {
	return opt.Output == ""
}
