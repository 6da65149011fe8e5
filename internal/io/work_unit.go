package io

import (
	"github.com/ecopia-map/urdf_simplifier/internal/fit"
	"github.com/ecopia-map/urdf_simplifier/internal/geometry"
	"github.com/ecopia-map/urdf_simplifier/internal/simplifier"
)

// MeshPart is one mesh file contributing to a work unit.
type MeshPart struct {
	Path      string                  // resolved file path
	Scale     geometry.Point3         // mesh scale attribute
	Transform geometry.RigidTransform // mesh frame to the unit frame
}

// Contains the minimal data needed to fit a single box, i.e. the meshes to enclose and the frame the box is
// expressed in
type WorkUnit struct {
	Index  int    // position of the unit in the run, results are reassembled on it
	Entry  string // name used in logs and reports
	Parts  []MeshPart
	Frame  geometry.RigidTransform // unit frame in the link frame
	Config simplifier.FitConfig
}

// WorkResult is what a consumer sends back for a WorkUnit. Err is set when the
// unit could not be fitted, Fit and Origin otherwise.
type WorkResult struct {
	Index  int
	Entry  string
	Fit    *fit.FitResult
	Origin geometry.RigidTransform // box pose in the link frame
	Err    error
}
