package simplifier

import "fmt"

// MeshLoadError means the mesh behind a collision entry could not be read or was
// empty. The entry is left unmodified.
type MeshLoadError struct {
	Path string
	Err  error
}

func (e *MeshLoadError) Error() string {
	return fmt.Sprintf("failed to load mesh %s: %v", e.Path, e.Err)
}

func (e *MeshLoadError) Unwrap() error {
	return e.Err
}

// DegenerateGeometryError marks a point cloud without thickness along some axis.
// Fitting recovers from it through min-size clamping.
type DegenerateGeometryError struct {
	Points int
	Reason string
}

func (e *DegenerateGeometryError) Error() string {
	return fmt.Sprintf("degenerate geometry (%d points): %s", e.Points, e.Reason)
}

type InvalidConfigError struct {
	Field  string
	Value  interface{}
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

// FitInconsistencyError is reported when a fitted box encloses less volume than
// the mesh it was fitted to.
type FitInconsistencyError struct {
	Entry      string
	MeshVolume float64
	BoxVolume  float64
}

func (e *FitInconsistencyError) Error() string {
	return fmt.Sprintf("box of %s has volume %g, smaller than mesh volume %g", e.Entry, e.BoxVolume, e.MeshVolume)
}
