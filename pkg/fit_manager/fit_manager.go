package fit_manager

import (
	"github.com/ecopia-map/urdf_simplifier/internal/converters"
	"github.com/ecopia-map/urdf_simplifier/internal/meshio"
	"github.com/ecopia-map/urdf_simplifier/tools"
)

// FitManager hands out the collaborators a simplifier run depends on.
type FitManager interface {
	GetMeshLoader() meshio.Loader
	GetResourceResolver() tools.ResourceResolver
	GetFrameConverter() converters.FrameConverter
}
